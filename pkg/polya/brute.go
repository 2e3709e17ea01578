package polya

import (
	"math"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/perm"
)

// DefaultBruteForceMaxNodes is the largest domain BruteForce enumerates.
const DefaultBruteForceMaxNodes = 10

// MaxLabelings caps k^n for BruteForce independently of the node limit.
const MaxLabelings = 1 << 24

// BruteForceTractable reports whether BruteForce will enumerate k^n
// labelings for a domain of n points under the given node limit
// (DefaultBruteForceMaxNodes when maxNodes <= 0).
func BruteForceTractable(n, k, maxNodes int) bool {
	if maxNodes <= 0 {
		maxNodes = DefaultBruteForceMaxNodes
	}
	if n <= 0 || k <= 0 || n > maxNodes {
		return false
	}
	return float64(n)*math.Log2(float64(k)) <= math.Log2(MaxLabelings)
}

// BruteForce counts orbits directly: it enumerates all k^n labelings of the
// generator domain and merges each labeling with its image under every
// generator. It is exponential in n and exists to cross-check Count.
//
// Inputs for which BruteForceTractable is false are DEGENERATE_INPUT.
func BruteForce(gens perm.GeneratorSet, k, maxNodes int) (Rho, error) {
	if maxNodes <= 0 {
		maxNodes = DefaultBruteForceMaxNodes
	}
	n := gens.N
	if n <= 0 {
		return Rho{}, errors.New(errors.ErrCodeInvalidInput, "domain size must be positive, got %d", n)
	}
	if k <= 0 {
		return Rho{}, errors.New(errors.ErrCodeInvalidInput, "alphabet size must be positive, got %d", k)
	}
	if !BruteForceTractable(n, k, maxNodes) {
		return Rho{}, errors.New(errors.ErrCodeDegenerateInput, "brute force over %d^%d labelings is not tractable", k, n)
	}

	// weight[i] is the place value of point i in the base-k encoding.
	weight := make([]int, n)
	total := 1
	for i := range weight {
		weight[i] = total
		total *= k
	}

	var images [][]int
	for _, p := range gens.Perms {
		if !p.IsIdentity() {
			images = append(images, p.Images(n))
		}
	}

	parent := make([]int32, total)
	for i := range parent {
		parent[i] = int32(i)
	}
	find := func(x int32) int32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	orbits := total
	digits := make([]int, n)
	for x := 0; x < total; x++ {
		for i, r := 0, x; i < n; i++ {
			digits[i] = r % k
			r /= k
		}
		for _, img := range images {
			// The label at point i moves to point img[i].
			y := 0
			for i, d := range digits {
				y += d * weight[img[i]]
			}
			a, b := find(int32(x)), find(int32(y))
			if a != b {
				parent[max(a, b)] = min(a, b)
				orbits--
			}
		}
	}
	return FiniteInt64(int64(orbits)), nil
}
