// Package permtest enumerates permutations for tests that need every element
// of a small symmetric group.
package permtest

import (
	"slices"

	"github.com/matzehuels/symlump/pkg/perm"
)

// Generate returns image arrays of permutations of [0, 1, ..., n-1] using
// Heap's algorithm.
//
// If limit > 0, Generate returns at most limit permutations.
// If limit <= 0, Generate returns all n! permutations.
//
// Each returned slice is a separate allocation, safe to modify without affecting others.
//
// For n >= 11 the full enumeration runs to tens of millions of arrays. Always
// use a limit when n is large.
func Generate(n, limit int) [][]int {
	if n <= 0 {
		return [][]int{{}}
	}
	if n == 1 {
		return [][]int{{0}}
	}

	p := perm.Seq(n)
	state := make([]int, n)

	capacity := limit
	if capacity <= 0 || n <= 10 {
		capacity = int(perm.Factorial(min(n, 10)).Int64())
	}
	result := make([][]int, 0, capacity)
	result = append(result, slices.Clone(p))

	for i := 0; i < n && (limit <= 0 || len(result) < limit); {
		if state[i] < i {
			if i&1 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[state[i]], p[i] = p[i], p[state[i]]
			}
			result = append(result, slices.Clone(p))
			state[i]++
			i = 0
		} else {
			state[i] = 0
			i++
		}
	}
	return result
}

// Symmetric returns every element of the symmetric group on n points.
func Symmetric(n int) []perm.Permutation {
	arrays := Generate(n, -1)
	out := make([]perm.Permutation, len(arrays))
	for i, img := range arrays {
		out[i], _ = perm.FromImages(img)
	}
	return out
}
