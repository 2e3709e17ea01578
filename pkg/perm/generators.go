package perm

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/symlump/pkg/errors"
)

// GeneratorSet is an ordered list of permutations on a shared domain
// {0, ..., N-1}. An empty set generates the trivial group.
type GeneratorSet struct {
	N     int
	Perms []Permutation
}

// NewGeneratorSet validates that every permutation acts on {0, ..., n-1}.
func NewGeneratorSet(n int, perms ...Permutation) (GeneratorSet, error) {
	if n <= 0 {
		return GeneratorSet{}, errors.New(errors.ErrCodeInvalidInput, "domain size must be positive, got %d", n)
	}
	for i, p := range perms {
		if m := p.MaxPoint(); m >= n {
			return GeneratorSet{}, errors.New(errors.ErrCodeParse, "generator %d moves point %d outside domain of size %d", i+1, m+1, n)
		}
	}
	return GeneratorSet{N: n, Perms: slices.Clone(perms)}, nil
}

// ParseGenerators reads one permutation per line in the given notation.
// Blank lines are skipped, so an empty input yields an empty generator set.
// Errors carry the 1-based line number.
func ParseGenerators(r io.Reader, n int, nt Notation) (GeneratorSet, error) {
	if n <= 0 {
		return GeneratorSet{}, errors.New(errors.ErrCodeInvalidInput, "domain size must be positive, got %d", n)
	}

	var perms []Permutation
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		p, err := nt.Parse(text, n)
		if err != nil {
			return GeneratorSet{}, errors.Wrap(errors.ErrCodeParse, err, "generator on line %d", line)
		}
		perms = append(perms, p)
	}
	if err := sc.Err(); err != nil {
		return GeneratorSet{}, errors.Wrap(errors.ErrCodeParse, err, "read generators")
	}
	return GeneratorSet{N: n, Perms: perms}, nil
}

// Len returns the number of generators.
func (g GeneratorSet) Len() int {
	return len(g.Perms)
}

// Trivial reports whether every generator is the identity, in which case the
// generated group is trivial.
func (g GeneratorSet) Trivial() bool {
	for _, p := range g.Perms {
		if !p.IsIdentity() {
			return false
		}
	}
	return true
}

// String writes one generator per line in GAP notation.
func (g GeneratorSet) String() string {
	var b strings.Builder
	for _, p := range g.Perms {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Orbits returns the orbits of the generated group on {0, ..., N-1} that
// contain more than one point. Each orbit is sorted, and orbits are ordered by
// their smallest point. Fixed points are omitted, matching the orbit listing
// of the moved points that GAP reports.
func (g GeneratorSet) Orbits() [][]int {
	parent := Seq(g.N)
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, p := range g.Perms {
		for _, c := range p.cycles {
			for _, x := range c[1:] {
				a, b := find(c[0]), find(x)
				if a != b {
					parent[max(a, b)] = min(a, b)
				}
			}
		}
	}

	byRoot := make(map[int][]int)
	for i := 0; i < g.N; i++ {
		r := find(i)
		byRoot[r] = append(byRoot[r], i)
	}
	var orbits [][]int
	for _, o := range byRoot {
		if len(o) > 1 {
			orbits = append(orbits, o)
		}
	}
	slices.SortFunc(orbits, func(a, b []int) int { return a[0] - b[0] })
	return orbits
}
