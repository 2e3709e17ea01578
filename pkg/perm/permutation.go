package perm

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/symlump/pkg/errors"
)

// Permutation is a bijection on {0, ..., n-1} stored as disjoint cycles.
//
// Only cycles of length two or more are stored; fixed points are implicit, so
// the same value describes the permutation on every domain that contains its
// moved points. Cycles are kept in canonical form: each cycle starts at its
// smallest element and cycles are ordered by that element. Two permutations
// are therefore equal exactly when their cycle slices are equal.
//
// The zero value is the identity.
type Permutation struct {
	cycles [][]int
}

// Identity returns the identity permutation.
func Identity() Permutation {
	return Permutation{}
}

// New builds a permutation from disjoint cycles of 0-indexed points.
//
// Cycles of length one are fixed points and are dropped. New returns a
// PARSE_ERROR if a point is negative or appears more than once.
func New(cycles ...[]int) (Permutation, error) {
	seen := make(map[int]struct{})
	out := make([][]int, 0, len(cycles))
	for _, c := range cycles {
		for _, x := range c {
			if x < 0 {
				return Permutation{}, errors.New(errors.ErrCodeParse, "negative point %d", x)
			}
			if _, dup := seen[x]; dup {
				return Permutation{}, errors.New(errors.ErrCodeParse, "point %d appears in more than one position", x+1)
			}
			seen[x] = struct{}{}
		}
		if len(c) >= 2 {
			out = append(out, slices.Clone(c))
		}
	}
	return canonical(out), nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(cycles ...[]int) Permutation {
	p, err := New(cycles...)
	if err != nil {
		panic(err)
	}
	return p
}

// FromImages builds a permutation from its image array, where img[i] is the
// image of point i. FromImages returns an error if img is not a bijection on
// {0, ..., len(img)-1}.
func FromImages(img []int) (Permutation, error) {
	n := len(img)
	hit := make([]bool, n)
	for i, y := range img {
		if y < 0 || y >= n {
			return Permutation{}, errors.New(errors.ErrCodeParse, "image %d of point %d out of range [0, %d)", y, i, n)
		}
		if hit[y] {
			return Permutation{}, errors.New(errors.ErrCodeParse, "image %d repeated", y)
		}
		hit[y] = true
	}

	visited := make([]bool, n)
	var cycles [][]int
	for i := 0; i < n; i++ {
		if visited[i] || img[i] == i {
			continue
		}
		var c []int
		for j := i; !visited[j]; j = img[j] {
			visited[j] = true
			c = append(c, j)
		}
		cycles = append(cycles, c)
	}
	return Permutation{cycles: cycles}, nil
}

// canonical rotates each cycle to start at its minimum and sorts cycles.
func canonical(cycles [][]int) Permutation {
	for _, c := range cycles {
		m := 0
		for i, x := range c {
			if x < c[m] {
				m = i
			}
		}
		if m > 0 {
			rotated := append(slices.Clone(c[m:]), c[:m]...)
			copy(c, rotated)
		}
	}
	slices.SortFunc(cycles, func(a, b []int) int { return a[0] - b[0] })
	if len(cycles) == 0 {
		return Permutation{}
	}
	return Permutation{cycles: cycles}
}

// Cycles returns a copy of the non-trivial cycles in canonical order.
func (p Permutation) Cycles() [][]int {
	out := make([][]int, len(p.cycles))
	for i, c := range p.cycles {
		out[i] = slices.Clone(c)
	}
	return out
}

// IsIdentity reports whether p moves no point.
func (p Permutation) IsIdentity() bool {
	return len(p.cycles) == 0
}

// Equal reports whether p and q are the same permutation.
func (p Permutation) Equal(q Permutation) bool {
	return slices.EqualFunc(p.cycles, q.cycles, slices.Equal[[]int])
}

// Moved returns the number of points not fixed by p.
func (p Permutation) Moved() int {
	m := 0
	for _, c := range p.cycles {
		m += len(c)
	}
	return m
}

// NontrivialCycles returns the number of cycles of length two or more.
func (p Permutation) NontrivialCycles() int {
	return len(p.cycles)
}

// CycleCount returns the total number of cycles of p acting on {0, ..., n-1},
// counting every fixed point as a cycle of length one:
//
//	CycleCount(n) = (n - Moved()) + NontrivialCycles()
//
// This is the exponent of the alphabet size in Pólya enumeration: a labeling
// is fixed by p exactly when it is constant along every cycle.
func (p Permutation) CycleCount(n int) int {
	return n - p.Moved() + p.NontrivialCycles()
}

// CycleType returns the lengths of the non-trivial cycles in descending order.
func (p Permutation) CycleType() []int {
	t := make([]int, len(p.cycles))
	for i, c := range p.cycles {
		t[i] = len(c)
	}
	slices.SortFunc(t, func(a, b int) int { return b - a })
	return t
}

// MaxPoint returns the largest moved point, or -1 for the identity.
func (p Permutation) MaxPoint() int {
	m := -1
	for _, c := range p.cycles {
		for _, x := range c {
			m = max(m, x)
		}
	}
	return m
}

// Apply returns the image of point i under p.
func (p Permutation) Apply(i int) int {
	for _, c := range p.cycles {
		for k, x := range c {
			if x == i {
				return c[(k+1)%len(c)]
			}
		}
	}
	return i
}

// Images returns the image array of p on {0, ..., n-1}.
// n must be greater than MaxPoint.
func (p Permutation) Images(n int) []int {
	img := Seq(n)
	for _, c := range p.cycles {
		for k, x := range c {
			img[x] = c[(k+1)%len(c)]
		}
	}
	return img
}

// Compose returns the permutation that applies p first and then q,
// following the left-to-right convention of cycle notation: i^(pq) = (i^p)^q.
func (p Permutation) Compose(q Permutation) Permutation {
	n := max(p.MaxPoint(), q.MaxPoint()) + 1
	a, b := p.Images(n), q.Images(n)
	img := make([]int, n)
	for i := range img {
		img[i] = b[a[i]]
	}
	r, _ := FromImages(img)
	return r
}

// Inverse returns the inverse permutation.
func (p Permutation) Inverse() Permutation {
	cycles := make([][]int, len(p.cycles))
	for i, c := range p.cycles {
		r := slices.Clone(c)
		slices.Reverse(r)
		cycles[i] = r
	}
	return canonical(cycles)
}

// Power returns p composed with itself e times. Negative exponents use the
// inverse; Power(0) is the identity.
func (p Permutation) Power(e int) Permutation {
	var cycles [][]int
	for _, c := range p.cycles {
		l := len(c)
		s := ((e % l) + l) % l
		if s == 0 {
			continue
		}
		// A cycle of length l raised to s splits into gcd(l, s) cycles.
		seen := make([]bool, l)
		for start := 0; start < l; start++ {
			if seen[start] {
				continue
			}
			var sub []int
			for k := start; !seen[k]; k = (k + s) % l {
				seen[k] = true
				sub = append(sub, c[k])
			}
			cycles = append(cycles, sub)
		}
	}
	return canonical(cycles)
}

// Order returns the order of p, the least common multiple of its cycle lengths.
// The result is arbitrary precision because the lcm of cycle lengths on a few
// hundred points already exceeds 64 bits.
func (p Permutation) Order() *big.Int {
	order := big.NewInt(1)
	var g, l big.Int
	for _, c := range p.cycles {
		l.SetInt64(int64(len(c)))
		g.GCD(nil, nil, order, &l)
		order.Mul(order, l.Quo(&l, &g))
	}
	return order
}

// String returns p in 1-indexed, comma-separated cycle notation, for example
// "(1,2)(3,4,5)". The identity is written "()".
func (p Permutation) String() string {
	return GAP.Format(p)
}

// GoString implements fmt.GoStringer for debugging output.
func (p Permutation) GoString() string {
	return fmt.Sprintf("perm.MustNew(%v)", p.cycles)
}

// Notation describes a textual cycle notation.
type Notation struct {
	// Offset is added to each 0-indexed point when formatting and subtracted
	// when parsing.
	Offset int

	// Separator separates points within a cycle. A space separator accepts
	// any run of whitespace.
	Separator string
}

var (
	// GAP is the 1-indexed, comma-separated notation used by GAP and by the
	// generator artifacts, e.g. "(1,2)(3,4,5)".
	GAP = Notation{Offset: 1, Separator: ","}

	// Saucy is the 0-indexed, space-separated notation printed by saucy,
	// e.g. "(0 1)(2 3 4)".
	Saucy = Notation{Offset: 0, Separator: " "}
)

// Parse parses one permutation in GAP notation over a domain of size n.
func Parse(s string, n int) (Permutation, error) {
	return GAP.Parse(s, n)
}

// Parse parses one permutation written in this notation over a domain of
// size n. Whitespace between cycles and around points is ignored, and "()"
// denotes the identity.
//
// Parse returns a PARSE_ERROR if a cycle is not a well-formed list of
// integers, a cycle has fewer than two points, a point falls outside
// [0, n-1] after removing the offset, or a point appears twice.
func (nt Notation) Parse(s string, n int) (Permutation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Permutation{}, errors.New(errors.ErrCodeParse, "empty permutation")
	}
	if compact(s) == "()" {
		return Permutation{}, nil
	}

	var cycles [][]int
	rest := s
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		if rest[0] != '(' {
			return Permutation{}, errors.New(errors.ErrCodeParse, "expected '(' in %q", s)
		}
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return Permutation{}, errors.New(errors.ErrCodeParse, "unbalanced parenthesis in %q", s)
		}
		body := rest[1:end]
		if strings.ContainsRune(body, '(') {
			return Permutation{}, errors.New(errors.ErrCodeParse, "nested parenthesis in %q", s)
		}
		c, err := nt.parseCycle(body, n)
		if err != nil {
			return Permutation{}, err
		}
		cycles = append(cycles, c)
		rest = rest[end+1:]
	}

	return New(cycles...)
}

func (nt Notation) parseCycle(body string, n int) ([]int, error) {
	var tokens []string
	if strings.TrimSpace(nt.Separator) == "" {
		tokens = strings.Fields(body)
	} else {
		tokens = strings.Split(body, nt.Separator)
	}
	if len(tokens) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "empty cycle")
	}

	c := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, errors.New(errors.ErrCodeParse, "empty label in cycle (%s)", body)
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "label %q in cycle (%s)", tok, body)
		}
		x := v - nt.Offset
		if x < 0 || x >= n {
			return nil, errors.New(errors.ErrCodeParse, "label %d outside domain of size %d", v, n)
		}
		c = append(c, x)
	}
	if len(c) < 2 {
		return nil, errors.New(errors.ErrCodeParse, "cycle (%s) has fewer than two points", body)
	}
	return c, nil
}

// Format writes p in this notation.
func (nt Notation) Format(p Permutation) string {
	if p.IsIdentity() {
		return "()"
	}
	var b strings.Builder
	for _, c := range p.cycles {
		b.WriteByte('(')
		for i, x := range c {
			if i > 0 {
				b.WriteString(nt.Separator)
			}
			b.WriteString(strconv.Itoa(x + nt.Offset))
		}
		b.WriteByte(')')
	}
	return b.String()
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
