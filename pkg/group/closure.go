package group

import (
	"context"
	"encoding/binary"
	"math/big"
	"slices"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/perm"
)

// DefaultMaxOrder bounds the number of elements Closure will enumerate.
const DefaultMaxOrder = 200_000

// ctxCheckInterval is how many elements are processed between context checks.
const ctxCheckInterval = 256

// Closure is an in-process Oracle that enumerates the whole group.
//
// It closes the generator set under multiplication by breadth-first search,
// then partitions the elements into conjugacy classes by closing each element
// under conjugation by the generators. Both passes work only on the points the
// generators actually move, so large sparse networks cost no more than their
// symmetric part.
//
// The cost is linear in the group order, so Closure is only suitable for
// groups up to MaxOrder elements; larger groups fail with GROUP_TOO_LARGE and
// need an external algebra engine such as GAP.
type Closure struct {
	// MaxOrder is the largest group Closure will enumerate.
	// Zero means DefaultMaxOrder.
	MaxOrder int
}

// NewClosure creates a closure oracle bounded by maxOrder elements.
func NewClosure(maxOrder int) *Closure {
	return &Closure{MaxOrder: maxOrder}
}

// Name returns "closure".
func (c *Closure) Name() string { return "closure" }

// Analyze implements Oracle.
func (c *Closure) Analyze(ctx context.Context, gens perm.GeneratorSet) (*Group, error) {
	limit := c.MaxOrder
	if limit <= 0 {
		limit = DefaultMaxOrder
	}

	sup := newSupport(gens)
	if sup.size() == 0 {
		return Trivial(gens.N), nil
	}

	elems, err := sup.close(ctx, limit)
	if err != nil {
		return nil, err
	}
	classes, err := sup.conjugacyClasses(ctx, elems)
	if err != nil {
		return nil, err
	}

	return &Group{
		N:       gens.N,
		Order:   big.NewInt(int64(len(elems.list))),
		Classes: classes,
	}, nil
}

// support is the generator set restricted to the points it moves, relabelled
// as 0..k-1.
type support struct {
	points []int     // local index -> domain point
	gens   [][]int32 // generator image arrays on local indices
	inv    [][]int32 // inverse image arrays
}

func newSupport(gens perm.GeneratorSet) *support {
	local := make(map[int]int32)
	var points []int
	for _, p := range gens.Perms {
		for _, cyc := range p.Cycles() {
			for _, x := range cyc {
				if _, ok := local[x]; !ok {
					local[x] = int32(len(points))
					points = append(points, x)
				}
			}
		}
	}

	s := &support{points: points}
	for _, p := range gens.Perms {
		if p.IsIdentity() {
			continue
		}
		img := identityImages(len(points))
		inv := identityImages(len(points))
		for _, cyc := range p.Cycles() {
			for k, x := range cyc {
				from, to := local[x], local[cyc[(k+1)%len(cyc)]]
				img[from] = to
				inv[to] = from
			}
		}
		s.gens = append(s.gens, img)
		s.inv = append(s.inv, inv)
	}
	return s
}

func (s *support) size() int { return len(s.points) }

func identityImages(n int) []int32 {
	img := make([]int32, n)
	for i := range img {
		img[i] = int32(i)
	}
	return img
}

// elements is an indexed set of group elements.
type elements struct {
	list  [][]int32
	index map[string]int
}

func (e *elements) add(img []int32) (int, bool) {
	k := key(img)
	if i, ok := e.index[k]; ok {
		return i, false
	}
	e.index[k] = len(e.list)
	e.list = append(e.list, img)
	return len(e.list) - 1, true
}

func key(img []int32) string {
	b := make([]byte, 4*len(img))
	for i, v := range img {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(v))
	}
	return string(b)
}

// close enumerates the group by right-multiplying known elements with each
// generator until no new element appears.
func (s *support) close(ctx context.Context, limit int) (*elements, error) {
	elems := &elements{index: make(map[string]int)}
	elems.add(identityImages(s.size()))

	for next := 0; next < len(elems.list); next++ {
		if next%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		x := elems.list[next]
		for _, g := range s.gens {
			// Apply x first, then g.
			prod := make([]int32, len(x))
			for i, xi := range x {
				prod[i] = g[xi]
			}
			if _, added := elems.add(prod); added && len(elems.list) > limit {
				return nil, errors.New(errors.ErrCodeGroupTooLarge,
					"group has more than %d elements on %d moved points", limit, s.size())
			}
		}
	}
	return elems, nil
}

// conjugacyClasses partitions elems by closing each unassigned element under
// conjugation by the generators. For a finite group, conjugation by the
// generators alone reaches every conjugate.
func (s *support) conjugacyClasses(ctx context.Context, elems *elements) ([]Class, error) {
	assigned := make([]bool, len(elems.list))
	var classes []Class
	work := 0

	for start := range elems.list {
		if assigned[start] {
			continue
		}
		assigned[start] = true
		queue := []int{start}
		for q := 0; q < len(queue); q++ {
			work++
			if work%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			x := elems.list[queue[q]]
			for gi, g := range s.gens {
				inv := s.inv[gi]
				// i^(g^-1 x g) = g[x[inv[i]]]
				conj := make([]int32, len(x))
				for i := range conj {
					conj[i] = g[x[inv[i]]]
				}
				j, ok := elems.index[key(conj)]
				if !ok {
					return nil, errors.New(errors.ErrCodeInternal, "conjugate escaped the enumerated group")
				}
				if !assigned[j] {
					assigned[j] = true
					queue = append(queue, j)
				}
			}
		}
		classes = append(classes, Class{
			Representative: s.lift(elems.list[start]),
			Size:           big.NewInt(int64(len(queue))),
		})
	}
	return classes, nil
}

// lift maps a local image array back to a permutation of domain points.
func (s *support) lift(img []int32) perm.Permutation {
	visited := make([]bool, len(img))
	var cycles [][]int
	for i := range img {
		if visited[i] || int(img[i]) == i {
			continue
		}
		var c []int
		for j := i; !visited[j]; j = int(img[j]) {
			visited[j] = true
			c = append(c, s.points[j])
		}
		cycles = append(cycles, slices.Clip(c))
	}
	p, _ := perm.New(cycles...)
	return p
}
