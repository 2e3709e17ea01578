package group

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/perm"
	"github.com/matzehuels/symlump/pkg/perm/permtest"
)

func gens(t *testing.T, n int, lines ...string) perm.GeneratorSet {
	t.Helper()
	g, err := perm.ParseGenerators(strings.NewReader(strings.Join(lines, "\n")), n, perm.GAP)
	require.NoError(t, err)
	return g
}

func classSizes(g *Group) []int64 {
	sizes := make([]int64, len(g.Classes))
	for i, c := range g.Classes {
		sizes[i] = c.Size.Int64()
	}
	slices.Sort(sizes)
	return sizes
}

func TestAnalyzeTrivial(t *testing.T) {
	called := false
	oracle := OracleFunc(func(context.Context, perm.GeneratorSet) (*Group, error) {
		called = true
		return nil, nil
	})

	g, err := Analyze(context.Background(), oracle, perm.GeneratorSet{N: 5})
	require.NoError(t, err)
	assert.False(t, called, "oracle must not be called for the trivial group")
	assert.Equal(t, int64(1), g.Order.Int64())
	require.Len(t, g.Classes, 1)
	assert.True(t, g.Classes[0].Representative.IsIdentity())
	assert.Equal(t, int64(1), g.Classes[0].Size.Int64())

	g, err = Analyze(context.Background(), oracle, gens(t, 3, "()"))
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, int64(1), g.Order.Int64())
}

func TestClosureTransposition(t *testing.T) {
	g, err := Analyze(context.Background(), NewClosure(0), gens(t, 4, "(1,2)"))
	require.NoError(t, err)

	assert.Equal(t, int64(2), g.Order.Int64())
	require.Len(t, g.Classes, 2)
	assert.True(t, g.Classes[0].Representative.IsIdentity())
	assert.Equal(t, "(1,2)", g.Classes[1].Representative.String())
	assert.Equal(t, []int64{1, 1}, classSizes(g))
}

func TestClosureKnownGroups(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		gens  []string
		order int64
		sizes []int64
	}{
		{"S3", 3, []string{"(1,2)", "(1,2,3)"}, 6, []int64{1, 2, 3}},
		{"C4", 4, []string{"(1,2,3,4)"}, 4, []int64{1, 1, 1, 1}},
		{"D4 square", 4, []string{"(1,2,3,4)", "(1,3)"}, 8, []int64{1, 1, 2, 2, 2}},
		{"Klein four", 4, []string{"(1,2)(3,4)", "(1,3)(2,4)"}, 4, []int64{1, 1, 1, 1}},
		{"A4", 4, []string{"(1,2,3)", "(2,3,4)"}, 12, []int64{1, 3, 4, 4}},
		{"S4", 4, []string{"(1,2)", "(1,2,3,4)"}, 24, []int64{1, 3, 6, 6, 8}},
		{"disjoint product", 7, []string{"(1,2)", "(5,6,7)"}, 6, []int64{1, 1, 1, 1, 1, 1}},
		{"star leaves", 6, []string{"(2,3)", "(3,4)", "(4,5)", "(5,6)"}, 120, []int64{1, 10, 15, 20, 20, 24, 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Analyze(context.Background(), NewClosure(0), gens(t, tt.n, tt.gens...))
			require.NoError(t, err)
			assert.Equal(t, tt.order, g.Order.Int64())
			assert.Equal(t, tt.sizes, classSizes(g))
			for _, c := range g.Classes {
				assert.Less(t, c.Representative.MaxPoint(), tt.n)
			}
		})
	}
}

func TestClosureSymmetricGroupOrder(t *testing.T) {
	for n := 2; n <= 6; n++ {
		g, err := Analyze(context.Background(), NewClosure(0),
			gens(t, n, "(1,2)", perm.MustNew(perm.Seq(n)).String()))
		require.NoError(t, err)
		assert.Equal(t, 0, g.Order.Cmp(perm.Factorial(n)), "|S_%d|", n)
	}
}

// Conjugacy classes of S_n are exactly the cycle types, so every element of
// the enumerated group lands in the class of its cycle type.
func TestClosureClassesMatchCycleTypes(t *testing.T) {
	g, err := Analyze(context.Background(), NewClosure(0), gens(t, 5, "(1,2)", "(1,2,3,4,5)"))
	require.NoError(t, err)

	want := make(map[string]int64)
	for _, p := range permtest.Symmetric(5) {
		want[typeKey(p)]++
	}
	got := make(map[string]int64)
	for _, c := range g.Classes {
		got[typeKey(c.Representative)] += c.Size.Int64()
	}
	assert.Equal(t, want, got)
}

func typeKey(p perm.Permutation) string {
	return fmt.Sprint(p.CycleType())
}

func TestClosureTooLarge(t *testing.T) {
	_, err := Analyze(context.Background(), NewClosure(100), gens(t, 6, "(1,2)", "(1,2,3,4,5,6)"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeGroupTooLarge), "got %v", err)
}

func TestClosureCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, NewClosure(0), gens(t, 4, "(1,2)"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeTimeout(t *testing.T) {
	blocking := OracleFunc(func(ctx context.Context, _ perm.GeneratorSet) (*Group, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Analyze(ctx, blocking, gens(t, 4, "(1,2)"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAnalyzeRejectsInconsistentOracle(t *testing.T) {
	tests := []struct {
		name  string
		group *Group
	}{
		{"nil group", nil},
		{"wrong domain", &Group{N: 9, Order: big.NewInt(2), Classes: []Class{
			{perm.Identity(), big.NewInt(1)}, {perm.MustNew([]int{0, 1}), big.NewInt(1)},
		}}},
		{"sizes do not sum to order", &Group{N: 4, Order: big.NewInt(3), Classes: []Class{
			{perm.Identity(), big.NewInt(1)}, {perm.MustNew([]int{0, 1}), big.NewInt(1)},
		}}},
		{"zero order", &Group{N: 4, Order: big.NewInt(0), Classes: []Class{
			{perm.Identity(), big.NewInt(1)},
		}}},
		{"empty class", &Group{N: 4, Order: big.NewInt(1), Classes: []Class{
			{perm.Identity(), big.NewInt(1)}, {perm.MustNew([]int{0, 1}), big.NewInt(0)},
		}}},
		{"no classes", &Group{N: 4, Order: big.NewInt(1)}},
		{"order does not divide N!", &Group{N: 4, Order: big.NewInt(5), Classes: []Class{
			{perm.Identity(), big.NewInt(1)}, {perm.MustNew([]int{0, 1}), big.NewInt(4)},
		}}},
		{"representative outside domain", &Group{N: 4, Order: big.NewInt(2), Classes: []Class{
			{perm.Identity(), big.NewInt(1)}, {perm.MustNew([]int{0, 6}), big.NewInt(1)},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := OracleFunc(func(context.Context, perm.GeneratorSet) (*Group, error) {
				return tt.group, nil
			})
			_, err := Analyze(context.Background(), oracle, gens(t, 4, "(1,2)"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConsistency), "got %v", err)
		})
	}
}

func TestLimit(t *testing.T) {
	var current, peak int32
	var mu sync.Mutex
	slow := OracleFunc(func(ctx context.Context, g perm.GeneratorSet) (*Group, error) {
		n := atomic.AddInt32(&current, 1)
		mu.Lock()
		peak = max(peak, n)
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return NewClosure(0).Analyze(ctx, g)
	})

	limited := Limit(slow, 2)
	set := gens(t, 4, "(1,2)")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Analyze(context.Background(), limited, set)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak, int32(2))
}

func TestLimitHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	busy := OracleFunc(func(ctx context.Context, g perm.GeneratorSet) (*Group, error) {
		<-release
		return Trivial(g.N), nil
	})
	limited := Limit(busy, 1)
	set := gens(t, 4, "(1,2)")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = limited.Analyze(context.Background(), set)
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Analyze(ctx, limited, set)
	assert.True(t, errors.Is(err, errors.ErrCodeTimeout), "queued call should time out, got %v", err)

	close(release)
	<-done
}

func TestName(t *testing.T) {
	assert.Equal(t, "closure", Name(NewClosure(0)))
	assert.Equal(t, "gap", Name(Limit(NewGAP(""), 1)))
	assert.Equal(t, "custom", Name(OracleFunc(func(context.Context, perm.GeneratorSet) (*Group, error) {
		return nil, nil
	})))
}
