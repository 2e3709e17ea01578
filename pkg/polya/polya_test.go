package polya

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/group"
	"github.com/matzehuels/symlump/pkg/perm"
	"github.com/matzehuels/symlump/pkg/perm/permtest"
)

func gens(t *testing.T, n int, lines ...string) perm.GeneratorSet {
	t.Helper()
	g, err := perm.ParseGenerators(strings.NewReader(strings.Join(lines, "\n")), n, perm.GAP)
	require.NoError(t, err)
	return g
}

func countVia(t *testing.T, set perm.GeneratorSet, k int) Rho {
	t.Helper()
	g, err := group.Analyze(context.Background(), group.NewClosure(0), set)
	require.NoError(t, err)
	rho, err := Count(g, set.N, k, Limits{})
	require.NoError(t, err)
	return rho
}

func TestCountKnownValues(t *testing.T) {
	tests := []struct {
		name string
		set  perm.GeneratorSet
		k    int
		want int64
	}{
		{"trivial N=1", perm.GeneratorSet{N: 1}, 2, 2},
		{"trivial N=10", perm.GeneratorSet{N: 10}, 2, 1024},
		{"transposition on 4", gens(t, 4, "(1,2)"), 2, 12},
		{"S3 binary", gens(t, 3, "(1,2)", "(1,2,3)"), 2, 4},
		{"S5 binary", gens(t, 5, "(1,2)", "(1,2,3,4,5)"), 2, 6},
		{"binary necklaces of 4", gens(t, 4, "(1,2,3,4)"), 2, 6},
		{"binary necklaces of 6", gens(t, 6, "(1,2,3,4,5,6)"), 2, 14},
		{"ternary necklaces of 4", gens(t, 4, "(1,2,3,4)"), 3, 24},
		{"binary bracelets of 6", gens(t, 6, "(1,2,3,4,5,6)", "(2,6)(3,5)"), 2, 13},
		{"single label", gens(t, 5, "(1,2)", "(3,4,5)"), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rho := countVia(t, tt.set, tt.k)
			assert.False(t, rho.IsInf())
			assert.Equal(t, tt.want, rho.Int().Int64())
		})
	}
}

// TestTranspositionScenario walks the worked example end to end: (1,2) on
// four points has order 2, classes {id, (1,2)}, cycle counts 4 and 3.
func TestTranspositionScenario(t *testing.T) {
	set := gens(t, 4, "(1,2)")
	g, err := group.Analyze(context.Background(), group.NewClosure(0), set)
	require.NoError(t, err)

	require.Equal(t, int64(2), g.Order.Int64())
	require.Len(t, g.Classes, 2)
	assert.Equal(t, 4, g.Classes[0].Representative.CycleCount(4))
	assert.Equal(t, 3, g.Classes[1].Representative.CycleCount(4))

	rho, err := Count(g, 4, 2, Limits{})
	require.NoError(t, err)
	assert.Equal(t, "12", rho.String())
}

func TestCountTrivialGroupIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 7, 64, 200} {
		rho, err := Count(group.Trivial(n), n, 2, Limits{})
		require.NoError(t, err)
		want := new(big.Int).Lsh(big.NewInt(1), uint(n))
		assert.Equal(t, 0, rho.Int().Cmp(want), "N=%d", n)
	}
}

func TestCountMatchesBruteForce(t *testing.T) {
	var cases []perm.GeneratorSet

	// Every symmetric group, generated by all of its elements.
	for n := 1; n <= 5; n++ {
		set, err := perm.NewGeneratorSet(n, permtest.Symmetric(n)...)
		require.NoError(t, err)
		cases = append(cases, set)
	}

	// Hand-picked groups on up to ten points.
	cases = append(cases,
		gens(t, 10),
		gens(t, 10, "(1,10)"),
		gens(t, 8, "(1,2)(3,4)", "(5,6,7,8)"),
		gens(t, 8, "(1,2,3,4,5,6,7,8)", "(2,8)(3,7)(4,6)"),
		gens(t, 9, "(1,2,3)", "(4,5,6)", "(7,8,9)", "(1,4,7)(2,5,8)(3,6,9)"),
		gens(t, 10, "(2,3)", "(3,4)", "(4,5)", "(5,6)"),
		gens(t, 10, "(1,2)(3,4)(5,6)(7,8)(9,10)"),
		gens(t, 6, "(1,2,3)", "(2,3,4)", "(5,6)"),
		gens(t, 7, "(1,2,3,4,5,6,7)", "(2,3,5)(4,7,6)"),
	)

	// Random generator sets, seeded for reproducibility.
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		n := 1 + rng.Intn(8)
		var perms []perm.Permutation
		for j := rng.Intn(3); j >= 0; j-- {
			p, err := perm.FromImages(rng.Perm(n))
			require.NoError(t, err)
			perms = append(perms, p)
		}
		set, err := perm.NewGeneratorSet(n, perms...)
		require.NoError(t, err)
		cases = append(cases, set)
	}

	for i, set := range cases {
		for _, k := range []int{2, 3} {
			if k == 3 && set.N > 8 {
				continue
			}
			t.Run(fmt.Sprintf("%d/N=%d/k=%d", i, set.N, k), func(t *testing.T) {
				want, err := BruteForce(set, k, 10)
				require.NoError(t, err)
				got := countVia(t, set, k)
				assert.True(t, got.Equal(want), "Count=%s BruteForce=%s for\n%s", got, want, set)
			})
		}
	}
}

func TestCountInfSentinel(t *testing.T) {
	rho, err := Count(group.Trivial(10), 10, 2, Limits{MaxTermBits: 8})
	require.NoError(t, err)
	assert.True(t, rho.IsInf())
	assert.Nil(t, rho.Int())
	assert.Equal(t, "inf", rho.String())

	rho, err = Count(group.Trivial(10), 10, 2, Limits{MaxTermBits: 11})
	require.NoError(t, err)
	assert.Equal(t, int64(1024), rho.Int().Int64())
}

func TestCountNonIntegralQuotient(t *testing.T) {
	g := &group.Group{N: 2, Order: big.NewInt(3), Classes: []group.Class{
		{Representative: perm.Identity(), Size: big.NewInt(1)},
		{Representative: perm.MustNew([]int{0, 1}), Size: big.NewInt(2)},
	}}
	_, err := Count(g, 2, 2, Limits{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConsistency))
}

func TestCountRejectsBadInput(t *testing.T) {
	_, err := Count(group.Trivial(3), 3, 0, Limits{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = Count(&group.Group{N: 3}, 3, 2, Limits{})
	assert.True(t, errors.Is(err, errors.ErrCodeConsistency))

	g := &group.Group{N: 3, Order: big.NewInt(2), Classes: []group.Class{
		{Representative: perm.Identity(), Size: big.NewInt(1)},
		{Representative: perm.MustNew([]int{0, 5}), Size: big.NewInt(1)},
	}}
	_, err = Count(g, 3, 2, Limits{})
	assert.True(t, errors.Is(err, errors.ErrCodeConsistency))
}

func TestCheckDomain(t *testing.T) {
	require.NoError(t, CheckDomain(4, 0))
	require.NoError(t, CheckDomain(DefaultNodeLimit-1, 0))
	assert.True(t, errors.Is(CheckDomain(DefaultNodeLimit, 0), errors.ErrCodeDegenerateInput))
	assert.True(t, errors.Is(CheckDomain(10, 10), errors.ErrCodeDegenerateInput))
	assert.True(t, errors.Is(CheckDomain(0, 10), errors.ErrCodeInvalidInput))
}

func TestBruteForceLimits(t *testing.T) {
	_, err := BruteForce(perm.GeneratorSet{N: 11}, 2, 10)
	assert.True(t, errors.Is(err, errors.ErrCodeDegenerateInput))

	_, err = BruteForce(perm.GeneratorSet{N: 10}, 8, 10)
	assert.True(t, errors.Is(err, errors.ErrCodeDegenerateInput))

	assert.False(t, BruteForceTractable(10, 6, 10))
	assert.True(t, BruteForceTractable(10, 5, 10))
	assert.False(t, BruteForceTractable(11, 2, 10))
	assert.False(t, BruteForceTractable(0, 2, 10))
	assert.True(t, BruteForceTractable(24, 2, 24))
	assert.False(t, BruteForceTractable(12, 2, 0))

	rho, err := BruteForce(perm.GeneratorSet{N: 3}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(8), rho.Int().Int64())
}

func TestRhoJSON(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	tests := []struct {
		rho  Rho
		want string
	}{
		{FiniteInt64(12), `12`},
		{Finite(huge), `123456789012345678901234567890`},
		{Inf(), `"inf"`},
		{Rho{}, `0`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.rho)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(data))

		var back Rho
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, back.Equal(tt.rho), "%s round-tripped to %s", tt.rho, back)
	}

	var r Rho
	require.NoError(t, json.Unmarshal([]byte(`"24/2"`), &r))
	assert.Equal(t, "12", r.String())
	assert.Error(t, json.Unmarshal([]byte(`"7/2"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`"twelve"`), &r))
}

func TestParseRational(t *testing.T) {
	q, err := ParseRational(" 96 / 4 ")
	require.NoError(t, err)
	assert.Equal(t, "24", q.RatString())

	q, err = ParseRational("7/2")
	require.NoError(t, err)
	assert.Equal(t, "7/2", q.RatString())

	q, err = ParseRational("-5")
	require.NoError(t, err)
	assert.Equal(t, "-5", q.RatString())

	for _, bad := range []string{"", "a/2", "3/b", "1/0", "1.5"} {
		_, err := ParseRational(bad)
		assert.True(t, errors.Is(err, errors.ErrCodeParse), "input %q", bad)
	}
}

func TestRhoSign(t *testing.T) {
	assert.Equal(t, 0, Rho{}.Sign())
	assert.Equal(t, 1, Inf().Sign())
	assert.Equal(t, -1, FiniteInt64(-3).Sign())
	assert.False(t, Inf().Equal(FiniteInt64(1)))
	assert.True(t, Inf().Equal(Inf()))
}
