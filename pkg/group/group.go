package group

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/big"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/perm"
)

// Class is one conjugacy class: a representative element and the exact
// number of elements conjugate to it.
type Class struct {
	Representative perm.Permutation
	Size           *big.Int
}

// Group is the result of analysing a generator set: the exact group order and
// its partition into conjugacy classes. N is the size of the domain the group
// acts on.
type Group struct {
	N       int
	Order   *big.Int
	Classes []Class
}

// Oracle computes the order and conjugacy classes of the group generated by
// a set of permutations.
//
// Implementations must honour ctx: a call whose context is cancelled or
// whose deadline passes must return promptly with the context's error. The
// result must cover the same domain size as gens.
type Oracle interface {
	Analyze(ctx context.Context, gens perm.GeneratorSet) (*Group, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, gens perm.GeneratorSet) (*Group, error)

// Analyze calls f(ctx, gens).
func (f OracleFunc) Analyze(ctx context.Context, gens perm.GeneratorSet) (*Group, error) {
	return f(ctx, gens)
}

// Name reports the name an oracle uses in logs and metrics: the result of its
// Name method if it has one, otherwise "custom".
func Name(o Oracle) string {
	if n, ok := o.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}

// Trivial returns the trivial group on n points: order 1 with the identity as
// its only conjugacy class.
func Trivial(n int) *Group {
	return &Group{
		N:     n,
		Order: big.NewInt(1),
		Classes: []Class{
			{Representative: perm.Identity(), Size: big.NewInt(1)},
		},
	}
}

// Analyze runs oracle on gens and validates the answer.
//
// Generator sets with no non-identity element never reach the oracle; they
// yield the trivial group. A deadline that expires during the call is
// reported as TIMEOUT. An answer that violates a group invariant is reported
// as CONSISTENCY_ERROR and is never returned to the caller.
func Analyze(ctx context.Context, oracle Oracle, gens perm.GeneratorSet) (*Group, error) {
	if gens.N <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "domain size must be positive, got %d", gens.N)
	}
	if gens.Trivial() {
		return Trivial(gens.N), nil
	}

	g, err := oracle.Analyze(ctx, gens)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "group analysis exceeded its deadline")
		}
		return nil, err
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeConsistency, "oracle returned no group")
	}
	if g.N != gens.N {
		return nil, errors.New(errors.ErrCodeConsistency, "oracle answered for %d points, asked about %d", g.N, gens.N)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// maxLagrangePoints bounds the domains for which Validate computes N!.
const maxLagrangePoints = 1000

// Validate checks the invariants every oracle answer must satisfy:
// the order is at least 1, every class is non-empty, every representative
// acts on the group's domain, and the class sizes sum to the order. On
// domains of up to maxLagrangePoints points the order must also divide N!.
func (g *Group) Validate() error {
	if g.Order == nil || g.Order.Sign() <= 0 {
		return errors.New(errors.ErrCodeConsistency, "group order %v is not positive", g.Order)
	}
	if len(g.Classes) == 0 {
		return errors.New(errors.ErrCodeConsistency, "group has no conjugacy classes")
	}

	sum := new(big.Int)
	for i, c := range g.Classes {
		if c.Size == nil || c.Size.Sign() <= 0 {
			return errors.New(errors.ErrCodeConsistency, "class %d has size %v", i+1, c.Size)
		}
		if m := c.Representative.MaxPoint(); m >= g.N {
			return errors.New(errors.ErrCodeConsistency, "class %d representative %s moves point %d outside %d points", i+1, c.Representative, m+1, g.N)
		}
		sum.Add(sum, c.Size)
	}
	if sum.Cmp(g.Order) != 0 {
		return errors.New(errors.ErrCodeConsistency, "class sizes sum to %s but group order is %s", sum, g.Order)
	}
	if g.N <= maxLagrangePoints {
		if new(big.Int).Rem(perm.Factorial(g.N), g.Order).Sign() != 0 {
			return errors.New(errors.ErrCodeConsistency, "group order %s does not divide %d!", g.Order, g.N)
		}
	}
	return nil
}

// String summarises the group for logs.
func (g *Group) String() string {
	return fmt.Sprintf("group(order=%s, classes=%d, points=%d)", g.Order, len(g.Classes), g.N)
}
