package polya

import (
	"math"
	"math/big"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/group"
)

const (
	// DefaultAlphabet is the number of states per node: binary labelings.
	DefaultAlphabet = 2

	// DefaultMaxTermBits caps the size of a single Pólya term. 2^(1<<26) has
	// about twenty million decimal digits, far beyond any useful count.
	DefaultMaxTermBits = 1 << 26

	// DefaultNodeLimit is the network size at which analysis is refused.
	DefaultNodeLimit = 100_000_000
)

// Limits bounds the arithmetic of an orbit count.
type Limits struct {
	// MaxTermBits is the largest bit length a term class_size * k^c may
	// reach before the count becomes the infinity sentinel.
	// Zero means DefaultMaxTermBits.
	MaxTermBits int
}

func (l Limits) maxTermBits() int {
	if l.MaxTermBits <= 0 {
		return DefaultMaxTermBits
	}
	return l.MaxTermBits
}

// CheckDomain rejects domain sizes the engine will not analyze. A size of
// nodeLimit or more is DEGENERATE_INPUT; nodeLimit <= 0 means DefaultNodeLimit.
func CheckDomain(n, nodeLimit int) error {
	if nodeLimit <= 0 {
		nodeLimit = DefaultNodeLimit
	}
	if n <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "domain size must be positive, got %d", n)
	}
	if n >= nodeLimit {
		return errors.New(errors.ErrCodeDegenerateInput, "network has %d nodes, limit is %d", n, nodeLimit)
	}
	return nil
}

// Count returns the number of orbits of g acting on labelings of n points
// with k labels:
//
//	rho = (1/|G|) * sum over classes C of |C| * k^cycles(rep(C), n)
//
// The sum is accumulated exactly and divided once at the end. A quotient that
// is not an integer means the class data is wrong and is reported as
// CONSISTENCY_ERROR. If any term would exceed lim.MaxTermBits bits, Count
// stops and returns Inf.
func Count(g *group.Group, n, k int, lim Limits) (Rho, error) {
	if g == nil || g.Order == nil || g.Order.Sign() <= 0 {
		return Rho{}, errors.New(errors.ErrCodeConsistency, "group order must be positive")
	}
	if n <= 0 {
		return Rho{}, errors.New(errors.ErrCodeInvalidInput, "domain size must be positive, got %d", n)
	}
	if k <= 0 {
		return Rho{}, errors.New(errors.ErrCodeInvalidInput, "alphabet size must be positive, got %d", k)
	}

	maxBits := float64(lim.maxTermBits())
	bitsPerCycle := math.Log2(float64(k))
	base := big.NewInt(int64(k))
	powers := make(map[int]*big.Int)

	sum := new(big.Int)
	term := new(big.Int)
	for i, c := range g.Classes {
		if c.Size == nil || c.Size.Sign() <= 0 {
			return Rho{}, errors.New(errors.ErrCodeConsistency, "class %d has size %v", i+1, c.Size)
		}
		if m := c.Representative.MaxPoint(); m >= n {
			return Rho{}, errors.New(errors.ErrCodeConsistency, "class %d representative moves point %d outside %d points", i+1, m+1, n)
		}
		cycles := c.Representative.CycleCount(n)
		if float64(c.Size.BitLen())+float64(cycles)*bitsPerCycle > maxBits {
			return Inf(), nil
		}

		pow, ok := powers[cycles]
		if !ok {
			pow = new(big.Int).Exp(base, big.NewInt(int64(cycles)), nil)
			powers[cycles] = pow
		}
		sum.Add(sum, term.Mul(c.Size, pow))
	}

	q := new(big.Rat).SetFrac(sum, g.Order)
	if !q.IsInt() {
		return Rho{}, errors.New(errors.ErrCodeConsistency, "orbit count %s is not an integer", q.RatString())
	}
	return Finite(q.Num()), nil
}
