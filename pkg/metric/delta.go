// Package metric computes the logarithmic reduction statistic delta.
//
// delta compares the size of a network's edge-labeled state space, N*log(M),
// with the number of symmetry-distinct node labelings rho:
//
//	delta = round(N * log10(M) / log10(rho))
//
// Degenerate inputs never fail. They produce the [Inf] sentinel instead.
package metric

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/polya"
)

const infText = "inf"

// Value is a rounded delta or the infinity sentinel. The zero value is 0.
type Value struct {
	v   int64
	inf bool
}

// Finite returns the value v.
func Finite(v int64) Value { return Value{v: v} }

// Inf returns the infinity sentinel.
func Inf() Value { return Value{inf: true} }

// IsInf reports whether d is the infinity sentinel.
func (d Value) IsInf() bool { return d.inf }

// Int64 returns the finite value. It is 0 for the sentinel.
func (d Value) Int64() int64 {
	if d.inf {
		return 0
	}
	return d.v
}

// String returns the decimal value or "inf".
func (d Value) String() string {
	if d.inf {
		return infText
	}
	return strconv.FormatInt(d.v, 10)
}

// MarshalJSON writes a JSON number, or the string "inf" for the sentinel.
func (d Value) MarshalJSON() ([]byte, error) {
	if d.inf {
		return []byte(`"` + infText + `"`), nil
	}
	return []byte(strconv.FormatInt(d.v, 10)), nil
}

// UnmarshalJSON accepts a JSON number, a quoted number, or "inf".
func (d *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	v, err := ParseValue(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseValue parses "inf" or a decimal integer.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, infText) {
		return Inf(), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Value{}, errors.Wrap(errors.ErrCodeParse, err, "malformed delta %q", s)
	}
	return Finite(v), nil
}

// Delta computes round(n*log10(m) / log10(rho)).
//
// The result is Inf when m <= 0, rho <= 0, rho == 1 (log10(rho) is zero),
// rho is itself Inf, or the quotient does not fit in an int64. Halves round
// to even.
func Delta(n, m int, rho polya.Rho) Value {
	if m <= 0 || rho.IsInf() || rho.Sign() <= 0 {
		return Inf()
	}
	den := Log10(rho.Int())
	if den == 0 {
		return Inf()
	}
	q := float64(n) * math.Log10(float64(m)) / den
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return Inf()
	}
	r := math.RoundToEven(q)
	if r >= math.MaxInt64 || r <= math.MinInt64 {
		return Inf()
	}
	return Finite(int64(r))
}

// Log10 returns log10(x) for a positive integer of any size, computed from its
// bit length and leading 53 bits so it never overflows a float64. It returns
// -Inf for x <= 0 and 0 for x == 1.
func Log10(x *big.Int) float64 {
	if x == nil || x.Sign() <= 0 {
		return math.Inf(-1)
	}
	if x.IsInt64() {
		return math.Log10(float64(x.Int64()))
	}
	shift := x.BitLen() - 53
	mant := new(big.Int).Rsh(x, uint(shift))
	return math.Log10(float64(mant.Int64())) + float64(shift)*math.Log10(2)
}
