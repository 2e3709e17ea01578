package polya

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/matzehuels/symlump/pkg/errors"
)

// infText is the textual form of the infinity sentinel in JSON, CSV and logs.
const infText = "inf"

// Rho is an orbit count: either an exact non-negative integer or the
// infinity sentinel used when a Pólya term is too large to evaluate.
//
// The zero value is the finite count 0. Rho is immutable; accessors return
// copies.
type Rho struct {
	v   *big.Int
	inf bool
}

// Finite returns the exact count v. A nil v is 0.
func Finite(v *big.Int) Rho {
	if v == nil {
		return Rho{}
	}
	return Rho{v: new(big.Int).Set(v)}
}

// FiniteInt64 returns the exact count v.
func FiniteInt64(v int64) Rho {
	return Rho{v: big.NewInt(v)}
}

// Inf returns the infinity sentinel.
func Inf() Rho {
	return Rho{inf: true}
}

// IsInf reports whether r is the infinity sentinel.
func (r Rho) IsInf() bool {
	return r.inf
}

// Int returns a copy of the exact count, or nil for the infinity sentinel.
func (r Rho) Int() *big.Int {
	if r.inf {
		return nil
	}
	if r.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(r.v)
}

// Sign returns -1, 0 or +1 for a finite count and +1 for infinity.
func (r Rho) Sign() int {
	if r.inf {
		return 1
	}
	if r.v == nil {
		return 0
	}
	return r.v.Sign()
}

// Equal reports whether r and s are the same count.
func (r Rho) Equal(s Rho) bool {
	if r.inf || s.inf {
		return r.inf == s.inf
	}
	return r.Int().Cmp(s.Int()) == 0
}

// String returns the decimal digits of the count, or "inf".
func (r Rho) String() string {
	if r.inf {
		return infText
	}
	return r.Int().String()
}

// MarshalJSON writes a finite count as a JSON number of arbitrary length and
// the sentinel as the string "inf".
func (r Rho) MarshalJSON() ([]byte, error) {
	if r.inf {
		return []byte(`"` + infText + `"`), nil
	}
	return []byte(r.Int().String()), nil
}

// UnmarshalJSON accepts a JSON number, a quoted integer or rational, or "inf".
func (r *Rho) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	v, err := ParseRho(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRho parses "inf", a decimal integer, or an integral rational "num/den".
func ParseRho(s string) (Rho, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, infText) || strings.EqualFold(s, "infinity") {
		return Inf(), nil
	}
	q, err := ParseRational(s)
	if err != nil {
		return Rho{}, err
	}
	if !q.IsInt() {
		return Rho{}, errors.New(errors.ErrCodeConsistency, "orbit count %s is not an integer", s)
	}
	return Finite(q.Num()), nil
}

// ParseRational parses an exact rational written as "num/den" or as a plain
// integer, keeping numerator and denominator as given. A zero denominator is
// a PARSE_ERROR.
func ParseRational(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	num, den, hasDen := strings.Cut(s, "/")
	n, ok := new(big.Int).SetString(strings.TrimSpace(num), 10)
	if !ok {
		return nil, errors.New(errors.ErrCodeParse, "malformed numerator in %q", s)
	}
	d := big.NewInt(1)
	if hasDen {
		if d, ok = new(big.Int).SetString(strings.TrimSpace(den), 10); !ok {
			return nil, errors.New(errors.ErrCodeParse, "malformed denominator in %q", s)
		}
		if d.Sign() == 0 {
			return nil, errors.New(errors.ErrCodeParse, "zero denominator in %q", s)
		}
	}
	return new(big.Rat).SetFrac(n, d), nil
}
