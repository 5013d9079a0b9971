// Package amount holds non-negative integer quantities in smallest token units.
// Token amounts and per-second flow rates both use it; 1e18-scaled values do not
// fit in 64 bits.
package amount

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrInvalid = errors.New("amount must be a non-negative base-10 integer")

// Amount is immutable; every operation returns a new value. The zero value is 0.
type Amount struct{ v *big.Int }

func Zero() Amount { return Amount{} }

func FromUint64(n uint64) Amount { return Amount{v: new(big.Int).SetUint64(n)} }

// FromBig copies b. Negative input is clamped to zero.
func FromBig(b *big.Int) Amount {
	if b == nil || b.Sign() <= 0 {
		return Amount{}
	}
	return Amount{v: new(big.Int).Set(b)}
}

func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalid
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || b.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return Amount{v: b}, nil
}

// MustParse is for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Big returns a copy of the underlying integer.
func (a Amount) Big() *big.Int { return new(big.Int).Set(a.big()) }

func (a Amount) IsZero() bool { return a.v == nil || a.v.Sign() == 0 }

func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

func (a Amount) LessThan(b Amount) bool { return a.Cmp(b) < 0 }

func (a Amount) Add(b Amount) Amount { return Amount{v: new(big.Int).Add(a.big(), b.big())} }

// Sub floors at zero.
func (a Amount) Sub(b Amount) Amount {
	d := new(big.Int).Sub(a.big(), b.big())
	if d.Sign() < 0 {
		return Amount{}
	}
	return Amount{v: d}
}

// CheckedSub reports false instead of flooring when b > a.
func (a Amount) CheckedSub(b Amount) (Amount, bool) {
	if a.Cmp(b) < 0 {
		return Amount{}, false
	}
	return Amount{v: new(big.Int).Sub(a.big(), b.big())}, true
}

func (a Amount) MulUint64(n uint64) Amount {
	return Amount{v: new(big.Int).Mul(a.big(), new(big.Int).SetUint64(n))}
}

// DivUint64 rounds down. Division by zero yields zero.
func (a Amount) DivUint64(n uint64) Amount {
	if n == 0 {
		return Amount{}
	}
	return Amount{v: new(big.Int).Quo(a.big(), new(big.Int).SetUint64(n))}
}

func Min(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func Sum(xs ...Amount) Amount {
	out := new(big.Int)
	for _, x := range xs {
		out.Add(out, x.big())
	}
	return Amount{v: out}
}

func (a Amount) String() string { return a.big().String() }

// JSON encodes as a decimal string; numbers are accepted on input.

func (a Amount) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = Amount{}
		return nil
	}
	raw = strings.Trim(raw, `"`)
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// SQL storage is a decimal string so sqlite does not coerce it to REAL.

func (a Amount) Value() (driver.Value, error) { return a.String(), nil }

func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		p, err := Parse(v)
		if err != nil {
			return err
		}
		*a = p
		return nil
	case []byte:
		return a.Scan(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("%w: %d", ErrInvalid, v)
		}
		*a = FromUint64(uint64(v))
		return nil
	default:
		return fmt.Errorf("amount: cannot scan %T", src)
	}
}
