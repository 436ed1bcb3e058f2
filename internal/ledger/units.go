package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a named denomination with a fixed power-of-ten exponent over the base unit.
type Unit struct {
	Name     string
	Decimals int32
}

var (
	Wei    = Unit{Name: "wei", Decimals: 0}
	Kwei   = Unit{Name: "kwei", Decimals: 3}
	Mwei   = Unit{Name: "mwei", Decimals: 6}
	Gwei   = Unit{Name: "gwei", Decimals: 9}
	Szabo  = Unit{Name: "szabo", Decimals: 12}
	Finney = Unit{Name: "finney", Decimals: 15}
	Ether  = Unit{Name: "ether", Decimals: 18}
)

// DisplayUnit is the unit balances are shown in.
var DisplayUnit = Ether

var units = map[string]Unit{
	Wei.Name:    Wei,
	Kwei.Name:   Kwei,
	Mwei.Name:   Mwei,
	Gwei.Name:   Gwei,
	Szabo.Name:  Szabo,
	Finney.Name: Finney,
	Ether.Name:  Ether,
}

// ParseUnit looks a unit up by name, case-insensitively.
func ParseUnit(name string) (Unit, error) {
	u, ok := units[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Unit{}, ErrInvalidRequest.Explain("unknown unit %q", name)
	}
	return u, nil
}

// FromBase renders a base-unit amount in the given unit without trailing zeros.
func FromBase(amount *big.Int, unit Unit) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -unit.Decimals).String()
}

// Bounds on the decimal exponent of a parsed amount. Anything outside cannot
// be a valid 256-bit base-unit amount, and scaling it would cost time
// proportional to the exponent.
const (
	maxAmountExponent = 78
	maxFractionDigits = 60
	maxBaseAmountBits = 256
)

// ToBase parses a decimal amount expressed in unit into base units. Negative
// amounts, fractions finer than one base unit and values above 2^256-1 are
// rejected.
func ToBase(amount string, unit Unit) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, ErrInvalidRequest.Explain("invalid amount %q", amount).Wrap(err)
	}
	if d.IsNegative() {
		return nil, ErrInvalidRequest.Explain("negative amount %q", amount)
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -(unit.Decimals+maxFractionDigits) {
		return nil, ErrInvalidRequest.Explain("amount %q is out of range", amount)
	}
	base := d.Shift(unit.Decimals)
	if !base.IsInteger() {
		return nil, ErrInvalidRequest.Explain("amount %q is finer than 1 wei", amount)
	}
	v := base.BigInt()
	if v.BitLen() > maxBaseAmountBits {
		return nil, ErrInvalidRequest.Explain("amount %q exceeds 256 bits", amount)
	}
	return v, nil
}

// ToDisplayUnit renders a base-unit amount in ether.
func ToDisplayUnit(amount *big.Int) string {
	return FromBase(amount, DisplayUnit)
}

// ToBaseUnit parses an ether amount into base units.
func ToBaseUnit(amount string) (*big.Int, error) {
	return ToBase(amount, DisplayUnit)
}

// MustToBaseUnit is ToBaseUnit for constants; it panics on malformed input.
func MustToBaseUnit(amount string) *big.Int {
	v, err := ToBaseUnit(amount)
	if err != nil {
		panic(fmt.Sprintf("ledger: %v", err))
	}
	return v
}
