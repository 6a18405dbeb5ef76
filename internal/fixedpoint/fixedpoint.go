package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// FractionalDigits is the number of fractional digits carried by the
// fixed-point representation: a stored value equals the decimal quantity
// multiplied by 10^12.
const FractionalDigits = 12

var (
	// ErrInvalidInput marks negative or malformed decimal input.
	ErrInvalidInput = errors.New("invalid decimal input")
	// ErrOverflow marks an integer part that no longer fits 128 bits once scaled.
	ErrOverflow = errors.New("decimal too large for 128 bits")
)

// MaxUint128 is 2^128 - 1, the largest representable fixed-point value.
var MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

var scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(FractionalDigits), nil)

// FromDecimal converts d into an unsigned 128-bit fixed-point integer with
// twelve fractional digits.
//
// The integer part is scaled by 10^12 and must fit 128 bits, otherwise
// ErrOverflow. The fractional part is truncated to twelve digits, never
// rounded, and right-padded with zeros when shorter. The two components are
// combined with a saturating add: a sum past 2^128-1 clamps to MaxUint128.
// Only the integer scaling step can overflow; fractional spill saturates.
func FromDecimal(d decimal.Decimal) (*big.Int, error) {
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: negative value %s", ErrInvalidInput, d)
	}

	trunc := d.Truncate(0)
	scaled := new(big.Int).Mul(trunc.BigInt(), scale)
	if scaled.Cmp(MaxUint128) > 0 {
		return nil, fmt.Errorf("%w: integer part %s", ErrOverflow, trunc)
	}

	// Fraction is in [0, 1); shifted and truncated it stays below 10^12.
	frac := d.Sub(trunc).Shift(FractionalDigits).Truncate(0).BigInt()

	sum := scaled.Add(scaled, frac)
	if sum.Cmp(MaxUint128) > 0 {
		sum.Set(MaxUint128)
	}
	return sum, nil
}

// FromString parses s as a decimal and converts it via FromDecimal.
// Non-numeric input maps to ErrInvalidInput.
func FromString(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInput, s)
	}
	return FromDecimal(d)
}
