// Package amount turns the user's tip selection into exact token base units.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmpty         = errors.New("amount is empty")
	ErrInvalidFormat = errors.New("invalid amount format")
	ErrNonPositive   = errors.New("amount must be greater than zero")
)

// unsignedDecimal accepts digits with an optional fractional part.
// Signs, exponents, grouping separators and a bare "." are rejected.
var unsignedDecimal = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ToBaseUnits scales a decimal amount by 10^decimals.
// Fractional digits past the token precision are truncated, never rounded.
func ToBaseUnits(text string, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("negative token decimals: %d", decimals)
	}

	s := strings.TrimSpace(text)
	if s == "" {
		return nil, ErrEmpty
	}
	if !unsignedDecimal.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	units := d.Truncate(decimals).Shift(decimals).BigInt()
	if units.Sign() <= 0 {
		return nil, ErrNonPositive
	}
	return units, nil
}

// FormatBaseUnits renders base units as a decimal string without trailing zeros.
func FormatBaseUnits(units *big.Int, decimals int32) string {
	if units == nil {
		return "0"
	}
	return decimal.NewFromBigInt(units, -decimals).String()
}
