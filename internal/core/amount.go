// Package core holds the transaction domain model and amount parsing.
//
// Amounts are decimal.Decimal values; floats never enter calculations.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-typed amount into a positive decimal rounded
// to two places. It accepts both dot (12.34) and comma (12,34) separators
// and an optional leading currency symbol. Sign prefixes are rejected: the
// transaction type decides the sign, not the input.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("$45")    -> 45
//	ParseAmount("12.345") -> 12.35 (half-up on the third decimal)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("%w: sign prefix not allowed", ErrInvalidAmount)
	}
	// Normalize decimal comma
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
