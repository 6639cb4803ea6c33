// Package core provides the record model and amount parsing.
//
// This file contains the parser used for amounts typed by a user. Amounts are
// currency agnostic magnitudes; only the display layer localises them.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a positive amount.
//
// Grouping commas are ignored ("1,234.50" is 1234.5). Empty input, signs that
// lead to a non-positive value, and anything that is not a decimal number
// return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("100")      -> 100, nil
//	ParseAmount("1,234.5")  -> 1234.5, nil
//	ParseAmount("-5")       -> 0, ErrInvalidAmount
//	ParseAmount("0")        -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	a := d.InexactFloat64()
	if err := ValidateAmount(a); err != nil {
		return 0, err
	}
	return a, nil
}
