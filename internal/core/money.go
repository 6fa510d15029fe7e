// Package core provides the ledger domain model and money handling.
//
// Amounts are decimal.Decimal throughout; float64 never touches currency
// arithmetic. Parsing accepts both dot and comma decimal separators.
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a monetary string to a decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) separators and an optional
// leading minus sign (refunds are negative transactions). Thousands
// separators are not supported.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("-5")     -> -5
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	body := strings.TrimPrefix(s, "-")
	for _, r := range body {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, fmt.Errorf("invalid amount %q", s)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// FormatAUD renders an amount as an Australian dollar string with two
// fraction digits, e.g. "$1234.50" or "-$12.00". Display only.
func FormatAUD(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Cents returns the amount rounded half-up to whole cents. Used where an
// integer cent value is needed (rollup storage); calculations stay decimal.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}
