// Package core defines the transaction domain model: construction,
// validation, the configuration catalog, and summary reduction.
//
// This file contains amount parsing for user-supplied strings.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a float64 amount rounded to two
// fractional digits. It accepts both dot (12.34) and comma (12,34) decimal
// separators. Signs are rejected; only positive values are meaningful here
// and zero is left for Validate to report.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}
