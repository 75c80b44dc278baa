package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizePrice keeps only ASCII digits and dots from free-text prices.
// Dots left dangling at either end (currency abbreviations such as "Rs.")
// are trimmed, so "Rs. 1,200" becomes "1200".
func NormalizePrice(text string) string {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}

// ParsePrice normalizes text and parses it as a decimal.
func ParsePrice(text string) (decimal.Decimal, bool) {
	s := NormalizePrice(text)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
