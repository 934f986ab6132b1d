package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCents converts a decimal money string as Shopify sends it ("10.00",
// "0.5", "3") into integer cents. Fractions beyond two places are rejected
// rather than silently truncated.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	cents := w * 100
	if frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("parse amount %q: more than two decimal places", s)
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", s, err)
		}
		cents += f
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}

// FormatCents renders integer cents as a two-place decimal string.
func FormatCents(c int64) string {
	neg := ""
	if c < 0 {
		neg = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", neg, c/100, c%100)
}
