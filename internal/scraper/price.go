package scraper

import (
	"strconv"
	"strings"
)

// ParsePrice turns a rendered price label into a number. Everything except
// digits, commas and periods is dropped. When both separators appear the last
// one is the decimal separator; when only one kind appears a single occurrence
// is decimal and repeated occurrences are thousands separators. Unparseable
// input yields 0, which the validity filter rejects.
func ParsePrice(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := strings.TrimRight(b.String(), ".,")
	if clean == "" {
		return 0
	}

	decimal := byte(0)
	lastComma := strings.LastIndexByte(clean, ',')
	lastDot := strings.LastIndexByte(clean, '.')
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			decimal = ','
		} else {
			decimal = '.'
		}
	case lastComma >= 0 && strings.Count(clean, ",") == 1:
		decimal = ','
	case lastDot >= 0 && strings.Count(clean, ".") == 1:
		decimal = '.'
	}

	cut := -1
	if decimal != 0 {
		cut = strings.LastIndexByte(clean, decimal)
	}

	var n strings.Builder
	for i := 0; i < len(clean); i++ {
		c := clean[i]
		switch {
		case i == cut:
			n.WriteByte('.')
		case c == ',' || c == '.':
		default:
			n.WriteByte(c)
		}
	}

	value, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0
	}
	return value
}
