package cli

import (
	"fmt"
	"strings"
)

// FormatIndianCurrency formats a rupee amount in the Indian numbering system
// (1,00,00,000 rather than 10,000,000).
func FormatIndianCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")

	result := "₹" + formatIndianNumber(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// formatIndianNumber groups an integer string the Indian way: the last three
// digits, then groups of two.
func formatIndianNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	s = s[:n-3]

	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatPercent formats a percentage with an explicit sign for gains.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatOI formats open interest in compact lakh/crore form.
func FormatOI(oi int64) string {
	switch {
	case oi >= 10000000:
		return fmt.Sprintf("%.2f Cr", float64(oi)/10000000)
	case oi >= 100000:
		return fmt.Sprintf("%.2f L", float64(oi)/100000)
	case oi >= 1000:
		return fmt.Sprintf("%.1f K", float64(oi)/1000)
	default:
		return fmt.Sprintf("%d", oi)
	}
}
