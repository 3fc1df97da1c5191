// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMoney formats an amount in reais with thousands separators.
// e.g., 1234.5 -> "R$ 1,234.50"
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%sR$ %s.%02d", sign, FormatNumber(cents/100), cents%100)
}

// FormatPercent formats a value already expressed in percent.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// FormatRate formats a fraction as a percentage, e.g. 0.035 -> "3.50%".
func FormatRate(v float64) string {
	return FormatPercent(v * 100)
}

// FormatMonths formats a payoff estimate. nil means never.
func FormatMonths(months *int64) string {
	if months == nil {
		return "never"
	}
	switch m := *months; {
	case m == 1:
		return "1 month"
	case m < 12:
		return fmt.Sprintf("%d months", m)
	default:
		years, rest := m/12, m%12
		if rest == 0 {
			return fmt.Sprintf("%d months (%dy)", m, years)
		}
		return fmt.Sprintf("%d months (%dy %dm)", m, years, rest)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatYears formats a fractional number of years.
func FormatYears(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == 1 {
		return s + " year"
	}
	return s + " years"
}
