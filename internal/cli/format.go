// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAmount formats a money amount with two decimals and comma separators.
// e.g., 1234567.5 -> "1,234,567.50"
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return d.StringFixed(2)
	}
	out := FormatNumber(n) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatMoney formats a float amount from an aggregate series.
func FormatMoney(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	return FormatAmount(decimal.NewFromFloat(f))
}

// FormatCompact shortens large amounts for chart axes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(f float64) string {
	abs := math.Abs(f)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", f/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", f/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", f/1_000)
	default:
		return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
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

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRemaining formats earning minus expenses with an explicit sign.
func FormatRemaining(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + FormatAmount(d.Neg())
	}
	return "+" + FormatAmount(d)
}

// FormatMonth renders a month selection, e.g. "March 2024".
func FormatMonth(month, year int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%02d/%d", month, year)
	}
	return time.Month(month).String() + " " + strconv.Itoa(year)
}
