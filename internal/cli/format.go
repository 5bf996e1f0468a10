// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/reflow/truncate"
)

// FormatKcal formats a calorie value, rounded to whole kcal.
// e.g., 1234.6 -> "1,235 kcal"
func FormatKcal(v float64) string {
	return FormatNumber(int64(math.Round(v))) + " kcal"
}

// FormatGrams formats a gram value with one decimal below 10 g.
// e.g., 2.45 -> "2.5g", 37.8 -> "38g"
func FormatGrams(v float64) string {
	if v != 0 && math.Abs(v) < 10 {
		s := strconv.FormatFloat(v, 'f', 1, 64)
		return strings.TrimSuffix(s, ".0") + "g"
	}
	return FormatNumber(int64(math.Round(v))) + "g"
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

// FormatPercent formats a 0-100 value as a whole percentage.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// FormatPortion formats a portion slider value.
func FormatPortion(pct float64) string {
	return fmt.Sprintf("%.0f%% portion", pct)
}

// FormatProgress formats "current / goal" with the unit of the value.
func FormatProgress(current, goal float64, grams bool) string {
	if grams {
		return FormatGrams(current) + " / " + FormatGrams(goal)
	}
	return FormatNumber(int64(math.Round(current))) + " / " + FormatKcal(goal)
}

// FormatLoggedAt formats an entry timestamp relative to now: clock time for
// today, a short date otherwise.
func FormatLoggedAt(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	lt := t.Local()
	ln := now.Local()
	if lt.Year() == ln.Year() && lt.YearDay() == ln.YearDay() {
		return lt.Format("15:04")
	}
	return lt.Format("Jan 2 15:04")
}

// TruncateName shortens a meal name to fit width cells, adding an ellipsis.
func TruncateName(name string, width int) string {
	if width <= 0 {
		return ""
	}
	return truncate.StringWithTail(name, uint(width), "…")
}
