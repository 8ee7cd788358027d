// Package report renders analysis and batch results for the terminal.
package report

import (
	"fmt"
	"strings"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat validates s against allowed.
func ParseFormat(s string, allowed ...Format) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
		names = append(names, string(a))
	}
	return "", fmt.Errorf("invalid format: %s (valid: %s)", s, strings.Join(names, ", "))
}

// FormatDuration renders hours in the largest unit that keeps the value at or above one:
// minutes below 1h, hours below 24h, days otherwise, one decimal place.
func FormatDuration(hours float64) string {
	switch {
	case hours < 1:
		return fmt.Sprintf("%.1f minutes", hours*60)
	case hours < 24:
		return fmt.Sprintf("%.1f hours", hours)
	default:
		return fmt.Sprintf("%.1f days", hours/24)
	}
}
