package exporter

import (
	"strconv"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool writes flags the way day.csv stores them
func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
