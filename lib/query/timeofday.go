package query

import (
	"strconv"
	"strings"
)

const asynchronous = "asynchronous"

// bucketOf parses a meeting time range like "8:30AM - 11:00AM" into the
// bucket of its start hour. Empty strings, the "Asynchronous" sentinel and
// anything unparsable report ok=false; with a time filter active such
// meetings are excluded.
func bucketOf(timeStr string) (string, bool) {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" || strings.EqualFold(timeStr, asynchronous) {
		return "", false
	}

	start := strings.TrimSpace(strings.SplitN(timeStr, "-", 2)[0])

	digits := 0
	for digits < len(start) && start[digits] >= '0' && start[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return "", false
	}
	hour, err := strconv.Atoi(start[:digits])
	if err != nil || hour > 23 {
		return "", false
	}

	// bare 24-hour values pass through as-is
	upper := strings.ToUpper(start)
	switch {
	case strings.Contains(upper, "PM") && hour != 12:
		hour += 12
	case strings.Contains(upper, "AM") && hour == 12:
		hour = 0
	}

	switch {
	case hour < 12:
		return "morning", true
	case hour < 17:
		return "afternoon", true
	default:
		return "evening", true
	}
}
