package common

import "time"

// timestampLayout is the fixed display format for entry timestamps. Output
// must be deterministic, so there is no locale handling.
const timestampLayout = "1/2/2006, 3:04:05 PM"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses an entry timestamp defensively. Legacy entries may carry
// values that are not valid ISO-8601; those report ok=false and are excluded
// from time-windowed computations while staying in every other view.
func ParseTime(iso string) (time.Time, bool) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a timestamp for reports and tooltips. Values that
// do not parse are shown as stored.
func FormatTimestamp(iso string) string {
	t, ok := ParseTime(iso)
	if !ok {
		return iso
	}
	return t.UTC().Format(timestampLayout)
}

// FormatClock renders an already-parsed time in the same display format.
func FormatClock(t time.Time) string {
	return t.Format(timestampLayout)
}
