package utils

import "time"

// FormatRFC3339 formats a time in RFC3339Nano, the storage representation
// used by the repositories. Nano precision keeps Touch() monotonicity
// visible across a save/load round trip.
func FormatRFC3339(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseRFC3339 parses a stored timestamp, accepting both nano and second
// precision
func ParseRFC3339(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
