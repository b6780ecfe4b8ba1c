package progress

import "time"

// ParseTime parses an ISO-8601 timestamp as exchanged with the remote
// persistence boundary. Empty or malformed input yields nil rather than an
// error so that a bad remote value never poisons a whole load.
func ParseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// FormatTime renders a timestamp for the remote boundary. Nil becomes the
// empty string.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// SameUTCMonth reports whether t falls in the same UTC calendar month as ref.
// Comparisons are UTC-normalized so month boundaries don't shift with the
// local timezone.
func SameUTCMonth(t, ref time.Time) bool {
	t, ref = t.UTC(), ref.UTC()
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}

// SameUTCYear reports whether t falls in the same UTC calendar year as ref.
func SameUTCYear(t, ref time.Time) bool {
	return t.UTC().Year() == ref.UTC().Year()
}
