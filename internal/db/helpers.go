package db

import (
	"strconv"
	"time"
)

// nilIfZeroTime converts a zero time.Time to nil so COALESCE($n, NOW())
// expressions apply the database default.
func nilIfZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// nilIfEmpty converts an empty string to nil for nullable text columns.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// itoa is a short alias used when building positional placeholders.
func itoa(n int) string {
	return strconv.Itoa(n)
}
