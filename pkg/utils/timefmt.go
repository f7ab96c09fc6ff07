package utils

import "time"

// ISOLayout is the ISO-8601 layout used for every stored timestamp.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// Now is swapped out in tests.
var Now = time.Now

// ISOTime formats t in UTC.
func ISOTime(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ISOTimePtr formats an optional time; nil or zero becomes "".
func ISOTimePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return ISOTime(*t)
}

// NowISO is the current wall-clock time as an ISO-8601 string.
func NowISO() string {
	return ISOTime(Now())
}
