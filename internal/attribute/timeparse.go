package attribute

import (
	"errors"
	"time"
)

// ErrUnparseableTime is returned by ParseTime when none of the recognized
// layouts match. Timestamp parsing is shared across the OCEL XML, OCEL
// JSON, and XES importers: all three accept the same family of
// ISO-8601-shaped strings.
var ErrUnparseableTime = errors.New("attribute: unparseable timestamp")

// timeLayouts are tried in order; millisecond precision is sufficient per
// the data model, so layouts with and without fractional seconds and with
// and without an explicit zone offset are all accepted.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses s against the recognized timestamp layouts, returning
// ErrUnparseableTime if none match.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrUnparseableTime
}

// ParseTimeFallback parses s like ParseTime but, on failure, returns the
// zero-offset Unix epoch instead of an error — a non-strict fallback for
// importers that must keep going rather than abort a large import over
// one bad timestamp.
func ParseTimeFallback(s string) time.Time {
	t, err := ParseTime(s)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}

	return t
}
