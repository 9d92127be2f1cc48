package timeparse

import "time"

// Providers disagree on timestamp formats: some send RFC3339 with an offset,
// American omits the colon in its offset, Alaska sometimes sends bare local
// times. The parsed value keeps whatever offset the provider reported.
var formats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

func Parse(timeStr string) (time.Time, error) {
	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

// SameDate reports whether t falls on the given calendar date in the
// timestamp's own zone.
func SameDate(t time.Time, date time.Time) bool {
	return t.Year() == date.Year() && t.Month() == date.Month() && t.Day() == date.Day()
}
