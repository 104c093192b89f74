package codec

import (
	"fmt"
	"regexp"
	"time"
)

var isoProfile = regexp.MustCompile(
	`^(\d{4})(?:-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?)?)?(Z|[+-]\d{2}:?\d{2})?$`)

// ParseDateTime parses s against the ISO-8601 profile accepted by date-time
// properties:
//
//	2024
//	2024-03-01
//	2024-03-01T10:20
//	2024-03-01T10:20:30
//	2024-03-01T10:20:30.123
//
// each optionally followed by Z or a ±hh:mm / ±hhmm offset. A bare year
// expands to January 1st, midnight. Values without an offset are UTC.
func ParseDateTime(s string) (time.Time, error) {
	m := isoProfile.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 date-time", ErrInvalidFormat, s)
	}
	// expand the matched groups into a full RFC3339 layout
	date := m[1] + "-01-01"
	if m[2] != "" {
		date = m[1] + "-" + m[2] + "-" + m[3]
	}
	clock := "00:00:00"
	if m[4] != "" {
		sec := m[6]
		if sec == "" {
			sec = "00"
		}
		clock = m[4] + ":" + m[5] + ":" + sec
		if m[7] != "" {
			clock += "." + m[7]
		}
	}
	zone := m[8]
	switch {
	case zone == "":
		zone = "Z"
	case len(zone) == 5:
		zone = zone[:3] + ":" + zone[3:]
	}
	t, err := time.Parse(time.RFC3339Nano, date+"T"+clock+zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return t, nil
}

// FormatDateTime renders t with millisecond precision only when the
// milliseconds are non-zero.
func FormatDateTime(t time.Time) string {
	if t.Nanosecond()/int(time.Millisecond) != 0 {
		return t.Format("2006-01-02T15:04:05.000Z07:00")
	}
	return t.Format(time.RFC3339)
}
