package anchor

import (
	"strings"
	"time"

	"calspan/internal/chrono"
)

// Parse reads any anchor kind, choosing the kind from the shape of s:
//
//	2024-01                          year-month
//	2024-01-31                       date
//	09:30, 09:30:00.5                time
//	09:30Z, 09:30+02:00              offset time
//	2024-01-31T09:30                 date-time
//	2024-01-31T09:30Z[Europe/Paris]  offset date-time
func Parse(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Point{}, chrono.Malformed(s, "empty point")
	}
	p, err := parse(s)
	if err != nil {
		return Point{}, chrono.MalformedCause(s, err, "unrecognised point %q", s)
	}
	return p, nil
}

func parse(s string) (Point, error) {
	if strings.Contains(s, "T") {
		if hasZone(s[strings.IndexByte(s, 'T'):]) {
			v, err := ParseOffsetDateTime(s)
			return FromOffsetDateTime(v), err
		}
		v, err := ParseDateTime(s)
		return FromDateTime(v), err
	}
	if strings.Contains(s, ":") {
		if hasZone(s) {
			v, err := ParseOffsetTime(s)
			return FromOffsetTime(v), err
		}
		v, err := ParseTime(s)
		return FromTime(v), err
	}
	if strings.Count(s, "-") == 1 && !strings.HasPrefix(s, "-") {
		v, err := ParseYearMonth(s)
		return FromYearMonth(v), err
	}
	v, err := ParseDate(s)
	return FromDate(v), err
}

// hasZone reports whether the time part of a value carries Z, an offset or a
// bracketed zone name.
func hasZone(timePart string) bool {
	return strings.ContainsAny(timePart, "Z+-[")
}

// MustParse is like Parse but panics on error. It is meant for tests and
// package level values.
func MustParse(s string) Point {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseOrNow reads s, or returns the current instant as an offset date-time
// when s is blank.
func ParseOrNow(s string, now func() time.Time) (Point, error) {
	if strings.TrimSpace(s) == "" {
		return FromOffsetDateTime(OffsetDateTimeOf(now())), nil
	}
	return Parse(s)
}

func (p Point) MarshalText() ([]byte, error) {
	if p.kind == 0 {
		return nil, chrono.InvalidValue("cannot marshal an empty point")
	}
	return []byte(p.String()), nil
}

func (p *Point) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
