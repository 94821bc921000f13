package interval

import (
	"strconv"
	"strings"

	"calspan/internal/anchor"
	"calspan/internal/chrono"
	"calspan/internal/duration"
)

// Parse reads any interval shape, with anchors read by parseAnchor:
//
//	P1D                     PureDuration
//	2024-01-01/2024-01-08   TwoPoint
//	P1D/2024-01-03          DurationEnd
//	2024-01-01/P1D          DurationStart
//	R3/2024-01-01/P1D       Repeated, three times
//	R/P1D/2024-01-03        Repeated forever
//
// A part is a duration when it starts with P, after an optional sign.
func Parse[T chrono.Temporal[T]](s string, parseAnchor func(string) (T, error)) (Interval[T], error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return nil, chrono.Malformed(s, "empty interval")
	}
	if text[0] != 'R' {
		return parsePlain(s, text, parseAnchor)
	}

	prefix, rest, ok := strings.Cut(text, "/")
	if !ok || rest == "" {
		return nil, chrono.Malformed(s, "repeated interval needs R<n>/ followed by an interval")
	}
	repetition := Infinity
	if n := prefix[1:]; n != "" {
		if strings.IndexFunc(n, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return nil, chrono.Malformed(s, "invalid repetition %q", n)
		}
		v, err := strconv.Atoi(n)
		if err != nil {
			return nil, chrono.MalformedCause(s, err, "invalid repetition %q", n)
		}
		repetition = v
	}
	if len(splitParts(rest)) > 2 {
		return nil, chrono.Malformed(s, "repeated interval has too many parts")
	}
	base, err := parsePlain(s, rest, parseAnchor)
	if err != nil {
		return nil, err
	}
	r, err := NewRepeated(base, repetition)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ParsePoint reads an interval whose anchors may be of any kind.
func ParsePoint(s string) (Interval[anchor.Point], error) {
	return Parse(s, anchor.Parse)
}

// MustParsePoint is like ParsePoint but panics on error.
func MustParsePoint(s string) Interval[anchor.Point] {
	iv, err := ParsePoint(s)
	if err != nil {
		panic(err)
	}
	return iv
}

func parsePlain[T chrono.Temporal[T]](input, text string, parseAnchor func(string) (T, error)) (Interval[T], error) {
	parts := splitParts(text)
	switch len(parts) {
	case 1:
		if !isDuration(parts[0]) {
			return nil, chrono.Malformed(input, "single part %q is not a duration", parts[0])
		}
		d, err := duration.Parse(parts[0])
		if err != nil {
			return nil, err
		}
		return NewPureDuration[T](d), nil
	case 2:
	default:
		return nil, chrono.Malformed(input, "interval has %d parts, want 1 or 2", len(parts))
	}

	left, right := parts[0], parts[1]
	switch {
	case isDuration(left) && isDuration(right):
		return nil, chrono.Malformed(input, "interval has two durations")
	case isDuration(left):
		d, err := duration.Parse(left)
		if err != nil {
			return nil, err
		}
		end, err := readAnchor(input, right, parseAnchor)
		if err != nil {
			return nil, err
		}
		return NewDurationEnd(d, end), nil
	case isDuration(right):
		start, err := readAnchor(input, left, parseAnchor)
		if err != nil {
			return nil, err
		}
		d, err := duration.Parse(right)
		if err != nil {
			return nil, err
		}
		return NewDurationStart(d, start), nil
	}
	start, err := readAnchor(input, left, parseAnchor)
	if err != nil {
		return nil, err
	}
	end, err := readAnchor(input, right, parseAnchor)
	if err != nil {
		return nil, err
	}
	return NewTwoPoint(start, end), nil
}

func readAnchor[T any](input, text string, parseAnchor func(string) (T, error)) (T, error) {
	v, err := parseAnchor(text)
	if err != nil {
		var zero T
		return zero, chrono.MalformedCause(input, err, "invalid anchor %q", text)
	}
	return v, nil
}

// splitParts splits on '/' outside of bracketed zone names such as
// [America/New_York].
func splitParts(text string) []string {
	var parts []string
	depth, from := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '/':
			if depth == 0 {
				parts = append(parts, text[from:i])
				from = i + 1
			}
		}
	}
	return append(parts, text[from:])
}

func isDuration(part string) bool {
	part = strings.TrimLeft(part, "+-")
	return strings.HasPrefix(part, "P")
}
