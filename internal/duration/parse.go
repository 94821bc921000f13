package duration

import (
	"strconv"
	"strings"

	"github.com/govalues/decimal"

	"calspan/internal/chrono"
)

// designator positions in the grammar; components must appear in this order
// and at most once.
const (
	posYears = iota
	posMonths
	posWeeks
	posDays
	posHours
	posMinutes
	posSeconds
)

// MustParse is Parse that panics on error. Intended for tests and fixed
// literals, not user input.
func MustParse(text string) Duration {
	d, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse reads the text form written by Format:
//
//	["-"|"+"]"P"[nY][nM][nW][nD]["T"[nH][nM][n["."f]"S"]]
//
// A leading sign applies to every component; each number may also carry its
// own sign. T must precede hour, minute and second components. Only the
// seconds may have a fraction, of at most nine digits; "," is accepted as
// the decimal mark. The result is normalized.
func Parse(text string) (Duration, error) {
	s := text
	if s == "" {
		return Zero, chrono.Malformed(text, "empty duration")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" || (s[0] != 'P' && s[0] != 'p') {
		return Zero, chrono.Malformed(text, "duration must start with P")
	}
	s = s[1:]
	if s == "" {
		return Zero, chrono.Malformed(text, "duration has no components")
	}

	var fields [posSeconds + 1]int64
	var nanos int64
	last := -1
	inTime := false
	seen := false

	for s != "" {
		if s[0] == 'T' || s[0] == 't' {
			if inTime {
				return Zero, chrono.Malformed(text, "multiple T separators")
			}
			inTime = true
			s = s[1:]
			if s == "" {
				return Zero, chrono.Malformed(text, "T separator without time components")
			}
			continue
		}

		number, rest := scanNumber(s)
		if number == "" {
			return Zero, chrono.Malformed(text, "expected number at %q", s)
		}
		if rest == "" {
			return Zero, chrono.Malformed(text, "number %s has no designator", number)
		}
		des := rest[0] &^ 0x20 // upper-case ASCII letters
		s = rest[1:]

		pos, err := designatorPos(text, des, inTime)
		if err != nil {
			return Zero, err
		}
		if pos <= last {
			return Zero, chrono.Malformed(text, "designator %c out of order or repeated", des)
		}
		last = pos
		seen = true

		if pos == posSeconds {
			secs, ns, err := parseSeconds(text, number)
			if err != nil {
				return Zero, err
			}
			fields[pos], nanos = secs, ns
			continue
		}
		if strings.ContainsAny(number, ".,") {
			return Zero, chrono.Malformed(text, "only seconds may have a fraction")
		}
		v, err := strconv.ParseInt(number, 10, 64)
		if err != nil {
			return Zero, chrono.MalformedCause(text, err, "invalid %c component", des)
		}
		fields[pos] = v
	}
	if !seen {
		return Zero, chrono.Malformed(text, "duration has no components")
	}

	d := New(fields[posYears], fields[posMonths], fields[posWeeks], fields[posDays],
		fields[posHours], fields[posMinutes], fields[posSeconds], nanos)
	if neg {
		d = d.Negated()
	}
	return d, nil
}

func designatorPos(text string, des byte, inTime bool) (int, error) {
	if inTime {
		switch des {
		case 'H':
			return posHours, nil
		case 'M':
			return posMinutes, nil
		case 'S':
			return posSeconds, nil
		}
		return 0, chrono.Malformed(text, "designator %c not allowed after T", des)
	}
	switch des {
	case 'Y':
		return posYears, nil
	case 'M':
		return posMonths, nil
	case 'W':
		return posWeeks, nil
	case 'D':
		return posDays, nil
	case 'H', 'S':
		return 0, chrono.Malformed(text, "designator %c requires a preceding T", des)
	}
	return 0, chrono.Malformed(text, "unknown designator %c", des)
}

// scanNumber splits an optionally signed decimal number off the front of s.
func scanNumber(s string) (number, rest string) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' || s[i] == ',') {
		if s[i] >= '0' && s[i] <= '9' {
			digits++
		}
		i++
	}
	if digits == 0 {
		return "", s
	}
	return s[:i], s[i:]
}

// parseSeconds splits a seconds component into whole seconds and
// nanoseconds with the same sign.
func parseSeconds(text, number string) (int64, int64, error) {
	number = strings.Replace(number, ",", ".", 1)
	if _, frac, ok := strings.Cut(number, "."); ok {
		if frac == "" || len(frac) > 9 {
			return 0, 0, chrono.Malformed(text, "seconds fraction must have 1 to 9 digits")
		}
	}
	dec, err := decimal.Parse(strings.TrimPrefix(number, "+"))
	if err != nil {
		return 0, 0, chrono.MalformedCause(text, err, "invalid seconds component")
	}
	secs, nanos, ok := dec.Int64(9)
	if !ok {
		return 0, 0, chrono.Malformed(text, "seconds component out of range")
	}
	return secs, nanos, nil
}
