package anchor

import (
	"fmt"
	"strings"
	"time"

	"calspan/internal/chrono"
)

const (
	nanosPerSecond = int64(time.Second)
	nanosPerDay    = 24 * int64(time.Hour)
	secondsPerDay  = 86400
)

// Time is a wall-clock time of day without date or zone. Arithmetic wraps
// around midnight.
type Time struct {
	nod int64 // nanoseconds since midnight, [0, nanosPerDay)
}

// NewTime returns the time of day; out of range values wrap around midnight.
func NewTime(hour, minute, second, nanos int) Time {
	n := int64(hour)*int64(time.Hour) + int64(minute)*int64(time.Minute) + int64(second)*nanosPerSecond + int64(nanos)
	return Time{nod: floorMod(n, nanosPerDay)}
}

// TimeOf returns the wall-clock time of t in t's location.
func TimeOf(t time.Time) Time {
	return NewTime(t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

var timeLayouts = []string{"15:04:05.999999999", "15:04"}

// ParseTime reads hh:mm, hh:mm:ss or hh:mm:ss.fffffffff.
func ParseTime(s string) (Time, error) {
	t, err := parseLayouts(s, timeLayouts)
	if err != nil {
		return Time{}, err
	}
	return TimeOf(t), nil
}

func (t Time) clock() (hour, minute, second, nanos int) {
	n := t.nod
	hour = int(n / int64(time.Hour))
	n %= int64(time.Hour)
	minute = int(n / int64(time.Minute))
	n %= int64(time.Minute)
	second = int(n / nanosPerSecond)
	nanos = int(n % nanosPerSecond)
	return
}

// NanoOfDay returns the nanoseconds elapsed since midnight.
func (t Time) NanoOfDay() int64 { return t.nod }

func (t Time) String() string {
	h, m, s, ns := t.clock()
	out := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if ns != 0 {
		out += "." + strings.TrimRight(fmt.Sprintf("%09d", ns), "0")
	}
	return out
}

func (t Time) IsSupported(u chrono.Unit) bool {
	return u.IsTimeBased()
}

func (t Time) Plus(amount int64, u chrono.Unit) Time {
	if !u.IsTimeBased() {
		panic(chrono.UnsupportedUnitError(u))
	}
	unit := u.Nanoseconds()
	perDay := nanosPerDay / unit
	return Time{nod: floorMod(t.nod+(amount%perDay)*unit, nanosPerDay)}
}

func (t Time) Until(end Time, u chrono.Unit) int64 {
	if !u.IsTimeBased() {
		panic(chrono.UnsupportedUnitError(u))
	}
	return (end.nod - t.nod) / u.Nanoseconds()
}

func (t Time) Compare(o Time) int {
	switch {
	case t.nod < o.nod:
		return -1
	case t.nod > o.nod:
		return 1
	}
	return 0
}

// unitsBetween converts a signed span of secs seconds plus nanos
// nanoseconds into whole time-based units, truncating toward zero.
func unitsBetween(secs, nanos int64, u chrono.Unit) int64 {
	secs += nanos / nanosPerSecond
	nanos %= nanosPerSecond
	if secs > 0 && nanos < 0 {
		secs--
		nanos += nanosPerSecond
	} else if secs < 0 && nanos > 0 {
		secs++
		nanos -= nanosPerSecond
	}
	unit := u.Nanoseconds()
	if unit >= nanosPerSecond {
		return secs / (unit / nanosPerSecond)
	}
	return secs*(nanosPerSecond/unit) + nanos/unit
}

func parseLayouts(s string, layouts []string) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
