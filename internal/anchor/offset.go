package anchor

import (
	"fmt"
	"strings"
	"time"

	"calspan/internal/chrono"
)

// OffsetDateTime is an instant with the zone it was expressed in. Calendar
// units are applied to the local date-time in that zone; time-based units
// are applied to the instant.
type OffsetDateTime struct {
	t time.Time

	// zoned is set when t carries the rules of a named zone, written as
	// the [Zone] suffix. Otherwise t is pinned to a fixed offset.
	zoned bool
}

// OffsetDateTimeOf returns t as an offset date-time. A named location keeps
// its zone rules; time.Local and unnamed zones are pinned to t's offset.
func OffsetDateTimeOf(t time.Time) OffsetDateTime {
	t = t.Round(0)
	if NamedZone(t.Location()) {
		return OffsetDateTime{t: t, zoned: true}
	}
	return OffsetDateTime{t: pinOffset(t)}
}

// NamedZone reports whether loc carries the rules of a named zone rather
// than a fixed offset, UTC or the host's local zone.
func NamedZone(loc *time.Location) bool {
	switch loc {
	case time.UTC, time.Local:
		return false
	}
	name := loc.String()
	return name != "" && name != "UTC" && name != "Local"
}

// pinOffset moves t to a fixed zone with its current offset so that no
// host or zone rules apply to later arithmetic.
func pinOffset(t time.Time) time.Time {
	_, off := t.Zone()
	if off == 0 {
		return t.UTC()
	}
	return t.In(time.FixedZone("", off))
}

// ParseOffsetDateTime reads an RFC 3339 date-time, optionally followed by a
// bracketed IANA zone name: 2024-03-10T09:00:00-05:00[America/New_York].
func ParseOffsetDateTime(s string) (OffsetDateTime, error) {
	base, zone, err := splitZone(s)
	if err != nil {
		return OffsetDateTime{}, err
	}
	t, err := parseLayouts(base, []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"})
	if err != nil {
		return OffsetDateTime{}, err
	}
	if zone == "" {
		return OffsetDateTime{t: pinOffset(t)}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return OffsetDateTime{}, err
	}
	return OffsetDateTime{t: t.In(loc), zoned: true}, nil
}

func splitZone(s string) (string, string, error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return s, "", nil
	}
	if !strings.HasSuffix(s, "]") || open == len(s)-2 {
		return "", "", fmt.Errorf("unterminated zone name in %q", s)
	}
	return s[:open], s[open+1 : len(s)-1], nil
}

// Time returns the underlying instant.
func (o OffsetDateTime) Time() time.Time { return o.t }

func (o OffsetDateTime) String() string {
	out := o.t.Format(time.RFC3339Nano)
	if o.zoned {
		out += "[" + o.t.Location().String() + "]"
	}
	return out
}

func (o OffsetDateTime) IsSupported(u chrono.Unit) bool {
	return u >= chrono.Nanos && u <= chrono.Millennia
}

func (o OffsetDateTime) Plus(amount int64, u chrono.Unit) OffsetDateTime {
	if !u.IsTimeBased() {
		local := DateTimeOf(o.t).Plus(amount, u)
		return OffsetDateTime{t: local.In(o.t.Location()), zoned: o.zoned}
	}
	unit := u.Nanoseconds()
	var t time.Time
	if unit >= nanosPerSecond {
		t = time.Unix(o.t.Unix()+amount*(unit/nanosPerSecond), int64(o.t.Nanosecond()))
	} else {
		perSecond := nanosPerSecond / unit
		t = time.Unix(o.t.Unix()+amount/perSecond, int64(o.t.Nanosecond())+(amount%perSecond)*unit)
	}
	return OffsetDateTime{t: t.In(o.t.Location()), zoned: o.zoned}
}

func (o OffsetDateTime) Until(end OffsetDateTime, u chrono.Unit) int64 {
	if u.IsTimeBased() {
		return unitsBetween(end.t.Unix()-o.t.Unix(), int64(end.t.Nanosecond()-o.t.Nanosecond()), u)
	}
	return DateTimeOf(o.t).Until(DateTimeOf(end.t.In(o.t.Location())), u)
}

func (o OffsetDateTime) Compare(other OffsetDateTime) int {
	return o.t.Compare(other.t)
}

// OffsetTime is a wall-clock time with a fixed UTC offset.
type OffsetTime struct {
	time   Time
	offset int // seconds east of UTC
}

func NewOffsetTime(t Time, offsetSeconds int) OffsetTime {
	return OffsetTime{time: t, offset: offsetSeconds}
}

// ParseOffsetTime reads hh:mm[:ss[.f]] followed by Z or ±hh:mm.
func ParseOffsetTime(s string) (OffsetTime, error) {
	t, err := parseLayouts(s, []string{"15:04:05.999999999Z07:00", "15:04Z07:00"})
	if err != nil {
		return OffsetTime{}, err
	}
	_, off := t.Zone()
	return OffsetTime{time: TimeOf(t), offset: off}, nil
}

func (o OffsetTime) Offset() int { return o.offset }

func (o OffsetTime) String() string {
	if o.offset == 0 {
		return o.time.String() + "Z"
	}
	sign := '+'
	off := o.offset
	if off < 0 {
		sign = '-'
		off = -off
	}
	out := fmt.Sprintf("%s%c%02d:%02d", o.time, sign, off/3600, off/60%60)
	if off%60 != 0 {
		out += fmt.Sprintf(":%02d", off%60)
	}
	return out
}

func (o OffsetTime) IsSupported(u chrono.Unit) bool {
	return u.IsTimeBased()
}

func (o OffsetTime) Plus(amount int64, u chrono.Unit) OffsetTime {
	return OffsetTime{time: o.time.Plus(amount, u), offset: o.offset}
}

// utcNanos is the time of day shifted to UTC, not wrapped.
func (o OffsetTime) utcNanos() int64 {
	return o.time.nod - int64(o.offset)*nanosPerSecond
}

func (o OffsetTime) Until(end OffsetTime, u chrono.Unit) int64 {
	if !u.IsTimeBased() {
		panic(chrono.UnsupportedUnitError(u))
	}
	return (end.utcNanos() - o.utcNanos()) / u.Nanoseconds()
}

func (o OffsetTime) Compare(other OffsetTime) int {
	a, b := o.utcNanos(), other.utcNanos()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return o.time.Compare(other.time)
}

// YearMonth is a month of a year without day.
type YearMonth struct {
	year  int
	month time.Month
}

func NewYearMonth(year int, month time.Month) YearMonth {
	total := int64(year)*12 + int64(month) - 1
	return YearMonth{year: int(floorDiv(total, 12)), month: time.Month(floorMod(total, 12) + 1)}
}

// ParseYearMonth reads yyyy-mm.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, err
	}
	return YearMonth{year: t.Year(), month: t.Month()}, nil
}

func (ym YearMonth) Year() int         { return ym.year }
func (ym YearMonth) Month() time.Month { return ym.month }

// AtDay returns the date on day of the month, clamped to the month length.
func (ym YearMonth) AtDay(day int) Date {
	return NewDate(ym.year, ym.month, min(max(day, 1), daysIn(ym.year, ym.month)))
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.year, ym.month)
}

func (ym YearMonth) total() int64 { return int64(ym.year)*12 + int64(ym.month) - 1 }

func (ym YearMonth) IsSupported(u chrono.Unit) bool {
	return u >= chrono.Months && u <= chrono.Millennia
}

func (ym YearMonth) Plus(amount int64, u chrono.Unit) YearMonth {
	months := map[chrono.Unit]int64{
		chrono.Months:    1,
		chrono.Years:     12,
		chrono.Decades:   120,
		chrono.Centuries: 1200,
		chrono.Millennia: 12000,
	}
	f, ok := months[u]
	if !ok {
		panic(chrono.UnsupportedUnitError(u))
	}
	return NewYearMonth(ym.year, ym.month+time.Month(amount*f))
}

func (ym YearMonth) Until(end YearMonth, u chrono.Unit) int64 {
	diff := end.total() - ym.total()
	switch u {
	case chrono.Months:
		return diff
	case chrono.Years:
		return diff / 12
	case chrono.Decades:
		return diff / 120
	case chrono.Centuries:
		return diff / 1200
	case chrono.Millennia:
		return diff / 12000
	}
	panic(chrono.UnsupportedUnitError(u))
}

func (ym YearMonth) Compare(o YearMonth) int {
	switch a, b := ym.total(), o.total(); {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
