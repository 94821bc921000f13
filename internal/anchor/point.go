package anchor

import (
	"time"

	"calspan/internal/chrono"
)

// Kind identifies which anchor a Point holds.
type Kind int

const (
	KindYearMonth Kind = iota + 1
	KindDate
	KindDateTime
	KindOffsetDateTime
	KindTime
	KindOffsetTime
)

func (k Kind) String() string {
	switch k {
	case KindYearMonth:
		return "year-month"
	case KindDate:
		return "date"
	case KindDateTime:
		return "date-time"
	case KindOffsetDateTime:
		return "offset-date-time"
	case KindTime:
		return "time"
	case KindOffsetTime:
		return "offset-time"
	}
	return "invalid"
}

// dated reports whether the kind sits on the calendar line (year-month up to
// offset date-time) rather than the time-of-day line.
func (k Kind) dated() bool {
	return k >= KindYearMonth && k <= KindOffsetDateTime
}

// Point holds any one anchor kind. Operations on two Points of different
// kinds first promote both to the richer kind (see Unify).
type Point struct {
	kind Kind
	ym   YearMonth
	date Date
	dt   DateTime
	odt  OffsetDateTime
	tm   Time
	ot   OffsetTime
}

func FromYearMonth(v YearMonth) Point           { return Point{kind: KindYearMonth, ym: v} }
func FromDate(v Date) Point                     { return Point{kind: KindDate, date: v} }
func FromDateTime(v DateTime) Point             { return Point{kind: KindDateTime, dt: v} }
func FromOffsetDateTime(v OffsetDateTime) Point { return Point{kind: KindOffsetDateTime, odt: v} }
func FromTime(v Time) Point                     { return Point{kind: KindTime, tm: v} }
func FromOffsetTime(v OffsetTime) Point         { return Point{kind: KindOffsetTime, ot: v} }

// FromInstant returns t as a Point of the given kind.
func FromInstant(t time.Time, kind Kind) Point {
	switch kind {
	case KindYearMonth:
		return FromYearMonth(NewYearMonth(t.Year(), t.Month()))
	case KindDate:
		return FromDate(DateOf(t))
	case KindDateTime:
		return FromDateTime(DateTimeOf(t))
	case KindTime:
		return FromTime(TimeOf(t))
	case KindOffsetTime:
		_, off := t.Zone()
		return FromOffsetTime(NewOffsetTime(TimeOf(t), off))
	}
	return FromOffsetDateTime(OffsetDateTimeOf(t))
}

func (p Point) Kind() Kind { return p.kind }

// Instant places p on the time line. Dates and year-months resolve to
// midnight of their first day and local date-times are read in loc.
// Time-of-day kinds have no instant.
func (p Point) Instant(loc *time.Location) (time.Time, bool) {
	switch p.kind {
	case KindYearMonth:
		return p.ym.AtDay(1).At(Time{}, loc), true
	case KindDate:
		return p.date.At(Time{}, loc), true
	case KindDateTime:
		return p.dt.In(loc), true
	case KindOffsetDateTime:
		return p.odt.t, true
	}
	return time.Time{}, false
}

// Unify returns p and other converted to their richest common kind. On the
// calendar line the less precise value gains midnight, the first of the
// month or the zone of the other. Mixing a time of day with a dated value
// places the time on the other value's date.
func (p Point) Unify(other Point) (Point, Point) {
	if p.kind == other.kind {
		return p, other
	}
	target := max(p.kind, other.kind)
	if p.kind.dated() != other.kind.dated() {
		dated, clock := p, other
		if !dated.kind.dated() {
			dated, clock = other, p
		}
		target = KindDateTime
		if dated.kind == KindOffsetDateTime || clock.kind == KindOffsetTime {
			target = KindOffsetDateTime
		}
		// The time of day borrows the date of its partner.
		clock = dated.withClock(clock, target)
		dated = dated.promote(target, clock)
		if p.kind.dated() {
			return dated, clock
		}
		return clock, dated
	}
	return p.promote(target, other), other.promote(target, p)
}

// promote converts p to kind target, borrowing a zone from ref when needed.
func (p Point) promote(target Kind, ref Point) Point {
	if p.kind == target {
		return p
	}
	loc := ref.location()
	switch target {
	case KindDate:
		return FromDate(p.ym.AtDay(1))
	case KindDateTime:
		return FromDateTime(NewDateTime(p.asDate(), p.clockOrMidnight()))
	case KindOffsetDateTime:
		local := NewDateTime(p.asDate(), p.clockOrMidnight())
		return FromOffsetDateTime(OffsetDateTimeOf(local.In(loc)))
	case KindOffsetTime:
		_, off := time.Now().In(loc).Zone()
		return FromOffsetTime(NewOffsetTime(p.tm, off))
	}
	return p
}

// withClock places the time-of-day point clock on p's date.
func (p Point) withClock(clock Point, target Kind) Point {
	tod := clock.tm
	loc := p.location()
	if clock.kind == KindOffsetTime {
		tod = clock.ot.time
		loc = time.FixedZone("", clock.ot.offset)
	}
	local := NewDateTime(p.asDate(), tod)
	if target == KindOffsetDateTime {
		return FromOffsetDateTime(OffsetDateTimeOf(local.In(loc)))
	}
	return FromDateTime(local)
}

func (p Point) asDate() Date {
	switch p.kind {
	case KindYearMonth:
		return p.ym.AtDay(1)
	case KindDate:
		return p.date
	case KindDateTime:
		return p.dt.date
	case KindOffsetDateTime:
		return DateOf(p.odt.t)
	}
	return Date{}
}

func (p Point) clockOrMidnight() Time {
	switch p.kind {
	case KindDateTime:
		return p.dt.time
	case KindOffsetDateTime:
		return TimeOf(p.odt.t)
	case KindTime:
		return p.tm
	case KindOffsetTime:
		return p.ot.time
	}
	return Time{}
}

func (p Point) location() *time.Location {
	switch p.kind {
	case KindOffsetDateTime:
		return p.odt.t.Location()
	case KindOffsetTime:
		return time.FixedZone("", p.ot.offset)
	}
	return time.UTC
}

func (p Point) String() string {
	switch p.kind {
	case KindYearMonth:
		return p.ym.String()
	case KindDate:
		return p.date.String()
	case KindDateTime:
		return p.dt.String()
	case KindOffsetDateTime:
		return p.odt.String()
	case KindTime:
		return p.tm.String()
	case KindOffsetTime:
		return p.ot.String()
	}
	return ""
}

func (p Point) IsSupported(u chrono.Unit) bool {
	switch p.kind {
	case KindYearMonth:
		return p.ym.IsSupported(u)
	case KindDate:
		return p.date.IsSupported(u)
	case KindDateTime:
		return p.dt.IsSupported(u)
	case KindOffsetDateTime:
		return p.odt.IsSupported(u)
	case KindTime:
		return p.tm.IsSupported(u)
	case KindOffsetTime:
		return p.ot.IsSupported(u)
	}
	return false
}

func (p Point) Plus(amount int64, u chrono.Unit) Point {
	switch p.kind {
	case KindYearMonth:
		p.ym = p.ym.Plus(amount, u)
	case KindDate:
		p.date = p.date.Plus(amount, u)
	case KindDateTime:
		p.dt = p.dt.Plus(amount, u)
	case KindOffsetDateTime:
		p.odt = p.odt.Plus(amount, u)
	case KindTime:
		p.tm = p.tm.Plus(amount, u)
	case KindOffsetTime:
		p.ot = p.ot.Plus(amount, u)
	default:
		panic(chrono.UnsupportedUnitError(u))
	}
	return p
}

func (p Point) Until(end Point, u chrono.Unit) int64 {
	a, b := p.Unify(end)
	switch a.kind {
	case KindYearMonth:
		return a.ym.Until(b.ym, u)
	case KindDate:
		return a.date.Until(b.date, u)
	case KindDateTime:
		return a.dt.Until(b.dt, u)
	case KindOffsetDateTime:
		return a.odt.Until(b.odt, u)
	case KindTime:
		return a.tm.Until(b.tm, u)
	case KindOffsetTime:
		return a.ot.Until(b.ot, u)
	}
	panic(chrono.UnsupportedUnitError(u))
}

func (p Point) Compare(other Point) int {
	a, b := p.Unify(other)
	switch a.kind {
	case KindYearMonth:
		return a.ym.Compare(b.ym)
	case KindDate:
		return a.date.Compare(b.date)
	case KindDateTime:
		return a.dt.Compare(b.dt)
	case KindOffsetDateTime:
		return a.odt.Compare(b.odt)
	case KindTime:
		return a.tm.Compare(b.tm)
	case KindOffsetTime:
		return a.ot.Compare(b.ot)
	}
	return 0
}

// Equal reports whether p and other denote the same point after promotion.
func (p Point) Equal(other Point) bool {
	return p.Compare(other) == 0
}
