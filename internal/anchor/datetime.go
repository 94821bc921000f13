package anchor

import (
	"time"

	"calspan/internal/chrono"
)

// DateTime is a local date and wall-clock time without zone. Days are
// always 24 hours long.
type DateTime struct {
	date Date
	time Time
}

func NewDateTime(d Date, t Time) DateTime {
	return DateTime{date: d, time: t}
}

// DateTimeOf returns the wall-clock date and time of t, dropping its zone.
func DateTimeOf(t time.Time) DateTime {
	return DateTime{date: DateOf(t), time: TimeOf(t)}
}

var dateTimeLayouts = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"}

// ParseDateTime reads an ISO-8601 local date-time such as 2024-01-01T09:30.
func ParseDateTime(s string) (DateTime, error) {
	t, err := parseLayouts(s, dateTimeLayouts)
	if err != nil {
		return DateTime{}, err
	}
	return DateTimeOf(t), nil
}

func (dt DateTime) Date() Date { return dt.date }
func (dt DateTime) Time() Time { return dt.time }

// In interprets the wall-clock value in loc.
func (dt DateTime) In(loc *time.Location) time.Time {
	return dt.date.At(dt.time, loc)
}

func (dt DateTime) String() string {
	return dt.date.String() + "T" + dt.time.String()
}

func (dt DateTime) IsSupported(u chrono.Unit) bool {
	return u >= chrono.Nanos && u <= chrono.Millennia
}

func (dt DateTime) Plus(amount int64, u chrono.Unit) DateTime {
	if !u.IsTimeBased() {
		return DateTime{date: dt.date.Plus(amount, u), time: dt.time}
	}
	unit := u.Nanoseconds()
	perDay := nanosPerDay / unit
	days := amount / perDay
	nod := dt.time.nod + (amount%perDay)*unit
	days += floorDiv(nod, nanosPerDay)
	return DateTime{
		date: dt.date.Plus(days, chrono.Days),
		time: Time{nod: floorMod(nod, nanosPerDay)},
	}
}

func (dt DateTime) Until(end DateTime, u chrono.Unit) int64 {
	if u.IsTimeBased() {
		days := end.date.epochDay() - dt.date.epochDay()
		return unitsBetween(days*secondsPerDay, end.time.nod-dt.time.nod, u)
	}
	endDate := end.date
	switch {
	case endDate.Compare(dt.date) > 0 && end.time.Compare(dt.time) < 0:
		endDate = endDate.Plus(-1, chrono.Days)
	case endDate.Compare(dt.date) < 0 && end.time.Compare(dt.time) > 0:
		endDate = endDate.Plus(1, chrono.Days)
	}
	return dt.date.Until(endDate, u)
}

func (dt DateTime) Compare(o DateTime) int {
	if c := dt.date.Compare(o.date); c != 0 {
		return c
	}
	return dt.time.Compare(o.time)
}
