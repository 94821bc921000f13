// Package anchor provides the concrete points in time that durations and
// intervals are anchored to: calendar dates, wall-clock times, local and
// offset date-times, offset times and year-months. Each type implements
// chrono.Temporal for itself; Point is the union produced by Parse when the
// kind of anchor is only known from its text.
package anchor

import (
	"fmt"
	"time"

	"github.com/rickb777/date/v2"

	"calspan/internal/chrono"
)

// Date is a calendar date without time of day or zone.
type Date struct {
	d date.Date
}

// NewDate returns the date of year, month and day. Out of range values are
// normalized the way time.Date does (e.g. January 32 is February 1).
func NewDate(year int, month time.Month, day int) Date {
	return Date{d: date.New(year, month, day)}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate reads an ISO-8601 calendar date such as 2024-01-31.
func ParseDate(s string) (Date, error) {
	d, err := date.ParseISO(s)
	if err != nil {
		return Date{}, err
	}
	return Date{d: d}, nil
}

func (d Date) Year() int         { return d.d.Year() }
func (d Date) Month() time.Month { return d.d.Month() }
func (d Date) Day() int          { return d.d.Day() }
func (d Date) epochDay() int64   { return int64(d.d) }

func (d Date) prolepticMonth() int64 {
	return int64(d.Year())*12 + int64(d.Month()) - 1
}

// At returns the date at the given time of day in loc.
func (d Date) At(t Time, loc *time.Location) time.Time {
	h, m, s, ns := t.clock()
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, s, ns, loc)
}

func (d Date) String() string {
	y := d.Year()
	if y < 0 || y > 9999 {
		return fmt.Sprintf("%+05d-%02d-%02d", y, d.Month(), d.Day())
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, d.Month(), d.Day())
}

func (d Date) IsSupported(u chrono.Unit) bool {
	return u >= chrono.Days && u <= chrono.Millennia
}

func (d Date) Plus(amount int64, u chrono.Unit) Date {
	switch u {
	case chrono.Days:
		return Date{d: d.d + date.Date(amount)}
	case chrono.Weeks:
		return Date{d: d.d + date.Date(amount*7)}
	case chrono.Months:
		return d.plusMonths(amount)
	case chrono.Years:
		return d.plusMonths(amount * 12)
	case chrono.Decades:
		return d.plusMonths(amount * 120)
	case chrono.Centuries:
		return d.plusMonths(amount * 1200)
	case chrono.Millennia:
		return d.plusMonths(amount * 12000)
	}
	panic(chrono.UnsupportedUnitError(u))
}

// plusMonths moves by whole months, clamping the day to the length of the
// target month (January 31 plus one month is the last day of February).
func (d Date) plusMonths(n int64) Date {
	if n == 0 {
		return d
	}
	total := d.prolepticMonth() + n
	year := floorDiv(total, 12)
	month := time.Month(floorMod(total, 12) + 1)
	day := min(d.Day(), daysIn(int(year), month))
	return NewDate(int(year), month, day)
}

func (d Date) Until(end Date, u chrono.Unit) int64 {
	switch u {
	case chrono.Days:
		return end.epochDay() - d.epochDay()
	case chrono.Weeks:
		return (end.epochDay() - d.epochDay()) / 7
	case chrono.Months:
		return d.monthsUntil(end)
	case chrono.Years:
		return d.monthsUntil(end) / 12
	case chrono.Decades:
		return d.monthsUntil(end) / 120
	case chrono.Centuries:
		return d.monthsUntil(end) / 1200
	case chrono.Millennia:
		return d.monthsUntil(end) / 12000
	}
	panic(chrono.UnsupportedUnitError(u))
}

// monthsUntil counts complete months; a month is complete when the day of
// month has been reached again.
func (d Date) monthsUntil(end Date) int64 {
	p1 := d.prolepticMonth()*32 + int64(d.Day())
	p2 := end.prolepticMonth()*32 + int64(end.Day())
	return (p2 - p1) / 32
}

func (d Date) Compare(o Date) int {
	switch {
	case d.d < o.d:
		return -1
	case d.d > o.d:
		return 1
	}
	return 0
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
