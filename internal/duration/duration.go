// Package duration implements Duration, a signed amount of time expressed in
// mixed calendar units.
//
// A Duration stores seven components: years, months, days, hours, minutes,
// seconds and nanoseconds. Months and years have no fixed length, so a
// Duration is only converted to an exact elapsed time against an anchor
// (see AddTo, Between and ToUnit). The Approx* accessors use fixed ratios
// instead and are lossy.
//
// Construction normalizes the components once:
//
//   - fractional remainders cascade downward (1y = 12mo, 1mo = 30d, 1w = 7d,
//     1d = 24h, 1h = 60min, 1min = 60s, 1s = 1e9ns); sub-nanosecond
//     remainders are truncated
//   - overflow carries upward along nanos -> seconds -> minutes -> hours -> days
//     and months -> years
//   - days never carry into months
//
// Arithmetic on a single unit (PlusHours and friends) does not renormalize.
package duration

import (
	"github.com/govalues/decimal"

	"calspan/internal/chrono"
)

// Cascade ratios used by construction. These are exact by definition of the
// normalization, not approximations of calendar lengths.
const (
	monthsPerYear      = 12
	daysPerMonth       = 30
	daysPerWeek        = 7
	hoursPerDay        = 24
	minutesPerHour     = 60
	secondsPerMinute   = 60
	nanosPerSecond     = 1_000_000_000
	nanosPerMilli      = 1_000_000
	nanosPerMicro      = 1_000
	secondsPerHour     = secondsPerMinute * minutesPerHour
	secondsPerDay      = secondsPerHour * hoursPerDay
	nanosPerMinute     = nanosPerSecond * secondsPerMinute
	nanosPerHour       = nanosPerMinute * minutesPerHour
	nanosPerNominalDay = nanosPerHour * hoursPerDay
)

// Duration is an immutable calendar duration. The zero value is the zero
// duration. Two Durations are equal (==) when all seven stored components
// are equal.
type Duration struct {
	years   int64
	months  int64
	days    int64
	hours   int64
	minutes int64
	seconds int64
	nanos   int64
}

// Zero is the additive identity.
var Zero = Duration{}

// New returns the normalized duration of the given components. Weeks are
// folded into days.
func New(years, months, weeks, days, hours, minutes, seconds, nanos int64) Duration {
	return normalize(years, months, days+weeks*daysPerWeek, hours, minutes, seconds, nanos)
}

// Of returns a duration of amount units. Only the units a Duration can add
// (see Duration.Plus) are accepted.
func Of(amount int64, unit chrono.Unit) (Duration, error) {
	d, err := Zero.Plus(amount, unit)
	if err != nil {
		return Zero, err
	}
	return New(d.years, d.months, 0, d.days, d.hours, d.minutes, d.seconds, d.nanos), nil
}

// NewFractional is New for fractional inputs, e.g. years=1.5 becomes one
// year and six months. The cascade is computed in decimal so that inputs
// such as 0.1 hours yield exactly six minutes. Non-finite inputs and values
// beyond the decimal range fail with an invalid value error.
func NewFractional(years, months, weeks, days, hours, minutes, seconds, nanos float64) (Duration, error) {
	in := [8]float64{years, months, weeks, days, hours, minutes, seconds, nanos}
	var dec [8]decimal.Decimal
	for i, f := range in {
		v, err := decimal.NewFromFloat64(f)
		if err != nil {
			return Zero, &chrono.Error{Kind: chrono.KindInvalidValue, Message: "cannot represent component as decimal", Err: err}
		}
		dec[i] = v
	}
	return NewDecimal(dec[0], dec[1], dec[2], dec[3], dec[4], dec[5], dec[6], dec[7])
}

// NewDecimal is New for decimal inputs.
func NewDecimal(years, months, weeks, days, hours, minutes, seconds, nanos decimal.Decimal) (Duration, error) {
	steps := []struct {
		value decimal.Decimal
		ratio int64 // conversion of one unit into the next smaller one
	}{
		{years, monthsPerYear},
		{months, daysPerMonth},
		{decimal.MustNew(0, 0), hoursPerDay}, // days, filled below
		{hours, minutesPerHour},
		{minutes, secondsPerMinute},
		{seconds, nanosPerSecond},
		{nanos, 0},
	}

	weekDays, err := weeks.Mul(decimal.MustNew(daysPerWeek, 0))
	if err != nil {
		return Zero, overflow("weeks", err)
	}
	if steps[2].value, err = days.Add(weekDays); err != nil {
		return Zero, overflow("days", err)
	}

	var whole [7]int64
	for i := range steps {
		v := steps[i].value
		w := v.Trunc(0)
		n, _, ok := w.Int64(0)
		if !ok {
			return Zero, overflow(chrono.Fields[i], nil)
		}
		whole[i] = n
		if i == len(steps)-1 {
			break
		}
		frac, err := v.Sub(w)
		if err != nil {
			return Zero, overflow(chrono.Fields[i], err)
		}
		if frac.IsZero() {
			continue
		}
		carry, err := frac.Mul(decimal.MustNew(steps[i].ratio, 0))
		if err != nil {
			return Zero, overflow(chrono.Fields[i+1], err)
		}
		if steps[i+1].value, err = steps[i+1].value.Add(carry); err != nil {
			return Zero, overflow(chrono.Fields[i+1], err)
		}
	}

	return normalize(whole[0], whole[1], whole[2], whole[3], whole[4], whole[5], whole[6]), nil
}

func overflow(field any, err error) error {
	return &chrono.Error{Kind: chrono.KindInvalidValue, Message: "component out of range: " + fieldName(field), Err: err}
}

func fieldName(field any) string {
	switch f := field.(type) {
	case chrono.Field:
		return string(f)
	case string:
		return f
	}
	return "?"
}

// normalize carries overflow upward and aligns the signs within the
// years/months group and the days..nanos group. Every step is a truncated
// division so no intermediate total can overflow.
func normalize(years, months, days, hours, minutes, seconds, nanos int64) Duration {
	years += months / monthsPerYear
	months %= monthsPerYear
	if years > 0 && months < 0 {
		years--
		months += monthsPerYear
	} else if years < 0 && months > 0 {
		years++
		months -= monthsPerYear
	}

	seconds += nanos / nanosPerSecond
	nanos %= nanosPerSecond
	minutes += seconds / secondsPerMinute
	seconds %= secondsPerMinute
	hours += minutes / minutesPerHour
	minutes %= minutesPerHour
	days += hours / hoursPerDay
	hours %= hoursPerDay

	// The most significant non-zero field of the group decides the sign,
	// because every lower field is smaller than one unit of it.
	sign := signOf(days, hours, minutes, seconds, nanos)
	if sign != 0 {
		nanos, seconds = borrow(nanos, seconds, nanosPerSecond, sign)
		seconds, minutes = borrow(seconds, minutes, secondsPerMinute, sign)
		minutes, hours = borrow(minutes, hours, minutesPerHour, sign)
		hours, days = borrow(hours, days, hoursPerDay, sign)
	}

	return Duration{
		years:   years,
		months:  months,
		days:    days,
		hours:   hours,
		minutes: minutes,
		seconds: seconds,
		nanos:   nanos,
	}
}

func signOf(fields ...int64) int64 {
	for _, f := range fields {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		}
	}
	return 0
}

// borrow moves one unit from the larger field into the smaller one when the
// smaller field has the opposite sign of the group.
func borrow(small, large, ratio, sign int64) (int64, int64) {
	if small != 0 && (small > 0) != (sign > 0) {
		return small + sign*ratio, large - sign
	}
	return small, large
}

// Years returns the stored years component.
func (d Duration) Years() int64 { return d.years }

// Months returns the stored months component.
func (d Duration) Months() int64 { return d.months }

// Days returns the stored days component.
func (d Duration) Days() int64 { return d.days }

// Hours returns the stored hours component.
func (d Duration) Hours() int64 { return d.hours }

// Minutes returns the stored minutes component.
func (d Duration) Minutes() int64 { return d.minutes }

// Seconds returns the stored seconds component.
func (d Duration) Seconds() int64 { return d.seconds }

// Nanos returns the stored nanoseconds component.
func (d Duration) Nanos() int64 { return d.nanos }

// IsZero reports whether every component is zero.
func (d Duration) IsZero() bool { return d == Zero }

// IsNegative reports whether any component is negative.
func (d Duration) IsNegative() bool {
	return d.years < 0 || d.months < 0 || d.days < 0 || d.hours < 0 || d.minutes < 0 || d.seconds < 0 || d.nanos < 0
}

// Normalized re-applies the construction cascade. It is useful after single
// unit arithmetic, which leaves components as they are.
func (d Duration) Normalized() Duration {
	return normalize(d.years, d.months, d.days, d.hours, d.minutes, d.seconds, d.nanos)
}
