package duration

import (
	"math"

	"calspan/internal/chrono"
)

// PlusYears adds n years to one component without renormalizing.
func (d Duration) PlusYears(n int64) Duration { d.years += n; return d }

// PlusMonths adds n months to one component without renormalizing.
func (d Duration) PlusMonths(n int64) Duration { d.months += n; return d }

// PlusWeeks adds n weeks (as 7 days each) to one component without renormalizing.
func (d Duration) PlusWeeks(n int64) Duration { d.days += n * daysPerWeek; return d }

// PlusDays adds n days to one component without renormalizing.
func (d Duration) PlusDays(n int64) Duration { d.days += n; return d }

// PlusHours adds n hours to one component without renormalizing.
func (d Duration) PlusHours(n int64) Duration { d.hours += n; return d }

// PlusMinutes adds n minutes to one component without renormalizing.
func (d Duration) PlusMinutes(n int64) Duration { d.minutes += n; return d }

// PlusSeconds adds n seconds to one component without renormalizing.
func (d Duration) PlusSeconds(n int64) Duration { d.seconds += n; return d }

// PlusMillis adds n milliseconds to one component without renormalizing.
func (d Duration) PlusMillis(n int64) Duration { d.nanos += n * nanosPerMilli; return d }

// PlusMicros adds n microseconds to one component without renormalizing.
func (d Duration) PlusMicros(n int64) Duration { d.nanos += n * nanosPerMicro; return d }

// PlusNanos adds n nanoseconds to one component without renormalizing.
func (d Duration) PlusNanos(n int64) Duration { d.nanos += n; return d }

// MinusYears subtracts n years; see PlusYears.
func (d Duration) MinusYears(n int64) Duration { return d.PlusYears(-n) }

// MinusMonths subtracts n months; see PlusMonths.
func (d Duration) MinusMonths(n int64) Duration { return d.PlusMonths(-n) }

// MinusWeeks subtracts n weeks (as 7 days each); see PlusWeeks.
func (d Duration) MinusWeeks(n int64) Duration { return d.PlusWeeks(-n) }

// MinusDays subtracts n days; see PlusDays.
func (d Duration) MinusDays(n int64) Duration { return d.PlusDays(-n) }

// MinusHours subtracts n hours; see PlusHours.
func (d Duration) MinusHours(n int64) Duration { return d.PlusHours(-n) }

// MinusMinutes subtracts n minutes; see PlusMinutes.
func (d Duration) MinusMinutes(n int64) Duration { return d.PlusMinutes(-n) }

// MinusSeconds subtracts n seconds; see PlusSeconds.
func (d Duration) MinusSeconds(n int64) Duration { return d.PlusSeconds(-n) }

// MinusMillis subtracts n milliseconds; see PlusMillis.
func (d Duration) MinusMillis(n int64) Duration { return d.PlusMillis(-n) }

// MinusMicros subtracts n microseconds; see PlusMicros.
func (d Duration) MinusMicros(n int64) Duration { return d.PlusMicros(-n) }

// MinusNanos subtracts n nanoseconds; see PlusNanos.
func (d Duration) MinusNanos(n int64) Duration { return d.PlusNanos(-n) }

// Plus adds amount of unit to the matching component without renormalizing.
func (d Duration) Plus(amount int64, unit chrono.Unit) (Duration, error) {
	switch unit {
	case chrono.Years:
		return d.PlusYears(amount), nil
	case chrono.Months:
		return d.PlusMonths(amount), nil
	case chrono.Weeks:
		return d.PlusWeeks(amount), nil
	case chrono.Days:
		return d.PlusDays(amount), nil
	case chrono.Hours:
		return d.PlusHours(amount), nil
	case chrono.Minutes:
		return d.PlusMinutes(amount), nil
	case chrono.Seconds:
		return d.PlusSeconds(amount), nil
	case chrono.Millis:
		return d.PlusMillis(amount), nil
	case chrono.Micros:
		return d.PlusMicros(amount), nil
	case chrono.Nanos:
		return d.PlusNanos(amount), nil
	}
	return d, chrono.UnsupportedUnitError(unit)
}

// Minus subtracts amount of unit from the matching component.
func (d Duration) Minus(amount int64, unit chrono.Unit) (Duration, error) {
	if amount == math.MinInt64 {
		return d, chrono.InvalidValue("cannot negate amount %d", amount)
	}
	return d.Plus(-amount, unit)
}

// Add combines d and o component-wise.
func (d Duration) Add(o Duration) Duration {
	return Duration{
		years:   d.years + o.years,
		months:  d.months + o.months,
		days:    d.days + o.days,
		hours:   d.hours + o.hours,
		minutes: d.minutes + o.minutes,
		seconds: d.seconds + o.seconds,
		nanos:   d.nanos + o.nanos,
	}
}

// Sub subtracts o from d component-wise. When both operands are of fixed
// length (no years, months or days) and their totals fit in int64
// nanoseconds, the exact difference is computed instead and returned
// normalized, so PT1M minus PT30S is PT30S rather than PT1M-30S.
func (d Duration) Sub(o Duration) Duration {
	if a, ok := d.fixedNanos(); ok {
		if b, ok := o.fixedNanos(); ok {
			if diff, ok := subExact(a, b); ok {
				return New(0, 0, 0, 0, 0, 0, 0, diff)
			}
		}
	}
	return d.Add(o.Negated())
}

// fixedNanos returns the exact length of d in nanoseconds when d has no
// calendar components and the total fits in int64.
func (d Duration) fixedNanos() (int64, bool) {
	if d.years != 0 || d.months != 0 || d.days != 0 {
		return 0, false
	}
	total := d.nanos
	var ok bool
	for _, c := range []struct{ v, scale int64 }{
		{d.hours, nanosPerHour},
		{d.minutes, nanosPerMinute},
		{d.seconds, nanosPerSecond},
	} {
		if total, ok = mulAddExact(c.v, c.scale, total); !ok {
			return 0, false
		}
	}
	return total, true
}

func mulAddExact(v, scale, acc int64) (int64, bool) {
	if v != 0 && (v > math.MaxInt64/scale || v < math.MinInt64/scale) {
		return 0, false
	}
	return addExact(v*scale, acc)
}

func addExact(a, b int64) (int64, bool) {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		return 0, false
	}
	return s, true
}

func subExact(a, b int64) (int64, bool) {
	if b == math.MinInt64 {
		return 0, false
	}
	return addExact(a, -b)
}

// Times scales every component by scalar.
func (d Duration) Times(scalar int64) Duration {
	if d.IsZero() || scalar == 1 {
		return d
	}
	return Duration{
		years:   d.years * scalar,
		months:  d.months * scalar,
		days:    d.days * scalar,
		hours:   d.hours * scalar,
		minutes: d.minutes * scalar,
		seconds: d.seconds * scalar,
		nanos:   d.nanos * scalar,
	}
}

// Negated returns d with every component negated.
func (d Duration) Negated() Duration {
	return d.Times(-1)
}

// Abs returns d negated if it is negative, d otherwise.
func (d Duration) Abs() Duration {
	if d.Compare(Zero) < 0 {
		return d.Negated()
	}
	return d
}

// TruncatedTo zeroes every component finer than unit. Millis and Micros
// truncate the nanoseconds component to that precision. Weeks behave as Days.
func (d Duration) TruncatedTo(unit chrono.Unit) (Duration, error) {
	switch unit {
	case chrono.Nanos:
		return d, nil
	case chrono.Micros:
		d.nanos -= d.nanos % nanosPerMicro
		return d, nil
	case chrono.Millis:
		d.nanos -= d.nanos % nanosPerMilli
		return d, nil
	}

	rank := map[chrono.Unit]int{
		chrono.Years:   0,
		chrono.Months:  1,
		chrono.Weeks:   2,
		chrono.Days:    2,
		chrono.Hours:   3,
		chrono.Minutes: 4,
		chrono.Seconds: 5,
	}
	r, ok := rank[unit]
	if !ok {
		return d, chrono.UnsupportedUnitError(unit)
	}
	fields := []*int64{&d.years, &d.months, &d.days, &d.hours, &d.minutes, &d.seconds, &d.nanos}
	for _, f := range fields[r+1:] {
		*f = 0
	}
	return d, nil
}
