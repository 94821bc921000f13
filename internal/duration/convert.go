package duration

import (
	"time"

	"calspan/internal/chrono"
)

// Approximate calendar lengths. They are used only by the Approx* accessors;
// normalization and anchored conversions never depend on them.
const (
	ApproxDaysPerYear  = 365
	ApproxDaysPerMonth = 30
	ApproxDaysPerWeek  = 7

	approxSecondsPerDay = 86400
)

// approxSeconds sums every component into seconds using the approximate
// calendar lengths. Large values lose precision.
func (d Duration) approxSeconds() float64 {
	return float64(d.years)*ApproxDaysPerYear*approxSecondsPerDay +
		float64(d.months)*ApproxDaysPerMonth*approxSecondsPerDay +
		float64(d.days)*approxSecondsPerDay +
		float64(d.hours)*secondsPerHour +
		float64(d.minutes)*secondsPerMinute +
		float64(d.seconds) +
		float64(d.nanos)/nanosPerSecond
}

// ApproxYears returns the total length in years, counting a year as 365
// days and a month as 30 days. The result is an approximation; use ToYears
// against an anchor for an exact count.
func (d Duration) ApproxYears() float64 {
	return d.approxSeconds() / (ApproxDaysPerYear * approxSecondsPerDay)
}

// ApproxMonths is ApproxYears in months of 30 days.
func (d Duration) ApproxMonths() float64 {
	return d.approxSeconds() / (ApproxDaysPerMonth * approxSecondsPerDay)
}

func (d Duration) ApproxWeeks() float64 {
	return d.approxSeconds() / (ApproxDaysPerWeek * approxSecondsPerDay)
}

func (d Duration) ApproxDays() float64    { return d.approxSeconds() / approxSecondsPerDay }
func (d Duration) ApproxHours() float64   { return d.approxSeconds() / secondsPerHour }
func (d Duration) ApproxMinutes() float64 { return d.approxSeconds() / secondsPerMinute }
func (d Duration) ApproxSeconds() float64 { return d.approxSeconds() }
func (d Duration) ApproxMillis() float64  { return d.approxSeconds() * 1e3 }
func (d Duration) ApproxMicros() float64  { return d.approxSeconds() * 1e6 }

// ApproxNanos may exceed the range of int64 and is therefore a float too.
func (d Duration) ApproxNanos() float64 { return d.approxSeconds() * 1e9 }

// ToUnit materializes d against anchor and returns the exact number of
// whole units elapsed, i.e. anchor.Until(AddTo(d, anchor), unit).
func ToUnit[T chrono.Temporal[T]](d Duration, anchor T, unit chrono.Unit) (int64, error) {
	if !anchor.IsSupported(unit) {
		return 0, chrono.UnsupportedUnitError(unit)
	}
	return anchor.Until(AddTo(d, anchor), unit), nil
}

// ToYears is ToUnit with years.
func ToYears[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Years)
}

// ToMonths is ToUnit with months.
func ToMonths[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Months)
}

// ToWeeks is ToUnit with weeks.
func ToWeeks[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Weeks)
}

// ToDays is ToUnit with days.
func ToDays[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Days)
}

// ToHours is ToUnit with hours.
func ToHours[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Hours)
}

// ToMinutes is ToUnit with minutes.
func ToMinutes[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Minutes)
}

// ToSeconds is ToUnit with seconds.
func ToSeconds[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Seconds)
}

// ToMillis is ToUnit with milliseconds.
func ToMillis[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Millis)
}

// ToMicros is ToUnit with microseconds.
func ToMicros[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Micros)
}

// ToNanos is ToUnit with nanoseconds.
func ToNanos[T chrono.Temporal[T]](d Duration, anchor T) (int64, error) {
	return ToUnit(d, anchor, chrono.Nanos)
}

// Units lists the units whose components a Duration stores.
func Units() []chrono.Unit {
	return []chrono.Unit{chrono.Years, chrono.Months, chrono.Days, chrono.Hours, chrono.Minutes, chrono.Seconds, chrono.Nanos}
}

// Get returns the raw stored component for unit, not a converted total.
func (d Duration) Get(unit chrono.Unit) (int64, error) {
	switch unit {
	case chrono.Years:
		return d.years, nil
	case chrono.Months:
		return d.months, nil
	case chrono.Days:
		return d.days, nil
	case chrono.Hours:
		return d.hours, nil
	case chrono.Minutes:
		return d.minutes, nil
	case chrono.Seconds:
		return d.seconds, nil
	case chrono.Nanos:
		return d.nanos, nil
	}
	return 0, chrono.UnsupportedUnitError(unit)
}

// Field returns the raw stored component named by f.
func (d Duration) Field(f chrono.Field) (int64, error) {
	switch f {
	case chrono.FieldYears:
		return d.years, nil
	case chrono.FieldMonths:
		return d.months, nil
	case chrono.FieldDays:
		return d.days, nil
	case chrono.FieldHours:
		return d.hours, nil
	case chrono.FieldMinutes:
		return d.minutes, nil
	case chrono.FieldSeconds:
		return d.seconds, nil
	case chrono.FieldNanos:
		return d.nanos, nil
	}
	return 0, chrono.UnsupportedFieldError(f)
}

// ToTimeDuration converts a fixed-length duration. Durations with years,
// months or days, and durations beyond the range of time.Duration, fail
// with an invalid value error.
func (d Duration) ToTimeDuration() (time.Duration, error) {
	if d.years != 0 || d.months != 0 || d.days != 0 {
		return 0, chrono.InvalidValue("%s has calendar components and no fixed length", d)
	}
	n, ok := d.fixedNanos()
	if !ok {
		return 0, chrono.InvalidValue("%s overflows time.Duration", d)
	}
	return time.Duration(n), nil
}

// FromTimeDuration returns the normalized duration of td. Whole days are
// carried into the days component.
func FromTimeDuration(td time.Duration) Duration {
	return New(0, 0, 0, 0, 0, 0, 0, int64(td))
}
