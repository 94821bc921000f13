package interval

import (
	"calspan/internal/chrono"
	"calspan/internal/duration"
)

// TwoPoint is the interval between two anchors. The end may precede the
// start, in which case the duration is negative.
type TwoPoint[T chrono.Temporal[T]] struct {
	start T
	end   T
}

func NewTwoPoint[T chrono.Temporal[T]](start, end T) TwoPoint[T] {
	return TwoPoint[T]{start: start, end: end}
}

func (iv TwoPoint[T]) interval() {}

// Duration is the greedy largest-unit-first duration from start to end
// (see duration.Between).
func (iv TwoPoint[T]) Duration() duration.Duration { return duration.Between(iv.start, iv.end) }
func (iv TwoPoint[T]) Start() (T, error)           { return iv.start, nil }
func (iv TwoPoint[T]) End() (T, error)             { return iv.end, nil }

func (iv TwoPoint[T]) Contains(p T) (bool, error) {
	return within(p, iv.start, iv.end), nil
}

func (iv TwoPoint[T]) Get(unit chrono.Unit) (int64, error) { return iv.Duration().Get(unit) }

func (iv TwoPoint[T]) WithStart(start T) Interval[T] { return NewTwoPoint(start, iv.end) }
func (iv TwoPoint[T]) WithEnd(end T) Interval[T]     { return NewTwoPoint(iv.start, end) }

func (iv TwoPoint[T]) WithDuration(d duration.Duration) Interval[T] {
	return NewDurationStart(d, iv.start)
}

func (iv TwoPoint[T]) ToTwoPoint() (TwoPoint[T], error) { return iv, nil }
func (iv TwoPoint[T]) ToPureDuration() PureDuration[T] { return NewPureDuration[T](iv.Duration()) }

func (iv TwoPoint[T]) ToDurationEnd() (DurationEnd[T], error) {
	return NewDurationEnd(iv.Duration(), iv.end), nil
}

func (iv TwoPoint[T]) ToDurationStart() (DurationStart[T], error) {
	return NewDurationStart(iv.Duration(), iv.start), nil
}

func (iv TwoPoint[T]) AddTo(p T) T        { return duration.AddTo(iv.Duration(), p) }
func (iv TwoPoint[T]) SubtractFrom(p T) T { return duration.SubtractFrom(iv.Duration(), p) }

func (iv TwoPoint[T]) String() string {
	return iv.start.String() + "/" + iv.end.String()
}

// PureDuration is a duration with no anchor. It cannot answer Start, End,
// Contains or any conversion that needs an anchor; use WithStart or WithEnd
// to supply one.
type PureDuration[T chrono.Temporal[T]] struct {
	dur duration.Duration
}

func NewPureDuration[T chrono.Temporal[T]](d duration.Duration) PureDuration[T] {
	return PureDuration[T]{dur: d}
}

func (iv PureDuration[T]) interval() {}

func (iv PureDuration[T]) Duration() duration.Duration { return iv.dur }

func (iv PureDuration[T]) Start() (T, error) {
	var zero T
	return zero, chrono.NoAnchorError("start")
}

func (iv PureDuration[T]) End() (T, error) {
	var zero T
	return zero, chrono.NoAnchorError("end")
}

func (iv PureDuration[T]) Contains(T) (bool, error) {
	return false, chrono.NoAnchorError("contains")
}

func (iv PureDuration[T]) Get(unit chrono.Unit) (int64, error) { return iv.dur.Get(unit) }

func (iv PureDuration[T]) WithStart(start T) Interval[T] { return NewDurationStart(iv.dur, start) }
func (iv PureDuration[T]) WithEnd(end T) Interval[T]     { return NewDurationEnd(iv.dur, end) }

func (iv PureDuration[T]) WithDuration(d duration.Duration) Interval[T] {
	return NewPureDuration[T](d)
}

func (iv PureDuration[T]) ToTwoPoint() (TwoPoint[T], error) {
	return TwoPoint[T]{}, chrono.NoAnchorError("two-point conversion")
}

func (iv PureDuration[T]) ToPureDuration() PureDuration[T] { return iv }

func (iv PureDuration[T]) ToDurationEnd() (DurationEnd[T], error) {
	return DurationEnd[T]{}, chrono.NoAnchorError("duration-end conversion")
}

func (iv PureDuration[T]) ToDurationStart() (DurationStart[T], error) {
	return DurationStart[T]{}, chrono.NoAnchorError("duration-start conversion")
}

func (iv PureDuration[T]) AddTo(p T) T        { return duration.AddTo(iv.dur, p) }
func (iv PureDuration[T]) SubtractFrom(p T) T { return duration.SubtractFrom(iv.dur, p) }
func (iv PureDuration[T]) String() string     { return iv.dur.String() }

// DurationEnd is a duration ending at an anchor.
type DurationEnd[T chrono.Temporal[T]] struct {
	dur duration.Duration
	end T
}

func NewDurationEnd[T chrono.Temporal[T]](d duration.Duration, end T) DurationEnd[T] {
	return DurationEnd[T]{dur: d, end: end}
}

func (iv DurationEnd[T]) interval() {}

func (iv DurationEnd[T]) Duration() duration.Duration { return iv.dur }
func (iv DurationEnd[T]) Start() (T, error)           { return duration.SubtractFrom(iv.dur, iv.end), nil }
func (iv DurationEnd[T]) End() (T, error)             { return iv.end, nil }

func (iv DurationEnd[T]) Contains(p T) (bool, error) { return contains[T](iv, p) }

func (iv DurationEnd[T]) Get(unit chrono.Unit) (int64, error) { return iv.dur.Get(unit) }

// WithStart keeps the end and measures the duration from the new start,
// which makes the result a TwoPoint.
func (iv DurationEnd[T]) WithStart(start T) Interval[T] { return NewTwoPoint(start, iv.end) }
func (iv DurationEnd[T]) WithEnd(end T) Interval[T]     { return NewDurationEnd(iv.dur, end) }

func (iv DurationEnd[T]) WithDuration(d duration.Duration) Interval[T] {
	return NewDurationEnd(d, iv.end)
}

func (iv DurationEnd[T]) ToTwoPoint() (TwoPoint[T], error) {
	start, _ := iv.Start()
	return NewTwoPoint(start, iv.end), nil
}

func (iv DurationEnd[T]) ToPureDuration() PureDuration[T]        { return NewPureDuration[T](iv.dur) }
func (iv DurationEnd[T]) ToDurationEnd() (DurationEnd[T], error) { return iv, nil }

func (iv DurationEnd[T]) ToDurationStart() (DurationStart[T], error) {
	start, _ := iv.Start()
	return NewDurationStart(iv.dur, start), nil
}

func (iv DurationEnd[T]) AddTo(p T) T        { return duration.AddTo(iv.dur, p) }
func (iv DurationEnd[T]) SubtractFrom(p T) T { return duration.SubtractFrom(iv.dur, p) }

func (iv DurationEnd[T]) String() string {
	return iv.dur.String() + "/" + iv.end.String()
}

// DurationStart is a duration beginning at an anchor.
type DurationStart[T chrono.Temporal[T]] struct {
	dur   duration.Duration
	start T
}

func NewDurationStart[T chrono.Temporal[T]](d duration.Duration, start T) DurationStart[T] {
	return DurationStart[T]{dur: d, start: start}
}

func (iv DurationStart[T]) interval() {}

func (iv DurationStart[T]) Duration() duration.Duration { return iv.dur }
func (iv DurationStart[T]) Start() (T, error)           { return iv.start, nil }
func (iv DurationStart[T]) End() (T, error)             { return duration.AddTo(iv.dur, iv.start), nil }

func (iv DurationStart[T]) Contains(p T) (bool, error) { return contains[T](iv, p) }

func (iv DurationStart[T]) Get(unit chrono.Unit) (int64, error) { return iv.dur.Get(unit) }

func (iv DurationStart[T]) WithStart(start T) Interval[T] { return NewDurationStart(iv.dur, start) }

// WithEnd keeps the start and measures the duration to the new end, which
// makes the result a TwoPoint.
func (iv DurationStart[T]) WithEnd(end T) Interval[T] { return NewTwoPoint(iv.start, end) }

func (iv DurationStart[T]) WithDuration(d duration.Duration) Interval[T] {
	return NewDurationStart(d, iv.start)
}

func (iv DurationStart[T]) ToTwoPoint() (TwoPoint[T], error) {
	end, _ := iv.End()
	return NewTwoPoint(iv.start, end), nil
}

func (iv DurationStart[T]) ToPureDuration() PureDuration[T] { return NewPureDuration[T](iv.dur) }

func (iv DurationStart[T]) ToDurationEnd() (DurationEnd[T], error) {
	end, _ := iv.End()
	return NewDurationEnd(iv.dur, end), nil
}

func (iv DurationStart[T]) ToDurationStart() (DurationStart[T], error) { return iv, nil }

func (iv DurationStart[T]) AddTo(p T) T        { return duration.AddTo(iv.dur, p) }
func (iv DurationStart[T]) SubtractFrom(p T) T { return duration.SubtractFrom(iv.dur, p) }

func (iv DurationStart[T]) String() string {
	return iv.start.String() + "/" + iv.dur.String()
}
