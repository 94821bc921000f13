// Package interval combines durations with anchor points.
//
// There are four shapes, each storing only the fields it owns:
//
//	TwoPoint       start/end
//	PureDuration   duration
//	DurationEnd    duration/end    (start = end - duration)
//	DurationStart  start/duration  (end = start + duration)
//
// Repeated wraps any of them with a repetition count. All five implement
// Interval; the set is closed.
package interval

import (
	"calspan/internal/chrono"
	"calspan/internal/duration"
)

// Interval is the capability shared by every interval shape.
//
// Start and End return a NoAnchor error for shapes that carry no anchor.
// Contains is inclusive on both bounds. The With methods return whichever
// shape can hold the new value without losing the fields that remain.
type Interval[T chrono.Temporal[T]] interface {
	Duration() duration.Duration
	Start() (T, error)
	End() (T, error)
	Contains(p T) (bool, error)
	Get(unit chrono.Unit) (int64, error)

	WithStart(start T) Interval[T]
	WithEnd(end T) Interval[T]
	WithDuration(d duration.Duration) Interval[T]

	ToTwoPoint() (TwoPoint[T], error)
	ToPureDuration() PureDuration[T]
	ToDurationEnd() (DurationEnd[T], error)
	ToDurationStart() (DurationStart[T], error)

	AddTo(p T) T
	SubtractFrom(p T) T
	String() string

	interval()
}

// within reports whether start <= p <= end.
func within[T chrono.Temporal[T]](p, start, end T) bool {
	return p.Compare(start) >= 0 && p.Compare(end) <= 0
}

func contains[T chrono.Temporal[T]](iv Interval[T], p T) (bool, error) {
	start, err := iv.Start()
	if err != nil {
		return false, err
	}
	end, err := iv.End()
	if err != nil {
		return false, err
	}
	return within(p, start, end), nil
}
