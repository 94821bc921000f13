package interval

import (
	"strconv"

	"calspan/internal/chrono"
	"calspan/internal/duration"
)

// Infinity is the repetition count of an interval that repeats forever.
const Infinity = -1

// Repeated is a base interval traversed a number of times back to back.
// A repetition of 0 means the interval never occurs, N >= 1 means N
// consecutive occurrences and Infinity means it never stops.
//
// Occurrences chain forward from the start for start-anchored and two-point
// bases and backward from the end for end-anchored bases.
type Repeated[T chrono.Temporal[T]] struct {
	base       Interval[T]
	repetition int
}

// NewRepeated wraps base. Repetitions below Infinity and nested Repeated
// bases are rejected with an InvalidValue error.
func NewRepeated[T chrono.Temporal[T]](base Interval[T], repetition int) (Repeated[T], error) {
	if repetition < Infinity {
		return Repeated[T]{}, chrono.InvalidValue("repetition must be -1 or greater, got %d", repetition)
	}
	if base == nil {
		return Repeated[T]{}, chrono.InvalidValue("repeated interval without base")
	}
	if _, nested := base.(Repeated[T]); nested {
		return Repeated[T]{}, chrono.InvalidValue("repeated interval cannot wrap another repeated interval")
	}
	return Repeated[T]{base: base, repetition: repetition}, nil
}

// Infinite wraps base with infinite repetition.
func Infinite[T chrono.Temporal[T]](base Interval[T]) (Repeated[T], error) {
	return NewRepeated(base, Infinity)
}

func (r Repeated[T]) interval() {}

func (r Repeated[T]) Repetition() int   { return r.repetition }
func (r Repeated[T]) Base() Interval[T] { return r.base }
func (r Repeated[T]) IsInfinite() bool  { return r.repetition == Infinity }

// Duration is the duration of a single occurrence.
func (r Repeated[T]) Duration() duration.Duration { return r.base.Duration() }

// Start and End are the bounds of a single occurrence of the base.
func (r Repeated[T]) Start() (T, error) { return r.base.Start() }
func (r Repeated[T]) End() (T, error)   { return r.base.End() }

// chain moves from anchor by the base duration n times, forward when sign
// is positive and backward otherwise.
func chain[T chrono.Temporal[T]](anchor T, d duration.Duration, n int, sign int) T {
	for range n {
		if sign > 0 {
			anchor = duration.AddTo(d, anchor)
		} else {
			anchor = duration.SubtractFrom(d, anchor)
		}
	}
	return anchor
}

// endAnchored reports whether occurrences chain backward from the end.
func (r Repeated[T]) endAnchored() bool {
	_, ok := r.base.(DurationEnd[T])
	return ok
}

func (r Repeated[T]) bounds() (T, T, error) {
	var zero T
	if _, pure := r.base.(PureDuration[T]); pure {
		return zero, zero, chrono.NoAnchorError("repeated bounds")
	}
	if r.IsInfinite() {
		return zero, zero, chrono.InfiniteRepetitionError("repeated bounds")
	}
	d := r.base.Duration()
	if r.endAnchored() {
		end, err := r.base.End()
		if err != nil {
			return zero, zero, err
		}
		return chain(end, d, r.repetition, -1), end, nil
	}
	start, err := r.base.Start()
	if err != nil {
		return zero, zero, err
	}
	return start, chain(start, d, r.repetition, 1), nil
}

// StartWithRepetition is the start of the first occurrence.
func (r Repeated[T]) StartWithRepetition() (T, error) {
	start, _, err := r.bounds()
	return start, err
}

// EndWithRepetition is the end of the last occurrence.
func (r Repeated[T]) EndWithRepetition() (T, error) {
	_, end, err := r.bounds()
	return end, err
}

// DurationWithRepetition is the span of all occurrences: zero for no
// repetition, the base duration for one, and for N the duration measured
// across N chained occurrences. Pure bases scale by N and renormalize.
func (r Repeated[T]) DurationWithRepetition() (duration.Duration, error) {
	switch r.repetition {
	case Infinity:
		return duration.Zero, chrono.InfiniteRepetitionError("duration with repetition")
	case 0:
		return duration.Zero, nil
	case 1:
		return r.base.Duration(), nil
	}
	if _, pure := r.base.(PureDuration[T]); pure {
		return r.base.Duration().Times(int64(r.repetition)).Normalized(), nil
	}
	start, end, err := r.bounds()
	if err != nil {
		return duration.Zero, err
	}
	return duration.Between(start, end), nil
}

// GetWith reads unit from the repetition-aware duration, or from the base
// duration when considerRepetition is false.
func (r Repeated[T]) GetWith(unit chrono.Unit, considerRepetition bool) (int64, error) {
	if !considerRepetition {
		return r.base.Get(unit)
	}
	d, err := r.DurationWithRepetition()
	if err != nil {
		return 0, err
	}
	return d.Get(unit)
}

func (r Repeated[T]) Get(unit chrono.Unit) (int64, error) { return r.GetWith(unit, true) }

// ContainsWith checks p against the bounds of all occurrences, or of the
// base alone when considerRepetition is false. Both bounds are inclusive.
func (r Repeated[T]) ContainsWith(p T, considerRepetition bool) (bool, error) {
	if !considerRepetition {
		return r.base.Contains(p)
	}
	start, end, err := r.bounds()
	if err != nil {
		return false, err
	}
	return within(p, start, end), nil
}

func (r Repeated[T]) Contains(p T) (bool, error) { return r.ContainsWith(p, true) }

func (r Repeated[T]) WithRepetition(n int) (Repeated[T], error) {
	return NewRepeated(r.base, n)
}

func (r Repeated[T]) rewrap(base Interval[T]) Interval[T] {
	return Repeated[T]{base: base, repetition: r.repetition}
}

func (r Repeated[T]) WithStart(start T) Interval[T] { return r.rewrap(r.base.WithStart(start)) }
func (r Repeated[T]) WithEnd(end T) Interval[T]     { return r.rewrap(r.base.WithEnd(end)) }

func (r Repeated[T]) WithDuration(d duration.Duration) Interval[T] {
	return r.rewrap(r.base.WithDuration(d))
}

func (r Repeated[T]) ToTwoPoint() (TwoPoint[T], error)           { return r.base.ToTwoPoint() }
func (r Repeated[T]) ToPureDuration() PureDuration[T]            { return r.base.ToPureDuration() }
func (r Repeated[T]) ToDurationEnd() (DurationEnd[T], error)     { return r.base.ToDurationEnd() }
func (r Repeated[T]) ToDurationStart() (DurationStart[T], error) { return r.base.ToDurationStart() }

func (r Repeated[T]) AddTo(p T) T        { return r.base.AddTo(p) }
func (r Repeated[T]) SubtractFrom(p T) T { return r.base.SubtractFrom(p) }

// Occurrences lists the chained occurrence windows in chronological order.
// A positive limit caps the count; an infinite repetition needs one.
func (r Repeated[T]) Occurrences(limit int) ([]TwoPoint[T], error) {
	if _, pure := r.base.(PureDuration[T]); pure {
		return nil, chrono.NoAnchorError("occurrences")
	}
	n := r.repetition
	switch {
	case r.IsInfinite() && limit <= 0:
		return nil, chrono.InfiniteRepetitionError("occurrences without limit")
	case r.IsInfinite() || (limit > 0 && limit < n):
		n = limit
	}

	d := r.base.Duration()
	out := make([]TwoPoint[T], 0, n)
	if r.endAnchored() {
		cur, err := r.base.End()
		if err != nil {
			return nil, err
		}
		for range n {
			prev := duration.SubtractFrom(d, cur)
			out = append(out, NewTwoPoint(prev, cur))
			cur = prev
		}
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out, nil
	}
	cur, err := r.base.Start()
	if err != nil {
		return nil, err
	}
	for range n {
		next := duration.AddTo(d, cur)
		out = append(out, NewTwoPoint(cur, next))
		cur = next
	}
	return out, nil
}

// Format writes R<n>/ followed by the base, or R/ for infinite repetition.
// With omitSingleRepetition a repetition of exactly one writes the base
// alone.
func (r Repeated[T]) Format(omitSingleRepetition bool) string {
	switch {
	case omitSingleRepetition && r.repetition == 1:
		return r.base.String()
	case r.IsInfinite():
		return "R/" + r.base.String()
	}
	return "R" + strconv.Itoa(r.repetition) + "/" + r.base.String()
}

func (r Repeated[T]) String() string { return r.Format(false) }
