// Package chrono holds the vocabulary shared by durations, anchors and
// intervals: unit and field tags, the anchor capability and the error kinds.
package chrono

// Temporal is the capability an anchor type must provide to take part in
// duration and interval arithmetic. T is the implementing type itself.
//
// Plus panics when u is not supported; callers check IsSupported first.
// Until returns the number of whole units from the receiver to end,
// truncated toward zero, and is negative when end is earlier.
type Temporal[T any] interface {
	IsSupported(u Unit) bool
	Plus(amount int64, u Unit) T
	Until(end T, u Unit) int64
	Compare(other T) int
	String() string
}

// HasDate reports whether t carries a date portion.
func HasDate[T Temporal[T]](t T) bool {
	return t.IsSupported(Days)
}

// HasTime reports whether t carries a time-of-day portion.
func HasTime[T Temporal[T]](t T) bool {
	return t.IsSupported(Nanos)
}

// Unifier is implemented by anchor types whose values may be of mixed
// granularity. Unify returns both values converted to their richest common
// representation so that unit extraction between them is well defined.
type Unifier[T any] interface {
	Unify(other T) (T, T)
}
