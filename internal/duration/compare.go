package duration

import "calspan/internal/chrono"

// Compare orders durations field by field: years, then months, days, hours,
// minutes, seconds and nanoseconds; the first differing field decides.
//
// This is not a comparison of elapsed time. P1M and P30D compare as
// different (P1M is greater) although they span the same time in April, and
// P1Y compares greater than P400D. Use CompareAt for elapsed time.
func (d Duration) Compare(o Duration) int {
	a := [...]int64{d.years, d.months, d.days, d.hours, d.minutes, d.seconds, d.nanos}
	b := [...]int64{o.years, o.months, o.days, o.hours, o.minutes, o.seconds, o.nanos}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Equal reports whether all seven stored components are equal.
func (d Duration) Equal(o Duration) bool {
	return d == o
}

// CompareAt orders a and b by the point each reaches when added to anchor.
func CompareAt[T chrono.Temporal[T]](a, b Duration, anchor T) int {
	return AddTo(a, anchor).Compare(AddTo(b, anchor))
}
