package duration

import "calspan/internal/chrono"

// Between returns the duration from start to end, extracting the largest
// unit first: whole years, then whole months, then (when the anchors carry a
// date) whole days, hours, minutes, seconds and nanoseconds. After each unit
// the start is advanced by the extracted amount, so the result added to start
// reproduces end. The order is greedy from the start and can differ from an
// extraction that works back from the end when month lengths differ.
//
// Anchors that carry only a time of day are measured directly in
// nanoseconds. Anchors that carry only a year and month yield years and
// months. Mixed-granularity anchors (see chrono.Unifier) are first promoted
// to their common richer representation.
func Between[T chrono.Temporal[T]](start, end T) Duration {
	if u, ok := any(start).(chrono.Unifier[T]); ok {
		start, end = u.Unify(end)
	}

	if !start.IsSupported(chrono.Months) && start.IsSupported(chrono.Nanos) {
		return New(0, 0, 0, 0, 0, 0, 0, start.Until(end, chrono.Nanos))
	}

	var fields [7]int64
	units := []chrono.Unit{chrono.Years, chrono.Months, chrono.Days, chrono.Hours, chrono.Minutes, chrono.Seconds, chrono.Nanos}
	cur := start
	for i, u := range units {
		if !cur.IsSupported(u) {
			continue
		}
		n := cur.Until(end, u)
		if n == 0 {
			continue
		}
		fields[i] = n
		cur = cur.Plus(n, u)
	}
	return New(fields[0], fields[1], 0, fields[2], fields[3], fields[4], fields[5], fields[6])
}
