package duration

import "calspan/internal/chrono"

// AddTo returns anchor moved forward by d. Years and months are applied as a
// single month count, then days, then the time components. Components the
// anchor cannot represent are skipped: a time-of-day anchor ignores years,
// months and days, a date anchor ignores hours and finer.
func AddTo[T chrono.Temporal[T]](d Duration, anchor T) T {
	return apply(d, anchor, 1)
}

// SubtractFrom returns anchor moved backward by d, with the same skipping
// rules as AddTo.
func SubtractFrom[T chrono.Temporal[T]](d Duration, anchor T) T {
	return apply(d, anchor, -1)
}

func apply[T chrono.Temporal[T]](d Duration, t T, sign int64) T {
	switch {
	case t.IsSupported(chrono.Months):
		if m := d.years*monthsPerYear + d.months; m != 0 {
			t = t.Plus(sign*m, chrono.Months)
		}
	case t.IsSupported(chrono.Years):
		if d.years != 0 {
			t = t.Plus(sign*d.years, chrono.Years)
		}
	}

	if d.days != 0 && t.IsSupported(chrono.Days) {
		t = t.Plus(sign*d.days, chrono.Days)
	}

	if !t.IsSupported(chrono.Nanos) {
		return t
	}
	for _, c := range []struct {
		v    int64
		unit chrono.Unit
	}{
		{d.hours, chrono.Hours},
		{d.minutes, chrono.Minutes},
		{d.seconds, chrono.Seconds},
		{d.nanos, chrono.Nanos},
	} {
		if c.v != 0 {
			t = t.Plus(sign*c.v, c.unit)
		}
	}
	return t
}
