// Package recur turns repeated intervals into concrete occurrence windows.
package recur

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"calspan/internal/anchor"
	"calspan/internal/chrono"
	"calspan/internal/duration"
	"calspan/internal/interval"
	appLog "calspan/internal/log"
)

const (
	defaultMaxOccurrences = 5000

	// maxScan bounds how many windows are stepped over while looking for
	// the expansion range.
	maxScan = 1 << 20
)

// ExpandConfig controls how a repeated interval is expanded.
type ExpandConfig struct {
	// Location places local dates and date-times on the time line when
	// comparing against the range. If nil, time.Local is used.
	Location *time.Location

	// RangeStart / RangeEnd bound the windows returned; a window is kept
	// when it overlaps the inclusive range. A zero value leaves that side
	// open.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrences caps the number of windows. If zero,
	// defaultMaxOccurrences is used.
	MaxOccurrences int
}

// ExpandResult holds the windows in chronological order.
type ExpandResult struct {
	Windows []interval.TwoPoint[anchor.Point]
	// Truncated is set when MaxOccurrences cut the expansion short.
	Truncated bool
}

// Expand lists the windows of r that overlap the configured range.
//
// Start-anchored repetitions of a single fixed unit (seconds through weeks)
// are enumerated with an RRULE. Everything else is chained one step at a
// time so that month-end clamping accumulates exactly as
// Repeated.EndWithRepetition does.
//
// Infinite start-anchored repetitions stop at RangeEnd or MaxOccurrences.
// Infinite end-anchored ones run backwards and need RangeStart.
func Expand(r interval.Repeated[anchor.Point], cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if !cfg.RangeStart.IsZero() && !cfg.RangeEnd.IsZero() && cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}
	if _, err := r.Start(); err != nil {
		return result, err
	}
	if r.Repetition() == 0 {
		return result, nil
	}

	var err error
	if opt, ok := ruleFor(r); ok {
		result, err = expandRule(r, opt, cfg)
	} else {
		result, err = expandChain(r, cfg)
	}
	if err != nil {
		return ExpandResult{}, err
	}

	if result.Truncated {
		appLog.Error("expand: truncated occurrences due to cap",
			errors.New("max occurrences reached"),
			"interval", r.String(),
			"cap", cfg.MaxOccurrences,
		)
	}
	return result, nil
}

// ruleFor maps r to an RRULE when its base is start-anchored, its duration
// is a whole number of one fixed unit and its start is a dated value with
// whole seconds.
func ruleFor(r interval.Repeated[anchor.Point]) (rrule.ROption, bool) {
	var opt rrule.ROption
	if _, ok := r.Base().(interval.DurationEnd[anchor.Point]); ok {
		return opt, false
	}
	start, err := r.Start()
	if err != nil {
		return opt, false
	}
	switch start.Kind() {
	case anchor.KindDate, anchor.KindDateTime, anchor.KindOffsetDateTime:
	default:
		return opt, false
	}
	if t, _ := start.Instant(time.UTC); t.Nanosecond() != 0 {
		return opt, false
	}

	d := r.Duration()
	if d.IsNegative() || d.Years() != 0 || d.Months() != 0 || d.Nanos() != 0 {
		return opt, false
	}
	var (
		amount int64
		freq   rrule.Frequency
		n      int
	)
	for _, f := range []struct {
		v    int64
		freq rrule.Frequency
	}{
		{d.Days(), rrule.DAILY},
		{d.Hours(), rrule.HOURLY},
		{d.Minutes(), rrule.MINUTELY},
		{d.Seconds(), rrule.SECONDLY},
	} {
		if f.v != 0 {
			amount, freq = f.v, f.freq
			n++
		}
	}
	if n != 1 {
		return opt, false
	}
	if freq == rrule.DAILY && amount%7 == 0 {
		amount, freq = amount/7, rrule.WEEKLY
	}

	opt.Freq = freq
	opt.Interval = int(amount)
	if !r.IsInfinite() {
		opt.Count = r.Repetition()
	}
	return opt, true
}

func expandRule(r interval.Repeated[anchor.Point], opt rrule.ROption, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	start, _ := r.Start()
	origin := ruleLocation(start)
	eval := origin
	if opt.Freq != rrule.DAILY && opt.Freq != rrule.WEEKLY {
		// Time-based steps move the instant, not the wall clock.
		eval = time.UTC
	}
	t, _ := start.Instant(origin)
	opt.Dtstart = t.In(eval)

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return result, err
	}

	next := rule.Iterator()
	for i := 0; ; i++ {
		s, ok := next()
		if !ok {
			break
		}
		if i == maxScan {
			result.Truncated = true
			break
		}
		ws := anchor.FromInstant(s.In(origin), start.Kind())
		w := interval.NewTwoPoint(ws, duration.AddTo(r.Duration(), ws))
		if after(w, cfg) {
			break
		}
		if before(w, cfg) {
			continue
		}
		if len(result.Windows) == cfg.MaxOccurrences {
			result.Truncated = true
			break
		}
		result.Windows = append(result.Windows, w)
	}
	return result, nil
}

// ruleLocation picks the zone an RRULE is evaluated in. Local kinds use
// UTC so that wall-clock arithmetic matches the anchor types.
func ruleLocation(p anchor.Point) *time.Location {
	if p.Kind() == anchor.KindOffsetDateTime {
		t, _ := p.Instant(time.UTC)
		return t.Location()
	}
	return time.UTC
}

func expandChain(r interval.Repeated[anchor.Point], cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult
	d := r.Duration()

	end, isEnd := r.Base().(interval.DurationEnd[anchor.Point])
	if isEnd {
		if r.IsInfinite() && cfg.RangeStart.IsZero() {
			return result, chrono.InfiniteRepetitionError("expand end-anchored repetition without a range start")
		}
		cursor, _ := end.End()
		var rev []interval.TwoPoint[anchor.Point]
		for i := 0; r.IsInfinite() || i < r.Repetition(); i++ {
			if i == maxScan {
				result.Truncated = true
				break
			}
			prev := duration.SubtractFrom(d, cursor)
			w := interval.NewTwoPoint(prev, cursor)
			cursor = prev
			if before(w, cfg) {
				break
			}
			if after(w, cfg) {
				continue
			}
			rev = append(rev, w)
		}
		// Keep the windows nearest the range start.
		if len(rev) > cfg.MaxOccurrences {
			rev = rev[len(rev)-cfg.MaxOccurrences:]
			result.Truncated = true
		}
		for i := len(rev) - 1; i >= 0; i-- {
			result.Windows = append(result.Windows, rev[i])
		}
		return result, nil
	}

	cursor, _ := r.Start()
	for i := 0; r.IsInfinite() || i < r.Repetition(); i++ {
		if i == maxScan {
			result.Truncated = true
			break
		}
		next := duration.AddTo(d, cursor)
		w := interval.NewTwoPoint(cursor, next)
		cursor = next
		if after(w, cfg) {
			break
		}
		if before(w, cfg) {
			continue
		}
		if len(result.Windows) == cfg.MaxOccurrences {
			result.Truncated = true
			break
		}
		result.Windows = append(result.Windows, w)
	}
	return result, nil
}

// before reports whether w ends before the range starts.
func before(w interval.TwoPoint[anchor.Point], cfg ExpandConfig) bool {
	if cfg.RangeStart.IsZero() {
		return false
	}
	start, _ := w.Start()
	end, _ := w.End()
	t, ok := latest(start, end, cfg.Location)
	return ok && t.Before(cfg.RangeStart)
}

// after reports whether w starts after the range ends.
func after(w interval.TwoPoint[anchor.Point], cfg ExpandConfig) bool {
	if cfg.RangeEnd.IsZero() {
		return false
	}
	start, _ := w.Start()
	end, _ := w.End()
	t, ok := earliest(start, end, cfg.Location)
	return ok && t.After(cfg.RangeEnd)
}

func earliest(a, b anchor.Point, loc *time.Location) (time.Time, bool) {
	ta, ok := a.Instant(loc)
	if !ok {
		return time.Time{}, false
	}
	tb, _ := b.Instant(loc)
	if tb.Before(ta) {
		return tb, true
	}
	return ta, true
}

func latest(a, b anchor.Point, loc *time.Location) (time.Time, bool) {
	ta, ok := a.Instant(loc)
	if !ok {
		return time.Time{}, false
	}
	tb, _ := b.Instant(loc)
	if tb.After(ta) {
		return tb, true
	}
	return ta, true
}
