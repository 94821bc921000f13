package ics

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"calspan/internal/anchor"
	"calspan/internal/duration"
	"calspan/internal/interval"
	appLog "calspan/internal/log"
	"calspan/internal/model"
	"calspan/internal/recur"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// Location places floating date-times and all-day dates on the time
	// line. If nil, time.Local is used.
	Location *time.Location

	// RangeStart / RangeEnd define the inclusive time window for
	// occurrences. A zero value leaves that side open.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent is a safety cap to avoid infinite or extremely
	// large expansions. If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the list of expanded occurrences and optionally
// information about truncation.
type ExpandResult struct {
	Occurrences []model.Occurrence
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// ExpandOccurrences expands events into concrete occurrences within the
// configured range, sorted by start. It handles:
//
//   - Single events
//   - Cadence recurrences (FREQ/INTERVAL/COUNT) via recur.Expand
//   - Other RRULEs via the RRULE engine
//   - EXDATE for exception removal
//   - RECURRENCE-ID overrides
func ExpandOccurrences(events []model.Event, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if !cfg.RangeStart.IsZero() && !cfg.RangeEnd.IsZero() && cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID, keeping first-seen order.
	var uids []string
	baseByUID := make(map[string][]model.Event)
	overridesByUID := make(map[string][]model.Event)

	for _, ev := range events {
		if ev.IsOverride {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	allOccurrences := make([]model.Occurrence, 0)

	for _, uid := range uids {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			allOccurrences = append(allOccurrences, occ...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Error("expand: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	slices.SortStableFunc(allOccurrences, func(a, b model.Occurrence) int {
		as, _ := a.Window.Start()
		bs, _ := b.Window.Start()
		if c := as.Compare(bs); c != 0 {
			return c
		}
		return strings.Compare(a.UID, b.UID)
	})

	result.Occurrences = allOccurrences
	return result, nil
}

// expandEvent expands a single base event with its possible overrides,
// returning occurrences and whether the cap was hit.
func expandEvent(ev model.Event, overrides []model.Event, cfg ExpandConfig) ([]model.Occurrence, bool) {
	switch {
	case ev.Recurrence != nil:
		return expandCadence(ev, overrides, cfg)
	case ev.RRule != "":
		return expandRecurringEvent(ev, overrides, cfg)
	}
	return expandSingleEvent(ev, overrides, cfg), false
}

func expandSingleEvent(ev model.Event, overrides []model.Event, cfg ExpandConfig) []model.Occurrence {
	window, err := ev.Span.ToTwoPoint()
	if err != nil {
		appLog.Error("expand: event has no anchored span", err, "uid", ev.UID)
		return nil
	}
	start, _ := window.Start()
	if o, ok := findOverrideForStart(overrides, start); ok {
		return occurrenceIfVisible(o, cfg)
	}
	if !visible(window, cfg) {
		return nil
	}
	return []model.Occurrence{makeOccurrence(ev, window)}
}

func expandCadence(ev model.Event, overrides []model.Event, cfg ExpandConfig) ([]model.Occurrence, bool) {
	out := make([]model.Occurrence, 0)
	length := ev.Span.Duration()

	// Cadence steps are matched on their start, so widen the range start
	// by the event length.
	rcfg := recur.ExpandConfig{
		Location:       cfg.Location,
		RangeStart:     cfg.RangeStart,
		RangeEnd:       cfg.RangeEnd,
		MaxOccurrences: cfg.MaxOccurrencesPerEvent,
	}
	if !rcfg.RangeStart.IsZero() {
		rcfg.RangeStart = rcfg.RangeStart.Add(-spanLength(ev.Span, cfg.Location))
	}

	res, err := recur.Expand(*ev.Recurrence, rcfg)
	if err != nil {
		appLog.Error("expand: failed to expand cadence", err, "uid", ev.UID, "cadence", ev.Recurrence.String())
		return out, false
	}

	for _, step := range res.Windows {
		occStart, _ := step.Start()
		out = appendInstance(out, ev, overrides, occStart, length, cfg)
	}
	return out, res.Truncated
}

func expandRecurringEvent(ev model.Event, overrides []model.Event, cfg ExpandConfig) ([]model.Occurrence, bool) {
	out := make([]model.Occurrence, 0)
	hitCap := false

	start, err := ev.Span.Start()
	if err != nil {
		appLog.Error("expand: event has no start", err, "uid", ev.UID)
		return out, false
	}
	dtstart, ok := start.Instant(cfg.Location)
	if !ok {
		appLog.Warn("expand: RRULE needs a dated start", "uid", ev.UID, "start", start.String())
		return out, false
	}

	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RRule)
		return out, false
	}
	r.DTStart(dtstart)

	// Build a set so we can apply EXDATE.
	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		if t, ok := ex.Instant(cfg.Location); ok {
			set.ExDate(t.In(dtstart.Location()))
		}
	}

	length := ev.Span.Duration()
	from := cfg.RangeStart
	if !from.IsZero() {
		from = from.Add(-spanLength(ev.Span, cfg.Location))
	}

	next := set.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if !cfg.RangeEnd.IsZero() && t.After(cfg.RangeEnd) {
			break
		}
		if !from.IsZero() && t.Before(from) {
			continue
		}
		if len(out) == cfg.MaxOccurrencesPerEvent {
			hitCap = true
			break
		}
		occStart := anchor.FromInstant(t.In(dtstart.Location()), start.Kind())
		out = appendInstance(out, ev, overrides, occStart, length, cfg)
	}

	return out, hitCap
}

// appendInstance adds the instance of ev starting at occStart unless an
// EXDATE removes it or it falls outside the range. An override replaces
// the instance wholesale.
func appendInstance(out []model.Occurrence, ev model.Event, overrides []model.Event, occStart anchor.Point, length duration.Duration, cfg ExpandConfig) []model.Occurrence {
	if excluded(ev.ExDates, occStart) {
		return out
	}
	if o, ok := findOverrideForStart(overrides, occStart); ok {
		return append(out, occurrenceIfVisible(o, cfg)...)
	}
	window := interval.NewTwoPoint(occStart, duration.AddTo(length, occStart))
	if !visible(window, cfg) {
		return out
	}
	return append(out, makeOccurrence(ev, window))
}

func occurrenceIfVisible(o model.Event, cfg ExpandConfig) []model.Occurrence {
	window, err := o.Span.ToTwoPoint()
	if err != nil || !visible(window, cfg) {
		return nil
	}
	return []model.Occurrence{makeOccurrence(o, window)}
}

func excluded(exDates []anchor.Point, start anchor.Point) bool {
	for _, ex := range exDates {
		if ex.Equal(start) {
			return true
		}
	}
	return false
}

// findOverrideForStart finds an override whose RECURRENCE-ID names the
// instance starting at start.
func findOverrideForStart(overrides []model.Event, start anchor.Point) (model.Event, bool) {
	for _, ov := range overrides {
		if ov.RecurrenceID.Equal(start) {
			return ov, true
		}
	}
	return model.Event{}, false
}

// makeOccurrence converts a (possibly overridden) event and a concrete
// window into an Occurrence.
func makeOccurrence(ev model.Event, window interval.TwoPoint[anchor.Point]) model.Occurrence {
	start, _ := window.Start()
	return model.Occurrence{
		SourceID:    ev.SourceID,
		UID:         ev.UID,
		InstanceKey: start.String(),
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Window:      window,
	}
}

func visible(window interval.TwoPoint[anchor.Point], cfg ExpandConfig) bool {
	start, _ := window.Start()
	end, _ := window.End()
	s, ok := start.Instant(cfg.Location)
	if !ok {
		return true
	}
	e, _ := end.Instant(cfg.Location)
	return timeRangesOverlap(s, e, cfg.RangeStart, cfg.RangeEnd)
}

func spanLength(span interval.Interval[anchor.Point], loc *time.Location) time.Duration {
	start, err := span.Start()
	if err != nil {
		return 0
	}
	end, err := span.End()
	if err != nil {
		return 0
	}
	s, ok := start.Instant(loc)
	if !ok {
		return 0
	}
	e, _ := end.Instant(loc)
	if e.Before(s) {
		return 0
	}
	return e.Sub(s)
}

// timeRangesOverlap treats a zero bound as open.
func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !bStart.IsZero() && aEnd.Before(bStart) {
		return false
	}
	if !bEnd.IsZero() && bEnd.Before(aStart) {
		return false
	}
	return true
}
