package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"calspan/internal/anchor"
	"calspan/internal/chrono"
	"calspan/internal/duration"
	"calspan/internal/interval"
	"calspan/internal/model"
)

// Export writes events as a VCALENDAR. Events without a UID get a random
// one. stamp is written as every DTSTAMP.
func Export(w io.Writer, events []model.Event, stamp time.Time) error {
	cal := ical.NewCalendarFor("calspan")
	cal.SetMethod(ical.MethodPublish)

	for _, ev := range events {
		uid := ev.UID
		if uid == "" {
			uid = uuid.NewString() + "@calspan"
		}
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(stamp)
		if err := fillVEvent(ve, ev); err != nil {
			return fmt.Errorf("export %s: %w", uid, err)
		}
	}
	return cal.SerializeTo(w)
}

func fillVEvent(ve *ical.VEvent, ev model.Event) error {
	if ev.Span == nil {
		return fmt.Errorf("event has no span")
	}
	if ev.Summary != "" {
		ve.SetSummary(ev.Summary)
	}
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}
	if ev.Location != "" {
		ve.SetLocation(ev.Location)
	}

	start, err := ev.Span.Start()
	if err != nil {
		return err
	}
	if err := setPoint(ve, ical.ComponentPropertyDtStart, start); err != nil {
		return fmt.Errorf("DTSTART: %w", err)
	}

	// DURATION only carries weeks, days and time; anything with months or
	// years is written as DTEND.
	d := ev.Span.Duration()
	if _, isTwoPoint := ev.Span.(interval.TwoPoint[anchor.Point]); isTwoPoint || d.Years() != 0 || d.Months() != 0 {
		end, err := ev.Span.End()
		if err != nil {
			return err
		}
		if err := setPoint(ve, ical.ComponentPropertyDtEnd, end); err != nil {
			return fmt.Errorf("DTEND: %w", err)
		}
	} else {
		ve.SetProperty(ical.ComponentPropertyDuration, d.Format(true))
	}

	switch {
	case ev.Recurrence != nil:
		rule, err := cadenceRule(*ev.Recurrence)
		if err != nil {
			return err
		}
		ve.AddRrule(rule)
	case ev.RRule != "":
		ve.AddRrule(ev.RRule)
	}

	for _, ex := range ev.ExDates {
		value, params, err := icsValue(ex)
		if err != nil {
			return fmt.Errorf("EXDATE: %w", err)
		}
		ve.AddExdate(value, params...)
	}

	if ev.IsOverride {
		if err := setPoint(ve, ical.ComponentPropertyRecurrenceId, ev.RecurrenceID); err != nil {
			return fmt.Errorf("RECURRENCE-ID: %w", err)
		}
	}
	return nil
}

func setPoint(ve *ical.VEvent, prop ical.ComponentProperty, p anchor.Point) error {
	value, params, err := icsValue(p)
	if err != nil {
		return err
	}
	ve.SetProperty(prop, value, params...)
	return nil
}

// icsValue renders p as an iCalendar DATE or DATE-TIME.
func icsValue(p anchor.Point) (string, []ical.PropertyParameter, error) {
	switch p.Kind() {
	case anchor.KindDate, anchor.KindYearMonth:
		t, _ := p.Instant(time.UTC)
		return t.Format(icsDate), []ical.PropertyParameter{ical.WithValue(string(ical.ValueDataTypeDate))}, nil
	case anchor.KindDateTime:
		t, _ := p.Instant(time.UTC)
		return t.Format(icsLocal), nil, nil
	case anchor.KindOffsetDateTime:
		t, _ := p.Instant(time.UTC)
		if anchor.NamedZone(t.Location()) {
			return t.Format(icsLocal), []ical.PropertyParameter{ical.WithTZID(t.Location().String())}, nil
		}
		return t.UTC().Format(icsTimestamp), nil, nil
	}
	return "", nil, fmt.Errorf("%s has no date", p)
}

var unitFreqs = map[chrono.Unit]rrule.Frequency{
	chrono.Years:   rrule.YEARLY,
	chrono.Months:  rrule.MONTHLY,
	chrono.Days:    rrule.DAILY,
	chrono.Hours:   rrule.HOURLY,
	chrono.Minutes: rrule.MINUTELY,
	chrono.Seconds: rrule.SECONDLY,
}

// cadenceRule writes a cadence back as FREQ/INTERVAL/COUNT. The step must
// be a whole number of a single unit.
func cadenceRule(r interval.Repeated[anchor.Point]) (string, error) {
	step := r.Duration()
	var (
		opt   rrule.ROption
		found int
	)
	for _, u := range duration.Units() {
		n, err := step.Get(u)
		if err != nil || n == 0 {
			continue
		}
		freq, ok := unitFreqs[u]
		if !ok {
			return "", fmt.Errorf("cadence step %s has no RRULE frequency", step)
		}
		opt.Freq, opt.Interval = freq, int(n)
		found++
	}
	if found != 1 || opt.Interval < 0 {
		return "", fmt.Errorf("cadence step %s is not a single positive unit", step)
	}
	if opt.Freq == rrule.DAILY && opt.Interval%7 == 0 {
		opt.Freq, opt.Interval = rrule.WEEKLY, opt.Interval/7
	}
	if opt.Interval == 1 {
		opt.Interval = 0
	}
	if !r.IsInfinite() {
		if r.Repetition() == 0 {
			return "", fmt.Errorf("cadence with zero repetitions has no RRULE")
		}
		opt.Count = r.Repetition()
	}
	return opt.RRuleString(), nil
}
