package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"calspan/internal/anchor"
	"calspan/internal/chrono"
	"calspan/internal/duration"
	"calspan/internal/interval"
	appLog "calspan/internal/log"
	"calspan/internal/model"
)

const (
	icsDate      = "20060102"
	icsLocal     = "20060102T150405"
	icsTimestamp = "20060102T150405Z"
)

// ParseICS parses a single ICS payload into events.
//
//   - DTSTART values become Dates (VALUE=DATE), OffsetDateTimes (UTC or
//     TZID) or floating DateTimes.
//   - DTEND gives a TwoPoint span; DURATION, or the implied one day / zero
//     length, gives a DurationStart span.
//   - An RRULE made of FREQ, INTERVAL and COUNT becomes a Repeated
//     cadence; any other rule is kept raw for the RRULE engine.
func ParseICS(src Source, body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "location", redactURL(src.Location))
		return nil, err
	}

	events := make([]model.Event, 0)

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "location", redactURL(src.Location))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "location", redactURL(src.Location), "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (model.Event, error) {
	var out model.Event
	out.SourceID = src.ID

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return out, fmt.Errorf("event %s: missing DTSTART", out.UID)
	}
	start, err := parseICSPoint(startProp.Value, startProp.ICalParameters)
	if err != nil {
		return out, fmt.Errorf("event %s: DTSTART: %w", out.UID, err)
	}
	out.AllDay = start.Kind() == anchor.KindDate

	span, err := parseSpan(ve, start, out.AllDay)
	if err != nil {
		return out, fmt.Errorf("event %s: %w", out.UID, err)
	}
	out.Span = span

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		cadence, ok, err := parseCadence(p.Value, start)
		if err != nil {
			return out, fmt.Errorf("event %s: RRULE: %w", out.UID, err)
		}
		if ok {
			out.Recurrence = &cadence
		} else {
			out.RRule = p.Value
		}
	}

	// EXDATE can appear multiple times, each with a comma separated list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			pt, err := parseICSPoint(part, p.ICalParameters)
			if err != nil {
				appLog.Warn("ics: skipping unreadable EXDATE", "uid", out.UID, "value", part)
				continue
			}
			out.ExDates = append(out.ExDates, pt)
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRecurrenceId); p != nil {
		pt, err := parseICSPoint(p.Value, p.ICalParameters)
		if err != nil {
			return out, fmt.Errorf("event %s: RECURRENCE-ID: %w", out.UID, err)
		}
		out.RecurrenceID = pt
		out.IsOverride = true
	}

	return out, nil
}

func parseSpan(ve *ical.VEvent, start anchor.Point, allDay bool) (interval.Interval[anchor.Point], error) {
	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		end, err := parseICSPoint(p.Value, p.ICalParameters)
		if err != nil {
			return nil, fmt.Errorf("DTEND: %w", err)
		}
		return interval.NewTwoPoint(start, end), nil
	}
	if p := ve.GetProperty(ical.ComponentPropertyDuration); p != nil {
		d, err := duration.Parse(strings.TrimSpace(p.Value))
		if err != nil {
			return nil, fmt.Errorf("DURATION: %w", err)
		}
		return interval.NewDurationStart(d, start), nil
	}
	// RFC 5545: a date start with neither lasts one day, a date-time start
	// has no length.
	if allDay {
		return interval.NewDurationStart(duration.New(0, 0, 0, 1, 0, 0, 0, 0), start), nil
	}
	return interval.NewDurationStart(duration.Zero, start), nil
}

// parseICSPoint reads a DATE or DATE-TIME value, honouring VALUE and TZID.
func parseICSPoint(v string, params map[string][]string) (anchor.Point, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return anchor.Point{}, errors.New("empty time value")
	}

	if isDateValue(v, params) {
		t, err := time.Parse(icsDate, v)
		if err != nil {
			return anchor.Point{}, err
		}
		return anchor.FromDate(anchor.DateOf(t)), nil
	}

	// UTC form, e.g. 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(icsTimestamp, v)
		if err != nil {
			return anchor.Point{}, err
		}
		return anchor.FromOffsetDateTime(anchor.OffsetDateTimeOf(t)), nil
	}

	if tz := param(params, string(ical.ParameterTzid)); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return anchor.Point{}, fmt.Errorf("unknown TZID %q: %w", tz, err)
		}
		t, err := time.ParseInLocation(icsLocal, v, loc)
		if err != nil {
			return anchor.Point{}, err
		}
		return anchor.FromOffsetDateTime(anchor.OffsetDateTimeOf(t)), nil
	}

	// Floating local time.
	t, err := time.Parse(icsLocal, v)
	if err != nil {
		return anchor.Point{}, err
	}
	return anchor.FromDateTime(anchor.DateTimeOf(t)), nil
}

func isDateValue(v string, params map[string][]string) bool {
	if strings.EqualFold(param(params, string(ical.ParameterValue)), string(ical.ValueDataTypeDate)) {
		return true
	}
	return !strings.Contains(v, "T")
}

func param(params map[string][]string, key string) string {
	if vs, ok := params[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

var freqUnits = map[rrule.Frequency]chrono.Unit{
	rrule.YEARLY:   chrono.Years,
	rrule.MONTHLY:  chrono.Months,
	rrule.WEEKLY:   chrono.Weeks,
	rrule.DAILY:    chrono.Days,
	rrule.HOURLY:   chrono.Hours,
	rrule.MINUTELY: chrono.Minutes,
	rrule.SECONDLY: chrono.Seconds,
}

// parseCadence maps a FREQ/INTERVAL/COUNT rule onto a Repeated whose base
// is one step long and starts at start. ok is false for rules that need
// BYxxx or UNTIL, and for monthly or yearly rules starting after the 28th,
// where RRULE skips short months instead of clamping.
func parseCadence(rule string, start anchor.Point) (interval.Repeated[anchor.Point], bool, error) {
	var zero interval.Repeated[anchor.Point]

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return zero, false, err
	}
	if !opt.Until.IsZero() || len(opt.Bysetpos) > 0 || len(opt.Bymonth) > 0 ||
		len(opt.Bymonthday) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 ||
		len(opt.Byweekday) > 0 || len(opt.Byhour) > 0 || len(opt.Byminute) > 0 ||
		len(opt.Bysecond) > 0 || len(opt.Byeaster) > 0 {
		return zero, false, nil
	}
	if opt.Freq == rrule.MONTHLY || opt.Freq == rrule.YEARLY {
		if t, _ := start.Instant(time.UTC); t.Day() > 28 {
			return zero, false, nil
		}
	}

	unit, ok := freqUnits[opt.Freq]
	if !ok {
		return zero, false, nil
	}
	step := max(opt.Interval, 1)
	d, err := duration.Of(int64(step), unit)
	if err != nil {
		return zero, false, err
	}

	repetition := interval.Infinity
	if opt.Count > 0 {
		repetition = opt.Count
	}
	r, err := interval.NewRepeated(interval.NewDurationStart(d, start), repetition)
	if err != nil {
		return zero, false, err
	}
	return r, true, nil
}
