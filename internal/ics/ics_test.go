package ics

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calspan/internal/anchor"
	"calspan/internal/duration"
	"calspan/internal/interval"
	"calspan/internal/model"
)

func loadTeam(t *testing.T) []model.Event {
	t.Helper()
	body, err := os.ReadFile("testdata/team.ics")
	require.NoError(t, err)
	events, err := ParseICS(Source{ID: "team", Location: "testdata/team.ics"}, body)
	require.NoError(t, err)
	return events
}

func byUID(events []model.Event) map[string]model.Event {
	out := make(map[string]model.Event)
	for _, ev := range events {
		if !ev.IsOverride {
			out[ev.UID] = ev
		}
	}
	return out
}

func TestParseICS(t *testing.T) {
	events := loadTeam(t)
	// The VEVENT without a UID is skipped.
	require.Len(t, events, 4)
	m := byUID(events)

	standup := m["standup@example.com"]
	assert.Equal(t, "team", standup.SourceID)
	assert.Equal(t, "2024-01-01T09:00:00Z/PT15M", standup.Span.String())
	require.NotNil(t, standup.Recurrence)
	assert.Equal(t, "R5/2024-01-01T09:00:00Z/P1D", standup.Recurrence.String())
	assert.Empty(t, standup.RRule)
	require.Len(t, standup.ExDates, 1)
	assert.Equal(t, "2024-01-03T09:00:00Z", standup.ExDates[0].String())

	offsite := m["offsite@example.com"]
	assert.True(t, offsite.AllDay)
	assert.IsType(t, interval.TwoPoint[anchor.Point]{}, offsite.Span)
	assert.Equal(t, "2024-01-10/2024-01-12", offsite.Span.String())
	assert.Equal(t, "Lake house", offsite.Location)

	review := m["review@example.com"]
	assert.Nil(t, review.Recurrence)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=TU,TH;COUNT=4", review.RRule)
	start, err := review.Span.Start()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T14:00:00-05:00[America/New_York]", start.String())

	var override model.Event
	for _, ev := range events {
		if ev.IsOverride {
			override = ev
		}
	}
	assert.Equal(t, "standup@example.com", override.UID)
	assert.Equal(t, "2024-01-04T09:00:00Z", override.RecurrenceID.String())
}

func TestParseICSRejectsEmpty(t *testing.T) {
	_, err := ParseICS(Source{ID: "x"}, nil)
	assert.Error(t, err)
}

func TestParseCadence(t *testing.T) {
	start := anchor.MustParse("2024-01-15")
	tests := []struct {
		rule string
		want string
		ok   bool
	}{
		{"FREQ=WEEKLY;INTERVAL=2;COUNT=3", "R3/2024-01-15/P14D", true},
		{"FREQ=MONTHLY", "R/2024-01-15/P1M", true},
		{"FREQ=HOURLY;INTERVAL=6;COUNT=4", "R4/2024-01-15/PT6H", true},
		{"FREQ=WEEKLY;BYDAY=MO", "", false},
		{"FREQ=DAILY;UNTIL=20240201T000000Z", "", false},
	}
	for _, tt := range tests {
		r, ok, err := parseCadence(tt.rule, start)
		require.NoError(t, err, tt.rule)
		assert.Equal(t, tt.ok, ok, tt.rule)
		if ok {
			assert.Equal(t, tt.want, r.String(), tt.rule)
		}
	}

	// Monthly rules from the 31st skip short months, so they stay raw.
	_, ok, err := parseCadence("FREQ=MONTHLY;COUNT=3", anchor.MustParse("2024-01-31"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = parseCadence("FREQ=SOMETIMES", start)
	assert.Error(t, err)
}

func TestParseICSPoint(t *testing.T) {
	tests := []struct {
		value  string
		params map[string][]string
		want   string
		kind   anchor.Kind
	}{
		{"20240110", nil, "2024-01-10", anchor.KindDate},
		{"20240110", map[string][]string{"VALUE": {"DATE"}}, "2024-01-10", anchor.KindDate},
		{"20240110T083000Z", nil, "2024-01-10T08:30:00Z", anchor.KindOffsetDateTime},
		{"20240110T083000", nil, "2024-01-10T08:30:00", anchor.KindDateTime},
		{"20240710T083000", map[string][]string{"TZID": {"Europe/Paris"}}, "2024-07-10T08:30:00+02:00[Europe/Paris]", anchor.KindOffsetDateTime},
	}
	for _, tt := range tests {
		p, err := parseICSPoint(tt.value, tt.params)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, p.String(), tt.value)
		assert.Equal(t, tt.kind, p.Kind(), tt.value)
	}

	_, err := parseICSPoint("20240110T0830", nil)
	assert.Error(t, err)
	_, err = parseICSPoint("20240110T083000", map[string][]string{"TZID": {"Nowhere/Special"}})
	assert.Error(t, err)
}

func occurrenceSummaries(occ []model.Occurrence) []string {
	out := make([]string, 0, len(occ))
	for _, o := range occ {
		out = append(out, o.Summary+" "+o.InstanceKey)
	}
	return out
}

func TestExpandOccurrences(t *testing.T) {
	res, err := ExpandOccurrences(loadTeam(t), ExpandConfig{Location: time.UTC})
	require.NoError(t, err)
	assert.Empty(t, res.TruncatedEvents)
	assert.Equal(t, []string{
		"Standup 2024-01-01T09:00:00Z",
		"Standup 2024-01-02T09:00:00Z",
		"Review 2024-01-02T14:00:00-05:00[America/New_York]",
		"Standup (moved) 2024-01-04T10:00:00Z",
		"Review 2024-01-04T14:00:00-05:00[America/New_York]",
		"Standup 2024-01-05T09:00:00Z",
		"Review 2024-01-09T14:00:00-05:00[America/New_York]",
		"Offsite 2024-01-10",
		"Review 2024-01-11T14:00:00-05:00[America/New_York]",
	}, occurrenceSummaries(res.Occurrences))

	standup := res.Occurrences[0]
	assert.Equal(t, "2024-01-01T09:00:00Z/2024-01-01T09:15:00Z", standup.Window.String())
	assert.Equal(t, "team", standup.SourceID)
}

func TestExpandOccurrencesRange(t *testing.T) {
	res, err := ExpandOccurrences(loadTeam(t), ExpandConfig{
		Location:   time.UTC,
		RangeStart: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Standup (moved) 2024-01-04T10:00:00Z",
		"Review 2024-01-04T14:00:00-05:00[America/New_York]",
		"Standup 2024-01-05T09:00:00Z",
	}, occurrenceSummaries(res.Occurrences))
}

func TestExpandOccurrencesCap(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//example//EN",
		"BEGIN:VEVENT",
		"UID:daily@example.com",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;VALUE=DATE:20240101",
		"RRULE:FREQ=DAILY",
		"SUMMARY:Forever",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")
	events, err := ParseICS(Source{ID: "inline"}, []byte(body))
	require.NoError(t, err)

	res, err := ExpandOccurrences(events, ExpandConfig{Location: time.UTC, MaxOccurrencesPerEvent: 3})
	require.NoError(t, err)
	assert.Len(t, res.Occurrences, 3)
	assert.Equal(t, []string{"daily@example.com"}, res.TruncatedEvents)
	assert.Equal(t, "2024-01-03/2024-01-04", res.Occurrences[2].Window.String())
}

func TestExpandOccurrencesRejectsInvertedRange(t *testing.T) {
	_, err := ExpandOccurrences(nil, ExpandConfig{
		RangeStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	events := loadTeam(t)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, events, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	out := buf.String()
	assert.Contains(t, out, "RRULE:FREQ=DAILY;COUNT=5")
	assert.Contains(t, out, "DURATION:PT15M")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240110")
	assert.Contains(t, out, "DTSTART;TZID=America/New_York:20240102T140000")
	assert.Contains(t, out, "RECURRENCE-ID:20240104T090000Z")

	again, err := ParseICS(Source{ID: "team"}, buf.Bytes())
	require.NoError(t, err)
	require.Len(t, again, len(events))

	before, after := byUID(events), byUID(again)
	for uid, ev := range before {
		assert.Equal(t, ev.Span.String(), after[uid].Span.String(), uid)
		assert.Equal(t, ev.RRule, after[uid].RRule, uid)
		if ev.Recurrence != nil {
			require.NotNil(t, after[uid].Recurrence, uid)
			assert.Equal(t, ev.Recurrence.String(), after[uid].Recurrence.String(), uid)
		}
	}
}

func TestExportAssignsUID(t *testing.T) {
	ev := model.Event{
		Summary: "Focus",
		Span:    interval.NewDurationStart(duration.MustParse("PT2H"), anchor.MustParse("2024-03-01T09:00")),
	}
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []model.Event{ev}, time.Now()))

	events, err := ParseICS(Source{ID: "out"}, buf.Bytes())
	require.NoError(t, err)
	require.Len(t, events, 1)
	uid, ok := strings.CutSuffix(events[0].UID, "@calspan")
	require.True(t, ok)
	_, err = uuid.Parse(uid)
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-01T09:00:00/PT2H", events[0].Span.String())
}

func TestExportLongSpanUsesDTEND(t *testing.T) {
	ev := model.Event{
		UID:  "sabbatical@example.com",
		Span: interval.NewDurationStart(duration.MustParse("P1M"), anchor.MustParse("2024-01-31")),
	}
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []model.Event{ev}, time.Now()))
	assert.Contains(t, buf.String(), "DTEND;VALUE=DATE:20240229")
	assert.NotContains(t, buf.String(), "DURATION")
}

func TestCadenceRule(t *testing.T) {
	r, err := interval.NewRepeated(interval.NewDurationStart(duration.MustParse("P14D"), anchor.MustParse("2024-01-01")), 3)
	require.NoError(t, err)
	rule, err := cadenceRule(r)
	require.NoError(t, err)
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=2;COUNT=3", rule)

	r, err = interval.NewRepeated(interval.NewDurationStart(duration.MustParse("P1M15D"), anchor.MustParse("2024-01-01")), 3)
	require.NoError(t, err)
	_, err = cadenceRule(r)
	assert.Error(t, err)
}
