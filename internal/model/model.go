package model

import (
	"calspan/internal/anchor"
	"calspan/internal/interval"
)

// Event is a logical calendar event before recurrence expansion.
type Event struct {
	SourceID string // calendar source ID
	UID      string // iCalendar UID

	Summary     string
	Description string
	Location    string

	AllDay bool

	// Span is one instance of the event: a TwoPoint when DTEND is known,
	// otherwise a DurationStart.
	Span interval.Interval[anchor.Point]

	// Recurrence, when set, is the cadence the event repeats on: a
	// Repeated whose base starts with Span and lasts one RRULE step.
	Recurrence *interval.Repeated[anchor.Point]

	// RRule holds a rule that a cadence cannot express (BYDAY, UNTIL, ...);
	// it is expanded with a full RRULE engine instead.
	RRule   string
	ExDates []anchor.Point

	// RecurrenceID marks an override of the instance starting at that point.
	RecurrenceID anchor.Point
	IsOverride   bool
}

// Occurrence represents a single concrete instance of an event.
type Occurrence struct {
	SourceID string
	UID      string

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// event, derived from its start.
	InstanceKey string

	Summary     string
	Description string
	Location    string

	AllDay bool

	Window interval.TwoPoint[anchor.Point]
}
