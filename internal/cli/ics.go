package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"calspan/internal/ics"
	appLog "calspan/internal/log"
	"calspan/internal/model"
)

// NewICSCommand creates the ics command group.
func NewICSCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Read, expand and write iCalendar feeds",
		Long: `Work with iCalendar (RFC 5545) feeds. Locations are http(s) URLs or
file paths; without arguments the calendars from the config are used.`,
	}
	cmd.AddCommand(newICSEventsCommand(rootOpts))
	cmd.AddCommand(newICSExpandCommand(rootOpts))
	cmd.AddCommand(newICSExportCommand(rootOpts))
	return cmd
}

// sources turns location arguments into sources, falling back to the
// configured calendars.
func (o *RootOptions) sources(args []string) ([]ics.Source, error) {
	out := make([]ics.Source, 0, len(args))
	for _, loc := range args {
		out = append(out, ics.Source{ID: loc, Location: loc})
	}
	if len(out) > 0 {
		return out, nil
	}
	for _, c := range o.Config.Calendars {
		out = append(out, ics.Source{ID: c.ID, Location: c.Location})
	}
	if len(out) == 0 {
		return nil, NewExitError(ExitCommandError, "no calendar locations given and none configured")
	}
	return out, nil
}

// loadEvents fetches and parses every source. It fails only when no source
// could be read.
func (o *RootOptions) loadEvents(cmd *cobra.Command, args []string) ([]model.Event, error) {
	sources, err := o.sources(args)
	if err != nil {
		return nil, err
	}
	events, errs := ics.LoadEvents(cmd.Context(), o.fetcher(), sources)
	if len(errs) == len(sources) {
		return nil, WrapExitError(ExitFailure, "no calendar could be loaded", ics.JoinErrors(errs))
	}
	if len(errs) > 0 {
		appLog.Warn("some calendars failed to load", "error_count", len(errs))
	}
	return events, nil
}

// EventDTO is the JSON view of a parsed event.
type EventDTO struct {
	SourceID   string   `json:"source_id"`
	UID        string   `json:"uid"`
	Summary    string   `json:"summary,omitempty"`
	AllDay     bool     `json:"all_day"`
	Span       string   `json:"span"`
	Recurrence string   `json:"recurrence,omitempty"`
	RRule      string   `json:"rrule,omitempty"`
	ExDates    []string `json:"exdates,omitempty"`
	Override   string   `json:"recurrence_id,omitempty"`
}

func newICSEventsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "events [location...]",
		Short: "List the events of calendars as intervals",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := rootOpts.loadEvents(cmd, args)
			if err != nil {
				return err
			}

			omit := rootOpts.Config.OmitSingleRepetition
			dtos := make([]EventDTO, 0, len(events))
			for _, ev := range events {
				dto := EventDTO{
					SourceID: ev.SourceID,
					UID:      ev.UID,
					Summary:  ev.Summary,
					AllDay:   ev.AllDay,
					Span:     ev.Span.String(),
					RRule:    ev.RRule,
				}
				if ev.Recurrence != nil {
					dto.Recurrence = ev.Recurrence.Format(omit)
				}
				for _, ex := range ev.ExDates {
					dto.ExDates = append(dto.ExDates, ex.String())
				}
				if ev.IsOverride {
					dto.Override = ev.RecurrenceID.String()
				}
				dtos = append(dtos, dto)
			}

			return newFormatter(rootOpts, cmd).Success(dtos, func(w io.Writer) {
				for _, d := range dtos {
					rule := d.Recurrence
					if rule == "" {
						rule = d.RRule
					}
					if d.Override != "" {
						rule = "override of " + d.Override
					}
					if rule == "" {
						rule = "-"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.UID, d.Span, rule, d.Summary)
				}
			})
		},
	}
}

// OccurrenceDTO is the JSON view of an expanded occurrence.
type OccurrenceDTO struct {
	SourceID string `json:"source_id"`
	UID      string `json:"uid"`
	Summary  string `json:"summary,omitempty"`
	AllDay   bool   `json:"all_day"`
	Window   string `json:"window"`
	Duration string `json:"duration"`
}

// OccurrencesResult is the JSON payload of ics expand.
type OccurrencesResult struct {
	Occurrences   []OccurrenceDTO `json:"occurrences"`
	TruncatedUIDs []string        `json:"truncated_uids,omitempty"`
}

func newICSExpandCommand(rootOpts *RootOptions) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "expand [location...]",
		Short: "Expand calendars into concrete occurrences",
		Long: `Expand every event, applying recurrence rules, EXDATE exclusions
and RECURRENCE-ID overrides, and list the occurrences in start order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, limit, err := rf.resolve(rootOpts)
			if err != nil {
				return err
			}
			events, err := rootOpts.loadEvents(cmd, args)
			if err != nil {
				return err
			}

			res, err := ics.ExpandOccurrences(events, ics.ExpandConfig{
				Location:               rootOpts.Config.Location(),
				RangeStart:             from,
				RangeEnd:               to,
				MaxOccurrencesPerEvent: limit,
			})
			if err != nil {
				return err
			}

			fold := rootOpts.Config.FoldWeeks
			out := OccurrencesResult{
				Occurrences:   make([]OccurrenceDTO, 0, len(res.Occurrences)),
				TruncatedUIDs: res.TruncatedEvents,
			}
			for _, occ := range res.Occurrences {
				out.Occurrences = append(out.Occurrences, OccurrenceDTO{
					SourceID: occ.SourceID,
					UID:      occ.UID,
					Summary:  occ.Summary,
					AllDay:   occ.AllDay,
					Window:   occ.Window.String(),
					Duration: occ.Window.Duration().Format(fold),
				})
			}

			return newFormatter(rootOpts, cmd).Success(out, func(w io.Writer) {
				for _, o := range out.Occurrences {
					fmt.Fprintf(w, "%s\t%s\t%s\n", o.Window, o.Duration, o.Summary)
				}
				for _, uid := range out.TruncatedUIDs {
					fmt.Fprintf(w, "(truncated %s)\n", uid)
				}
			})
		},
	}
	rf.register(cmd)
	return cmd
}

func newICSExportCommand(rootOpts *RootOptions) *cobra.Command {
	var stamp string
	cmd := &cobra.Command{
		Use:   "export [location...]",
		Short: "Merge calendars and write them as one VCALENDAR",
		Long: `Read calendars and write their events back as a single VCALENDAR.
Single-unit cadences are written as FREQ/INTERVAL/COUNT rules and event
lengths as DURATION where possible. Output is always iCalendar text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dtstamp := time.Now().UTC()
			if stamp != "" {
				t, err := instantFlag("stamp", stamp, time.UTC)
				if err != nil {
					return err
				}
				dtstamp = t
			}
			events, err := rootOpts.loadEvents(cmd, args)
			if err != nil {
				return err
			}
			return ics.Export(cmd.OutOrStdout(), events, dtstamp)
		},
	}
	cmd.Flags().StringVar(&stamp, "stamp", "", "DTSTAMP written on every event (default now)")
	return cmd
}
