package ics

import (
	"context"
	"errors"
	"strings"

	appLog "calspan/internal/log"
	"calspan/internal/model"
)

// LoadEvents fetches and parses every source. Sources that fail to fetch or
// parse are skipped and their errors returned alongside the events that did
// load.
func LoadEvents(ctx context.Context, f *Fetcher, sources []Source) ([]model.Event, []error) {
	results, errs := f.FetchAll(ctx, sources)

	events := make([]model.Event, 0)
	for _, res := range results {
		parsed, err := ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics parse failed for source", err, "id", res.Source.ID)
			errs = append(errs, err)
			continue
		}
		events = append(events, parsed...)
	}
	return events, errs
}

// JoinErrors flattens errs into one error, or nil when there are none.
func JoinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	for i, e := range errs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
