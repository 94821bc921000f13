package recur

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"calspan/internal/anchor"
	"calspan/internal/interval"
)

// CronWindows returns the n windows between consecutive firings of a
// standard five-field cron expression, the first one starting at the first
// firing after after. Firings are computed in after's location.
func CronWindows(spec string, after time.Time, n int) ([]interval.TwoPoint[anchor.Point], error) {
	if n <= 0 {
		return nil, fmt.Errorf("cron: window count must be positive, got %d", n)
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("cron: parse %q: %w", spec, err)
	}

	out := make([]interval.TwoPoint[anchor.Point], 0, n)
	prev := sched.Next(after)
	if prev.IsZero() {
		return nil, fmt.Errorf("cron: %q never fires", spec)
	}
	for len(out) < n {
		next := sched.Next(prev)
		if next.IsZero() {
			break
		}
		out = append(out, interval.NewTwoPoint(
			anchor.FromOffsetDateTime(anchor.OffsetDateTimeOf(prev)),
			anchor.FromOffsetDateTime(anchor.OffsetDateTimeOf(next)),
		))
		prev = next
	}
	return out, nil
}

// CronWindow is CronWindows for a single window.
func CronWindow(spec string, after time.Time) (interval.TwoPoint[anchor.Point], error) {
	ws, err := CronWindows(spec, after, 1)
	if err != nil {
		return interval.TwoPoint[anchor.Point]{}, err
	}
	if len(ws) == 0 {
		return interval.TwoPoint[anchor.Point]{}, fmt.Errorf("cron: %q fires only once after %s", spec, after.Format(time.RFC3339))
	}
	return ws[0], nil
}
