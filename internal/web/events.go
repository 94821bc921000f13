package web

import (
	"net/http"
	"time"

	"calspan/internal/ics"
	appLog "calspan/internal/log"
)

const eventsCacheTTL = 30 * time.Second

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Occurrences     []occurrenceDTO `json:"occurrences"`
	TruncatedUIDs   []string        `json:"truncated_uids,omitempty"`
	RangeStart      time.Time       `json:"range_start"`
	RangeEnd        time.Time       `json:"range_end"`
	DisplayTimeZone string          `json:"display_timezone"`
}

// eventsCache holds a cached /api/events response, the query it answers
// and its timestamp.
type eventsCache struct {
	key       string
	resp      eventsResponse
	updatedAt time.Time
}

// occurrenceDTO is a JSON-friendly view of occurrences.
type occurrenceDTO struct {
	SourceID    string `json:"source_id"`
	UID         string `json:"uid"`
	InstanceKey string `json:"instance_key"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	AllDay      bool   `json:"all_day"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Duration    string `json:"duration"`
}

// handleEvents returns expanded occurrences for the configured calendars
// within a requested time window.
//
// GET /api/events?days=7&backfill=1
//   - days:     how many days ahead to include (default 7)
//   - backfill: how many past days to include (default 1)
//
// The display timezone is the config timezone.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), 7)
	if days <= 0 {
		days = 7
	}
	backfill := parseIntDefault(q.Get("backfill"), 1)
	if backfill < 0 {
		backfill = 0
	}
	key := r.URL.RawQuery

	loc := s.cfg.Location()
	cacheNow := s.now()

	s.eventsMu.RLock()
	ec := s.eventsCache
	s.eventsMu.RUnlock()
	if ec != nil && ec.key == key && cacheNow.Sub(ec.updatedAt) < eventsCacheTTL {
		writeJSON(w, http.StatusOK, ec.resp)
		return
	}

	now := cacheNow.In(loc)
	rangeStart := now.AddDate(0, 0, -backfill)
	rangeEnd := now.AddDate(0, 0, days)

	appLog.Info("api events request",
		"days", days,
		"backfill", backfill,
		"range_start", rangeStart.Format(time.RFC3339),
		"range_end", rangeEnd.Format(time.RFC3339),
		"timezone", s.cfg.Timezone,
	)

	sources := make([]ics.Source, 0, len(s.cfg.Calendars))
	for _, c := range s.cfg.Calendars {
		if c.Location == "" {
			continue
		}
		sources = append(sources, ics.Source{ID: c.ID, Location: c.Location})
	}

	resp := eventsResponse{
		Occurrences:     []occurrenceDTO{},
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
		DisplayTimeZone: loc.String(),
	}
	if len(sources) == 0 || s.fetcher == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	events, errs := ics.LoadEvents(ctx, s.fetcher, sources)
	if len(errs) > 0 {
		appLog.Error("api events: one or more calendars failed", ics.JoinErrors(errs), "error_count", len(errs))
	}

	expandResult, err := ics.ExpandOccurrences(events, ics.ExpandConfig{
		Location:               loc,
		RangeStart:             rangeStart,
		RangeEnd:               rangeEnd,
		MaxOccurrencesPerEvent: s.cfg.MaxOccurrences,
	})
	if err != nil {
		appLog.Error("api events: expand failed", err)
		writeError(w, http.StatusInternalServerError, "failed to expand events")
		return
	}

	fold := s.cfg.FoldWeeks
	for _, occ := range expandResult.Occurrences {
		start, _ := occ.Window.Start()
		end, _ := occ.Window.End()
		resp.Occurrences = append(resp.Occurrences, occurrenceDTO{
			SourceID:    occ.SourceID,
			UID:         occ.UID,
			InstanceKey: occ.InstanceKey,
			Summary:     occ.Summary,
			Description: occ.Description,
			Location:    occ.Location,
			AllDay:      occ.AllDay,
			Start:       start.String(),
			End:         end.String(),
			Duration:    occ.Window.Duration().Format(fold),
		})
	}
	resp.TruncatedUIDs = expandResult.TruncatedEvents

	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{
		key:       key,
		resp:      resp,
		updatedAt: s.now(),
	}
	s.eventsMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}
