package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"calspan/internal/anchor"
	"calspan/internal/chrono"
	"calspan/internal/duration"
	"calspan/internal/interval"
	"calspan/internal/recur"
)

// durationResponse is the JSON response shape for /api/duration.
type durationResponse struct {
	Duration      string  `json:"duration"`
	Normalized    string  `json:"normalized"`
	Negative      bool    `json:"negative"`
	ApproxSeconds float64 `json:"approx_seconds"`
	At            string  `json:"at,omitempty"`
	End           string  `json:"end,omitempty"`
}

// handleDuration parses and reformats a duration.
//
// GET /api/duration?value=P1W2DT3H&fold=true&at=2024-01-31
//   - value: ISO-8601 duration (required)
//   - fold:  write whole weeks as nW (default: config fold_weeks)
//   - at:    optional anchor; the response then carries at + value
func (s *Server) handleDuration(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := duration.Parse(q.Get("value"))
	if err != nil {
		writeRequestError(w, err)
		return
	}
	fold := s.foldWeeks(q)

	resp := durationResponse{
		Duration:      d.Format(fold),
		Normalized:    d.Normalized().Format(fold),
		Negative:      d.IsNegative(),
		ApproxSeconds: d.ApproxSeconds(),
	}
	if at := q.Get("at"); at != "" {
		p, err := anchor.Parse(at)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		resp.At = p.String()
		resp.End = duration.AddTo(d, p).String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// betweenResponse is the JSON response shape for /api/between.
type betweenResponse struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
	Unit     string `json:"unit,omitempty"`
	Amount   *int64 `json:"amount,omitempty"`
}

// handleBetween computes the duration between two anchors.
//
// GET /api/between?start=2024-01-31&end=2024-03-01&unit=days
func (s *Server) handleBetween(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := anchor.Parse(q.Get("start"))
	if err != nil {
		writeRequestError(w, err)
		return
	}
	end, err := anchor.Parse(q.Get("end"))
	if err != nil {
		writeRequestError(w, err)
		return
	}

	d := duration.Between(start, end)
	resp := betweenResponse{
		Start:    start.String(),
		End:      end.String(),
		Duration: d.Format(s.foldWeeks(q)),
	}
	if name := q.Get("unit"); name != "" {
		unit, err := chrono.ParseUnit(name)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		amount, err := duration.ToUnit(d, start, unit)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		resp.Unit = unit.String()
		resp.Amount = &amount
	}
	writeJSON(w, http.StatusOK, resp)
}

// intervalResponse is the JSON response shape for /api/interval.
type intervalResponse struct {
	Interval   string `json:"interval"`
	Shape      string `json:"shape"`
	Duration   string `json:"duration"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Repetition *int   `json:"repetition,omitempty"`
	Infinite   bool   `json:"infinite,omitempty"`
	Contains   *bool  `json:"contains,omitempty"`
}

// handleInterval describes an interval in any of its shapes.
//
// GET /api/interval?value=R3/2024-01-01/P1W&at=2024-01-10
//   - value: interval text (required)
//   - at:    optional anchor tested for containment
func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	iv, err := interval.ParsePoint(q.Get("value"))
	if err != nil {
		writeRequestError(w, err)
		return
	}

	resp := intervalResponse{
		Interval: iv.String(),
		Shape:    shapeOf(iv),
		Duration: iv.Duration().Format(s.foldWeeks(q)),
	}
	if rep, ok := iv.(interval.Repeated[anchor.Point]); ok {
		resp.Interval = rep.Format(s.cfg.OmitSingleRepetition)
		if rep.IsInfinite() {
			resp.Infinite = true
		} else {
			n := rep.Repetition()
			resp.Repetition = &n
		}
	}
	// Anchor-free shapes have no start or end.
	if p, err := iv.Start(); err == nil {
		resp.Start = p.String()
	}
	if p, err := iv.End(); err == nil {
		resp.End = p.String()
	}
	if at := q.Get("at"); at != "" {
		p, err := anchor.Parse(at)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		in, err := iv.Contains(p)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		resp.Contains = &in
	}
	writeJSON(w, http.StatusOK, resp)
}

func shapeOf(iv interval.Interval[anchor.Point]) string {
	switch iv.(type) {
	case interval.TwoPoint[anchor.Point]:
		return "two_point"
	case interval.PureDuration[anchor.Point]:
		return "pure_duration"
	case interval.DurationStart[anchor.Point]:
		return "duration_start"
	case interval.DurationEnd[anchor.Point]:
		return "duration_end"
	case interval.Repeated[anchor.Point]:
		return "repeated"
	}
	return "unknown"
}

// windowsResponse is the JSON response shape for /api/expand and /api/cron.
type windowsResponse struct {
	Windows   []string `json:"windows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// handleExpand lists the occurrence windows of a repeated interval.
//
// GET /api/expand?value=R/2024-01-01T09:00/P1W&from=2024-02-01&to=2024-03-01&limit=10
//   - from/to: optional range; local values are placed in the config timezone
//   - limit:   cap on windows (default: config max_occurrences)
func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	iv, err := interval.ParsePoint(q.Get("value"))
	if err != nil {
		writeRequestError(w, err)
		return
	}
	rep, ok := iv.(interval.Repeated[anchor.Point])
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is not a repeated interval", iv))
		return
	}

	loc := s.cfg.Location()
	cfg := recur.ExpandConfig{
		Location:       loc,
		MaxOccurrences: parseIntDefault(q.Get("limit"), s.cfg.MaxOccurrences),
	}
	if cfg.MaxOccurrences <= 0 || cfg.MaxOccurrences > s.cfg.MaxOccurrences {
		cfg.MaxOccurrences = s.cfg.MaxOccurrences
	}
	if cfg.RangeStart, err = queryInstant(q, "from", loc); err != nil {
		writeRequestError(w, err)
		return
	}
	if cfg.RangeEnd, err = queryInstant(q, "to", loc); err != nil {
		writeRequestError(w, err)
		return
	}

	res, err := recur.Expand(rep, cfg)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	resp := windowsResponse{Windows: make([]string, 0, len(res.Windows)), Truncated: res.Truncated}
	for _, win := range res.Windows {
		resp.Windows = append(resp.Windows, win.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCron lists the windows between consecutive firings of a cron
// expression.
//
// GET /api/cron?spec=0+9+*+*+1-5&n=5&after=2024-01-05T12:00Z
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := s.cfg.Location()

	after := s.now().In(loc)
	if q.Get("after") != "" {
		t, err := queryInstant(q, "after", loc)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		after = t
	}
	n := parseIntDefault(q.Get("n"), 5)
	if n > s.cfg.MaxOccurrences {
		n = s.cfg.MaxOccurrences
	}

	windows, err := recur.CronWindows(q.Get("spec"), after, n)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	resp := windowsResponse{Windows: make([]string, 0, len(windows))}
	for _, win := range windows {
		resp.Windows = append(resp.Windows, win.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// foldWeeks reads the fold query flag, defaulting to the config.
func (s *Server) foldWeeks(q url.Values) bool {
	if v, err := strconv.ParseBool(q.Get("fold")); err == nil {
		return v
	}
	return s.cfg.FoldWeeks
}

// queryInstant reads an anchor from q[key] and places it on the time line.
// A missing key yields the zero time.
func queryInstant(q url.Values, key string, loc *time.Location) (time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	p, err := anchor.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := p.Instant(loc)
	if !ok {
		return time.Time{}, chrono.InvalidValue("%s %s has no date", key, p)
	}
	return t, nil
}
