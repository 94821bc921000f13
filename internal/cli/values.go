package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"calspan/internal/anchor"
	"calspan/internal/chrono"
	"calspan/internal/duration"
	"calspan/internal/interval"
	"calspan/internal/recur"
)

// DurationResult is the JSON payload of the duration command.
type DurationResult struct {
	Duration      string  `json:"duration"`
	Normalized    string  `json:"normalized"`
	Negative      bool    `json:"negative"`
	ApproxSeconds float64 `json:"approx_seconds"`
	At            string  `json:"at,omitempty"`
	End           string  `json:"end,omitempty"`
}

// NewDurationCommand creates the duration command.
func NewDurationCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		fold      bool
		normalize bool
		at        string
	)
	cmd := &cobra.Command{
		Use:   "duration <value>",
		Short: "Parse and reformat an ISO-8601 duration",
		Long: `Parse an ISO-8601 duration such as P1Y2M3W4DT5H6M7.5S and print it back.

With --at the duration is added to an anchor, clamping month ends:
2024-01-31 + P1M is 2024-02-29.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := duration.Parse(args[0])
			if err != nil {
				return inputError(err)
			}
			if !cmd.Flags().Changed("fold") {
				fold = rootOpts.Config.FoldWeeks
			}

			shown := d
			if normalize {
				shown = d.Normalized()
			}
			res := DurationResult{
				Duration:      shown.Format(fold),
				Normalized:    d.Normalized().Format(fold),
				Negative:      d.IsNegative(),
				ApproxSeconds: d.ApproxSeconds(),
			}
			if at != "" {
				p, err := anchor.Parse(at)
				if err != nil {
					return inputError(err)
				}
				res.At = p.String()
				res.End = duration.AddTo(d, p).String()
			}

			return newFormatter(rootOpts, cmd).Success(res, func(w io.Writer) {
				fmt.Fprintln(w, res.Duration)
				if res.At != "" {
					fmt.Fprintf(w, "%s + %s = %s\n", res.At, res.Duration, res.End)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&fold, "fold", false, "write whole weeks as nW (default from config)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "cascade overflowing time fields into larger units")
	cmd.Flags().StringVar(&at, "at", "", "anchor to add the duration to")
	return cmd
}

// BetweenResult is the JSON payload of the between command.
type BetweenResult struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
	Unit     string `json:"unit,omitempty"`
	Amount   *int64 `json:"amount,omitempty"`
}

// NewBetweenCommand creates the between command.
func NewBetweenCommand(rootOpts *RootOptions) *cobra.Command {
	var unitName string
	cmd := &cobra.Command{
		Use:   "between <start> <end>",
		Short: "Compute the duration between two anchors",
		Long: `Compute the duration from start to end, largest unit first.

Anchors may be year-months, dates, times, date-times or offset date-times;
mixed kinds are promoted to the richer one. With --unit the span is also
counted in whole units of that size.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := anchor.Parse(args[0])
			if err != nil {
				return inputError(err)
			}
			end, err := anchor.Parse(args[1])
			if err != nil {
				return inputError(err)
			}

			d := duration.Between(start, end)
			res := BetweenResult{
				Start:    start.String(),
				End:      end.String(),
				Duration: d.Format(rootOpts.Config.FoldWeeks),
			}
			if unitName != "" {
				unit, err := chrono.ParseUnit(unitName)
				if err != nil {
					return inputError(err)
				}
				amount, err := duration.ToUnit(d, start, unit)
				if err != nil {
					return inputError(err)
				}
				res.Unit = unit.String()
				res.Amount = &amount
			}

			return newFormatter(rootOpts, cmd).Success(res, func(w io.Writer) {
				fmt.Fprintln(w, res.Duration)
				if res.Amount != nil {
					fmt.Fprintf(w, "%d %s\n", *res.Amount, res.Unit)
				}
			})
		},
	}
	cmd.Flags().StringVar(&unitName, "unit", "", "also count the span in this unit (e.g. days, hours)")
	return cmd
}

// IntervalResult is the JSON payload of the interval command.
type IntervalResult struct {
	Interval   string `json:"interval"`
	Shape      string `json:"shape"`
	Duration   string `json:"duration"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Repetition *int   `json:"repetition,omitempty"`
	Infinite   bool   `json:"infinite,omitempty"`
	Contains   *bool  `json:"contains,omitempty"`
}

// NewIntervalCommand creates the interval command.
func NewIntervalCommand(rootOpts *RootOptions) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "interval <value>",
		Short: "Describe an ISO-8601 interval",
		Long: `Parse an interval in any of its shapes and print its parts:

  2024-01-01/2024-01-08   start and end
  2024-01-01/P1W          start and duration
  P1W/2024-01-08          duration and end
  P1W                     duration only
  R3/2024-01-01/P1W       repeated three times (R/ repeats forever)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, err := interval.ParsePoint(args[0])
			if err != nil {
				return inputError(err)
			}
			cfg := rootOpts.Config

			res := IntervalResult{
				Interval: iv.String(),
				Shape:    shapeOf(iv),
				Duration: iv.Duration().Format(cfg.FoldWeeks),
			}
			if rep, ok := iv.(interval.Repeated[anchor.Point]); ok {
				res.Interval = rep.Format(cfg.OmitSingleRepetition)
				if rep.IsInfinite() {
					res.Infinite = true
				} else {
					n := rep.Repetition()
					res.Repetition = &n
				}
			}
			if p, err := iv.Start(); err == nil {
				res.Start = p.String()
			}
			if p, err := iv.End(); err == nil {
				res.End = p.String()
			}
			if at != "" {
				p, err := anchor.Parse(at)
				if err != nil {
					return inputError(err)
				}
				in, err := iv.Contains(p)
				if err != nil {
					return err
				}
				res.Contains = &in
			}

			return newFormatter(rootOpts, cmd).Success(res, func(w io.Writer) {
				line := func(label, value string) {
					if value != "" {
						fmt.Fprintf(w, "%-12s%s\n", label+":", value)
					}
				}
				line("interval", res.Interval)
				line("shape", res.Shape)
				line("start", res.Start)
				line("end", res.End)
				line("duration", res.Duration)
				switch {
				case res.Infinite:
					line("repetition", "infinite")
				case res.Repetition != nil:
					line("repetition", fmt.Sprint(*res.Repetition))
				}
				if res.Contains != nil {
					line("contains", fmt.Sprint(*res.Contains))
				}
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "test whether the interval contains this anchor")
	return cmd
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

// WindowsResult is the JSON payload of the expand and cron commands.
type WindowsResult struct {
	Windows   []string `json:"windows"`
	Truncated bool     `json:"truncated,omitempty"`
}

func (r WindowsResult) text(w io.Writer) {
	for _, win := range r.Windows {
		fmt.Fprintln(w, win)
	}
	if r.Truncated {
		fmt.Fprintf(w, "(truncated after %d windows)\n", len(r.Windows))
	}
}

func windowStrings(ws []interval.TwoPoint[anchor.Point]) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.String())
	}
	return out
}

// rangeFlags are the --from/--to/--limit flags shared by expanding commands.
type rangeFlags struct {
	from  string
	to    string
	limit int
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "drop windows ending before this anchor")
	cmd.Flags().StringVar(&f.to, "to", "", "drop windows starting after this anchor")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of windows (default from config)")
}

// resolve places the range on the time line and caps the limit.
func (f *rangeFlags) resolve(opts *RootOptions) (from, to time.Time, limit int, err error) {
	loc := opts.Config.Location()
	if from, err = instantFlag("from", f.from, loc); err != nil {
		return
	}
	if to, err = instantFlag("to", f.to, loc); err != nil {
		return
	}
	limit = f.limit
	if limit <= 0 || limit > opts.Config.MaxOccurrences {
		limit = opts.Config.MaxOccurrences
	}
	return
}

// instantFlag reads an anchor flag. Local values are placed in loc; an
// empty value yields the zero time.
func instantFlag(name, raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	p, err := anchor.Parse(raw)
	if err != nil {
		return time.Time{}, inputError(err)
	}
	t, ok := p.Instant(loc)
	if !ok {
		return time.Time{}, NewExitError(ExitCommandError, fmt.Sprintf("--%s %s has no date", name, p))
	}
	return t, nil
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "expand <repeated-interval>",
		Short: "List the windows of a repeated interval",
		Long: `List the occurrence windows of a repeated interval such as
R5/2024-01-01T09:00/PT30M or R/2024-01-31/P1M.

Each window starts where the previous one ended. Infinite repetitions
stop at --to or --limit; infinite end-anchored ones need --from.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, err := interval.ParsePoint(args[0])
			if err != nil {
				return inputError(err)
			}
			rep, ok := iv.(interval.Repeated[anchor.Point])
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("%s is not a repeated interval", iv))
			}
			from, to, limit, err := rf.resolve(rootOpts)
			if err != nil {
				return err
			}

			res, err := recur.Expand(rep, recur.ExpandConfig{
				Location:       rootOpts.Config.Location(),
				RangeStart:     from,
				RangeEnd:       to,
				MaxOccurrences: limit,
			})
			if err != nil {
				return inputError(err)
			}
			out := WindowsResult{Windows: windowStrings(res.Windows), Truncated: res.Truncated}
			return newFormatter(rootOpts, cmd).Success(out, out.text)
		},
	}
	rf.register(cmd)
	return cmd
}

// NewCronCommand creates the cron command.
func NewCronCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		after string
		n     int
	)
	cmd := &cobra.Command{
		Use:   "cron <spec>",
		Short: "List windows between consecutive cron firings",
		Long: `List the windows between consecutive firings of a standard
five-field cron expression, e.g. "0 9 * * 1-5". Firings are computed in
the config timezone unless --after carries an offset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := rootOpts.Config.Location()
			start := time.Now().In(loc)
			if after != "" {
				t, err := instantFlag("after", after, loc)
				if err != nil {
					return err
				}
				start = t
			}
			if n > rootOpts.Config.MaxOccurrences {
				n = rootOpts.Config.MaxOccurrences
			}

			windows, err := recur.CronWindows(args[0], start, n)
			if err != nil {
				return WrapExitError(ExitCommandError, "cron", err)
			}
			out := WindowsResult{Windows: windowStrings(windows)}
			return newFormatter(rootOpts, cmd).Success(out, out.text)
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "start after this anchor (default now)")
	cmd.Flags().IntVarP(&n, "count", "n", 5, "number of windows")
	return cmd
}
