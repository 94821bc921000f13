package duration

import (
	"math"

	"github.com/govalues/decimal"
	"github.com/rickb777/period"

	"calspan/internal/chrono"
)

// FromPeriod converts a period.Period. Fractions in any field cascade the
// same way as NewDecimal; weeks are folded into days.
func FromPeriod(p period.Period) (Duration, error) {
	return NewDecimal(
		p.YearsDecimal(),
		p.MonthsDecimal(),
		p.WeeksDecimal(),
		p.DaysDecimal(),
		p.HoursDecimal(),
		p.MinutesDecimal(),
		p.SecondsDecimal(),
		decimal.MustNew(0, 0),
	)
}

// ToPeriod converts d to a period.Period, carrying the nanoseconds as the
// seconds fraction.
func (d Duration) ToPeriod() (period.Period, error) {
	v := d
	mixed := v.seconds != 0 && v.nanos != 0 && (v.seconds > 0) != (v.nanos > 0)
	if mixed || v.nanos/nanosPerSecond != 0 {
		v = v.Normalized()
	}
	if v.seconds > math.MaxInt64/nanosPerSecond-1 || v.seconds < math.MinInt64/nanosPerSecond+1 {
		return period.Zero, chrono.InvalidValue("seconds component %d out of period range", v.seconds)
	}
	secs, err := decimal.New(v.seconds*nanosPerSecond+v.nanos, 9)
	if err != nil {
		return period.Zero, &chrono.Error{Kind: chrono.KindInvalidValue, Message: "seconds out of range", Err: err}
	}
	p, err := period.NewDecimal(
		decimal.MustNew(v.years, 0),
		decimal.MustNew(v.months, 0),
		decimal.MustNew(0, 0),
		decimal.MustNew(v.days, 0),
		decimal.MustNew(v.hours, 0),
		decimal.MustNew(v.minutes, 0),
		secs,
	)
	if err != nil {
		return period.Zero, &chrono.Error{Kind: chrono.KindInvalidValue, Message: "cannot convert to period", Err: err}
	}
	return p, nil
}
