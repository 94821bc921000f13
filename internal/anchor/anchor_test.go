package anchor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calspan/internal/chrono"
)

func TestParseSniffsKind(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		text string
	}{
		{"2024-01", KindYearMonth, "2024-01"},
		{"2024-01-31", KindDate, "2024-01-31"},
		{"09:30", KindTime, "09:30:00"},
		{"09:30:15.5", KindTime, "09:30:15.5"},
		{"09:30Z", KindOffsetTime, "09:30:00Z"},
		{"09:30+02:00", KindOffsetTime, "09:30:00+02:00"},
		{"2024-01-31T09:30", KindDateTime, "2024-01-31T09:30:00"},
		{"2024-01-31T09:30:00.000000001", KindDateTime, "2024-01-31T09:30:00.000000001"},
		{"2024-01-31T09:30Z", KindOffsetDateTime, "2024-01-31T09:30:00Z"},
		{"2024-07-01T09:30+02:00[Europe/Paris]", KindOffsetDateTime, "2024-07-01T09:30:00+02:00[Europe/Paris]"},
		{"2024-03-30T12:00+01:00[CET]", KindOffsetDateTime, "2024-03-30T12:00:00+01:00[CET]"},
		{"2024-03-09T12:00-05:00", KindOffsetDateTime, "2024-03-09T12:00:00-05:00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind())
			assert.Equal(t, tt.text, p.String())

			again, err := Parse(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"", "yesterday", "25:00", "2024-01-01T", "2024-01-01T10:00Z[Nowhere/City]", "2024-01-01T10:00Z[Europe/Paris"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, chrono.IsMalformedInput(err), err.Error())
		})
	}
}

func TestParseOrNow(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	p, err := ParseOrNow("  ", func() time.Time { return fixed })
	require.NoError(t, err)
	assert.Equal(t, KindOffsetDateTime, p.Kind())
	assert.Equal(t, "2024-05-06T07:08:09Z", p.String())

	p, err = ParseOrNow("2024-01-01", time.Now)
	require.NoError(t, err)
	assert.Equal(t, KindDate, p.Kind())

	_, err = ParseOrNow("garbage", time.Now)
	assert.True(t, chrono.IsMalformedInput(err))
}

func TestPointText(t *testing.T) {
	var p Point
	require.NoError(t, p.UnmarshalText([]byte("2024-02-29")))
	out, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", string(out))

	_, err = Point{}.MarshalText()
	assert.True(t, chrono.IsInvalidValue(err))
}

func TestDatePlusClampsDay(t *testing.T) {
	d := NewDate(2024, time.January, 31)
	assert.Equal(t, "2024-02-29", d.Plus(1, chrono.Months).String())
	assert.Equal(t, "2025-02-28", d.Plus(13, chrono.Months).String())
	assert.Equal(t, "2023-12-31", d.Plus(-1, chrono.Months).String())
	assert.Equal(t, "2024-02-07", d.Plus(1, chrono.Weeks).String())
	assert.Equal(t, "2034-01-31", d.Plus(1, chrono.Decades).String())
	assert.Panics(t, func() { d.Plus(1, chrono.Hours) })
}

func TestDateUntil(t *testing.T) {
	a := NewDate(2024, time.January, 31)
	b := NewDate(2024, time.February, 29)
	assert.Equal(t, int64(29), a.Until(b, chrono.Days))
	assert.Equal(t, int64(0), a.Until(b, chrono.Months))
	assert.Equal(t, int64(1), a.Until(NewDate(2024, time.March, 1), chrono.Months))
	assert.Equal(t, int64(-1), NewDate(2024, time.March, 1).Until(a, chrono.Months))
	assert.Equal(t, int64(4), a.Until(b, chrono.Weeks))
}

func TestTimeWraps(t *testing.T) {
	tm := NewTime(23, 30, 0, 0)
	assert.Equal(t, "00:30:00", tm.Plus(1, chrono.Hours).String())
	assert.Equal(t, "22:30:00", tm.Plus(-25, chrono.Hours).String())
	assert.Equal(t, int64(-90), tm.Until(NewTime(22, 0, 0, 0), chrono.Minutes))
	assert.False(t, tm.IsSupported(chrono.Days))
}

func TestDateTimePlusCarriesDays(t *testing.T) {
	dt, err := ParseDateTime("2024-02-28T23:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29T01:00:00", dt.Plus(2, chrono.Hours).String())
	assert.Equal(t, "2024-02-27T23:00:00", dt.Plus(-24, chrono.Hours).String())
	assert.Equal(t, "2024-03-28T23:00:00", dt.Plus(1, chrono.Months).String())
}

func TestDateTimeUntilAdjustsEndDate(t *testing.T) {
	a, _ := ParseDateTime("2024-01-01T10:00")
	b, _ := ParseDateTime("2024-01-02T09:00")
	assert.Equal(t, int64(0), a.Until(b, chrono.Days))
	assert.Equal(t, int64(23), a.Until(b, chrono.Hours))
	assert.Equal(t, int64(0), b.Until(a, chrono.Days))
}

func TestOffsetDateTimeAcrossDST(t *testing.T) {
	start, err := ParseOffsetDateTime("2024-03-09T12:00-05:00[America/New_York]")
	require.NoError(t, err)

	nextDay := start.Plus(1, chrono.Days)
	assert.Equal(t, "2024-03-10T12:00:00-04:00[America/New_York]", nextDay.String())
	assert.Equal(t, int64(23), start.Until(nextDay, chrono.Hours))
	assert.Equal(t, int64(1), start.Until(nextDay, chrono.Days))

	later := start.Plus(24, chrono.Hours)
	assert.Equal(t, "2024-03-10T13:00:00-04:00[America/New_York]", later.String())
}

func TestOffsetDateTimeIgnoresHostZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	saved := time.Local
	time.Local = ny
	t.Cleanup(func() { time.Local = saved })

	// -05:00 is New York's offset on that date; the value must stay fixed.
	start, err := ParseOffsetDateTime("2024-03-09T12:00:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09T12:00:00-05:00", start.String())

	nextDay := start.Plus(1, chrono.Days)
	assert.Equal(t, "2024-03-10T12:00:00-05:00", nextDay.String())
	assert.Equal(t, int64(24), start.Until(nextDay, chrono.Hours))

	local := OffsetDateTimeOf(time.Date(2024, 3, 9, 12, 0, 0, 0, time.Local))
	assert.Equal(t, "2024-03-10T12:00:00-05:00", local.Plus(1, chrono.Days).String())

	zone, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	named := OffsetDateTimeOf(time.Date(2024, 3, 9, 12, 0, 0, 0, zone))
	assert.Equal(t, "2024-03-10T12:00:00-04:00[America/New_York]", named.Plus(1, chrono.Days).String())
}

func TestNamedZone(t *testing.T) {
	cet, err := time.LoadLocation("CET")
	require.NoError(t, err)
	assert.True(t, NamedZone(cet))
	assert.False(t, NamedZone(time.UTC))
	assert.False(t, NamedZone(time.Local))
	assert.False(t, NamedZone(time.FixedZone("", 3600)))
}

func TestOffsetTimeCompareUsesUTC(t *testing.T) {
	a, err := ParseOffsetTime("10:00+02:00")
	require.NoError(t, err)
	b, err := ParseOffsetTime("09:00Z")
	require.NoError(t, err)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, int64(60), a.Until(b, chrono.Minutes))
}

func TestYearMonth(t *testing.T) {
	ym := NewYearMonth(2024, time.November)
	assert.Equal(t, "2025-02", ym.Plus(3, chrono.Months).String())
	assert.Equal(t, "2023-11", ym.Plus(-1, chrono.Years).String())
	assert.Equal(t, int64(15), ym.Until(NewYearMonth(2026, time.February), chrono.Months))
	assert.Equal(t, "2024-11-30", ym.AtDay(31).String())
	assert.False(t, ym.IsSupported(chrono.Days))
}

func TestUnify(t *testing.T) {
	tests := []struct {
		a, b string
		kind Kind
		a2   string
		b2   string
	}{
		{"2024-01", "2024-01-15", KindDate, "2024-01-01", "2024-01-15"},
		{"2024-01-15", "2024-01-15T08:00", KindDateTime, "2024-01-15T00:00:00", "2024-01-15T08:00:00"},
		{"2024-01-15", "08:00", KindDateTime, "2024-01-15T00:00:00", "2024-01-15T08:00:00"},
		{"08:00", "2024-01-15", KindDateTime, "2024-01-15T08:00:00", "2024-01-15T00:00:00"},
		{"2024-01-15T06:00", "2024-01-15T08:00Z", KindOffsetDateTime, "2024-01-15T06:00:00Z", "2024-01-15T08:00:00Z"},
		{"08:00", "09:00+01:00", KindOffsetTime, "08:00:00+01:00", "09:00:00+01:00"},
		{"2024-01-15", "08:00+01:00", KindOffsetDateTime, "2024-01-15T00:00:00+01:00", "2024-01-15T08:00:00+01:00"},
	}
	for _, tt := range tests {
		t.Run(tt.a+" "+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a).Unify(MustParse(tt.b))
			assert.Equal(t, tt.kind, a.Kind())
			assert.Equal(t, tt.kind, b.Kind())
			assert.Equal(t, tt.a2, a.String())
			assert.Equal(t, tt.b2, b.String())
		})
	}
}

func TestPointInstant(t *testing.T) {
	inst, ok := MustParse("2024-01-15T08:00").Instant(time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), inst)

	_, ok = MustParse("08:00").Instant(time.UTC)
	assert.False(t, ok)

	p := FromInstant(inst, KindDate)
	assert.Equal(t, "2024-01-15", p.String())
}
