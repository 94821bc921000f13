package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calspan/internal/anchor"
	"calspan/internal/chrono"
	"calspan/internal/interval"
)

func mustRepeated(t *testing.T, s string) interval.Repeated[anchor.Point] {
	t.Helper()
	iv, err := interval.ParsePoint(s)
	require.NoError(t, err)
	r, ok := iv.(interval.Repeated[anchor.Point])
	require.True(t, ok, "%s is not repeated", s)
	return r
}

func windowStrings(ws []interval.TwoPoint[anchor.Point]) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.String())
	}
	return out
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpandDaily(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R3/2024-01-01/P1D"), ExpandConfig{Location: time.UTC})
	require.NoError(t, err)
	assert.False(t, res.Truncated)
	assert.Equal(t, []string{
		"2024-01-01/2024-01-02",
		"2024-01-02/2024-01-03",
		"2024-01-03/2024-01-04",
	}, windowStrings(res.Windows))
}

func TestExpandInfiniteWeeklyStopsAtRangeEnd(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R/2024-01-01T09:00Z/P1W"), ExpandConfig{
		Location: time.UTC,
		RangeEnd: utc("2024-01-31T00:00:00Z"),
	})
	require.NoError(t, err)
	require.Len(t, res.Windows, 5)
	assert.Equal(t, "2024-01-29T09:00:00Z/2024-02-05T09:00:00Z", res.Windows[4].String())
	assert.False(t, res.Truncated)
}

func TestExpandCap(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R/2024-01-01/P1D"), ExpandConfig{
		Location:       time.UTC,
		MaxOccurrences: 10,
	})
	require.NoError(t, err)
	assert.Len(t, res.Windows, 10)
	assert.True(t, res.Truncated)
}

func TestExpandRange(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R10/2024-01-01/P1D"), ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc("2024-01-05T12:00:00Z"),
		RangeEnd:   utc("2024-01-07T00:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-01-05/2024-01-06",
		"2024-01-06/2024-01-07",
		"2024-01-07/2024-01-08",
	}, windowStrings(res.Windows))
}

func TestExpandRejectsInvertedRange(t *testing.T) {
	_, err := Expand(mustRepeated(t, "R3/2024-01-01/P1D"), ExpandConfig{
		RangeStart: utc("2024-02-01T00:00:00Z"),
		RangeEnd:   utc("2024-01-01T00:00:00Z"),
	})
	assert.Error(t, err)
}

func TestExpandMonthsChainWithClamping(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R3/2024-01-31/P1M"), ExpandConfig{Location: time.UTC})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-01-31/2024-02-29",
		"2024-02-29/2024-03-29",
		"2024-03-29/2024-04-29",
	}, windowStrings(res.Windows))
}

func TestExpandEndAnchored(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R2/P1D/2024-01-03"), ExpandConfig{Location: time.UTC})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-01-01/2024-01-02",
		"2024-01-02/2024-01-03",
	}, windowStrings(res.Windows))

	_, err = Expand(mustRepeated(t, "R/P1D/2024-01-05"), ExpandConfig{Location: time.UTC})
	assert.True(t, chrono.IsInfiniteRepetition(err))

	res, err = Expand(mustRepeated(t, "R/P1D/2024-01-05"), ExpandConfig{
		Location:   time.UTC,
		RangeStart: utc("2024-01-01T00:00:00Z"),
	})
	require.NoError(t, err)
	require.Len(t, res.Windows, 5)
	assert.Equal(t, "2023-12-31/2024-01-01", res.Windows[0].String())
	assert.Equal(t, "2024-01-04/2024-01-05", res.Windows[4].String())
}

func TestExpandZeroRepetition(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R0/2024-01-01/P1D"), ExpandConfig{})
	require.NoError(t, err)
	assert.Empty(t, res.Windows)
}

func TestExpandPureBaseHasNoAnchor(t *testing.T) {
	_, err := Expand(mustRepeated(t, "R3/PT1H"), ExpandConfig{})
	assert.True(t, chrono.IsNoAnchor(err))
}

func TestExpandDailyKeepsWallClockAcrossDST(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R3/2024-03-09T09:00:00-05:00[America/New_York]/P1D"), ExpandConfig{})
	require.NoError(t, err)
	require.Len(t, res.Windows, 3)
	start, err := res.Windows[1].Start()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T09:00:00-04:00[America/New_York]", start.String())
}

func TestExpandHourlyMovesInstantAcrossDST(t *testing.T) {
	res, err := Expand(mustRepeated(t, "R3/2024-03-10T01:00:00-05:00[America/New_York]/PT1H"), ExpandConfig{})
	require.NoError(t, err)
	require.Len(t, res.Windows, 3)
	start, err := res.Windows[1].Start()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T03:00:00-04:00[America/New_York]", start.String())
}

func TestExpandMatchesOccurrences(t *testing.T) {
	for _, s := range []string{
		"R5/2024-01-01T10:00/PT30M",
		"R4/2024-01-01/P2W",
		"R3/2024-02-28T23:00/PT2H",
	} {
		r := mustRepeated(t, s)
		want, err := r.Occurrences(0)
		require.NoError(t, err)
		res, err := Expand(r, ExpandConfig{Location: time.UTC})
		require.NoError(t, err)
		assert.Equal(t, windowStrings(want), windowStrings(res.Windows), s)
	}
}
