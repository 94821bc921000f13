package duration

import (
	"testing"

	"github.com/rickb777/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"calspan/internal/chrono"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Duration
		text string
	}{
		{"PT1H30M", New(0, 0, 0, 0, 1, 30, 0, 0), "PT1H30M"},
		{"P0D", Zero, "PT0S"},
		{"PT0S", Zero, "PT0S"},
		{"P1Y2M3DT4H5M6S", New(1, 2, 0, 3, 4, 5, 6, 0), "P1Y2M3DT4H5M6S"},
		{"P2W", New(0, 0, 0, 14, 0, 0, 0, 0), "P14D"},
		{"P1W2D", New(0, 0, 0, 9, 0, 0, 0, 0), "P9D"},
		{"PT1.5S", New(0, 0, 0, 0, 0, 0, 1, 500_000_000), "PT1.5S"},
		{"PT0,25S", New(0, 0, 0, 0, 0, 0, 0, 250_000_000), "PT0.25S"},
		{"PT0.000000001S", New(0, 0, 0, 0, 0, 0, 0, 1), "PT0.000000001S"},
		{"-P1DT2H", New(0, 0, 0, -1, -2, 0, 0, 0), "-P1DT2H"},
		{"-PT0.5S", New(0, 0, 0, 0, 0, 0, 0, -500_000_000), "-PT0.5S"},
		{"+P1D", New(0, 0, 0, 1, 0, 0, 0, 0), "P1D"},
		{"P1M-1D", New(0, 1, 0, -1, 0, 0, 0, 0), "P1M-1D"},
		{"PT90M", New(0, 0, 0, 0, 1, 30, 0, 0), "PT1H30M"},
		{"p1dt1h", New(0, 0, 0, 1, 1, 0, 0, 0), "P1DT1H"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"P",
		"PT",
		"1D",
		"-",
		"P1H",
		"P1S",
		"P1D1Y",
		"P1D1D",
		"P1.5D",
		"PT1.S",
		"PT1.1234567891S",
		"P1DT",
		"PT1HT1M",
		"P1X",
		"PD",
		"P1",
		"PT1D",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, chrono.IsMalformedInput(err), err.Error())
		})
	}
}

func TestFormatWeeks(t *testing.T) {
	assert.Equal(t, "P2W1D", MustParse("P15D").Format(true))
	assert.Equal(t, "P1W", MustParse("P7D").Format(true))
	assert.Equal(t, "P15D", MustParse("P15D").Format(false))
	assert.Equal(t, "P1YT1H", MustParse("P1YT1H").Format(true))
	assert.Equal(t, "-P1W", MustParse("-P7D").Format(true))
}

func TestRoundTrip(t *testing.T) {
	for _, d := range []Duration{
		Zero,
		New(1, 14, 0, 0, 0, 0, 0, 0),
		New(0, 0, 3, 2, 23, 59, 59, 999_999_999),
		New(-5, -1, 0, 0, 0, 0, 0, 0),
		New(0, 3, 0, -40, 0, 0, 0, 0),
		New(0, -3, 0, 4, 5, 0, 0, 0),
		New(0, 0, 0, 0, 0, 0, 0, -1),
	} {
		for _, weeks := range []bool{false, true} {
			text := d.Format(weeks)
			got, err := Parse(text)
			require.NoError(t, err, text)
			assert.Equal(t, d, got, text)
		}
	}
}

func TestTextMarshaling(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("P1DT1H")))
	assert.Equal(t, New(0, 0, 0, 1, 1, 0, 0, 0), d)

	require.NoError(t, d.UnmarshalText([]byte("  ")))
	assert.Equal(t, Zero, d)

	err := d.UnmarshalText([]byte("nope"))
	assert.True(t, chrono.IsMalformedInput(err))

	text, err := MustParse("P1W").MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "P7D", string(text))
}

func TestYAML(t *testing.T) {
	var cfg struct {
		Step Duration `yaml:"step"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("step: PT15M\n"), &cfg))
	assert.Equal(t, MustParse("PT15M"), cfg.Step)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "step: PT15M\n", string(out))

	err = yaml.Unmarshal([]byte("step: [1, 2]\n"), &cfg)
	assert.Error(t, err)
}

func TestPeriod(t *testing.T) {
	d, err := FromPeriod(period.MustParse("P1Y2M3W4DT5H6M7.5S"))
	require.NoError(t, err)
	assert.Equal(t, New(1, 2, 0, 25, 5, 6, 7, 500_000_000), d)

	d, err = FromPeriod(period.MustParse("P1.5Y"))
	require.NoError(t, err)
	assert.Equal(t, New(1, 6, 0, 0, 0, 0, 0, 0), d)

	p, err := MustParse("P1Y2M3DT4H5M6.25S").ToPeriod()
	require.NoError(t, err)
	back, err := FromPeriod(p)
	require.NoError(t, err)
	assert.Equal(t, MustParse("P1Y2M3DT4H5M6.25S"), back)
}
