package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFs reads through to the real testdata and keeps writes in memory.
func testFs() afero.Fs {
	return afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(afero.NewOsFs()), afero.NewMemMapFs())
}

func execute(t *testing.T, fs afero.Fs, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), &RootOptions{Fs: fs}, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestGolden(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"duration_fold", []string{"duration", "P1W2DT36H", "--fold"}},
		{"duration_at", []string{"duration", "P1M", "--at", "2024-01-31"}},
		{"between_unit", []string{"between", "2024-01-31", "2024-03-01", "--unit", "days"}},
		{"interval_repeated", []string{"interval", "R3/2024-01-01/P1W", "--at", "2024-01-10"}},
		{"interval_duration_end", []string{"interval", "P1D/2024-01-03"}},
		{"expand_json", []string{"--format", "json", "expand", "R5/2024-01-01T10:00/PT30M", "--limit", "2"}},
		{"expand_truncated", []string{"expand", "R5/2024-01-01T10:00/PT30M", "--limit", "2"}},
		{"expand_months", []string{"expand", "R3/2024-01-31/P1M"}},
		{"cron", []string{"cron", "0 9 * * 1-5", "--after", "2024-01-05T12:00Z", "-n", "3"}},
		{"ics_events", []string{"ics", "events", "testdata/standup.ics"}},
		{"ics_expand", []string{"ics", "expand", "testdata/standup.ics"}},
		{"config_show", []string{"config", "show"}},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, code := execute(t, testFs(), tt.args...)
			require.Equal(t, ExitSuccess, code, stderr)
			g.Assert(t, tt.name, []byte(out))
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, stderr, code := execute(t, testFs(), "--format", "xml", "duration", "P1D")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid format")
}

func TestMalformedInputIsCommandError(t *testing.T) {
	_, stderr, code := execute(t, testFs(), "duration", "1D")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "MALFORMED_INPUT")
}

func TestJSONErrorEnvelope(t *testing.T) {
	out, _, code := execute(t, testFs(), "--format", "json", "expand", "R/P1D")
	assert.Equal(t, ExitFailure, code)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_ANCHOR", resp.Error.Kind)
}

func TestExpandRejectsPlainInterval(t *testing.T) {
	_, stderr, code := execute(t, testFs(), "expand", "2024-01-01/P1D")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "not a repeated interval")
}

func TestUnknownFlag(t *testing.T) {
	_, _, code := execute(t, testFs(), "duration", "P1D", "--bogus")
	assert.Equal(t, ExitCommandError, code)
}

func TestConfigFileIsCreatedAndRead(t *testing.T) {
	fs := testFs()

	out, stderr, code := execute(t, fs, "config", "init", "/cfg/calspan.yaml")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "wrote /cfg/calspan.yaml\n", out)

	require.NoError(t, afero.WriteFile(fs, "/cfg/calspan.yaml", []byte("fold_weeks: true\n"), 0o600))
	out, stderr, code = execute(t, fs, "--config", "/cfg/calspan.yaml", "duration", "P14D")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "P2W\n", out)

	// --fold=false beats the config.
	out, _, _ = execute(t, fs, "--config", "/cfg/calspan.yaml", "duration", "P14D", "--fold=false")
	assert.Equal(t, "P14D\n", out)
}

func TestConfigShowRedactsPassword(t *testing.T) {
	fs := testFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("basic_auth:\n  username: admin\n  password: hunter2\n"), 0o600))

	out, stderr, code := execute(t, fs, "--config", "/c.yaml", "config", "show")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, out, "username: admin")
	assert.NotContains(t, out, "hunter2")
}

func TestICSUsesConfiguredCalendars(t *testing.T) {
	fs := testFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("calendars:\n  - id: team\n    location: testdata/standup.ics\n"), 0o600))

	out, stderr, code := execute(t, fs, "--config", "/c.yaml", "--format", "json", "ics", "expand", "--from", "2024-01-01", "--to", "2024-01-01T23:59")
	require.Equal(t, ExitSuccess, code, stderr)

	var resp struct {
		Data OccurrencesResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Occurrences, 1)
	assert.Equal(t, "team", resp.Data.Occurrences[0].SourceID)
	assert.Equal(t, "Standup", resp.Data.Occurrences[0].Summary)
	assert.Equal(t, "2024-01-01T09:00:00Z/2024-01-01T09:15:00Z", resp.Data.Occurrences[0].Window)
}

func TestICSWithoutCalendars(t *testing.T) {
	_, stderr, code := execute(t, testFs(), "ics", "events")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "no calendar")

	_, _, code = execute(t, testFs(), "ics", "events", "testdata/missing.ics")
	assert.Equal(t, ExitFailure, code)
}

func TestICSExport(t *testing.T) {
	out, stderr, code := execute(t, testFs(), "ics", "export", "testdata/standup.ics", "--stamp", "2024-01-01T00:00Z")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "DTSTAMP:20240101T000000Z")
	assert.Contains(t, out, "RRULE:FREQ=DAILY;COUNT=3")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240105")
}
