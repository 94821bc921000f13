package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := Load(fs, "/etc/calspan/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := fs.Stat("/etc/calspan/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	// No temp files are left behind.
	entries, err := afero.ReadDir(fs, "/etc/calspan")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, 5000, cfg.MaxOccurrences)
}

func TestLoadReadsYAMLAndNormalizes(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(`
timezone: Asia/Seoul
log_level: loud
fold_weeks: true
calendars:
  - location: https://example.com/team.ics
  - id: home
    location: /srv/home.ics
basic_auth:
  username: ""
  password: ""
`), 0o600))

	cfg, err := Load(fs, "/c.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.FoldWeeks)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Nil(t, cfg.BasicAuth)
	require.Len(t, cfg.Calendars, 2)
	assert.Equal(t, "https://example.com/team.ics", cfg.Calendars[0].ID)
	assert.Equal(t, "home", cfg.Calendars[1].ID)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("listen: [unclosed"), 0o600))
	_, err := Load(fs, "/c.yaml")
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("listen: 0.0.0.0:9000\ntimezone: UTC\n"), 0o600))

	t.Setenv("CALSPAN_TIMEZONE", "Europe/Paris")
	t.Setenv("CALSPAN_MAX_OCCURRENCES", "42")
	t.Setenv("CALSPAN_OMIT_SINGLE_REPETITION", "true")

	cfg, err := Load(fs, "/c.yaml")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, 42, cfg.MaxOccurrences)
	assert.True(t, cfg.OmitSingleRepetition)
}

func TestEnvironmentRejectsBadNumber(t *testing.T) {
	t.Setenv("CALSPAN_MAX_OCCURRENCES", "lots")
	_, err := Load(afero.NewMemMapFs(), "")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Timezone = "America/New_York"
	cfg.BasicAuth = &BasicAuthConfig{Username: "admin", Password: "secret"}
	require.NoError(t, cfg.Save(fs, "/data/config.yaml"))

	again, err := Load(fs, "/data/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, again)

	assert.Error(t, Save(fs, "", cfg))
	assert.Error(t, Save(fs, "/x.yaml", nil))
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Asia/Seoul"
	assert.Equal(t, "Asia/Seoul", cfg.Location().String())

	cfg.Timezone = "Nowhere/Special"
	assert.Equal(t, time.UTC, cfg.Location())
}
