package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	appLog "calspan/internal/log"
)

// NOTE: This file provides the configuration model and YAML load/save
// behavior, including first-run config creation and 0600 permissions.
// CALSPAN_* environment variables override the file.

const (
	defaultListen         = "127.0.0.1:8080"
	defaultTimezone       = "UTC"
	defaultLogLevel       = "info"
	defaultMaxOccurrences = 5000
)

// CalendarConfig describes a single ICS calendar source.
type CalendarConfig struct {
	// ID is a stable identifier for this calendar (used in logs and API).
	ID string `yaml:"id" json:"id"`
	// Name is an optional human-readable label.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// Location is an ICS URL (http/https) or a local file path.
	Location string `yaml:"location" json:"location"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen" env:"CALSPAN_LISTEN"`

	// Timezone is the IANA zone used to place local dates and date-times
	// on the time line (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone" env:"CALSPAN_TIMEZONE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level" env:"CALSPAN_LOG_LEVEL"`

	// FoldWeeks writes whole weeks as nW when formatting durations.
	FoldWeeks bool `yaml:"fold_weeks" json:"fold_weeks" env:"CALSPAN_FOLD_WEEKS"`

	// OmitSingleRepetition writes R1/x as x.
	OmitSingleRepetition bool `yaml:"omit_single_repetition" json:"omit_single_repetition" env:"CALSPAN_OMIT_SINGLE_REPETITION"`

	// MaxOccurrences caps every expansion.
	MaxOccurrences int `yaml:"max_occurrences" json:"max_occurrences" env:"CALSPAN_MAX_OCCURRENCES"`

	// CacheDir keeps fetched remote calendars. Empty disables the cache.
	CacheDir string `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty" env:"CALSPAN_CACHE_DIR"`

	// Calendars are the ICS sources served by /api/events.
	Calendars []CalendarConfig `yaml:"calendars,omitempty" json:"calendars,omitempty"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         defaultListen,
		Timezone:       defaultTimezone,
		LogLevel:       defaultLogLevel,
		MaxOccurrences: defaultMaxOccurrences,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if _, err := appLog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = defaultMaxOccurrences
	}
	for i := range c.Calendars {
		if c.Calendars[i].ID == "" {
			c.Calendars[i].ID = cmp.Or(c.Calendars[i].Name, c.Calendars[i].Location)
		}
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to UTC", err, "name", c.Timezone)
		return time.UTC
	}
	return loc
}

// ApplyEnv overrides fields from CALSPAN_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := cleanenv.ReadEnv(c); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	c.Normalize()
	return nil
}

// Load loads configuration from the given YAML path on fsys.
//
// Behavior:
//   - If path is empty, defaults are used.
//   - If the file does not exist, a default config is written with 0600
//     perms.
//   - Otherwise the YAML is read and defaults are filled in.
//
// Environment overrides are applied last in every case.
func Load(fsys afero.Fs, path string) (*Config, error) {
	cfg, err := loadFile(fsys, path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(fsys, path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			appLog.Info("wrote default config", "path", path)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically: the parent directory is created
// (0700), the YAML goes to a temp file that is chmod 0600 and renamed over
// the target.
func Save(fsys afero.Fs, path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(fsys, dir, ".calspan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer fsys.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := fsys.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return fsys.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(fsys afero.Fs, path string) error {
	return Save(fsys, path, c)
}
