// Package cli implements the calspan command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"calspan/internal/config"
	"calspan/internal/ics"
	appLog "calspan/internal/log"
)

// RootOptions holds global flags and the state shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	// Fs backs the config file and local calendars.
	Fs afero.Fs

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command on the OS filesystem.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Fs: afero.NewOsFs()})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calspan",
		Short: "calspan - calendar durations and intervals",
		Long: `Parse, format and compute ISO-8601 durations and intervals,
expand repeated intervals and iCalendar feeds into concrete windows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load(opts.Fs, opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			opts.Config = cfg

			level, _ := appLog.ParseLevel(cfg.LogLevel)
			if opts.Verbose {
				level = appLog.LevelDebug
			}
			appLog.SetLevel(level)
			appLog.Debug("effective config",
				"config_path", opts.ConfigPath,
				"listen", cfg.Listen,
				"timezone", cfg.Timezone,
				"fold_weeks", cfg.FoldWeeks,
				"max_occurrences", cfg.MaxOccurrences,
				"calendar_count", len(cfg.Calendars),
			)
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (created on first use)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewDurationCommand(opts))
	cmd.AddCommand(NewBetweenCommand(opts))
	cmd.AddCommand(NewIntervalCommand(opts))
	cmd.AddCommand(NewExpandCommand(opts))
	cmd.AddCommand(NewCronCommand(opts))
	cmd.AddCommand(NewICSCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// fetcher builds a calendar fetcher over the shared filesystem and the
// configured cache directory.
func (o *RootOptions) fetcher() *ics.Fetcher {
	return ics.NewFetcher(o.Fs, o.Config.CacheDir)
}
