package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"calspan/internal/config"
	appLog "calspan/internal/log"
)

const redacted = "********"

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file plus environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *rootOpts.Config
			if shown.BasicAuth != nil {
				auth := *shown.BasicAuth
				auth.Password = redacted
				shown.BasicAuth = &auth
			}
			return newFormatter(rootOpts, cmd).Success(shown, func(w io.Writer) {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(shown); err != nil {
					appLog.Error("encode config", err)
				}
				_ = enc.Close()
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write the default configuration to path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(rootOpts.Fs, args[0], config.DefaultConfig()); err != nil {
				return WrapExitError(ExitFailure, "write config", err)
			}
			return newFormatter(rootOpts, cmd).Success(map[string]string{"path": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "wrote %s\n", args[0])
			})
		},
	})
	return cmd
}
