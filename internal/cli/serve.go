package cli

import (
	"github.com/spf13/cobra"

	"calspan/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve /health and the JSON API (/api/duration, /api/between,
/api/interval, /api/expand, /api/cron, /api/events) until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *rootOpts.Config
			// --listen overrides config file listen if provided.
			if listen != "" {
				cfg.Listen = listen
			}
			return web.StartServer(cmd.Context(), &cfg, rootOpts.fetcher())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}
