package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/goalnet/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve goal networks over HTTP",
		Long: `Serve goal networks over HTTP.

Routes:
  GET  /healthz
  GET  /network
  PUT  /network/{id}/position
  POST /network/layout[?format=json|dot|svg]
  POST /network/place

The requesting user is read from the X-User-ID header, falling back to
[server] default_user. Position updates are rate limited per user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache, true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			logger := loggerFromContext(ctx)
			logger.Info("starting server", "store", c.Config.Store.Backend, "cache", c.Config.Cache.Backend)
			return server.New(runner, cfg, logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	return cmd
}
