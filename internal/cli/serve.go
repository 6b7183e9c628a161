package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/organigram/pkg/server"
)

// serveCommand creates the serve command, which renders the chart on every
// HTTP request.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src  sourceFlags
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the chart over HTTP",
		Long: `Serve the chart over HTTP.

Routes:
  /chart.svg   the chart (?root=<id> for a subtree)
  /chart.json  node positions
  /chart.txt   text tree
  /healthz     liveness

Records are cached between requests unless --no-cache is set; the cache TTL
from the config file bounds how stale a chart can be.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := src.load(cmd, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			ctx := cmd.Context()

			s, err := c.openSource(ctx, cfg, src.refresh)
			if err != nil {
				return err
			}
			defer s.Close()

			opts := cfg.PipelineOptions()
			opts.RootID = src.rootID(cmd)
			srv := server.New(c.newRunner(), s, opts, loggerFromContext(ctx))

			printSuccess("Serving chart on http://%s/chart.svg", cfg.Serve.Addr)
			printNextStep("Stop", "ctrl+c")
			return srv.ListenAndServe(ctx, cfg.Serve.Addr)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else localhost:8080)")

	return cmd
}
