package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve exposes analysis, DOT parsing and layout over HTTP:

  GET  /healthz
  POST /analyze   {"dir": "<relative to --root>", "patterns": [...], "function": "..."}
  POST /parse     DOT text in the body
  POST /layout    {"kind": "cfg", "document": {...}, "layout": {...}, "format": "svg"}

Analyses run one at a time; concurrent /analyze requests get 409.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			timeout, err := cfg.TimeoutDuration()
			if err != nil {
				return err
			}
			a, err := c.newAnalyzer(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(a, server.Options{Root: cfg.Root, Timeout: timeout, Logger: c.Logger})
			printInfo("Serving %s on %s", StyleHighlight.Render(cfg.Root), StyleValue.Render(cfg.Addr))
			printDetail("cache: %s", c.Config.Cache.Backend)
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("root", ".", "directory requests are confined to")
	cmd.Flags().String("timeout", "2m", "per-request timeout (0 disables)")
	cmd.Flags().String("cache", "file", "cache backend: file, memory, redis or none")
	cmd.Flags().String("redis", "", "redis address for the redis backend")
	return cmd
}
