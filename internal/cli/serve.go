package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brewdeps/pkg/buildinfo"
	"github.com/matzehuels/brewdeps/pkg/observability"
	"github.com/matzehuels/brewdeps/pkg/server"
)

// serveCommand creates the serve command, a read-only HTTP API over the
// dependency graph loaded at startup.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src  sourceOptions
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dependency graph over HTTP",
		Long: `Serve the dependency graph over a read-only HTTP API.

The inventory is loaded once at startup. Restart the server (with
--refresh-cache) to pick up packages installed since.

Endpoints:
  GET /health
  GET /metrics             Prometheus metrics
  GET /summary
  GET /graph.json          ?meta=true for node metadata
  GET /graph.dot           ?format=svg|png|jpg to render
  GET /packages            ?kind=formula|cask
  GET /packages/{name}
  GET /packages/{name}/tree  ?depth=N (-1 for unlimited, at most 10000 nodes)
  GET /packages/{name}/dot   ?format=svg|png|jpg to render`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Serve.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			observability.SetAll(observability.Multi(loggingHooks{logger: c.Logger}, observability.NewMetrics(reg)))

			l, err := c.load(cmd.Context(), src)
			if err != nil {
				return err
			}
			printLoaded(l)

			srv := server.New(l.snap, l.graph, server.Options{
				Logger:   c.Logger,
				Renderer: c.Config.Export.Renderer,
				Version:  buildinfo.Version,
				Metrics:  reg,
			})
			printInfo("Listening on http://%s", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")

	return cmd
}
