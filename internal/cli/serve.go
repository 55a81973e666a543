package cli

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/logicview/internal/metrics"
	"github.com/matzehuels/logicview/internal/scenario"
	"github.com/matzehuels/logicview/internal/server"
	"github.com/matzehuels/logicview/pkg/observability"
	"github.com/matzehuels/logicview/pkg/view"
)

// serveCommand creates the serve command for the HTTP inspection server.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [scenario.toml]",
		Short: "Serve a scene over HTTP for inspection",
		Long: `Serve a scene over HTTP for inspection.

The scene starts empty, or as the given scenario leaves it. Clients can browse
scopes, run spatial queries, fetch nets and DOT renderings, and scrape
Prometheus metrics from /metrics. The server stops on interrupt.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScenario,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.settings().Server.Addr
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.serve(cmd.Context(), cmd.OutOrStdout(), path, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) serve(ctx context.Context, w io.Writer, path, addr string) error {
	logger := loggerFromContext(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)
	collector.Install()
	defer observability.Reset()

	scene, err := c.loadScene(ctx, path)
	if err != nil {
		return err
	}

	srv := server.New(scene, server.WithLogger(logger), server.WithMetrics(collector, reg))
	printInfo(w, "serving %s on %s", scopeLabel(scene), addr)
	return srv.ListenAndServe(ctx, addr, c.settings().Server.ShutdownTimeout.Duration)
}

// loadScene returns a fresh scene, with the scenario at path replayed into it
// when path is set. The scope is reset to the global root afterwards.
func (c *CLI) loadScene(ctx context.Context, path string) (*view.Scene, error) {
	scene := c.newScene()
	if path == "" {
		return scene, nil
	}
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	player := scenario.NewPlayer(scene, c.settings().Editor.PinBase)
	player.Logger = loggerFromContext(ctx)

	prog := newProgress(player.Logger)
	if _, err := player.Run(ctx, sc); err != nil {
		return nil, err
	}
	prog.done("Loaded " + path)
	scene.ResetToGlobal()
	return scene, nil
}
