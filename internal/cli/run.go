package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/matzehuels/logicview/internal/metrics"
	"github.com/matzehuels/logicview/internal/scenario"
	"github.com/matzehuels/logicview/pkg/cache"
	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/netlist"
	"github.com/matzehuels/logicview/pkg/observability"
	"github.com/matzehuels/logicview/pkg/render/nodelink"
	"github.com/matzehuels/logicview/pkg/sim"
	"github.com/matzehuels/logicview/pkg/view"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	dot      string  // write the final scope as DOT
	svg      string  // write the final scope as SVG
	png      string  // write the final scope as PNG
	pdf      string  // write the final scope as PDF
	scale    float64 // PNG scale factor
	detailed bool    // include ids, positions and pin counts in node labels
	metrics  bool    // print Prometheus text exposition after the summary
	quiet    bool    // skip the tables
	noCache  bool    // always re-render
}

// runCommand creates the run command for replaying scenario scripts.
func (c *CLI) runCommand() *cobra.Command {
	opts := runOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "run [scenario.toml]",
		Short: "Replay a scenario script and summarize the circuit",
		Long: `Replay a scenario script against a fresh scene.

Each [[step]] is applied the way the editor would apply it. Replay stops at
the first failing step; the summary then shows the circuit as far as it got.
The scope the script ends in is summarized: its elements, its nets and the
order signals flow through it.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenario,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScenario(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.dot, "dot", "", "write the final scope as Graphviz DOT")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "write the final scope as SVG")
	cmd.Flags().StringVar(&opts.png, "png", "", "write the final scope as PNG (requires librsvg)")
	cmd.Flags().StringVar(&opts.pdf, "pdf", "", "write the final scope as PDF (requires librsvg)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show ids, positions and pin counts in rendered labels")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print replay metrics in Prometheus text format")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the replay result line")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "re-render even when a cached rendering exists")

	return cmd
}

func (c *CLI) runScenario(ctx context.Context, w io.Writer, path string, opts runOpts) error {
	logger := loggerFromContext(ctx)

	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	if opts.metrics {
		metrics.New(reg).Install()
		defer observability.Reset()
	}

	scene := c.newScene()
	rec := &sim.Recorder{}
	player := scenario.NewPlayer(scene, c.settings().Editor.PinBase)
	player.Notifier = rec
	player.Logger = logger

	prog := newProgress(logger)
	res, runErr := player.Run(ctx, sc)
	if errors.Is(runErr, context.Canceled) {
		return runErr
	}
	prog.done(fmt.Sprintf("Replayed %d of %d steps", res.Applied, len(sc.Steps)), "placed", res.Placed, "tied", res.Tied)

	title := sc.Name
	if title == "" {
		title = path
	}
	fmt.Fprintln(w, StyleTitle.Render(title))
	if sc.Description != "" {
		fmt.Fprintln(w, StyleDim.Render(sc.Description))
	}
	if runErr != nil {
		printError(w, "%s", runErr)
	} else {
		printSuccess(w, "%d steps applied", res.Applied)
	}

	if !opts.quiet {
		printSummary(w, scene, res, rec)
	}

	if err := c.writeOutputs(ctx, w, scene, opts); err != nil {
		return err
	}

	if opts.metrics {
		if err := writeMetrics(w, reg); err != nil {
			return err
		}
	}
	return runErr
}

func printSummary(w io.Writer, scene *view.Scene, res scenario.Result, rec *sim.Recorder) {
	fmt.Fprintln(w)
	printKeyValue(w, "scope", scopeLabel(scene))
	printKeyValue(w, "placed", strconv.Itoa(res.Placed))
	printKeyValue(w, "tied", strconv.Itoa(res.Tied))
	printKeyValue(w, "notified", fmt.Sprintf("%d elements, %d wires",
		rec.Count(sim.EventAddElement), rec.Count(sim.EventConnect)))
	if res.Invalid > 0 {
		printWarning(w, "%d invalid connections found by check steps", res.Invalid)
	}

	if len(scene.Children()) == 0 {
		printInfo(w, "scope is empty")
		return
	}
	fmt.Fprintln(w, elementTable(scene))

	if nets := netlist.Nets(scene); len(nets) > 0 {
		fmt.Fprintln(w, netTable(scene, nets))
	}

	order, err := netlist.Order(scene)
	var loop *errs.LoopError
	switch {
	case errors.As(err, &loop):
		ids := make([]string, len(loop.Elements))
		for i, id := range loop.Elements {
			ids[i] = strconv.FormatUint(id, 10)
		}
		printWarning(w, "feedback loop through %s", strings.Join(ids, ", "))
	case err != nil:
		printError(w, "%s", errs.UserMessage(err))
	default:
		ids := make([]string, len(order))
		for i, el := range order {
			ids[i] = strconv.FormatUint(el.ID(), 10)
		}
		printKeyValue(w, "order", strings.Join(ids, " "+iconArrow+" "))
	}
}

func scopeLabel(scene *view.Scene) string {
	var names []string
	for _, el := range scene.Path() {
		names = append(names, el.Name)
	}
	return strings.Join(names, " / ")
}

func (c *CLI) writeOutputs(ctx context.Context, w io.Writer, scene *view.Scene, opts runOpts) error {
	if opts.dot == "" && opts.svg == "" && opts.png == "" && opts.pdf == "" {
		return nil
	}
	dot := nodelink.ToDOT(scene, nodelink.Options{Detailed: opts.detailed})

	rc, err := renderCache(opts.noCache)
	if err != nil {
		return err
	}
	defer rc.Close()

	outputs := []struct {
		path   string
		format string
		scale  float64
		render func() ([]byte, error)
	}{
		{opts.dot, "dot", 0, func() ([]byte, error) { return []byte(dot), nil }},
		{opts.svg, "svg", 0, func() ([]byte, error) { return nodelink.RenderSVG(dot) }},
		{opts.png, "png", opts.scale, func() ([]byte, error) { return nodelink.RenderPNG(dot, opts.scale) }},
		{opts.pdf, "pdf", 0, func() ([]byte, error) { return nodelink.RenderPDF(dot) }},
	}

	logger := loggerFromContext(ctx)
	fmt.Fprintln(w)
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		data, err := c.rendered(ctx, rc, out.format, dot, out.scale, out.path, out.render)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.path, data, 0o644); err != nil {
			return err
		}
		logger.Debug("wrote output", "path", out.path, "format", out.format, "bytes", len(data))
		printFile(w, out.path)
	}
	return nil
}

// rendered returns a cached rendering or produces and stores a fresh one.
// DOT output is never cached. Cache failures only cost a re-render.
func (c *CLI) rendered(ctx context.Context, rc cache.Cache, format, dot string, scale float64, path string, render func() ([]byte, error)) ([]byte, error) {
	if format == "dot" {
		return render()
	}
	logger := loggerFromContext(ctx)
	key := cache.ArtifactKey(format, dot, scale)
	if data, ok, err := rc.Get(ctx, key); err == nil && ok {
		logger.Debug("render cache hit", "format", format)
		return data, nil
	}

	spin := newSpinner(ctx, os.Stderr, "Rendering "+path+"...")
	spin.Start()
	data, err := render()
	spin.Stop()
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	if err := rc.Set(ctx, key, data, c.settings().Cache.TTL.Duration); err != nil {
		logger.Warn("render cache write failed", "error", err)
	}
	return data, nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
