package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/logicview/pkg/render"
	"github.com/matzehuels/logicview/pkg/view"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds position, size and pin counts to node labels.
	Detailed bool
	// Positions pins every node at its canvas position and switches the
	// layout engine to neato. Canvas units are used as points, y flipped.
	Positions bool
}

// ToDOT converts the current scope of s to Graphviz DOT format.
// The graph label is the scope path from the global root.
func ToDOT(s *view.Scene, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Positions {
		buf.WriteString("  layout=neato;\n")
	}
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", scopePath(s))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, el := range s.Children() {
		attrs := fmtAttrs(el, fmtLabel(el, opts.Detailed))
		if opts.Positions {
			attrs = append(attrs, fmt.Sprintf("pos=\"%d,%d!\"", el.X, -el.Y))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(el), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range s.ConnectionsInScope() {
		out, okOut := s.Gate(c.Out())
		in, okIn := s.Gate(c.In())
		if !okOut || !okIn {
			continue
		}
		from, okFrom := s.Owner(out)
		to, okTo := s.Owner(in)
		if !okFrom || !okTo || from.Parent() != s.Scope().Key() || to.Parent() != s.Scope().Key() {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", widthLabel(out, in))}
		if !c.Valid() {
			attrs = append(attrs, "color=red", "fontcolor=red", "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", nodeID(from), nodeID(to), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(el *view.Element) string {
	return "e" + strconv.FormatUint(el.ID(), 10)
}

func scopePath(s *view.Scene) string {
	var names []string
	for _, el := range s.Path() {
		names = append(names, displayName(el))
	}
	return strings.Join(names, " / ")
}

func displayName(el *view.Element) string {
	if el.Name != "" {
		return el.Name
	}
	return el.Kind().String()
}

func fmtLabel(el *view.Element, detailed bool) string {
	label := fmt.Sprintf("%s (%s, %s)", displayName(el), el.Kind(), el.Dir())
	if !detailed {
		return label
	}
	return label + fmt.Sprintf("\nid: %d\nat: %d,%d  size: %dx%d\npins: %d in, %d out",
		el.ID(), el.X, el.Y, el.W, el.H, len(el.Inputs()), len(el.Outputs()))
}

func fmtAttrs(el *view.Element, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch el.Kind() {
	case view.KindComposite:
		attrs = append(attrs, "peripheries=2", "fillcolor=lightyellow")
	case view.KindInput, view.KindOutput:
		attrs = append(attrs, "shape=cds", "style=filled", "fillcolor=lightblue")
	}
	if el.State == view.StateSelected {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func widthLabel(out, in *view.Gate) string {
	if out.BitWidth() == in.BitWidth() {
		return strconv.Itoa(out.BitWidth())
	}
	return fmt.Sprintf("%d/%d", out.BitWidth(), in.BitWidth())
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// Requires librsvg.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
