// Package render turns scene snapshots into pictures for external viewers.
//
// The scene itself never draws. Renderers pull geometry and wiring through the
// scene's query surface and produce a document: the [nodelink] subpackage
// writes Graphviz diagrams of the current scope.
//
// # Format Conversion
//
// [Convert] and its shorthands [ToPDF] and [ToPNG] turn any SVG into another
// format with the external rsvg-convert tool (from librsvg). Errors carry the
// codes of the errors package, so callers can tell a bad scale from a missing
// tool.
//
//	dot := nodelink.ToDOT(scene, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/logicview/pkg/render/nodelink
package render
