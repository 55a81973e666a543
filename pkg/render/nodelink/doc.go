// Package nodelink renders the current scope of a scene as a node-link
// diagram using Graphviz.
//
// # Overview
//
// Each child element becomes a box labelled "name (kind, facing)", and each
// connection becomes an arrow from the driving element to the driven one,
// labelled with the bit-widths at both ends. Connections whose cached validity
// flag is clear are drawn red and dashed, which makes width mismatches easy to
// spot after a bus width change.
//
// # Usage
//
//	dot := nodelink.ToDOT(scene, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: labels also carry the box geometry and pin counts
//   - Positions: nodes are pinned at their canvas positions (neato layout)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
