// Package pkg provides the core libraries for logicview circuit editing.
//
// # Overview
//
// Logicview keeps a hierarchical logic circuit as a view graph: elements with
// input and output gates, connections between gates, and composite elements
// whose interior is another scope with boundary elements standing in for the
// composite's pins. The pkg directory is organized into these areas:
//
//  1. [view] - The scene: elements, gates, connections, navigation and
//     spatial queries
//  2. [geom] - Directions, rectangles and the rotation transforms used for
//     gate placement
//  3. [sim] - Pin allocation and the notifier the simulation engine listens on
//  4. [netlist] - Nets and signal order derived from a scope's wiring
//  5. [render] - Graphviz diagrams of a scope, plus SVG conversion
//  6. [cache] - Storage for rendered diagrams
//  7. [errors] - Coded errors shared by every package
//  8. [observability] - Hooks for metrics on scene mutations and queries
//
// # Architecture
//
// The typical data flow through logicview:
//
//	Scenario script or editor keystroke
//	         ↓
//	    [view] package (place, tie, rotate, enter, exit)
//	         ↓                        ↘
//	    [sim] notifier          [observability] hooks
//	         ↓
//	    [netlist] and [render] packages (inspect the current scope)
//	         ↓
//	    Tables, JSON, DOT/SVG/PNG/PDF output
//
// # Quick Start
//
//	s := view.NewScene()
//	not, _ := s.NewElement(view.KindNot, 1, "not")
//	if err := s.Add(not); err != nil {
//		log.Fatal(err)
//	}
//	hits := s.FindByPoint(10, 10)
//
// [view]: github.com/matzehuels/logicview/pkg/view
// [geom]: github.com/matzehuels/logicview/pkg/geom
// [sim]: github.com/matzehuels/logicview/pkg/sim
// [netlist]: github.com/matzehuels/logicview/pkg/netlist
// [render]: github.com/matzehuels/logicview/pkg/render
// [cache]: github.com/matzehuels/logicview/pkg/cache
// [errors]: github.com/matzehuels/logicview/pkg/errors
// [observability]: github.com/matzehuels/logicview/pkg/observability
package pkg
