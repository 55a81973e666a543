// Package netlist analyses the wiring of a scene's current scope: which
// gates form electrically connected nets, and in what order signals flow
// between elements.
//
// Both analyses work on a snapshot of the scope and never mutate the scene.
package netlist

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/view"
)

// Net is a set of gates joined by connections.
type Net struct {
	Name    string       // "net-001", numbered in order of the lowest gate key
	Gates   []*view.Gate // ordered by key
	Drivers int          // number of output gates
	Width   int          // common bit-width, or the widest when Mixed
	Mixed   bool         // gates disagree on bit-width
	Valid   bool         // every connection's cached flag is set
	Conns   int          // connections within the net
}

// Nets groups the gates of the current scope's children into nets. Gates
// without connections are not reported.
func Nets(s *view.Scene) []Net {
	g := simple.NewUndirectedGraph()
	gates := make(map[int64]*view.Gate)
	conns := s.ConnectionsInScope()
	for _, c := range conns {
		for _, k := range []view.Key{c.Out(), c.In()} {
			gate, ok := s.Gate(k)
			if !ok {
				continue
			}
			id := int64(k)
			if g.Node(id) == nil {
				g.AddNode(simple.Node(id))
				gates[id] = gate
			}
		}
		out, in := int64(c.Out()), int64(c.In())
		if g.Node(out) != nil && g.Node(in) != nil {
			g.SetEdge(g.NewEdge(simple.Node(out), simple.Node(in)))
		}
	}

	components := topo.ConnectedComponents(g)
	var nets []Net
	for _, comp := range components {
		if len(comp) < 2 {
			continue
		}
		sortNodes(comp)
		n := Net{Valid: true}
		for _, node := range comp {
			n.Gates = append(n.Gates, gates[node.ID()])
		}
		nets = append(nets, n)
	}
	slices.SortFunc(nets, func(a, b Net) int {
		return cmp.Compare(a.Gates[0].Key(), b.Gates[0].Key())
	})

	netOf := make(map[view.Key]int)
	for i := range nets {
		n := &nets[i]
		n.Name = fmt.Sprintf("net-%03d", i+1)
		for j, gate := range n.Gates {
			netOf[gate.Key()] = i
			if !gate.IsInput() {
				n.Drivers++
			}
			switch {
			case j == 0:
				n.Width = gate.BitWidth()
			case gate.BitWidth() != n.Width:
				n.Mixed = true
				n.Width = max(n.Width, gate.BitWidth())
			}
		}
	}
	for _, c := range conns {
		i, ok := netOf[c.Out()]
		if !ok {
			continue
		}
		nets[i].Conns++
		if !c.Valid() {
			nets[i].Valid = false
		}
	}
	return nets
}

// Order returns the current scope's children so that every element comes
// after the elements driving its inputs. Elements with no wiring between them
// keep their child order.
//
// A cycle, including an element wired to itself, makes the order undefined;
// Order then fails with FEEDBACK_LOOP and the cause is an [errs.LoopError]
// naming the elements on the loops.
func Order(s *view.Scene) ([]*view.Element, error) {
	children := s.Children()
	index := make(map[view.Key]int64, len(children))
	g := simple.NewDirectedGraph()
	for i, el := range children {
		index[el.Key()] = int64(i)
		g.AddNode(simple.Node(i))
	}

	var selfLoops []uint64
	for _, c := range s.ConnectionsInScope() {
		from, ok1 := ownerIndex(s, index, c.Out())
		to, ok2 := ownerIndex(s, index, c.In())
		if !ok1 || !ok2 {
			continue
		}
		if from == to {
			selfLoops = append(selfLoops, children[from].ID())
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
	}

	sorted, err := topo.SortStabilized(g, sortNodes)
	if err != nil || len(selfLoops) > 0 {
		return nil, loopError(children, selfLoops, err)
	}

	order := make([]*view.Element, len(sorted))
	for i, n := range sorted {
		order[i] = children[n.ID()]
	}
	return order, nil
}

func ownerIndex(s *view.Scene, index map[view.Key]int64, k view.Key) (int64, bool) {
	gate, ok := s.Gate(k)
	if !ok {
		return 0, false
	}
	i, ok := index[gate.Parent()]
	return i, ok
}

func loopError(children []*view.Element, selfLoops []uint64, err error) error {
	ids := slices.Clone(selfLoops)
	var u topo.Unorderable
	if errors.As(err, &u) {
		for _, scc := range u {
			for _, n := range scc {
				ids = append(ids, children[n.ID()].ID())
			}
		}
	} else if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "ordering elements")
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	return errs.Wrap(errs.ErrCodeFeedbackLoop, &errs.LoopError{Elements: ids}, "signal order is undefined")
}

func sortNodes(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
}
