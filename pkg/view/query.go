package view

import (
	"slices"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
	"github.com/matzehuels/logicview/pkg/observability"
)

// Children returns a snapshot of the current scope's children in order.
func (s *Scene) Children() []*Element {
	return slices.Clone(s.current.children)
}

// FindByID returns the child of the current scope with the given id.
func (s *Scene) FindByID(id uint64) (*Element, error) {
	if idx := s.current.indexOf(id); idx >= 0 {
		return s.current.children[idx], nil
	}
	return nil, errs.New(errs.ErrCodeNotFound, "no element with id %d in scope", id)
}

// Extent returns the smallest rectangle holding every child box of the
// current scope. It is empty for an empty scope.
func (s *Scene) Extent() geom.Rect {
	var r geom.Rect
	for _, el := range s.current.children {
		r = r.Union(el.Box())
	}
	return r
}

// FindByPoint returns the children whose box contains (x, y), lower edges
// inclusive and upper edges exclusive, in child order.
func (s *Scene) FindByPoint(x, y int) []*Element {
	var hits []*Element
	for _, el := range s.current.children {
		if el.Box().Contains(x, y) {
			hits = append(hits, el)
		}
	}
	observability.Query().OnQuery("point", len(hits))
	return hits
}

// FindByRect returns the children whose top-left corner lies in r, in child
// order. r may have negative width or height; it is normalized first. An
// element overlapping r without its corner inside is not returned.
func (s *Scene) FindByRect(r geom.Rect) []*Element {
	var hits []*Element
	for _, el := range s.current.children {
		if r.ContainsOrigin(el.Box()) {
			hits = append(hits, el)
		}
	}
	observability.Query().OnQuery("rect", len(hits))
	return hits
}

// FindGatesAt returns every gate of every child whose box, anchored at the
// gate's top-left position, contains (x, y) in the child's local space. Each
// child contributes its inputs, then its outputs.
func (s *Scene) FindGatesAt(x, y int) []*Gate {
	var hits []*Gate
	for _, el := range s.current.children {
		lx, ly := x-el.X, y-el.Y
		for _, g := range el.Gates() {
			if g.Box().Contains(lx, ly) {
				hits = append(hits, g)
			}
		}
	}
	observability.Query().OnQuery("gates", len(hits))
	return hits
}

// HitGate returns the first gate of el under (x, y); see [Element.HitGate].
func (s *Scene) HitGate(el *Element, x, y int) *Gate {
	g := el.HitGate(x, y)
	n := 0
	if g != nil {
		n = 1
	}
	observability.Query().OnQuery("hit_gate", n)
	return g
}

// ConnectionsInScope returns every connection touching a gate of a child of
// the current scope, each once, ordered by first appearance walking children
// and their gates in order.
func (s *Scene) ConnectionsInScope() []*Connection {
	seen := make(map[Key]bool)
	var out []*Connection
	for _, el := range s.current.children {
		for _, g := range el.Gates() {
			for _, k := range g.conns {
				if seen[k] {
					continue
				}
				if c, ok := s.conns[k]; ok {
					seen[k] = true
					out = append(out, c)
				}
			}
		}
	}
	return out
}
