package view

import (
	"slices"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
)

// GateDir is the direction of a gate terminal.
type GateDir int

const (
	In GateDir = iota
	Out
)

func (d GateDir) String() string {
	if d == Out {
		return "output"
	}
	return "input"
}

// Gate is an input or output terminal of an element. Its position is local to
// the owning element; its direction is fixed at construction.
type Gate struct {
	Entity

	dir      GateDir
	bitWidth int
	base     geom.Point
	conns    []Key
}

// Dir returns the gate's direction.
func (g *Gate) Dir() GateDir { return g.dir }

// IsInput reports whether the gate is an input.
func (g *Gate) IsInput() bool { return g.dir == In }

// BitWidth returns the gate's bit-width.
func (g *Gate) BitWidth() int { return g.bitWidth }

// SetBitWidth changes the gate's bit-width. Cached connection validity is not
// updated; call [Scene.Revalidate] afterwards.
func (g *Gate) SetBitWidth(width int) error {
	if err := errs.ValidateBitWidth(width); err != nil {
		return err
	}
	g.bitWidth = width
	return nil
}

// Base returns the gate's position for a right-facing element.
func (g *Gate) Base() geom.Point { return g.base }

// Conns returns the keys of the connections this gate participates in, in
// the order they were tied.
func (g *Gate) Conns() []Key { return slices.Clone(g.conns) }

// NumConns returns how many connections the gate participates in.
func (g *Gate) NumConns() int { return len(g.conns) }

func (g *Gate) dropConn(k Key) {
	g.conns = slices.DeleteFunc(g.conns, func(c Key) bool { return c == k })
}
