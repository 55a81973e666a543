package view

import (
	"fmt"
	"slices"
	"strings"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
)

// Kind is the variant of an element. It is fixed at construction.
type Kind int

const (
	KindAnd Kind = iota
	KindOr
	KindNot
	KindCustom
	// KindInput is a boundary element feeding a composite's interior from
	// one of its input pins.
	KindInput
	// KindOutput is a boundary element driving one of a composite's output
	// pins from its interior.
	KindOutput
	KindComposite
)

var kindNames = [...]string{"and", "or", "not", "custom", "input", "output", "composite"}

func (k Kind) String() string {
	if k < KindAnd || k > KindComposite {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a kind name such as "and" or "composite".
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return KindCustom, errs.New(errs.ErrCodeInvalidInput, "unknown element kind %q", s)
}

// IsBoundary reports whether k is an input or output boundary.
func (k Kind) IsBoundary() bool { return k == KindInput || k == KindOutput }

// Element is a circuit node: a positioned box with ordered input and output
// gates. Pin order follows the simulated element's pin order.
//
// Composites also own child elements positioned in the composite's local
// space. Boundary elements own one inner gate and, while they sit inside a
// composite, one outer gate on that composite.
type Element struct {
	Entity

	kind     Kind
	dir      geom.Direction
	inputs   []*Gate
	outputs  []*Gate
	children []*Element
	outer    *Gate
}

// Kind returns the element's variant.
func (e *Element) Kind() Kind { return e.kind }

// IsComposite reports whether the element can hold children.
func (e *Element) IsComposite() bool { return e.kind == KindComposite }

// Dir returns the element's facing.
func (e *Element) Dir() geom.Direction { return e.dir }

// Inputs returns the input gates in pin order.
func (e *Element) Inputs() []*Gate { return slices.Clone(e.inputs) }

// Outputs returns the output gates in pin order.
func (e *Element) Outputs() []*Gate { return slices.Clone(e.outputs) }

// Gates returns the input gates followed by the output gates.
func (e *Element) Gates() []*Gate {
	return append(slices.Clone(e.inputs), e.outputs...)
}

// Input returns input gate i.
func (e *Element) Input(i int) (*Gate, error) {
	if i < 0 || i >= len(e.inputs) {
		return nil, errs.New(errs.ErrCodeIndexOutOfRange, "element %d has %d inputs, no input %d", e.id, len(e.inputs), i)
	}
	return e.inputs[i], nil
}

// Output returns output gate i.
func (e *Element) Output(i int) (*Gate, error) {
	if i < 0 || i >= len(e.outputs) {
		return nil, errs.New(errs.ErrCodeIndexOutOfRange, "element %d has %d outputs, no output %d", e.id, len(e.outputs), i)
	}
	return e.outputs[i], nil
}

// Children returns a composite's children in order. It is empty for every
// other kind.
func (e *Element) Children() []*Element { return slices.Clone(e.children) }

// Outer returns the gate a boundary element exposes on its enclosing
// composite, or nil.
func (e *Element) Outer() *Gate { return e.outer }

// Inner returns a boundary element's single interior gate.
func (e *Element) Inner() (*Gate, error) {
	switch e.kind {
	case KindInput:
		return e.Output(0)
	case KindOutput:
		return e.Input(0)
	default:
		return nil, errs.New(errs.ErrCodeInvalidTarget, "element %d is %s, not a boundary", e.id, e.kind)
	}
}

// Rotate turns the element to face d and recomputes every gate position from
// its right-facing base position.
func (e *Element) Rotate(d geom.Direction) error {
	if !d.Valid() {
		return errs.New(errs.ErrCodeInvalidInput, "invalid direction %d", int(d))
	}
	e.dir = d
	e.orient()
	return nil
}

// Relayout spaces the gates evenly along the left (inputs) and right
// (outputs) edges of the element's box, in pin order, then applies the
// current facing. Call it after changing the element's size.
func (e *Element) Relayout() {
	spread(e.inputs, 0, e.H)
	spread(e.outputs, e.W, e.H)
	e.orient()
}

// HitGate returns the first gate whose box, centred on the gate position,
// contains (x, y). The point is in the element's scope coordinates. Inputs are
// checked before outputs. It returns nil when nothing matches.
func (e *Element) HitGate(x, y int) *Gate {
	lx, ly := x-e.X, y-e.Y
	for _, list := range [][]*Gate{e.inputs, e.outputs} {
		for _, g := range list {
			if g.Box().ContainsCentered(lx, ly) {
				return g
			}
		}
	}
	return nil
}

func (e *Element) orient() {
	m := geom.Orient(e.dir, e.W, e.H)
	for _, list := range [][]*Gate{e.inputs, e.outputs} {
		for _, g := range list {
			p := m.Apply(g.base)
			g.X, g.Y = p.X, p.Y
		}
	}
}

// spread positions gates at x, dividing height h into equal slots and placing
// each gate in the middle of its slot.
func spread(gates []*Gate, x, h int) {
	if len(gates) == 0 {
		return
	}
	step := h / len(gates)
	for i, g := range gates {
		g.base = geom.Point{X: x, Y: step/2 + i*step}
	}
}

// hasGate reports whether one of e's gates has key k.
func (e *Element) hasGate(k Key) bool {
	match := func(x *Gate) bool { return x.key == k }
	return slices.ContainsFunc(e.inputs, match) || slices.ContainsFunc(e.outputs, match)
}

func (e *Element) removeGate(g *Gate) {
	match := func(x *Gate) bool { return x.key == g.key }
	e.inputs = slices.DeleteFunc(e.inputs, match)
	e.outputs = slices.DeleteFunc(e.outputs, match)
}

// replaceGate puts g in place of the gate with the same key.
func (e *Element) replaceGate(g *Gate) {
	for _, list := range [][]*Gate{e.inputs, e.outputs} {
		for i, x := range list {
			if x.key == g.key {
				list[i] = g
			}
		}
	}
}

func (e *Element) indexOf(id uint64) int {
	return slices.IndexFunc(e.children, func(c *Element) bool { return c.id == id })
}
