package view

import (
	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
	"github.com/matzehuels/logicview/pkg/sim"
)

var opKinds = map[sim.Op]Kind{
	sim.OpAnd:    KindAnd,
	sim.OpOr:     KindOr,
	sim.OpNot:    KindNot,
	sim.OpCustom: KindCustom,
}

// NewElement allocates a detached element with the default box and no gates.
// Boundary kinds are built with [Scene.NewBoundary].
func (s *Scene) NewElement(kind Kind, id uint64, name string) (*Element, error) {
	if kind < KindAnd || kind > KindComposite {
		return nil, errs.New(errs.ErrCodeInvalidInput, "invalid element kind %d", int(kind))
	}
	if kind.IsBoundary() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s boundaries are built with NewBoundary", kind)
	}
	if err := errs.ValidateName(name); err != nil {
		return nil, err
	}
	return s.newElement(kind, id, name), nil
}

// NewComposite allocates a detached, empty composite element.
func (s *Scene) NewComposite(id uint64, name string) (*Element, error) {
	return s.NewElement(KindComposite, id, name)
}

// NewBoundary allocates a detached input or output boundary. An input
// boundary has one inner output gate driving the composite's interior and one
// outer input gate; an output boundary is the mirror image. The outer gate
// joins the enclosing composite's pins when the boundary is added inside one.
func (s *Scene) NewBoundary(kind Kind, id uint64, name string, width int) (*Element, error) {
	if !kind.IsBoundary() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s is not a boundary kind", kind)
	}
	if err := errs.ValidateName(name); err != nil {
		return nil, err
	}
	if err := errs.ValidateBitWidth(width); err != nil {
		return nil, err
	}
	el := s.newElement(kind, id, name)
	innerDir, outerDir := Out, In
	if kind == KindOutput {
		innerDir, outerDir = In, Out
	}
	inner := s.newGate(el, innerDir, id, width)
	if innerDir == Out {
		el.outputs = []*Gate{inner}
	} else {
		el.inputs = []*Gate{inner}
	}
	el.outer = s.newGate(el, outerDir, id, width)
	el.Relayout()
	return el, nil
}

// NewInput appends an input gate with the given pin id to el and re-spaces
// el's gates.
func (s *Scene) NewInput(el *Element, pinID uint64, width int) (*Gate, error) {
	return s.addPin(el, In, pinID, width)
}

// NewOutput appends an output gate with the given pin id to el and re-spaces
// el's gates.
func (s *Scene) NewOutput(el *Element, pinID uint64, width int) (*Gate, error) {
	return s.addPin(el, Out, pinID, width)
}

func (s *Scene) addPin(el *Element, dir GateDir, pinID uint64, width int) (*Gate, error) {
	if !s.ownsElement(el) {
		return nil, errs.New(errs.ErrCodeInvalidTarget, "element was not allocated by this scene")
	}
	if el.kind.IsBoundary() || el.kind == KindComposite {
		return nil, errs.New(errs.ErrCodeInvalidTarget, "%s pins come from its structure, not NewInput/NewOutput", el.kind)
	}
	if err := errs.ValidateBitWidth(width); err != nil {
		return nil, err
	}
	g := s.newGate(el, dir, pinID, width)
	if dir == In {
		el.inputs = append(el.inputs, g)
	} else {
		el.outputs = append(el.outputs, g)
	}
	el.Relayout()
	return g, nil
}

// Build allocates a detached element for a simulated element: one gate per
// pin, in pin order, with the pin ids as gate ids. Inputs are spaced evenly
// down the left edge of the default box and outputs down the right edge.
func (s *Scene) Build(d sim.Descriptor) (*Element, error) {
	kind, ok := opKinds[d.Op()]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unsupported op %s", d.Op())
	}
	if d.Inputs() < 0 || d.Outputs() < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "element %d has a negative pin count", d.ID())
	}
	if err := errs.ValidateName(d.Name()); err != nil {
		return nil, err
	}
	el := s.newElement(kind, d.ID(), d.Name())
	for i := range d.Inputs() {
		el.inputs = append(el.inputs, s.newGate(el, In, d.InputID(i), s.layout.BitWidth))
	}
	for i := range d.Outputs() {
		el.outputs = append(el.outputs, s.newGate(el, Out, d.OutputID(i), s.layout.BitWidth))
	}
	el.Relayout()
	return el, nil
}

// BoundaryWidth returns the bit-width of a boundary element's inner gate, the
// value shown as its bits property.
func (e *Element) BoundaryWidth() (int, error) {
	g, err := e.Inner()
	if err != nil {
		return 0, err
	}
	return g.bitWidth, nil
}

// SetBoundaryWidth sets the bit-width of a boundary's inner gate and of the
// pin it exposes on its composite. Connection validity is not updated.
func (e *Element) SetBoundaryWidth(width int) error {
	g, err := e.Inner()
	if err != nil {
		return err
	}
	if err := g.SetBitWidth(width); err != nil {
		return err
	}
	if e.outer != nil {
		e.outer.bitWidth = width
	}
	return nil
}

func (s *Scene) newElement(kind Kind, id uint64, name string) *Element {
	el := &Element{
		Entity: Entity{
			Name: name,
			W:    s.layout.ElementWidth,
			H:    s.layout.ElementHeight,
			id:   id,
		},
		kind: kind,
		dir:  geom.Right,
	}
	el.key = s.alloc()
	s.elements[el.key] = el
	return el
}

func (s *Scene) newGate(owner *Element, dir GateDir, id uint64, width int) *Gate {
	g := &Gate{
		Entity: Entity{
			W:  s.layout.GateWidth,
			H:  s.layout.GateHeight,
			id: id,
		},
		dir:      dir,
		bitWidth: width,
	}
	g.key = s.alloc()
	g.parent = owner.key
	s.gates[g.key] = g
	return g
}
