// Package sim defines the contracts between the view core and the logic
// simulation engine.
//
// The engine is an external collaborator. The view reads a [Descriptor] to lay
// out a new element's gates, and drivers send fire-and-forget [Notifier] calls
// once a gesture commits an element or a wire. Nothing here evaluates logic.
package sim

import (
	"fmt"
	"strings"
	"sync/atomic"

	errs "github.com/matzehuels/logicview/pkg/errors"
)

// Op is the logic operation a simulated element performs.
type Op int

const (
	OpCustom Op = iota
	OpAnd
	OpOr
	OpNot
)

var opNames = map[Op]string{
	OpCustom: "custom",
	OpAnd:    "and",
	OpOr:     "or",
	OpNot:    "not",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp parses an operation name such as "and" (case-insensitive).
func ParseOp(s string) (Op, error) {
	for op, name := range opNames {
		if strings.EqualFold(s, name) {
			return op, nil
		}
	}
	return OpCustom, errs.New(errs.ErrCodeInvalidInput, "unknown op %q", s)
}

// Descriptor is the read-only view of a simulated element: its id and the ids
// of its pins in pin order. Pin order matters; it is the order the engine
// evaluates inputs and exposes outputs.
type Descriptor interface {
	ID() uint64
	Name() string
	Op() Op
	Inputs() int
	Outputs() int
	InputID(i int) uint64
	OutputID(i int) uint64
}

// Notifier receives committed edits. Calls are fire-and-forget: the view does
// not wait for or interpret any response.
type Notifier interface {
	AddElement(d Descriptor)
	ConnectGates(a, b uint64)
}

// Allocator hands out engine-wide unique pin ids.
type Allocator struct {
	next atomic.Uint64
}

// NewAllocator returns an allocator whose first id is base.
func NewAllocator(base uint64) *Allocator {
	a := &Allocator{}
	a.next.Store(base)
	return a
}

// Next returns a fresh id.
func (a *Allocator) Next() uint64 {
	return a.next.Add(1) - 1
}

// Primitive is an in-process [Descriptor] for gate-level elements.
type Primitive struct {
	id   uint64
	name string
	op   Op
	ins  []uint64
	outs []uint64
}

// NewPrimitive builds a descriptor with ins input and outs output pins whose
// ids are drawn from alloc in pin order, inputs first.
func NewPrimitive(op Op, id uint64, name string, ins, outs int, alloc *Allocator) *Primitive {
	if name == "" {
		name = op.String()
	}
	p := &Primitive{
		id:   id,
		name: name,
		op:   op,
		ins:  make([]uint64, ins),
		outs: make([]uint64, outs),
	}
	for i := range p.ins {
		p.ins[i] = alloc.Next()
	}
	for i := range p.outs {
		p.outs[i] = alloc.Next()
	}
	return p
}

// DefaultPins returns the pin counts of the primitive gates: two inputs for
// AND/OR, one for NOT, one output each. Custom elements have no default.
func DefaultPins(op Op) (ins, outs int) {
	switch op {
	case OpAnd, OpOr:
		return 2, 1
	case OpNot:
		return 1, 1
	default:
		return 0, 0
	}
}

func (p *Primitive) ID() uint64 { return p.id }
func (p *Primitive) Name() string { return p.name }
func (p *Primitive) Op() Op { return p.op }
func (p *Primitive) Inputs() int { return len(p.ins) }
func (p *Primitive) Outputs() int { return len(p.outs) }

// InputID returns the id of input pin i. It panics if i is out of range, like
// a slice index; callers iterate up to [Primitive.Inputs].
func (p *Primitive) InputID(i int) uint64 { return p.ins[i] }

// OutputID returns the id of output pin i.
func (p *Primitive) OutputID(i int) uint64 { return p.outs[i] }
