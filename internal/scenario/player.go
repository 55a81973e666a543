package scenario

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
	"github.com/matzehuels/logicview/pkg/observability"
	"github.com/matzehuels/logicview/pkg/sim"
	"github.com/matzehuels/logicview/pkg/view"
)

// Player applies scenario steps to a scene.
type Player struct {
	Scene    *view.Scene
	Notifier sim.Notifier
	Alloc    *sim.Allocator
	Logger   *log.Logger
}

// Result summarizes a replay.
type Result struct {
	Applied  int           // Steps that completed
	Placed   int           // Elements committed by place steps
	Tied     int           // Connections created
	Invalid  int           // Invalid connections found by check steps
	Duration time.Duration // Wall time of the replay
}

// NewPlayer returns a player for s with a no-op notifier, a pin allocator
// starting at base and a discarding logger. Callers may replace any field.
func NewPlayer(s *view.Scene, base uint64) *Player {
	return &Player{
		Scene:    s,
		Notifier: sim.Nop{},
		Alloc:    sim.NewAllocator(base),
		Logger:   log.New(io.Discard),
	}
}

// Run applies every step in order. It stops at the first failing step; steps
// before it stay applied. Cancelling ctx stops the replay between steps.
func (p *Player) Run(ctx context.Context, sc *Scenario) (Result, error) {
	var res Result
	start := time.Now()

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		t := time.Now()
		err := p.Apply(st, &res)
		observability.Replay().OnStep(string(st.Op), time.Since(t), err)
		if err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("step %d (%s): %w", i+1, st, err)
		}
		res.Applied++
		p.Logger.Debug("step", "n", i+1, "op", st.Op, "scope", p.Scene.Scope().ID(), "depth", p.Scene.Depth())
	}
	res.Duration = time.Since(start)
	return res, nil
}

// Apply performs a single step. res may be nil.
func (p *Player) Apply(st Step, res *Result) error {
	if res == nil {
		res = &Result{}
	}
	if err := st.validate(); err != nil {
		return err
	}
	switch st.Op {
	case OpPlace:
		if err := p.place(st); err != nil {
			return err
		}
		res.Placed++
		return nil
	case OpMove:
		return p.edit(st.ID, func(el *view.Element) error {
			el.X, el.Y = st.X, st.Y
			return nil
		})
	case OpRotate:
		d, err := geom.ParseDirection(st.Dir)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "rotate %d", st.ID)
		}
		return p.edit(st.ID, func(el *view.Element) error { return el.Rotate(d) })
	case OpName:
		if err := errs.ValidateName(st.Name); err != nil {
			return err
		}
		return p.edit(st.ID, func(el *view.Element) error {
			el.Name = st.Name
			return nil
		})
	case OpState:
		state, err := view.ParseState(st.State)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "state %d", st.ID)
		}
		el, err := p.Scene.FindByID(st.ID)
		if err != nil {
			return err
		}
		el.State = state
		return nil
	case OpTie:
		if err := p.tie(st); err != nil {
			return err
		}
		res.Tied++
		return nil
	case OpUntie:
		g, err := p.gate(st.Gate)
		if err != nil {
			return err
		}
		return p.Scene.UntieAll(g)
	case OpWidth:
		return p.width(st)
	case OpCheck:
		n, err := p.check(st)
		if err != nil {
			return err
		}
		res.Invalid += n
		return nil
	case OpRemove:
		return p.Scene.Remove(st.ID)
	case OpEnter:
		return p.Scene.Enter(st.ID)
	case OpExit:
		p.Scene.Exit()
		return nil
	case OpRoot:
		p.Scene.ResetToGlobal()
		return nil
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unknown op %q", st.Op)
}

func (p *Player) place(st Step) error {
	kind, err := view.ParseKind(st.Kind)
	if err != nil {
		return err
	}

	var (
		el *view.Element
		d  sim.Descriptor
	)
	switch {
	case kind == view.KindComposite:
		el, err = p.Scene.NewComposite(st.ID, st.Name)
	case kind.IsBoundary():
		width := st.Width
		if width == 0 {
			width = p.Scene.Layout().BitWidth
		}
		el, err = p.Scene.NewBoundary(kind, st.ID, st.Name, width)
	default:
		d, err = p.descriptor(kind, st)
		if err == nil {
			el, err = p.Scene.Build(d)
		}
	}
	if err != nil {
		return err
	}

	el.X, el.Y = st.X, st.Y
	if st.Dir != "" {
		dir, err := geom.ParseDirection(st.Dir)
		if err != nil {
			_ = p.Scene.Discard(el)
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "place %d", st.ID)
		}
		if err := el.Rotate(dir); err != nil {
			_ = p.Scene.Discard(el)
			return err
		}
	}
	if err := p.Scene.Add(el); err != nil {
		_ = p.Scene.Discard(el)
		return err
	}
	if d != nil {
		p.Notifier.AddElement(d)
	}
	p.Logger.Debug("placed", "id", el.ID(), "kind", el.Kind(), "scope", p.Scene.Scope().ID())
	return nil
}

func (p *Player) descriptor(kind view.Kind, st Step) (sim.Descriptor, error) {
	// Primitive kinds share their names with the engine's ops.
	op, err := sim.ParseOp(kind.String())
	if err != nil {
		return nil, err
	}
	ins, outs := sim.DefaultPins(op)
	if st.Inputs != nil {
		ins = *st.Inputs
	}
	if st.Outputs != nil {
		outs = *st.Outputs
	}
	if ins < 0 || outs < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "element %d has a negative pin count", st.ID)
	}
	return sim.NewPrimitive(op, st.ID, st.Name, ins, outs, p.Alloc), nil
}

// edit clones the element, lets fn change the copy and commits it in the
// original's place. The original stays put if fn or the commit fails.
func (p *Player) edit(id uint64, fn func(*view.Element) error) error {
	el, err := p.Scene.FindByID(id)
	if err != nil {
		return err
	}
	cp, err := p.Scene.Clone(el)
	if err != nil {
		return err
	}
	if err := fn(cp); err != nil {
		_ = p.Scene.Discard(cp)
		return err
	}
	if err := p.Scene.Add(cp); err != nil {
		_ = p.Scene.Discard(cp)
		return err
	}
	return nil
}

func (p *Player) gate(ref string) (*view.Gate, error) {
	r, err := ParseGateRef(ref)
	if err != nil {
		return nil, err
	}
	el, err := p.Scene.FindByID(r.Element)
	if err != nil {
		return nil, err
	}
	if r.Output {
		return el.Output(r.Index)
	}
	return el.Input(r.Index)
}

func (p *Player) tie(st Step) error {
	a, err := p.gate(st.From)
	if err != nil {
		return err
	}
	b, err := p.gate(st.To)
	if err != nil {
		return err
	}
	valid := st.Force || a.BitWidth() == b.BitWidth()
	c, err := p.Scene.Tie(a, b, valid)
	if err != nil {
		return err
	}
	out, _ := p.Scene.Gate(c.Out())
	in, _ := p.Scene.Gate(c.In())
	p.Notifier.ConnectGates(out.ID(), in.ID())
	p.Logger.Debug("tied", "from", st.From, "to", st.To, "valid", valid)
	return nil
}

func (p *Player) width(st Step) error {
	if st.Gate != "" {
		g, err := p.gate(st.Gate)
		if err != nil {
			return err
		}
		if err := g.SetBitWidth(st.Width); err != nil {
			return err
		}
		p.Scene.Revalidate(g)
		return nil
	}

	el, err := p.Scene.FindByID(st.ID)
	if err != nil {
		return err
	}
	if !el.Kind().IsBoundary() {
		return errs.New(errs.ErrCodeInvalidTarget, "element %d is a %s; set a gate width instead", st.ID, el.Kind())
	}
	if err := el.SetBoundaryWidth(st.Width); err != nil {
		return err
	}
	inner, _ := el.Inner()
	p.Scene.Revalidate(inner)
	if o := el.Outer(); o != nil {
		p.Scene.Revalidate(o)
	}
	return nil
}

// check recomputes validity for one gate, or for every connection in scope
// when no gate is named, and returns the number found invalid.
func (p *Player) check(st Step) (int, error) {
	if st.Gate != "" {
		g, err := p.gate(st.Gate)
		if err != nil {
			return 0, err
		}
		return p.Scene.Revalidate(g), nil
	}
	invalid := 0
	for _, c := range p.Scene.ConnectionsInScope() {
		if !p.Scene.CheckValid(c) {
			invalid++
		}
	}
	if invalid > 0 {
		p.Logger.Warn("invalid connections", "scope", p.Scene.Scope().ID(), "count", invalid)
	}
	return invalid, nil
}
