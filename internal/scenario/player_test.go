package scenario

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
	"github.com/matzehuels/logicview/pkg/netlist"
	"github.com/matzehuels/logicview/pkg/observability"
	"github.com/matzehuels/logicview/pkg/sim"
	"github.com/matzehuels/logicview/pkg/view"
)

func newPlayer(t *testing.T) (*Player, *sim.Recorder) {
	t.Helper()
	rec := &sim.Recorder{}
	p := NewPlayer(view.NewScene(), 1000)
	p.Notifier = rec
	return p, rec
}

func mustParse(t *testing.T, doc string) *Scenario {
	t.Helper()
	sc, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return sc
}

func TestRunHalfAdder(t *testing.T) {
	sc, err := Load("../../examples/half_adder.toml")
	if err != nil {
		t.Fatal(err)
	}
	p, rec := newPlayer(t)
	res, err := p.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Applied != len(sc.Steps) {
		t.Errorf("Applied = %d, want %d", res.Applied, len(sc.Steps))
	}
	if res.Placed != 13 || res.Tied != 13 || res.Invalid != 0 {
		t.Errorf("Result = %+v, want 13 placed, 13 tied, 0 invalid", res)
	}
	if got := rec.Count(sim.EventAddElement); got != 4 {
		t.Errorf("AddElement events = %d, want 4", got)
	}
	if got := rec.Count(sim.EventConnect); got != 13 {
		t.Errorf("ConnectGates events = %d, want 13", got)
	}

	s := p.Scene
	if !s.IsGlobal() {
		t.Fatalf("scope = %d, want global", s.Scope().ID())
	}
	if got := len(netlist.Nets(s)); got != 4 {
		t.Errorf("global nets = %d, want 4", got)
	}

	adder, err := s.FindByID(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(adder.Inputs()) != 2 || len(adder.Outputs()) != 2 {
		t.Errorf("adder pins = %d in, %d out, want 2, 2", len(adder.Inputs()), len(adder.Outputs()))
	}
	if err := s.Enter(10); err != nil {
		t.Fatal(err)
	}
	if got := len(netlist.Nets(s)); got != 6 {
		t.Errorf("adder nets = %d, want 6", got)
	}
	if _, err := netlist.Order(s); err != nil {
		t.Errorf("Order() error = %v", err)
	}
}

func TestRunBusMismatch(t *testing.T) {
	sc, err := Load("../../examples/bus_mismatch.toml")
	if err != nil {
		t.Fatal(err)
	}
	p, rec := newPlayer(t)
	res, err := p.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Invalid != 1 {
		t.Errorf("Invalid = %d, want 1", res.Invalid)
	}
	if got := rec.Count(sim.EventAddElement); got != 0 {
		t.Errorf("AddElement events = %d, want 0 for boundaries", got)
	}
	sink, err := p.Scene.FindByID(2)
	if err != nil {
		t.Fatal(err)
	}
	if sink.Dir() != geom.Left {
		t.Errorf("Dir() = %v, want left", sink.Dir())
	}
	if sink.State != view.StateSelected {
		t.Errorf("State = %v, want selected", sink.State)
	}
	if w, _ := sink.BoundaryWidth(); w != 8 {
		t.Errorf("BoundaryWidth() = %d, want 8", w)
	}
	conns := p.Scene.ConnectionsInScope()
	if len(conns) != 1 || !conns[0].Valid() {
		t.Errorf("connections after widening = %d, want one valid", len(conns))
	}
}

func TestRunEditsKeepConnections(t *testing.T) {
	p, _ := newPlayer(t)
	sc := mustParse(t, `
[[step]]
op = "place"
kind = "not"
id = 1

[[step]]
op = "place"
kind = "not"
id = 2
x = 200

[[step]]
op = "tie"
from = "1.out0"
to = "2.in0"

[[step]]
op = "move"
id = 2
x = 300
y = 40

[[step]]
op = "rotate"
id = 1
dir = "down"

[[step]]
op = "name"
id = 2
name = "inverter"
`)
	if _, err := p.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	s := p.Scene
	if got := len(s.Children()); got != 2 {
		t.Fatalf("children = %d, want 2", got)
	}
	b, _ := s.FindByID(2)
	if b.X != 300 || b.Y != 40 || b.Name != "inverter" {
		t.Errorf("element 2 = (%d,%d) %q, want (300,40) inverter", b.X, b.Y, b.Name)
	}
	a, _ := s.FindByID(1)
	if a.Dir() != geom.Down {
		t.Errorf("element 1 Dir() = %v, want down", a.Dir())
	}
	if got := len(s.ConnectionsInScope()); got != 1 {
		t.Errorf("connections = %d, want 1", got)
	}
}

func TestRunForce(t *testing.T) {
	p, _ := newPlayer(t)
	sc := mustParse(t, `
[[step]]
op = "place"
kind = "input"
id = 1
width = 8

[[step]]
op = "place"
kind = "output"
id = 2
width = 1

[[step]]
op = "tie"
from = "1.out0"
to = "2.in0"
force = true
`)
	if _, err := p.Run(context.Background(), sc); err != nil {
		t.Fatal(err)
	}
	c := p.Scene.ConnectionsInScope()[0]
	if !c.Valid() {
		t.Error("forced connection Valid() = false")
	}
	if p.Scene.CheckValid(c) {
		t.Error("CheckValid() = true for 8 -> 1 bits")
	}
}

func TestRunStopsAtFailure(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		applied int
		code    errs.Code
	}{
		{
			name:    "missing element",
			doc:     "[[step]]\nop = \"place\"\nkind = \"and\"\nid = 1\n[[step]]\nop = \"remove\"\nid = 9\n[[step]]\nop = \"exit\"",
			applied: 1,
			code:    errs.ErrCodeNotFound,
		},
		{
			name:    "same direction",
			doc:     "[[step]]\nop = \"place\"\nkind = \"and\"\nid = 1\n[[step]]\nop = \"place\"\nkind = \"and\"\nid = 2\n[[step]]\nop = \"tie\"\nfrom = \"1.in0\"\nto = \"2.in1\"",
			applied: 2,
			code:    errs.ErrCodeDirectionMismatch,
		},
		{
			name:    "pin past the end",
			doc:     "[[step]]\nop = \"place\"\nkind = \"not\"\nid = 1\n[[step]]\nop = \"untie\"\ngate = \"1.in1\"",
			applied: 1,
			code:    errs.ErrCodeIndexOutOfRange,
		},
		{
			name:    "enter primitive",
			doc:     "[[step]]\nop = \"place\"\nkind = \"or\"\nid = 1\n[[step]]\nop = \"enter\"\nid = 1",
			applied: 1,
			code:    errs.ErrCodeInvalidTarget,
		},
		{
			name:    "width on primitive",
			doc:     "[[step]]\nop = \"place\"\nkind = \"or\"\nid = 1\n[[step]]\nop = \"width\"\nid = 1\nwidth = 4",
			applied: 1,
			code:    errs.ErrCodeInvalidTarget,
		},
		{
			name:    "bad direction",
			doc:     "[[step]]\nop = \"place\"\nkind = \"or\"\nid = 1\n[[step]]\nop = \"rotate\"\nid = 1\ndir = \"sideways\"",
			applied: 1,
			code:    errs.ErrCodeInvalidFormat,
		},
		{
			name:    "bad kind",
			doc:     "[[step]]\nop = \"place\"\nkind = \"xor\"\nid = 1",
			applied: 0,
			code:    errs.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPlayer(t)
			res, err := p.Run(context.Background(), mustParse(t, tt.doc))
			if err == nil {
				t.Fatal("Run() error = nil")
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", errs.GetCode(err), tt.code, err)
			}
			if !strings.HasPrefix(err.Error(), "step ") {
				t.Errorf("error = %q, want step prefix", err)
			}
			if res.Applied != tt.applied {
				t.Errorf("Applied = %d, want %d", res.Applied, tt.applied)
			}
		})
	}
}

func TestRunRejectedRotateLeavesOriginal(t *testing.T) {
	p, _ := newPlayer(t)
	sc := mustParse(t, "[[step]]\nop = \"place\"\nkind = \"and\"\nid = 1\nx = 5")
	if _, err := p.Run(context.Background(), sc); err != nil {
		t.Fatal(err)
	}
	before, _ := p.Scene.FindByID(1)
	if err := p.Apply(Step{Op: OpRotate, ID: 1, Dir: "nowhere"}, nil); err == nil {
		t.Fatal("Apply(rotate nowhere) error = nil")
	}
	after, _ := p.Scene.FindByID(1)
	if after != before {
		t.Error("element replaced by a failed rotate")
	}
	if after.Dir() != geom.Right {
		t.Errorf("Dir() = %v, want right", after.Dir())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _ := newPlayer(t)
	res, err := p.Run(ctx, mustParse(t, "[[step]]\nop = \"exit\""))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if res.Applied != 0 {
		t.Errorf("Applied = %d, want 0", res.Applied)
	}
}

func TestRunNavigation(t *testing.T) {
	p, _ := newPlayer(t)
	sc := mustParse(t, `
[[step]]
op = "place"
kind = "composite"
id = 1

[[step]]
op = "enter"
id = 1

[[step]]
op = "place"
kind = "composite"
id = 2

[[step]]
op = "enter"
id = 2

[[step]]
op = "place"
kind = "and"
id = 3
`)
	if _, err := p.Run(context.Background(), sc); err != nil {
		t.Fatal(err)
	}
	if got := p.Scene.Depth(); got != 2 {
		t.Errorf("Depth() = %d, want 2", got)
	}
	if err := p.Apply(Step{Op: OpExit}, nil); err != nil {
		t.Fatal(err)
	}
	if got := p.Scene.Scope().ID(); got != 1 {
		t.Errorf("scope after exit = %d, want 1", got)
	}
	if err := p.Apply(Step{Op: OpRoot}, nil); err != nil {
		t.Fatal(err)
	}
	if !p.Scene.IsGlobal() {
		t.Error("root did not return to global scope")
	}
}

type stepHooks struct {
	observability.NoopReplayHooks
	ops    []string
	failed int
}

func (h *stepHooks) OnStep(op string, _ time.Duration, err error) {
	h.ops = append(h.ops, op)
	if err != nil {
		h.failed++
	}
}

func TestRunReplayHooks(t *testing.T) {
	h := &stepHooks{}
	observability.SetReplayHooks(h)
	t.Cleanup(observability.Reset)

	p, _ := newPlayer(t)
	sc := mustParse(t, "[[step]]\nop = \"place\"\nkind = \"not\"\nid = 1\n[[step]]\nop = \"remove\"\nid = 2")
	if _, err := p.Run(context.Background(), sc); err == nil {
		t.Fatal("Run() error = nil")
	}
	if strings.Join(h.ops, ",") != "place,remove" || h.failed != 1 {
		t.Errorf("hooks saw %v with %d failures", h.ops, h.failed)
	}
}
