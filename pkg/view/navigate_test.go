package view

import (
	"slices"
	"testing"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
	"github.com/matzehuels/logicview/pkg/sim"
)

func TestScopeIsolation(t *testing.T) {
	s := NewScene()
	comp, _ := s.NewComposite(10, "c")
	_ = s.Add(comp)
	place(t, s, sim.OpAnd, 1, 2, 1, 0, 0)

	if err := s.Enter(10); err != nil {
		t.Fatal(err)
	}
	if s.Scope() != comp || s.IsGlobal() {
		t.Fatal("Enter should make the composite the current scope")
	}
	if _, err := s.FindByID(1); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Error("global children must not be visible inside a composite")
	}
	inner := place(t, s, sim.OpOr, 2, 2, 1, 0, 0)

	s.Exit()
	if !s.IsGlobal() {
		t.Fatal("Exit should return to the global root")
	}
	if _, err := s.FindByID(2); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Error("composite children must not be visible at the global root")
	}
	for _, el := range s.FindByPoint(10, 10) {
		if el == inner {
			t.Error("FindByPoint at the root returned an element of the composite")
		}
	}

	_ = s.Enter(10)
	if got, err := s.FindByID(2); err != nil || got != inner {
		t.Errorf("FindByID(2) inside = %v, %v", got, err)
	}
}

func TestExitReturnsToParent(t *testing.T) {
	s := NewScene()
	outer, _ := s.NewComposite(10, "outer")
	_ = s.Add(outer)
	_ = s.Enter(10)
	inner, _ := s.NewComposite(20, "inner")
	_ = s.Add(inner)
	_ = s.Enter(20)

	if s.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", s.Depth())
	}
	path := s.Path()
	if !slices.Equal(childIDs(path), []uint64{GlobalID, 10, 20}) {
		t.Errorf("Path() = %v, want [0 10 20]", childIDs(path))
	}

	s.Exit()
	if s.Scope() != outer {
		t.Errorf("Exit() from inner went to %d, want 10", s.Scope().ID())
	}
	s.Exit()
	s.Exit()
	if !s.IsGlobal() {
		t.Error("exiting past the root should stay at the root")
	}
	if s.Depth() != 0 {
		t.Errorf("Depth() = %d at root, want 0", s.Depth())
	}
}

func TestEnterRejects(t *testing.T) {
	s := NewScene()
	place(t, s, sim.OpNot, 1, 1, 1, 0, 0)

	tests := []struct {
		name string
		id   uint64
	}{
		{"missing", 42},
		{"not a composite", 1},
		{"the root itself", GlobalID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Enter(tt.id); !errs.Is(err, errs.ErrCodeInvalidTarget) {
				t.Errorf("Enter(%d) error = %v, want INVALID_TARGET", tt.id, err)
			}
			if !s.IsGlobal() {
				t.Error("rejected Enter must leave the scope unchanged")
			}
		})
	}
}

func TestSetScope(t *testing.T) {
	s := NewScene()
	outer, _ := s.NewComposite(10, "outer")
	_ = s.Add(outer)
	_ = s.Enter(10)
	inner, _ := s.NewComposite(20, "inner")
	_ = s.Add(inner)
	gate := place(t, s, sim.OpNot, 1, 1, 1, 0, 0)
	s.ResetToGlobal()

	if err := s.SetScope(inner); err != nil {
		t.Fatalf("SetScope(inner) error = %v", err)
	}
	if s.Scope() != inner || s.Depth() != 2 {
		t.Errorf("scope = %d depth %d, want 20 depth 2", s.Scope().ID(), s.Depth())
	}
	s.Exit()
	if s.Scope() != outer {
		t.Error("Exit after SetScope should go to the real parent")
	}

	detached, _ := s.NewComposite(30, "loose")
	tests := []struct {
		name string
		el   *Element
	}{
		{"not a composite", gate},
		{"detached composite", detached},
		{"foreign composite", NewScene().Global()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_ = s.SetScope(inner)
			if err := s.SetScope(tt.el); !errs.Is(err, errs.ErrCodeInvalidTarget) {
				t.Errorf("SetScope() error = %v, want INVALID_TARGET", err)
			}
			if !s.IsGlobal() {
				t.Error("invalid SetScope should reset to the global root")
			}
		})
	}

	_ = s.SetScope(inner)
	if err := s.SetScope(nil); err != nil || !s.IsGlobal() {
		t.Errorf("SetScope(nil) = %v, want global with no error", err)
	}
	if err := s.SetScope(s.Global()); err != nil || !s.IsGlobal() {
		t.Errorf("SetScope(global) = %v", err)
	}
}

func TestScopeAfterRemovingComposite(t *testing.T) {
	s := NewScene()
	comp, _ := s.NewComposite(10, "c")
	_ = s.Add(comp)
	_ = s.Remove(10)
	if err := s.SetScope(comp); !errs.Is(err, errs.ErrCodeInvalidTarget) {
		t.Errorf("SetScope(removed) error = %v, want INVALID_TARGET", err)
	}
}

func TestCompositeChildCoordinatesAreLocal(t *testing.T) {
	s := NewScene()
	comp, _ := s.NewComposite(10, "c")
	comp.X, comp.Y = 500, 500
	_ = s.Add(comp)
	_ = s.Enter(10)
	place(t, s, sim.OpNot, 1, 1, 1, 0, 0)

	if got := s.FindByRect(geom.Rect{X: 0, Y: 0, W: 10, H: 10}); len(got) != 1 {
		t.Errorf("child at local origin not found by local rect, got %d", len(got))
	}
}
