package view

import (
	"testing"

	"github.com/matzehuels/logicview/pkg/observability"
	"github.com/matzehuels/logicview/pkg/sim"
)

// place builds a primitive with the given pins, positions it and adds it to
// the current scope.
func place(t *testing.T, s *Scene, op sim.Op, id uint64, ins, outs, x, y int) *Element {
	t.Helper()
	el, err := s.Build(sim.NewPrimitive(op, id, "", ins, outs, sim.NewAllocator(id*100)))
	if err != nil {
		t.Fatalf("Build(%d) error = %v", id, err)
	}
	el.X, el.Y = x, y
	if err := s.Add(el); err != nil {
		t.Fatalf("Add(%d) error = %v", id, err)
	}
	return el
}

func in(t *testing.T, el *Element, i int) *Gate {
	t.Helper()
	g, err := el.Input(i)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func out(t *testing.T, el *Element, i int) *Gate {
	t.Helper()
	g, err := el.Output(i)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// checkSymmetry verifies every connection is registered exactly once with
// each endpoint and that no gate lists a connection the scene does not hold.
func checkSymmetry(t *testing.T, s *Scene) {
	t.Helper()
	for k, c := range s.conns {
		for _, end := range []Key{c.out, c.in} {
			g, ok := s.gates[end]
			if !ok {
				t.Errorf("connection %d references missing gate %d", k, end)
				continue
			}
			n := 0
			for _, ck := range g.conns {
				if ck == k {
					n++
				}
			}
			if n != 1 {
				t.Errorf("connection %d registered %d times on gate %d, want 1", k, n, end)
			}
		}
	}
	for gk, g := range s.gates {
		for _, ck := range g.conns {
			c, ok := s.conns[ck]
			if !ok {
				t.Errorf("gate %d lists dangling connection %d", gk, ck)
				continue
			}
			if c.out != gk && c.in != gk {
				t.Errorf("gate %d lists connection %d it is not an endpoint of", gk, ck)
			}
		}
	}
}

func childIDs(els []*Element) []uint64 {
	ids := make([]uint64, len(els))
	for i, el := range els {
		ids[i] = el.ID()
	}
	return ids
}

type recordingHooks struct {
	observability.NoopSceneHooks
	added, replaced, removed int
	ties, invalidTies        int
	untied                   int
	depths                   []int
	rejected                 []string
}

func (h *recordingHooks) OnElementAdded(_ string, replaced bool) {
	h.added++
	if replaced {
		h.replaced++
	}
}

func (h *recordingHooks) OnElementRemoved(string) { h.removed++ }

func (h *recordingHooks) OnTie(valid bool) {
	h.ties++
	if !valid {
		h.invalidTies++
	}
}

func (h *recordingHooks) OnUntie(n int)            { h.untied += n }
func (h *recordingHooks) OnScopeChanged(depth int) { h.depths = append(h.depths, depth) }
func (h *recordingHooks) OnRejected(op, code string) {
	h.rejected = append(h.rejected, op+":"+code)
}
