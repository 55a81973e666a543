package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/logicview/internal/config"
	"github.com/matzehuels/logicview/pkg/geom"
	"github.com/matzehuels/logicview/pkg/sim"
	"github.com/matzehuels/logicview/pkg/view"
)

var specialKeys = map[string]tea.KeyType{
	"enter":      tea.KeyEnter,
	"esc":        tea.KeyEsc,
	"up":         tea.KeyUp,
	"down":       tea.KeyDown,
	"left":       tea.KeyLeft,
	"right":      tea.KeyRight,
	"ctrl+up":    tea.KeyCtrlUp,
	"ctrl+down":  tea.KeyCtrlDown,
	"ctrl+left":  tea.KeyCtrlLeft,
	"ctrl+right": tea.KeyCtrlRight,
	"ctrl+c":     tea.KeyCtrlC,
	"delete":     tea.KeyDelete,
}

func keyMsg(k string) tea.KeyMsg {
	if t, ok := specialKeys[k]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends each key in order; "right*3" repeats a key.
func press(e *editor, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		n := 1
		if name, count, ok := strings.Cut(k, "*"); ok {
			k = name
			n = 0
			for _, r := range count {
				n = n*10 + int(r-'0')
			}
		}
		for range n {
			_, cmd = e.Update(keyMsg(k))
		}
	}
	return cmd
}

func newTestEditor() (*editor, *sim.Recorder) {
	rec := &sim.Recorder{}
	return newEditor(view.NewScene(), rec, config.Default().Editor, nil), rec
}

func TestEditorPlace(t *testing.T) {
	e, rec := newTestEditor()

	press(e, "a")
	if e.mode != modeCreate || e.pending == nil {
		t.Fatalf("mode = %v, want create with a pending element", e.mode)
	}
	press(e, "right*2", "ctrl+right", "enter")

	if e.mode != modeNormal {
		t.Errorf("mode = %v, want normal", e.mode)
	}
	children := e.scene.Children()
	if len(children) != 1 {
		t.Fatalf("children = %d, want 1", len(children))
	}
	el := children[0]
	if el.ID() != 1 || el.Kind() != view.KindAnd || el.X != 20 || el.Dir() != geom.Down {
		t.Errorf("placed %s %d at %d facing %v, want and 1 at 20 facing down", el.Kind(), el.ID(), el.X, el.Dir())
	}
	if el.State != view.StateNormal {
		t.Errorf("State = %v, want normal", el.State)
	}
	if got := rec.Count(sim.EventAddElement); got != 1 {
		t.Errorf("AddElement events = %d, want 1", got)
	}
	if e.nextID != 2 {
		t.Errorf("nextID = %d, want 2", e.nextID)
	}
}

func TestEditorCancelCreate(t *testing.T) {
	e, rec := newTestEditor()
	press(e, "n", "esc")
	if len(e.scene.Children()) != 0 || e.pending != nil || e.mode != modeNormal {
		t.Errorf("after esc: %d children, pending %v, mode %v", len(e.scene.Children()), e.pending, e.mode)
	}
	if rec.Count(sim.EventAddElement) != 0 {
		t.Error("cancelled element was reported to the engine")
	}
}

func TestEditorWire(t *testing.T) {
	e, rec := newTestEditor()
	// Two inverters at x=0 and x=200; wire out0 of the first to in0 of the second.
	press(e, "n", "enter", "right*20", "n", "enter")
	press(e, "left*10", "down*3", "w")
	if e.mode != modeConnect {
		t.Fatalf("mode = %v, want connect (status %q)", e.mode, e.status)
	}
	press(e, "right*10", "enter")

	conns := e.scene.ConnectionsInScope()
	if len(conns) != 1 || !conns[0].Valid() {
		t.Fatalf("connections = %d, want one valid (status %q)", len(conns), e.status)
	}
	if got := rec.Count(sim.EventConnect); got != 1 {
		t.Errorf("ConnectGates events = %d, want 1", got)
	}
	if !strings.Contains(e.status, "1.out0") || !strings.Contains(e.status, "2.in0") {
		t.Errorf("status = %q", e.status)
	}
}

func TestEditorSelectMoveKeepsWires(t *testing.T) {
	e, _ := newTestEditor()
	press(e, "n", "enter", "right*20", "n", "enter")
	press(e, "left*10", "down*3", "w", "right*10", "enter")

	press(e, "left*20", "up*3", "enter")
	if e.mode != modeSelect {
		t.Fatalf("mode = %v, want select (status %q)", e.mode, e.status)
	}
	press(e, "down", "ctrl+left", "enter")

	el, err := e.scene.FindByID(1)
	if err != nil {
		t.Fatal(err)
	}
	if el.Y != 10 || el.Dir() != geom.Up {
		t.Errorf("element 1 at y=%d facing %v, want y=10 facing up", el.Y, el.Dir())
	}
	if got := len(e.scene.ConnectionsInScope()); got != 1 {
		t.Errorf("connections = %d, want 1", got)
	}
}

func TestEditorSelectCancel(t *testing.T) {
	e, _ := newTestEditor()
	press(e, "a", "enter", "enter", "down*2", "esc")
	el, _ := e.scene.FindByID(1)
	if el.Y != 0 || e.pending != nil {
		t.Errorf("cancelled move changed element: y=%d pending=%v", el.Y, e.pending)
	}
}

func TestEditorSelectCancelKeepsEdits(t *testing.T) {
	t.Run("rotate", func(t *testing.T) {
		e, _ := newTestEditor()
		press(e, "a", "enter", "s", "ctrl+right", "esc")
		el, _ := e.scene.FindByID(1)
		if el.Dir() != geom.Right {
			t.Errorf("Dir() = %v after esc, want right", el.Dir())
		}
		if g, _ := el.Input(0); g.Pos() != (geom.Point{X: 0, Y: 15}) {
			t.Errorf("in0 at %v after esc, want (0, 15)", g.Pos())
		}
	})
	t.Run("bits", func(t *testing.T) {
		e, _ := newTestEditor()
		press(e, "I", "enter", "s", "+", "esc")
		el, _ := e.scene.FindByID(1)
		if w, _ := el.BoundaryWidth(); w != 1 {
			t.Errorf("BoundaryWidth() = %d after esc, want 1", w)
		}
	})
}

func TestEditorDelete(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{"normal", []string{"x"}},
		{"delete key", []string{"delete"}},
		{"from select", []string{"enter", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor()
			press(e, "o", "enter")
			press(e, tt.keys...)
			if got := len(e.scene.Children()); got != 0 {
				t.Errorf("children = %d, want 0", got)
			}
			if e.mode != modeNormal {
				t.Errorf("mode = %v, want normal", e.mode)
			}
		})
	}
}

func TestEditorComposite(t *testing.T) {
	e, _ := newTestEditor()
	press(e, "c", "enter", "i")
	if e.scene.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1 (status %q)", e.scene.Depth(), e.status)
	}
	press(e, "I", "enter", "down*10", "O", "enter", "u")
	if !e.scene.IsGlobal() {
		t.Fatal("u did not return to the global scope")
	}
	comp, err := e.scene.FindByID(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(comp.Inputs()) != 1 || len(comp.Outputs()) != 1 {
		t.Errorf("composite pins = %d in, %d out, want 1, 1", len(comp.Inputs()), len(comp.Outputs()))
	}
	if len(comp.Children()) != 2 {
		t.Errorf("composite children = %d, want 2", len(comp.Children()))
	}

	press(e, "up*10", "i")
	if e.scene.Depth() != 1 {
		t.Fatalf("Depth() = %d after re-entering, want 1", e.scene.Depth())
	}
	press(e, "g")
	if !e.scene.IsGlobal() {
		t.Error("g did not return to the global scope")
	}
}

func TestEditorEnterPrimitive(t *testing.T) {
	e, _ := newTestEditor()
	press(e, "a", "enter", "i")
	if !e.failed || !e.scene.IsGlobal() {
		t.Errorf("entering a primitive: failed=%v global=%v", e.failed, e.scene.IsGlobal())
	}
}

func TestEditorBits(t *testing.T) {
	e, _ := newTestEditor()
	press(e, "I", "enter")
	el, _ := e.scene.FindByID(1)

	press(e, "+", "+")
	if w, _ := el.BoundaryWidth(); w != 3 {
		t.Errorf("BoundaryWidth() = %d, want 3", w)
	}
	press(e, "-", "-", "-")
	if w, _ := el.BoundaryWidth(); w != 1 {
		t.Errorf("BoundaryWidth() = %d, want 1", w)
	}
	if !e.failed {
		t.Error("width 0 accepted")
	}

	press(e, "a", "enter", "+")
	if !e.failed {
		t.Error("bits on a primitive accepted")
	}
}

func TestEditorPan(t *testing.T) {
	e, _ := newTestEditor()
	press(e, "ctrl+right", "ctrl+down")
	if e.pan != (geom.Point{X: 200, Y: 120}) || e.cursor != e.pan {
		t.Errorf("pan = %v cursor = %v, want both 200,120", e.pan, e.cursor)
	}
	press(e, "ctrl+left", "ctrl+up")
	if e.pan != (geom.Point{}) {
		t.Errorf("pan = %v, want origin", e.pan)
	}
}

func TestEditorFailures(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"wire from nothing", []string{"w"}, "no gate under the cursor"},
		{"select nothing", []string{"enter"}, "nothing under the cursor"},
		{"same direction", []string{"a", "enter", "down*2", "w", "down*3", "enter"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor()
			press(e, tt.keys...)
			if !e.failed {
				t.Fatalf("failed = false, status %q", e.status)
			}
			if tt.want != "" && e.status != tt.want {
				t.Errorf("status = %q, want %q", e.status, tt.want)
			}
			if e.mode != modeNormal {
				t.Errorf("mode = %v, want normal", e.mode)
			}
		})
	}
}

func TestEditorView(t *testing.T) {
	e, _ := newTestEditor()
	e.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	press(e, "a", "enter")

	out := e.View()
	for _, want := range []string{"normal", "root", "Properties", "and 1", "depth 0, 1 elements", "extent 100x60 at 0,0"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	if cmd := press(e, "q"); cmd == nil {
		t.Error("q returned no command")
	}
	if e.View() != "" {
		t.Error("View() after quit is not empty")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{25, 10, 2},
		{-5, 10, -1},
		{-10, 10, -1},
		{-11, 10, -2},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
