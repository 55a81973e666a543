package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/logicview/internal/config"
	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
	"github.com/matzehuels/logicview/pkg/sim"
	"github.com/matzehuels/logicview/pkg/view"
)

var (
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorDim)
	modeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(colorCyan).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

const panelWidth = 28

// editorMode is what keystrokes currently act on.
type editorMode int

const (
	modeNormal  editorMode = iota // cursor movement, navigation
	modeCreate                    // a new element follows the cursor until committed
	modeSelect                    // an edited copy of an element follows the cursor
	modeConnect                   // a first gate is picked, waiting for the second
)

var modeNames = [...]string{"normal", "create", "select", "connect"}

func (m editorMode) String() string { return modeNames[m] }

var placeKeys = map[string]view.Kind{
	"a": view.KindAnd,
	"o": view.KindOr,
	"n": view.KindNot,
	"c": view.KindComposite,
	"I": view.KindInput,
	"O": view.KindOutput,
}

var kindOps = map[view.Kind]sim.Op{
	view.KindAnd: sim.OpAnd,
	view.KindOr:  sim.OpOr,
	view.KindNot: sim.OpNot,
}

// editor is the bubbletea model behind `logicview edit`. All scene mutations
// happen in Update, so the scene has one logical owner.
type editor struct {
	scene    *view.Scene
	notifier sim.Notifier
	alloc    *sim.Allocator
	logger   *log.Logger

	mode    editorMode
	cursor  geom.Point
	pan     geom.Point
	panStep geom.Point
	scale   int
	cols    int
	rows    int

	nextID  uint64
	pending *view.Element  // element being created, or the edited copy in select mode
	desc    sim.Descriptor // engine descriptor of a pending primitive
	from    *view.Gate     // first gate picked in connect mode

	status   string
	failed   bool
	quitting bool
}

func newEditor(scene *view.Scene, notifier sim.Notifier, cfg config.EditorConfig, logger *log.Logger) *editor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	scale := max(cfg.Scale, 1)
	return &editor{
		scene:    scene,
		notifier: notifier,
		alloc:    sim.NewAllocator(cfg.PinBase),
		logger:   logger,
		panStep:  geom.Point{X: cfg.PanX, Y: cfg.PanY},
		scale:    scale,
		cols:     60,
		rows:     20,
		nextID:   maxID(scene.Global()) + 1,
		status:   "press ? for keys",
	}
}

func maxID(el *view.Element) uint64 {
	m := el.ID()
	for _, c := range el.Children() {
		m = max(m, maxID(c))
	}
	return m
}

func (e *editor) Init() tea.Cmd { return nil }

func (e *editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.cols = max(msg.Width-panelWidth-6, 20)
		e.rows = max(msg.Height-6, 8)
		return e, nil
	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" || (key == "q" && e.mode == modeNormal) {
			e.cancelPending()
			e.quitting = true
			return e, tea.Quit
		}
		e.status, e.failed = "", false
		switch e.mode {
		case modeNormal:
			e.updateNormal(key)
		case modeCreate, modeSelect:
			e.updatePending(key)
		case modeConnect:
			e.updateConnect(key)
		}
	}
	return e, nil
}

func (e *editor) updateNormal(key string) {
	if e.moveCursor(key) {
		return
	}
	if kind, ok := placeKeys[key]; ok {
		e.beginCreate(kind)
		return
	}
	switch key {
	case "ctrl+up":
		e.panBy(0, -e.panStep.Y)
	case "ctrl+down":
		e.panBy(0, e.panStep.Y)
	case "ctrl+left":
		e.panBy(-e.panStep.X, 0)
	case "ctrl+right":
		e.panBy(e.panStep.X, 0)
	case "enter", "s":
		e.beginSelect()
	case "w":
		e.beginConnect()
	case "x", "delete":
		if el := e.elementAt(e.cursor); el != nil {
			e.remove(el.ID())
		}
	case "i":
		if el := e.elementAt(e.cursor); el != nil {
			e.enter(el.ID())
		}
	case "u":
		e.scene.Exit()
		e.setStatus("scope %s", scopeLabel(e.scene))
	case "g":
		e.scene.ResetToGlobal()
		e.setStatus("scope %s", scopeLabel(e.scene))
	case "+", "-":
		if el := e.elementAt(e.cursor); el != nil {
			e.bumpWidth(el, key)
		}
	case "?":
		e.setStatus("%s", helpText(modeNormal))
	}
}

func (e *editor) updatePending(key string) {
	switch key {
	case "up", "down", "left", "right", "h", "j", "k", "l":
		before := e.cursor
		e.moveCursor(key)
		p := e.pending.Pos().Add(e.cursor.Sub(before))
		e.pending.X, e.pending.Y = p.X, p.Y
	case "ctrl+left":
		e.rotatePending(e.pending.Dir().CCW())
	case "ctrl+right":
		e.rotatePending(e.pending.Dir().CW())
	case "+", "-":
		e.bumpWidth(e.pending, key)
	case "enter":
		e.commit()
	case "esc":
		e.cancelPending()
		e.mode = modeNormal
	case "x", "delete":
		if e.mode == modeSelect {
			id := e.pending.ID()
			e.cancelPending()
			e.mode = modeNormal
			e.remove(id)
		}
	case "i":
		if e.mode == modeSelect && e.pending.IsComposite() {
			id := e.pending.ID()
			e.cancelPending()
			e.mode = modeNormal
			e.enter(id)
		}
	}
}

func (e *editor) updateConnect(key string) {
	if e.moveCursor(key) {
		return
	}
	switch key {
	case "enter", "w":
		to := e.gateAt(e.cursor)
		if to == nil {
			e.fail(errs.New(errs.ErrCodeNotFound, "no gate under the cursor"))
			return
		}
		from := e.from
		e.from = nil
		e.mode = modeNormal
		c, err := e.scene.Tie(from, to, from.BitWidth() == to.BitWidth())
		if err != nil {
			e.fail(err)
			return
		}
		out, _ := e.scene.Gate(c.Out())
		in, _ := e.scene.Gate(c.In())
		e.notifier.ConnectGates(out.ID(), in.ID())
		e.logger.Debug("tied", "out", gateRef(e.scene, out), "in", gateRef(e.scene, in), "valid", c.Valid())
		if c.Valid() {
			e.setStatus("wired %s to %s", gateRef(e.scene, out), gateRef(e.scene, in))
		} else {
			e.setStatus("wired %s to %s (width mismatch)", gateRef(e.scene, out), gateRef(e.scene, in))
		}
	case "esc":
		e.from = nil
		e.mode = modeNormal
	}
}

func (e *editor) moveCursor(key string) bool {
	switch key {
	case "up", "k":
		e.cursor.Y -= e.scale
	case "down", "j":
		e.cursor.Y += e.scale
	case "left", "h":
		e.cursor.X -= e.scale
	case "right", "l":
		e.cursor.X += e.scale
	default:
		return false
	}
	return true
}

// panBy moves the viewport and the cursor with it.
func (e *editor) panBy(dx, dy int) {
	d := geom.Point{X: dx, Y: dy}
	e.pan = e.pan.Add(d)
	e.cursor = e.cursor.Add(d)
}

func (e *editor) beginCreate(kind view.Kind) {
	id := e.nextID
	var (
		el   *view.Element
		desc sim.Descriptor
		err  error
	)
	switch {
	case kind == view.KindComposite:
		el, err = e.scene.NewComposite(id, "")
	case kind.IsBoundary():
		el, err = e.scene.NewBoundary(kind, id, "", e.scene.Layout().BitWidth)
	default:
		op := kindOps[kind]
		ins, outs := sim.DefaultPins(op)
		desc = sim.NewPrimitive(op, id, "", ins, outs, e.alloc)
		el, err = e.scene.Build(desc)
	}
	if err != nil {
		e.fail(err)
		return
	}
	el.X, el.Y = e.cursor.X, e.cursor.Y
	el.State = view.StateCreating
	e.pending, e.desc = el, desc
	e.mode = modeCreate
	e.setStatus("placing %s %d", kind, id)
}

func (e *editor) beginSelect() {
	el := e.elementAt(e.cursor)
	if el == nil {
		e.fail(errs.New(errs.ErrCodeNotFound, "nothing under the cursor"))
		return
	}
	cp, err := e.scene.Clone(el)
	if err != nil {
		e.fail(err)
		return
	}
	cp.State = view.StateSelected
	e.pending = cp
	e.mode = modeSelect
	e.setStatus("selected %s %d", el.Kind(), el.ID())
}

func (e *editor) beginConnect() {
	g := e.gateAt(e.cursor)
	if g == nil {
		e.fail(errs.New(errs.ErrCodeNotFound, "no gate under the cursor"))
		return
	}
	e.from = g
	e.mode = modeConnect
	e.setStatus("wiring from %s", gateRef(e.scene, g))
}

func (e *editor) rotatePending(d geom.Direction) {
	if err := e.pending.Rotate(d); err != nil {
		e.fail(err)
		return
	}
	e.setStatus("facing %s", d)
}

func (e *editor) commit() {
	el := e.pending
	el.State = view.StateNormal
	if err := e.scene.Add(el); err != nil {
		e.fail(err)
		return
	}
	if e.mode == modeCreate {
		if e.desc != nil {
			e.notifier.AddElement(e.desc)
		}
		e.nextID++
		e.setStatus("placed %s %d", el.Kind(), el.ID())
	} else if invalid := e.revalidate(el); invalid > 0 {
		e.setStatus("updated %s %d, %d invalid wires", el.Kind(), el.ID(), invalid)
	} else {
		e.setStatus("updated %s %d", el.Kind(), el.ID())
	}
	e.logger.Debug("committed", "id", el.ID(), "kind", el.Kind(), "scope", e.scene.Scope().ID())
	e.pending, e.desc = nil, nil
	e.mode = modeNormal
}

func (e *editor) cancelPending() {
	if e.pending == nil {
		return
	}
	if err := e.scene.Discard(e.pending); err != nil {
		e.logger.Warn("discard pending element", "err", err)
	}
	e.pending, e.desc = nil, nil
}

func (e *editor) remove(id uint64) {
	if err := e.scene.Remove(id); err != nil {
		e.fail(err)
		return
	}
	e.logger.Debug("removed", "id", id, "scope", e.scene.Scope().ID())
	e.setStatus("removed %d", id)
}

func (e *editor) enter(id uint64) {
	if err := e.scene.Enter(id); err != nil {
		e.fail(err)
		return
	}
	e.cursor, e.pan = geom.Point{}, geom.Point{}
	e.setStatus("scope %s", scopeLabel(e.scene))
}

// bumpWidth steps a boundary's bus width. Wires are rechecked at once for a
// committed boundary and on commit for a selected copy.
func (e *editor) bumpWidth(el *view.Element, key string) {
	w, err := el.BoundaryWidth()
	if err != nil {
		e.fail(err)
		return
	}
	if key == "+" {
		w++
	} else {
		w--
	}
	if err := el.SetBoundaryWidth(w); err != nil {
		e.fail(err)
		return
	}
	if el == e.pending {
		e.setStatus("bits %d", w)
		return
	}
	if invalid := e.revalidate(el); invalid > 0 {
		e.setStatus("bits %d, %d invalid wires", w, invalid)
		return
	}
	e.setStatus("bits %d", w)
}

// revalidate rechecks the wires on every gate of a committed element,
// including a boundary's outer gate, and returns how many are invalid.
func (e *editor) revalidate(el *view.Element) int {
	invalid := 0
	for _, g := range el.Gates() {
		invalid += e.scene.Revalidate(g)
	}
	if o := el.Outer(); o != nil {
		invalid += e.scene.Revalidate(o)
	}
	return invalid
}

// elementAt returns the topmost child under p.
func (e *editor) elementAt(p geom.Point) *view.Element {
	hits := e.scene.FindByPoint(p.X, p.Y)
	if len(hits) == 0 {
		return nil
	}
	return hits[len(hits)-1]
}

// gateAt prefers a gate whose box starts under p, then one centred near p.
func (e *editor) gateAt(p geom.Point) *view.Gate {
	if gates := e.scene.FindGatesAt(p.X, p.Y); len(gates) > 0 {
		return gates[0]
	}
	for _, el := range e.scene.FindByPoint(p.X, p.Y) {
		if g := e.scene.HitGate(el, p.X, p.Y); g != nil {
			return g
		}
	}
	return nil
}

func (e *editor) setStatus(format string, args ...any) {
	e.status = fmt.Sprintf(format, args...)
}

func (e *editor) fail(err error) {
	e.status, e.failed = errs.UserMessage(err), true
	e.logger.Debug("rejected", "err", err)
}

// =============================================================================
// View
// =============================================================================

func (e *editor) View() string {
	if e.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleTitle.Render(appName) + "  " + modeStyle.Render(e.mode.String()) + "  " + StyleDim.Render(scopeLabel(e.scene)))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(e.canvas()),
		panelStyle.Width(panelWidth).Render(e.properties())))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText(e.mode)))
	b.WriteString("\n")
	if e.failed {
		b.WriteString(StyleError.Render(iconError + " " + e.status))
	} else {
		b.WriteString(StyleDim.Render(e.status))
	}
	return b.String()
}

func helpText(m editorMode) string {
	switch m {
	case modeCreate:
		return "arrows move  ctrl+←/→ rotate  +/- bits  enter place  esc cancel"
	case modeSelect:
		return "arrows move  ctrl+←/→ rotate  +/- bits  enter commit  x delete  i enter  esc cancel"
	case modeConnect:
		return "arrows move  enter/w wire to gate  esc cancel"
	default:
		return "a/o/n and/or/not  c composite  I/O pins  enter select  w wire  x delete  i/u in/out  g root  ctrl+arrows pan  q quit"
	}
}

// cell maps a canvas coordinate to a terminal cell.
func (e *editor) cell(x, y int) (int, int) {
	return floorDiv(x-e.pan.X, e.scale), floorDiv(y-e.pan.Y, e.scale)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func (e *editor) canvas() string {
	grid := make([][]rune, e.rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", e.cols))
	}
	put := func(cx, cy int, r rune) {
		if cy >= 0 && cy < e.rows && cx >= 0 && cx < e.cols {
			grid[cy][cx] = r
		}
	}

	draw := func(el *view.Element) {
		x0, y0 := e.cell(el.X, el.Y)
		x1, y1 := e.cell(el.X+el.W-1, el.Y+el.H-1)
		for x := x0; x <= x1; x++ {
			put(x, y0, '─')
			put(x, y1, '─')
		}
		for y := y0; y <= y1; y++ {
			put(x0, y, '│')
			put(x1, y, '│')
		}
		put(x0, y0, '┌')
		put(x1, y0, '┐')
		put(x0, y1, '└')
		put(x1, y1, '┘')
		label := []rune(displayLabel(el))
		for i, r := range label {
			if x0+1+i >= x1 {
				break
			}
			put(x0+1+i, y0+1, r)
		}
		for _, g := range el.Inputs() {
			gx, gy := e.cell(el.X+g.X, el.Y+g.Y)
			put(gx, gy, '○')
		}
		for _, g := range el.Outputs() {
			gx, gy := e.cell(el.X+g.X, el.Y+g.Y)
			put(gx, gy, '●')
		}
	}

	for _, el := range e.scene.Children() {
		if e.pending != nil && e.mode == modeSelect && el.ID() == e.pending.ID() {
			continue
		}
		draw(el)
	}
	if e.pending != nil {
		draw(e.pending)
	}
	cx, cy := e.cell(e.cursor.X, e.cursor.Y)
	put(cx, cy, '+')

	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

func displayLabel(el *view.Element) string {
	label := el.Kind().String()
	if el.Name != "" {
		label = el.Name
	}
	return label + " " + strconv.FormatUint(el.ID(), 10)
}

func (e *editor) properties() string {
	el := e.pending
	if el == nil {
		el = e.elementAt(e.cursor)
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Properties") + "\n")
	if el == nil {
		b.WriteString(StyleDim.Render("nothing under cursor") + "\n")
	} else {
		row := func(k, v string) {
			b.WriteString(StyleDim.Render(fmt.Sprintf("%-6s", k)) + " " + StyleValue.Render(v) + "\n")
		}
		row("name", el.Name)
		row("id", strconv.FormatUint(el.ID(), 10))
		row("kind", el.Kind().String())
		row("dir", el.Dir().String())
		row("x", strconv.Itoa(el.X))
		row("y", strconv.Itoa(el.Y))
		row("w", strconv.Itoa(el.W))
		row("h", strconv.Itoa(el.H))
		if w, err := el.BoundaryWidth(); err == nil {
			row("bits", strconv.Itoa(w))
		}
		row("pins", fmt.Sprintf("%d in, %d out", len(el.Inputs()), len(el.Outputs())))
		row("state", el.State.String())
	}

	conns := e.scene.ConnectionsInScope()
	invalid := 0
	for _, c := range conns {
		if !c.Valid() {
			invalid++
		}
	}
	b.WriteString("\n" + StyleTitle.Render("Scope") + "\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("depth %d, %d elements", e.scene.Depth(), len(e.scene.Children()))) + "\n")
	wires := fmt.Sprintf("%d wires", len(conns))
	if invalid > 0 {
		wires += StyleError.Render(fmt.Sprintf(", %d invalid", invalid))
	}
	b.WriteString(StyleDim.Render(wires) + "\n")
	if ext := e.scene.Extent(); !ext.IsEmpty() {
		b.WriteString(StyleDim.Render(fmt.Sprintf("extent %dx%d at %d,%d", ext.W, ext.H, ext.X, ext.Y)) + "\n")
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("cursor %d,%d", e.cursor.X, e.cursor.Y)))
	return b.String()
}
