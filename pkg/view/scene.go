package view

import (
	"slices"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/observability"
)

// GlobalID and GlobalName identify the permanent top-level composite.
const (
	GlobalID   uint64 = 0
	GlobalName        = "root"
)

// Layout holds the default sizes given to newly allocated entities.
type Layout struct {
	ElementWidth  int
	ElementHeight int
	GateWidth     int
	GateHeight    int
	BitWidth      int
}

// DefaultLayout returns a 100×60 element box with 10×10 single-bit gates.
func DefaultLayout() Layout {
	return Layout{
		ElementWidth:  100,
		ElementHeight: 60,
		GateWidth:     10,
		GateHeight:    10,
		BitWidth:      1,
	}
}

// Option configures a [Scene].
type Option func(*Scene)

// WithLayout sets the default entity sizes. Non-positive fields keep their
// defaults.
func WithLayout(l Layout) Option {
	return func(s *Scene) {
		d := &s.layout
		if l.ElementWidth > 0 {
			d.ElementWidth = l.ElementWidth
		}
		if l.ElementHeight > 0 {
			d.ElementHeight = l.ElementHeight
		}
		if l.GateWidth > 0 {
			d.GateWidth = l.GateWidth
		}
		if l.GateHeight > 0 {
			d.GateHeight = l.GateHeight
		}
		if l.BitWidth > 0 {
			d.BitWidth = l.BitWidth
		}
	}
}

// WithHooks routes scene events to h instead of the globally registered
// [observability.SceneHooks].
func WithHooks(h observability.SceneHooks) Option {
	return func(s *Scene) { s.sceneHooks = h }
}

// Scene is the scene graph store: an arena of elements, gates and
// connections, a permanent global root and a current scope.
//
// The zero value is not usable; create scenes with [NewScene].
type Scene struct {
	elements map[Key]*Element
	gates    map[Key]*Gate
	conns    map[Key]*Connection
	next     Key

	global  *Element
	current *Element

	layout     Layout
	sceneHooks observability.SceneHooks
}

// NewScene creates a scene whose current scope is a fresh global root.
func NewScene(opts ...Option) *Scene {
	s := &Scene{
		elements: make(map[Key]*Element),
		gates:    make(map[Key]*Gate),
		conns:    make(map[Key]*Connection),
		layout:   DefaultLayout(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.global = s.newElement(KindComposite, GlobalID, GlobalName)
	s.current = s.global
	return s
}

// Layout returns the scene's default sizes.
func (s *Scene) Layout() Layout { return s.layout }

// Element resolves an element key.
func (s *Scene) Element(k Key) (*Element, bool) {
	el, ok := s.elements[k]
	return el, ok
}

// Gate resolves a gate key.
func (s *Scene) Gate(k Key) (*Gate, bool) {
	g, ok := s.gates[k]
	return g, ok
}

// Connection resolves a connection key.
func (s *Scene) Connection(k Key) (*Connection, bool) {
	c, ok := s.conns[k]
	return c, ok
}

// Connections returns the connections of g in tie order.
func (s *Scene) Connections(g *Gate) []*Connection {
	out := make([]*Connection, 0, len(g.conns))
	for _, k := range g.conns {
		if c, ok := s.conns[k]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Partner returns the endpoint of c opposite g, or nil if g is not an
// endpoint of c.
func (s *Scene) Partner(c *Connection, g *Gate) *Gate {
	if c == nil || g == nil || (c.out != g.key && c.in != g.key) {
		return nil
	}
	return s.gates[c.other(g.key)]
}

// Owner returns the element holding g.
func (s *Scene) Owner(g *Gate) (*Element, bool) {
	return s.Element(g.parent)
}

// Add attaches el to the current scope. If a child with the same id exists it
// is replaced in place, keeping its position in the child list; otherwise el
// is appended. Gates and children el shares with the replaced element (as a
// [Scene.Clone] does) move to el; the rest of the replaced element is
// released along with its connections.
//
// Add fails with INVALID_TARGET for elements of another scene, the global
// root, the current scope or one of its ancestors, and elements attached
// elsewhere.
func (s *Scene) Add(el *Element) error {
	scope := s.current
	idx, err := s.checkAttach(scope, el)
	if err != nil {
		return s.reject("add", err)
	}

	replaced := idx >= 0
	if replaced {
		old := scope.children[idx]
		if old == el {
			return nil
		}
		s.releaseReplaced(old, el)
		scope.children[idx] = el
	} else {
		scope.children = append(scope.children, el)
	}
	s.adopt(scope, el)
	s.hooks().OnElementAdded(el.kind.String(), replaced)
	return nil
}

// checkAttach validates adding el to scope and returns the index of the child
// it would replace, or -1.
func (s *Scene) checkAttach(scope, el *Element) (int, error) {
	if el == nil {
		return -1, errs.New(errs.ErrCodeInvalidInput, "element is nil")
	}
	if !s.ownsElement(el) {
		return -1, errs.New(errs.ErrCodeInvalidTarget, "element %d was not allocated by this scene", el.id)
	}
	if el == s.global {
		return -1, errs.New(errs.ErrCodeInvalidTarget, "the global root cannot be added")
	}
	if s.encloses(el, scope) {
		return -1, errs.New(errs.ErrCodeInvalidTarget, "element %d encloses the current scope", el.id)
	}

	idx := scope.indexOf(el.id)
	var old *Element
	if idx >= 0 {
		old = scope.children[idx]
		if old == el {
			return idx, nil
		}
	}
	if el.parent != 0 {
		return -1, errs.New(errs.ErrCodeInvalidTarget, "element %d is attached to another scope", el.id)
	}

	inherited := func(parent Key) bool { return old != nil && parent == old.key }
	for _, g := range el.Gates() {
		if g.parent != el.key && !(inherited(g.parent) && old.hasGate(g.key)) {
			return -1, errs.New(errs.ErrCodeInvalidTarget, "gate %d of element %d belongs to another element", g.id, el.id)
		}
	}
	for _, c := range el.children {
		if c.parent != el.key && !(inherited(c.parent) && slices.Contains(old.children, c)) {
			return -1, errs.New(errs.ErrCodeInvalidTarget, "child %d of element %d belongs to another composite", c.id, el.id)
		}
	}
	if o := el.outer; o != nil && o.parent != el.key && !(old != nil && old.outer != nil && old.outer.key == o.key) {
		return -1, errs.New(errs.ErrCodeInvalidTarget, "boundary %d exposes a gate owned elsewhere", el.id)
	}
	return idx, nil
}

// encloses reports whether el is scope or one of its ancestors.
func (s *Scene) encloses(el, scope *Element) bool {
	for cur := scope; cur != nil; {
		if cur == el {
			return true
		}
		if cur == s.global {
			return false
		}
		cur = s.elements[cur.parent]
	}
	return false
}

// adopt points el and everything it holds at their new owners, swapping the
// gate values of an edited copy into the arena.
func (s *Scene) adopt(scope, el *Element) {
	el.parent = scope.key
	for _, g := range el.Gates() {
		s.commitGate(g)
		g.parent = el.key
	}
	for _, c := range el.children {
		c.parent = el.key
		if c.outer == nil {
			continue
		}
		if g, ok := s.gates[c.outer.key]; ok {
			c.outer = g
		}
	}
	o := el.outer
	if o == nil {
		return
	}
	prev := s.gates[o.key]
	s.commitGate(o)
	switch {
	case scope == s.global:
		o.parent = el.key
	case o.parent != scope.key:
		o.parent = scope.key
		if el.kind == KindInput {
			scope.inputs = append(scope.inputs, o)
		} else {
			scope.outputs = append(scope.outputs, o)
		}
		scope.Relayout()
	case prev != o:
		scope.replaceGate(o)
		scope.Relayout()
	}
}

// commitGate makes g the arena's gate for its key. A gate it supersedes
// hands over its current connections.
func (s *Scene) commitGate(g *Gate) {
	if cur, ok := s.gates[g.key]; ok && cur != g {
		g.conns, cur.conns = cur.conns, nil
		cur.parent = 0
	}
	s.gates[g.key] = g
}

// releaseReplaced frees whatever old holds that its replacement does not.
func (s *Scene) releaseReplaced(old, el *Element) {
	for _, g := range old.Gates() {
		if !el.hasGate(g.key) {
			s.releaseGate(g)
		}
	}
	for _, c := range old.children {
		if !slices.Contains(el.children, c) {
			s.releaseElement(c)
		}
	}
	if old.outer != nil && (el.outer == nil || old.outer.key != el.outer.key) {
		s.detachOuter(old)
	}
	delete(s.elements, old.key)
	old.parent = 0
}

// Remove detaches the child with the given id from the current scope. Every
// connection touching its gates, or the gates of anything it contains, is
// removed from both endpoints.
func (s *Scene) Remove(id uint64) error {
	scope := s.current
	idx := scope.indexOf(id)
	if idx < 0 {
		return s.reject("remove", errs.New(errs.ErrCodeNotFound, "no element with id %d in scope", id))
	}
	el := scope.children[idx]
	scope.children = slices.Delete(scope.children, idx, idx+1)
	s.releaseElement(el)
	s.hooks().OnElementRemoved(el.kind.String())
	return nil
}

func (s *Scene) releaseElement(el *Element) {
	for _, g := range el.Gates() {
		s.releaseGate(g)
	}
	for _, c := range el.children {
		s.releaseElement(c)
	}
	if el.outer != nil {
		s.detachOuter(el)
	}
	delete(s.elements, el.key)
	el.parent = 0
	el.inputs, el.outputs, el.children = nil, nil, nil
}

// detachOuter takes a boundary's outer gate off its composite and frees it.
func (s *Scene) detachOuter(el *Element) {
	o := el.outer
	if host, ok := s.elements[o.parent]; ok && host != el {
		host.removeGate(o)
		host.Relayout()
	}
	s.releaseGate(o)
	el.outer = nil
}

func (s *Scene) releaseGate(g *Gate) {
	if !s.ownsGate(g) {
		return
	}
	s.untie(g)
	delete(s.gates, g.key)
	g.parent = 0
}

// Tie connects an output gate to an input gate, in either argument order,
// and registers the connection with both. valid is stored as given so a
// caller can wire mismatched widths it intends to fix later; use
// [Scene.CheckValid] to derive it from the widths.
func (s *Scene) Tie(a, b *Gate, valid bool) (*Connection, error) {
	if !s.ownsGate(a) || !s.ownsGate(b) {
		return nil, s.reject("tie", errs.New(errs.ErrCodeInvalidTarget, "gate is not part of this scene"))
	}
	if a.dir == b.dir {
		return nil, s.reject("tie", errs.New(errs.ErrCodeDirectionMismatch, "cannot tie two %s gates", a.dir))
	}
	out, in := a, b
	if a.dir == In {
		out, in = b, a
	}
	c := &Connection{key: s.alloc(), out: out.key, in: in.key, valid: valid}
	s.conns[c.key] = c
	out.conns = append(out.conns, c.key)
	in.conns = append(in.conns, c.key)
	s.hooks().OnTie(valid)
	return c, nil
}

// UntieAll removes every connection of g from g and from the partner gate.
// It is a no-op for a gate without connections.
func (s *Scene) UntieAll(g *Gate) error {
	if !s.ownsGate(g) {
		return s.reject("untie", errs.New(errs.ErrCodeInvalidTarget, "gate is not part of this scene"))
	}
	if n := s.untie(g); n > 0 {
		s.hooks().OnUntie(n)
	}
	return nil
}

func (s *Scene) untie(g *Gate) int {
	n := len(g.conns)
	for _, k := range g.conns {
		c, ok := s.conns[k]
		if !ok {
			continue
		}
		if p, ok := s.gates[c.other(g.key)]; ok {
			p.dropConn(k)
		}
		delete(s.conns, k)
	}
	g.conns = nil
	return n
}

// CheckValid recomputes c's validity as output width == input width, caches
// it and returns it. Unknown connections are never valid.
func (s *Scene) CheckValid(c *Connection) bool {
	if c == nil || s.conns[c.key] != c {
		return false
	}
	out, in := s.gates[c.out], s.gates[c.in]
	c.valid = out != nil && in != nil && out.bitWidth == in.bitWidth
	return c.valid
}

// Revalidate runs [Scene.CheckValid] on every connection of g and returns how
// many are invalid.
func (s *Scene) Revalidate(g *Gate) int {
	invalid := 0
	for _, c := range s.Connections(g) {
		if !s.CheckValid(c) {
			invalid++
		}
	}
	return invalid
}

// Clone returns a detached copy of el with a fresh key. The copy holds its
// own gate values under el's gate keys, so rotating, resizing or re-widthing
// it leaves el untouched. Committing it with [Scene.Add] swaps those gates
// into the scene and replaces el without disturbing its connections; gate
// pointers taken from el are stale afterwards and should be looked up again.
// Children are shared, not copied.
func (s *Scene) Clone(el *Element) (*Element, error) {
	if !s.ownsElement(el) || el == s.global {
		return nil, s.reject("clone", errs.New(errs.ErrCodeInvalidTarget, "element cannot be cloned"))
	}
	cp := &Element{
		Entity:   el.Entity,
		kind:     el.kind,
		dir:      el.dir,
		inputs:   copyGates(el.inputs),
		outputs:  copyGates(el.outputs),
		children: slices.Clone(el.children),
	}
	if el.outer != nil {
		cp.outer = copyGate(el.outer)
	}
	cp.key = s.alloc()
	cp.parent = 0
	s.elements[cp.key] = cp
	return cp, nil
}

func copyGates(gates []*Gate) []*Gate {
	out := make([]*Gate, len(gates))
	for i, g := range gates {
		out[i] = copyGate(g)
	}
	return out
}

func copyGate(g *Gate) *Gate {
	cp := *g
	cp.conns = slices.Clone(g.conns)
	return &cp
}

// Discard drops a detached element together with the gates and children it
// exclusively owns. Gates copied by [Scene.Clone] were never part of the
// scene, so discarding an edited copy leaves the original as it was.
func (s *Scene) Discard(el *Element) error {
	if !s.ownsElement(el) || el == s.global {
		return s.reject("discard", errs.New(errs.ErrCodeInvalidTarget, "element cannot be discarded"))
	}
	if el.parent != 0 {
		return s.reject("discard", errs.New(errs.ErrCodeInvalidTarget, "element %d is attached; remove it instead", el.id))
	}
	for _, g := range el.Gates() {
		if g.parent == el.key {
			s.releaseGate(g)
		}
	}
	for _, c := range el.children {
		if c.parent == el.key {
			s.releaseElement(c)
		}
	}
	if o := el.outer; o != nil && o.parent == el.key && s.ownsGate(o) {
		s.releaseGate(o)
	}
	delete(s.elements, el.key)
	return nil
}

func (s *Scene) alloc() Key {
	s.next++
	return s.next
}

func (s *Scene) ownsElement(el *Element) bool {
	return el != nil && s.elements[el.key] == el
}

func (s *Scene) ownsGate(g *Gate) bool {
	return g != nil && s.gates[g.key] == g
}

func (s *Scene) hooks() observability.SceneHooks {
	if s.sceneHooks != nil {
		return s.sceneHooks
	}
	return observability.Scene()
}

func (s *Scene) reject(op string, err error) error {
	s.hooks().OnRejected(op, string(errs.GetCode(err)))
	return err
}
