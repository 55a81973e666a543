package view

import (
	"slices"

	errs "github.com/matzehuels/logicview/pkg/errors"
)

// Scope returns the current scope.
func (s *Scene) Scope() *Element { return s.current }

// Global returns the global root.
func (s *Scene) Global() *Element { return s.global }

// IsGlobal reports whether the current scope is the global root.
func (s *Scene) IsGlobal() bool { return s.current == s.global }

// Enter makes the composite child with the given id the current scope. The
// scope is unchanged if no such child exists or it is not a composite.
func (s *Scene) Enter(id uint64) error {
	idx := s.current.indexOf(id)
	if idx < 0 {
		return s.reject("enter", errs.New(errs.ErrCodeInvalidTarget, "no element with id %d in scope", id))
	}
	el := s.current.children[idx]
	if !el.IsComposite() {
		return s.reject("enter", errs.New(errs.ErrCodeInvalidTarget, "element %d is %s, not a composite", id, el.kind))
	}
	s.setCurrent(el)
	return nil
}

// Exit returns to the parent of the current scope. Exiting the global root is
// a no-op.
func (s *Scene) Exit() {
	if s.current == s.global {
		return
	}
	parent, ok := s.elements[s.current.parent]
	if !ok {
		parent = s.global
	}
	s.setCurrent(parent)
}

// SetScope makes el the current scope. A nil el resets to the global root. An
// element that is not a composite reachable from the global root also resets
// to the global root and is reported as INVALID_TARGET.
func (s *Scene) SetScope(el *Element) error {
	if el == nil {
		s.ResetToGlobal()
		return nil
	}
	if !s.reachable(el) {
		s.ResetToGlobal()
		return s.reject("scope", errs.New(errs.ErrCodeInvalidTarget, "element %d is not a reachable composite", el.id))
	}
	s.setCurrent(el)
	return nil
}

// ResetToGlobal makes the global root the current scope.
func (s *Scene) ResetToGlobal() {
	s.setCurrent(s.global)
}

// Path returns the scopes from the global root down to the current scope.
func (s *Scene) Path() []*Element {
	var path []*Element
	for cur := s.current; cur != nil; cur = s.elements[cur.parent] {
		path = append(path, cur)
		if cur == s.global {
			break
		}
	}
	slices.Reverse(path)
	return path
}

// Depth returns how many composites below the global root the current scope
// is.
func (s *Scene) Depth() int {
	return len(s.Path()) - 1
}

func (s *Scene) setCurrent(el *Element) {
	changed := s.current != el
	s.current = el
	if changed {
		s.hooks().OnScopeChanged(s.Depth())
	}
}

// reachable reports whether el is a composite on a chain of attached
// children leading to the global root.
func (s *Scene) reachable(el *Element) bool {
	if !s.ownsElement(el) || !el.IsComposite() {
		return false
	}
	for cur := el; cur != s.global; {
		parent, ok := s.elements[cur.parent]
		if !ok || !slices.Contains(parent.children, cur) {
			return false
		}
		cur = parent
	}
	return true
}
