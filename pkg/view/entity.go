package view

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/logicview/pkg/errors"
	"github.com/matzehuels/logicview/pkg/geom"
)

// Key identifies an entity in a scene's arena. The zero Key refers to nothing.
type Key uint64

// State is the editing state of an entity.
type State int

const (
	StateNormal State = iota
	StateCreating
	StateSelected
	StateCopied
	StateCut
)

var stateNames = [...]string{"normal", "creating", "selected", "copied", "cut"}

func (s State) String() string {
	if s < StateNormal || s > StateCut {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState parses a state name such as "selected".
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if strings.EqualFold(s, name) {
			return State(i), nil
		}
	}
	return StateNormal, errs.New(errs.ErrCodeInvalidInput, "unknown state %q", s)
}

// Entity holds the fields shared by elements and gates.
//
// Name, position, size and state are transient editing fields that callers
// set directly. The id, key and parent are fixed by the scene.
type Entity struct {
	Name  string
	X, Y  int
	W, H  int
	State State

	key    Key
	parent Key
	id     uint64
}

// Key returns the entity's arena key.
func (e *Entity) Key() Key { return e.key }

// ID returns the entity's identifier, unique within its scope.
func (e *Entity) ID() uint64 { return e.id }

// Parent returns the key of the containing element, or 0 when detached.
// For a gate this is the element holding it: its owner, or the composite a
// boundary has placed it on.
func (e *Entity) Parent() Key { return e.parent }

// Box returns the entity's bounding box.
func (e *Entity) Box() geom.Rect { return geom.Rect{X: e.X, Y: e.Y, W: e.W, H: e.H} }

// Pos returns the entity's position.
func (e *Entity) Pos() geom.Point { return geom.Point{X: e.X, Y: e.Y} }
