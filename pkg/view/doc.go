// Package view provides the scene graph behind the circuit editor: positioned
// elements, their gate terminals, the connections between gates and the
// hierarchy of composite elements a user can step into.
//
// # Overview
//
// A [Scene] is the single authoritative container. It owns a permanent global
// root (a composite with id 0 named "root") and a current scope, which starts
// at the global root and can be moved into any composite with [Scene.Enter].
// Every element query and mutation acts on the current scope's children.
//
// The scene is passive. Callers hit-test it, mutate an element's transient
// fields (position, state, facing) directly, and commit through [Scene.Add],
// [Scene.Remove] and [Scene.Tie].
//
// # Ownership
//
// Ownership flows down the tree: a composite owns its children, an element owns
// its input and output gates. Every association pointing elsewhere (an
// entity's parent, a gate's connections, a connection's endpoints) is a [Key]
// into the scene's arena. Keys are never reused, so a stale key simply fails to
// resolve. Removing an element severs every connection touching its gates from
// both endpoints, so no half-registered connection survives.
//
// # Construction
//
// Elements are allocated by the scene and start detached:
//
//	s := view.NewScene()
//	and, _ := s.Build(sim.NewPrimitive(sim.OpAnd, 1, "", 2, 1, alloc))
//	_ = s.Add(and)
//
// Editing an element follows the copy-and-commit pattern: [Scene.Clone] returns
// a detached copy sharing the original's gates, and adding it replaces the
// original in place because the ids match.
//
// # Coordinates
//
// Element positions are in the coordinate space of their scope. Gate positions
// are local to their element. Gate layouts are authored for a right-facing
// element and [Element.Rotate] recomputes them from those base positions, so
// rotations never accumulate drift.
//
// # Errors
//
// Failures carry a code from [github.com/matzehuels/logicview/pkg/errors]:
// NOT_FOUND, INVALID_TARGET, DIRECTION_MISMATCH, INDEX_OUT_OF_RANGE or
// INVALID_INPUT. A failed operation leaves the scene unchanged.
//
// # Concurrency
//
// Scene instances are not safe for concurrent use. One logical actor (an event
// loop, or a server holding a lock) must drive a scene at a time.
package view
