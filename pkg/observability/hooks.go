// Package observability provides hooks for metrics and logging.
//
// The view core and the scenario driver call hooks at interesting points
// (elements added, wires tied, scopes entered, queries answered) without
// depending on any metrics backend. Binaries register real implementations at
// startup; libraries see no-ops otherwise.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    collector := metrics.New(prometheus.DefaultRegisterer)
//	    observability.SetSceneHooks(collector)
//	    observability.SetQueryHooks(collector)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scene().OnTie(valid)
//
// Hooks are called synchronously from inside scene operations, so they must
// not call back into the scene.
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Scene Hooks
// =============================================================================

// SceneHooks receives mutation events from a view scene.
type SceneHooks interface {
	// OnElementAdded records an element entering the current scope. replaced
	// reports whether it displaced an element with the same id.
	OnElementAdded(kind string, replaced bool)

	// OnElementRemoved records an element leaving the current scope.
	OnElementRemoved(kind string)

	// OnTie records a new connection and its bit-width validity.
	OnTie(valid bool)

	// OnUntie records a gate losing n connections.
	OnUntie(n int)

	// OnScopeChanged records the nesting depth after a scope transition.
	OnScopeChanged(depth int)

	// OnRejected records an operation refused with the given error code.
	OnRejected(op, code string)
}

// =============================================================================
// Query Hooks
// =============================================================================

// QueryHooks receives events from spatial queries.
type QueryHooks interface {
	// OnQuery records a query by name and how many results it returned.
	OnQuery(query string, hits int)
}

// =============================================================================
// Replay Hooks
// =============================================================================

// ReplayHooks receives events from scenario replay.
type ReplayHooks interface {
	// OnStep records one replayed step.
	OnStep(op string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSceneHooks is a no-op implementation of SceneHooks.
type NoopSceneHooks struct{}

func (NoopSceneHooks) OnElementAdded(string, bool) {}
func (NoopSceneHooks) OnElementRemoved(string)     {}
func (NoopSceneHooks) OnTie(bool)                  {}
func (NoopSceneHooks) OnUntie(int)                 {}
func (NoopSceneHooks) OnScopeChanged(int)          {}
func (NoopSceneHooks) OnRejected(string, string)   {}

// NoopQueryHooks is a no-op implementation of QueryHooks.
type NoopQueryHooks struct{}

func (NoopQueryHooks) OnQuery(string, int) {}

// NoopReplayHooks is a no-op implementation of ReplayHooks.
type NoopReplayHooks struct{}

func (NoopReplayHooks) OnStep(string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sceneHooks  SceneHooks  = NoopSceneHooks{}
	queryHooks  QueryHooks  = NoopQueryHooks{}
	replayHooks ReplayHooks = NoopReplayHooks{}
	hooksMu     sync.RWMutex
)

// SetSceneHooks registers custom scene hooks.
// This should be called once at application startup before any scene is built.
func SetSceneHooks(h SceneHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sceneHooks = h
	}
}

// SetQueryHooks registers custom query hooks.
func SetQueryHooks(h QueryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		queryHooks = h
	}
}

// SetReplayHooks registers custom replay hooks.
func SetReplayHooks(h ReplayHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		replayHooks = h
	}
}

// Scene returns the registered scene hooks.
func Scene() SceneHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sceneHooks
}

// Query returns the registered query hooks.
func Query() QueryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return queryHooks
}

// Replay returns the registered replay hooks.
func Replay() ReplayHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return replayHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sceneHooks = NoopSceneHooks{}
	queryHooks = NoopQueryHooks{}
	replayHooks = NoopReplayHooks{}
}
