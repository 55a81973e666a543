package sim

import "sync"

// EventKind distinguishes recorded notifications.
type EventKind int

const (
	EventAddElement EventKind = iota
	EventConnect
)

// Event is one notification captured by a [Recorder].
type Event struct {
	Kind    EventKind
	Element uint64 // element id for EventAddElement
	A, B    uint64 // pin ids for EventConnect
}

// Recorder is a [Notifier] that keeps every notification in order. It stands
// in for the engine in tests and in the CLI summary.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// AddElement records an element registration.
func (r *Recorder) AddElement(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EventAddElement, Element: d.ID()})
}

// ConnectGates records a wire between two pins.
func (r *Recorder) ConnectGates(a, b uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: EventConnect, A: a, B: b})
}

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many notifications of kind k were recorded.
func (r *Recorder) Count(k EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Nop discards notifications.
type Nop struct{}

func (Nop) AddElement(Descriptor) {}
func (Nop) ConnectGates(uint64, uint64) {}
