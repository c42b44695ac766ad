package world

import "github.com/lumen2d/lumen/audio"

// EventKind enumerates engine events.
type EventKind uint8

const (
	EvTimerFired EventKind = iota
	EvPhaseChanged
	EvStateChanged
	EvMenuSelected
	EvAudio
	EvSceneChanged
)

// Event is one dispatched occurrence. Fields are used per kind:
// TimerFired sets Handle and Name (the signal); PhaseChanged sets Handle,
// From and To; StateChanged sets FromState and ToState; MenuSelected sets
// Handle (the menu) and Name (the item id); Audio carries the worker
// message; SceneChanged sets From and To (scene names).
type Event struct {
	Kind   EventKind
	Handle int64
	Name   string

	From, To string

	FromState, ToState GameState

	Audio audio.Message
}

// Observer reacts to an event. Observers run synchronously in registration
// order on the game loop goroutine and may append commands but must not
// mutate the world directly.
type Observer func(w *World, ev Event)

// Bus dispatches events to registered observers.
type Bus struct {
	observers map[EventKind][]Observer
}

// Observe registers an observer for one event kind.
func (b *Bus) Observe(kind EventKind, fn Observer) {
	if b.observers == nil {
		b.observers = make(map[EventKind][]Observer)
	}
	b.observers[kind] = append(b.observers[kind], fn)
}

// Emit dispatches an event to all observers of its kind, in order.
func (b *Bus) Emit(w *World, ev Event) {
	for _, fn := range b.observers[ev.Kind] {
		fn(w, ev)
	}
}
