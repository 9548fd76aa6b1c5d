package gecs

import "reflect"

// Events are delivered synchronously on the publishing goroutine, in
// subscription order. Subscribers must not block; long-running reactions
// belong in a deferred task (see World.Defer).

// EntitySpawnEvent is published when CreateEntity issues a new identifier.
type EntitySpawnEvent struct {
	Entity Entity
}

// ComponentAttachEvent is published after a component has been attached to
// an entity and is visible through the store.
type ComponentAttachEvent struct {
	Entity        Entity
	ComponentType reflect.Type
}

// ComponentDetachEvent is published after a component has been removed
// from an entity.
type ComponentDetachEvent struct {
	Entity        Entity
	ComponentType reflect.Type
}

// LedgerResetEvent is published when ResetLedger discards all lease
// bookkeeping.
type LedgerResetEvent struct{}

// TickEvent is published by the scheduler at the start of each tick.
type TickEvent struct {
	// Frame counts ticks since Start, beginning at 0.
	Frame uint64
}

// Subscribe registers a handler for events of type T published on this
// world. Handlers run synchronously on the publisher's goroutine and cannot
// be unregistered; subscribe once during setup.
func Subscribe[T any](w *World, fn func(T)) {
	if w == nil || fn == nil {
		return
	}
	key := typeKey[T]()
	wrapped := func(ev any) {
		if v, ok := ev.(T); ok {
			fn(v)
		}
	}
	w.subscribersMu.Lock()
	w.subscribers[key] = append(w.subscribers[key], wrapped)
	w.subscribersMu.Unlock()
}

// Publish delivers an event to every subscriber registered for its concrete
// type. Publishing an event type nobody subscribed to is free apart from a
// map lookup.
func (w *World) Publish(event any) {
	if event == nil {
		return
	}
	w.subscribersMu.RLock()
	subs := w.subscribers[reflect.TypeOf(event)]
	w.subscribersMu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}
