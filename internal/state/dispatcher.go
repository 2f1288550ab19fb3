// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import "sync"

// Subscriber observes committed transitions. It receives the new state and
// the action that produced it.
type Subscriber func(next *AppState, a Action)

// Dispatcher funnels every state write through the reducer and notifies
// subscribers in dispatch order. Dispatch is serialized by a single mutex,
// so transitions are applied exactly in the order they are dispatched and
// no subscriber ever observes them out of order.
type Dispatcher struct {
	mu          sync.Mutex
	state       *AppState
	subscribers []Subscriber
}

// NewDispatcher creates a dispatcher seeded with the given state.
func NewDispatcher(initial *AppState) *Dispatcher {
	if initial == nil {
		initial = NewAppState()
	}
	return &Dispatcher{state: initial}
}

// State returns the current state snapshot. The snapshot is immutable;
// callers must not modify it.
func (d *Dispatcher) State() *AppState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Subscribe registers a subscriber for committed transitions.
// Subscribers run synchronously on the dispatching goroutine and must not
// dispatch re-entrantly.
func (d *Dispatcher) Subscribe(fn Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, fn)
}

// Dispatch applies an action and notifies subscribers. No-op transitions
// (reducer returned the same pointer) are not broadcast.
func (d *Dispatcher) Dispatch(a Action) *AppState {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := Reduce(d.state, a)
	if next == d.state {
		return next
	}
	d.state = next

	for _, fn := range d.subscribers {
		fn(next, a)
	}
	return next
}
