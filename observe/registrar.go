// Package observe layers change observation over settings bindings.
//
// The settings package has no notion of observers. Wrapping a binding with
// Wrap produces a Property that reports each read to an Observer and runs
// each write inside the observer's mutation scope. Registrar is the
// Observer shipped with this package: it supports one-shot dependency
// tracking (Track) and persistent subscriptions (Subscribe).
package observe

import (
	"sync"
)

// PropertyID identifies an observed property.
type PropertyID string

// Observer is the reactive runtime a Property reports to.
type Observer interface {
	// Access registers a read of id with the current tracking scope.
	Access(id PropertyID)
	// WithMutation runs body as a mutation of id and notifies observers of
	// id once body returns.
	WithMutation(id PropertyID, body func())
}

// Listener is called after a property changed.
type Listener func(id PropertyID)

// Subscription is an active Subscribe registration.
type Subscription struct {
	id       uint64
	property PropertyID
	r        *Registrar
}

// Cancel removes the subscription. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	if s != nil && s.r != nil {
		s.r.unsubscribe(s.property, s.id)
	}
}

type tracker struct {
	accessed map[PropertyID]struct{}
	onChange func()
}

// Registrar records property accesses and delivers change notifications.
//
// Tracking scopes are per Registrar, not per goroutine: accesses made by
// any goroutine while Track runs are attributed to the innermost scope.
// Mutation scopes are shared the same way. While any goroutine is inside
// WithMutation, mutations completed by other goroutines are held and
// delivered by whichever call closes the last open scope.
type Registrar struct {
	mu sync.Mutex

	// scopes is the stack of running Track calls.
	scopes []*tracker

	// armed holds finished Track calls waiting for a change.
	armed map[*tracker]struct{}

	listeners map[PropertyID]map[uint64]Listener
	nextID    uint64

	// depth counts open WithMutation calls of all goroutines; pending
	// collects the ids mutated since depth left zero.
	depth   int
	pending []PropertyID
}

// NewRegistrar returns an empty Registrar.
func NewRegistrar() *Registrar {
	return &Registrar{
		armed:     make(map[*tracker]struct{}),
		listeners: make(map[PropertyID]map[uint64]Listener),
	}
}

// Access implements Observer.
func (r *Registrar) Access(id PropertyID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := len(r.scopes); n > 0 {
		r.scopes[n-1].accessed[id] = struct{}{}
	}
}

// Track runs apply and records the properties it reads. onChange is called
// once, after the first subsequent mutation of any of them; tracking then
// ends. If apply reads nothing, onChange is never called.
func (r *Registrar) Track(apply func(), onChange func()) {
	t := &tracker{accessed: make(map[PropertyID]struct{}), onChange: onChange}

	r.mu.Lock()
	r.scopes = append(r.scopes, t)
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.scopes = r.scopes[:len(r.scopes)-1]
		if len(t.accessed) > 0 && onChange != nil {
			r.armed[t] = struct{}{}
		}
	}()

	apply()
}

// Subscribe calls fn after every mutation of id until cancelled.
func (r *Registrar) Subscribe(id PropertyID, fn Listener) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	if r.listeners[id] == nil {
		r.listeners[id] = make(map[uint64]Listener)
	}

	r.listeners[id][r.nextID] = fn

	return &Subscription{id: r.nextID, property: id, r: r}
}

func (r *Registrar) unsubscribe(property PropertyID, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.listeners[property], id)

	if len(r.listeners[property]) == 0 {
		delete(r.listeners, property)
	}
}

// WithMutation implements Observer. Mutations nest: notifications are
// delivered when the outermost WithMutation returns, once per distinct id,
// in the order the mutations completed. Nesting is counted across
// goroutines, so concurrent mutations batch into one delivery.
func (r *Registrar) WithMutation(id PropertyID, body func()) {
	r.mu.Lock()
	r.depth++
	r.mu.Unlock()

	defer r.endMutation(id)

	body()
}

func (r *Registrar) endMutation(id PropertyID) {
	r.mu.Lock()
	r.pending = append(r.pending, id)
	r.depth--

	if r.depth > 0 {
		r.mu.Unlock()

		return
	}

	changed := dedupe(r.pending)
	r.pending = nil

	var (
		callbacks []func()
		calls     []func()
	)

	for t := range r.armed {
		if touches(t, changed) {
			delete(r.armed, t)
			callbacks = append(callbacks, t.onChange)
		}
	}

	for _, pid := range changed {
		for _, fn := range r.listeners[pid] {
			calls = append(calls, func() { fn(pid) })
		}
	}
	r.mu.Unlock()

	// deliver outside the lock so listeners may read and write properties
	for _, cb := range callbacks {
		cb()
	}

	for _, call := range calls {
		call()
	}
}

func touches(t *tracker, changed []PropertyID) bool {
	for _, id := range changed {
		if _, ok := t.accessed[id]; ok {
			return true
		}
	}

	return false
}

func dedupe(ids []PropertyID) []PropertyID {
	seen := make(map[PropertyID]struct{}, len(ids))
	out := ids[:0]

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
