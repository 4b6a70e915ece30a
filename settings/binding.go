package settings

import (
	"github.com/settingskit/settingskit/store"
)

// Binding exposes one setting as a plain get/set property over a store.
// It holds no state besides the descriptor and the store: every Get
// re-reads the store, so changes made through other bindings or directly
// on the store are visible immediately.
type Binding[V any] struct {
	desc  Descriptor[V]
	store Store
}

type bindConfig struct {
	store Store
}

// BindOption configures a Binding.
type BindOption func(*bindConfig)

// WithStore binds to s instead of the standard store.
func WithStore(s Store) BindOption {
	return func(c *bindConfig) {
		c.store = s
	}
}

// Bind returns a Binding of d. Without WithStore the binding uses
// store.Standard() as it is at the time of the call.
func Bind[V any](d Descriptor[V], opts ...BindOption) *Binding[V] {
	var cfg bindConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.store == nil {
		cfg.store = store.Standard()
	}

	return &Binding[V]{desc: d, store: cfg.store}
}

// Get returns the current value.
func (b *Binding[V]) Get() V { return b.desc.Value(b.store) }

// Set persists v.
func (b *Binding[V]) Set(v V) { b.desc.Set(b.store, v) }

// Reset removes the stored value.
func (b *Binding[V]) Reset() { b.desc.Reset(b.store) }

// Descriptor returns the bound descriptor.
func (b *Binding[V]) Descriptor() Descriptor[V] { return b.desc }

// Store returns the bound store.
func (b *Binding[V]) Store() Store { return b.store }
