package settings

import (
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/settingskit/settingskit/store"
)

const keyRules = "required,max=255"

var (
	// ErrDuplicateKey is returned when two registered definitions share a key.
	ErrDuplicateKey = errors.New("setting key already registered")

	// ErrInvalidKey is returned when a definition key fails validation.
	ErrInvalidKey = errors.New("invalid setting key")

	validate = validator.New() //nolint:gochecknoglobals
)

// Definition is the untyped view of a Descriptor, implemented by every
// Descriptor[V]. It lets settings of different types be listed together.
type Definition interface {
	Key() string
	Kind() Kind
	Fallback() Fallback
	RawDefault() store.Value
	Cases() []store.Value
	EffectiveValue(s Source) store.Value
	SetRaw(s Store, raw store.Value) error
	Reset(s Store)
}

// Registry enumerates the settings an application declares.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds definitions. Either all of them are added or none: an
// invalid or duplicate key aborts the call.
func (r *Registry) Register(defs ...Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(defs))

	for _, d := range defs {
		key := d.Key()
		if err := validate.Var(key, keyRules); err != nil {
			return errors.Wrapf(ErrInvalidKey, "%q: %v", key, err)
		}

		if _, ok := r.defs[key]; ok {
			return errors.Wrap(ErrDuplicateKey, key)
		}

		if _, ok := seen[key]; ok {
			return errors.Wrap(ErrDuplicateKey, key)
		}

		seen[key] = struct{}{}
	}

	for _, d := range defs {
		r.defs[d.Key()] = d
	}

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(defs ...Definition) {
	if err := r.Register(defs...); err != nil {
		panic(err)
	}
}

// Lookup returns the definition registered under key.
func (r *Registry) Lookup(key string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.defs[key]

	return d, ok
}

// Definitions returns all definitions ordered by key.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})

	return out
}

// Snapshot returns the effective value of every registered setting in s.
func (r *Registry) Snapshot(s Source) map[string]store.Value {
	defs := r.Definitions()

	out := make(map[string]store.Value, len(defs))
	for _, d := range defs {
		out[d.Key()] = d.EffectiveValue(s)
	}

	return out
}

// ResetAll removes every registered setting from s.
func (r *Registry) ResetAll(s Store) {
	for _, d := range r.Definitions() {
		d.Reset(s)
	}
}
