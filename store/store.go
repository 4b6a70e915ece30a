// Package store implements a string-keyed, typed key-value settings store.
//
// A Store maps keys to values of a closed set of kinds (string, integer,
// double, bool, blob and URI) and persists them through a Backend. Reads
// never fail: a missing key, a value of another kind or a backend error are
// all reported as absence. Writes never fail observably either; backend
// errors are logged and counted, the way a platform defaults database
// swallows its own I/O errors.
package store

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const nameSeparator = "."

var (
	standard atomic.Pointer[Store] //nolint:gochecknoglobals

	errorCounter     *prometheus.CounterVec //nolint:gochecknoglobals
	errorCounterOnce sync.Once              //nolint:gochecknoglobals
)

func countError(op string) {
	errorCounterOnce.Do(func() {
		errorCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settingskit_store_errors_total",
				Help: "Number of swallowed store backend errors, by operation.",
			},
			[]string{"op"},
		)
	})

	errorCounter.WithLabelValues(op).Inc()
}

// Store is a typed key-value dictionary over a Backend.
// It is safe for concurrent use when its Backend is.
type Store struct {
	backend Backend
	name    string
	logger  *zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithName scopes the store to a named sub-store. Keys are persisted as
// "name.key" in the shared backend.
func WithName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}

// WithLogger sets the logger used to report swallowed backend errors.
// The global zerolog logger is used otherwise.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = &l
	}
}

// New returns a Store persisting through backend.
func New(backend Backend, opts ...Option) *Store {
	if backend == nil {
		panic("store: backend is nil")
	}

	s := &Store{backend: backend}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Standard returns the process-wide default store. Until SetStandard is
// called it is an in-memory store.
func Standard() *Store {
	if s := standard.Load(); s != nil {
		return s
	}

	standard.CompareAndSwap(nil, New(NewMemory()))

	return standard.Load()
}

// SetStandard replaces the process-wide default store. Bindings created
// before the call keep the store they captured.
func SetStandard(s *Store) {
	if s == nil {
		panic("store: standard store is nil")
	}

	standard.Store(s)
}

// Name returns the sub-store name, empty for the root store.
func (s *Store) Name() string { return s.name }

// Suite returns a named sub-store sharing s's backend.
// Suites nest: Suite("a").Suite("b") persists keys as "a.b.key".
func (s *Store) Suite(name string) *Store {
	c := *s
	c.name = s.qualify(name)

	return &c
}

// qualify prefixes key with the sub-store name.
func (s *Store) qualify(key string) string {
	if s.name == "" {
		return key
	}

	return s.name + nameSeparator + key
}

func (s *Store) log() *zerolog.Logger {
	if s.logger != nil {
		return s.logger
	}

	return &log.Logger
}

func (s *Store) fail(op, key string, err error) {
	countError(op)
	s.log().Error().Err(err).Str("op", op).Str("key", s.qualify(key)).Msg("settings store backend error")
}

// Object returns the value stored under key.
func (s *Store) Object(key string) (Value, bool) {
	payload, ok, err := s.backend.Get(context.Background(), s.qualify(key))
	if err != nil {
		s.fail("get", key, err)

		return Value{}, false
	}

	if !ok {
		return Value{}, false
	}

	v, err := Unmarshal(payload)
	if err != nil {
		s.fail("decode", key, err)

		return Value{}, false
	}

	return v, true
}

// Set stores v under key. Storing the invalid Value removes key.
func (s *Store) Set(key string, v Value) {
	if !v.IsValid() {
		s.Remove(key)

		return
	}

	payload, err := Marshal(v)
	if err != nil {
		s.fail("encode", key, err)

		return
	}

	if err = s.backend.Set(context.Background(), s.qualify(key), payload); err != nil {
		s.fail("set", key, err)
	}
}

// Remove deletes key.
func (s *Store) Remove(key string) {
	if err := s.backend.Delete(context.Background(), s.qualify(key)); err != nil {
		s.fail("delete", key, err)
	}
}

// Contains reports whether a decodable value is stored under key.
func (s *Store) Contains(key string) bool {
	_, ok := s.Object(key)

	return ok
}

// Keys lists the keys of this store (and its sub-stores), relative to it.
func (s *Store) Keys() []string {
	prefix := ""
	if s.name != "" {
		prefix = s.name + nameSeparator
	}

	keys, err := s.backend.Keys(context.Background(), prefix)
	if err != nil {
		s.fail("keys", "", err)

		return nil
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, prefix))
	}

	return out
}

// Close closes the backend. Sub-stores share it.
func (s *Store) Close() error {
	return s.backend.Close() //nolint:wrapcheck
}

// String returns the string stored under key.
func (s *Store) String(key string) (string, bool) {
	v, ok := s.Object(key)
	if !ok {
		return "", false
	}

	return v.AsString()
}

// Integer returns the integer stored under key, or 0.
func (s *Store) Integer(key string) int {
	v, _ := s.Object(key)
	n, _ := v.AsInteger()

	return n
}

// Double returns the float64 stored under key, or 0.
func (s *Store) Double(key string) float64 {
	v, _ := s.Object(key)
	f, _ := v.AsDouble()

	return f
}

// Bool returns the boolean stored under key, or false.
func (s *Store) Bool(key string) bool {
	v, _ := s.Object(key)
	b, _ := v.AsBool()

	return b
}

// Blob returns the bytes stored under key.
func (s *Store) Blob(key string) ([]byte, bool) {
	v, ok := s.Object(key)
	if !ok {
		return nil, false
	}

	return v.AsBlob()
}

// URI returns the URL stored under key.
func (s *Store) URI(key string) (*url.URL, bool) {
	v, ok := s.Object(key)
	if !ok {
		return nil, false
	}

	return v.AsURI()
}

// SetString stores a string under key.
func (s *Store) SetString(key, value string) { s.Set(key, String(value)) }

// SetInteger stores an integer under key.
func (s *Store) SetInteger(key string, value int) { s.Set(key, Integer(value)) }

// SetDouble stores a float64 under key.
func (s *Store) SetDouble(key string, value float64) { s.Set(key, Double(value)) }

// SetBool stores a boolean under key.
func (s *Store) SetBool(key string, value bool) { s.Set(key, Bool(value)) }

// SetBlob stores bytes under key.
func (s *Store) SetBlob(key string, value []byte) { s.Set(key, Blob(value)) }

// SetURI stores a URL under key. A nil URL removes key.
func (s *Store) SetURI(key string, value *url.URL) { s.Set(key, URI(value)) }
