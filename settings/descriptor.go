// Package settings declares typed application settings over a key-value store.
//
// A Descriptor names one setting: its key, its kind and its default value.
// Descriptors are built once, usually as package-level variables:
//
//	var UserName = settings.String("userName", "Anonymous")
//
// and read or written through a store, directly (UserName.Value(s),
// UserName.Set(s, "Alice")) or through a Binding that captures the store:
//
//	name := settings.Bind(UserName, settings.WithStore(s))
//	name.Set("Alice")
//
// Reads never fail. A missing key, a value of another kind or an enumerated
// raw value that is not a known case all resolve to the descriptor's
// fallback, see Fallback.
package settings

import (
	"bytes"
	"net/url"

	"github.com/settingskit/settingskit/store"
)

// Source is the read half of Store.
type Source interface {
	Object(key string) (store.Value, bool)
}

// Store is the store surface descriptors read and write.
// It is implemented by *store.Store.
type Store interface {
	Source
	Set(key string, v store.Value)
	Remove(key string)
}

// Descriptor is the immutable definition of one setting of Go type V.
// The zero Descriptor is not usable; use one of the constructors.
type Descriptor[V any] struct {
	key      string
	kind     Kind
	def      V
	fallback Fallback
	enum     *enumCodec[V]
}

func newDescriptor[V any](key string, kind Kind, def V) Descriptor[V] {
	if key == "" {
		panic("settings: descriptor key can not be empty")
	}

	return Descriptor[V]{key: key, kind: kind, def: def}
}

// String declares a string setting.
func String(key, def string) Descriptor[string] {
	return newDescriptor(key, KindString, def)
}

// Integer declares an int setting. By default an absent integer reads as 0,
// not def; use WithFallback(FallbackDefault) to read def instead.
func Integer(key string, def int) Descriptor[int] {
	return newDescriptor(key, KindInteger, def)
}

// Double declares a float64 setting. Absence reads as 0 unless
// WithFallback(FallbackDefault) is used.
func Double(key string, def float64) Descriptor[float64] {
	return newDescriptor(key, KindDouble, def)
}

// Float declares a float32 setting. It shares the double representation in
// the store, so a Double and a Float descriptor over one key read the same
// value. Absence reads as 0 unless WithFallback(FallbackDefault) is used.
func Float(key string, def float32) Descriptor[float32] {
	return newDescriptor(key, KindFloat, def)
}

// Bool declares a bool setting. Absence reads as false unless
// WithFallback(FallbackDefault) is used.
func Bool(key string, def bool) Descriptor[bool] {
	return newDescriptor(key, KindBool, def)
}

// Blob declares a []byte setting.
func Blob(key string, def []byte) Descriptor[[]byte] {
	return newDescriptor(key, KindBlob, bytes.Clone(def))
}

// URI declares a *url.URL setting. def may be nil.
func URI(key string, def *url.URL) Descriptor[*url.URL] {
	return newDescriptor(key, KindURI, cloneURL(def))
}

// Key returns the store key.
func (d Descriptor[V]) Key() string { return d.key }

// Kind returns the setting kind.
func (d Descriptor[V]) Kind() Kind { return d.kind }

// Default returns the default value.
func (d Descriptor[V]) Default() V { return d.cloneDefault() }

// Fallback returns the absence policy.
func (d Descriptor[V]) Fallback() Fallback { return d.fallback }

// WithFallback returns a copy of d using the given absence policy.
func (d Descriptor[V]) WithFallback(f Fallback) Descriptor[V] {
	d.fallback = f

	return d
}

// RawDefault returns the default as it would be persisted.
func (d Descriptor[V]) RawDefault() store.Value {
	return d.encode(d.def)
}

// Cases returns the persisted form of the declared enum cases, nil for
// other kinds or for enums declared without cases.
func (d Descriptor[V]) Cases() []store.Value {
	if d.enum == nil {
		return nil
	}

	out := make([]store.Value, 0, len(d.enum.cases))
	for _, c := range d.enum.cases {
		out = append(out, d.encode(c))
	}

	return out
}

func (d Descriptor[V]) cloneDefault() V {
	switch d.kind { //nolint:exhaustive
	case KindBlob:
		return as[V](bytes.Clone(as[[]byte](d.def)))
	case KindURI:
		return as[V](cloneURL(as[*url.URL](d.def)))
	default:
		return d.def
	}
}

// as converts x to V. Constructors guarantee the kind and V agree.
func as[V any](x any) V {
	v, _ := x.(V)

	return v
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}

	c := *u

	return &c
}
