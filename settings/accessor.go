package settings

import (
	"net/url"

	"github.com/pkg/errors"

	"github.com/settingskit/settingskit/store"
)

var (
	// ErrKindMismatch is returned by SetRaw when the value kind does not match the setting.
	ErrKindMismatch = errors.New("value kind does not match setting kind")

	// ErrUnknownCase is returned by SetRaw when an enum raw value is not a declared case.
	ErrUnknownCase = errors.New("raw value is not a case of the enumeration")
)

// Value reads the setting from s. It returns the stored value when one of
// the right kind is present and, for enums, names a known case; otherwise
// it returns the fallback.
func (d Descriptor[V]) Value(s Source) V {
	raw, ok := s.Object(d.key)
	if !ok {
		return d.absent()
	}

	v, ok := d.decode(raw)
	if !ok {
		return d.absent()
	}

	return v
}

// Set writes v to s. Enumerated values are persisted as their raw value.
func (d Descriptor[V]) Set(s Store, v V) {
	s.Set(d.key, d.encode(v))
}

// Reset removes the setting from s, so the next read returns the fallback.
func (d Descriptor[V]) Reset(s Store) {
	s.Remove(d.key)
}

// EffectiveValue returns the persisted form of what Value would return.
func (d Descriptor[V]) EffectiveValue(s Source) store.Value {
	return d.encode(d.Value(s))
}

// SetRaw writes an already persisted-form value after checking that it
// decodes to a V.
func (d Descriptor[V]) SetRaw(s Store, raw store.Value) error {
	if raw.Kind() != d.kind.Storage() {
		return errors.Wrapf(ErrKindMismatch, "setting %q is %s, got %s", d.key, d.kind, raw.Kind())
	}

	if _, ok := d.decode(raw); !ok {
		return errors.Wrapf(ErrUnknownCase, "setting %q: %v", d.key, raw.Interface())
	}

	s.Set(d.key, raw)

	return nil
}

// absent resolves the fallback for a missing or unusable stored value.
func (d Descriptor[V]) absent() V {
	var zero V

	switch d.fallback {
	case FallbackZero:
		return zero
	case FallbackDefault:
		return d.cloneDefault()
	default:
		if d.kind.ZeroOnAbsence() {
			return zero
		}

		return d.cloneDefault()
	}
}

// decode maps a stored value to V. It is the single place where each
// kind is mapped to its store representation on read.
func (d Descriptor[V]) decode(raw store.Value) (V, bool) {
	var zero V

	switch d.kind {
	case KindString:
		s, ok := raw.AsString()

		return as[V](s), ok
	case KindInteger:
		n, ok := raw.AsInteger()

		return as[V](n), ok
	case KindDouble:
		f, ok := raw.AsDouble()

		return as[V](f), ok
	case KindFloat:
		f, ok := raw.AsDouble()

		return as[V](float32(f)), ok
	case KindBool:
		b, ok := raw.AsBool()

		return as[V](b), ok
	case KindBlob:
		b, ok := raw.AsBlob()

		return as[V](b), ok
	case KindURI:
		u, ok := raw.AsURI()

		return as[V](u), ok
	case KindEnumInt:
		n, ok := raw.AsInteger()
		if !ok {
			return zero, false
		}

		e := d.enum.fromInt(n)

		return e, d.enum.known(e)
	case KindEnumString:
		s, ok := raw.AsString()
		if !ok {
			return zero, false
		}

		e := d.enum.fromStr(s)

		return e, d.enum.known(e)
	default:
		return zero, false
	}
}

// encode maps V to its stored value, the write side of decode.
func (d Descriptor[V]) encode(v V) store.Value {
	switch d.kind {
	case KindString:
		return store.String(as[string](v))
	case KindInteger:
		return store.Integer(as[int](v))
	case KindDouble:
		return store.Double(as[float64](v))
	case KindFloat:
		return store.Double(float64(as[float32](v)))
	case KindBool:
		return store.Bool(as[bool](v))
	case KindBlob:
		return store.Blob(as[[]byte](v))
	case KindURI:
		return store.URI(as[*url.URL](v))
	case KindEnumInt:
		return store.Integer(d.enum.toInt(v))
	case KindEnumString:
		return store.String(d.enum.toStr(v))
	default:
		return store.Value{}
	}
}
