package settings

// Reader is the read-only view of a setting. Every Descriptor is a Reader.
type Reader[V any] interface {
	Key() string
	Kind() Kind
	Default() V
	Value(s Source) V
}

// ReadOnly wraps d so that holders of the result can read the setting but
// can not recover the descriptor to write or reset it.
func ReadOnly[V any](d Descriptor[V]) Reader[V] {
	return readOnly[V]{d: d}
}

type readOnly[V any] struct {
	d Descriptor[V]
}

func (r readOnly[V]) Key() string { return r.d.Key() }

func (r readOnly[V]) Kind() Kind { return r.d.Kind() }

func (r readOnly[V]) Default() V { return r.d.Default() }

func (r readOnly[V]) Value(s Source) V { return r.d.Value(s) }
