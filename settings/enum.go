package settings

// enumCodec converts between an enumerated type and its raw value.
type enumCodec[V any] struct {
	cases   []V
	known   func(V) bool
	fromInt func(int) V
	toInt   func(V) int
	fromStr func(string) V
	toStr   func(V) string
}

// Validator is implemented by enumerated types that can tell whether a
// converted raw value names one of their cases. It is consulted when an
// enum descriptor is declared without an explicit case list.
type Validator interface {
	IsValid() bool
}

// EnumInt declares an enumerated setting persisted as its integer raw value.
// A stored raw value is accepted when it is one of cases; with no cases it
// is accepted when E implements Validator and reports valid, or always.
func EnumInt[E ~int](key string, def E, cases ...E) Descriptor[E] {
	d := newDescriptor(key, KindEnumInt, def)
	d.enum = &enumCodec[E]{
		cases:   cases,
		known:   membership(cases),
		fromInt: func(n int) E { return E(n) },
		toInt:   func(e E) int { return int(e) },
	}

	return d
}

// EnumString declares an enumerated setting persisted as its string raw
// value. Raw values are accepted as for EnumInt.
func EnumString[E ~string](key string, def E, cases ...E) Descriptor[E] {
	d := newDescriptor(key, KindEnumString, def)
	d.enum = &enumCodec[E]{
		cases:   cases,
		known:   membership(cases),
		fromStr: func(s string) E { return E(s) },
		toStr:   func(e E) string { return string(e) },
	}

	return d
}

func membership[E comparable](cases []E) func(E) bool {
	if len(cases) == 0 {
		return func(e E) bool {
			if v, ok := any(e).(Validator); ok {
				return v.IsValid()
			}

			return true
		}
	}

	set := make(map[E]struct{}, len(cases))
	for _, c := range cases {
		set[c] = struct{}{}
	}

	return func(e E) bool {
		_, ok := set[e]

		return ok
	}
}
