package settings

import (
	"github.com/settingskit/settingskit/store"
)

// Kind is the value kind of a setting.
type Kind int

const (
	// KindString is a string setting.
	KindString Kind = iota + 1
	// KindInteger is an int setting.
	KindInteger
	// KindDouble is a float64 setting.
	KindDouble
	// KindFloat is a float32 setting persisted as a store double.
	KindFloat
	// KindBool is a bool setting.
	KindBool
	// KindBlob is a []byte setting.
	KindBlob
	// KindURI is a *url.URL setting.
	KindURI
	// KindEnumInt is an enumerated setting persisted as its integer raw value.
	KindEnumInt
	// KindEnumString is an enumerated setting persisted as its string raw value.
	KindEnumString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBlob:
		return "blob"
	case KindURI:
		return "uri"
	case KindEnumInt:
		return "enumInt"
	case KindEnumString:
		return "enumString"
	default:
		return "invalid"
	}
}

// Storage returns the store kind a setting of kind k is persisted as.
func (k Kind) Storage() store.Kind {
	switch k {
	case KindString, KindEnumString:
		return store.KindString
	case KindInteger, KindEnumInt:
		return store.KindInteger
	case KindDouble, KindFloat:
		return store.KindDouble
	case KindBool:
		return store.KindBool
	case KindBlob:
		return store.KindBlob
	case KindURI:
		return store.KindURI
	default:
		return store.KindInvalid
	}
}

// ZeroOnAbsence reports whether kind k reads as its native zero when
// absent, unless a descriptor overrides it with FallbackDefault.
func (k Kind) ZeroOnAbsence() bool {
	switch k { //nolint:exhaustive
	case KindInteger, KindDouble, KindFloat, KindBool:
		return true
	default:
		return false
	}
}

// Fallback selects what a read returns when no usable value is stored.
type Fallback int

const (
	// FallbackKind applies the kind's own rule: the native zero for integer,
	// double, float and bool settings, the descriptor default for all others.
	FallbackKind Fallback = iota
	// FallbackDefault always returns the descriptor default.
	FallbackDefault
	// FallbackZero always returns the Go zero value of the setting type.
	FallbackZero
)

// String returns the fallback name.
func (f Fallback) String() string {
	switch f {
	case FallbackKind:
		return "kind"
	case FallbackDefault:
		return "default"
	case FallbackZero:
		return "zero"
	default:
		return "invalid"
	}
}

// ParseKind returns the kind named name, as printed by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k := KindString; k <= KindEnumString; k++ {
		if k.String() == name {
			return k, true
		}
	}

	return 0, false
}

// ParseFallback returns the fallback named name. An empty name is FallbackKind.
func ParseFallback(name string) (Fallback, bool) {
	if name == "" {
		return FallbackKind, true
	}

	for f := FallbackKind; f <= FallbackZero; f++ {
		if f.String() == name {
			return f, true
		}
	}

	return 0, false
}
