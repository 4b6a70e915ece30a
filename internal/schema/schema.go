// Package schema turns the settings declared in the configuration file into
// a settings.Registry, and converts values to and from their text form.
package schema

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/settings"
	"github.com/settingskit/settingskit/store"
)

var (
	// ErrUnknownKind is returned for a kind name no setting kind matches.
	ErrUnknownKind = errors.New("unknown setting kind")
	// ErrUnknownFallback is returned for an unknown fallback name.
	ErrUnknownFallback = errors.New("unknown fallback")
	// ErrInvalidText is returned when text does not parse as the setting kind.
	ErrInvalidText = errors.New("invalid value text")
	// ErrDefaultNotCase is returned when an enum default is not one of its cases.
	ErrDefaultNotCase = errors.New("enum default is not a declared case")
)

// Build registers a definition for every declared setting.
func Build(decls []config.Setting) (*settings.Registry, error) {
	defs := make([]settings.Definition, 0, len(decls))

	for _, decl := range decls {
		def, err := Define(decl)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "setting %q", decl.Key)
		}

		defs = append(defs, def)
	}

	registry := settings.NewRegistry()
	if err := registry.Register(defs...); err != nil {
		return nil, err
	}

	return registry, nil
}

// Define builds the descriptor for one declared setting.
func Define(decl config.Setting) (settings.Definition, error) {
	kind, ok := settings.ParseKind(decl.Kind)
	if !ok {
		return nil, pkgerrors.Wrap(ErrUnknownKind, decl.Kind)
	}

	fallback, ok := settings.ParseFallback(decl.Fallback)
	if !ok {
		return nil, pkgerrors.Wrap(ErrUnknownFallback, decl.Fallback)
	}

	if decl.Key == "" {
		return nil, settings.ErrInvalidKey
	}

	var def store.Value

	if decl.Default != "" {
		v, err := Parse(kind, decl.Default)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "default")
		}

		def = v
	}

	switch kind {
	case settings.KindString:
		s, _ := def.AsString()

		return settings.String(decl.Key, s).WithFallback(fallback), nil
	case settings.KindInteger:
		n, _ := def.AsInteger()

		return settings.Integer(decl.Key, n).WithFallback(fallback), nil
	case settings.KindDouble:
		f, _ := def.AsDouble()

		return settings.Double(decl.Key, f).WithFallback(fallback), nil
	case settings.KindFloat:
		f, _ := def.AsDouble()

		return settings.Float(decl.Key, float32(f)).WithFallback(fallback), nil
	case settings.KindBool:
		b, _ := def.AsBool()

		return settings.Bool(decl.Key, b).WithFallback(fallback), nil
	case settings.KindBlob:
		b, _ := def.AsBlob()

		return settings.Blob(decl.Key, b).WithFallback(fallback), nil
	case settings.KindURI:
		u, _ := def.AsURI()

		return settings.URI(decl.Key, u).WithFallback(fallback), nil
	case settings.KindEnumInt:
		return defineEnumInt(decl, def, fallback)
	case settings.KindEnumString:
		return defineEnumString(decl, def, fallback)
	default:
		return nil, pkgerrors.Wrap(ErrUnknownKind, decl.Kind)
	}
}

func defineEnumInt(decl config.Setting, def store.Value, fallback settings.Fallback) (settings.Definition, error) {
	cases := make([]int, 0, len(decl.Cases))

	for _, text := range decl.Cases {
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrInvalidText, "case %q", text)
		}

		cases = append(cases, n)
	}

	n, ok := def.AsInteger()
	if !ok && len(cases) > 0 {
		n = cases[0]
	}

	if len(cases) > 0 && !containsCase(cases, n) {
		return nil, pkgerrors.Wrap(ErrDefaultNotCase, strconv.Itoa(n))
	}

	return settings.EnumInt(decl.Key, n, cases...).WithFallback(fallback), nil
}

func defineEnumString(decl config.Setting, def store.Value, fallback settings.Fallback) (settings.Definition, error) {
	s, ok := def.AsString()
	if !ok && len(decl.Cases) > 0 {
		s = decl.Cases[0]
	}

	if len(decl.Cases) > 0 && !containsCase(decl.Cases, s) {
		return nil, pkgerrors.Wrap(ErrDefaultNotCase, s)
	}

	return settings.EnumString(decl.Key, s, decl.Cases...).WithFallback(fallback), nil
}

func containsCase[E comparable](cases []E, v E) bool {
	for _, c := range cases {
		if c == v {
			return true
		}
	}

	return false
}

// Parse converts text to a value of the storage kind of kind. Blobs are
// standard base64, URIs must be absolute. Doubles accept "+Inf", "-Inf"
// and "NaN"; floats must also fit a float32.
func Parse(kind settings.Kind, text string) (store.Value, error) {
	switch kind.Storage() {
	case store.KindString:
		return store.String(text), nil
	case store.KindInteger:
		n, err := strconv.Atoi(text)
		if err != nil {
			return store.Value{}, pkgerrors.Wrapf(ErrInvalidText, "integer %q", text)
		}

		return store.Integer(n), nil
	case store.KindDouble:
		bits := 64
		if kind == settings.KindFloat {
			bits = 32
		}

		f, err := strconv.ParseFloat(text, bits)
		if err != nil {
			return store.Value{}, pkgerrors.Wrapf(ErrInvalidText, "%s %q", kind, text)
		}

		return store.Double(f), nil
	case store.KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return store.Value{}, pkgerrors.Wrapf(ErrInvalidText, "bool %q", text)
		}

		return store.Bool(b), nil
	case store.KindBlob:
		b, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return store.Value{}, pkgerrors.Wrapf(ErrInvalidText, "blob %q", text)
		}

		return store.Blob(b), nil
	case store.KindURI:
		u, err := url.Parse(text)
		if err != nil || !u.IsAbs() {
			return store.Value{}, pkgerrors.Wrapf(ErrInvalidText, "uri %q", text)
		}

		return store.URI(u), nil
	default:
		return store.Value{}, pkgerrors.Wrap(ErrUnknownKind, kind.String())
	}
}

// FormatFor renders v as a value of a setting of the given kind. It differs
// from Format only for floats, which render at float32 precision.
func FormatFor(kind settings.Kind, v store.Value) string {
	if f, ok := v.AsDouble(); ok && kind == settings.KindFloat {
		return strconv.FormatFloat(f, 'g', -1, 32)
	}

	return Format(v)
}

// Format renders v in the text form Parse accepts. The invalid value
// renders as the empty string.
func Format(v store.Value) string {
	switch v.Kind() {
	case store.KindString:
		s, _ := v.AsString()

		return s
	case store.KindInteger:
		n, _ := v.AsInteger()

		return strconv.Itoa(n)
	case store.KindDouble:
		f, _ := v.AsDouble()

		return strconv.FormatFloat(f, 'g', -1, 64)
	case store.KindBool:
		b, _ := v.AsBool()

		return strconv.FormatBool(b)
	case store.KindBlob:
		b, _ := v.AsBlob()

		return base64.StdEncoding.EncodeToString(b)
	case store.KindURI:
		u, _ := v.AsURI()

		return u.String()
	default:
		return ""
	}
}
