package store

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// Kind is the primitive kind of a stored value.
type Kind int

const (
	// KindInvalid is the zero Kind. No stored value carries it.
	KindInvalid Kind = iota
	// KindString is a UTF-8 string.
	KindString
	// KindInteger is a signed integer.
	KindInteger
	// KindDouble is a float64.
	KindDouble
	// KindBool is a boolean.
	KindBool
	// KindBlob is an opaque byte slice.
	KindBlob
	// KindURI is an absolute or relative URL.
	KindURI
)

var kindNames = map[Kind]string{ //nolint:gochecknoglobals
	KindString:  "string",
	KindInteger: "integer",
	KindDouble:  "double",
	KindBool:    "bool",
	KindBlob:    "blob",
	KindURI:     "uri",
}

// String returns the kind name used in the wire envelope.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "invalid"
}

// ParseKind returns the Kind for the given name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}

	return KindInvalid, errors.Wrapf(ErrUnknownKind, "kind %q", name)
}

// Value is a tagged union holding exactly one stored kind.
// The zero Value is invalid and is never persisted.
type Value struct {
	kind Kind
	str  string
	num  int
	dbl  float64
	flag bool
	blob []byte
	uri  *url.URL
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Integer returns an integer value.
func Integer(n int) Value { return Value{kind: KindInteger, num: n} }

// Double returns a float64 value.
func Double(f float64) Value { return Value{kind: KindDouble, dbl: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Blob returns a blob value. The slice is copied.
func Blob(b []byte) Value {
	return Value{kind: KindBlob, blob: bytes.Clone(b)}
}

// URI returns a URI value. A nil URL yields the invalid Value.
func URI(u *url.URL) Value {
	if u == nil {
		return Value{}
	}

	c := *u

	return Value{kind: KindURI, uri: &c}
}

// Kind reports which kind v holds.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsInteger returns the integer held by v.
func (v Value) AsInteger() (int, bool) { return v.num, v.kind == KindInteger }

// AsDouble returns the float64 held by v.
func (v Value) AsDouble() (float64, bool) { return v.dbl, v.kind == KindDouble }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

// AsBlob returns a copy of the bytes held by v.
func (v Value) AsBlob() ([]byte, bool) {
	if v.kind != KindBlob {
		return nil, false
	}

	return bytes.Clone(v.blob), true
}

// AsURI returns a copy of the URL held by v.
func (v Value) AsURI() (*url.URL, bool) {
	if v.kind != KindURI {
		return nil, false
	}

	c := *v.uri

	return &c, true
}

// Interface returns the held value as a plain Go value
// (string, int, float64, bool, []byte or string URL), or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.num
	case KindDouble:
		return v.dbl
	case KindBool:
		return v.flag
	case KindBlob:
		return bytes.Clone(v.blob)
	case KindURI:
		return v.uri.String()
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same kind and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindBlob:
		return bytes.Equal(v.blob, o.blob)
	case KindURI:
		return v.uri.String() == o.uri.String()
	case KindDouble:
		return v.dbl == o.dbl || (math.IsNaN(v.dbl) && math.IsNaN(o.dbl))
	default:
		return v.Interface() == o.Interface()
	}
}

// envelope is the persisted form of a Value.
type envelope struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// Marshal encodes v into its persisted form.
func Marshal(v Value) ([]byte, error) {
	if !v.IsValid() {
		return nil, ErrInvalidValue
	}

	payload := v.Interface()
	if v.kind == KindDouble && !isFinite(v.dbl) {
		// JSON numbers cannot carry these; they travel as "+Inf", "-Inf" or "NaN".
		payload = strconv.FormatFloat(v.dbl, 'g', -1, 64)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode value")
	}

	return json.Marshal(envelope{Kind: v.kind.String(), Value: raw}) //nolint:wrapcheck
}

// Unmarshal decodes a persisted value.
func Unmarshal(data []byte) (Value, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Value{}, errors.Wrap(ErrMalformedPayload, err.Error())
	}

	kind, err := ParseKind(env.Kind)
	if err != nil {
		return Value{}, err
	}

	switch kind {
	case KindString:
		var s string
		err = json.Unmarshal(env.Value, &s)

		return String(s), wrapDecode(err)
	case KindInteger:
		var n int
		err = json.Unmarshal(env.Value, &n)

		return Integer(n), wrapDecode(err)
	case KindDouble:
		return decodeDouble(env.Value)
	case KindBool:
		var b bool
		err = json.Unmarshal(env.Value, &b)

		return Bool(b), wrapDecode(err)
	case KindBlob:
		var b []byte
		err = json.Unmarshal(env.Value, &b)

		return Blob(b), wrapDecode(err)
	case KindURI:
		var s string
		if err = json.Unmarshal(env.Value, &s); err != nil {
			return Value{}, wrapDecode(err)
		}

		u, perr := url.Parse(s)
		if perr != nil {
			return Value{}, wrapDecode(perr)
		}

		return URI(u), nil
	default:
		return Value{}, ErrUnknownKind
	}
}

func wrapDecode(err error) error {
	if err == nil {
		return nil
	}

	return errors.Wrap(ErrMalformedPayload, err.Error())
}

func isFinite(f float64) bool { return !math.IsInf(f, 0) && !math.IsNaN(f) }

func decodeDouble(raw json.RawMessage) (Value, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return Double(f), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Value{}, wrapDecode(err)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || isFinite(f) {
		return Value{}, errors.Wrapf(ErrMalformedPayload, "double %q", s)
	}

	return Double(f), nil
}
