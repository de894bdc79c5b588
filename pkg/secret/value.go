package secret

import "gopkg.in/yaml.v3"

// Kind identifies what a Value represents, purely for labeling in
// redacted output and envelope metadata.
type Kind string

const (
	KindAPIToken    Kind = "api_token"
	KindPassword    Kind = "password"
	KindPrivateKey  Kind = "private_key"
	redactedDisplay      = "[REDACTED]"
)

// Value wraps a piece of credential material. The zero value is not
// usable; construct one with New.
type Value struct {
	kind  Kind
	bytes []byte
}

// New wraps plaintext as a secret Value of the given kind. The caller's
// slice is copied so later mutation of the original does not affect
// the wrapper.
func New(kind Kind, plaintext []byte) *Value {
	cp := make([]byte, len(plaintext))
	copy(cp, plaintext)
	return &Value{kind: kind, bytes: cp}
}

// NewString is a convenience wrapper for string-typed secrets.
func NewString(kind Kind, plaintext string) *Value {
	return New(kind, []byte(plaintext))
}

// Kind reports what this value represents.
func (v *Value) Kind() Kind {
	if v == nil {
		return ""
	}
	return v.kind
}

// Expose returns the wrapped plaintext. Call this only immediately
// before handing the value to a subprocess, template, or network call.
func (v *Value) Expose() []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v.bytes))
	copy(out, v.bytes)
	return out
}

// ExposeString is Expose as a string.
func (v *Value) ExposeString() string {
	return string(v.Expose())
}

// Equal reports whether two wrappers are the same instance. Secrets
// are never compared by content.
func (v *Value) Equal(other *Value) bool {
	return v == other
}

// String always returns a redacted placeholder, never the wrapped
// value, so that logging a Value by accident cannot leak it.
func (v *Value) String() string {
	if v == nil {
		return redactedDisplay
	}
	return redactedDisplay + ":" + string(v.kind)
}

// GoString matches String so that %#v in logs/tests redacts too.
func (v *Value) GoString() string { return v.String() }

// MarshalJSON always emits the redacted placeholder. Persisting a
// Value's real content requires going through a Sealer and an
// Envelope instead.
func (v *Value) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedDisplay + `"`), nil
}

// MarshalYAML mirrors MarshalJSON for yaml.v3 encoding.
func (v *Value) MarshalYAML() (interface{}, error) {
	return redactedDisplay, nil
}

// UnmarshalYAML reads a config-file secret as a plain scalar string.
// The resulting Value has no Kind yet (config loaders call WithKind
// immediately after decoding, once the field's identity is known).
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v.bytes = []byte(s)
	return nil
}

// WithKind labels a Value with its Kind if it does not already have
// one, and returns itself for chaining. Used by config loaders right
// after a generic YAML decode, where the field identity (api token vs.
// password) is known even though the decoder isn't.
func (v *Value) WithKind(k Kind) *Value {
	if v == nil {
		return nil
	}
	if v.kind == "" {
		v.kind = k
	}
	return v
}
