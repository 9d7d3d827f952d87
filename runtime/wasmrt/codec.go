package wasmrt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

var (
	// ErrUnknownCase is returned when a tag names no case of the union.
	ErrUnknownCase = errors.New("unknown variant")
	// ErrEmptyUnion is returned when a union value has no case set.
	ErrEmptyUnion = errors.New("no variant set")
	// ErrAmbiguousUnion is returned when more than one case is set.
	ErrAmbiguousUnion = errors.New("more than one variant set")
	// ErrNotTagged is returned when the payload is not a single-member object.
	ErrNotTagged = errors.New("expected an object with exactly one member")
	// ErrMissingField is returned when a required member is absent.
	ErrMissingField = errors.New("missing field")
)

// Encode marshals v with the wire options used by generated code.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}

// EncodeCase produces the externally tagged form {"tag": body}.
func EncodeCase(tag string, body any) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return nil, err
	}
	if err := enc.WriteToken(jsontext.String(tag)); err != nil {
		return nil, err
	}
	if err := json.MarshalEncode(enc, body, json.Deterministic(true)); err != nil {
		return nil, fmt.Errorf("%s: %w", tag, err)
	}
	if err := enc.WriteToken(jsontext.EndObject); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeCase splits {"tag": body}. Anything but an object with exactly one
// member is rejected.
func DecodeCase(data []byte) (string, jsontext.Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	tok, err := dec.ReadToken()
	if err != nil {
		return "", nil, err
	}
	if tok.Kind() != jsontext.KindBeginObject {
		return "", nil, fmt.Errorf("%w, got %s", ErrNotTagged, tok.Kind())
	}
	if dec.PeekKind() == jsontext.KindEndObject {
		return "", nil, fmt.Errorf("%w, got {}", ErrNotTagged)
	}
	// токены и значения декодера живут только до следующего вызова ReadToken/ReadValue
	nameTok, err := dec.ReadToken()
	if err != nil {
		return "", nil, err
	}
	tag := nameTok.String()
	raw, err := dec.ReadValue()
	if err != nil {
		return "", nil, err
	}
	body := raw.Clone()
	if dec.PeekKind() != jsontext.KindEndObject {
		return "", nil, fmt.Errorf("%w after %q", ErrNotTagged, tag)
	}
	if _, err := dec.ReadToken(); err != nil {
		return "", nil, err
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		return "", nil, fmt.Errorf("%w: trailing data after the object", ErrNotTagged)
	}
	return tag, body, nil
}

// DecodeStrict unmarshals body into v rejecting unknown members.
func DecodeStrict(body []byte, v any) error {
	return json.Unmarshal(body, v, json.RejectUnknownMembers(true))
}

// DecodeRequired is DecodeStrict plus a presence check: every name in
// required must be a member of the body object.
func DecodeRequired(body []byte, v any, required ...string) error {
	if err := DecodeStrict(body, v); err != nil {
		return err
	}
	if len(required) == 0 {
		return nil
	}
	dec := jsontext.NewDecoder(bytes.NewReader(body))
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != jsontext.KindBeginObject {
		return fmt.Errorf("%w %q", ErrMissingField, required[0])
	}
	present := make(map[string]bool, len(required))
	for dec.PeekKind() != jsontext.KindEndObject {
		nameTok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		present[nameTok.String()] = true
		if err := dec.SkipValue(); err != nil {
			return err
		}
	}
	for _, name := range required {
		if !present[name] {
			return fmt.Errorf("%w %q", ErrMissingField, name)
		}
	}
	return nil
}

// TryDecode allocates a fresh *T and keeps it in dst only if body decodes.
// Generated code uses it when several wrappers share one tag.
func TryDecode[T any](body []byte, dst **T) bool {
	v := new(T)
	if err := DecodeStrict(body, v); err != nil {
		return false
	}
	*dst = v
	return true
}

// ExactlyOne validates the case set of a union value before encoding.
func ExactlyOne(union string, set ...bool) error {
	n := 0
	for _, s := range set {
		if s {
			n++
		}
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s: %w", union, ErrEmptyUnion)
	}
	return fmt.Errorf("%s: %w (%d)", union, ErrAmbiguousUnion, n)
}

// UnknownCase reports a tag that is not one of known.
func UnknownCase(union, tag string, known ...string) error {
	if len(known) == 0 {
		return fmt.Errorf("%s: %w %q, the union has no variants", union, ErrUnknownCase, tag)
	}
	return fmt.Errorf("%s: %w %q, expected one of %s", union, ErrUnknownCase, tag, strings.Join(known, ", "))
}

// EmptyUnion is the error for a union value with no case set.
func EmptyUnion(union string) error {
	return fmt.Errorf("%s: %w", union, ErrEmptyUnion)
}

// ToBinary serialises a typed query response.
func ToBinary[T any](v T, err error) (Binary, error) {
	if err != nil {
		return nil, err
	}
	out, err := Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode query response: %w", err)
	}
	return out, nil
}

// FromBinary decodes a query response produced by ToBinary.
func FromBinary[T any](b Binary) (T, error) {
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode query response: %w", err)
	}
	return out, nil
}
