// Package document decodes registry JSON payloads and gives typed access to
// their fields. Required fields fail with a *MalformedError; optional fields
// collapse missing or mistyped values to "absent".
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/StinkyLord/spdx-update/internal/model"
)

// ErrMalformed matches every schema violation reported by this package.
var ErrMalformed = errors.New("malformed document")

// MalformedError describes a schema violation: which key, inside which
// structure, and what was wrong with it.
type MalformedError struct {
	Path    string // Containing structure, e.g. "licenses.json" or "licenses[12]"
	Key     string // Offending key; empty when the structure itself is wrong
	Problem string
}

func (e *MalformedError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s: %s", ErrMalformed, e.Path, e.Problem)
	}
	return fmt.Sprintf("%s: %s: %q %s", ErrMalformed, e.Path, e.Key, e.Problem)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// Object is a decoded JSON object together with its location in the payload.
type Object struct {
	path   string
	fields map[string]any
}

// Decode reads one JSON payload and requires it to be an object. name is used
// as the root path in error messages.
func Decode(r io.Reader, name string) (Object, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return Object{}, &MalformedError{Path: name, Problem: fmt.Sprintf("invalid JSON: %v", err)}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return Object{}, &MalformedError{Path: name, Problem: fmt.Sprintf("is %s, want object", kind(v))}
	}
	return Object{path: name, fields: m}, nil
}

// NewObject wraps an already decoded map.
func NewObject(path string, fields map[string]any) Object {
	return Object{path: path, fields: fields}
}

// Path returns the location of the object inside its payload.
func (o Object) Path() string { return o.path }

// Len returns the number of keys in the object.
func (o Object) Len() int { return len(o.fields) }

// Value returns a required field of any type.
func (o Object) Value(key string) (any, error) {
	v, ok := o.fields[key]
	if !ok {
		return nil, &MalformedError{Path: o.path, Key: key, Problem: "is missing"}
	}
	return v, nil
}

// String returns a required string field.
func (o Object) String(key string) (string, error) {
	v, err := o.Value(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", o.mistyped(key, v, "string")
	}
	return s, nil
}

// OptString returns an optional string field. Absent or non-string values
// report false.
func (o Object) OptString(key string) (string, bool) {
	s, ok := o.fields[key].(string)
	return s, ok
}

// OptBool returns an optional boolean field. Absent or non-boolean values are
// model.Absent.
func (o Object) OptBool(key string) model.OptBool {
	b, ok := o.fields[key].(bool)
	switch {
	case !ok:
		return model.Absent
	case b:
		return model.True
	default:
		return model.False
	}
}

// Objects returns a required array field whose elements must all be objects.
func (o Object) Objects(key string) ([]Object, error) {
	v, err := o.Value(key)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, o.mistyped(key, v, "array")
	}

	out := make([]Object, 0, len(arr))
	for i, elem := range arr {
		path := fmt.Sprintf("%s[%d]", key, i)
		m, ok := elem.(map[string]any)
		if !ok {
			return nil, &MalformedError{Path: path, Problem: fmt.Sprintf("is %s, want object", kind(elem))}
		}
		out = append(out, Object{path: path, fields: m})
	}
	return out, nil
}

func (o Object) mistyped(key string, v any, want string) error {
	return &MalformedError{Path: o.path, Key: key, Problem: fmt.Sprintf("is %s, want %s", kind(v), want)}
}

// kind names the JSON type of a decoded value.
func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
