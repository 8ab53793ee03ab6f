package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
)

// JSON-Schema keywords the engine reads or rewrites.
const (
	KeyRef        = "$ref"
	KeyType       = "type"
	KeyItems      = "items"
	KeyProperties = "properties"
	KeyRequired   = "required"
)

// Schema is one JSON-Schema object held as a generic JSON tree. Every keyword
// is kept, siblings of a $ref included, and numbers stay json.Number so a
// schema serializes with the values it was received with.
type Schema map[string]any

var (
	errEmptySchema = errors.New("empty schema body")
	errNotAnObject = errors.New("schema body is not a JSON object")
)

// DecodeSchema parses a schema blob. An absent or null blob yields a nil
// Schema; a blob that is not a JSON object is an error.
func DecodeSchema(raw json.RawMessage) (Schema, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, errNotAnObject
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return Schema(out), nil
}

// Ref returns the $ref of the node, or "".
func (s Schema) Ref() string {
	ref, _ := s[KeyRef].(string)
	return ref
}

// Child returns the object stored under key. The child shares storage with s,
// so changes made through it are visible in s.
func (s Schema) Child(key string) (Schema, bool) {
	m, ok := s[key].(map[string]any)
	return Schema(m), ok
}

// Set stores child under key.
func (s Schema) Set(key string, child Schema) {
	s[key] = map[string]any(child)
}

// HasType reports whether the type keyword names t, either as a string or as
// one member of a type list.
func (s Schema) HasType(t string) bool {
	switch v := s[KeyType].(type) {
	case string:
		return v == t
	case []any:
		for _, item := range v {
			if name, ok := item.(string); ok && name == t {
				return true
			}
		}
	}
	return false
}

// Keys returns the keys of s in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone deep-copies the tree so substitutions never alias the original.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	return Schema(cloneValue(map[string]any(s)).(map[string]any))
}

// Encode serializes s as compact JSON without HTML escaping. A nil Schema
// encodes to "".
func (s Schema) Encode() (string, error) {
	if s == nil {
		return "", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(s)); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case Schema:
		return cloneValue(map[string]any(x))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
