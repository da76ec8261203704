package tree

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Tree is an ordered mapping from string keys to configuration values.
// Values are scalars (string, numbers, bool, nil), []any arrays or nested *Tree.
// A nil *Tree behaves as an empty tree for read operations.
type Tree struct {
	keys   []string
	values map[string]any
}

// New creates an empty Tree.
func New() *Tree {
	return &Tree{
		keys:   nil,
		values: make(map[string]any),
	}
}

// FromMap builds a Tree from a plain map. Keys are inserted in sorted order
// since Go maps carry no order of their own. Nested maps become nested trees.
func FromMap(src map[string]any) *Tree {
	out := New()

	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		out.Set(key, fromPlain(src[key]))
	}

	return out
}

func fromPlain(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return FromMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = fromPlain(item)
		}

		return out
	default:
		return value
	}
}

// Len returns the number of keys at the top level.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}

	return len(t.keys)
}

// Keys returns the top-level keys in insertion order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}

	return slices.Clone(t.keys)
}

// Get returns the value stored under key.
func (t *Tree) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}

	value, ok := t.values[key]

	return value, ok
}

// Set stores value under key. New keys are appended, existing keys keep their position.
func (t *Tree) Set(key string, value any) {
	if t.values == nil {
		t.values = make(map[string]any)
	}

	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}

	t.values[key] = value
}

// Range calls fn for every top-level entry in insertion order until fn returns false.
func (t *Tree) Range(fn func(key string, value any) bool) {
	if t == nil {
		return
	}

	for _, key := range t.keys {
		if !fn(key, t.values[key]) {
			return
		}
	}
}

// Find walks nested trees following path and returns the value found there.
// An empty path returns the tree itself.
func (t *Tree) Find(path ...string) (any, bool) {
	if len(path) == 0 {
		return t, t != nil
	}

	current := t

	for i, key := range path {
		value, ok := current.Get(key)
		if !ok {
			return nil, false
		}

		if i == len(path)-1 {
			return value, true
		}

		next, isTree := value.(*Tree)
		if !isTree {
			return nil, false
		}

		current = next
	}

	return nil, false
}

// Clone returns a deep copy of the tree. Nested trees and arrays are copied,
// scalar values are shared.
func (t *Tree) Clone() *Tree {
	out := New()

	t.Range(func(key string, value any) bool {
		out.Set(key, cloneValue(value))

		return true
	})

	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case *Tree:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}

		return out
	case []string:
		return slices.Clone(typed)
	default:
		return value
	}
}

// ToMap converts the tree into plain nested maps, dropping key order.
func (t *Tree) ToMap() map[string]any {
	out := make(map[string]any, t.Len())

	t.Range(func(key string, value any) bool {
		out[key] = toPlain(value)

		return true
	})

	return out
}

func toPlain(value any) any {
	switch typed := value.(type) {
	case *Tree:
		return typed.ToMap()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = toPlain(item)
		}

		return out
	default:
		return value
	}
}

// MarshalJSON encodes the tree as a JSON object preserving key order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range t.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", key, err)
		}

		encodedValue, err := json.Marshal(t.values[key])
		if err != nil {
			return nil, fmt.Errorf("encoding value of %q: %w", key, err)
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalYAML encodes the tree as an ordered YAML mapping.
func (t *Tree) MarshalYAML() (any, error) {
	return toMapSlice(t), nil
}

func toMapSlice(t *Tree) yaml.MapSlice {
	out := make(yaml.MapSlice, 0, t.Len())

	t.Range(func(key string, value any) bool {
		out = append(out, yaml.MapItem{Key: key, Value: toOrdered(value)})

		return true
	})

	return out
}

func toOrdered(value any) any {
	switch typed := value.(type) {
	case *Tree:
		return toMapSlice(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = toOrdered(item)
		}

		return out
	default:
		return value
	}
}
