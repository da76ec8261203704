package secret

import (
	"context"
	"errors"
	"slices"
)

// ErrNotFound is returned by providers when the backend holds no value for a reference.
var ErrNotFound = errors.New("secret not found")

// ErrInvalidReference is returned when a provider is asked to resolve a string
// that does not match its reference syntax.
var ErrInvalidReference = errors.New("invalid secret reference")

// ErrNilClient is returned when a provider is constructed without a backend client.
var ErrNilClient = errors.New("backend client is required")

// ErrProviderPanic is recorded for a reference whose lookup panicked.
var ErrProviderPanic = errors.New("secret provider panicked")

// Provider recognizes and resolves provider-native secret reference strings.
//
// Contract:
//   - IsSecretReference is a pure syntactic check with no side effects.
//   - ResolveSecret performs one backend lookup and returns backend errors
//     wrapped but otherwise unchanged. Retries belong to the backend client.
//   - Implementations must be safe for concurrent use when the backend client is.
//   - Implementations must not log secret values.
type Provider interface {
	IsSecretReference(value string) bool
	ResolveSecret(ctx context.Context, ref string) (Value, error)
}

// Value is a resolved secret: either a single string or, for path-prefix
// lookups, an ordered list of strings.
type Value struct {
	text  string
	list  []string
	multi bool
}

// Text returns a single-string Value.
func Text(value string) Value {
	return Value{text: value, list: nil, multi: false}
}

// List returns a multi-value Value holding values in order.
func List(values []string) Value {
	return Value{text: "", list: slices.Clone(values), multi: true}
}

// IsList reports whether the value came from a multi-value lookup.
func (v Value) IsList() bool {
	return v.multi
}

// Text returns the single string value. It is empty for list values.
func (v Value) Text() string {
	return v.text
}

// Values returns the list of values, or a one-element list for single values.
func (v Value) Values() []string {
	if v.multi {
		return slices.Clone(v.list)
	}

	return []string{v.text}
}

// treeValue returns the representation stored in a configuration tree:
// a string, or an []any of strings.
func (v Value) treeValue() any {
	if !v.multi {
		return v.text
	}

	out := make([]any, len(v.list))
	for i, item := range v.list {
		out[i] = item
	}

	return out
}
