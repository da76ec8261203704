// Package yaml provides a YAML parser implementation for the config package.
//
// This package uses github.com/goccy/go-yaml with ordered map decoding so the
// resulting tree keeps the key order of the document. Only plain YAML values
// are meaningful to the loader: strings, numbers, booleans, null, sequences
// and mappings.
//
// Usage:
//
//	parser := yaml.NewParser()
//	cfg, err := parser.Parse(data)
//
// Decoding rules:
//   - Empty or comment-only document -> empty tree
//   - Root mapping -> tree with nested mappings as nested trees
//   - Root scalar or sequence -> ErrNotMapping
package yaml
