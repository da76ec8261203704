// Package json provides a JSON parser implementation for the config package.
//
// The document is validated with github.com/goccy/go-json and then decoded
// token by token so object keys keep their order in the resulting tree.
//
// Usage:
//
//	parser := json.NewParser()
//	cfg, err := parser.Parse(data)
package json
