package yaml

import (
	"errors"
	"fmt"

	"github.com/0xalexb/hjarta-config/config/tree"

	"github.com/goccy/go-yaml"
)

// ErrNotMapping is returned when the document root is not a mapping.
var ErrNotMapping = errors.New("document root is not a mapping")

// Parser implements config.Parser interface for YAML data.
// Mappings are decoded in document order using goccy/go-yaml ordered maps.
type Parser struct{}

// NewParser creates a new YAML parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes YAML data into a tree.
// Empty documents produce an empty tree.
func (p *Parser) Parse(data []byte) (*tree.Tree, error) {
	var document any

	err := yaml.UnmarshalWithOptions(data, &document, yaml.UseOrderedMap())
	if err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	switch root := document.(type) {
	case nil:
		return tree.New(), nil
	case yaml.MapSlice:
		return fromMapSlice(root), nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, document)
	}
}

func fromMapSlice(items yaml.MapSlice) *tree.Tree {
	out := tree.New()

	for _, item := range items {
		out.Set(keyString(item.Key), convert(item.Value))
	}

	return out
}

func convert(value any) any {
	switch typed := value.(type) {
	case yaml.MapSlice:
		return fromMapSlice(typed)
	case map[string]any:
		return tree.FromMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = convert(item)
		}

		return out
	default:
		return value
	}
}

// keyString renders non-string mapping keys (numbers, booleans) the way they
// appear in the document.
func keyString(key any) string {
	if str, ok := key.(string); ok {
		return str
	}

	return fmt.Sprint(key)
}
