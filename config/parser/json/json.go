package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/0xalexb/hjarta-config/config/tree"

	"github.com/goccy/go-json"
)

// ErrNotObject is returned when the document root is not a JSON object.
var ErrNotObject = errors.New("document root is not an object")

// errUnexpectedToken is returned when the token stream does not match the
// structure that was already validated.
var errUnexpectedToken = errors.New("unexpected token")

// Parser implements config.Parser interface for JSON data.
// Objects keep their key order; numbers decode the same way the YAML parser
// decodes them (uint64, int64 or float64).
type Parser struct{}

// NewParser creates a new JSON parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes JSON data into a tree.
// Empty or whitespace-only input produces an empty tree.
func (p *Parser) Parse(data []byte) (*tree.Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return tree.New(), nil
	}

	var probe any

	err := json.Unmarshal(data, &probe)
	if err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	switch probe.(type) {
	case nil:
		return tree.New(), nil
	case map[string]any:
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, probe)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	value, err := readValue(decoder)
	if err != nil {
		return nil, fmt.Errorf("decoding object: %w", err)
	}

	out, ok := value.(*tree.Tree)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, value)
	}

	return out, nil
}

func readValue(decoder *json.Decoder) (any, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	return valueFromToken(decoder, token)
}

func valueFromToken(decoder *json.Decoder, token json.Token) (any, error) {
	switch typed := token.(type) {
	case json.Delim:
		switch typed {
		case '{':
			return readObject(decoder)
		case '[':
			return readArray(decoder)
		default:
			return nil, fmt.Errorf("%w: %q", errUnexpectedToken, typed)
		}
	case json.Number:
		// the number may alias the decoder buffer.
		return parseNumber(strings.Clone(string(typed)))
	default:
		return typed, nil
	}
}

func readObject(decoder *json.Decoder) (*tree.Tree, error) {
	out := tree.New()

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}

		if delim, ok := token.(json.Delim); ok && delim == '}' {
			return out, nil
		}

		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", errUnexpectedToken, token)
		}

		value, err := readValue(decoder)
		if err != nil {
			return nil, unexpectedEOF(err)
		}

		out.Set(key, value)
	}
}

func readArray(decoder *json.Decoder) ([]any, error) {
	out := make([]any, 0)

	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}

		if delim, ok := token.(json.Delim); ok && delim == ']' {
			return out, nil
		}

		value, err := valueFromToken(decoder, token)
		if err != nil {
			return nil, err
		}

		out = append(out, value)
	}
}

func parseNumber(text string) (any, error) {
	if !strings.ContainsAny(text, ".eE") {
		if strings.HasPrefix(text, "-") {
			integer, err := strconv.ParseInt(text, 10, 64)
			if err == nil {
				return integer, nil
			}
		} else {
			integer, err := strconv.ParseUint(text, 10, 64)
			if err == nil {
				return integer, nil
			}
		}
	}

	float, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing number %q: %w", text, err)
	}

	return float, nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}
