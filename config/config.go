package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/0xalexb/hjarta-config/config/tree"
)

// ErrUnknownFormat is returned for a file type hint other than yaml or json.
var ErrUnknownFormat = errors.New("unknown file format")

// Parser turns raw document bytes into a configuration tree.
type Parser interface {
	Parse(data []byte) (*tree.Tree, error)
}

// DataFetcher defines an interface for reading configuration data.
type DataFetcher interface {
	Fetch() ([]byte, error)
}

// Format names a configuration file syntax.
type Format string

const (
	// FormatAuto selects the parser from each file's extension.
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat maps a file type hint to a Format. Matching ignores case and
// accepts "yml" as YAML. An empty hint yields FormatAuto.
func ParseFormat(hint string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "":
		return FormatAuto, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, hint)
	}
}

// For returns the format used to parse path. An explicit format always wins;
// FormatAuto picks YAML for .yml and .yaml files and JSON for anything else.
func (f Format) For(path string) Format {
	if f != FormatAuto {
		return f
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func (f Format) valid() bool {
	switch f {
	case FormatAuto, FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}
