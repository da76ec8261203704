package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	filefetcher "github.com/0xalexb/hjarta-config/config/fetcher/file"
	jsonparser "github.com/0xalexb/hjarta-config/config/parser/json"
	yamlparser "github.com/0xalexb/hjarta-config/config/parser/yaml"
	"github.com/0xalexb/hjarta-config/config/tree"
	"github.com/0xalexb/hjarta-config/logging"
)

// FileError records a configuration file that exists but could not be used.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("config file %s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// MergeResult is the outcome of merging a list of files.
type MergeResult struct {
	Tree    *tree.Tree
	Loaded  []string
	Missing []string
	Errors  []FileError
}

// FetcherFunc opens the file at path.
type FetcherFunc func(path string) (DataFetcher, error)

// FileMerger reads configuration files in order and deep-merges them.
type FileMerger struct {
	logger  *slog.Logger
	fetch   FetcherFunc
	parsers map[Format]Parser
}

// MergerOption configures a FileMerger.
type MergerOption func(*FileMerger)

// WithParser registers the parser used for format.
func WithParser(format Format, parser Parser) MergerOption {
	return func(m *FileMerger) {
		if format != FormatAuto && parser != nil {
			m.parsers[format] = parser
		}
	}
}

// WithFetcher replaces the file reader, for sources other than the local disk.
func WithFetcher(fetch FetcherFunc) MergerOption {
	return func(m *FileMerger) {
		if fetch != nil {
			m.fetch = fetch
		}
	}
}

// WithMaxFileSize limits the size of each file read from disk. Larger files
// are reported in MergeResult.Errors. Non-positive values keep file.DefaultMaxSize.
func WithMaxFileSize(size int64) MergerOption {
	return func(m *FileMerger) {
		m.fetch = func(path string) (DataFetcher, error) {
			return openFile(path, filefetcher.WithMaxSize(size))
		}
	}
}

// NewFileMerger creates a FileMerger reading from disk with the YAML and JSON parsers.
func NewFileMerger(logger *slog.Logger, opts ...MergerOption) *FileMerger {
	merger := &FileMerger{
		logger: logging.OrDefault(logger),
		fetch:  readDisk,
		parsers: map[Format]Parser{
			FormatYAML: yamlparser.NewParser(),
			FormatJSON: jsonparser.NewParser(),
		},
	}

	for _, apply := range opts {
		apply(merger)
	}

	return merger
}

// Merge parses files relative to baseDir and merges them left to right, later
// files taking precedence. Missing files are skipped. A file that cannot be
// read or parsed contributes nothing and is reported in MergeResult.Errors.
func (m *FileMerger) Merge(baseDir string, files []string, format Format) MergeResult {
	result := MergeResult{Tree: tree.New()}

	for _, name := range files {
		path := resolvePath(baseDir, name)

		parsed, err := m.load(path, format.For(path))

		switch {
		case errors.Is(err, filefetcher.ErrNotFound):
			m.logger.Info("config file not found, skipping", slog.String("file", path))
			result.Missing = append(result.Missing, path)
		case err != nil:
			m.logger.Warn("config file ignored", slog.String("file", path), slog.Any("error", err))
			result.Errors = append(result.Errors, FileError{Path: path, Err: err})
		default:
			m.logger.Debug("config file loaded", slog.String("file", path), slog.Int("keys", parsed.Len()))
			result.Loaded = append(result.Loaded, path)
			result.Tree = tree.Merge(result.Tree, parsed)
		}
	}

	return result
}

func (m *FileMerger) load(path string, format Format) (*tree.Tree, error) {
	fetcher, err := m.fetch(path)
	if err != nil {
		return nil, err
	}

	data, err := fetcher.Fetch()
	if err != nil {
		return nil, fmt.Errorf("reading data error: %w", err)
	}

	parser, ok := m.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	parsed, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s error: %w", format, err)
	}

	return parsed, nil
}

func resolvePath(baseDir, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}

	return filepath.Join(baseDir, name)
}

func readDisk(path string) (DataFetcher, error) {
	return openFile(path)
}

func openFile(path string, opts ...filefetcher.Option) (DataFetcher, error) {
	fetcher, err := filefetcher.NewFetcher(path, opts...)()
	if err != nil {
		return nil, err
	}

	return fetcher, nil
}
