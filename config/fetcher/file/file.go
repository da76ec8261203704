package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxSize is the largest file a Fetcher reads unless WithMaxSize says otherwise.
const DefaultMaxSize int64 = 8 << 20

var (
	// ErrPathIsDirectory is returned when the path provided to the Fetcher points to a directory instead of a file.
	ErrPathIsDirectory = errors.New("path is a directory, not a file")

	// ErrNotFound is returned when the path provided to the Fetcher does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrTooLarge is returned when the file exceeds the size limit.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Fetcher implements config.DataFetcher interface for file-based configuration.
// It reads configuration data from a file at construction time and caches the contents.
type Fetcher struct {
	filepath string
	data     []byte
}

type settings struct {
	maxSize int64
}

// Option configures how a Fetcher reads its file.
type Option func(*settings)

// WithMaxSize limits the number of bytes read. Non-positive values keep the default.
func WithMaxSize(size int64) Option {
	return func(s *settings) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// NewFetcher returns a constructor function that creates a new file-based Fetcher
// with the specified filepath. The file is read at construction time and cached.
// This pattern is Fx-friendly, allowing the DI container to control when instantiation happens.
// Returns an error wrapping ErrNotFound if the file does not exist,
// ErrPathIsDirectory if the path points to a directory, or ErrTooLarge.
func NewFetcher(fpath string, opts ...Option) func() (*Fetcher, error) {
	cfg := settings{maxSize: DefaultMaxSize}
	for _, apply := range opts {
		apply(&cfg)
	}

	return func() (*Fetcher, error) {
		cleanPath := filepath.Clean(fpath)

		data, err := read(cleanPath, cfg.maxSize)
		if err != nil {
			return nil, err
		}

		return &Fetcher{
			filepath: cleanPath,
			data:     data,
		}, nil
	}
}

func read(path string, maxSize int64) ([]byte, error) {
	file, err := os.Open(path) // #nosec G304 -- configuration paths are chosen by the operator
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open file %q: %w: %w", path, ErrNotFound, err)
		}

		return nil, fmt.Errorf("open file %q: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file %q: %w", path, err)
	}

	if stat.IsDir() {
		return nil, fmt.Errorf("path %q: %w", path, ErrPathIsDirectory)
	}

	if stat.Size() > maxSize {
		return nil, fmt.Errorf("file %q is %d bytes, limit %d: %w", path, stat.Size(), maxSize, ErrTooLarge)
	}

	// The file may grow between Stat and the read.
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading file %q: %w", path, err)
	}

	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file %q exceeds limit %d: %w", path, maxSize, ErrTooLarge)
	}

	return data, nil
}

// Path returns the cleaned path the data was read from.
func (f *Fetcher) Path() string {
	return f.filepath
}

// Fetch returns a copy of the cached configuration data that was read at construction time.
func (f *Fetcher) Fetch() ([]byte, error) {
	result := make([]byte, len(f.data))
	copy(result, f.data)

	return result, nil
}
