package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/0xalexb/hjarta-config/logging"
	"github.com/0xalexb/hjarta-config/secret"
)

// ErrInvalidConcurrency is returned for a negative concurrency limit.
var ErrInvalidConcurrency = errors.New("concurrency must not be negative")

// Options holds the inputs of a single load.
type Options struct {
	// RootDir is the directory files are resolved against. See ResolveBaseDir.
	RootDir string
	// Files are merged in order; later files take precedence.
	Files []string
	// FileType forces one parser for every file. FormatAuto picks by extension.
	FileType Format
	// Provider is used as-is when set, ignoring ProviderKind and Client.
	Provider secret.Provider
	// ProviderKind names the backend to build around Client. See factory.ParseKind.
	ProviderKind string
	// Client is the caller's backend client, matched by its methods when
	// ProviderKind is empty.
	Client any
	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger
	// Concurrency caps parallel secret lookups. Zero means secret.DefaultConcurrency.
	Concurrency int
	// InstallDir overrides the binary location used to find the application root.
	InstallDir string

	mergerOpts []MergerOption
}

// Option defines a function type for applying load options.
type Option func(*Options)

// WithRootDir sets the base directory, absolute, working-directory relative
// or a name under the application root.
func WithRootDir(dir string) Option {
	return func(opts *Options) {
		opts.RootDir = dir
	}
}

// WithFiles appends files to the merge list.
func WithFiles(files ...string) Option {
	return func(opts *Options) {
		opts.Files = append(opts.Files, files...)
	}
}

// WithFileType forces the parser used for every file.
func WithFileType(format Format) Option {
	return func(opts *Options) {
		opts.FileType = format
	}
}

// WithProvider sets the secret provider, overriding kind and client.
func WithProvider(provider secret.Provider) Option {
	return func(opts *Options) {
		opts.Provider = provider
	}
}

// WithProviderKind selects the backend built around the client, e.g. "ssm" or "vault".
func WithProviderKind(kind string) Option {
	return func(opts *Options) {
		opts.ProviderKind = kind
	}
}

// WithClient sets the backend client secrets are fetched with.
func WithClient(client any) Option {
	return func(opts *Options) {
		opts.Client = client
	}
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithConcurrency caps the number of secret lookups in flight. Use 1 for
// backend clients that are not safe for concurrent use.
func WithConcurrency(limit int) Option {
	return func(opts *Options) {
		opts.Concurrency = limit
	}
}

// WithInstallDir sets the directory treated as the binary location.
func WithInstallDir(dir string) Option {
	return func(opts *Options) {
		opts.InstallDir = dir
	}
}

// WithMergerOptions passes options to the FileMerger, e.g. a custom parser.
func WithMergerOptions(mergerOpts ...MergerOption) Option {
	return func(opts *Options) {
		opts.mergerOpts = append(opts.mergerOpts, mergerOpts...)
	}
}

// SetDefaults fills unset fields and reports whether anything changed.
func (o *Options) SetDefaults() bool {
	changed := false

	if o.Logger == nil {
		o.Logger = logging.OrDefault(nil)
		changed = true
	}

	if o.Concurrency == 0 {
		o.Concurrency = secret.DefaultConcurrency
		changed = true
	}

	return changed
}

// Validate rejects option values that can only be programming errors.
func (o *Options) Validate() error {
	if !o.FileType.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, o.FileType)
	}

	if o.Concurrency < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, o.Concurrency)
	}

	return nil
}
