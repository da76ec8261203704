package config

import (
	"context"
	"errors"
	"log/slog"

	"github.com/0xalexb/hjarta-config/config/tree"
	"github.com/0xalexb/hjarta-config/secret"
	"github.com/0xalexb/hjarta-config/secret/factory"
)

// Result is a loaded configuration and the diagnostics collected on the way.
type Result struct {
	// Tree is the merged and resolved configuration. Never nil.
	Tree *tree.Tree
	// BaseDir is the directory relative file names were resolved against.
	BaseDir string
	// Loaded lists the files that were merged, in order.
	Loaded []string
	// Missing lists the files that did not exist.
	Missing []string
	// FileErrors lists files that existed but could not be read or parsed.
	FileErrors []FileError
	// Provider is the secret provider used, or nil when resolution was skipped.
	Provider secret.Provider
	// ProviderErr explains why no provider could be built from kind and client.
	ProviderErr error
	// SecretFailures lists references left unresolved, in tree order.
	SecretFailures []secret.Failure
}

// Err joins every non-fatal problem of the load, or returns nil when there
// were none. Missing files are not problems.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.FileErrors)+len(r.SecretFailures)+1)

	for _, fileErr := range r.FileErrors {
		errs = append(errs, fileErr)
	}

	if r.ProviderErr != nil {
		errs = append(errs, r.ProviderErr)
	}

	for _, failure := range r.SecretFailures {
		errs = append(errs, failure)
	}

	return errors.Join(errs...)
}

// Unresolved lists the dotted paths whose values still look like references
// to provider. A nil provider checks against the provider used for the load.
func (r *Result) Unresolved(provider secret.Provider) []string {
	if provider == nil {
		provider = r.Provider
	}

	return secret.Unresolved(r.Tree, provider)
}

// Loader runs the load pipeline: base directory, file merge, provider
// selection and secret resolution.
type Loader struct {
	options Options
}

// NewLoader creates a Loader from opts.
func NewLoader(opts ...Option) *Loader {
	var options Options

	for _, apply := range opts {
		apply(&options)
	}

	options.SetDefaults()

	return &Loader{options: options}
}

// Load reads, merges and resolves the configuration with the given options.
func Load(ctx context.Context, opts ...Option) (*Result, error) {
	return NewLoader(opts...).Load(ctx)
}

// Load runs the pipeline. Only invalid options and a base directory that
// cannot be computed return an error; every other problem is recorded in the
// Result and the tree built so far is returned. ctx bounds the secret lookups.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	opts := l.options
	logger := opts.Logger

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	baseDir, err := ResolveBaseDir(opts.RootDir, opts.InstallDir)
	if err != nil {
		logger.Error("failed to resolve config base directory", slog.String("root", opts.RootDir), slog.Any("error", err))

		return nil, err
	}

	merged := NewFileMerger(logger, opts.mergerOpts...).Merge(baseDir, opts.Files, opts.FileType)

	result := &Result{
		Tree:       merged.Tree,
		BaseDir:    baseDir,
		Loaded:     merged.Loaded,
		Missing:    merged.Missing,
		FileErrors: merged.Errors,
	}

	provider, err := factory.Resolve(opts.Provider, opts.ProviderKind, opts.Client)
	if err != nil {
		logger.Warn("secret provider unavailable, secrets will not be resolved", slog.Any("error", err))

		result.ProviderErr = err
	}

	result.Provider = provider

	if provider != nil {
		resolver := secret.NewResolver(provider,
			secret.WithLogger(logger),
			secret.WithConcurrency(opts.Concurrency),
		)

		result.SecretFailures = resolver.ResolveTree(ctx, result.Tree)
	}

	logger.Info("configuration loaded",
		slog.String("base_dir", baseDir),
		slog.Int("files", len(result.Loaded)),
		slog.Int("missing", len(result.Missing)),
		slog.Int("file_errors", len(result.FileErrors)),
		slog.Int("secret_failures", len(result.SecretFailures)),
	)

	return result, nil
}
