package secret

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/0xalexb/hjarta-config/config/tree"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of references resolved in parallel when
// no limit is configured.
const DefaultConcurrency = 8

// Resolver replaces secret references in a configuration tree with the values
// returned by a Provider.
type Resolver struct {
	provider    Provider
	logger      *slog.Logger
	concurrency int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConcurrency caps the number of backend lookups in flight.
// A limit of 1 resolves references one at a time, which is required when the
// backend client is not safe for concurrent use. Values below 1 are ignored.
func WithConcurrency(limit int) ResolverOption {
	return func(r *Resolver) {
		if limit > 0 {
			r.concurrency = limit
		}
	}
}

// NewResolver creates a Resolver for provider. A nil provider yields a
// Resolver that leaves every tree untouched.
func NewResolver(provider Provider, opts ...ResolverOption) *Resolver {
	resolver := &Resolver{
		provider:    provider,
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
	}

	for _, apply := range opts {
		apply(resolver)
	}

	return resolver
}

type leaf struct {
	parent *tree.Tree
	key    string
	path   string
	ref    string
}

type outcome struct {
	value Value
	err   error
}

// ResolveTree resolves every secret reference in cfg in place and returns the
// references that failed, in tree order.
//
// Only string values held directly by a mapping are candidates; strings
// inside arrays are left alone. A failed reference keeps its original string
// and never stops the resolution of other keys.
func (r *Resolver) ResolveTree(ctx context.Context, cfg *tree.Tree) []Failure {
	if r == nil || r.provider == nil || cfg == nil {
		return nil
	}

	leaves := collect(cfg, r.provider, nil, nil)
	if len(leaves) == 0 {
		return nil
	}

	r.logger.Debug("resolving secret references", slog.Int("count", len(leaves)))

	outcomes := make([]outcome, len(leaves))

	var group errgroup.Group

	group.SetLimit(r.concurrency)

	for i, item := range leaves {
		group.Go(func() error {
			outcomes[i] = r.resolve(ctx, item.ref)

			return nil
		})
	}

	_ = group.Wait()

	var failures []Failure

	// Tree maps are not safe for concurrent writes, so results are applied here.
	for i, item := range leaves {
		result := outcomes[i]
		if result.err != nil {
			r.logger.Warn("failed to resolve secret reference",
				slog.String("path", item.path),
				slog.Any("error", result.err),
			)

			failures = append(failures, Failure{Path: item.path, Reference: item.ref, Err: result.err})

			continue
		}

		item.parent.Set(item.key, result.value.treeValue())
		r.logger.Debug("secret reference resolved", slog.String("path", item.path))
	}

	return failures
}

// resolve looks up one reference. A panicking provider fails only that reference.
func (r *Resolver) resolve(ctx context.Context, ref string) (result outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = outcome{err: fmt.Errorf("%w: %v", ErrProviderPanic, recovered)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return outcome{err: err}
	}

	value, err := r.provider.ResolveSecret(ctx, ref)

	return outcome{value: value, err: err}
}

// Unresolved returns the dotted paths of values in cfg that still match the
// reference syntax of provider. Callers that need every secret resolved can
// treat a non-empty result as fatal.
func Unresolved(cfg *tree.Tree, provider Provider) []string {
	if provider == nil {
		return nil
	}

	leaves := collect(cfg, provider, nil, nil)

	paths := make([]string, len(leaves))
	for i, item := range leaves {
		paths[i] = item.path
	}

	return paths
}

func collect(cfg *tree.Tree, provider Provider, prefix []string, acc []leaf) []leaf {
	cfg.Range(func(key string, value any) bool {
		path := append(prefix[:len(prefix):len(prefix)], key)

		switch typed := value.(type) {
		case *tree.Tree:
			acc = collect(typed, provider, path, acc)
		case string:
			if provider.IsSecretReference(typed) {
				acc = append(acc, leaf{
					parent: cfg,
					key:    key,
					path:   strings.Join(path, "."),
					ref:    typed,
				})
			}
		}

		return true
	})

	return acc
}
