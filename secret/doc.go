// Package secret resolves secret references embedded in configuration trees.
//
// A Provider recognizes its own reference syntax (an SSM parameter path, a
// Secrets Manager ARN, a Key Vault URL, a Secret Manager resource name) and
// fetches the value from its backend. The Resolver walks a tree, hands every
// string leaf the provider recognizes to ResolveSecret and writes the result
// back in place:
//
//	resolver := secret.NewResolver(provider, secret.WithLogger(logger))
//	failures := resolver.ResolveTree(ctx, cfg)
//
// Resolution is best effort. A reference that cannot be resolved keeps its
// original string and is reported as a Failure; the remaining references are
// still resolved. Use Unresolved after loading to enforce completeness.
//
// Concrete providers live in the sub-packages; the factory sub-package picks
// one from a kind tag or from the type of a backend client.
package secret
