// Package config loads layered configuration files and resolves the secret
// references they contain.
//
// A load runs four stages in order:
//   - ResolveBaseDir picks the directory file names are relative to.
//   - FileMerger parses each file (YAML or JSON) and deep-merges them, later
//     files overriding earlier ones. Nested mappings are unioned, arrays and
//     scalars are replaced.
//   - A secret provider is chosen from an explicit instance, a kind tag plus
//     backend client, or a client alone (see secret/factory).
//   - secret.Resolver replaces every recognized reference in place.
//
// Only option errors and a base directory that cannot be computed fail the
// load. Missing files, unparsable files, an unusable backend client and
// individual secrets that cannot be fetched are logged and reported in
// Result, and the load returns whatever it could build.
//
// # Example
//
//	result, err := config.Load(ctx,
//	    config.WithRootDir("/etc/myapp"),
//	    config.WithFiles("default.yaml", "production.yaml"),
//	    config.WithClient(ssm.NewFromConfig(awsCfg)),
//	)
//	if err != nil {
//	    return err
//	}
//	if paths := result.Unresolved(nil); len(paths) > 0 {
//	    return fmt.Errorf("unresolved secrets: %v", paths)
//	}
//
// Watcher keeps a Loader's Result current, reloading when a file changes:
//
//	watcher := config.NewWatcher(config.NewLoader(opts...), config.WithOnChange(apply))
//	err := watcher.Run(ctx)
//
// With Fx, NewModule provides *Result and *tree.Tree:
//
//	app := di.NewApp(di.WithConfig(config.WithFiles("app.yaml")))
package config
