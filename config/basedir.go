package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultConfigDir is the directory under the application root used when no
// root directory is configured.
const DefaultConfigDir = "config"

// ErrBaseDir is returned when the base directory cannot be computed.
// It is the only error that aborts a load.
var ErrBaseDir = errors.New("cannot resolve base directory")

// Build output directories stripped from the end of the install path.
var buildDirs = []string{"bin", "dist", "lib", "src"}

// Dependency directories whose parent is the application that vendored us.
var dependencyDirs = []string{"vendor", "node_modules"}

// ResolveBaseDir computes the directory configuration files are read from.
//
//   - An absolute root is used as-is.
//   - A root starting with "./" or "../" (or equal to "." or "..") is resolved
//     against the working directory.
//   - Any other root is a directory name under the application root.
//   - An empty root means <application root>/config.
//
// installDir is the directory holding the running binary; when empty it is
// taken from os.Executable.
func ResolveBaseDir(root, installDir string) (string, error) {
	if filepath.IsAbs(root) {
		return filepath.Clean(root), nil
	}

	if isWorkingDirRelative(root) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: working directory: %w", ErrBaseDir, err)
		}

		return filepath.Join(wd, root), nil
	}

	appRoot, err := applicationRoot(installDir)
	if err != nil {
		return "", err
	}

	if root == "" {
		return filepath.Join(appRoot, DefaultConfigDir), nil
	}

	return filepath.Join(appRoot, root), nil
}

// ApplicationRoot guesses the application directory from the directory of
// the running binary: a trailing bin, dist, lib or src segment is dropped,
// then everything from a vendor or node_modules segment onwards.
func ApplicationRoot(installDir string) string {
	dir := filepath.Clean(installDir)

	if slices.Contains(buildDirs, filepath.Base(dir)) {
		dir = filepath.Dir(dir)
	}

	segments := strings.Split(filepath.ToSlash(dir), "/")
	for i, segment := range segments {
		if i > 0 && slices.Contains(dependencyDirs, segment) {
			parent := strings.Join(segments[:i], "/")
			if parent == "" {
				return string(filepath.Separator)
			}

			return filepath.FromSlash(parent)
		}
	}

	return dir
}

func applicationRoot(installDir string) (string, error) {
	if installDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("%w: executable path: %w", ErrBaseDir, err)
		}

		installDir = filepath.Dir(exe)
	}

	return ApplicationRoot(installDir), nil
}

func isWorkingDirRelative(root string) bool {
	slashed := filepath.ToSlash(root)

	return slashed == "." || slashed == ".." ||
		strings.HasPrefix(slashed, "./") || strings.HasPrefix(slashed, "../")
}
