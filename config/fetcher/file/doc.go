// Package file provides a file-based DataFetcher implementation for the config package.
//
// The file is read at construction time and cached, so every call to Fetch
// returns the same bytes even if the file changes afterwards. The config
// file merger constructs one Fetcher per configured file.
//
// Usage:
//
//	fetcher, err := file.NewFetcher("/path/to/config.yaml")()
//	if errors.Is(err, file.ErrNotFound) {
//	    // optional file, skip it
//	}
//	data, err := fetcher.Fetch()
//
// Error Handling:
//   - Missing files wrap ErrNotFound (and fs.ErrNotExist)
//   - Directories wrap ErrPathIsDirectory
//   - Files larger than the limit (DefaultMaxSize, or WithMaxSize) wrap ErrTooLarge
//   - Errors include the filepath for easier debugging
package file
