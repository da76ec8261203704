package secret

import "fmt"

// Failure records a reference that could not be resolved. The configuration
// leaf at Path keeps its original reference string.
type Failure struct {
	// Path is the dotted key path of the leaf, e.g. "database.password".
	Path      string
	Reference string
	Err       error
}

// Error implements the error interface.
func (f Failure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Path, f.Reference, f.Err)
}

// Unwrap returns the underlying resolution error.
func (f Failure) Unwrap() error {
	return f.Err
}
