package doctree

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Common errors. Where possible, these alias os package errors
// for compatibility with os.IsNotExist, os.IsExist, etc.
var (
	ErrNotFound = os.ErrNotExist
	ErrExist    = os.ErrExist

	ErrInvalidName     = errors.New("doctree: invalid document name")
	ErrOutsideTree     = errors.New("doctree: document is outside of its tree")
	ErrNotSupported    = errors.New("doctree: feature not supported by this provider")
	ErrRootUnavailable = errors.New("doctree: root location is not a usable directory")

	// Recoverable conditions reported by the client, resolver and bootstrapper.
	ErrProviderQueryFailed  = errors.New("doctree: provider query failed")
	ErrProviderCreateFailed = errors.New("doctree: provider create failed")
	ErrNotADirectory        = errors.New("doctree: name is taken by a non-directory")
	ErrNotPublished         = errors.New("doctree: published folder was not resolved")
)

// condition ties a provider error to the recoverable condition it caused, so
// both match with errors.Is.
func condition(cond, cause error) error {
	return fmt.Errorf("%w: %w", cond, cause)
}
