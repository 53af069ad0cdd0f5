package manifest

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported manifest format")
	ErrReadFailed         = errors.New("failed to read manifest")
	ErrInvalidDocument    = errors.New("invalid manifest document")
	ErrDuplicateContainer = errors.New("duplicate container")
	ErrContainerNotFound  = errors.New("container not found")
)

// Wraps err as an invalid document error.
func invalid(filename string, err error) error {
	return fmt.Errorf("%w: %w: %s: %w", errdefs.ErrInvalidArgument, ErrInvalidDocument, filename, err)
}

// Returns an error reporting an invalid document.
func invalidf(filename, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s: %s", errdefs.ErrInvalidArgument, ErrInvalidDocument, filename, fmt.Sprintf(format, args...))
}
