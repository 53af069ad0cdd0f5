package cli

import (
	"errors"

	"github.com/cruciblehq/cruxbuild/internal/build"
	"github.com/cruciblehq/cruxbuild/internal/manifest"
	"github.com/cruciblehq/cruxbuild/internal/paths"
	"github.com/cruciblehq/cruxbuild/internal/settings"
	"github.com/cruciblehq/cruxbuild/internal/step"
)

// Process exit codes.
const (
	ExitFailure  = 1   // The input is invalid or the command failed.
	ExitInternal = 70  // A program defect, such as an inconsistent step catalog.
	ExitSettings = 126 // The settings file cannot be read or is invalid.
	ExitNotFound = 127 // The manifest or a named container does not exist.
)

// Returns the exit code for an error returned by [Execute].
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case step.IsFault(err):
		return ExitInternal
	case errors.Is(err, settings.ErrInvalidSettings), errors.Is(err, settings.ErrReadFailed):
		return ExitSettings
	case errors.Is(err, paths.ErrManifestNotFound),
		errors.Is(err, manifest.ErrContainerNotFound),
		errors.Is(err, build.ErrUnknownContainer):
		return ExitNotFound
	}
	return ExitFailure
}
