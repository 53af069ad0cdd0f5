package build

import "errors"

var (
	ErrBuild             = errors.New("build failed")
	ErrInvalidSteps      = errors.New("container has invalid steps")
	ErrUnknownDependency = errors.New("unknown container dependency")
	ErrDependencyCycle   = errors.New("container dependency cycle")
	ErrUnmappedID        = errors.New("id is not mapped")
	ErrUnknownContainer  = errors.New("unknown container")
)
