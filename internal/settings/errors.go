package settings

import "errors"

var (
	ErrReadFailed      = errors.New("failed to read settings")
	ErrInvalidSettings = errors.New("invalid settings")
)
