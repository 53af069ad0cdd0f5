package cli

import "errors"

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnknownTag       = errors.New("unknown step tag")
)
