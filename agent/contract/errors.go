package contract

import "errors"

var (
	ErrNotFound               = errors.New("record not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUpstreamUnavailable    = errors.New("language model unavailable")
	ErrValidation             = errors.New("validation failed")
)
