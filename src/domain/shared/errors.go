package shared

import "errors"

var (
	ErrNotFound     = errors.New("entity not found")
	ErrOutOfRange   = errors.New("index out of range")
	ErrInvalidState = errors.New("invalid state transition")
)
