package sync

import "errors"

var (
	ErrMalformedMessage = errors.New("malformed sync message")
	ErrUnknownKind      = errors.New("unknown sync message kind")
	ErrNoConnection     = errors.New("no matching connection")
)
