package queue

import "errors"

var (
	ErrInvalidStatus  = errors.New("invalid sync status")
	ErrInvalidKind    = errors.New("invalid item kind")
	ErrInvalidPayload = errors.New("invalid payload")
)
