package document

import "errors"

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidDocument = errors.New("invalid document")
	ErrInvalidPath     = errors.New("invalid collection, id or field")
)
