package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrRejected     = errors.New("document rejected")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("remote store unavailable")
)

// HTTPError is a non-2xx answer of the document server.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRejected:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}
