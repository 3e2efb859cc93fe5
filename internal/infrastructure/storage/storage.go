package storage

import (
	"context"

	"helpdesk/internal/domain/document"
)

// Storage is a document backend the server can run on.
type Storage interface {
	document.Repository
	Ping(ctx context.Context) error
	Close() error
	// Name identifies the backend in health reports.
	Name() string
}
