package document

import "context"

// ModifyFunc receives the stored body and returns the body to store.
type ModifyFunc func(body map[string]any) (map[string]any, error)

type Repository interface {
	// Upsert creates or replaces a document.
	Upsert(ctx context.Context, collection, id string, body map[string]any) error
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Modify applies fn to an existing document atomically. It returns
	// ErrNotFound when the document does not exist and stores nothing when
	// fn fails.
	Modify(ctx context.Context, collection, id string, fn ModifyFunc) error
}
