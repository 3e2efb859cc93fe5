// Package remote talks to the document store that holds the tickets shared
// by all agents.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	CollectionTickets = "tickets"
	FieldConversation = "conversation"
)

// Document is a JSON object as stored remotely.
type Document map[string]any

// Store is the remote document store. All writes are idempotent by id.
type Store interface {
	// Upsert creates or replaces the document.
	Upsert(ctx context.Context, collection, id string, doc Document) error
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update merges top-level fields into an existing document.
	Update(ctx context.Context, collection, id string, fields Document) error
	// AppendToArrayField adds element to an array field unless an element
	// with the same id is already there.
	AppendToArrayField(ctx context.Context, collection, id, field string, element any) error
}

// ToDocument converts any JSON-encodable value into a Document.
func ToDocument(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
