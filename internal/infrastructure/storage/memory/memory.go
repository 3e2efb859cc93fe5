package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"helpdesk/internal/domain/document"
)

type key struct {
	collection string
	id         string
}

// Storage keeps documents in process memory. Bodies are stored as JSON so
// callers never share maps with it.
type Storage struct {
	mu   sync.Mutex
	docs map[key]entry
	now  func() time.Time
}

type entry struct {
	body      []byte
	createdAt time.Time
	updatedAt time.Time
}

func New() *Storage {
	return &Storage{
		docs: make(map[key]entry),
		now:  time.Now,
	}
}

func (s *Storage) Upsert(_ context.Context, collection, id string, body map[string]any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", document.ErrInvalidDocument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{collection, id}
	now := s.now()
	e, ok := s.docs[k]
	if !ok {
		e.createdAt = now
	}
	e.body = data
	e.updatedAt = now
	s.docs[k] = e
	return nil
}

func (s *Storage) Get(_ context.Context, collection, id string) (*document.Document, error) {
	s.mu.Lock()
	e, ok := s.docs[key{collection, id}]
	s.mu.Unlock()
	if !ok {
		return nil, document.ErrNotFound
	}

	doc := &document.Document{Collection: collection, ID: id, CreatedAt: e.createdAt, UpdatedAt: e.updatedAt}
	if err := json.Unmarshal(e.body, &doc.Body); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Modify holds the lock while fn runs.
func (s *Storage) Modify(_ context.Context, collection, id string, fn document.ModifyFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{collection, id}
	e, ok := s.docs[k]
	if !ok {
		return document.ErrNotFound
	}

	var body map[string]any
	if err := json.Unmarshal(e.body, &body); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if body == nil {
		body = map[string]any{}
	}

	next, err := fn(body)
	if err != nil {
		return err
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: %v", document.ErrInvalidDocument, err)
	}

	e.body = data
	e.updatedAt = s.now()
	s.docs[k] = e
	return nil
}

func (s *Storage) Ping(context.Context) error { return nil }

func (s *Storage) Close() error { return nil }

func (s *Storage) Name() string { return "memory" }
