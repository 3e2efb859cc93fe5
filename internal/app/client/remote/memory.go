package remote

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Documents are copied on the way in and
// out, so callers never share maps with it.
type Memory struct {
	mu       sync.Mutex
	docs     map[string]map[string]Document
	writes   int
	failWith func(op, collection, id string) error
	validate func(collection string, doc Document) error
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]Document)}
}

// FailWhen installs a hook consulted before every write. A non-nil result
// fails the write.
func (m *Memory) FailWhen(fn func(op, collection, id string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = fn
}

// ValidateWith installs a document validator run on the resulting document
// of every write. Failures are reported as ErrRejected.
func (m *Memory) ValidateWith(fn func(collection string, doc Document) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validate = fn
}

// Writes returns how many writes reached the store, failed ones included.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Documents returns a copy of every document in collection.
func (m *Memory) Documents(collection string) map[string]Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Document, len(m.docs[collection]))
	for id, doc := range m.docs[collection] {
		out[id] = copyDocument(doc)
	}
	return out
}

func (m *Memory) Upsert(_ context.Context, collection, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.before("upsert", collection, id); err != nil {
		return err
	}
	next, err := ToDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	if next == nil {
		next = Document{}
	}
	if err := m.check(collection, next); err != nil {
		return err
	}
	m.put(collection, id, next)
	return nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return copyDocument(doc), nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.before("update", collection, id); err != nil {
		return err
	}
	doc, ok := m.docs[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}

	patch, err := ToDocument(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	next := copyDocument(doc)
	for k, v := range patch {
		next[k] = v
	}
	if err := m.check(collection, next); err != nil {
		return err
	}
	m.put(collection, id, next)
	return nil
}

func (m *Memory) AppendToArrayField(_ context.Context, collection, id, field string, element any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.before("append", collection, id); err != nil {
		return err
	}
	doc, ok := m.docs[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}

	el, err := ToDocument(element)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}

	next := copyDocument(doc)
	arr, _ := next[field].([]any)
	next[field] = appendUnique(arr, el)

	if err := m.check(collection, next); err != nil {
		return err
	}
	m.put(collection, id, next)
	return nil
}

func (m *Memory) before(op, collection, id string) error {
	m.writes++
	if m.failWith != nil {
		return m.failWith(op, collection, id)
	}
	return nil
}

func (m *Memory) check(collection string, doc Document) error {
	if m.validate == nil {
		return nil
	}
	if err := m.validate(collection, doc); err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return nil
}

func (m *Memory) put(collection, id string, doc Document) {
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]Document)
	}
	m.docs[collection][id] = doc
}

// appendUnique appends el unless an element with the same "id" is present.
func appendUnique(arr []any, el Document) []any {
	if id, ok := el["id"].(string); ok {
		for _, existing := range arr {
			if m, ok := existing.(map[string]any); ok && m["id"] == id {
				return arr
			}
		}
	}
	return append(arr, map[string]any(el))
}

// copyDocument deep-copies a stored document. Stored documents went through
// ToDocument and hold JSON values only.
func copyDocument(doc Document) Document {
	c, err := ToDocument(doc)
	if err != nil || c == nil {
		return Document{}
	}
	return c
}
