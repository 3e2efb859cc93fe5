package store

import (
	"context"
	"sync"
)

// Persister writes the whole state to durable storage and reads it back on
// start-up.
type Persister interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// MemoryPersister keeps the last saved state in memory. It is used when no
// database is configured and in tests.
type MemoryPersister struct {
	mu    sync.Mutex
	state State
	saves int
	err   error
}

func NewMemoryPersister(initial State) *MemoryPersister {
	return &MemoryPersister{state: initial.clone()}
}

func (m *MemoryPersister) Load(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone(), nil
}

func (m *MemoryPersister) Save(_ context.Context, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.state = state.clone()
	m.saves++
	return nil
}

// Saved returns the last saved state.
func (m *MemoryPersister) Saved() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Saves returns how many times Save succeeded.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes every following Save return err. A nil err clears it.
func (m *MemoryPersister) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
