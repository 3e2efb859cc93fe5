// Package store holds the client's authoritative copy of tickets and of the
// offline write queue. Every mutation is persisted as a whole before
// observers are told about it.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"helpdesk/internal/domain/queue"
)

type Store struct {
	mu        sync.RWMutex
	state     State
	persister Persister
	log       *slog.Logger

	listeners map[int]func(State)
	nextID    int
}

// New rehydrates the store from p. A sync run never survives a restart, so
// the in-progress flag is always cleared on load.
func New(ctx context.Context, p Persister, log *slog.Logger) (*Store, error) {
	state, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	state.SyncInProgress = false

	s := &Store{
		state:     state.clone(),
		persister: p,
		log:       log.With("component", "store"),
		listeners: make(map[int]func(State)),
	}

	s.log.Debug("state rehydrated",
		"synced", len(state.Tickets),
		"offline", len(state.OfflineTickets),
	)

	return s, nil
}

// Enqueue appends item to the offline queue. Callers guarantee id uniqueness.
// The item is not kept when it could not be persisted.
func (s *Store) Enqueue(item queue.Item) error {
	_, err := s.mutate("enqueue", func(st *State) bool {
		st.OfflineTickets = append(st.OfflineTickets, item.Clone())
		return true
	})
	return err
}

// AddSynced records an item that was written remotely without being queued.
func (s *Store) AddSynced(item queue.Item) error {
	_, err := s.mutate("add_synced", func(st *State) bool {
		st.Tickets = append(st.Tickets, item.Clone())
		return true
	})
	return err
}

// SetItemStatus changes the status of a queued item. It reports false when
// the item is not queued or the transition is not allowed. Items reach
// synced only through PromoteToSynced.
func (s *Store) SetItemStatus(id string, status queue.SyncStatus) bool {
	if status == queue.StatusSynced {
		return false
	}
	ok, _ := s.mutate("set_status", func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 {
			return false
		}
		current := st.OfflineTickets[i].SyncStatus
		if !current.CanTransition(status) {
			s.log.Warn("illegal status transition ignored",
				"id", id, "from", current, "to", status)
			return false
		}
		st.OfflineTickets[i].SyncStatus = status
		return true
	})
	return ok
}

// RecordFailure counts a failed write attempt on a queued item and marks it
// failed, or abandoned once maxAttempts is reached. maxAttempts <= 0 means no
// limit. The resulting status is returned.
func (s *Store) RecordFailure(id, cause string, maxAttempts int) (queue.SyncStatus, bool) {
	var result queue.SyncStatus
	ok, _ := s.mutate("record_failure", func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 {
			return false
		}
		it := &st.OfflineTickets[i]

		next := queue.StatusFailed
		if maxAttempts > 0 && it.Attempts+1 >= maxAttempts {
			next = queue.StatusAbandoned
		}
		if !it.SyncStatus.CanTransition(next) {
			s.log.Warn("illegal status transition ignored",
				"id", id, "from", it.SyncStatus, "to", next)
			return false
		}

		it.Attempts++
		it.LastError = cause
		it.SyncStatus = next
		result = next
		return true
	})
	if !ok {
		return "", false
	}
	return result, true
}

// PromoteToSynced moves a queued item into the synced collection.
func (s *Store) PromoteToSynced(id string, syncedAt time.Time) bool {
	ok, _ := s.mutate("promote", func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 {
			return false
		}
		item := st.OfflineTickets[i]
		if !item.SyncStatus.CanTransition(queue.StatusSynced) {
			return false
		}
		st.OfflineTickets = append(st.OfflineTickets[:i:i], st.OfflineTickets[i+1:]...)
		st.Tickets = append(st.Tickets, item.MarkSynced(syncedAt))
		return true
	})
	return ok
}

// Remove drops an item from the offline queue without syncing it.
func (s *Store) Remove(id string) bool {
	ok, _ := s.mutate("remove", func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 {
			return false
		}
		st.OfflineTickets = append(st.OfflineTickets[:i:i], st.OfflineTickets[i+1:]...)
		return true
	})
	return ok
}

func (s *Store) SetSyncInProgress(v bool) {
	s.mutate("set_sync_in_progress", func(st *State) bool {
		if st.SyncInProgress == v {
			return false
		}
		st.SyncInProgress = v
		return true
	})
}

// ClearAll resets the slice, used on logout.
func (s *Store) ClearAll() error {
	_, err := s.mutate("clear_all", func(st *State) bool {
		*st = State{}
		return true
	})
	return err
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Snapshot returns a copy of the offline queue in enqueue order.
func (s *Store) Snapshot() []queue.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.state.OfflineTickets)
}

func (s *Store) Synced() []queue.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.state.Tickets)
}

// Item looks an item up in the offline queue.
func (s *Store) Item(id string) (queue.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.state.indexOf(id)
	if i < 0 {
		return queue.Item{}, false
	}
	return s.state.OfflineTickets[i].Clone(), true
}

func (s *Store) SyncInProgress() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.SyncInProgress
}

func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := Counts{Offline: len(s.state.OfflineTickets)}
	for _, it := range s.state.OfflineTickets {
		switch it.SyncStatus {
		case queue.StatusFailed:
			c.Failed++
		case queue.StatusAbandoned:
			c.Abandoned++
		}
	}
	return c
}

// OnChange registers fn to receive every new state. The returned func
// unregisters it.
func (s *Store) OnChange(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// mutate applies fn under the write lock and persists the result. Saving
// happens under the lock so that persisted states are never reordered. When
// the save fails the in-memory state is rolled back.
func (s *Store) mutate(op string, fn func(*State) bool) (bool, error) {
	s.mu.Lock()
	prev := s.state.clone()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false, nil
	}

	snapshot := s.state.clone()
	if err := s.persister.Save(context.Background(), snapshot); err != nil {
		s.state = prev
		s.mu.Unlock()
		s.log.Error("failed to persist state", "op", op, "error", err)
		return false, fmt.Errorf("persist %s: %w", op, err)
	}

	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return true, nil
}
