package queue

import "fmt"

// SyncStatus describes where a queued write is in its way to the remote store.
type SyncStatus string

const (
	StatusPending   SyncStatus = "pending"
	StatusSynced    SyncStatus = "synced"
	StatusFailed    SyncStatus = "failed"
	StatusAbandoned SyncStatus = "abandoned"
)

// Validate checks that the status is one of the known values.
func (s SyncStatus) Validate() error {
	switch s {
	case StatusPending, StatusSynced, StatusFailed, StatusAbandoned:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
}

// CanTransition reports whether an item in status s may move to next.
// Staying in the same status is always allowed except for leaving synced,
// which is final.
func (s SyncStatus) CanTransition(next SyncStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusSynced || next == StatusFailed || next == StatusAbandoned
	case StatusFailed:
		return next == StatusPending
	}
	return false
}

// IsTerminal reports whether no drain will ever pick the item up again.
func (s SyncStatus) IsTerminal() bool {
	return s == StatusSynced || s == StatusAbandoned
}

func (s SyncStatus) String() string {
	return string(s)
}
