package store

import "helpdesk/internal/domain/queue"

// State is the persisted ticket slice of the client.
type State struct {
	// Tickets holds writes confirmed by the remote store.
	Tickets []queue.Item `json:"tickets"`
	// OfflineTickets holds pending, failed and abandoned writes in enqueue order.
	OfflineTickets []queue.Item `json:"offlineTickets"`
	SyncInProgress bool         `json:"syncInProgress"`
}

// Counts summarises the offline queue.
type Counts struct {
	Offline   int
	Failed    int
	Abandoned int
}

func (s State) clone() State {
	return State{
		Tickets:        cloneItems(s.Tickets),
		OfflineTickets: cloneItems(s.OfflineTickets),
		SyncInProgress: s.SyncInProgress,
	}
}

func (s State) indexOf(id string) int {
	for i, it := range s.OfflineTickets {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []queue.Item) []queue.Item {
	out := make([]queue.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
