package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"helpdesk/internal/domain/queue"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func statusItem(t *testing.T, ticketID string) queue.Item {
	t.Helper()
	it, err := queue.New(queue.StatusPayload{TicketID: ticketID, Status: queue.TicketClosed}, testNow)
	require.NoError(t, err)
	return it
}

func newStore(t *testing.T, initial State) (*Store, *MemoryPersister) {
	t.Helper()
	p := NewMemoryPersister(initial)
	s, err := New(context.Background(), p, discardLogger())
	require.NoError(t, err)
	return s, p
}

func TestNew_ClearsSyncInProgress(t *testing.T) {
	item := statusItem(t, "t-1")
	s, _ := newStore(t, State{OfflineTickets: []queue.Item{item}, SyncInProgress: true})

	assert.False(t, s.SyncInProgress())
	require.Len(t, s.Snapshot(), 1)
	assert.Equal(t, item.ID, s.Snapshot()[0].ID)
}

func TestStore_EnqueuePersists(t *testing.T) {
	s, p := newStore(t, State{})

	a := statusItem(t, "t-1")
	b := statusItem(t, "t-2")
	s.Enqueue(a)
	s.Enqueue(b)

	saved := p.Saved()
	require.Len(t, saved.OfflineTickets, 2)
	assert.Equal(t, a.ID, saved.OfflineTickets[0].ID)
	assert.Equal(t, b.ID, saved.OfflineTickets[1].ID)
	assert.Equal(t, 2, p.Saves())
}

func TestStore_SetItemStatus(t *testing.T) {
	item := statusItem(t, "t-1")

	tests := []struct {
		name   string
		from   queue.SyncStatus
		to     queue.SyncStatus
		wantOK bool
	}{
		{name: "pending to failed", from: queue.StatusPending, to: queue.StatusFailed, wantOK: true},
		{name: "failed to pending", from: queue.StatusFailed, to: queue.StatusPending, wantOK: true},
		{name: "failed to synced is refused", from: queue.StatusFailed, to: queue.StatusSynced},
		{name: "synced only through promotion", from: queue.StatusPending, to: queue.StatusSynced},
		{name: "abandoned stays abandoned", from: queue.StatusAbandoned, to: queue.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := item.Clone()
			it.SyncStatus = tt.from
			s, _ := newStore(t, State{OfflineTickets: []queue.Item{it}})

			ok := s.SetItemStatus(it.ID, tt.to)
			assert.Equal(t, tt.wantOK, ok)

			got, found := s.Item(it.ID)
			require.True(t, found)
			if tt.wantOK {
				assert.Equal(t, tt.to, got.SyncStatus)
			} else {
				assert.Equal(t, tt.from, got.SyncStatus)
			}
		})
	}

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s, p := newStore(t, State{})
		assert.False(t, s.SetItemStatus("missing", queue.StatusFailed))
		assert.Equal(t, 0, p.Saves())
	})
}

func TestStore_RecordFailure(t *testing.T) {
	t.Run("without cap keeps failing", func(t *testing.T) {
		item := statusItem(t, "t-1")
		s, _ := newStore(t, State{OfflineTickets: []queue.Item{item}})

		for i := 0; i < 5; i++ {
			status, ok := s.RecordFailure(item.ID, "boom", 0)
			require.True(t, ok)
			assert.Equal(t, queue.StatusFailed, status)
			require.True(t, s.SetItemStatus(item.ID, queue.StatusPending))
		}

		got, _ := s.Item(item.ID)
		assert.Equal(t, 5, got.Attempts)
		assert.Equal(t, "boom", got.LastError)
	})

	t.Run("cap abandons the item", func(t *testing.T) {
		item := statusItem(t, "t-1")
		s, _ := newStore(t, State{OfflineTickets: []queue.Item{item}})

		status, ok := s.RecordFailure(item.ID, "first", 2)
		require.True(t, ok)
		assert.Equal(t, queue.StatusFailed, status)

		require.True(t, s.SetItemStatus(item.ID, queue.StatusPending))
		status, ok = s.RecordFailure(item.ID, "second", 2)
		require.True(t, ok)
		assert.Equal(t, queue.StatusAbandoned, status)

		counts := s.Counts()
		assert.Equal(t, Counts{Offline: 1, Abandoned: 1}, counts)
	})
}

func TestStore_PromoteToSynced(t *testing.T) {
	a := statusItem(t, "t-1")
	b := statusItem(t, "t-2")
	s, p := newStore(t, State{OfflineTickets: []queue.Item{a, b}})

	syncedAt := testNow.Add(time.Minute)
	require.True(t, s.PromoteToSynced(a.ID, syncedAt))

	offline := s.Snapshot()
	require.Len(t, offline, 1)
	assert.Equal(t, b.ID, offline[0].ID)

	synced := s.Synced()
	require.Len(t, synced, 1)
	assert.Equal(t, a.ID, synced[0].ID)
	assert.Equal(t, queue.StatusSynced, synced[0].SyncStatus)
	assert.False(t, synced[0].IsOffline)
	require.NotNil(t, synced[0].SyncedAt)
	assert.True(t, syncedAt.Equal(*synced[0].SyncedAt))

	assert.Len(t, p.Saved().Tickets, 1)

	assert.False(t, s.PromoteToSynced(a.ID, syncedAt), "second promotion must be a no-op")
}

func TestStore_PromoteRefusesFailed(t *testing.T) {
	item := statusItem(t, "t-1")
	item.SyncStatus = queue.StatusFailed
	s, _ := newStore(t, State{OfflineTickets: []queue.Item{item}})

	assert.False(t, s.PromoteToSynced(item.ID, testNow))
	assert.Len(t, s.Snapshot(), 1)
	assert.Empty(t, s.Synced())
}

func TestStore_RemoveAndClearAll(t *testing.T) {
	a := statusItem(t, "t-1")
	b := statusItem(t, "t-2")
	s, p := newStore(t, State{OfflineTickets: []queue.Item{a, b}})

	assert.True(t, s.Remove(a.ID))
	assert.False(t, s.Remove(a.ID))
	require.Len(t, s.Snapshot(), 1)

	s.SetSyncInProgress(true)
	s.ClearAll()

	assert.Empty(t, s.Snapshot())
	assert.Empty(t, s.Synced())
	assert.False(t, s.SyncInProgress())
	saved := p.Saved()
	assert.Empty(t, saved.OfflineTickets)
	assert.Empty(t, saved.Tickets)
	assert.False(t, saved.SyncInProgress)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	item := statusItem(t, "t-1")
	s, _ := newStore(t, State{OfflineTickets: []queue.Item{item}})

	snap := s.Snapshot()
	snap[0].SyncStatus = queue.StatusFailed

	got, _ := s.Item(item.ID)
	assert.Equal(t, queue.StatusPending, got.SyncStatus)
}

func TestStore_PersistFailureRollsBack(t *testing.T) {
	item := statusItem(t, "t-1")
	s, p := newStore(t, State{OfflineTickets: []queue.Item{item}})
	p.FailWith(errors.New("disk full"))

	var notified bool
	s.OnChange(func(State) { notified = true })

	err := s.Enqueue(statusItem(t, "t-2"))
	assert.ErrorContains(t, err, "disk full")
	assert.Error(t, s.AddSynced(statusItem(t, "t-3")))
	assert.False(t, s.SetItemStatus(item.ID, queue.StatusFailed))
	assert.False(t, s.PromoteToSynced(item.ID, testNow))
	assert.Error(t, s.ClearAll())

	require.Len(t, s.Snapshot(), 1)
	assert.Equal(t, queue.StatusPending, s.Snapshot()[0].SyncStatus)
	assert.Empty(t, s.Synced())
	assert.Equal(t, s.State(), p.Saved())
	assert.False(t, notified)

	p.FailWith(nil)
	require.NoError(t, s.Enqueue(statusItem(t, "t-2")))
	assert.Len(t, p.Saved().OfflineTickets, 2)
}

func TestStore_OnChange(t *testing.T) {
	s, _ := newStore(t, State{})

	var seen []int
	cancel := s.OnChange(func(st State) {
		seen = append(seen, len(st.OfflineTickets))
	})

	s.Enqueue(statusItem(t, "t-1"))
	s.Enqueue(statusItem(t, "t-2"))
	s.SetSyncInProgress(false) // unchanged, no notification
	cancel()
	s.Enqueue(statusItem(t, "t-3"))

	assert.Equal(t, []int{1, 2}, seen)
}

// Random operation sequences never move an item out of the synced collection,
// never duplicate an id across collections and keep every persisted state
// equal to the in-memory one.
func TestStore_RandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		t.Run(fmt.Sprintf("run-%d", run), func(t *testing.T) {
			s, p := newStore(t, State{})
			everSynced := map[string]bool{}
			var ids []string

			for step := 0; step < 200; step++ {
				switch op := rng.Intn(6); {
				case op == 0 || len(ids) == 0:
					it := statusItem(t, fmt.Sprintf("t-%d", step))
					ids = append(ids, it.ID)
					s.Enqueue(it)
				case op == 1:
					s.SetItemStatus(ids[rng.Intn(len(ids))], queue.StatusPending)
				case op == 2:
					s.RecordFailure(ids[rng.Intn(len(ids))], "boom", rng.Intn(4))
				case op == 3:
					id := ids[rng.Intn(len(ids))]
					if s.PromoteToSynced(id, testNow) {
						everSynced[id] = true
					}
				case op == 4:
					s.SetItemStatus(ids[rng.Intn(len(ids))], queue.StatusSynced)
				case op == 5:
					s.SetSyncInProgress(rng.Intn(2) == 0)
				}

				state := s.State()
				seen := map[string]bool{}
				for _, it := range state.Tickets {
					assert.Equal(t, queue.StatusSynced, it.SyncStatus)
					assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
					seen[it.ID] = true
				}
				for _, it := range state.OfflineTickets {
					assert.NotEqual(t, queue.StatusSynced, it.SyncStatus)
					assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
					assert.False(t, everSynced[it.ID], "synced item %s back in queue", it.ID)
					seen[it.ID] = true
				}
				assert.Equal(t, len(everSynced), len(state.Tickets))
				assert.Equal(t, state, p.Saved())
			}
		})
	}
}
