package client

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"helpdesk/internal/app/client/connectivity"
	"helpdesk/internal/app/client/notify"
	"helpdesk/internal/app/client/remote"
	"helpdesk/internal/app/client/store"
	"helpdesk/internal/domain/document"
	"helpdesk/internal/domain/queue"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	store   *store.Store
	disk    *store.MemoryPersister
	remote  *remote.Memory
	monitor *connectivity.Manual
	notes   *notify.Recorder
	sync    *SyncService
	tickets *TicketService
}

func newHarness(t *testing.T, opts SyncOptions) *harness {
	t.Helper()
	return newHarnessWith(t, nil, opts)
}

// newHarnessWith lets a test put a wrapper in front of the memory store.
func newHarnessWith(t *testing.T, wrap func(*remote.Memory) remote.Store, opts SyncOptions) *harness {
	t.Helper()

	disk := store.NewMemoryPersister(store.State{})
	st, err := store.New(context.Background(), disk, discardLogger())
	require.NoError(t, err)

	mem := remote.NewMemory()
	v := document.MustValidator()
	mem.ValidateWith(func(collection string, doc remote.Document) error {
		return v.Validate(collection, map[string]any(doc))
	})

	var rs remote.Store = mem
	if wrap != nil {
		rs = wrap(mem)
	}

	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}

	h := &harness{
		store:   st,
		disk:    disk,
		remote:  mem,
		monitor: connectivity.NewManual(false),
		notes:   &notify.Recorder{},
	}
	h.sync = NewSyncService(st, rs, h.monitor, h.notes, discardLogger(), opts)
	h.tickets = NewTicketService(st, rs, h.notes, discardLogger(), opts.Now)
	t.Cleanup(func() {
		h.sync.Stop()
		h.sync.Wait()
	})
	return h
}

func ticketPayload(title string) queue.TicketPayload {
	return queue.TicketPayload{
		Title:       title,
		Description: "Details for " + title,
		Status:      queue.TicketOpen,
		Priority:    queue.PriorityHigh,
		CreatedBy:   queue.Person{UID: "u-1", Name: "Agent"},
		CreatedDate: testNow,
		UpdatedDate: testNow,
	}
}

func (h *harness) queueTicket(t *testing.T, title string) queue.Item {
	t.Helper()
	it, err := h.tickets.EnqueueOrWriteTicket(context.Background(), ticketPayload(title), false)
	require.NoError(t, err)
	return it
}

func (h *harness) queueReply(t *testing.T, ticketID, content string) queue.Item {
	t.Helper()
	it, err := h.tickets.AddConversationEntry(context.Background(), ticketID, queue.EntryReply, content,
		queue.Person{UID: "u-1", Name: "Agent"}, false)
	require.NoError(t, err)
	return it
}

func titles(ns []notify.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Title)
	}
	return out
}

// lostAck performs writes but reports them as failed while fail is set, as
// if the response never arrived.
type lostAck struct {
	*remote.Memory
	fail bool
}

func (l *lostAck) Upsert(ctx context.Context, collection, id string, doc remote.Document) error {
	if err := l.Memory.Upsert(ctx, collection, id, doc); err != nil {
		return err
	}
	if l.fail {
		return remote.ErrUnavailable
	}
	return nil
}

func (l *lostAck) AppendToArrayField(ctx context.Context, collection, id, field string, el any) error {
	if err := l.Memory.AppendToArrayField(ctx, collection, id, field, el); err != nil {
		return err
	}
	if l.fail {
		return remote.ErrUnavailable
	}
	return nil
}

// blocking holds every upsert until release is closed.
type blocking struct {
	*remote.Memory
	entered chan struct{}
	release chan struct{}
}

func (b *blocking) Upsert(ctx context.Context, collection, id string, doc remote.Document) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return b.Memory.Upsert(ctx, collection, id, doc)
}

func TestSync_DrainsQueueInOrder(t *testing.T) {
	h := newHarness(t, SyncOptions{})

	ticket := h.queueTicket(t, "VPN drops")
	reply := h.queueReply(t, ticket.ID, "Restarted the gateway")
	status, err := h.tickets.ChangeTicketStatus(context.Background(), ticket.ID, queue.TicketClosed, false)
	require.NoError(t, err)

	res := h.sync.SyncOfflineTickets(context.Background())

	assert.Equal(t, SyncResult{Ran: true, Synced: 3}, res)
	assert.Empty(t, h.store.Snapshot())

	synced := h.store.Synced()
	require.Len(t, synced, 3)
	for i, id := range []string{ticket.ID, reply.ID, status.ID} {
		assert.Equal(t, id, synced[i].ID)
		assert.Equal(t, queue.StatusSynced, synced[i].SyncStatus)
		assert.False(t, synced[i].IsOffline)
		require.NotNil(t, synced[i].SyncedAt)
	}

	doc, err := h.remote.Get(context.Background(), remote.CollectionTickets, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", doc["status"])
	assert.Equal(t, "synced", doc["syncStatus"])
	assert.Equal(t, false, doc["isOffline"])
	assert.Len(t, doc[remote.FieldConversation], 1)

	last, ok := h.notes.Last()
	require.True(t, ok)
	assert.Equal(t, "Sync Complete", last.Title)
	assert.Equal(t, "3 ticket(s) synced successfully", last.Message)
	assert.False(t, h.store.SyncInProgress())
}

func TestSync_ReconnectTriggersDrain(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	ticket := h.queueTicket(t, "Printer jam")
	h.queueReply(t, ticket.ID, "Paper tray cleared")

	require.NoError(t, h.sync.Start(context.Background()))
	h.sync.Wait()
	assert.Len(t, h.store.Snapshot(), 2, "offline start must not drain")
	assert.False(t, h.sync.IsOnline())

	h.monitor.SetOnline(true)
	h.sync.Wait()

	assert.True(t, h.sync.IsOnline())
	assert.Empty(t, h.store.Snapshot())
	assert.Len(t, h.remote.Documents(remote.CollectionTickets), 1)
	assert.Contains(t, titles(h.notes.All()), "Sync Complete")
}

func TestSync_PartialFailureKeepsFailedItems(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	ticket := h.queueTicket(t, "Laptop will not boot")
	reply := h.queueReply(t, ticket.ID, "Bring it to the desk")

	h.remote.FailWhen(func(op, _, _ string) error {
		if op == "append" {
			return remote.ErrUnavailable
		}
		return nil
	})

	res := h.sync.SyncOfflineTickets(context.Background())

	assert.Equal(t, SyncResult{Ran: true, Synced: 1, Failed: 1}, res)

	snap := h.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, reply.ID, snap[0].ID)
	assert.Equal(t, queue.StatusFailed, snap[0].SyncStatus)
	assert.Equal(t, 1, snap[0].Attempts)
	assert.NotEmpty(t, snap[0].LastError)
	assert.True(t, snap[0].IsOffline)

	last, _ := h.notes.Last()
	assert.Equal(t, "Sync Complete", last.Title)
	assert.Equal(t, "1 ticket(s) synced successfully, 1 failed", last.Message)
}

func TestSync_AllFailed(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	h.queueTicket(t, "Mail bounce")
	h.remote.FailWhen(func(string, string, string) error { return remote.ErrUnavailable })

	res := h.sync.SyncOfflineTickets(context.Background())

	assert.Equal(t, SyncResult{Ran: true, Failed: 1}, res)
	last, _ := h.notes.Last()
	assert.Equal(t, notify.Notification{
		Kind:    notify.KindError,
		Title:   "Sync Failed",
		Message: "Failed to sync 1 ticket(s). Please try again.",
	}, last)
}

func TestSync_RepeatedWritesAreIdempotent(t *testing.T) {
	var wrapper *lostAck
	h := newHarnessWith(t, func(m *remote.Memory) remote.Store {
		wrapper = &lostAck{Memory: m, fail: true}
		return wrapper
	}, SyncOptions{})

	ticket := h.queueTicket(t, "Shared drive missing")
	h.queueReply(t, ticket.ID, "Remapped the drive")

	res := h.sync.SyncOfflineTickets(context.Background())
	assert.Equal(t, 2, res.Failed, "writes landed but were reported lost")

	wrapper.fail = false
	res = h.sync.SyncOfflineTickets(context.Background())
	assert.Equal(t, 2, res.Synced)

	docs := h.remote.Documents(remote.CollectionTickets)
	require.Len(t, docs, 1)
	assert.Len(t, docs[ticket.ID][remote.FieldConversation], 1)
	assert.Empty(t, h.store.Snapshot())
}

func TestSync_OneDrainAtATime(t *testing.T) {
	b := &blocking{entered: make(chan struct{}, 1), release: make(chan struct{})}
	h := newHarnessWith(t, func(m *remote.Memory) remote.Store {
		b.Memory = m
		return b
	}, SyncOptions{})

	first := h.queueTicket(t, "First")

	done := make(chan SyncResult, 1)
	go func() { done <- h.sync.SyncOfflineTickets(context.Background()) }()

	select {
	case <-b.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("drain never reached the remote store")
	}

	assert.True(t, h.sync.GetSyncStatus().IsSyncing)
	assert.Equal(t, SyncResult{}, h.sync.SyncOfflineTickets(context.Background()), "second drain must be skipped")
	assert.Equal(t, SyncResult{}, h.sync.RetryFailedTickets(context.Background()))

	// Enqueued during the drain, so outside its snapshot.
	second := h.queueTicket(t, "Second")

	close(b.release)
	res := <-done

	assert.Equal(t, SyncResult{Ran: true, Synced: 1}, res)
	assert.False(t, h.sync.GetSyncStatus().IsSyncing)

	snap := h.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, second.ID, snap[0].ID)
	assert.Equal(t, queue.StatusPending, snap[0].SyncStatus)

	synced := h.store.Synced()
	require.Len(t, synced, 1)
	assert.Equal(t, first.ID, synced[0].ID)
}

func TestSync_RemovedDuringDrainIsSkipped(t *testing.T) {
	b := &blocking{entered: make(chan struct{}, 1), release: make(chan struct{})}
	h := newHarnessWith(t, func(m *remote.Memory) remote.Store {
		b.Memory = m
		return b
	}, SyncOptions{})

	h.queueTicket(t, "First")
	second := h.queueTicket(t, "Second")

	done := make(chan SyncResult, 1)
	go func() { done <- h.sync.SyncOfflineTickets(context.Background()) }()
	<-b.entered

	require.True(t, h.store.Remove(second.ID))
	close(b.release)

	res := <-done
	assert.Equal(t, SyncResult{Ran: true, Synced: 1}, res)
	assert.Len(t, h.remote.Documents(remote.CollectionTickets), 1)
}

func TestSync_RetryFailedOnly(t *testing.T) {
	h := newHarness(t, SyncOptions{})

	failing := h.queueTicket(t, "Fails first")
	h.remote.FailWhen(func(string, string, string) error { return remote.ErrUnavailable })
	h.sync.SyncOfflineTickets(context.Background())
	h.remote.FailWhen(nil)

	pending := h.queueTicket(t, "Still pending")

	res := h.sync.RetryFailedTickets(context.Background())

	assert.Equal(t, SyncResult{Ran: true, Synced: 1}, res)
	_, err := h.remote.Get(context.Background(), remote.CollectionTickets, failing.ID)
	assert.NoError(t, err)

	snap := h.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, pending.ID, snap[0].ID)
}

func TestSync_RetryWithoutFailures(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	h.queueTicket(t, "Pending")

	res := h.sync.RetryFailedTickets(context.Background())

	assert.False(t, res.Ran)
	last, _ := h.notes.Last()
	assert.Equal(t, notify.NoFailedToRetry(), last)
	assert.Len(t, h.store.Snapshot(), 1)
}

func TestSync_MaxAttemptsAbandons(t *testing.T) {
	h := newHarness(t, SyncOptions{MaxAttempts: 2})
	item := h.queueTicket(t, "Rejected forever")
	h.remote.FailWhen(func(string, string, string) error { return remote.ErrRejected })

	first := h.sync.SyncOfflineTickets(context.Background())
	assert.Equal(t, SyncResult{Ran: true, Failed: 1}, first)

	before := len(h.notes.All())
	second := h.sync.SyncOfflineTickets(context.Background())
	assert.Equal(t, SyncResult{Ran: true, Failed: 1, Abandoned: 1}, second)

	notes := h.notes.All()[before:]
	require.Len(t, notes, 1, "one notification per drain")
	assert.Equal(t, "Sync Failed", notes[0].Title)
	assert.Contains(t, notes[0].Message, "1 reached the retry limit")

	got, ok := h.store.Item(item.ID)
	require.True(t, ok)
	assert.Equal(t, queue.StatusAbandoned, got.SyncStatus)
	assert.Equal(t, 2, got.Attempts)

	writes := h.remote.Writes()
	third := h.sync.SyncOfflineTickets(context.Background())
	assert.False(t, third.Ran)
	assert.Equal(t, writes, h.remote.Writes(), "abandoned items are never sent")

	st := h.sync.GetSyncStatus()
	assert.Equal(t, SyncStatus{OfflineCount: 1, AbandonedCount: 1}, st)
}

func TestSync_UnlimitedAttempts(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	item := h.queueTicket(t, "Keeps failing")
	h.remote.FailWhen(func(string, string, string) error { return remote.ErrUnavailable })

	for i := 0; i < 5; i++ {
		h.sync.SyncOfflineTickets(context.Background())
	}

	got, ok := h.store.Item(item.ID)
	require.True(t, ok)
	assert.Equal(t, queue.StatusFailed, got.SyncStatus)
	assert.Equal(t, 5, got.Attempts)
}

func TestSync_EmptyQueue(t *testing.T) {
	h := newHarness(t, SyncOptions{})

	res := h.sync.SyncOfflineTickets(context.Background())

	assert.False(t, res.Ran)
	assert.Empty(t, h.notes.All())
	assert.Equal(t, 0, h.remote.Writes())
}

func TestSync_CancelledContextStillDrains(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	h.queueTicket(t, "Cancelled caller")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := h.sync.SyncOfflineTickets(ctx)
	assert.Equal(t, 1, res.Synced)
}

func TestSync_StartIsIdempotent(t *testing.T) {
	h := newHarness(t, SyncOptions{})

	require.NoError(t, h.sync.Start(context.Background()))
	require.NoError(t, h.sync.Start(context.Background()))
	assert.Equal(t, 1, h.monitor.Subscribers())

	h.sync.Stop()
	h.sync.Stop()
	assert.Equal(t, 0, h.monitor.Subscribers())

	require.NoError(t, h.sync.Start(context.Background()))
	assert.Equal(t, 1, h.monitor.Subscribers())
}

func TestSync_StartPropagatesSubscribeError(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	boom := errors.New("monitor broken")
	h.monitor.FailSubscribe(boom)

	assert.ErrorIs(t, h.sync.Start(context.Background()), boom)

	h.monitor.FailSubscribe(nil)
	assert.NoError(t, h.sync.Start(context.Background()))
}

func TestSync_StoppedServiceIgnoresReconnect(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	h.queueTicket(t, "Waits for manual sync")

	require.NoError(t, h.sync.Start(context.Background()))
	h.sync.Stop()

	h.monitor.SetOnline(true)
	h.sync.Wait()

	assert.Len(t, h.store.Snapshot(), 1)
	assert.Equal(t, 0, h.remote.Writes())
}

func TestSync_OnlineAtStartDrains(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	h.queueTicket(t, "Queued yesterday")
	h.monitor.SetOnline(true)

	require.NoError(t, h.sync.Start(context.Background()))
	h.sync.Wait()

	assert.Empty(t, h.store.Snapshot())
}

func TestSync_SchemaRejectionFails(t *testing.T) {
	h := newHarness(t, SyncOptions{})
	// Status update for a ticket the server never saw.
	_, err := h.tickets.ChangeTicketStatus(context.Background(), "unknown-ticket", queue.TicketClosed, false)
	require.NoError(t, err)

	res := h.sync.SyncOfflineTickets(context.Background())

	assert.Equal(t, 1, res.Failed)
	snap := h.store.Snapshot()
	require.Len(t, snap, 1)
	assert.Contains(t, snap[0].LastError, "not found")
}
