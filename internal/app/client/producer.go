package client

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"helpdesk/internal/app/client/notify"
	"helpdesk/internal/app/client/remote"
	"helpdesk/internal/app/client/store"
	"helpdesk/internal/domain/queue"
)

// TicketService accepts ticket writes. Online writes go straight to the
// remote store; offline writes, and online writes that fail, are queued.
type TicketService struct {
	store    *store.Store
	remote   remote.Store
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewTicketService(st *store.Store, rs remote.Store, notifier notify.Notifier, log *slog.Logger, now func() time.Time) *TicketService {
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		store:    st,
		remote:   rs,
		notifier: notifier,
		log:      log.With("component", "tickets"),
		now:      now,
	}
}

// EnqueueOrWriteTicket creates a ticket. The returned item tells where it
// went: IsOffline is true when it was queued.
func (t *TicketService) EnqueueOrWriteTicket(ctx context.Context, p queue.TicketPayload, isOnline bool) (queue.Item, error) {
	now := t.now()
	if p.Status == "" {
		p.Status = queue.TicketOpen
	}
	if p.Priority == "" {
		p.Priority = queue.PriorityMedium
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = now
	}
	if p.UpdatedDate.IsZero() {
		p.UpdatedDate = now
	}
	return t.submit(ctx, p, isOnline, notify.TicketCreated())
}

// AddConversationEntry appends a reply or an internal note to a ticket.
func (t *TicketService) AddConversationEntry(
	ctx context.Context,
	ticketID string,
	entryType queue.EntryType,
	content string,
	author queue.Person,
	isOnline bool,
) (queue.Item, error) {
	p := queue.ConversationPayload{
		TicketID: ticketID,
		Entry: queue.ConversationEntry{
			ID:            queue.NewID(),
			Type:          entryType,
			Content:       content,
			CreatedBy:     author.UID,
			CreatedByName: author.Name,
			CreatedAt:     t.now(),
		},
	}
	what := "Reply"
	if entryType == queue.EntryNote {
		what = "Note"
	}
	return t.submit(ctx, p, isOnline, notify.EntryAdded(what))
}

// ChangeTicketStatus sets the status of an existing ticket.
func (t *TicketService) ChangeTicketStatus(ctx context.Context, ticketID string, status queue.TicketStatus, isOnline bool) (queue.Item, error) {
	p := queue.StatusPayload{TicketID: ticketID, Status: status, UpdatedAt: t.now()}
	return t.submit(ctx, p, isOnline, notify.StatusUpdated())
}

func (t *TicketService) submit(ctx context.Context, p queue.Payload, isOnline bool, success notify.Notification) (queue.Item, error) {
	item, err := queue.New(p, t.now())
	if err != nil {
		t.notifier.Notify(notify.FillDetails())
		return queue.Item{}, err
	}

	if isOnline {
		syncedAt := t.now()
		err := writeItem(ctx, t.remote, item, syncedAt)
		if err == nil {
			synced := item.MarkSynced(syncedAt)
			if err := t.store.AddSynced(synced); err != nil {
				// The remote write landed; only the local copy is missing.
				t.log.Error("failed to record synced item", "id", item.ID, "error", err)
			}
			t.notifier.Notify(success)
			t.log.Debug("written directly", "id", item.ID, "kind", item.Kind)
			return synced, nil
		}
		t.log.Warn("direct write failed, queueing", "id", item.ID, "kind", item.Kind, "error", err)
	}

	if err := t.store.Enqueue(item); err != nil {
		return queue.Item{}, fmt.Errorf("save %s locally: %w", item.Kind, err)
	}
	t.notifier.Notify(notify.SavedOffline(item.Kind.DisplayName()))
	t.log.Debug("queued offline", "id", item.ID, "kind", item.Kind)
	return item, nil
}
