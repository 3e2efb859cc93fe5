package client

import (
	"context"
	"fmt"
	"time"

	"helpdesk/internal/app/client/remote"
	"helpdesk/internal/domain/queue"
)

// syncedFields marks a document as written by a sync.
func syncedFields(doc remote.Document, syncedAt time.Time) remote.Document {
	doc["isOffline"] = false
	doc["syncStatus"] = queue.StatusSynced.String()
	doc["syncedAt"] = syncedAt.UTC().Format(time.RFC3339Nano)
	return doc
}

// writeItem performs the remote write for one queued item. Every write is
// idempotent by id, so repeating it after an unclear failure is safe.
func writeItem(ctx context.Context, rs remote.Store, item queue.Item, syncedAt time.Time) error {
	switch p := item.Payload.(type) {
	case queue.TicketPayload:
		doc, err := remote.ToDocument(p)
		if err != nil {
			return err
		}
		doc["id"] = item.ID
		doc["createdAt"] = item.CreatedAt.UTC().Format(time.RFC3339Nano)
		return rs.Upsert(ctx, remote.CollectionTickets, item.ID, syncedFields(doc, syncedAt))

	case queue.ConversationPayload:
		el, err := remote.ToDocument(p.Entry)
		if err != nil {
			return err
		}
		return rs.AppendToArrayField(ctx, remote.CollectionTickets, p.TicketID, remote.FieldConversation,
			syncedFields(el, syncedAt))

	case queue.StatusPayload:
		return rs.Update(ctx, remote.CollectionTickets, p.TicketID, remote.Document{
			"status":    string(p.Status),
			"updatedAt": p.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return fmt.Errorf("%w: %q", queue.ErrInvalidKind, item.Kind)
}
