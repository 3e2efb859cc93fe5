package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Item is a locally originated write waiting for, or confirmed by, the
// remote store.
type Item struct {
	ID         string
	Kind       Kind
	Payload    Payload
	SyncStatus SyncStatus
	IsOffline  bool
	CreatedAt  time.Time
	SyncedAt   *time.Time
	Attempts   int
	LastError  string
}

// New builds a pending offline item for p. Conversation items reuse the
// entry id so that the remote array element and the queue item share it.
func New(p Payload, now time.Time) (Item, error) {
	if p == nil {
		return Item{}, fmt.Errorf("%w: nil payload", ErrInvalidPayload)
	}
	if err := p.Validate(); err != nil {
		return Item{}, err
	}

	id := NewID()
	if c, ok := p.(ConversationPayload); ok {
		id = c.Entry.ID
	}

	return Item{
		ID:         id,
		Kind:       p.Kind(),
		Payload:    p,
		SyncStatus: StatusPending,
		IsOffline:  true,
		CreatedAt:  now,
	}, nil
}

// Clone returns a copy that shares no mutable state with i.
func (i Item) Clone() Item {
	c := i
	if i.SyncedAt != nil {
		t := *i.SyncedAt
		c.SyncedAt = &t
	}
	return c
}

// MarkSynced returns the item as it looks once confirmed remotely.
func (i Item) MarkSynced(at time.Time) Item {
	c := i.Clone()
	c.SyncStatus = StatusSynced
	c.IsOffline = false
	c.SyncedAt = &at
	c.LastError = ""
	return c
}

type itemJSON struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	SyncStatus SyncStatus      `json:"syncStatus"`
	IsOffline  bool            `json:"isOffline"`
	CreatedAt  time.Time       `json:"createdAt"`
	SyncedAt   *time.Time      `json:"syncedAt,omitempty"`
	Attempts   int             `json:"attempts,omitempty"`
	LastError  string          `json:"lastError,omitempty"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(i.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload of %s: %w", i.ID, err)
	}
	return json.Marshal(itemJSON{
		ID:         i.ID,
		Kind:       i.Kind,
		Payload:    payload,
		SyncStatus: i.SyncStatus,
		IsOffline:  i.IsOffline,
		CreatedAt:  i.CreatedAt,
		SyncedAt:   i.SyncedAt,
		Attempts:   i.Attempts,
		LastError:  i.LastError,
	})
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := raw.Kind.Validate(); err != nil {
		return err
	}
	if err := raw.SyncStatus.Validate(); err != nil {
		return err
	}

	payload, err := DecodePayload(raw.Kind, raw.Payload)
	if err != nil {
		return err
	}

	*i = Item{
		ID:         raw.ID,
		Kind:       raw.Kind,
		Payload:    payload,
		SyncStatus: raw.SyncStatus,
		IsOffline:  raw.IsOffline,
		CreatedAt:  raw.CreatedAt,
		SyncedAt:   raw.SyncedAt,
		Attempts:   raw.Attempts,
		LastError:  raw.LastError,
	}
	return nil
}
