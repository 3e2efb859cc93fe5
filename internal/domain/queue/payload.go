package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return nil
	}
	return fmt.Errorf("unknown priority %q", string(p))
}

type TicketStatus string

const (
	TicketOpen    TicketStatus = "open"
	TicketPending TicketStatus = "pending"
	TicketClosed  TicketStatus = "closed"
)

func (s TicketStatus) Validate() error {
	switch s {
	case TicketOpen, TicketPending, TicketClosed:
		return nil
	}
	return fmt.Errorf("unknown ticket status %q", string(s))
}

type EntryType string

const (
	EntryReply EntryType = "reply"
	EntryNote  EntryType = "note"
)

func (t EntryType) Validate() error {
	switch t {
	case EntryReply, EntryNote:
		return nil
	}
	return fmt.Errorf("unknown conversation entry type %q", string(t))
}

// Payload is the typed body of a queued write. Exactly one concrete payload
// type exists per Kind.
type Payload interface {
	Kind() Kind
	Validate() error
}

type Person struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Attachment is a file that has already been uploaded somewhere reachable.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// TicketPayload creates a ticket document.
type TicketPayload struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TicketStatus `json:"status"`
	Priority     Priority     `json:"priority"`
	Attachments  []Attachment `json:"attachments"`
	AssignedUser *Person      `json:"assignedUser,omitempty"`
	CreatedBy    Person       `json:"createdBy"`
	ContactInfo  Contact      `json:"contactInfo"`
	CreatedDate  time.Time    `json:"createdDate"`
	UpdatedDate  time.Time    `json:"updatedDate"`
}

func (TicketPayload) Kind() Kind { return KindTicket }

func (p TicketPayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPayload)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidPayload)
	}
	if err := p.Status.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := p.Priority.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	for i, a := range p.Attachments {
		if a.URL == "" {
			return fmt.Errorf("%w: attachment %d has no url", ErrInvalidPayload, i)
		}
	}
	return nil
}

// ConversationEntry is a reply or an internal note on a ticket.
type ConversationEntry struct {
	ID            string    `json:"id"`
	Type          EntryType `json:"type"`
	Content       string    `json:"content"`
	CreatedBy     string    `json:"createdBy"`
	CreatedByName string    `json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ConversationPayload appends an entry to a ticket's conversation.
type ConversationPayload struct {
	TicketID string            `json:"ticketId"`
	Entry    ConversationEntry `json:"entry"`
}

func (ConversationPayload) Kind() Kind { return KindConversation }

func (p ConversationPayload) Validate() error {
	if p.TicketID == "" {
		return fmt.Errorf("%w: ticket id is required", ErrInvalidPayload)
	}
	if p.Entry.ID == "" {
		return fmt.Errorf("%w: entry id is required", ErrInvalidPayload)
	}
	if err := p.Entry.Type.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if strings.TrimSpace(p.Entry.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidPayload)
	}
	return nil
}

// StatusPayload changes the status of an existing ticket.
type StatusPayload struct {
	TicketID  string       `json:"ticketId"`
	Status    TicketStatus `json:"status"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (StatusPayload) Kind() Kind { return KindStatusUpdate }

func (p StatusPayload) Validate() error {
	if p.TicketID == "" {
		return fmt.Errorf("%w: ticket id is required", ErrInvalidPayload)
	}
	if err := p.Status.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// DecodePayload parses raw JSON into the payload type registered for kind.
func DecodePayload(kind Kind, raw []byte) (Payload, error) {
	switch kind {
	case KindTicket:
		var p TicketPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode ticket payload: %w", err)
		}
		return p, nil
	case KindConversation:
		var p ConversationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode conversation payload: %w", err)
		}
		return p, nil
	case KindStatusUpdate:
		var p StatusPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode status payload: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidKind, string(kind))
}
