package queue

import "fmt"

// Kind tags the payload of a queued write and decides which remote
// operation persists it.
type Kind string

const (
	KindTicket       Kind = "ticket"
	KindConversation Kind = "conversation"
	KindStatusUpdate Kind = "status_update"
)

// Validate checks that the kind is one of the known values.
func (k Kind) Validate() error {
	switch k {
	case KindTicket, KindConversation, KindStatusUpdate:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
}

func (k Kind) String() string {
	return string(k)
}

// DisplayName returns a human readable name of the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindTicket:
		return "Ticket"
	case KindConversation:
		return "Conversation entry"
	case KindStatusUpdate:
		return "Status change"
	default:
		return "Unknown"
	}
}
