package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"helpdesk/internal/domain/queue"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		item queue.Item
		want string
	}{
		{
			name: "ticket",
			item: queue.Item{Payload: queue.TicketPayload{Title: "VPN drops"}},
			want: "VPN drops",
		},
		{
			name: "conversation",
			item: queue.Item{Payload: queue.ConversationPayload{
				TicketID: "t-1",
				Entry:    queue.ConversationEntry{Type: queue.EntryNote, Content: "called back"},
			}},
			want: "note on t-1: called back",
		},
		{
			name: "status",
			item: queue.Item{Payload: queue.StatusPayload{TicketID: "t-1", Status: queue.TicketClosed}},
			want: "t-1 -> closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summary(tt.item))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "привет...", truncate("приветствую всех", 9))
}

func TestAuthor_Flags(t *testing.T) {
	authorID, authorName = "a-7", "Agent Seven"
	defer func() { authorID, authorName = "", "" }()

	assert.Equal(t, queue.Person{UID: "a-7", Name: "Agent Seven"}, author())
}
