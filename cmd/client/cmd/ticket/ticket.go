package ticket

import (
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"helpdesk/internal/domain/queue"
)

// TicketCmd is the parent of every ticket write and of the local listing.
var TicketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Create and update tickets",
	Long: `Create tickets, add replies and internal notes, and change status.

Writes go straight to the server when it answers. Otherwise they are queued
locally and synced later.`,
}

var (
	authorID   string
	authorName string
)

func init() {
	TicketCmd.PersistentFlags().StringVar(&authorID, "author-id", "", "id of the agent writing (default: OS user)")
	TicketCmd.PersistentFlags().StringVar(&authorName, "author-name", "", "display name of the agent writing (default: OS user)")
}

func author() queue.Person {
	p := queue.Person{UID: authorID, Name: authorName}
	if p.UID != "" && p.Name != "" {
		return p
	}

	fallback := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		fallback = u.Username
		if p.Name == "" && u.Name != "" {
			p.Name = u.Name
		}
	}
	if p.UID == "" {
		p.UID = fallback
	}
	if p.Name == "" {
		p.Name = fallback
	}
	return p
}
