package ticket

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"helpdesk/cmd/client/cmd/types"
	"helpdesk/internal/domain/queue"
)

var ReplyCmd = &cobra.Command{
	Use:     "reply <ticket-id> <message>...",
	Short:   "Reply to the customer",
	Args:    cobra.MinimumNArgs(2),
	Example: `  helpdesk ticket reply 0190f1c2-... "We restarted the VPN gateway"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return addEntry(cmd, queue.EntryReply, args)
	},
}

var NoteCmd = &cobra.Command{
	Use:   "note <ticket-id> <text>...",
	Short: "Add an internal note",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addEntry(cmd, queue.EntryNote, args)
	},
}

func addEntry(cmd *cobra.Command, typ queue.EntryType, args []string) error {
	app, err := types.App(cmd.Context())
	if err != nil {
		return err
	}

	ticketID, content := args[0], strings.Join(args[1:], " ")
	online := app.CheckOnline(cmd.Context())
	item, err := app.Tickets().AddConversationEntry(cmd.Context(), ticketID, typ, content, author(), online)
	if err != nil {
		return err
	}

	fmt.Printf("Entry ID: %s (%s)\n", item.ID, item.SyncStatus)
	return nil
}
