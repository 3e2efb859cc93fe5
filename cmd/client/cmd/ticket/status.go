package ticket

import (
	"fmt"

	"github.com/spf13/cobra"

	"helpdesk/cmd/client/cmd/types"
	"helpdesk/internal/domain/queue"
)

var StatusCmd = &cobra.Command{
	Use:       "status <ticket-id> <open|pending|closed>",
	Short:     "Change the status of a ticket",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(queue.TicketOpen), string(queue.TicketPending), string(queue.TicketClosed)},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		online := app.CheckOnline(cmd.Context())
		item, err := app.Tickets().ChangeTicketStatus(cmd.Context(), args[0], queue.TicketStatus(args[1]), online)
		if err != nil {
			return err
		}

		fmt.Printf("Status change %s (%s)\n", item.ID, item.SyncStatus)
		return nil
	},
}
