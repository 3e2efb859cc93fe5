package ticket

import (
	"fmt"

	"github.com/spf13/cobra"

	"helpdesk/cmd/client/cmd/types"
	"helpdesk/internal/domain/queue"
)

var (
	title        string
	description  string
	priority     string
	contactName  string
	contactEmail string
	contactPhone string
	attachments  []string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a ticket",
	Example: `  helpdesk ticket create --title "VPN drops" --description "Every hour since Monday" \
      --priority high --contact-email jane@example.com`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		p := queue.TicketPayload{
			Title:       title,
			Description: description,
			Priority:    queue.Priority(priority),
			CreatedBy:   author(),
			ContactInfo: queue.Contact{Name: contactName, Email: contactEmail, Phone: contactPhone},
		}
		for _, url := range attachments {
			p.Attachments = append(p.Attachments, queue.Attachment{Name: url, URL: url})
		}

		online := app.CheckOnline(cmd.Context())
		item, err := app.Tickets().EnqueueOrWriteTicket(cmd.Context(), p, online)
		if err != nil {
			return err
		}

		fmt.Printf("Ticket ID: %s (%s)\n", item.ID, item.SyncStatus)
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&title, "title", "t", "", "ticket title")
	CreateCmd.Flags().StringVarP(&description, "description", "d", "", "what happened")
	CreateCmd.Flags().StringVarP(&priority, "priority", "p", string(queue.PriorityMedium), "low, medium, high or urgent")
	CreateCmd.Flags().StringVar(&contactName, "contact-name", "", "customer name")
	CreateCmd.Flags().StringVar(&contactEmail, "contact-email", "", "customer email")
	CreateCmd.Flags().StringVar(&contactPhone, "contact-phone", "", "customer phone")
	CreateCmd.Flags().StringSliceVar(&attachments, "attachment", nil, "url of an uploaded file, repeatable")
}
