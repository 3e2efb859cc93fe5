package ticket

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"helpdesk/cmd/client/cmd/types"
	"helpdesk/internal/domain/queue"
)

var (
	listFormat  string
	offlineOnly bool

	filterStatus   []string
	filterPriority []string
	filterFrom     string
	filterTo       string
	filterSearch   string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally known writes",
	Long: `List the writes this client knows about: the ones already on the server
and the ones still waiting in the offline queue.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		f, err := newFilter(filterStatus, filterPriority, filterFrom, filterTo, filterSearch)
		if err != nil {
			return err
		}

		state := app.Store().State()
		items := state.OfflineTickets
		if !offlineOnly {
			items = append(append([]queue.Item{}, state.Tickets...), state.OfflineTickets...)
		}
		items = f.apply(items)

		switch listFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		default:
			return printTable(items)
		}
	},
}

func printTable(items []queue.Item) error {
	if len(items) == 0 {
		fmt.Println("Nothing stored locally")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tKIND\tSUMMARY\tSYNC\tATTEMPTS\tCREATED\t\n")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t\n",
			it.ID,
			it.Kind,
			truncate(summary(it), 40),
			it.SyncStatus,
			it.Attempts,
			it.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d\n", len(items))
	return nil
}

func summary(it queue.Item) string {
	switch p := it.Payload.(type) {
	case queue.TicketPayload:
		return p.Title
	case queue.ConversationPayload:
		return fmt.Sprintf("%s on %s: %s", p.Entry.Type, p.TicketID, p.Entry.Content)
	case queue.StatusPayload:
		return fmt.Sprintf("%s -> %s", p.TicketID, p.Status)
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "table or json")
	ListCmd.Flags().BoolVar(&offlineOnly, "offline", false, "only writes waiting to be synced")
	ListCmd.Flags().StringSliceVar(&filterStatus, "status", nil, "ticket status: open, pending, closed (repeatable)")
	ListCmd.Flags().StringSliceVar(&filterPriority, "priority", nil, "ticket priority: low, medium, high, urgent (repeatable)")
	ListCmd.Flags().StringVar(&filterFrom, "from", "", "created on or after this day, YYYY-MM-DD")
	ListCmd.Flags().StringVar(&filterTo, "to", "", "created on or before this day, YYYY-MM-DD")
	ListCmd.Flags().StringVarP(&filterSearch, "search", "s", "", "case-insensitive text in title, description or summary")
}
