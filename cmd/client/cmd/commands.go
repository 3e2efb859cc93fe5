package cmd

import (
	"helpdesk/cmd/client/cmd/config"
	"helpdesk/cmd/client/cmd/sync"
	"helpdesk/cmd/client/cmd/ticket"
	"helpdesk/cmd/client/cmd/watch"
)

func init() {
	rootCmd.AddCommand(ticket.TicketCmd)
	ticket.TicketCmd.AddCommand(ticket.CreateCmd)
	ticket.TicketCmd.AddCommand(ticket.ReplyCmd)
	ticket.TicketCmd.AddCommand(ticket.NoteCmd)
	ticket.TicketCmd.AddCommand(ticket.StatusCmd)
	ticket.TicketCmd.AddCommand(ticket.ListCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(watch.WatchCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(config.ConfigCmd)
}
