package sync

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"helpdesk/cmd/client/cmd/types"
	"helpdesk/internal/app/client"
	"helpdesk/internal/app/client/notify"
)

var (
	retryFailed bool
	showStatus  bool
	jsonOutput  bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push queued writes to the server",
	Long: `Sync sends every queued write that is not abandoned to the server, in the
order it was made. With --retry only the writes that failed before are sent.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		if showStatus {
			return printStatus(app.Sync().GetSyncStatus())
		}

		if app.Store().Counts().Offline == 0 {
			app.Notifier().Notify(notify.NothingToSync())
			return nil
		}
		if !app.CheckOnline(cmd.Context()) {
			app.Notifier().Notify(notify.NoConnection())
			return nil
		}

		var res client.SyncResult
		if retryFailed {
			res = app.Sync().RetryFailedTickets(cmd.Context())
		} else {
			res = app.Sync().SyncOfflineTickets(cmd.Context())
		}
		if res.Failed > 0 {
			return fmt.Errorf("%d write(s) failed to sync", res.Failed)
		}
		return nil
	},
}

var DiscardCmd = &cobra.Command{
	Use:   "discard <id>",
	Short: "Drop a write from the offline queue without sending it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}
		if !app.Store().Remove(args[0]) {
			return fmt.Errorf("no queued write with id %s", args[0])
		}
		fmt.Printf("Discarded %s\n", args[0])
		return nil
	},
}

func printStatus(st client.SyncStatus) error {
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(st)
	}
	fmt.Printf("Syncing:   %t\n", st.IsSyncing)
	fmt.Printf("Queued:    %d\n", st.OfflineCount)
	fmt.Printf("Failed:    %d\n", st.FailedCount)
	fmt.Printf("Abandoned: %d\n", st.AbandonedCount)
	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&retryFailed, "retry", false, "only retry writes that failed before")
	SyncCmd.Flags().BoolVar(&showStatus, "status", false, "show queue counters and exit")
	SyncCmd.Flags().BoolVar(&jsonOutput, "json", false, "print --status as JSON")
	SyncCmd.AddCommand(DiscardCmd)
}
