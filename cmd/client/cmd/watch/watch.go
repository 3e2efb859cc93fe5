package watch

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"helpdesk/cmd/client/cmd/types"
)

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay running and sync whenever the server comes back",
	Long: `Watch subscribes to connectivity changes and drains the offline queue each
time the server becomes reachable. Stop it with Ctrl+C; a running sync is
finished first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := app.Sync().Start(ctx); err != nil {
			return fmt.Errorf("start sync: %w", err)
		}
		st := app.Sync().GetSyncStatus()
		fmt.Printf("Watching %s, %d write(s) queued. Press Ctrl+C to stop.\n", app.Config().ServerAddress, st.OfflineCount)

		<-ctx.Done()

		app.Sync().Stop()
		app.Sync().Wait()
		fmt.Println("Stopped")
		return nil
	},
}
