package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"helpdesk/cmd/client/cmd/types"
)

var force bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the API token and every local ticket",
	Long: `Logout clears the local store, including writes that were never synced,
and removes the API token from the config file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd.Context())
		if err != nil {
			return err
		}

		if n := app.Store().Counts().Offline; n > 0 && !force {
			return fmt.Errorf("%d write(s) are not synced yet; run \"helpdesk sync\" first or pass --force", n)
		}
		if err := app.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&force, "force", false, "log out even with unsynced writes")
}
