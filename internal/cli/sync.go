package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pankajredekar/lemonmenu/internal/utils"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Populate the menu cache",
	Long:  "Downloads the remote menu into the local cache if the cache is empty. A populated cache is never refreshed; run 'lemonmenu clear' first to re-download.",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustLoadApp()
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := a.coordinator.Run(ctx)
		if err != nil {
			utils.PrintError("Sync failed: %v", err)
			a.Close()
			os.Exit(1)
		}

		if !result.Fetched {
			utils.PrintSuccess("Menu cache already populated")
			return
		}
		utils.PrintSuccess("Cached %d menu item(s) from %s", result.Records, a.cfg.MenuURL)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
