package cli

import (
	"context"
	"os"

	"github.com/pankajredekar/lemonmenu/internal/utils"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the menu cache",
	Long:  "Removes every cached menu item so the next sync downloads the menu again",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustLoadApp()
		defer a.Close()

		ctx := context.Background()
		count, err := a.store.Count(ctx)
		if err != nil {
			utils.PrintError("Failed to count menu items: %v", err)
			a.Close()
			os.Exit(1)
		}

		if count == 0 {
			utils.PrintWarning("Menu cache is already empty")
			return
		}

		if err := a.store.Clear(ctx); err != nil {
			utils.PrintError("Failed to clear menu cache: %v", err)
			a.Close()
			os.Exit(1)
		}

		utils.PrintSuccess("Removed %d menu item(s)", count)
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
