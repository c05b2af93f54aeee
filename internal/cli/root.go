package cli

import (
	"github.com/pankajredekar/lemonmenu/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "lemonmenu",
	Short:        "Little Lemon menu cache",
	Long:         "lemonmenu downloads the restaurant menu once, caches it in a local database and renders it as a searchable, sortable list",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFile, "Path to the configuration file")
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}
