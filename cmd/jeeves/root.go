package main

import (
	"github.com/spf13/cobra"

	"github.com/codyseavey/jeeves/internal/config"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jeeves",
	Short: "Netrunner card lookup bot",
	Long: `Jeeves answers card queries in chat. Wrap a card name in [[ ]] for the
full card, {{ }} for its image, or << >> for its flavor text.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the TOML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lookupCmd)
}
