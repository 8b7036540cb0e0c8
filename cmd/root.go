package cmd

import (
	"github.com/spf13/cobra"

	"dotfiles/internal/logger"
)

// debug toggles debug logging, set via the global `--debug` flag.
var debug bool

var rootCmd = &cobra.Command{
	Use:   "dotfiles",
	Short: "Machine configuration tool",
	Long: `dotfiles keeps a machine converged with its declared configuration:
network interfaces, power management, installed tools, macOS settings,
shell aliases, and fonts. It also manages the machine inventory clone,
cleans workspace build artifacts, and bootstraps Linux hosts.`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

// Execute runs the CLI. Subcommands register themselves in their own init
// functions.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	_ = rootCmd.Execute()
}
