package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"dotfiles/internal/bootstrap"
	"dotfiles/internal/logger"
)

// bootstrapCheck plans the environment changes without writing them.
var bootstrapCheck bool

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Prepare a fresh Linux host",
}

var bootstrapEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "Populate /etc/environment with PUID, PGID, TZ, and USERDIR",
	Run: func(cmd *cobra.Command, args []string) {
		if err := bootstrap.SetupEnvironment(bootstrapCheck); err != nil {
			logger.Error("[ERROR] %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	bootstrapEnvCmd.Flags().BoolVar(&bootstrapCheck, "check", false, "Plan changes without applying them")

	bootstrapCmd.AddCommand(bootstrapEnvCmd)
	rootCmd.AddCommand(bootstrapCmd)
}
