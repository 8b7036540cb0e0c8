package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"dotfiles/internal/cleanup"
	"dotfiles/internal/logger"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove build artifacts and caches from a workspace",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		removed, err := cleanup.Clean(root, cleanup.DefaultGroups)
		if err != nil {
			logger.Error("[ERROR] Clean failed: %v\n", err)
			os.Exit(1)
		}
		if removed == 0 {
			logger.Info("[INFO] Nothing to clean in %s\n", root)
			return
		}
		logger.Success("[INFO] Removed %d path(s) from %s\n", removed, root)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
