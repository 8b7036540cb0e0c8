package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dotfiles/internal/inventory"
	"dotfiles/internal/logger"
)

// inventoryDir is where the inventory repository is cloned.
var inventoryDir string

// forceUpdate discards local inventory changes before pulling.
var forceUpdate bool

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage the machine inventory repository",
}

var inventoryUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Clone or pull the inventory repository",
	Run: func(cmd *cobra.Command, args []string) {
		if err := inventory.Update(inventoryDir, inventory.RepoURL(), forceUpdate); err != nil {
			logger.Error("[ERROR] %v\n", err)
			os.Exit(1)
		}
	},
}

var inventoryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the inventory clone",
	Run: func(cmd *cobra.Command, args []string) {
		if err := inventory.Status(inventoryDir); err != nil {
			logger.Error("[ERROR] %v\n", err)
			os.Exit(1)
		}
	},
}

var inventoryHostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List hosts defined in the inventory",
	Run: func(cmd *cobra.Command, args []string) {
		hosts, err := inventory.Hosts(filepath.Join(inventoryDir, "inventory.yml"))
		if err != nil {
			logger.Error("[ERROR] %v\n", err)
			os.Exit(1)
		}
		group := ""
		for _, h := range hosts {
			if h.Group != group {
				group = h.Group
				logger.Info("[INFO] %s:\n", group)
			}
			logger.Info("[INFO]   %s (%s)\n", h.Name, h.Address)
		}
		logger.Info("[INFO] %d host(s) total\n", len(hosts))
	},
}

func init() {
	inventoryCmd.PersistentFlags().StringVar(&inventoryDir, "dir", "inventory", "Path to the inventory clone")
	inventoryUpdateCmd.Flags().BoolVar(&forceUpdate, "force", false, "Discard local changes before pulling")

	inventoryCmd.AddCommand(inventoryUpdateCmd)
	inventoryCmd.AddCommand(inventoryStatusCmd)
	inventoryCmd.AddCommand(inventoryHostsCmd)
	rootCmd.AddCommand(inventoryCmd)
}
