package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"dotfiles/internal/config"
	"dotfiles/internal/installer"
	"dotfiles/internal/logger"
	"dotfiles/internal/network"
	"dotfiles/internal/power"
	"dotfiles/internal/state"
)

// configPath is the main configuration YAML, passed via `--config`/`-c`.
var configPath string

// statePath tracks applied settings and installed tools between runs.
var statePath string

// checkMode plans changes without applying them.
var checkMode bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync system state with config (network, power, tools, settings, aliases, fonts)",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := state.Load(statePath)

		syncNetwork(cfg)
		syncPower(cfg)
		installer.SyncTools(cfg.Tools, st, checkMode)
		installer.SyncSettings(cfg.Settings, st, checkMode)
		installer.SyncAliases(cfg.Aliases, checkMode)
		installer.SyncFonts(cfg.Fonts, st, checkMode)

		if !checkMode {
			state.Save(statePath, st)
		}
	},
}

var syncNetworkCmd = &cobra.Command{
	Use:   "network",
	Short: "Sync only network interfaces with config",
	Run: func(cmd *cobra.Command, args []string) {
		syncNetwork(loadConfig())
	},
}

var syncPowerCmd = &cobra.Command{
	Use:   "power",
	Short: "Sync only power management settings with config",
	Run: func(cmd *cobra.Command, args []string) {
		syncPower(loadConfig())
	},
}

var syncToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Sync only tools with config",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := state.Load(statePath)

		installer.SyncTools(cfg.Tools, st, checkMode)
		if !checkMode {
			state.Save(statePath, st)
		}
	},
}

var syncSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Sync only macOS settings with config",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := state.Load(statePath)

		installer.SyncSettings(cfg.Settings, st, checkMode)
		if !checkMode {
			state.Save(statePath, st)
		}
	},
}

var syncAliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "Sync only shell aliases with config",
	Run: func(cmd *cobra.Command, args []string) {
		installer.SyncAliases(loadConfig().Aliases, checkMode)
	},
}

var syncFontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "Sync only fonts with config",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := state.Load(statePath)

		installer.SyncFonts(cfg.Fonts, st, checkMode)
		if !checkMode {
			state.Save(statePath, st)
		}
	},
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func syncNetwork(cfg config.Config) {
	if len(cfg.Interfaces) == 0 {
		logger.Debug("[DEBUG] No network interfaces declared, skipping\n")
		return
	}

	c := network.New(network.Exec, checkMode)
	if err := c.Run(cfg.Interfaces); err != nil {
		logger.Error("[ERROR] Network sync failed: %v\n", err)
		os.Exit(1)
	}

	for _, cmdLine := range c.CommandsRun {
		logger.Debug("[DEBUG] Ran: %s\n", cmdLine)
	}
	if len(c.Changelog) == 0 {
		logger.Info("[INFO] Network interfaces already match config\n")
		return
	}
	for _, change := range c.Changelog {
		if checkMode {
			logger.Info("[INFO] Would change: %s\n", change)
		} else {
			logger.Success("[INFO] %s\n", change)
		}
	}
}

func syncPower(cfg config.Config) {
	if len(cfg.Power.OnBattery) == 0 && len(cfg.Power.OnCharger) == 0 {
		logger.Debug("[DEBUG] No power settings declared, skipping\n")
		return
	}

	plan, err := power.Sync(power.Exec, cfg.Power, checkMode)
	if err != nil {
		logger.Error("[ERROR] Power sync failed: %v\n", err)
		os.Exit(1)
	}

	if !plan.Changed() {
		logger.Info("[INFO] Power settings already match config\n")
		return
	}
	before, after := plan.Diff()
	if checkMode {
		logger.Info("[INFO] Power settings that would change:\nbefore:\n%s\nafter:\n%s\n", before, after)
		return
	}
	logger.Success("[INFO] Updated power settings:\nbefore:\n%s\nafter:\n%s\n", before, after)
}

func init() {
	syncCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")
	syncCmd.PersistentFlags().StringVar(&statePath, "state", "state.json", "Path to state file")
	syncCmd.PersistentFlags().BoolVar(&checkMode, "check", false, "Plan changes without applying them")

	syncCmd.AddCommand(syncNetworkCmd)
	syncCmd.AddCommand(syncPowerCmd)
	syncCmd.AddCommand(syncToolsCmd)
	syncCmd.AddCommand(syncSettingsCmd)
	syncCmd.AddCommand(syncAliasesCmd)
	syncCmd.AddCommand(syncFontsCmd)
	rootCmd.AddCommand(syncCmd)
}
