package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// mainConfig is the shape of the top-level config file: a set of paths to the
// per-area sub-config files. Empty entries skip that area entirely, so a host
// config can declare only the areas it cares about.
type mainConfig struct {
	Config struct {
		NetworkFile  string `yaml:"network_file"`
		PowerFile    string `yaml:"power_file"`
		ToolsFile    string `yaml:"tools_file"`
		SettingsFile string `yaml:"settings_file"`
		AliasesFile  string `yaml:"aliases_file"`
		FontsFile    string `yaml:"fonts_file"`
	} `yaml:"config"`
}

// Load reads the main config file and every sub-config it references,
// returning the assembled Config. Referenced paths are resolved relative to
// the main config file's directory.
func Load(configFile string) (Config, error) {
	var cfg Config

	raw, err := os.ReadFile(configFile)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	var main mainConfig
	if err := yaml.Unmarshal(raw, &main); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", configFile, err)
	}

	baseDir := filepath.Dir(configFile)

	// ----- network.yaml -----
	if main.Config.NetworkFile != "" {
		var wrapper struct {
			Network struct {
				Interfaces []Interface `yaml:"interfaces"`
			} `yaml:"network"`
		}
		if err := loadSub(baseDir, main.Config.NetworkFile, &wrapper); err != nil {
			return cfg, err
		}
		cfg.Interfaces = wrapper.Network.Interfaces
	}

	// ----- power.yaml -----
	if main.Config.PowerFile != "" {
		var wrapper struct {
			Power Power `yaml:"power"`
		}
		if err := loadSub(baseDir, main.Config.PowerFile, &wrapper); err != nil {
			return cfg, err
		}
		cfg.Power = wrapper.Power
	}

	// ----- tools.yaml -----
	if main.Config.ToolsFile != "" {
		var wrapper struct {
			Tools []Tool `yaml:"tools"`
		}
		if err := loadSub(baseDir, main.Config.ToolsFile, &wrapper); err != nil {
			return cfg, err
		}
		cfg.Tools = wrapper.Tools
	}

	// ----- settings.yaml -----
	// Expected structure: settings: { macos: [ {domain, key, value, type}, ... ] }
	if main.Config.SettingsFile != "" {
		var wrapper struct {
			Settings struct {
				MacOS []Setting `yaml:"macos"`
			} `yaml:"settings"`
		}
		if err := loadSub(baseDir, main.Config.SettingsFile, &wrapper); err != nil {
			return cfg, err
		}
		cfg.Settings = wrapper.Settings.MacOS
	}

	// ----- aliases.yaml -----
	if main.Config.AliasesFile != "" {
		var wrapper struct {
			Aliases Aliases `yaml:"aliases"`
		}
		if err := loadSub(baseDir, main.Config.AliasesFile, &wrapper); err != nil {
			return cfg, err
		}
		cfg.Aliases = wrapper.Aliases
	}

	// ----- fonts.yaml -----
	if main.Config.FontsFile != "" {
		var wrapper struct {
			Fonts []Font `yaml:"fonts"`
		}
		if err := loadSub(baseDir, main.Config.FontsFile, &wrapper); err != nil {
			return cfg, err
		}
		cfg.Fonts = wrapper.Fonts
	}

	return cfg, nil
}

// loadSub reads one referenced sub-config file into out.
func loadSub(baseDir, path string, out any) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
