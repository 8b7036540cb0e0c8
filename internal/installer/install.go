package installer

import (
	"fmt"
	"os"
	"path"
	"strings"

	"dotfiles/internal/config"
	"dotfiles/internal/logger"
	"dotfiles/internal/shell"
)

// installTool installs a single tool and returns its install path.
func installTool(tool config.Tool) (string, error) {
	logger.Debug("[DEBUG] installTool: Installing tool %s from source %s\n", tool.Name, tool.Source)

	switch tool.Source {
	case "github":
		logger.Info("[INFO] Installing %s@%s from GitHub...\n", tool.Name, tool.Version)
		return downloadFromGitHub(tool)

	case "url":
		logger.Info("[INFO] Installing %s from custom URL...\n", tool.Name)
		tmp := "/tmp/" + path.Base(tool.URL)
		if err := downloadFile(tool.URL, tmp); err != nil {
			return "", fmt.Errorf("download failed for %s: %w", tool.Name, err)
		}

		// .pkg files go through the macOS installer, everything else is
		// treated as an archive containing the binary.
		if strings.HasSuffix(tool.URL, ".pkg") {
			logger.Info("[INFO] Detected .pkg file for %s. Installing via macOS installer...\n", tool.Name)
			// installer runs for a while; stream its output instead of
			// buffering it.
			if err := shell.Stream(2, "sudo", "installer", "-pkg", tmp, "-target", "/"); err != nil {
				return "", fmt.Errorf(".pkg installation failed for %s: %w", tool.Name, err)
			}
			// General location for GUI apps; varies by .pkg.
			return "/Applications", nil
		}

		asset, err := ExtractAndInstall(tmp, "/tmp/")
		if err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", tool.Name, err)
		}
		logger.Debug("[DEBUG] Extracted asset to %s\n", asset)

		if err := os.Chmod(asset, 0755); err != nil {
			return "", fmt.Errorf("chmod failed for %s: %w", tool.Name, err)
		}
		return asset, nil

	default:
		return "", fmt.Errorf("unknown tool source %q for %s", tool.Source, tool.Name)
	}
}
