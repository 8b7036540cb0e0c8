package installer

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dotfiles/internal/logger"
	"dotfiles/internal/state"
)

// uninstallTool attempts to remove a tool based on the information recorded
// in its state entry. It handles Homebrew, Go, and Rust toolchain installs,
// direct file removal, macOS pkgutil forgetting, and glob-based matching.
func uninstallTool(name string, toolState state.ToolState) bool {
	logger.Info("[INFO] Uninstalling %s...\n", name)

	installPath := toolState.InstallPath

	if strings.HasPrefix(installPath, "/opt/homebrew/bin/") {
		logger.Info("[INFO] Detected Homebrew tool. Uninstalling with brew...\n")
		output, err := exec.Command("brew", "uninstall", name).CombinedOutput()
		logger.Debug("[DEBUG] brew uninstall output: %s\n", output)
		if err != nil {
			logger.Error("[ERROR] Brew uninstall failed: %v\n", err)
			return false
		}
		return true
	}

	if strings.HasPrefix(installPath, filepath.Join(os.Getenv("HOME"), "go/bin/")) {
		logger.Info("[INFO] Detected Go tool. Removing binary directly...\n")
		if err := os.Remove(installPath); err != nil {
			logger.Error("[ERROR] Failed to remove Go binary %s: %v\n", installPath, err)
			return false
		}
		logger.Info("[INFO] Successfully removed Go binary %s\n", installPath)
		return true
	}

	if strings.HasPrefix(installPath, filepath.Join(os.Getenv("HOME"), ".cargo/bin/")) {
		logger.Info("[INFO] Detected Rust tool. Determining uninstall strategy...\n")

		// Rustup components (rustfmt, clippy, rust-analyzer) cannot be
		// removed with cargo uninstall.
		output, err := exec.Command("rustup", "show", "active-toolchain").CombinedOutput()
		activeToolchain := strings.TrimSpace(string(output))
		logger.Debug("[DEBUG] rustup active-toolchain output: %s\n", activeToolchain)

		if err != nil {
			logger.Error("[ERROR] Failed to query rustup active toolchain: %v\n", err)
		} else if strings.Contains(activeToolchain, "system") {
			logger.Warn("[WARN] Cannot uninstall rustup component with a 'system' toolchain.\n")
			logger.Warn("[WARN] To switch to a proper toolchain, run: rustup install stable && rustup default stable\n")
			return false
		} else {
			logger.Info("[INFO] Cannot uninstall rustup component directly. Manual cleanup may be required.\n")
			if err := os.Remove(installPath); err == nil {
				logger.Info("[INFO] Removed binary %s as fallback\n", installPath)
				return true
			}
			return false
		}

		cargoOutput, err := exec.Command("cargo", "uninstall", name).CombinedOutput()
		logger.Debug("[DEBUG] cargo uninstall output: %s\n", cargoOutput)
		if err != nil {
			logger.Error("[ERROR] Cargo uninstall failed: %v\n", err)
			return false
		}
		return true
	}

	if installPath != "" {
		logger.Debug("[DEBUG] Attempting to remove %s\n", installPath)
		if err := os.Remove(installPath); err == nil {
			logger.Info("[INFO] Successfully removed binary %s\n", installPath)
			return true
		} else if err := os.RemoveAll(installPath); err == nil {
			logger.Info("[INFO] Successfully removed directory %s\n", installPath)
			return true
		}
	}

	logger.Info("[INFO] Trying to uninstall %s as macOS .pkg...\n", name)
	output, err := exec.Command("pkgutil", "--pkgs").CombinedOutput()
	if err != nil {
		logger.Error("[ERROR] Failed to query pkgutil: %v\nOutput: %s\n", err, output)
	} else {
		for _, line := range strings.Split(string(output), "\n") {
			if !strings.Contains(line, name) {
				continue
			}
			forgetCmd := exec.Command("sudo", "pkgutil", "--forget", line)
			logger.Debug("[DEBUG] Running pkgutil forget: %s\n", strings.Join(forgetCmd.Args, " "))
			out, err := forgetCmd.CombinedOutput()
			if err == nil {
				logger.Info("[INFO] pkgutil forget succeeded for %s\n", line)
				return true
			}
			logger.Error("[ERROR] pkgutil forget failed: %v\nOutput: %s\n", err, out)
		}
	}

	// Last resort: glob common install locations for the binary name.
	commonPaths := "/usr/local/bin/" + name + "*"
	matches, err := filepath.Glob(commonPaths)
	logger.Debug("[DEBUG] Globbing matches %v\n", matches)
	if err != nil {
		logger.Error("[ERROR] Failed to glob %s: %v\n", commonPaths, err)
	}

	if !removeMatches(matches) {
		logger.Error("[ERROR] No removable files matched %s\n", commonPaths)
		return false
	}
	return true
}

// removeMatches removes each glob match with sudo rm. Returns true if any
// file was successfully removed.
func removeMatches(matches []string) bool {
	removed := false
	for _, match := range matches {
		logger.Info("[INFO] Removing matched binary: %s\n", match)
		output, err := exec.Command("sudo", "rm", "-f", match).CombinedOutput()
		if err != nil {
			logger.Error("[ERROR] Failed to remove %s: %v\nOutput: %s\n", match, err, output)
			continue
		}
		logger.Info("[INFO] Successfully removed %s\n", match)
		removed = true
	}
	return removed
}
