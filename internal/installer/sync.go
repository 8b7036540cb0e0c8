package installer

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"dotfiles/internal/config"
	"dotfiles/internal/logger"
	"dotfiles/internal/state"
)

// SyncTools synchronizes the installed tools with the desired config and
// current state. New tools are installed and outdated tools upgraded
// concurrently; tools removed from the config are uninstalled afterwards.
// In check mode nothing is installed or removed, the pending work is only
// reported.
func SyncTools(tools []config.Tool, st *state.State, check bool) {
	logger.Debug("[DEBUG] Starting SyncTools with %d tools, current state has %d entries\n", len(tools), len(st.Tools))

	existing := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, tool := range tools {
		existing[tool.Name] = true

		cur, ok := st.Tools[tool.Name]
		if ok && cur.Version == tool.Version {
			logger.Info("[INFO] %s version %s is current. Skipping.\n", tool.Name, tool.Version)
			continue
		}

		if check {
			logger.Info("[INFO] Would install %s@%s (current: %q)\n", tool.Name, tool.Version, cur.Version)
			continue
		}

		wg.Add(1)
		go func(tool config.Tool, cur state.ToolState) {
			defer wg.Done()
			logger.Debug("[DEBUG] SyncTools: Installing/upgrading %s (current: %s, target: %s)\n",
				tool.Name, cur.Version, tool.Version)

			installPath, err := installTool(tool)
			if err != nil {
				logger.Error("[ERROR] Failed to install %s@%s: %v\n", tool.Name, tool.Version, err)
				return
			}
			logger.Success("[INFO] Installed %s@%s\n", tool.Name, tool.Version)

			mu.Lock()
			st.Tools[tool.Name] = state.ToolState{
				Version:             tool.Version,
				InstallPath:         installPath,
				InstalledByDotfiles: true,
			}
			mu.Unlock()
		}(tool, cur)
	}

	wg.Wait()

	// Removal runs sequentially so concurrent installs can't race the state
	// map while entries are deleted.
	for name, toolState := range st.Tools {
		if existing[name] {
			continue
		}
		if check {
			logger.Info("[INFO] Would uninstall %s (no longer in config)\n", name)
			continue
		}
		logger.Warn("[WARN] %s removed from config. Uninstalling...\n", name)
		if uninstallTool(name, toolState) {
			delete(st.Tools, name)
		} else {
			logger.Warn("[WARN] Failed to uninstall %s completely. Manual cleanup may be required.\n", name)
		}
	}

	logger.Debug("[DEBUG] Finished SyncTools\n")
}

// SyncSettings applies macOS user defaults from the config and records the
// applied values in the state file so unchanged settings are skipped on the
// next run.
func SyncSettings(settings []config.Setting, st *state.State, check bool) {
	for _, s := range settings {
		key := fmt.Sprintf("%s:%s", s.Domain, s.Key)
		logger.Debug("[DEBUG] Considering setting %s = %s (%s)\n", key, s.Value, s.Type)

		if prev, ok := st.Settings[key]; ok && prev.Value == s.Value {
			logger.Info("[INFO] Skipping already applied setting %s = %s\n", key, s.Value)
			continue
		}

		if check {
			logger.Info("[INFO] Would apply setting %s = %s\n", key, s.Value)
			continue
		}

		args := []string{"write", s.Domain, s.Key}
		switch s.Type {
		case "bool":
			args = append(args, "-bool", s.Value)
		case "int":
			args = append(args, "-int", s.Value)
		case "float":
			args = append(args, "-float", s.Value)
		default:
			args = append(args, "-string", s.Value)
		}

		cmd := exec.Command("defaults", args...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			logger.Error("[ERROR] Failed to apply setting %s: %v\nOutput: %s\n", key, err, output)
			continue
		}

		logger.Success("[INFO] Applied setting: %s = %s\n", key, s.Value)
		st.Settings[key] = state.SettingState{
			Domain: s.Domain,
			Key:    s.Key,
			Value:  s.Value,
		}
	}
}

// SyncAliases ensures shell aliases and raw shell snippets from the config
// are present in the user's shell rc file, skipping lines already there.
func SyncAliases(aliases config.Aliases, check bool) {
	usr, err := user.Current()
	if err != nil {
		logger.Error("[ERROR] Failed to get current user: %v\n", err)
		return
	}

	shell := aliases.Shell
	if shell == "" {
		shell = detectShell()
	}
	logger.Debug("[DEBUG] Using shell '%s' for aliases\n", shell)

	shellrcMap := map[string]string{
		"zsh":  ".zshrc",
		"bash": ".bashrc",
	}
	shellrc, ok := shellrcMap[shell]
	if !ok {
		logger.Warn("[WARN] Unknown shell '%s', defaulting to '.zshrc'\n", shell)
		shellrc = ".zshrc"
	}
	rcPath := filepath.Join(usr.HomeDir, shellrc)

	existing := make(map[string]bool)
	if f, err := os.Open(rcPath); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			existing[strings.TrimSpace(scanner.Text())] = true
		}
		_ = f.Close()
	}

	var pending []string
	for _, raw := range aliases.RawConfigs {
		for _, line := range strings.Split(raw, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || existing[trimmed] {
				logger.Debug("[DEBUG] Raw config already exists or is empty: %s\n", trimmed)
				continue
			}
			pending = append(pending, trimmed)
			existing[trimmed] = true
		}
	}
	for _, a := range aliases.Entries {
		aliasCmd := fmt.Sprintf("alias %s=\"%s\"", a.Name, a.Value)
		if existing[aliasCmd] {
			logger.Debug("[DEBUG] Alias already exists: %s\n", aliasCmd)
			continue
		}
		pending = append(pending, aliasCmd)
		existing[aliasCmd] = true
	}

	if len(pending) == 0 {
		logger.Info("[INFO] Shell config %s is up to date\n", rcPath)
		return
	}

	if check {
		for _, line := range pending {
			logger.Info("[INFO] Would add to %s: %s\n", rcPath, line)
		}
		return
	}

	file, err := os.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger.Error("[ERROR] Unable to open file %s for appending: %v\n", rcPath, err)
		return
	}
	defer file.Close()

	for _, line := range pending {
		if _, err := file.WriteString(line + "\n"); err != nil {
			logger.Error("[ERROR] Failed to write shell config line '%s': %v\n", line, err)
			continue
		}
		logger.Success("[INFO] Added shell config: %s\n", line)
	}
}

// detectShell identifies the current user's shell from $SHELL. Returns "zsh"
// or "bash", defaulting to "zsh" when unknown.
func detectShell() string {
	shell := os.Getenv("SHELL")
	logger.Debug("[DEBUG] Detected shell environment: %s\n", shell)

	if strings.Contains(shell, "zsh") {
		return "zsh"
	} else if strings.Contains(shell, "bash") {
		return "bash"
	}
	return "zsh"
}
