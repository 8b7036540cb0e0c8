// Package state persists what the tool has applied to a machine, so repeat
// sync runs only touch what changed.
package state

import (
	"encoding/json"
	"os"

	"dotfiles/internal/logger"
)

// ToolState records an installed tool: the version, where the executable
// landed, and whether this tool manages it (as opposed to a pre-existing
// manual install it should leave alone).
type ToolState struct {
	Version             string `json:"version"`
	InstallPath         string `json:"install_path"`
	InstalledByDotfiles bool   `json:"installed_by_dotfiles"`
}

// SettingState records a macOS defaults value that was applied, keyed in the
// state file by "domain:key".
type SettingState struct {
	Domain string `json:"domain"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// FontState records an installed font and the files it placed, so removal can
// delete exactly those.
type FontState struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	URL     string   `json:"url"`
	Files   []string `json:"files"`
}

// State is the full contents of the state file.
type State struct {
	Tools    map[string]ToolState    `json:"tools"`
	Settings map[string]SettingState `json:"settings"`
	Fonts    map[string]FontState    `json:"fonts"`
}

// Load reads the state file at path. A missing or unreadable file yields an
// empty state; maps are always non-nil on return.
func Load(path string) *State {
	st := &State{}

	file, err := os.ReadFile(path)
	if err == nil {
		_ = json.Unmarshal(file, st)
	}

	if st.Tools == nil {
		st.Tools = make(map[string]ToolState)
	}
	if st.Settings == nil {
		st.Settings = make(map[string]SettingState)
	}
	if st.Fonts == nil {
		st.Fonts = make(map[string]FontState)
	}
	return st
}

// Save writes the state as indented JSON. Failures are logged rather than
// propagated: a stale state file costs redundant work on the next run, not
// correctness.
func Save(path string, st *State) {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal state: %v\n", err)
		return
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.WriteFile(path, file, 0644); err != nil {
		logger.Error("[ERROR] Failed to write state file %s: %v\n", path, err)
	}
}
