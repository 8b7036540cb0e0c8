package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dotfiles/internal/config"
	"dotfiles/internal/state"
)

func TestSyncToolsCheckMode(t *testing.T) {
	st := state.Load(t.TempDir() + "/state.json")
	st.Tools["old-tool"] = state.ToolState{Version: "1.0.0", InstallPath: "/usr/local/bin/old-tool"}
	st.Tools["current"] = state.ToolState{Version: "2.0.0"}

	tools := []config.Tool{
		{Name: "current", Version: "2.0.0", Source: "github"},
		{Name: "new-tool", Version: "1.2.3", Source: "github"},
	}

	SyncTools(tools, st, true)

	// Check mode neither installs nor uninstalls: the state is untouched.
	assert.NotContains(t, st.Tools, "new-tool")
	assert.Contains(t, st.Tools, "old-tool")
	assert.Equal(t, "2.0.0", st.Tools["current"].Version)
}

func TestSyncSettingsSkipsApplied(t *testing.T) {
	st := state.Load(t.TempDir() + "/state.json")
	st.Settings["com.apple.finder:ShowPathbar"] = state.SettingState{
		Domain: "com.apple.finder", Key: "ShowPathbar", Value: "true",
	}

	settings := []config.Setting{
		{Domain: "com.apple.finder", Key: "ShowPathbar", Value: "true", Type: "bool"},
	}

	// Already applied, so nothing runs even outside check mode.
	SyncSettings(settings, st, false)
	assert.Len(t, st.Settings, 1)
}

func TestSyncSettingsCheckMode(t *testing.T) {
	st := state.Load(t.TempDir() + "/state.json")

	settings := []config.Setting{
		{Domain: "com.apple.dock", Key: "autohide", Value: "true", Type: "bool"},
	}

	SyncSettings(settings, st, true)
	assert.Empty(t, st.Settings)
}

func TestDetectShell(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"/bin/zsh", "zsh"},
		{"/usr/bin/bash", "bash"},
		{"/bin/fish", "zsh"},
		{"", "zsh"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("SHELL", tt.env)
			assert.Equal(t, tt.want, detectShell())
		})
	}
}
