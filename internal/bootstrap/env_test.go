package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	t.Run("prefers docker group", func(t *testing.T) {
		out := "uid=1000(connor) gid=1000(connor) groups=1000(connor),4(adm),999(docker)"
		id, err := ParseID(out)
		require.NoError(t, err)
		assert.Equal(t, "1000", id.UID)
		assert.Equal(t, "connor", id.Username)
		assert.Equal(t, "999", id.GID)
	})

	t.Run("falls back to primary group", func(t *testing.T) {
		out := "uid=1000(connor) gid=1000(connor) groups=1000(connor),4(adm)"
		id, err := ParseID(out)
		require.NoError(t, err)
		assert.Equal(t, "1000", id.GID)
	})

	t.Run("unparseable", func(t *testing.T) {
		_, err := ParseID("who knows")
		assert.Error(t, err)
	})
}

func TestExistingEnv(t *testing.T) {
	contents := `PATH=/usr/bin:/bin
PUID=1000
TZ=America/Los_Angeles
# comment
IGNORED=value
`
	existing := ExistingEnv(contents)
	assert.Equal(t, map[string]string{
		"PUID": "1000",
		"TZ":   "America/Los_Angeles",
	}, existing)
}

func TestRenderEnv(t *testing.T) {
	desired := map[string]string{
		"PUID":    "1000",
		"PGID":    "999",
		"TZ":      "UTC",
		"USERDIR": "/home/connor",
	}

	t.Run("empty file gets everything", func(t *testing.T) {
		lines := RenderEnv(map[string]string{}, desired)
		assert.Equal(t, []string{
			"PGID=999",
			"PUID=1000",
			"TZ=UTC",
			"USERDIR=/home/connor",
		}, lines)
	})

	t.Run("existing values win", func(t *testing.T) {
		existing := map[string]string{"TZ": "America/New_York", "PUID": "501"}
		lines := RenderEnv(existing, desired)
		assert.Equal(t, []string{"PGID=999", "USERDIR=/home/connor"}, lines)
	})

	t.Run("fully populated file yields nothing", func(t *testing.T) {
		existing := map[string]string{"PUID": "1", "PGID": "2", "TZ": "x", "USERDIR": "y"}
		assert.Empty(t, RenderEnv(existing, desired))
	})
}

func TestAppendEnvKeepsLineStructure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")
	require.NoError(t, os.WriteFile(path, []byte("PATH=/usr/bin\n"), 0644))

	block := "PGID=999\nPUID=1000\nTZ=UTC\nUSERDIR=/home/connor\n"
	require.NoError(t, appendEnv(path, block))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	// Every entry must land on its own line; the appended values must be
	// readable back by the converged-file check.
	assert.Equal(t, 5, strings.Count(contents, "\n"))
	for _, line := range []string{"PGID=999", "PUID=1000", "TZ=UTC", "USERDIR=/home/connor"} {
		assert.Contains(t, strings.Split(contents, "\n"), line)
	}
	assert.Equal(t, map[string]string{
		"PUID":    "1000",
		"PGID":    "999",
		"TZ":      "UTC",
		"USERDIR": "/home/connor",
	}, ExistingEnv(contents))
}

func TestSetupEnvironmentWriteAndConverge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")

	require.NoError(t, setupEnvironment(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	first := string(data)

	for _, key := range managedKeys {
		matches := 0
		for _, line := range strings.Split(first, "\n") {
			if strings.HasPrefix(line, key+"=") {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "expected exactly one %s line", key)
	}

	// A second run must see the file as converged and append nothing.
	require.NoError(t, setupEnvironment(path, false))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, string(data))
}

func TestSetupEnvironmentCheckModeWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environment")

	require.NoError(t, setupEnvironment(path, true))
	assert.NoFileExists(t, path)
}
