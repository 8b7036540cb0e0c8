package power

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dotfiles/internal/config"
)

const pmsetCustomOutput = `Battery Power:
 lidwake              1
 standbydelaylow      10800
 standby              1
 displaysleep         2
 sleep                1
 lessbright           1
AC Power:
 lidwake              1
 standby              1
 displaysleep         10
 sleep                0
 womp                 1
 Sleep On Power Button 1
`

func TestParseCustom(t *testing.T) {
	data := ParseCustom(pmsetCustomOutput)
	require.Contains(t, data, "Battery Power")
	require.Contains(t, data, "AC Power")

	assert.Equal(t, "2", data["Battery Power"]["displaysleep"])
	assert.Equal(t, "10800", data["Battery Power"]["standbydelaylow"])
	assert.Equal(t, "10", data["AC Power"]["displaysleep"])
	assert.Equal(t, "0", data["AC Power"]["sleep"])

	// The power button line doesn't follow the key/value shape.
	assert.NotContains(t, data["AC Power"], "Sleep")
}

func TestBuildPlan(t *testing.T) {
	current := ParseCustom(pmsetCustomOutput)

	t.Run("diffs only changed keys", func(t *testing.T) {
		cfg := config.Power{
			OnBattery: map[string]any{"displaysleep": 5, "sleep": 1},
			OnCharger: map[string]any{"displaysleep": 10, "womp": 0},
		}
		plan, err := BuildPlan(cfg, current)
		require.NoError(t, err)
		require.True(t, plan.Changed())

		assert.Equal(t, []Change{
			{Block: "on_battery", Key: "displaysleep", Before: "2", After: "5"},
			{Block: "on_charger", Key: "womp", Before: "1", After: "0"},
		}, plan.Changes)
		assert.Equal(t, [][]string{
			{"-b", "displaysleep", "5"},
			{"-c", "womp", "0"},
		}, plan.Commands)
	})

	t.Run("numeric comparison", func(t *testing.T) {
		cfg := config.Power{OnBattery: map[string]any{"displaysleep": "02"}}
		plan, err := BuildPlan(cfg, current)
		require.NoError(t, err)
		assert.False(t, plan.Changed())
	})

	t.Run("already converged", func(t *testing.T) {
		cfg := config.Power{
			OnBattery: map[string]any{"lidwake": 1, "standby": 1},
			OnCharger: map[string]any{"sleep": 0},
		}
		plan, err := BuildPlan(cfg, current)
		require.NoError(t, err)
		assert.False(t, plan.Changed())
		assert.Empty(t, plan.Changes)
	})

	t.Run("unknown key", func(t *testing.T) {
		cfg := config.Power{OnBattery: map[string]any{"bogusparam": 1}}
		_, err := BuildPlan(cfg, current)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogusparam")
		assert.Contains(t, err.Error(), "pmset -g custom")
	})

	t.Run("missing section", func(t *testing.T) {
		noBattery := map[string]map[string]string{"AC Power": {"sleep": "0"}}
		cfg := config.Power{OnBattery: map[string]any{"sleep": 1}}
		_, err := BuildPlan(cfg, noBattery)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Battery Power")
	})
}

func TestPlanDiff(t *testing.T) {
	plan := Plan{Changes: []Change{
		{Block: "on_battery", Key: "displaysleep", Before: "2", After: "5"},
		{Block: "on_charger", Key: "womp", Before: "1", After: "0"},
	}}
	before, after := plan.Diff()
	assert.Equal(t, "on_battery.displaysleep=2\non_charger.womp=1\n", before)
	assert.Equal(t, "on_battery.displaysleep=5\non_charger.womp=0\n", after)
}

func TestSync(t *testing.T) {
	cfg := config.Power{OnBattery: map[string]any{"displaysleep": 5}}

	t.Run("applies commands", func(t *testing.T) {
		var calls []string
		run := func(args ...string) (string, error) {
			calls = append(calls, strings.Join(args, " "))
			if args[0] == "-g" {
				return pmsetCustomOutput, nil
			}
			return "", nil
		}

		plan, err := Sync(run, cfg, false)
		require.NoError(t, err)
		assert.True(t, plan.Changed())
		assert.Equal(t, []string{"-g custom", "-b displaysleep 5"}, calls)
	})

	t.Run("check mode only reads", func(t *testing.T) {
		var calls []string
		run := func(args ...string) (string, error) {
			calls = append(calls, strings.Join(args, " "))
			return pmsetCustomOutput, nil
		}

		plan, err := Sync(run, cfg, true)
		require.NoError(t, err)
		assert.True(t, plan.Changed())
		assert.Equal(t, []string{"-g custom"}, calls)
	})

	t.Run("apply failure", func(t *testing.T) {
		run := func(args ...string) (string, error) {
			if args[0] == "-g" {
				return pmsetCustomOutput, nil
			}
			return "", fmt.Errorf("pmset exploded")
		}

		_, err := Sync(run, cfg, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pmset exploded")
	})
}
