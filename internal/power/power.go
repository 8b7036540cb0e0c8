// Package power manages macOS power management settings through `pmset`: it
// parses `pmset -g custom`, diffs the live values against the declared
// config, and applies only the parameters that differ.
package power

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"dotfiles/internal/config"
	"dotfiles/internal/shell"
)

// Runner executes one pmset invocation and returns its stdout.
type Runner func(args ...string) (string, error)

// Exec is the production Runner.
func Exec(args ...string) (string, error) {
	return shell.Sudo("pmset", args...)
}

var (
	sectionRegexp = regexp.MustCompile(`^(.+):$`)
	keyValRegexp  = regexp.MustCompile(`^ (\w+)\s+(.+)$`)
)

// ParseCustom parses `pmset -g custom` output into section -> key -> value.
// Sections are power sources ("Battery Power", "AC Power"). The "Sleep On
// Power Button" line doesn't follow the key/value shape and is skipped.
func ParseCustom(output string) map[string]map[string]string {
	data := make(map[string]map[string]string)

	var section string
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.TrimSpace(line) == "" || strings.Contains(line, "Sleep On Power Button"):
			continue
		case sectionRegexp.MatchString(line):
			section = sectionRegexp.FindStringSubmatch(line)[1]
		case section != "":
			if m := keyValRegexp.FindStringSubmatch(line); m != nil {
				if data[section] == nil {
					data[section] = make(map[string]string)
				}
				data[section][m[1]] = m[2]
			}
		}
	}
	return data
}

// Change is one pmset parameter that differs from the declared value.
type Change struct {
	Block  string // "on_battery" or "on_charger"
	Key    string
	Before string
	After  string
}

// Plan is the set of pmset invocations needed to converge, along with the
// before/after diff per parameter.
type Plan struct {
	Changes  []Change
	Commands [][]string // pmset argument lists, e.g. ["-b", "displaysleep", "10"]
}

// Changed reports whether the plan contains any work.
func (p Plan) Changed() bool {
	return len(p.Commands) > 0
}

// Diff renders the plan as before/after lines, one parameter per line.
func (p Plan) Diff() (before, after string) {
	var b, a strings.Builder
	for _, ch := range p.Changes {
		fmt.Fprintf(&b, "%s.%s=%s\n", ch.Block, ch.Key, ch.Before)
		fmt.Fprintf(&a, "%s.%s=%s\n", ch.Block, ch.Key, ch.After)
	}
	return b.String(), a.String()
}

// block binds a config map to its pmset mode flag and output section.
type block struct {
	name    string
	flag    string
	section string
	desired map[string]any
}

// BuildPlan diffs the declared power config against parsed `pmset -g custom`
// output. A declared key not present in the live output is an error (the set
// of valid parameters varies by machine; `pmset -g custom` is the source of
// truth). Values are compared numerically when both sides parse as integers.
func BuildPlan(cfg config.Power, current map[string]map[string]string) (Plan, error) {
	var plan Plan

	blocks := []block{
		{name: "on_battery", flag: "-b", section: "Battery Power", desired: cfg.OnBattery},
		{name: "on_charger", flag: "-c", section: "AC Power", desired: cfg.OnCharger},
	}
	for _, blk := range blocks {
		if len(blk.desired) == 0 {
			continue
		}
		currentValues, ok := current[blk.section]
		if !ok {
			return Plan{}, fmt.Errorf(
				"%s settings requested but pmset reports no %q section on this machine",
				blk.name, blk.section)
		}

		// Deterministic ordering for the diff and command list.
		keys := make([]string, 0, len(blk.desired))
		for key := range blk.desired {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			desired := blk.desired[key]
			if desired == nil {
				continue
			}
			orig, ok := currentValues[key]
			if !ok {
				return Plan{}, fmt.Errorf(
					"%s is not present in pmset output; run `pmset -g custom` to see the valid parameters", key)
			}

			want := fmt.Sprint(desired)
			if valuesEqual(orig, want) {
				continue
			}
			plan.Changes = append(plan.Changes, Change{Block: blk.name, Key: key, Before: orig, After: want})
			plan.Commands = append(plan.Commands, []string{blk.flag, key, want})
		}
	}

	return plan, nil
}

// valuesEqual compares pmset values, numerically when both sides are
// integers ("01" and "1" are the same setting).
func valuesEqual(current, desired string) bool {
	ci, errC := strconv.Atoi(strings.TrimSpace(current))
	di, errD := strconv.Atoi(strings.TrimSpace(desired))
	if errC == nil && errD == nil {
		return ci == di
	}
	return strings.TrimSpace(current) == strings.TrimSpace(desired)
}

// Sync reads the live pmset config, builds a plan, and applies it. In check
// mode the plan is computed and returned without running anything.
func Sync(run Runner, cfg config.Power, check bool) (Plan, error) {
	output, err := run("-g", "custom")
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read pmset settings: %w", err)
	}

	plan, err := BuildPlan(cfg, ParseCustom(output))
	if err != nil {
		return Plan{}, err
	}
	if check {
		return plan, nil
	}

	for _, args := range plan.Commands {
		if _, err := run(args...); err != nil {
			return plan, fmt.Errorf("failed to apply pmset %s: %w", strings.Join(args, " "), err)
		}
	}
	return plan, nil
}
