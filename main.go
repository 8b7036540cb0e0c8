package main

import (
	"dotfiles/cmd"
)

// main delegates to cmd.Execute, which owns CLI parsing and dispatch.
//
// The dotfiles tool converges a machine to the state declared in a set of YAML
// config files:
//   - Configures macOS network interfaces by wrapping the `networksetup` utility
//     (parsing its screen output, diffing against the declared config, and only
//     reporting changes for settings that actually differed)
//   - Applies power management settings through `pmset`
//   - Installs, upgrades, and removes CLI tools and fonts from GitHub releases
//     or custom URLs, tracking what it installed in a JSON state file so repeat
//     runs are incremental
//   - Applies macOS `defaults` settings and shell aliases
//   - Manages the standalone inventory repository (clone/pull with retry)
//   - Bootstraps a Linux host's /etc/environment for container workloads
//
// Every run is one-shot and stateless apart from the state file: read live
// command output, compute the diff, invoke commands, report a changelog.
func main() {
	cmd.Execute()
}
