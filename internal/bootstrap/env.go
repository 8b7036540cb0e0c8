// Package bootstrap prepares a fresh Linux host for container workloads by
// populating /etc/environment with the user and group IDs services expect.
package bootstrap

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"dotfiles/internal/logger"
	"dotfiles/internal/shell"
)

const environmentFile = "/etc/environment"

var (
	uidRegexp       = regexp.MustCompile(`uid=(\d+)\((\w+)\)`)
	gidRegexp       = regexp.MustCompile(`gid=(\d+)`)
	dockerGidRegexp = regexp.MustCompile(`(\d+)\(docker\)`)
	envLineRegexp   = regexp.MustCompile(`^(\w+)=(.*)$`)
)

// managedKeys are the variables this package owns in /etc/environment.
var managedKeys = []string{"PUID", "PGID", "TZ", "USERDIR"}

// Identity is the uid/gid information parsed from `id` output.
type Identity struct {
	UID      string
	Username string
	GID      string
}

// ParseID extracts the uid, username, and preferred gid from `id` output.
// The docker group's gid is preferred when the user belongs to it, so
// containers share group ownership with the docker daemon.
func ParseID(output string) (Identity, error) {
	var id Identity

	m := uidRegexp.FindStringSubmatch(output)
	if m == nil {
		return id, fmt.Errorf("could not parse uid from id output: %q", output)
	}
	id.UID = m[1]
	id.Username = m[2]

	if m := dockerGidRegexp.FindStringSubmatch(output); m != nil {
		id.GID = m[1]
		return id, nil
	}
	m = gidRegexp.FindStringSubmatch(output)
	if m == nil {
		return id, fmt.Errorf("could not parse gid from id output: %q", output)
	}
	id.GID = m[1]
	return id, nil
}

// ExistingEnv reads the managed keys already present in an environment file.
func ExistingEnv(contents string) map[string]string {
	existing := make(map[string]string)
	for _, line := range strings.Split(contents, "\n") {
		m := envLineRegexp.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		for _, key := range managedKeys {
			if m[1] == key {
				existing[key] = m[2]
			}
		}
	}
	return existing
}

// RenderEnv merges desired values over existing ones: keys already set in
// the file win, so a manually tuned host is not clobbered. Returns the lines
// to append for keys the file lacks.
func RenderEnv(existing, desired map[string]string) []string {
	var keys []string
	for key := range desired {
		if _, ok := existing[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s=%s", key, desired[key]))
	}
	return lines
}

// localTimezone resolves the host timezone from /etc/timezone, falling back
// to $TZ and then UTC.
func localTimezone() string {
	if data, err := os.ReadFile("/etc/timezone"); err == nil {
		if tz := strings.TrimSpace(string(data)); tz != "" {
			return tz
		}
	}
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	return "UTC"
}

// SetupEnvironment ensures PUID, PGID, TZ, and USERDIR are present in
// /etc/environment, deriving them from the current user's `id` output. In
// check mode the missing entries are reported without writing.
func SetupEnvironment(check bool) error {
	return setupEnvironment(environmentFile, check)
}

func setupEnvironment(path string, check bool) error {
	out, err := shell.Run("id")
	if err != nil {
		return fmt.Errorf("failed to run id: %w", err)
	}
	id, err := ParseID(out)
	if err != nil {
		return err
	}
	logger.Debug("[DEBUG] Parsed identity uid=%s gid=%s user=%s\n", id.UID, id.GID, id.Username)

	desired := map[string]string{
		"PUID":    id.UID,
		"PGID":    id.GID,
		"TZ":      localTimezone(),
		"USERDIR": "/home/" + id.Username,
	}

	var contents string
	if data, err := os.ReadFile(path); err == nil {
		contents = string(data)
	}

	lines := RenderEnv(ExistingEnv(contents), desired)
	if len(lines) == 0 {
		logger.Info("[INFO] %s already has all managed entries\n", path)
		return nil
	}

	if check {
		for _, line := range lines {
			logger.Info("[INFO] Would add to %s: %s\n", path, line)
		}
		return nil
	}

	if err := appendEnv(path, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	for _, line := range lines {
		logger.Success("[INFO] Added to %s: %s\n", path, line)
	}
	return nil
}

// appendEnv appends a block of KEY=value lines to the environment file.
// Direct append when the file is writable (root runs); otherwise the block
// goes to `sudo tee -a` over stdin, never through a shell command line, so
// no quoting can mangle the newlines.
func appendEnv(path, block string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		_, werr := f.WriteString(block)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		return werr
	}
	if !os.IsPermission(err) {
		return err
	}

	_, err = shell.RunInput(block, "sudo", "tee", "-a", path)
	return err
}
