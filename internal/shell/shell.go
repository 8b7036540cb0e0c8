// Package shell runs external commands, capturing output or streaming it
// through a pty for long-running installs.
package shell

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"

	"dotfiles/internal/logger"
)

// CommandError reports a subprocess that exited with a nonzero status. It
// carries the full command line and captured output so callers can surface a
// useful diagnostic instead of a bare exit code.
type CommandError struct {
	Cmd    string
	Code   int
	Stdout string
	Stderr string
}

func (e *CommandError) Error() string {
	s := fmt.Sprintf("command `%s` exited with status %d", e.Cmd, e.Code)
	if strings.TrimSpace(e.Stderr) != "" {
		s += ": " + strings.TrimSpace(e.Stderr)
	}
	return s
}

// Run executes a command and returns its captured stdout. A nonzero exit
// yields a *CommandError with stdout/stderr attached.
func Run(name string, args ...string) (string, error) {
	return RunInput("", name, args...)
}

// RunInput is Run with stdin supplied. Passing data this way instead of
// interpolating it into a shell command line avoids quoting entirely.
func RunInput(stdin, name string, args ...string) (string, error) {
	cmdline := name + " " + strings.Join(args, " ")
	logger.Debug("[DEBUG] Running command: %s\n", cmdline)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return stdout.String(), &CommandError{
			Cmd:    cmdline,
			Code:   code,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	}
	return stdout.String(), nil
}

// Sudo runs a command through sudo. The system configuration utilities wrapped
// by the sync commands (networksetup, pmset, installer) want root.
func Sudo(name string, args ...string) (string, error) {
	return Run("sudo", append([]string{name}, args...)...)
}

// Stream runs a command attached to a pty and copies its output line by line
// to stdout, indented by indent spaces. Used for subprocesses whose progress
// output is worth showing live (installer scripts, git transfers). Output is
// also accumulated so a failure can report it.
func Stream(indent int, name string, args ...string) error {
	cmdline := name + " " + strings.Join(args, " ")
	logger.Debug("[DEBUG] Streaming command: %s\n", cmdline)

	cmd := exec.Command(name, args...)
	f, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	defer f.Close()

	prefix := strings.Repeat(" ", indent)
	var all strings.Builder
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		all.WriteString(line + "\n")
		fmt.Fprintf(os.Stdout, "%s%s\n", prefix, line)
	}
	// The pty read side returns EIO when the child exits; anything the scanner
	// reports other than that is ignored the same way.
	if err := scanner.Err(); err != nil && err != io.EOF {
		logger.Debug("[DEBUG] pty read ended: %v\n", err)
	}

	if err := cmd.Wait(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return &CommandError{Cmd: cmdline, Code: code, Stdout: all.String()}
	}
	return nil
}
