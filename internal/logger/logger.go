package logger

import (
	"github.com/fatih/color"
)

// Printf-style leveled logging built on fatih/color. Each level is a
// package-level function variable so call sites stay as terse as fmt.Printf.

// Info logs informational messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Success logs completion messages in bright green, used at the end of a
// command or sync phase.
var Success = color.New(color.FgHiGreen).PrintfFunc()

// Warn logs warnings in bright magenta.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs errors in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan when debug logging is enabled, and is a
// no-op otherwise. Assigned by Init.
var Debug func(format string, a ...any)

func init() {
	// Safe default so packages can log before Init runs (e.g. in tests).
	Debug = func(format string, a ...any) {}
}

// Init enables or disables debug logging. Called once from the root command's
// PersistentPreRun with the value of the --debug flag.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
