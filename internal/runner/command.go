// Package runner builds and launches the supervised batch process.
package runner

import (
	"strings"
)

// LogFileFlag is the argument carrying the batch log path. The external
// process appends its output there; the supervisor only ever reads it.
const LogFileFlag = "-logFile"

// NoGraphicsFlag disables the process's graphics device. When it is
// absent on Linux the command is wrapped in a virtual framebuffer
// launcher so headless hosts still work.
const NoGraphicsFlag = "-nographics"

// BatchEnv marks the run as an automated build in the child's
// environment.
const BatchEnv = "AUTOMATED_BUILD=true"

// Command is a fully resolved executable invocation.
// Immutable once constructed.
type Command struct {
	Path string
	Args []string
}

// String returns the command as a single shell-style line.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// InputError reports a malformed command. It is fatal before
// supervision begins and is never retried.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid command: " + e.Reason
}

// LogFilePath returns the value of the -logFile pair in args.
// The pair is mandatory; its absence is an InputError.
func LogFilePath(args []string) (string, error) {
	for i, a := range args {
		if a != LogFileFlag {
			continue
		}
		if i+1 >= len(args) || args[i+1] == "" {
			return "", &InputError{Reason: LogFileFlag + " has no value"}
		}
		return args[i+1], nil
	}
	return "", &InputError{Reason: "missing " + LogFileFlag + " argument"}
}

// HasNoGraphics reports whether args already request a headless run.
func HasNoGraphics(args []string) bool {
	for _, a := range args {
		if a == NoGraphicsFlag {
			return true
		}
	}
	return false
}
