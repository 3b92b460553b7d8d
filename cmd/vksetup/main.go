package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/config"
)

// Version and Commit are overridden at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

var executeFunc = execute

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// SilentExitError reports an exit code without emitting error output. It is
// returned once every failure has already been annotated.
type SilentExitError struct {
	Code int
}

func (e *SilentExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// execute runs the CLI command with the provided args and output writers.
func execute(args []string, stdout io.Writer, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.Version = versionString()
	cmd.SetVersionTemplate("vksetup {{.Version}}\n")
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	} else {
		cmd.SetArgs([]string{})
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// runMain executes the CLI, exiting on failure.
func runMain(args []string, stdout io.Writer, stderr io.Writer, exit func(int)) {
	err := executeFunc(args, stdout, stderr)
	if err == nil {
		return
	}

	var silent *SilentExitError
	if errors.As(err, &silent) {
		exit(silent.Code)
		return
	}

	_, _ = fmt.Fprintf(stderr, "Error: %s\n", config.FormatError(err, debugRequested(args)))
	exit(1)
}

// debugRequested reports whether --debug or VKSETUP_DEBUG asked for verbose
// errors. Used before cobra has parsed flags.
func debugRequested(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "--"+flagDebug || arg == "--"+flagDebug+"=true" {
			return true
		}
	}
	return envTruthy(getenv(EnvDebug))
}

func envTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// versionString formats Version with the commit when known.
func versionString() string {
	if Commit == "" || Commit == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (commit %s)", Version, Commit)
}
