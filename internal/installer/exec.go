package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner executes an external program. A nonzero exit is a normal result;
// err is only set when the program could not be run at all, in which case
// exitCode is ExitCodeNotStarted.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (exitCode int, err error)
}

// ExecRunner runs programs with os/exec and streams their output.
type ExecRunner struct {
	stdout io.Writer
	stderr io.Writer
}

// NewExecRunner creates a runner writing child output to stdout and stderr.
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{stdout: stdout, stderr: stderr}
}

// Run implements Runner. The child inherits the current environment,
// including directories added through SearchPath.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	//nolint:gosec // G204: name is the SDK installer or a diagnostics binary under the install path
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return ExitCodeNotStarted, fmt.Errorf("run %s: %w", name, err)
}

// FileChecker reports whether a path exists.
type FileChecker interface {
	Exists(path string) bool
}

// OSFiles checks the local filesystem.
type OSFiles struct{}

// Exists implements FileChecker.
func (OSFiles) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
