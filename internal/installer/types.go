package installer

import "fmt"

const (
	// DiagnosticName is the diagnostics binary shipped in the Linux and macOS SDK.
	DiagnosticName = "vulkaninfo"
	// DiagnosticNameWindows is the diagnostics binary shipped by the Windows installer.
	DiagnosticNameWindows = "vulkaninfoSDK.exe"
	// RuntimeDir is the subdirectory of the destination holding the runtime.
	RuntimeDir = "runtime"
	// RuntimeLibrary is the loader library whose presence proves the runtime is installed.
	RuntimeLibrary = "vulkan-1.dll"

	// ResultFailure is the failing result when no diagnostic could be run.
	ResultFailure = 1
	// ExitCodeNotStarted is reported when an executable could not be started.
	ExitCodeNotStarted = 127

	// RuntimeFound and RuntimeMissing are the results of RuntimeCheck.
	RuntimeFound   = 1
	RuntimeMissing = 0
)

// InstallRequest describes one installation.
type InstallRequest struct {
	// SDKPayload is the SDK archive (Linux, macOS) or native installer (Windows).
	SDKPayload string
	// RuntimePayload is the runtime zip. Only used on Windows.
	RuntimePayload string
	// Destination is the directory the SDK is installed into.
	Destination string
	// Components are extra installer components (Windows only), e.g.
	// "com.lunarg.vulkan.debug".
	Components []string
}

// InstallResult is what Install produced. Path is empty when the SDK is not
// installed; the reason has already been recorded in the Outcome.
type InstallResult struct {
	Path        string
	RuntimePath string
}

// VerifyResult is the normalized result of Verify.
type VerifyResult struct {
	// Code is 0 when every check succeeded. Otherwise it is the diagnostic
	// exit code, or ResultFailure when only the runtime check failed.
	Code int
	// SDKExitCode is the raw exit code of the diagnostics binary.
	SDKExitCode int
	// RuntimeChecked is true when the runtime library check ran.
	RuntimeChecked bool
	// RuntimePresent is the runtime check result.
	RuntimePresent bool
}

// Succeeded reports whether the installation is functional.
func (r VerifyResult) Succeeded() bool {
	return r.Code == 0
}

// UnsupportedPlatformError is recorded when no strategy exists for the host OS.
type UnsupportedPlatformError struct {
	OS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %q (supported: linux, darwin, windows)", e.OS)
}

// ExitError is recorded when an external program exits nonzero.
type ExitError struct {
	Program string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Program, e.Code)
}
