package installer

import (
	"context"
	"errors"
	"os"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/report"
)

// Installer orchestrates SDK and runtime installation and verification.
type Installer struct {
	platform    *platform.Info
	strategy    Strategy
	skipRuntime bool

	extractor Extractor
	runner    Runner
	search    SearchPath
	files     FileChecker
	logger    Logger
}

// Config holds configuration for the installer. Only Platform is required;
// nil collaborators get the real implementations.
type Config struct {
	// Platform is the detected host platform.
	Platform *platform.Info
	// SkipRuntime disables runtime installation and verification on Windows.
	SkipRuntime bool

	Extractor  Extractor
	Runner     Runner
	SearchPath SearchPath
	Files      FileChecker
	Logger     Logger
}

// New creates an installer for cfg.Platform.
func New(cfg Config) (*Installer, error) {
	if cfg.Platform == nil {
		return nil, errors.New("Platform is required")
	}

	i := &Installer{
		platform:    cfg.Platform,
		skipRuntime: cfg.SkipRuntime,
		extractor:   cfg.Extractor,
		runner:      cfg.Runner,
		search:      cfg.SearchPath,
		files:       cfg.Files,
		logger:      cfg.Logger,
	}
	if i.extractor == nil {
		i.extractor = NewExtractor()
	}
	if i.runner == nil {
		i.runner = NewExecRunner(os.Stdout, os.Stderr)
	}
	if i.search == nil {
		i.search = NewEnvSearchPath()
	}
	if i.files == nil {
		i.files = OSFiles{}
	}
	if i.logger == nil {
		i.logger = noopLogger{}
	}
	i.strategy = strategyFor(cfg.Platform, i)

	return i, nil
}

// Install installs the SDK and, where the platform ships one, the runtime.
// Failures are recorded in out and never stop the sequence; the returned
// Path is empty if the SDK was not installed.
func (i *Installer) Install(ctx context.Context, req InstallRequest, out *report.Outcome) InstallResult {
	out = ensureOutcome(out)

	var res InstallResult
	res.Path = i.strategy.InstallSDK(ctx, req, out)

	// Registered unconditionally; SearchPath ignores "".
	if err := i.search.Add(res.Path); err != nil {
		out.Fatal(report.StepInstallSDK, "Failed to add the Vulkan SDK to the search path.", err)
	}

	if i.RuntimeEnabled() {
		res.RuntimePath = i.InstallRuntime(ctx, req.RuntimePayload, req.Destination, out)
	}

	return res
}

// Verify checks that an installation is functional. installPath nil means no
// install path is known, which fails without running anything.
//
// On platforms with a runtime, the diagnostic exit code and the runtime
// library check are both normalized to success/failure before combining.
func (i *Installer) Verify(ctx context.Context, installPath *string, out *report.Outcome) VerifyResult {
	out = ensureOutcome(out)

	if installPath == nil {
		out.Fatal(report.StepVerifySDK, "No Vulkan SDK install path known.", nil)
		return VerifyResult{Code: ResultFailure, SDKExitCode: ResultFailure}
	}

	code := i.strategy.VerifySDK(ctx, *installPath, out)
	res := VerifyResult{Code: code, SDKExitCode: code}

	if i.RuntimeEnabled() {
		res.RuntimeChecked = true
		res.RuntimePresent = i.RuntimeCheck(*installPath) == RuntimeFound
		if res.Code == 0 && !res.RuntimePresent {
			res.Code = ResultFailure
		}
	}

	return res
}

// Platform returns the platform the installer was built for.
func (i *Installer) Platform() *platform.Info {
	return i.platform
}

// RuntimeEnabled reports whether Install and Verify handle the runtime: the
// platform ships one and it was not skipped.
func (i *Installer) RuntimeEnabled() bool {
	return i.strategy.ShipsRuntime() && !i.skipRuntime
}

func ensureOutcome(out *report.Outcome) *report.Outcome {
	if out == nil {
		return report.NewOutcome(nil)
	}
	return out
}
