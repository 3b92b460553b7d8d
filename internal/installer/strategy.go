package installer

import (
	"context"
	"strings"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/report"
)

// Strategy is the platform-specific half of install and verify.
type Strategy interface {
	// InstallSDK installs the SDK and returns the install path, or "" after
	// recording a failure.
	InstallSDK(ctx context.Context, req InstallRequest, out *report.Outcome) string
	// VerifySDK runs the diagnostics binary and returns its exit code.
	VerifySDK(ctx context.Context, installPath string, out *report.Outcome) int
	// ShipsRuntime reports whether the platform has a separate runtime.
	ShipsRuntime() bool
}

// strategies is the single platform decision point.
var strategies = map[platform.Kind]func(*Installer) Strategy{
	platform.KindLinux:   func(i *Installer) Strategy { return &archiveStrategy{inst: i} },
	platform.KindMacOS:   func(i *Installer) Strategy { return &archiveStrategy{inst: i} },
	platform.KindWindows: func(i *Installer) Strategy { return &windowsStrategy{inst: i} },
}

func strategyFor(info *platform.Info, i *Installer) Strategy {
	if build, ok := strategies[info.Kind()]; ok {
		return build(i)
	}
	return &unsupportedStrategy{os: info.OS}
}

// archiveStrategy installs from a tar.gz (Linux, macOS).
type archiveStrategy struct {
	inst *Installer
}

func (s *archiveStrategy) InstallSDK(ctx context.Context, req InstallRequest, out *report.Outcome) string {
	s.inst.logger.Info("extracting Vulkan SDK", "archive", req.SDKPayload, "destination", req.Destination)
	path, err := s.inst.extractor.Extract(ctx, req.SDKPayload, req.Destination, FormatTarGz)
	if err != nil {
		out.Fatal(report.StepInstallSDK, "Failed to extract Vulkan SDK.", err)
		return ""
	}
	s.inst.logger.Debug("extracted Vulkan SDK", "path", path)
	return path
}

func (s *archiveStrategy) VerifySDK(ctx context.Context, installPath string, out *report.Outcome) int {
	return s.inst.runDiagnostic(ctx, diagnosticPath(installPath, DiagnosticName), DiagnosticName, out)
}

func (s *archiveStrategy) ShipsRuntime() bool { return false }

// windowsStrategy runs the native installer unattended.
type windowsStrategy struct {
	inst *Installer
}

// installerArgs builds the unattended install command line.
func installerArgs(destination string, components []string) []string {
	args := []string{
		"--root", destination,
		"--accept-licenses",
		"--default-answer",
		"--confirm-command", "install",
	}
	return append(args, components...)
}

func (s *windowsStrategy) InstallSDK(ctx context.Context, req InstallRequest, out *report.Outcome) string {
	args := installerArgs(req.Destination, req.Components)
	s.inst.logger.Info("running Vulkan SDK installer", "installer", req.SDKPayload, "args", strings.Join(args, " "))

	code, err := s.inst.runner.Run(ctx, req.SDKPayload, args...)
	if err != nil {
		out.Fatal(report.StepInstallSDK, "Failed to run VulkanSDK-Installer.exe.", err)
		return ""
	}
	if code != 0 {
		out.Fatal(report.StepInstallSDK, "Failed to run VulkanSDK-Installer.exe.", &ExitError{Program: req.SDKPayload, Code: code})
		return ""
	}
	return req.Destination
}

func (s *windowsStrategy) VerifySDK(ctx context.Context, installPath string, out *report.Outcome) int {
	return s.inst.runDiagnostic(ctx, diagnosticPath(installPath, DiagnosticNameWindows), DiagnosticNameWindows, out)
}

func (s *windowsStrategy) ShipsRuntime() bool { return true }

// unsupportedStrategy records a failure for every step.
type unsupportedStrategy struct {
	os string
}

func (s *unsupportedStrategy) InstallSDK(ctx context.Context, req InstallRequest, out *report.Outcome) string {
	out.Fatal(report.StepInstallSDK, "No install mechanism for this platform.", &UnsupportedPlatformError{OS: s.os})
	return ""
}

func (s *unsupportedStrategy) VerifySDK(ctx context.Context, installPath string, out *report.Outcome) int {
	out.Fatal(report.StepVerifySDK, "No verification mechanism for this platform.", &UnsupportedPlatformError{OS: s.os})
	return ResultFailure
}

func (s *unsupportedStrategy) ShipsRuntime() bool { return false }

// diagnosticPath joins with "/" so that an empty base yields "/bin/<name>".
func diagnosticPath(installPath, name string) string {
	return installPath + "/bin/" + name
}
