package installer

import (
	"context"
	"errors"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/report"
)

// InstallRuntime extracts the Vulkan runtime zip into <destination>/runtime
// and returns the extracted path, or "" after recording a failure.
//
// It does not check the platform. Install only calls it when the strategy
// ships a runtime.
func (i *Installer) InstallRuntime(ctx context.Context, payload, destination string, out *report.Outcome) string {
	out = ensureOutcome(out)
	if payload == "" {
		out.Fatal(report.StepInstallRuntime, "Failed to extract Vulkan Runtime.", errors.New("no runtime payload given"))
		return ""
	}

	// Joined like RuntimeCheck so both agree even for an empty destination.
	runtimeDest := runtimeDir(destination)
	i.logger.Info("extracting Vulkan Runtime", "archive", payload, "destination", runtimeDest)

	path, err := i.extractor.Extract(ctx, payload, runtimeDest, FormatZip)
	if err != nil {
		out.Fatal(report.StepInstallRuntime, "Failed to extract Vulkan Runtime.", err)
		return ""
	}
	i.logger.Debug("extracted Vulkan Runtime", "path", path)
	return path
}

// RuntimeCheck returns RuntimeFound if <installPath>/runtime/vulkan-1.dll
// exists and RuntimeMissing otherwise. A missing library is a result, not a
// recorded failure.
func (i *Installer) RuntimeCheck(installPath string) int {
	lib := runtimeDir(installPath) + "/" + RuntimeLibrary
	if i.files.Exists(lib) {
		return RuntimeFound
	}
	i.logger.Warn("Vulkan Runtime library not found", "path", lib)
	return RuntimeMissing
}

func runtimeDir(base string) string {
	return base + "/" + RuntimeDir
}
