package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/report"
)

const flagInstallPath = "install-path"

func newVerifyCmd(a *app) *cobra.Command {
	var (
		installPath string
		skipRuntime bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the Vulkan SDK diagnostics against an installation",
		Long: `Run vulkaninfo (vulkaninfoSDK.exe on Windows) from <install-path>/bin and,
on Windows, check for <install-path>/runtime/vulkan-1.dll.

Without --install-path the path recorded by the last setup or install run is
used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var explicit *string
			if cmd.Flags().Changed(flagInstallPath) {
				explicit = ptr.To(installPath)
			}
			return a.runVerify(cmd, explicit, skipRuntime)
		},
	}

	cmd.Flags().StringVar(&installPath, flagInstallPath, "", "SDK install directory")
	cmd.Flags().BoolVar(&skipRuntime, "skip-runtime", false, "do not check the Vulkan runtime (Windows)")
	return cmd
}

// runVerify verifies explicit, or the install path from the summary file
// when explicit is nil. With neither, Verify records the missing path.
func (a *app) runVerify(cmd *cobra.Command, explicit *string, skipRuntime bool) error {
	ctx := cmd.Context()
	out := a.newOutcome()

	cfg, ok := a.loadConfig(ctx, out)
	if !ok || !validateConfig(cfg, out) {
		return finish(out)
	}

	summaryPath, err := a.resolveSummaryPath(cfg)
	if err != nil {
		out.Fatal(report.StepConfig, "Invalid summary path.", err)
		return finish(out)
	}

	s := a.summaryFor(cfg.Version)
	installPath := explicit
	if prev, err := report.ReadSummary(summaryPath); err == nil {
		s = prev
		if installPath == nil && prev.InstallPath != "" {
			installPath = ptr.To(prev.InstallPath)
		}
	} else {
		a.logger.Debug("no previous summary", "path", summaryPath, "error", err)
	}

	inst, err := a.newInstaller(skipRuntime || !cfg.RuntimeEnabled())
	if err != nil {
		return err
	}

	closeGroup := a.annotator.Group("Verify Vulkan SDK")
	vr := inst.Verify(ctx, installPath, out)
	closeGroup()

	s.InstallPath = ptr.Deref(installPath, "")
	s.Verified = vr.Succeeded()
	s.ExitCode = vr.Code
	a.writeSummary(summaryPath, s, out)

	if err := a.verdict(vr, out); err != nil {
		return err
	}
	a.annotator.Success(fmt.Sprintf("Vulkan SDK at %s verified", *installPath))
	return nil
}
