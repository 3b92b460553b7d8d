package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/config"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/installer"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/report"
)

type installOptions struct {
	overrides
	payload        string
	runtimePayload string
}

func newInstallCmd(a *app) *cobra.Command {
	var o installOptions

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the Vulkan SDK from payloads already on disk",
		Long: `Install the Vulkan SDK from a downloaded payload: the tar.gz archive on
Linux and macOS, or VulkanSDK-<version>-Installer.exe on Windows. On Windows
the runtime zip is extracted into <destination>/runtime as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInstall(cmd, o)
		},
	}

	cmd.Flags().StringVar(&o.payload, "payload", "", "SDK archive or installer")
	cmd.Flags().StringVar(&o.runtimePayload, "runtime-payload", "", "runtime components zip (Windows)")
	cmd.Flags().StringVar(&o.destination, "destination", "", "install directory")
	cmd.Flags().StringSliceVar(&o.components, "component", nil, "extra installer component (Windows, repeatable)")
	cmd.Flags().BoolVar(&o.skipRuntime, "skip-runtime", false, "do not install the Vulkan runtime (Windows)")
	_ = cmd.MarkFlagRequired("payload")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}

func (a *app) runInstall(cmd *cobra.Command, o installOptions) error {
	ctx := cmd.Context()
	out := a.newOutcome()

	cfg, ok := a.loadConfig(ctx, out)
	if !ok {
		return finish(out)
	}
	o.apply(cmd, cfg)
	if !validateConfig(cfg, out) {
		return finish(out)
	}

	summaryPath, err := a.resolveSummaryPath(cfg)
	if err != nil {
		out.Fatal(report.StepConfig, "Invalid summary path.", err)
		return finish(out)
	}

	destination, err := config.ExpandPath(cfg.Destination)
	if err != nil {
		out.Fatal(report.StepConfig, "Invalid destination.", err)
		return finish(out)
	}

	inst, err := a.newInstaller(!cfg.RuntimeEnabled())
	if err != nil {
		return err
	}

	closeGroup := a.annotator.Group("Install Vulkan SDK")
	res := inst.Install(ctx, installer.InstallRequest{
		SDKPayload:     o.payload,
		RuntimePayload: o.runtimePayload,
		Destination:    destination,
		Components:     cfg.Components,
	}, out)
	closeGroup()

	s := a.summaryFor(cfg.Version)
	s.InstallPath = res.Path
	s.RuntimePath = res.RuntimePath
	a.writeSummary(summaryPath, s, out)

	if err := finish(out); err != nil {
		return err
	}
	a.annotator.Success("Vulkan SDK installed to " + res.Path)
	return nil
}
