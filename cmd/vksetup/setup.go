package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/config"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/fetch"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/installer"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/report"
)

// overrides are command-line values that take precedence over the config
// file.
type overrides struct {
	version     string
	destination string
	components  []string
	skipRuntime bool
}

func (o overrides) apply(cmd *cobra.Command, cfg *config.Config) {
	if o.version != "" {
		cfg.Version = o.version
	}
	if o.destination != "" {
		cfg.Destination = o.destination
	}
	if cmd.Flags().Changed("component") {
		cfg.Components = o.components
	}
	if o.skipRuntime {
		cfg.InstallRuntime = ptr.To(false)
	}
}

func newSetupCmd(a *app) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download, install and verify the Vulkan SDK",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSetup(cmd, o)
		},
	}

	cmd.Flags().StringVar(&o.version, "sdk-version", "", `SDK version, or "latest"`)
	cmd.Flags().StringVar(&o.destination, "destination", "", "install directory")
	cmd.Flags().StringSliceVar(&o.components, "component", nil, "extra installer component (Windows, repeatable)")
	cmd.Flags().BoolVar(&o.skipRuntime, "skip-runtime", false, "do not install the Vulkan runtime (Windows)")
	return cmd
}

func (a *app) runSetup(cmd *cobra.Command, o overrides) error {
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

	inst, err := a.newInstaller(!cfg.RuntimeEnabled())
	if err != nil {
		return err
	}

	closeGroup := a.annotator.Group("Download Vulkan SDK")
	payloads, ok := a.fetchPayloads(ctx, cfg, inst.RuntimeEnabled(), out)
	closeGroup()
	if !ok {
		a.writeSummary(summaryPath, a.summaryFor(cfg.Version), out)
		return finish(out)
	}

	destination := cfg.Destination
	if destination == "" {
		destination = config.DefaultDestination(a.info.Kind(), payloads.Version)
	}
	destination, err = config.ExpandPath(destination)
	if err != nil {
		out.Fatal(report.StepConfig, "Invalid destination.", err)
		return finish(out)
	}

	req := installer.InstallRequest{
		SDKPayload:  payloads.SDK.Path,
		Destination: destination,
		Components:  cfg.Components,
	}
	if payloads.Runtime != nil {
		req.RuntimePayload = payloads.Runtime.Path
	}

	closeGroup = a.annotator.Group("Install Vulkan SDK " + payloads.Version)
	res := inst.Install(ctx, req, out)
	closeGroup()

	closeGroup = a.annotator.Group("Verify Vulkan SDK")
	// The install step ran, so its path is known even when empty; the
	// diagnostic still runs and its output lands in the log.
	vr := inst.Verify(ctx, ptr.To(res.Path), out)
	closeGroup()

	s := a.summaryFor(payloads.Version)
	s.InstallPath = res.Path
	s.RuntimePath = res.RuntimePath
	s.Verified = vr.Succeeded()
	s.ExitCode = vr.Code
	a.writeSummary(summaryPath, s, out)

	if err := a.verdict(vr, out); err != nil {
		return err
	}
	a.annotator.Success(fmt.Sprintf("Vulkan SDK %s installed to %s", payloads.Version, res.Path))
	return nil
}

// validateConfig checks cfg after flag overrides and records a failure.
func validateConfig(cfg *config.Config, out *report.Outcome) bool {
	if err := cfg.Validate(); err != nil {
		out.Fatal(report.StepConfig, "Invalid configuration.", err)
		return false
	}
	return true
}

// verdict maps a verification result and outcome to the command result. A
// missing runtime library is not a recorded failure, so it is reported here.
func (a *app) verdict(vr installer.VerifyResult, out *report.Outcome) error {
	if err := finish(out); err != nil {
		return err
	}
	if !vr.Succeeded() {
		a.annotator.Warn("Vulkan Runtime library " + installer.RuntimeLibrary + " not found.")
		return &SilentExitError{Code: vr.Code}
	}
	return nil
}

// fetchPayloads resolves the version and downloads every payload.
func (a *app) fetchPayloads(ctx context.Context, cfg *config.Config, withRuntime bool, out *report.Outcome) (*fetch.Payloads, bool) {
	if err := fetch.CheckArch(a.info.Kind(), a.info.Arch); err != nil {
		out.Fatal(report.StepFetch, "Unsupported architecture.", err)
		return nil, false
	}

	cacheDir, err := a.resolveCacheDir(cfg)
	if err != nil {
		out.Fatal(report.StepFetch, "Invalid cache directory.", err)
		return nil, false
	}

	checks, err := checksFor(cfg)
	if err != nil {
		out.Fatal(report.StepFetch, "Invalid payload checks.", err)
		return nil, false
	}

	f, err := newFetcher(fetch.Options{
		CacheDir: cacheDir,
		Checks:   checks,
		Logger:   a.logger,
	})
	if err != nil {
		out.Fatal(report.StepFetch, "Failed to set up downloads.", err)
		return nil, false
	}

	payloads, err := f.FetchAll(ctx, a.info.Kind(), cfg.Version, withRuntime)
	if err != nil {
		out.Fatal(report.StepFetch, "Failed to download the Vulkan SDK.", err)
		return nil, false
	}
	a.logger.Info("downloaded Vulkan SDK", "version", payloads.Version, "verified", payloads.SDK.Verified.String())
	return payloads, true
}

// checksFor maps the config's payload checks, expanding local paths.
func checksFor(cfg *config.Config) (fetch.Checks, error) {
	keyring, err := config.ExpandPath(cfg.Keyring)
	if err != nil {
		return fetch.Checks{}, err
	}
	trustedRoot, err := config.ExpandPath(cfg.TrustedRoot)
	if err != nil {
		return fetch.Checks{}, err
	}
	return fetch.Checks{
		SHA256:        cfg.SHA256,
		RuntimeSHA256: cfg.RuntimeSHA256,
		SignatureURL:  cfg.SignatureURL,
		Keyring:       keyring,
		BundleURL:     cfg.Bundle,
		TrustedRoot:   trustedRoot,
		Identity:      cfg.Identity,
		Issuer:        cfg.Issuer,
	}, nil
}
