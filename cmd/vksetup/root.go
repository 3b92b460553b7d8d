package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/config"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/fetch"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/installer"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/report"
)

// Environment variables read by the CLI.
const (
	EnvConfig = "VKSETUP_CONFIG"
	EnvDir    = "VKSETUP_DIR"
	EnvDebug  = "VKSETUP_DEBUG"
)

const (
	flagConfig   = "config"
	flagCacheDir = "cache-dir"
	flagSummary  = "summary"
	flagDebug    = "debug"

	defaultCacheDir    = "~/.cache/vksetup"
	summaryFilename    = "summary.yaml"
	actionsTruthyValue = "true"
)

// Swapped out in tests.
var (
	getenv         = os.Getenv
	detectPlatform = func(ctx context.Context) (*platform.Info, error) {
		return platform.NewDetector().Detect(ctx)
	}
	newFetcher = fetch.NewFetcher
	newRunner  = func(stdout, stderr io.Writer) installer.Runner {
		return installer.NewExecRunner(stdout, stderr)
	}
	newSearchPath = func() installer.SearchPath {
		return installer.NewEnvSearchPath()
	}
)

// app holds state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	configPath  string
	cacheDir    string
	summaryPath string
	debug       bool

	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
	annotator *report.Annotator
	info      *platform.Info
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "vksetup",
		Short: "Install and verify the Vulkan SDK",
		Long: `vksetup downloads, installs and verifies the LunarG Vulkan SDK on Linux,
macOS and Windows build machines.

On GitHub Actions failures are reported as workflow annotations and the SDK
is added to the PATH of later steps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, flagConfig, "", "config file (default $"+EnvConfig+" or ./"+config.DefaultFilename+")")
	flags.StringVar(&a.cacheDir, flagCacheDir, "", "payload cache directory (default $"+EnvDir+" or "+defaultCacheDir+")")
	flags.StringVar(&a.summaryPath, flagSummary, "", "run summary file (default <cache-dir>/"+summaryFilename+")")
	flags.BoolVar(&a.debug, flagDebug, false, "enable debug logging (or set $"+EnvDebug+")")

	cmd.AddCommand(
		newSetupCmd(a),
		newInstallCmd(a),
		newVerifyCmd(a),
		newInitCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// prepare sets up logging and output and detects the platform once.
func (a *app) prepare(cmd *cobra.Command) error {
	a.stdout = cmd.OutOrStdout()
	a.stderr = cmd.ErrOrStderr()

	if !a.debug {
		a.debug = envTruthy(getenv(EnvDebug))
	}
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.annotator = report.NewAnnotator(a.stdout, getenv(report.EnvGitHubActions) == actionsTruthyValue)

	if a.configPath == "" {
		a.configPath = getenv(EnvConfig)
	}

	info, err := detectPlatform(cmd.Context())
	if err != nil {
		return err
	}
	a.info = info
	a.logger.Debug("detected platform", "os", info.OS, "arch", info.Arch, "distro", info.Distro())
	return nil
}

// newOutcome returns an Outcome annotating failures as they are recorded.
func (a *app) newOutcome() *report.Outcome {
	return report.NewOutcome(a.annotator)
}

// loadConfig parses the config file, recording a failure in out on error.
func (a *app) loadConfig(ctx context.Context, out *report.Outcome) (*config.Config, bool) {
	parser := config.NewParser(platform.StaticDetector{Info: a.info}).WithLogger(a.logger)
	cfg, err := parser.LoadOrDefault(ctx, a.configPath)
	if err != nil {
		out.Fatal(report.StepConfig, "Failed to load configuration.", err)
		return nil, false
	}
	return cfg, true
}

// resolveCacheDir applies flag, environment, config and default in order.
func (a *app) resolveCacheDir(cfg *config.Config) (string, error) {
	dir := a.cacheDir
	if dir == "" {
		dir = getenv(EnvDir)
	}
	if dir == "" && cfg != nil {
		dir = cfg.CacheDir
	}
	if dir == "" {
		dir = defaultCacheDir
	}
	return config.ExpandPath(dir)
}

// resolveSummaryPath returns the --summary path or the default under the
// cache directory.
func (a *app) resolveSummaryPath(cfg *config.Config) (string, error) {
	if a.summaryPath != "" {
		return config.ExpandPath(a.summaryPath)
	}
	dir, err := a.resolveCacheDir(cfg)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, summaryFilename), nil
}

// newInstaller builds an installer for the detected platform.
func (a *app) newInstaller(skipRuntime bool) (*installer.Installer, error) {
	return installer.New(installer.Config{
		Platform:    a.info,
		SkipRuntime: skipRuntime,
		Runner:      newRunner(a.stdout, a.stderr),
		SearchPath:  newSearchPath(),
		Logger:      a.logger,
	})
}

// writeSummary writes s and records a failure in out if that fails.
func (a *app) writeSummary(path string, s *report.Summary, out *report.Outcome) {
	s.Failures = out.Failures()
	if err := report.WriteSummary(path, s); err != nil {
		a.annotator.Warn("Could not write run summary: " + err.Error())
		return
	}
	a.logger.Debug("wrote summary", "path", path)
}

// finish turns the outcome into the command's result.
func finish(out *report.Outcome) error {
	if out.Failed() {
		return &SilentExitError{Code: 1}
	}
	return nil
}

func (a *app) summaryFor(version string) *report.Summary {
	return &report.Summary{
		Version:  version,
		Platform: a.info.Kind().String(),
		Distro:   a.info.Distro(),
	}
}
