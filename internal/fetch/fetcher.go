package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
)

// VersionLatest asks ResolveVersion for the newest published SDK.
const VersionLatest = "latest"

// Options configures a Fetcher.
type Options struct {
	// CacheDir holds downloaded payloads.
	CacheDir string
	// Checks configures payload verification.
	Checks Checks
	// DownloadBase and VersionBase override the LunarG endpoints.
	DownloadBase string
	VersionBase  string
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Fetcher resolves, downloads and verifies SDK payloads.
type Fetcher struct {
	downloader   *Downloader
	verifier     *Verifier
	checks       Checks
	cacheDir     string
	downloadBase string
	versionBase  string
	logger       *slog.Logger
}

// NewFetcher creates a fetcher.
func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.CacheDir == "" {
		return nil, fmt.Errorf("CacheDir is required")
	}

	f := &Fetcher{
		downloader:   NewDownloader(opts.CacheDir),
		verifier:     NewVerifier(opts.Checks),
		checks:       opts.Checks,
		cacheDir:     opts.CacheDir,
		downloadBase: opts.DownloadBase,
		versionBase:  opts.VersionBase,
		logger:       opts.Logger,
	}
	if f.downloadBase == "" {
		f.downloadBase = DefaultDownloadBase
	}
	if f.versionBase == "" {
		f.versionBase = DefaultVersionBase
	}
	if f.logger == nil {
		f.logger = slog.New(slog.DiscardHandler)
	}
	return f, nil
}

// ResolveVersion returns version unchanged unless it is empty or "latest",
// in which case the newest version for kind is looked up.
func (f *Fetcher) ResolveVersion(ctx context.Context, kind platform.Kind, version string) (string, error) {
	if version != "" && version != VersionLatest {
		return version, nil
	}
	if kind == platform.KindUnsupported {
		return "", fmt.Errorf("no Vulkan SDK releases for platform %s", kind)
	}

	// {versionBase}/{platform}.json -> {"<platform>": "1.3.290.0"}
	url := fmt.Sprintf("%s/%s.json", strings.TrimSuffix(f.versionBase, "/"), kind)
	var latest map[string]string
	if err := f.downloader.FetchJSON(ctx, url, &latest); err != nil {
		return "", fmt.Errorf("resolve latest version: %w", err)
	}

	resolved := latest[kind.String()]
	if resolved == "" {
		return "", fmt.Errorf("resolve latest version: no %q entry in %s", kind, url)
	}
	f.logger.Info("resolved latest Vulkan SDK version", "platform", kind.String(), "version", resolved)
	return resolved, nil
}

// Fetch downloads and verifies one payload.
func (f *Fetcher) Fetch(ctx context.Context, kind platform.Kind, payload Payload, version string) (*Result, error) {
	start := time.Now()

	info, err := constructDownloadInfo(f.downloadBase, payload, kind, version, f.checks)
	if err != nil {
		return nil, fmt.Errorf("construct download info: %w", err)
	}

	f.logger.Info("downloading", "payload", payload, "url", info.URL)
	path, err := f.downloader.DownloadPayload(ctx, info, info.URL)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", payload, err)
	}

	var signaturePath, bundlePath string
	if info.SignatureURL != "" {
		if signaturePath, err = f.downloader.DownloadPayload(ctx, info, info.SignatureURL); err != nil {
			return nil, fmt.Errorf("download %s signature: %w", payload, err)
		}
	}
	if info.BundleURL != "" {
		if bundlePath, err = f.downloader.DownloadPayload(ctx, info, info.BundleURL); err != nil {
			return nil, fmt.Errorf("download %s bundle: %w", payload, err)
		}
	}

	method, err := f.verifier.VerifyFile(path, info, signaturePath, bundlePath)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", payload, err)
	}
	if method == VerificationNone {
		f.logger.Warn("payload not verified, no checks configured", "payload", payload, "path", path)
	}

	return &Result{
		Payload:      payload,
		Version:      version,
		Path:         path,
		Verified:     method,
		DownloadTime: time.Since(start),
	}, nil
}

// FetchAll resolves version and fetches the SDK payload and, when
// withRuntime is set, the runtime payload. The downloads run concurrently
// while holding the cache lock.
func (f *Fetcher) FetchAll(ctx context.Context, kind platform.Kind, version string, withRuntime bool) (*Payloads, error) {
	resolved, err := f.ResolveVersion(ctx, kind, version)
	if err != nil {
		return nil, err
	}

	lock, err := AcquireCacheLock(ctx, f.cacheDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			f.logger.Warn("release cache lock", "error", err)
		}
	}()

	out := &Payloads{Version: resolved}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := f.Fetch(gctx, kind, PayloadSDK, resolved)
		if err != nil {
			return err
		}
		out.SDK = res
		return nil
	})

	if withRuntime {
		g.Go(func() error {
			res, err := f.Fetch(gctx, kind, PayloadRuntime, resolved)
			if err != nil {
				return err
			}
			out.Runtime = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
