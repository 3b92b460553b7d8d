package fetch

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
)

const (
	// DefaultDownloadBase is where LunarG serves SDK downloads.
	DefaultDownloadBase = "https://sdk.lunarg.com/sdk/download"
	// DefaultVersionBase serves the latest version per platform.
	DefaultVersionBase = "https://vulkan.lunarg.com/sdk/latest"
)

// sdkFilename returns the SDK payload name for kind.
// Patterns:
//
//	linux:   vulkansdk-linux-x86_64-{version}.tar.gz
//	mac:     vulkansdk-macos-{version}.tar.gz
//	windows: VulkanSDK-{version}-Installer.exe
func sdkFilename(kind platform.Kind, version string) (string, error) {
	switch kind {
	case platform.KindLinux:
		return fmt.Sprintf("vulkansdk-linux-x86_64-%s.tar.gz", version), nil
	case platform.KindMacOS:
		return fmt.Sprintf("vulkansdk-macos-%s.tar.gz", version), nil
	case platform.KindWindows:
		return fmt.Sprintf("VulkanSDK-%s-Installer.exe", version), nil
	default:
		return "", fmt.Errorf("no Vulkan SDK download for platform %s", kind)
	}
}

// CheckArch reports whether LunarG publishes an SDK payload for kind on
// arch. The Linux tarball is x86_64 only; the macOS tarball is universal and
// the Windows installer runs under emulation on arm64.
func CheckArch(kind platform.Kind, arch string) error {
	if kind == platform.KindLinux && arch != "amd64" {
		return fmt.Errorf("no Vulkan SDK download for %s/%s (only x86_64 is published)", kind, arch)
	}
	return nil
}

// runtimeFilename returns the runtime payload name. Only Windows has one.
func runtimeFilename(kind platform.Kind, version string) (string, error) {
	if kind != platform.KindWindows {
		return "", fmt.Errorf("no Vulkan runtime download for platform %s", kind)
	}
	return fmt.Sprintf("VulkanRT-%s-Components.zip", version), nil
}

// constructDownloadInfo builds the download URLs for one payload.
// Pattern: {base}/{version}/{platform}/{filename}
func constructDownloadInfo(base string, payload Payload, kind platform.Kind, version string, checks Checks) (*DownloadInfo, error) {
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}

	var (
		filename string
		err      error
	)
	switch payload {
	case PayloadSDK:
		filename, err = sdkFilename(kind, version)
	case PayloadRuntime:
		filename, err = runtimeFilename(kind, version)
	default:
		err = fmt.Errorf("unknown payload: %s", payload)
	}
	if err != nil {
		return nil, err
	}

	info := &DownloadInfo{
		Payload: payload,
		Version: version,
		Kind:    kind,
		URL:     fmt.Sprintf("%s/%s/%s/%s", strings.TrimSuffix(base, "/"), version, kind, filename),
	}

	switch payload {
	case PayloadSDK:
		info.SHA256 = checks.SHA256
		info.SignatureURL = expandURL(checks.SignatureURL, info.URL)
		info.BundleURL = expandURL(checks.BundleURL, info.URL)
	case PayloadRuntime:
		info.SHA256 = checks.RuntimeSHA256
	}

	return info, nil
}

// expandURL replaces "{url}" in tmpl with the payload URL.
func expandURL(tmpl, payloadURL string) string {
	if tmpl == "" {
		return ""
	}
	return strings.ReplaceAll(tmpl, "{url}", payloadURL)
}
