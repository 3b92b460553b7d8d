// Package platform classifies the host operating system for the Vulkan SDK
// installer.
//
// Detection happens once per process. The resulting Info is handed to the
// installer, the fetcher, and the Lua configuration, which all branch on
// Kind rather than re-reading runtime.GOOS.
package platform

import "context"

// Kind is the closed set of operating systems the installer knows about.
type Kind int

const (
	// KindUnsupported is any OS without an install or verify mechanism.
	KindUnsupported Kind = iota
	// KindLinux installs from a tar.gz archive.
	KindLinux
	// KindMacOS installs from a tar.gz archive.
	KindMacOS
	// KindWindows runs the native installer and ships the runtime.
	KindWindows
)

// String returns the LunarG platform name for the kind.
func (k Kind) String() string {
	switch k {
	case KindLinux:
		return "linux"
	case KindMacOS:
		return "mac"
	case KindWindows:
		return "windows"
	default:
		return "unsupported"
	}
}

// KindOf maps a GOOS value to its Kind.
func KindOf(goos string) Kind {
	switch goos {
	case "linux":
		return KindLinux
	case "darwin":
		return KindMacOS
	case "windows":
		return KindWindows
	default:
		return KindUnsupported
	}
}

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // "amd64", "arm64" (normalized)
	ArchRaw  string // original GOARCH
	Platform string // distro ID (Linux only, e.g., "ubuntu")
	Family   string // canonical family (e.g., "debian")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// Kind returns the platform variant for the detected OS.
// Exactly one of IsLinux, IsMacOS, IsWindows is true unless Kind is
// KindUnsupported.
func (i *Info) Kind() Kind {
	return KindOf(i.OS)
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.Kind() == KindLinux
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.Kind() == KindMacOS
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.Kind() == KindWindows
}

// IsAMD64 returns true if the architecture is amd64.
func (i *Info) IsAMD64() bool {
	return i.Arch == "amd64"
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == "arm64"
}

// IsDebianFamily returns true if the Linux distribution is Debian-based.
func (i *Info) IsDebianFamily() bool {
	return i.IsLinux() && i.Family == FamilyDebian
}

// IsRHELFamily returns true if the Linux distribution is RHEL-based.
func (i *Info) IsRHELFamily() bool {
	return i.IsLinux() && i.Family == FamilyRHEL
}

// Distro returns "<id> <version>" on Linux when detection succeeded, and the
// empty string otherwise.
func (i *Info) Distro() string {
	if !i.IsLinux() || i.Platform == "" {
		return ""
	}
	if i.Version == "" {
		return i.Platform
	}
	return i.Platform + " " + i.Version
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
