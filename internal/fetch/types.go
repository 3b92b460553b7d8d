// Package fetch downloads and verifies the Vulkan SDK payloads published by
// LunarG.
//
// # Verification
//
// Every configured check must pass before a payload is handed to the
// installer:
//   - SHA256: digest pinned in the configuration
//   - GPG: detached signature checked against a configured keyring
//   - Sigstore: bundle checked against a trusted root and certificate identity
//
// LunarG publishes none of the signature formats for every release, so all
// checks are opt-in. A payload with no configured checks is reported as
// VerificationNone.
package fetch

import (
	"time"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
)

// Payload identifies a downloadable file.
type Payload string

const (
	// PayloadSDK is the SDK archive or installer.
	PayloadSDK Payload = "sdk"
	// PayloadRuntime is the Windows runtime components zip.
	PayloadRuntime Payload = "runtime"
)

// VerificationMethod indicates how a payload was verified.
type VerificationMethod int

const (
	// VerificationNone indicates no check was configured.
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 indicates a pinned SHA256 digest matched.
	VerificationSHA256
	// VerificationGPG indicates a detached GPG signature verified.
	VerificationGPG
	// VerificationSigstore indicates a sigstore bundle verified.
	VerificationSigstore
)

// String returns the string representation of the verification method.
func (v VerificationMethod) String() string {
	switch v {
	case VerificationSHA256:
		return "SHA256"
	case VerificationGPG:
		return "GPG"
	case VerificationSigstore:
		return "Sigstore"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// DownloadInfo contains the metadata needed to download one payload.
type DownloadInfo struct {
	Payload      Payload
	Version      string
	Kind         platform.Kind
	URL          string
	SignatureURL string // detached GPG signature (may be empty)
	BundleURL    string // sigstore bundle (may be empty)
	SHA256       string // pinned digest (may be empty)
}

// Checks configures payload verification.
type Checks struct {
	// SHA256 is the expected digest of the SDK payload.
	SHA256 string
	// RuntimeSHA256 is the expected digest of the runtime payload.
	RuntimeSHA256 string
	// SignatureURL is a URL template for a detached signature of the SDK
	// payload; "{url}" is replaced with the payload URL.
	SignatureURL string
	// Keyring is an armored or binary OpenPGP keyring file.
	Keyring string
	// BundleURL is a URL template for a sigstore bundle of the SDK payload.
	BundleURL string
	// TrustedRoot is a sigstore trusted_root.json. Empty fetches the public
	// good instance root via TUF.
	TrustedRoot string
	// Identity and Issuer constrain the signing certificate.
	Identity string
	Issuer   string
}

// Result describes a fetched and verified payload.
type Result struct {
	Payload      Payload
	Version      string
	Path         string
	Verified     VerificationMethod
	DownloadTime time.Duration
}

// Payloads is the output of Fetcher.FetchAll.
type Payloads struct {
	Version string
	SDK     *Result
	Runtime *Result // nil unless the platform ships a runtime
}
