package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
)

// VersionLatest selects the newest SDK published for the platform.
const VersionLatest = "latest"

// Config is the vksetup table of a config file.
type Config struct {
	// Version is an SDK version such as "1.3.290.0", or "latest".
	Version string `yaml:"version,omitempty"`

	// Destination is the SDK install directory (supports ~).
	Destination string `yaml:"destination,omitempty"`

	// CacheDir holds downloaded payloads (supports ~).
	CacheDir string `yaml:"cache_dir,omitempty"`

	// InstallRuntime toggles the Windows runtime components. nil means
	// enabled.
	InstallRuntime *bool `yaml:"install_runtime,omitempty"`

	// Components are optional Windows installer components, for example
	// "com.lunarg.vulkan.debug".
	Components []string `yaml:"components,omitempty"`

	// Payload checks. See fetch.Checks.
	SHA256        string `yaml:"sha256,omitempty"`
	RuntimeSHA256 string `yaml:"runtime_sha256,omitempty"`
	SignatureURL  string `yaml:"signature_url,omitempty"`
	Keyring       string `yaml:"keyring,omitempty"`
	Bundle        string `yaml:"bundle,omitempty"`
	TrustedRoot   string `yaml:"trusted_root,omitempty"`
	Identity      string `yaml:"identity,omitempty"`
	Issuer        string `yaml:"issuer,omitempty"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{Version: VersionLatest}
}

// RuntimeEnabled reports whether the runtime components should be installed.
func (c *Config) RuntimeEnabled() bool {
	return c.InstallRuntime == nil || *c.InstallRuntime
}

// DefaultDestination returns the install directory used when none is
// configured: C:\VulkanSDK\<version> on Windows, ~/VulkanSDK/<version>
// elsewhere.
func DefaultDestination(kind platform.Kind, version string) string {
	if kind == platform.KindWindows {
		return `C:\VulkanSDK\` + version
	}
	return "~/VulkanSDK/" + version
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if c.Version != "" && c.Version != VersionLatest && !versionPattern.MatchString(c.Version) {
		return &ValidationError{
			Field:   luaFieldVersion,
			Message: fmt.Sprintf("invalid version %q (expected \"latest\" or a dotted version like 1.3.290.0)", c.Version),
		}
	}

	if len(c.Components) > MaxComponentCount {
		return &ValidationError{
			Field:   luaFieldComponents,
			Message: fmt.Sprintf("too many components (%d), maximum is %d", len(c.Components), MaxComponentCount),
		}
	}
	for i, comp := range c.Components {
		if !componentPattern.MatchString(comp) {
			return &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", luaFieldComponents, i),
				Message: fmt.Sprintf("invalid component %q", comp),
			}
		}
	}

	for field, digest := range map[string]string{luaFieldSHA256: c.SHA256, luaFieldRuntimeSHA256: c.RuntimeSHA256} {
		if digest != "" && !sha256Pattern.MatchString(digest) {
			return &ValidationError{Field: field, Message: "must be 64 hex characters"}
		}
	}

	if c.SignatureURL != "" {
		if err := validateURLTemplate(c.SignatureURL); err != nil {
			return &ValidationError{Field: luaFieldSignatureURL, Message: err.Error()}
		}
		if c.Keyring == "" {
			return &ValidationError{Field: luaFieldKeyring, Message: "required when signature_url is set"}
		}
	}

	if c.Bundle != "" {
		if err := validateURLTemplate(c.Bundle); err != nil {
			return &ValidationError{Field: luaFieldBundle, Message: err.Error()}
		}
		if c.Identity == "" || c.Issuer == "" {
			return &ValidationError{Field: luaFieldIdentity, Message: "identity and issuer are required when bundle is set"}
		}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

var (
	versionPattern   = regexp.MustCompile(`^[0-9]+(\.[0-9]+){2,3}$`)
	componentPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)
	sha256Pattern    = regexp.MustCompile(`^[A-Fa-f0-9]{64}$`)
)

// validateURLTemplate accepts https URLs, optionally containing "{url}".
func validateURLTemplate(tmpl string) error {
	probe := strings.ReplaceAll(tmpl, "{url}", "https://placeholder.invalid/x")
	u, err := url.Parse(probe)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %s)", u.Scheme)
	}
	return nil
}

// ExpandPath expands a leading ~ and cleans the result. Empty stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}
