package config

// Lua schema field names and globals
const (
	luaGlobalVksetup       = "vksetup"
	luaFieldVersion        = "version"
	luaFieldDestination    = "destination"
	luaFieldCacheDir       = "cache_dir"
	luaFieldInstallRuntime = "install_runtime"
	luaFieldComponents     = "components"
	luaFieldSHA256         = "sha256"
	luaFieldRuntimeSHA256  = "runtime_sha256"
	luaFieldSignatureURL   = "signature_url"
	luaFieldKeyring        = "keyring"
	luaFieldBundle         = "bundle"
	luaFieldTrustedRoot    = "trusted_root"
	luaFieldIdentity       = "identity"
	luaFieldIssuer         = "issuer"
)

// Limits
const (
	// MaxConfigSize bounds the config file read by ParseFile.
	MaxConfigSize = 1 << 20
	// MaxComponentCount bounds the installer components list.
	MaxComponentCount = 64
)

// DefaultFilename is looked up in the working directory when no config path
// is given.
const DefaultFilename = "vksetup.lua"
