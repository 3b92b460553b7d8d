// Package config parses the optional vksetup.lua file that pins the SDK
// version, the install destination and the payload checks.
//
// # Overview
//
// The file is plain Lua evaluated by gopher-lua in a sandbox. It must assign
// a global vksetup table:
//
//	vksetup = {
//	  version = "1.3.290.0",
//	  destination = "~/VulkanSDK",
//	  install_runtime = platform.is_windows,
//	  components = platform.when(platform.is_windows, { "com.lunarg.vulkan.debug" }),
//	  sha256 = "…",
//	}
//
// Every field is optional; Defaults fills the rest.
//
// # Platform Table
//
// A read-only platform table is injected before the file runs, so one file
// can serve every runner in a build matrix. See platform.InjectPlatformTable
// for its fields.
//
// # Sandbox
//
// The VM has no os, io, debug or module loading. string, table and math stay
// available. Config files are declarative and cannot touch the host.
//
// # Errors
//
// Lua failures are returned as *ParseError; FormatError trims the Lua stack
// traceback unless verbose output is requested. Field problems are returned
// as *ValidationError naming the offending field.
package config
