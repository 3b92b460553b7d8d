package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Generator generates Lua configuration code from a Config.
type Generator struct {
	indent string
	now    func() time.Time
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ",
		now:    time.Now,
	}
}

// Generate renders cfg as a vksetup.lua file. Empty fields are omitted; the
// output parses back to an equal Config.
func (g *Generator) Generate(cfg *Config) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	var buf bytes.Buffer

	buf.WriteString("-- vksetup configuration\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(g.now().UTC().Format(time.RFC3339))
	buf.WriteString("\n--\n")
	buf.WriteString("-- The read-only `platform` table is available here, e.g.\n")
	buf.WriteString("--   install_runtime = platform.is_windows,\n\n")

	buf.WriteString(luaGlobalVksetup)
	buf.WriteString(" = {\n")

	g.writeString(&buf, luaFieldVersion, cfg.Version)
	g.writeString(&buf, luaFieldDestination, cfg.Destination)
	g.writeString(&buf, luaFieldCacheDir, cfg.CacheDir)

	if cfg.InstallRuntime != nil {
		fmt.Fprintf(&buf, "%s%s = %t,\n", g.indent, luaFieldInstallRuntime, *cfg.InstallRuntime)
	}

	if len(cfg.Components) > 0 {
		buf.WriteString(g.indent)
		buf.WriteString(luaFieldComponents)
		buf.WriteString(" = {\n")
		for _, comp := range cfg.Components {
			buf.WriteString(g.indent)
			buf.WriteString(g.indent)
			buf.WriteString(quoteLuaString(comp))
			buf.WriteString(",\n")
		}
		buf.WriteString(g.indent)
		buf.WriteString("},\n")
	}

	g.writeString(&buf, luaFieldSHA256, cfg.SHA256)
	g.writeString(&buf, luaFieldRuntimeSHA256, cfg.RuntimeSHA256)
	g.writeString(&buf, luaFieldSignatureURL, cfg.SignatureURL)
	g.writeString(&buf, luaFieldKeyring, cfg.Keyring)
	g.writeString(&buf, luaFieldBundle, cfg.Bundle)
	g.writeString(&buf, luaFieldTrustedRoot, cfg.TrustedRoot)
	g.writeString(&buf, luaFieldIdentity, cfg.Identity)
	g.writeString(&buf, luaFieldIssuer, cfg.Issuer)

	buf.WriteString("}\n")

	return buf.String(), nil
}

func (g *Generator) writeString(buf *bytes.Buffer, field, value string) {
	if value == "" {
		return
	}
	buf.WriteString(g.indent)
	buf.WriteString(field)
	buf.WriteString(" = ")
	buf.WriteString(quoteLuaString(value))
	buf.WriteString(",\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
