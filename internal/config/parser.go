package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
	logger   Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: defaultLogger()}
}

// WithLogger sets the parser's logger and returns the parser.
func (p *Parser) WithLogger(logger Logger) *Parser {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// ParseFile reads and parses the config at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxConfigSize),
		}
	}

	p.logger.Debug("parsing config", "path", path, "bytes", len(data))
	return p.ParseString(ctx, string(data))
}

// LoadOrDefault parses path if it exists and returns Defaults otherwise.
// An empty path falls back to DefaultFilename in the working directory.
func (p *Parser) LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFilename
	}

	cfg, err := p.ParseFile(ctx, path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		p.logger.Debug("no config file, using defaults", "path", path)
		return Defaults(), nil
	}
	return nil, err
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global vksetup table.
func extractConfig(L *lua.LState) (*Config, error) {
	global := L.GetGlobal(luaGlobalVksetup)
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalVksetup),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	cfg := Defaults()
	stringFields := map[string]*string{
		luaFieldVersion:       &cfg.Version,
		luaFieldDestination:   &cfg.Destination,
		luaFieldCacheDir:      &cfg.CacheDir,
		luaFieldSHA256:        &cfg.SHA256,
		luaFieldRuntimeSHA256: &cfg.RuntimeSHA256,
		luaFieldSignatureURL:  &cfg.SignatureURL,
		luaFieldKeyring:       &cfg.Keyring,
		luaFieldBundle:        &cfg.Bundle,
		luaFieldTrustedRoot:   &cfg.TrustedRoot,
		luaFieldIdentity:      &cfg.Identity,
		luaFieldIssuer:        &cfg.Issuer,
	}
	for field, dst := range stringFields {
		if err := extractString(table, field, dst); err != nil {
			return nil, err
		}
	}

	switch v := table.RawGetString(luaFieldInstallRuntime).(type) {
	case *lua.LNilType:
	case lua.LBool:
		b := bool(v)
		cfg.InstallRuntime = &b
	default:
		return nil, fieldTypeError(luaFieldInstallRuntime, "boolean", v)
	}

	switch v := table.RawGetString(luaFieldComponents).(type) {
	case *lua.LNilType:
	case *lua.LTable:
		cfg.Components = extractStringList(v)
	default:
		return nil, fieldTypeError(luaFieldComponents, "table", v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return cfg, nil
}

// extractString copies a string field into dst. Missing fields
// leave dst untouched.
func extractString(table *lua.LTable, field string, dst *string) error {
	switch v := table.RawGetString(field).(type) {
	case *lua.LNilType:
		return nil
	case lua.LString:
		*dst = strings.TrimSpace(string(v))
		return nil
	default:
		return fieldTypeError(field, "string", v)
	}
}

// extractStringList returns the string elements of an array table. Nil holes
// left by platform conditionals are skipped.
func extractStringList(table *lua.LTable) []string {
	var out []string
	table.ForEach(func(_, value lua.LValue) {
		if s, ok := value.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

func fieldTypeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s.%s'", luaGlobalVksetup, field),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
