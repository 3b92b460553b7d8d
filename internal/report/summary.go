package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Summary describes one setup run. It is written next to the build logs so
// later pipeline steps can read the install location.
type Summary struct {
	Version     string    `yaml:"version"`
	Platform    string    `yaml:"platform"`
	Distro      string    `yaml:"distro,omitempty"`
	InstallPath string    `yaml:"install_path"`
	RuntimePath string    `yaml:"runtime_path,omitempty"`
	Verified    bool      `yaml:"verified"`
	ExitCode    int       `yaml:"exit_code"`
	Failures    []Failure `yaml:"failures,omitempty"`
}

// WriteSummary marshals s as YAML to path, creating parent directories.
func WriteSummary(path string, s *Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// ReadSummary loads a summary written by WriteSummary.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return &s, nil
}
