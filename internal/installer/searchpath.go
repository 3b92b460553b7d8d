package installer

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// EnvGitHubPath names the file GitHub Actions reads PATH additions from.
const EnvGitHubPath = "GITHUB_PATH"

// SearchPath makes a directory's executables resolvable by later processes.
// Add must be idempotent and accept the empty string.
type SearchPath interface {
	Add(dir string) error
}

// EnvSearchPath prepends directories to the process PATH, so children started
// by this process see them, and appends them to $GITHUB_PATH, so later steps
// of the workflow see them.
type EnvSearchPath struct {
	mu         sync.Mutex
	added      map[string]bool
	githubPath string
	getenv     func(string) string
	setenv     func(string, string) error
}

// NewEnvSearchPath creates a SearchPath backed by the process environment.
func NewEnvSearchPath() *EnvSearchPath {
	return &EnvSearchPath{
		added:      make(map[string]bool),
		githubPath: os.Getenv(EnvGitHubPath),
		getenv:     os.Getenv,
		setenv:     os.Setenv,
	}
}

// Add implements SearchPath. Empty and already added directories are no-ops.
func (s *EnvSearchPath) Add(dir string) error {
	if dir == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.added[dir] {
		return nil
	}

	if s.githubPath != "" {
		f, err := os.OpenFile(s.githubPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open %s: %w", EnvGitHubPath, err)
		}
		_, err = fmt.Fprintln(f, dir)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("append to %s: %w", EnvGitHubPath, err)
		}
	}

	current := s.getenv("PATH")
	if !containsPath(current, dir) {
		next := dir
		if current != "" {
			next = dir + string(os.PathListSeparator) + current
		}
		if err := s.setenv("PATH", next); err != nil {
			return fmt.Errorf("set PATH: %w", err)
		}
	}

	s.added[dir] = true
	return nil
}

func containsPath(list, dir string) bool {
	for _, p := range strings.Split(list, string(os.PathListSeparator)) {
		if p == dir {
			return true
		}
	}
	return false
}
