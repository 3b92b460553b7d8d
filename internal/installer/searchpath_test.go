package installer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearchPath(githubPath, initialPATH string) (*EnvSearchPath, map[string]string) {
	env := map[string]string{"PATH": initialPATH}
	return &EnvSearchPath{
		added:      make(map[string]bool),
		githubPath: githubPath,
		getenv:     func(k string) string { return env[k] },
		setenv: func(k, v string) error {
			env[k] = v
			return nil
		},
	}, env
}

func TestEnvSearchPath_Add(t *testing.T) {
	githubPath := filepath.Join(t.TempDir(), "github_path")
	sp, env := newTestSearchPath(githubPath, "/usr/bin")

	require.NoError(t, sp.Add("/opt/vulkan"))

	sep := string(os.PathListSeparator)
	assert.Equal(t, "/opt/vulkan"+sep+"/usr/bin", env["PATH"])

	data, err := os.ReadFile(githubPath)
	require.NoError(t, err)
	assert.Equal(t, "/opt/vulkan\n", string(data))
}

func TestEnvSearchPath_Idempotent(t *testing.T) {
	githubPath := filepath.Join(t.TempDir(), "github_path")
	sp, env := newTestSearchPath(githubPath, "/usr/bin")

	for i := 0; i < 2; i++ {
		require.NoError(t, sp.Add(""))
		require.NoError(t, sp.Add("/opt/vulkan"))
	}

	sep := string(os.PathListSeparator)
	assert.Equal(t, "/opt/vulkan"+sep+"/usr/bin", env["PATH"])

	data, err := os.ReadFile(githubPath)
	require.NoError(t, err)
	assert.Equal(t, "/opt/vulkan\n", string(data))
}

func TestEnvSearchPath_EmptyIsNoop(t *testing.T) {
	sp, env := newTestSearchPath("", "/usr/bin")
	require.NoError(t, sp.Add(""))
	assert.Equal(t, "/usr/bin", env["PATH"])
	assert.Empty(t, sp.added)
}

func TestEnvSearchPath_AlreadyOnPATH(t *testing.T) {
	sep := string(os.PathListSeparator)
	sp, env := newTestSearchPath("", "/opt/vulkan"+sep+"/usr/bin")

	require.NoError(t, sp.Add("/opt/vulkan"))
	assert.Equal(t, "/opt/vulkan"+sep+"/usr/bin", env["PATH"])
}

func TestEnvSearchPath_UnwritableGitHubPath(t *testing.T) {
	sp, _ := newTestSearchPath(filepath.Join(t.TempDir(), "missing", "github_path"), "")
	assert.Error(t, sp.Add("/opt/vulkan"))
	assert.Empty(t, sp.added)
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	r := NewExecRunner(nil, nil)

	code, err := r.Run(context.Background(), "/bin/sh", "-c", "exit 0")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = r.Run(context.Background(), "/bin/sh", "-c", "exit 3")
	require.NoError(t, err, "nonzero exit is a result, not an error")
	assert.Equal(t, 3, code)
}

func TestExecRunner_NotStarted(t *testing.T) {
	r := NewExecRunner(nil, nil)

	code, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "bin", "vulkaninfo"))
	require.Error(t, err)
	assert.Equal(t, ExitCodeNotStarted, code)
}

func TestOSFiles_Exists(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "vulkan-1.dll")
	require.NoError(t, os.WriteFile(lib, []byte("MZ"), 0644))

	assert.True(t, OSFiles{}.Exists(lib))
	assert.False(t, OSFiles{}.Exists(filepath.Join(dir, "missing.dll")))
}
