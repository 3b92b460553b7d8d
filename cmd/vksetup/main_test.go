package main

// NOTE: Tests in this package replace package-level hooks (getenv,
// detectPlatform, newFetcher, newRunner, newSearchPath). Do not use
// t.Parallel(); every helper restores its hook via t.Cleanup().

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/vksetup/internal/config"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/fetch"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/installer"
	"github.com/ZebulonRouseFrantzich/vksetup/internal/platform"
)

type runCall struct {
	Name string
	Args []string
}

// stubRunner answers every program by base name.
type stubRunner struct {
	mu    sync.Mutex
	calls []runCall
	codes map[string]int
	err   error
}

func (r *stubRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, runCall{Name: name, Args: args})
	if r.err != nil {
		return installer.ExitCodeNotStarted, r.err
	}
	return r.codes[filepath.Base(name)], nil
}

func (r *stubRunner) Calls() []runCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]runCall(nil), r.calls...)
}

type stubSearchPath struct {
	added []string
}

func (s *stubSearchPath) Add(dir string) error {
	if dir != "" {
		s.added = append(s.added, dir)
	}
	return nil
}

// cliEnv installs test doubles for every hook and returns them.
type cliEnv struct {
	runner *stubRunner
	search *stubSearchPath
	env    map[string]string
	dir    string
}

func newCLIEnv(t *testing.T, goos string) *cliEnv {
	t.Helper()

	e := &cliEnv{
		runner: &stubRunner{codes: map[string]int{}},
		search: &stubSearchPath{},
		env:    map[string]string{},
		dir:    t.TempDir(),
	}

	prevNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prevNoColor })

	origGetenv, origDetect, origFetcher, origRunner, origSearch := getenv, detectPlatform, newFetcher, newRunner, newSearchPath
	t.Cleanup(func() {
		getenv, detectPlatform, newFetcher, newRunner, newSearchPath = origGetenv, origDetect, origFetcher, origRunner, origSearch
	})

	getenv = func(key string) string { return e.env[key] }
	detectPlatform = func(context.Context) (*platform.Info, error) {
		return &platform.Info{OS: goos, Arch: "amd64", ArchRaw: "x86_64"}, nil
	}
	newRunner = func(io.Writer, io.Writer) installer.Runner { return e.runner }
	newSearchPath = func() installer.SearchPath { return e.search }

	// Keep the working directory free of a stray vksetup.lua.
	t.Chdir(e.dir)
	return e
}

// serve points the fetcher at an httptest server serving files by path.
func (e *cliEnv) serve(t *testing.T, files map[string][]byte) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	newFetcher = func(opts fetch.Options) (*fetch.Fetcher, error) {
		opts.DownloadBase = srv.URL + "/sdk/download"
		opts.VersionBase = srv.URL + "/sdk/latest"
		return fetch.NewFetcher(opts)
	}
}

func (e *cliEnv) cacheDir() string { return filepath.Join(e.dir, "cache") }

func (e *cliEnv) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := execute(append([]string{"vksetup", "--cache-dir", e.cacheDir()}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0755, Size: int64(len(content)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var silent *SilentExitError
	require.ErrorAs(t, err, &silent)
	assert.Equal(t, code, silent.Code)
}

func TestRunMain(t *testing.T) {
	orig := executeFunc
	t.Cleanup(func() { executeFunc = orig })

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"success", nil, -1, ""},
		{"silent exit", &SilentExitError{Code: 3}, 3, ""},
		{"plain error", errors.New("boom"), 1, "Error: boom\n"},
		{"parse error trimmed", &config.ParseError{Message: "Lua syntax error", Detail: "line 1\nstack traceback:\n..."}, 1, "Error: Lua syntax error: line 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executeFunc = func([]string, io.Writer, io.Writer) error { return tt.err }

			code := -1
			var stderr bytes.Buffer
			runMain([]string{"vksetup"}, io.Discard, &stderr, func(c int) { code = c })

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantErr, stderr.String())
		})
	}
}

func TestDebugRequested(t *testing.T) {
	orig := getenv
	t.Cleanup(func() { getenv = orig })
	env := map[string]string{}
	getenv = func(k string) string { return env[k] }

	assert.False(t, debugRequested([]string{"vksetup", "setup"}))
	assert.True(t, debugRequested([]string{"vksetup", "--debug", "setup"}))
	assert.False(t, debugRequested([]string{"vksetup", "--", "--debug"}))

	env[EnvDebug] = "TRUE"
	assert.True(t, debugRequested([]string{"vksetup"}))
}

func TestEnvTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "Yes", " on "} {
		assert.True(t, envTruthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "off", "maybe"} {
		assert.False(t, envTruthy(v), v)
	}
}

func TestVersionString(t *testing.T) {
	origV, origC := Version, Commit
	t.Cleanup(func() { Version, Commit = origV, origC })

	Version, Commit = "v1.0.0", "unknown"
	assert.Equal(t, "v1.0.0", versionString())

	Commit = "abc123"
	assert.Equal(t, "v1.0.0 (commit abc123)", versionString())
}

func TestRootVersionFlag(t *testing.T) {
	e := newCLIEnv(t, "linux")
	stdout, _, err := e.run("--version")
	require.NoError(t, err)
	assert.Equal(t, "vksetup dev\n", stdout)
}

func TestVersionCommand(t *testing.T) {
	e := newCLIEnv(t, "windows")
	stdout, _, err := e.run("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "vksetup dev\n")
	assert.Contains(t, stdout, "platform: windows/amd64\n")
}

func TestDetectFailure(t *testing.T) {
	e := newCLIEnv(t, "linux")
	detectPlatform = func(context.Context) (*platform.Info, error) { return nil, errors.New("no host info") }

	_, _, err := e.run("version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no host info")
}

func TestInit(t *testing.T) {
	e := newCLIEnv(t, "linux")

	stdout, _, err := e.run("init", "--sdk-version", "1.3.290.0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+config.DefaultFilename)

	cfg, err := config.NewParser(nil).ParseFile(context.Background(), filepath.Join(e.dir, config.DefaultFilename))
	require.NoError(t, err)
	assert.Equal(t, "1.3.290.0", cfg.Version)

	_, _, err = e.run("init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = e.run("init", "--force")
	require.NoError(t, err)

	_, _, err = e.run("init", "--force", "--sdk-version", "bogus")
	assert.Error(t, err)
}

func TestInitCustomPath(t *testing.T) {
	e := newCLIEnv(t, "linux")
	path := filepath.Join(e.dir, "ci", "vk.lua")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	_, _, err := e.run("--config", path, "init")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.NoFileExists(t, filepath.Join(e.dir, config.DefaultFilename))
}
