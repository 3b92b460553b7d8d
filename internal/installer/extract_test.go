package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// createTestTarGz writes a tar.gz holding files and returns its path.
func createTestTarGz(t *testing.T, files map[string]string) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "sdk.tar.gz")
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer func() { _ = gzipWriter.Close() }()

	tarWriter := tar.NewWriter(gzipWriter)
	defer func() { _ = tarWriter.Close() }()

	for name, content := range files {
		header := &tar.Header{
			Name: name,
			Mode: 0755,
			Size: int64(len(content)),
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", name, err)
		}
		if _, err := tarWriter.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write content for %s: %v", name, err)
		}
	}

	return archivePath
}

// createTestZip writes a zip holding files and returns its path.
func createTestZip(t *testing.T, files map[string]string) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "runtime.zip")
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	zw := zip.NewWriter(archiveFile)
	defer func() { _ = zw.Close() }()

	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	return archivePath
}

func TestExtractTarGz(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name:  "diagnostics binary",
			files: map[string]string{"bin/vulkaninfo": "#!/bin/sh\necho hello"},
		},
		{
			name: "nested layers",
			files: map[string]string{
				"lib/libvulkan.so.1":                   "elf",
				"share/vulkan/explicit_layer.d/a.json": "{}",
				"include/vulkan/vulkan_core.h":         "#pragma once",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archivePath := createTestTarGz(t, tt.files)
			destDir := t.TempDir()

			got, err := NewExtractor().Extract(context.Background(), archivePath, destDir, FormatTarGz)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != destDir {
				t.Errorf("Extract() = %q, want %q", got, destDir)
			}

			for name, want := range tt.files {
				data, err := os.ReadFile(filepath.Join(destDir, name))
				if err != nil {
					t.Errorf("failed to read extracted %s: %v", name, err)
					continue
				}
				if string(data) != want {
					t.Errorf("%s content = %q, want %q", name, data, want)
				}
			}
		})
	}
}

func TestExtractZip(t *testing.T) {
	archivePath := createTestZip(t, map[string]string{
		"vulkan-1.dll":     "MZ",
		"x86/vulkan-1.dll": "MZ32",
	})
	destDir := filepath.Join(t.TempDir(), "runtime")

	got, err := NewExtractor().Extract(context.Background(), archivePath, destDir, FormatZip)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != destDir {
		t.Errorf("Extract() = %q, want %q", got, destDir)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "x86", "vulkan-1.dll"))
	if err != nil {
		t.Fatalf("failed to read extracted file: %v", err)
	}
	if string(data) != "MZ32" {
		t.Errorf("content = %q, want %q", data, "MZ32")
	}
}

func TestExtract_PathTraversal(t *testing.T) {
	tarPath := createTestTarGz(t, map[string]string{"../../../etc/passwd": "x"})
	if _, err := NewExtractor().Extract(context.Background(), tarPath, t.TempDir(), FormatTarGz); err == nil {
		t.Error("expected error for tar path traversal")
	}

	zipPath := createTestZip(t, map[string]string{"../evil.dll": "x"})
	if _, err := NewExtractor().Extract(context.Background(), zipPath, t.TempDir(), FormatZip); err == nil {
		t.Error("expected error for zip path traversal")
	}
}

func TestExtractTarGz_SymlinkTraversal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	tests := []struct {
		name       string
		linkName   string
		linkTarget string
		shouldFail bool
	}{
		{"absolute symlink", "link", "/etc/passwd", true},
		{"relative traversal symlink", "link", "../../../etc/passwd", true},
		{"valid relative symlink", "link", "target.txt", false},
		{"valid subdir symlink", "subdir/link", "../target.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			archivePath := filepath.Join(tmpDir, "test.tar.gz")

			archiveFile, err := os.Create(archivePath)
			if err != nil {
				t.Fatalf("failed to create archive: %v", err)
			}
			gzipWriter := gzip.NewWriter(archiveFile)
			tarWriter := tar.NewWriter(gzipWriter)

			_ = tarWriter.WriteHeader(&tar.Header{Name: "target.txt", Mode: 0644, Size: 4})
			_, _ = tarWriter.Write([]byte("test"))
			if err := tarWriter.WriteHeader(&tar.Header{
				Name:     tt.linkName,
				Typeflag: tar.TypeSymlink,
				Linkname: tt.linkTarget,
			}); err != nil {
				t.Fatalf("failed to write symlink header: %v", err)
			}

			_ = tarWriter.Close()
			_ = gzipWriter.Close()
			_ = archiveFile.Close()

			err = NewExtractor().ExtractTarGz(context.Background(), archivePath, filepath.Join(tmpDir, "extract"))
			if tt.shouldFail && err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("unexpected error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestExtract_CorruptedArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tar.gz")
	if err := os.WriteFile(path, []byte("not a gzip stream"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewExtractor().Extract(context.Background(), path, t.TempDir(), FormatTarGz); err == nil {
		t.Error("expected error for corrupted tar.gz")
	}
	if _, err := NewExtractor().Extract(context.Background(), path, t.TempDir(), FormatZip); err == nil {
		t.Error("expected error for corrupted zip")
	}
}

func TestExtract_UnknownFormat(t *testing.T) {
	if _, err := NewExtractor().Extract(context.Background(), "x.dmg", t.TempDir(), ArchiveFormat("dmg")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExtract_Cancelled(t *testing.T) {
	archivePath := createTestTarGz(t, map[string]string{"bin/vulkaninfo": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExtractor().Extract(ctx, archivePath, t.TempDir(), FormatTarGz); err == nil {
		t.Error("expected error for cancelled context")
	}
}
