package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, contents := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0755,
			Size: int64(len(contents)),
		}))
		_, err = tw.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
}

func TestExtractArchiveZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "tool-1.0.zip")
	writeZip(t, archive, map[string]string{
		"tool-1.0/tool":      "#!/bin/sh\necho tool",
		"tool-1.0/README.md": "docs",
	})

	dest := t.TempDir()
	top, err := ExtractArchive(archive, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "tool-1.0"), top)
	assert.FileExists(t, filepath.Join(dest, "tool-1.0", "tool"))
	assert.FileExists(t, filepath.Join(dest, "tool-1.0", "README.md"))
}

func TestExtractArchiveTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "tool-1.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"tool-1.0/tool": "#!/bin/sh\necho tool",
	})

	dest := t.TempDir()
	top, err := ExtractArchive(archive, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "tool-1.0"), top)

	info, err := os.Stat(filepath.Join(dest, "tool-1.0", "tool"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0111)
}

func TestExtractArchiveUnsupported(t *testing.T) {
	_, err := ExtractArchive("/tmp/something.rar", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}

func TestFindExecutables(t *testing.T) {
	dir := t.TempDir()

	bin := filepath.Join(dir, "ripgrep-14.1.0", "rg")
	require.NoError(t, os.MkdirAll(filepath.Dir(bin), 0755))
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ripgrep-14.1.0", "README.md"), []byte("docs"), 0644))

	found, err := findExecutables(dir, "rg")
	require.NoError(t, err)
	assert.Equal(t, []string{bin}, found)
}

func TestFindExecutablesNone(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	_, err := findExecutables(dir, "tool")
	assert.Error(t, err)
}

func TestToolNameFromArchive(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/ripgrep-14.1.0-x86_64-apple-darwin.tar.gz", "ripgrep"},
		{"/tmp/fd_10.2.0_amd64.zip", "fd"},
		{"/tmp/uv-aarch64-apple-darwin.tar.gz", "uv"},
		{"/tmp/plain.tgz", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toolNameFromArchive(tt.path), tt.path)
	}
}
