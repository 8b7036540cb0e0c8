package installer

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformPatterns(t *testing.T) {
	patterns := platformPatterns()
	require.NotEmpty(t, patterns)

	// OS/arch combinations come before the OS-only fallbacks.
	assert.Contains(t, patterns, runtime.GOOS+"_"+runtime.GOARCH)
	assert.Contains(t, patterns, runtime.GOOS+"-"+runtime.GOARCH)
	assert.Equal(t, runtime.GOOS, patterns[len(patterns)-len(osOnlyFallbacks())])
}

func osOnlyFallbacks() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"darwin", "macos", "macOS", "apple-darwin"}
	case "linux":
		return []string{"linux", "unknown-linux"}
	default:
		return []string{runtime.GOOS}
	}
}

func TestMatchAsset(t *testing.T) {
	release := &GitHubRelease{TagName: "v14.1.0"}
	for _, name := range []string{
		"ripgrep-14.1.0-x86_64-apple-darwin.tar.gz",
		"ripgrep-14.1.0-x86_64-unknown-linux-musl.tar.gz",
		"ripgrep-14.1.0-aarch64-apple-darwin.tar.gz",
		"ripgrep-14.1.0.sha256",
	} {
		release.Assets = append(release.Assets, struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		}{Name: name, BrowserDownloadURL: "https://example.com/" + name})
	}

	t.Run("matches platform archive", func(t *testing.T) {
		name, url := matchAsset(release, []string{"aarch64-apple-darwin"})
		assert.Equal(t, "ripgrep-14.1.0-aarch64-apple-darwin.tar.gz", name)
		assert.Equal(t, "https://example.com/ripgrep-14.1.0-aarch64-apple-darwin.tar.gz", url)
	})

	t.Run("first pattern wins", func(t *testing.T) {
		name, _ := matchAsset(release, []string{"x86_64-unknown-linux", "apple-darwin"})
		assert.Equal(t, "ripgrep-14.1.0-x86_64-unknown-linux-musl.tar.gz", name)
	})

	t.Run("skips non-archive assets", func(t *testing.T) {
		name, url := matchAsset(release, []string{"sha256"})
		assert.Empty(t, name)
		assert.Empty(t, url)
	})

	t.Run("no match", func(t *testing.T) {
		name, url := matchAsset(release, []string{"windows"})
		assert.Empty(t, name)
		assert.Empty(t, url)
	})
}

func TestDownloadFile(t *testing.T) {
	origRetries, origDelay := DownloadRetries, DownloadRetryDelay
	DownloadRetries, DownloadRetryDelay = 2, time.Millisecond
	defer func() { DownloadRetries, DownloadRetryDelay = origRetries, origDelay }()

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "payload")
		}))
		defer srv.Close()

		dest := filepath.Join(t.TempDir(), "asset.tar.gz")
		require.NoError(t, downloadFile(srv.URL, dest))

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("retries transient failures", func(t *testing.T) {
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, "payload")
		}))
		defer srv.Close()

		dest := filepath.Join(t.TempDir(), "asset.tar.gz")
		require.NoError(t, downloadFile(srv.URL, dest))
		assert.Equal(t, 2, attempts)
	})

	t.Run("gives up on persistent failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		err := downloadFile(srv.URL, filepath.Join(t.TempDir(), "asset"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}
