package installer

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"dotfiles/internal/logger"
	"dotfiles/internal/retry"
)

// Download retry tuning.
var (
	DownloadRetries    = 3
	DownloadRetryDelay = 2 * time.Second
)

// downloadFile fetches url to destPath, retrying transient failures with
// exponential backoff.
func downloadFile(url, destPath string) error {
	return retry.Do(DownloadRetries, DownloadRetryDelay, 2.0, func() error {
		logger.Debug("[DEBUG] Downloading %s -> %s\n", url, destPath)

		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("failed to GET %s: %w", url, err)
		}
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
			}
		}()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("download of %s failed: HTTP status %d", url, resp.StatusCode)
		}

		out, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", destPath, err)
		}
		defer func() {
			if cerr := out.Close(); cerr != nil {
				logger.Warn("[WARN] Failed to close %s: %v\n", destPath, cerr)
			}
		}()

		if _, err := io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("failed to write %s: %w", destPath, err)
		}
		return nil
	})
}
