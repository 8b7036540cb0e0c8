// Package retry provides the exponential-backoff retry wrapper used for
// network operations (inventory clone/pull, release downloads).
package retry

import (
	"time"

	"dotfiles/internal/logger"
)

// Do invokes fn up to attempts times. After a failed attempt it sleeps
// delay * backoff^(attempt-1) before trying again. The last error is returned
// once all attempts are exhausted.
func Do(attempts int, delay time.Duration, backoff float64, fn func() error) error {
	var lastErr error

	wait := delay
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < attempts {
			logger.Warn("[WARN] Attempt %d/%d failed, retrying in %.1fs...\n",
				attempt, attempts, wait.Seconds())
			time.Sleep(wait)
			wait = time.Duration(float64(wait) * backoff)
		} else {
			logger.Error("[ERROR] All %d attempts failed\n", attempts)
		}
	}
	return lastErr
}
