// internal/batch/retry.go
package batch

import (
	"context"
	"time"

	"nomad-workers/internal/common/errors"
)

// retryWithBackoff retries fn with exponential backoff for retryable
// failures. Non-retryable errors (validation, unknown entities) return
// immediately since the same input will fail the same way again.
func retryWithBackoff(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
