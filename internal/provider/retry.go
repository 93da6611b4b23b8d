package provider

import (
	"context"
	"fmt"
	"log"
	"time"
)

// retryConfig holds the parameters for the provider retry strategy. Transient
// upstream failures are retried with exponential back-off before the stage is
// declared failed.
type retryConfig struct {
	maxAttempts int
	baseDelay   time.Duration
}

func defaultRetry() retryConfig {
	return retryConfig{maxAttempts: 3, baseDelay: 500 * time.Millisecond}
}

// do executes fn with exponential back-off retry logic, honoring context
// cancellation between attempts.
func (r retryConfig) do(ctx context.Context, operationName string, fn func() error) error {
	var lastErr error
	delay := r.baseDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < r.maxAttempts {
			log.Printf("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.maxAttempts, lastErr, delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.maxAttempts, lastErr)
}
