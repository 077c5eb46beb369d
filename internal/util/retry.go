// ABOUTME: Retry utilities for external calls with exponential backoff
// ABOUTME: Shared by the LLM gateway and storage clients for consistent retry behavior
package util

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Terminal wraps an error that must not be retried (malformed input,
// over-limit payloads). Retry unwraps and returns it immediately.
type Terminal struct {
	Err error
}

func (t *Terminal) Error() string { return t.Err.Error() }

func (t *Terminal) Unwrap() error { return t.Err }

// NonRetryable marks err as terminal for Retry.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &Terminal{Err: err}
}

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	// Exponential: 2^attempt * base
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	// Cap at 30 seconds
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	// Add jitter: -25% to +25% using auto-seeded math/rand/v2
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// Retry runs fn up to maxRetries+1 times, sleeping CalculateBackoff between
// attempts. Errors wrapped with NonRetryable stop the loop immediately, as
// does context cancellation.
func Retry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(CalculateBackoff(baseDelay, attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		var terminal *Terminal
		if errors.As(err, &terminal) {
			return terminal.Err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
	}

	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}
