// ABOUTME: Tests for retry and backoff utilities
// ABOUTME: Verifies backoff growth, terminal errors, and context cancellation

package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculateBackoff_ZeroForFirstAttempt(t *testing.T) {
	if got := CalculateBackoff(time.Second, 0); got != 0 {
		t.Errorf("CalculateBackoff(1s, 0) = %v, want 0", got)
	}
	if got := CalculateBackoff(time.Second, -1); got != 0 {
		t.Errorf("CalculateBackoff(1s, -1) = %v, want 0", got)
	}
}

func TestCalculateBackoff_GrowsExponentially(t *testing.T) {
	base := 100 * time.Millisecond

	// With ±25% jitter, attempt n should stay within [1.5x, 2.5x] of 2^n*base
	// until the 30s cap kicks in.
	for attempt := 1; attempt <= 4; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		got := CalculateBackoff(base, attempt)
		if got < expected*3/4 || got > expected*5/4 {
			t.Errorf("attempt %d: backoff %v outside [%v, %v]", attempt, got, expected*3/4, expected*5/4)
		}
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	got := CalculateBackoff(time.Second, 30)
	// 30s cap plus up to 25% jitter
	if got > 38*time.Second {
		t.Errorf("backoff %v exceeds cap with jitter", got)
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return errors.New("always fails")
	})
	if err == nil {
		t.Fatal("Retry() expected error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_TerminalErrorStopsImmediately(t *testing.T) {
	sentinel := errors.New("malformed input")
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return NonRetryable(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want %v", err, sentinel)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, 10*time.Second, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
