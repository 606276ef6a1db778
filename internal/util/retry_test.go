// ABOUTME: Tests for retry and backoff utilities
// ABOUTME: Verifies backoff bounds and retry loop behavior
package util

import (
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

func TestCalculateBackoff_GrowsWithAttempts(t *testing.T) {
	base := 100 * time.Millisecond

	// With 25% jitter, attempt n is within [0.75, 1.25] of 2^n * base
	for attempt := 1; attempt <= 4; attempt++ {
		got := CalculateBackoff(base, attempt)
		expected := base * time.Duration(1<<uint(attempt))
		min := expected * 3 / 4
		max := expected * 5 / 4
		if got < min || got > max {
			t.Errorf("attempt %d: backoff = %v, want within [%v, %v]", attempt, got, min, max)
		}
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	got := CalculateBackoff(time.Second, 30)
	// 30s cap plus up to 25% jitter
	if got > 38*time.Second {
		t.Errorf("backoff = %v, want capped near 30s", got)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Retry(5, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	attempts := 0
	err := Retry(3, time.Millisecond, func() error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Retry() error = %v, want boom", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_FirstTryFast(t *testing.T) {
	start := time.Now()
	err := Retry(5, time.Second, func() error { return nil })
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first success took %v, should not sleep", elapsed)
	}
}
