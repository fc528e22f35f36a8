package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(n int) RetryConfig {
	return RetryConfig{MaxAttempts: n, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2}
}

func TestWithRetry_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), fastRetry(3), func() error {
		calls++
		if calls < 3 {
			return retryable(errors.New("flaky"))
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third call, got calls=%d err=%v", calls, err)
	}
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	perm := invalid("bad")
	err := withRetry(context.Background(), fastRetry(5), func() error {
		calls++
		return perm
	})
	if calls != 1 || !errors.Is(err, perm) {
		t.Fatalf("expected one call and the permanent error, got calls=%d err=%v", calls, err)
	}
}

func TestWithRetry_UnwrapsLastError(t *testing.T) {
	base := &FailureInfo{Code: CodeUnavailable, Message: "down"}
	err := withRetry(context.Background(), fastRetry(2), func() error { return retryable(base) })
	if isRetryable(err) {
		t.Fatalf("returned error should not carry the retry marker: %v", err)
	}
	if f, ok := Failure(err); !ok || f.Message != "down" {
		t.Fatalf("expected the underlying failure, got %v", err)
	}
}

func TestBackoff_CapsAtMaxWait(t *testing.T) {
	cfg := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}
	if got := backoff(cfg, 1); got != 100*time.Millisecond {
		t.Fatalf("attempt 1: got %v", got)
	}
	if got := backoff(cfg, 5); got != 300*time.Millisecond {
		t.Fatalf("attempt 5: got %v", got)
	}
}
