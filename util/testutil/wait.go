package testutil

import (
	"testing"
	"time"
)

// WaitFor polls a condition function until it returns true or times out.
// It's useful for waiting on asynchronous operations in tests.
//
// Usage:
//
//	testutil.WaitFor(t, 5*time.Second, "combined result delivered", func() bool {
//	    return collector.Count() == 1
//	})
func WaitFor(t testing.TB, timeout time.Duration, message string, condition func() bool) {
	t.Helper()

	start := time.Now()

	// Check immediately first
	if condition() {
		return
	}

	tickerInterval := 10 * time.Millisecond
	if timeout < tickerInterval {
		timeout = tickerInterval
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	for range ticker.C {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for %s (waited %v)", message, time.Since(start).Round(time.Millisecond))
		}
	}
}
