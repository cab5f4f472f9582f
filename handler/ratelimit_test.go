package handler

import (
	"testing"
	"time"
)

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatalf("expected first two requests to pass")
	}
	if rl.Allow("1.1.1.1") {
		t.Errorf("expected third request to be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Errorf("expected other clients to have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.1.1.1") {
		t.Errorf("expected bucket to refill after the window")
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("1.1.1.1")

	now = now.Add(2 * time.Hour)
	rl.cleanup()
	if len(rl.clients) != 0 {
		t.Errorf("expected idle client to be removed")
	}
}
