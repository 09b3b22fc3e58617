package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(func() time.Time { return current })

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(context.Background(), "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("expected call %d to be allowed", i)
		}
	}

	decision, err := limiter.Allow(context.Background(), "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected fourth call to be rejected")
	}
	if decision.Remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", decision.Remaining)
	}

	// New window resets the bucket.
	current = current.Add(2 * time.Minute)
	decision, err = limiter.Allow(context.Background(), "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("expected fresh window to be allowed")
	}
}

func TestMemoryLimiterZeroLimitDisabled(t *testing.T) {
	limiter := NewMemoryLimiter(nil)
	decision, err := limiter.Allow(context.Background(), "k", 0, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("limit 0 should disable limiting")
	}
}

func TestMemoryLimiterIndependentKeys(t *testing.T) {
	limiter := NewMemoryLimiter(nil)
	if _, err := limiter.Allow(context.Background(), "a", 1, time.Minute); err != nil {
		t.Fatalf("allow a: %v", err)
	}
	decision, err := limiter.Allow(context.Background(), "b", 1, time.Minute)
	if err != nil {
		t.Fatalf("allow b: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("keys must not share buckets")
	}
}
