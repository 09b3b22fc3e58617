package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NikhilKottoli/ImpactChain-sub001/internal/domain"
)

const defaultMaxKeys = 10000

type memoryLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*bucket
	maxKeys int
}

type bucket struct {
	count     int
	windowEnd time.Time
}

// NewMemoryLimiter returns a fixed-window limiter backed by process memory.
// Suitable for single-instance deployments and tests; multi-instance
// deployments should use the redis limiter.
func NewMemoryLimiter(now func() time.Time) domain.RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &memoryLimiter{
		now:     now,
		buckets: make(map[string]*bucket),
		maxKeys: defaultMaxKeys,
	}
}

func (m *memoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if ok && now.After(b.windowEnd) {
		delete(m.buckets, key)
		ok = false
	}
	if !ok {
		if len(m.buckets) >= m.maxKeys {
			m.evictExpired(now)
		}
		if len(m.buckets) >= m.maxKeys {
			return domain.RateLimitDecision{}, errors.New("rate limiter capacity exceeded")
		}
		b = &bucket{windowEnd: now.Add(window)}
		m.buckets[key] = b
	}

	decision := domain.RateLimitDecision{Limit: limit, ResetAt: b.windowEnd}
	if b.count < limit {
		b.count++
		decision.Allowed = true
		decision.Remaining = limit - b.count
		return decision, nil
	}
	return decision, nil
}

func (m *memoryLimiter) evictExpired(now time.Time) {
	for key, b := range m.buckets {
		if now.After(b.windowEnd) {
			delete(m.buckets, key)
		}
	}
}
