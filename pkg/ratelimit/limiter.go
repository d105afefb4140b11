package ratelimit

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per key. The least recently used buckets
// are dropped once more than maxKeys keys are tracked.
type RateLimiter struct {
	buckets    *lru.Cache[string, *rate.Limiter]
	capacity   int
	refillRate float64
}

// NewRateLimiter creates a new rate limiter
// capacity: Maximum number of requests allowed in a burst per key
// refillRate: Number of requests allowed per second per key
// maxKeys: Number of keys tracked at once
func NewRateLimiter(capacity int, refillRate float64, maxKeys int) (*RateLimiter, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	buckets, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("create bucket cache: %w", err)
	}
	return &RateLimiter{
		buckets:    buckets,
		capacity:   capacity,
		refillRate: refillRate,
	}, nil
}

// Allow checks if a request for the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	bucket, ok := rl.buckets.Get(key)
	if !ok {
		fresh := rate.NewLimiter(rate.Limit(rl.refillRate), rl.capacity)
		// another request for key may have raced us here
		if existing, found, _ := rl.buckets.PeekOrAdd(key, fresh); found {
			bucket = existing
		} else {
			bucket = fresh
		}
	}
	return bucket.Allow()
}

// Reset refills the bucket of key
func (rl *RateLimiter) Reset(key string) {
	rl.buckets.Remove(key)
}

// Stats returns statistics about the rate limiter
type Stats struct {
	ActiveBuckets int
	TotalCapacity int
	RefillRate    float64
}

// GetStats returns current statistics
func (rl *RateLimiter) GetStats() Stats {
	return Stats{
		ActiveBuckets: rl.buckets.Len(),
		TotalCapacity: rl.capacity,
		RefillRate:    rl.refillRate,
	}
}
