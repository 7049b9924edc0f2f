package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket is a per-key rate limiter built on golang.org/x/time/rate.
// It is safe for concurrent use. Stale keys are removed periodically.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     rate.Limit
	capacity int
	stop     chan struct{}
	once     sync.Once
}

type bucket struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewTokenBucket creates a rate limiter that allows up to capacity requests
// per key in a burst, refilling at the given rate (tokens per second). It
// starts a background goroutine that removes idle keys; call Close to stop it.
func NewTokenBucket(perSecond float64, capacity int) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate.Limit(perSecond),
		capacity: capacity,
		stop:     make(chan struct{}),
	}
	go tb.cleanup(5*time.Minute, 10*time.Minute)
	return tb
}

// Allow reports whether the given key may proceed, consuming one token.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(tb.rate, tb.capacity)}
		tb.buckets[key] = b
	}
	b.last = time.Now()
	tb.mu.Unlock()

	return b.limiter.Allow()
}

// Close stops the cleanup goroutine.
func (tb *TokenBucket) Close() {
	tb.once.Do(func() { close(tb.stop) })
}

func (tb *TokenBucket) cleanup(every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-tb.stop:
			return
		case <-ticker.C:
			tb.mu.Lock()
			cutoff := time.Now().Add(-idle)
			for key, b := range tb.buckets {
				if b.last.Before(cutoff) {
					delete(tb.buckets, key)
				}
			}
			tb.mu.Unlock()
		}
	}
}
