package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// RateLimiter applies a per-client token bucket. Orchestrations are
// expensive, so the limit guards the generative providers behind them.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64
	burst    float64
	nowFn    func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens  float64
	refill  time.Time
	lastHit time.Time
}

// NewRateLimiter allows rate requests per second with the given burst per
// client address.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   float64(burst),
		nowFn:   time.Now,
		stop:    make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// Stop terminates the eviction goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether one more request from addr fits the budget.
func (rl *RateLimiter) Allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.nowFn()
	b, ok := rl.buckets[addr]
	if !ok {
		b = &bucket{tokens: rl.burst, refill: now}
		rl.buckets[addr] = b
	}

	b.tokens += now.Sub(b.refill).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.refill = now
	b.lastHit = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evictLoop drops buckets idle for over ten minutes until Stop is called.
func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			cutoff := rl.nowFn().Add(-10 * time.Minute)
			rl.mu.Lock()
			for addr, b := range rl.buckets {
				if b.lastHit.Before(cutoff) {
					delete(rl.buckets, addr)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RateLimit rejects over-budget requests with 429 and a JSON error body.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := r.RemoteAddr
			// X-Real-Ip is set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				addr = xri
			}
			if !limiter.Allow(addr) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
