package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coursechat/coursechat/internal/models"
)

// RateLimiter enforces a per-client sliding one-minute window. Clients are
// keyed by API key when present, remote address otherwise.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	limit   int
}

func NewRateLimiter(limitPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string][]time.Time),
		limit:   limitPerMinute,
	}
	go rl.pruneLoop()
	return rl
}

func (rl *RateLimiter) allow(key string) (remaining int, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-time.Minute)
	recent := rl.clients[key][:0]
	for _, t := range rl.clients[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.limit {
		rl.clients[key] = recent
		return 0, false
	}
	rl.clients[key] = append(recent, time.Now())
	return rl.limit - len(rl.clients[key]), true
}

func (rl *RateLimiter) pruneLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-time.Minute)
		for key, times := range rl.clients {
			if len(times) == 0 || times[len(times)-1].Before(cutoff) {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

func RateLimit(limitPerMinute int) func(http.Handler) http.Handler {
	rl := NewRateLimiter(limitPerMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.RemoteAddr
			}

			remaining, ok := rl.allow(key)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				w.Header().Set("Retry-After", "60")
				models.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
