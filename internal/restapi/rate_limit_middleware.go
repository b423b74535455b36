package restapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"tracker.transitlive.org/internal/clock"
)

// limiterIdleThreshold is how long a client IP must go unseen before its
// limiter is evicted.
const limiterIdleThreshold = 10 * time.Minute

// rateLimitClient pairs a limiter with its last usage time so the cleanup
// loop can evict idle clients without disrupting active ones.
type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // Unix nanoseconds
}

// RateLimiter applies a per-client-IP request rate. The API is anonymous, so
// the remote address is the only thing that identifies a caller.
type RateLimiter struct {
	limiters    map[string]*rateLimitClient
	mu          sync.RWMutex
	limit       rate.Limit
	burst       int
	cleanupTick *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once
	clock       clock.Clock
}

// NewRateLimiter allows ratePerSecond requests per second per client IP,
// with a burst of the same size. A non-positive rate allows nothing.
func NewRateLimiter(ratePerSecond int, clk clock.Clock) *RateLimiter {
	limit := rate.Limit(0)
	if ratePerSecond > 0 {
		limit = rate.Every(time.Second / time.Duration(ratePerSecond))
	}

	rl := &RateLimiter{
		limiters:    make(map[string]*rateLimitClient),
		limit:       limit,
		burst:       ratePerSecond,
		cleanupTick: time.NewTicker(5 * time.Minute),
		stopChan:    make(chan struct{}),
		clock:       clk,
	}

	go rl.cleanupLoop()

	return rl
}

// Middleware wraps next with the rate limit check.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(clientIP(r)).Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. Requests arriving without a port
// (as httptest sometimes produces) are used as-is.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getLimiter returns the limiter for ip, creating it on first sight, and
// refreshes its last-seen timestamp.
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.RLock()
	if client, ok := rl.limiters[ip]; ok {
		client.lastSeen.Store(rl.clock.Now().UnixNano())
		rl.mu.RUnlock()
		return client.limiter
	}
	rl.mu.RUnlock()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Another goroutine may have created it while we waited for the lock.
	if client, ok := rl.limiters[ip]; ok {
		client.lastSeen.Store(rl.clock.Now().UnixNano())
		return client.limiter
	}

	client := &rateLimitClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
	client.lastSeen.Store(rl.clock.Now().UnixNano())
	rl.limiters[ip] = client

	return client.limiter
}

func (rl *RateLimiter) sendRateLimitExceeded(w http.ResponseWriter) {
	retryAfter := time.Second
	if rl.limit > 0 {
		retryAfter = time.Duration(float64(time.Second) / float64(rl.limit))
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	sendError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// cleanupOnce removes limiters whose clients have gone idle. Separated from
// the loop so tests can trigger it synchronously.
func (rl *RateLimiter) cleanupOnce() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for ip, client := range rl.limiters {
		lastSeen := time.Unix(0, client.lastSeen.Load())
		if now.Sub(lastSeen) > limiterIdleThreshold {
			delete(rl.limiters, ip)
		}
	}
}

func (rl *RateLimiter) cleanupLoop() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanupOnce()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop ends the background cleanup goroutine. Safe to call multiple times.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.cleanupTick.Stop()
	})
}
