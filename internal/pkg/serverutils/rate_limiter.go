package serverutils

import (
	"strconv"
	"sync"
	"time"

	"haley-companion-be/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter keeps one token bucket per client key.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

// NewKeyedRateLimiter allows perMinute requests per key with the given burst.
// perMinute <= 0 disables limiting.
func NewKeyedRateLimiter(perMinute, burst int) *KeyedRateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	if burst <= 0 {
		burst = 1
	}
	return &KeyedRateLimiter{
		limiters: make(map[string]*keyedLimiter),
		limit:    limit,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

func (r *KeyedRateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.limiters[key]
	if !ok {
		entry = &keyedLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Sweep drops limiters idle for longer than the idle TTL.
func (r *KeyedRateLimiter) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	for key, entry := range r.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(r.limiters, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until stop is closed.
func (r *KeyedRateLimiter) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-stop:
			return
		}
	}
}

// Middleware rejects over-limit clients, keyed by remote IP.
func (r *KeyedRateLimiter) Middleware(m *metrics.Metrics) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !r.Allow(ctx.IP()) {
			if m != nil {
				m.RecordRateLimitExceeded(ctx.Route().Path)
			}
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		}
		return ctx.Next()
	}
}

// MetricsMiddleware records count and latency per matched route.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			status = StatusFor(err)
		}
		m.RecordHTTPRequest(ctx.Method(), ctx.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
