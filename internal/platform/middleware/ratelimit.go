package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kineticchat/webui/internal/platform/cache"
)

// RateLimitConfig holds the limits enforced per client identity.
type RateLimitConfig struct {
	PerMinute       int
	PerHour         int
	Burst           int
	MaxClients      int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
}

// DefaultRateLimitConfig returns the default limits.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		PerMinute:       100,
		PerHour:         1000,
		Burst:           10,
		MaxClients:      10000,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
	}
}

// RateLimitDecision is the outcome of an admission check.
type RateLimitDecision struct {
	Allowed    bool
	LimitType  string // "minute", "hour", "burst", or "internal" on denial
	Limit      int
	RetryAfter int // seconds

	// Populated on admission only.
	RemainingMinute int
	RemainingHour   int
	Tokens          int
}

// RateLimiterStats is a snapshot of limiter activity.
type RateLimiterStats struct {
	TrackedClients int     `json:"tracked_clients"`
	MaxClients     int     `json:"max_clients"`
	TotalRequests  uint64  `json:"total_requests"`
	TotalBlocked   uint64  `json:"total_blocked"`
	BlockRate      float64 `json:"block_rate"`
	SweepsRun      uint64  `json:"sweeps_run"`
}

// clientRecord holds one client's rate-limit state. All fields are guarded
// by mu so concurrent requests from the same client serialize.
type clientRecord struct {
	mu sync.Mutex

	minuteWindow []time.Time
	hourWindow   []time.Time
	tokens       float64
	lastRefill   time.Time
	lastAccess   time.Time
	requests     uint64
	blocked      uint64
}

// RateLimiter enforces three mechanisms at once: a token bucket against
// sub-second bursts, a 60s sliding window against short-term abuse the
// bucket's refill would miss, and a 3600s window against sustained abuse
// across refill cycles. Client records live in a bounded LRU; idle records
// are swept on an interval. Construct once at startup and share by
// reference across handlers.
type RateLimiter struct {
	cfg     RateLimitConfig
	clients *cache.LRU[string, *clientRecord]
	ids     *cache.LRU[string, string]
	log     zerolog.Logger

	sweepMu   sync.Mutex
	lastSweep time.Time

	totalRequests atomic.Uint64
	totalBlocked  atomic.Uint64
	sweepsRun     atomic.Uint64
}

// NewRateLimiter builds a limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:       cfg,
		clients:   cache.NewLRU[string, *clientRecord](cfg.MaxClients),
		ids:       cache.NewLRU[string, string](1000),
		log:       log,
		lastSweep: time.Now(),
	}
}

// ClientID derives a stable one-way identity from the client address and
// session token, so no raw identifier is kept in memory. Hashes are
// memoized in a small bounded cache.
func (rl *RateLimiter) ClientID(ip, sessionID string) string {
	key := ip + ":" + sessionID
	return rl.ids.GetOrPut(key, func() string {
		sum := sha256.Sum256([]byte(key))
		return hex.EncodeToString(sum[:])
	})
}

// Allow decides whether the client may issue a request. Checks run in fixed
// order: minute window, hour window, token bucket. On admission the current
// timestamp enters both windows and one token is consumed. Any internal
// panic denies the request rather than admitting unlimited traffic.
func (rl *RateLimiter) Allow(clientID string) (d RateLimitDecision) {
	defer func() {
		if r := recover(); r != nil {
			rl.log.Error().Interface("panic", r).Msg("rate limiter internal error, denying request")
			rl.totalBlocked.Add(1)
			d = RateLimitDecision{LimitType: "internal", RetryAfter: 1}
		}
	}()

	rl.totalRequests.Add(1)

	rec := rl.clients.GetOrPut(clientID, func() *clientRecord {
		now := time.Now()
		return &clientRecord{
			tokens:     float64(rl.cfg.Burst),
			lastRefill: now,
			lastAccess: now,
		}
	})

	d = rl.admit(rec)

	// The sweep locks every record, so it must run only after this
	// request has released rec.mu.
	rl.maybeSweep(time.Now())
	return d
}

// admit applies the three checks to one client record under its lock.
func (rl *RateLimiter) admit(rec *clientRecord) RateLimitDecision {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	now := time.Now()
	rec.lastAccess = now
	rec.requests++

	rec.minuteWindow = pruneWindow(rec.minuteWindow, now.Add(-time.Minute))
	rec.hourWindow = pruneWindow(rec.hourWindow, now.Add(-time.Hour))
	rl.refill(rec, now)

	minuteCount := len(rec.minuteWindow)
	if minuteCount >= rl.cfg.PerMinute {
		rec.blocked++
		rl.totalBlocked.Add(1)
		return RateLimitDecision{LimitType: "minute", Limit: rl.cfg.PerMinute, RetryAfter: 60}
	}

	hourCount := len(rec.hourWindow)
	if hourCount >= rl.cfg.PerHour {
		rec.blocked++
		rl.totalBlocked.Add(1)
		return RateLimitDecision{LimitType: "hour", Limit: rl.cfg.PerHour, RetryAfter: 3600}
	}

	if rec.tokens < 1 {
		rec.blocked++
		rl.totalBlocked.Add(1)
		return RateLimitDecision{LimitType: "burst", Limit: rl.cfg.Burst, RetryAfter: 1}
	}

	rec.minuteWindow = append(rec.minuteWindow, now)
	rec.hourWindow = append(rec.hourWindow, now)
	rec.tokens--

	return RateLimitDecision{
		Allowed:         true,
		RemainingMinute: rl.cfg.PerMinute - minuteCount - 1,
		RemainingHour:   rl.cfg.PerHour - hourCount - 1,
		Tokens:          int(rec.tokens),
	}
}

// refill adds tokens for the time elapsed since the last refill, capped at
// burst size. Must be called with rec.mu held.
func (rl *RateLimiter) refill(rec *clientRecord, now time.Time) {
	elapsed := now.Sub(rec.lastRefill).Seconds()
	rec.tokens += elapsed * float64(rl.cfg.PerMinute) / 60.0
	if rec.tokens > float64(rl.cfg.Burst) {
		rec.tokens = float64(rl.cfg.Burst)
	}
	rec.lastRefill = now
}

// pruneWindow drops timestamps at or before cutoff. Timestamps are appended
// in order, so the suffix after the first survivor is the whole window.
func pruneWindow(window []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return window
	}
	return append(window[:0], window[i:]...)
}

// maybeSweep runs the idle sweep opportunistically when the cleanup
// interval has passed, so idle records are reclaimed even without the
// background task.
func (rl *RateLimiter) maybeSweep(now time.Time) {
	rl.sweepMu.Lock()
	due := now.Sub(rl.lastSweep) > rl.cfg.CleanupInterval
	if due {
		rl.lastSweep = now
	}
	rl.sweepMu.Unlock()
	if due {
		rl.SweepIdle()
	}
}

// SweepIdle removes records idle longer than the configured timeout and
// reports how many were removed. A failed sweep only delays reclamation;
// it never affects admission.
func (rl *RateLimiter) SweepIdle() int {
	now := time.Now()
	removed := rl.clients.RemoveIf(func(_ string, rec *clientRecord) bool {
		rec.mu.Lock()
		idle := now.Sub(rec.lastAccess) > rl.cfg.IdleTimeout
		rec.mu.Unlock()
		return idle
	})
	rl.sweepsRun.Add(1)
	if removed > 0 {
		rl.log.Debug().Int("removed", removed).Msg("swept idle rate-limit clients")
	}
	return removed
}

// StartCleanup runs the idle sweep on the configured interval until ctx is
// cancelled. Call it in a goroutine at startup.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.SweepIdle()
		}
	}
}

// Stats returns a snapshot of limiter activity.
func (rl *RateLimiter) Stats() RateLimiterStats {
	total := rl.totalRequests.Load()
	blocked := rl.totalBlocked.Load()
	rate := 0.0
	if total > 0 {
		rate = float64(blocked) / float64(total) * 100
	}
	return RateLimiterStats{
		TrackedClients: rl.clients.Len(),
		MaxClients:     rl.cfg.MaxClients,
		TotalRequests:  total,
		TotalBlocked:   blocked,
		BlockRate:      rate,
		SweepsRun:      rl.sweepsRun.Load(),
	}
}

// TrackedClients returns the number of currently tracked client records.
func (rl *RateLimiter) TrackedClients() int {
	return rl.clients.Len()
}

// RateLimit returns middleware enforcing the limiter on every request not
// excluded by skip. Client identity combines the real IP with the
// X-Session-ID header when present.
func RateLimit(limiter *RateLimiter, skip func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}

			clientID := limiter.ClientID(c.RealIP(), c.Request().Header.Get("X-Session-ID"))
			d := limiter.Allow(clientID)

			if !d.Allowed {
				h := c.Response().Header()
				h.Set("Retry-After", strconv.Itoa(d.RetryAfter))
				h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Unix()+int64(d.RetryAfter), 10))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"error":       "Rate limit exceeded",
					"type":        d.LimitType,
					"limit":       d.Limit,
					"retry_after": d.RetryAfter,
					"message":     fmt.Sprintf("Too many requests. Please retry after %d seconds.", d.RetryAfter),
				})
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Remaining-Minute", strconv.Itoa(d.RemainingMinute))
			h.Set("X-RateLimit-Remaining-Hour", strconv.Itoa(d.RemainingHour))
			h.Set("X-RateLimit-Tokens", strconv.Itoa(d.Tokens))
			return next(c)
		}
	}
}

// SkipPaths builds a skip function from exact paths plus prefixes, used to
// exempt health, metrics, and static assets from rate limiting.
func SkipPaths(exact []string, prefixes []string) func(c echo.Context) bool {
	set := make(map[string]struct{}, len(exact))
	for _, p := range exact {
		set[p] = struct{}{}
	}
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		if _, ok := set[path]; ok {
			return true
		}
		for _, prefix := range prefixes {
			if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
				return true
			}
		}
		return false
	}
}
