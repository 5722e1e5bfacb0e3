package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc maps a request to the identity whose bucket it draws from.
type keyFunc func(*gin.Context) string

// KeyByStaffOrIP keys by the authenticated staff member, falling back to the
// client IP. Keys are namespaced ("staff:alice", "ip:203.0.113.7").
func KeyByStaffOrIP() keyFunc {
	return func(c *gin.Context) string {
		if s := StaffID(c); s != "" && s != DefaultStaffID {
			return "staff:" + s
		}
		return "ip:" + c.ClientIP()
	}
}

// RateLimitOptions configures a RateLimiter.
//
// Cost returns how many tokens a request consumes; nil means one. Costs are
// capped at Burst so an expensive request can always eventually pass.
type RateLimitOptions struct {
	RPS   float64
	Burst int
	Key   keyFunc
	Cost  func(*gin.Context) int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local per-identity token bucket for the admin
// API. Idle buckets are evicted opportunistically. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	key   keyFunc
	cost  func(*gin.Context) int
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

// NewRateLimiter builds a limiter; a non-positive burst becomes 1 and a nil
// Key becomes KeyByStaffOrIP.
func NewRateLimiter(o RateLimitOptions) *RateLimiter {
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.Key == nil {
		o.Key = KeyByStaffOrIP()
	}
	return &RateLimiter{
		rps:      rate.Limit(o.RPS),
		burst:    o.Burst,
		key:      o.Key,
		cost:     o.Cost,
		ttl:      10 * time.Minute,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// getVisitor returns the bucket for key. Every 5000 lookups, buckets idle
// for ttl are dropped first, so a stale bucket is never refreshed.
func (rl *RateLimiter) getVisitor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= 5000 {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

func (rl *RateLimiter) costOf(c *gin.Context) int {
	n := 1
	if rl.cost != nil {
		n = rl.cost(c)
	}
	return max(1, min(n, rl.burst))
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as a
// replay, which is served without spending tokens.
func IsRateBypass(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyRateBypass)
	b, _ := v.(bool)
	return b
}

// Handler enforces the limits. A denied request gets 429 with Retry-After
// set to the whole seconds until enough tokens are back.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		now := rl.now()
		n := rl.costOf(c)
		res := rl.getVisitor(rl.key(c), now).ReserveN(now, n)
		delay := res.DelayFrom(now)
		if res.OK() && delay == 0 {
			c.Next()
			return
		}
		res.CancelAt(now)

		retry := 1
		if res.OK() && delay != rate.InfDuration {
			retry = max(1, int(math.Ceil(delay.Seconds())))
		}
		LoggerFrom(c).Warn().Int("cost", n).Int("retry_after", retry).Msg("rate limited")
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": requestID(c),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
