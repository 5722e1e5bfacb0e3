package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default throttle: two updates per second with bursts of five.
const (
	DefaultThrottleRPS   = 2
	DefaultThrottleBurst = 5
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle is a per-user token bucket. Idle buckets are evicted
// opportunistically. Safe for concurrent use.
type Throttle struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	visitors map[int64]*visitor
	lookups  uint64
}

// NewThrottle returns a throttle allowing rps updates per second per user
// with the given burst. Non-positive values select the defaults.
func NewThrottle(rps float64, burst int) *Throttle {
	if rps <= 0 {
		rps = DefaultThrottleRPS
	}
	if burst <= 0 {
		burst = DefaultThrottleBurst
	}
	return &Throttle{
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      10 * time.Minute,
		visitors: make(map[int64]*visitor),
	}
}

// Allow reports whether the user may be served now and consumes a token.
func (t *Throttle) Allow(telegramID int64) bool {
	return t.limiter(telegramID, time.Now()).Allow()
}

func (t *Throttle) limiter(id int64, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lookups++
	if t.lookups >= 5000 {
		for k, v := range t.visitors {
			if now.Sub(v.lastSeen) >= t.ttl {
				delete(t.visitors, k)
			}
		}
		t.lookups = 0
	}

	if v, ok := t.visitors[id]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(t.rps, t.burst)
	t.visitors[id] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Len returns the number of tracked users.
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.visitors)
}
