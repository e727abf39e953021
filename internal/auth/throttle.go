package auth

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxTrackedLogins = 10000

// LoginThrottle limits login attempts per email address.
type LoginThrottle struct {
	mu       sync.Mutex
	limiters map[string]*throttleEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginThrottle allows perMinute attempts per email, refilled evenly.
// A non-positive perMinute disables throttling.
func NewLoginThrottle(perMinute int) *LoginThrottle {
	t := &LoginThrottle{
		limiters: make(map[string]*throttleEntry),
		limit:    rate.Inf,
		burst:    perMinute,
		now:      time.Now,
	}
	if perMinute > 0 {
		t.limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return t
}

func (t *LoginThrottle) Allow(email string) bool {
	if t.limit == rate.Inf {
		return true
	}
	key := strings.ToLower(strings.TrimSpace(email))
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.limiters[key]
	if !ok {
		if len(t.limiters) >= maxTrackedLogins {
			t.prune(now)
		}
		entry = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (t *LoginThrottle) prune(now time.Time) {
	for k, e := range t.limiters {
		if now.Sub(e.lastSeen) > time.Minute {
			delete(t.limiters, k)
		}
	}
}
