package signal

import (
	"sync"
	"time"

	"github.com/primemar/signaling/internal/domain"
)

// rateLimiter bounds inbound events per connection over a sliding
// window. Over-limit events are dropped, not queued.
type rateLimiter struct {
	mu       sync.Mutex
	history  map[domain.ConnID][]time.Time
	limit    int
	interval time.Duration
}

func newRateLimiter(limit int, interval time.Duration) *rateLimiter {
	return &rateLimiter{
		history:  make(map[domain.ConnID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *rateLimiter) Allow(cid domain.ConnID) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[cid]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[cid] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[cid] = fresh
	return true
}

// Forget drops the window of a closed connection.
func (rl *rateLimiter) Forget(cid domain.ConnID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, cid)
}
