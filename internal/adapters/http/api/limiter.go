package api

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Limiter rate limits live pushes per game. Limiters of idle games expire.
type Limiter struct {
	mu    sync.Mutex
	rate  rate.Limit
	burst int
	idle  time.Duration
	cache *cache.Cache
}

// NewLimiter allows perSecond pushes per game with the given burst.
func NewLimiter(perSecond float64, burst int, idle time.Duration) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		rate:  rate.Limit(perSecond),
		burst: burst,
		idle:  idle,
		cache: cache.New(idle, idle),
	}
}

// Allow reports whether a push for gameID may proceed now.
func (l *Limiter) Allow(gameID string) bool {
	return l.get(gameID).Allow()
}

// Forget drops the limiter of gameID.
func (l *Limiter) Forget(gameID string) {
	l.cache.Delete(gameID)
}

func (l *Limiter) get(gameID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.cache.Get(gameID)
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
	}
	// Set renews the idle expiry.
	l.cache.Set(gameID, lim, l.idle)
	return lim.(*rate.Limiter)
}
