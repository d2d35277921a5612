package api

import (
	"time"

	"github.com/okian/pitchperfect/pkg/logger"
)

const (
	defaultMaxLimit       = 100
	defaultPushRate       = 20
	defaultPushBurst      = 40
	defaultLimiterIdleTTL = 15 * time.Minute
	defaultPingInterval   = 30 * time.Second
)

// Option configures the Server.
type Option func(*options)

type options struct {
	maxLimit     int
	limiter      *Limiter
	logger       logger.Logger
	pingInterval time.Duration
}

func defaultOptions() *options {
	return &options{
		maxLimit:     defaultMaxLimit,
		limiter:      NewLimiter(defaultPushRate, defaultPushBurst, defaultLimiterIdleTTL),
		pingInterval: defaultPingInterval,
	}
}

// WithMaxLeaderboardLimit caps the limit accepted by GET /leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithLimiter replaces the per-game push limiter.
func WithLimiter(l *Limiter) Option {
	return func(o *options) {
		if l != nil {
			o.limiter = l
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPingInterval sets how often stream connections are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pingInterval = d
		}
	}
}
