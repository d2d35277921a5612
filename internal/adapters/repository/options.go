package repository

import "time"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithClock overrides the time source used to stamp entries.
func WithClock(clock func() time.Time) Option {
	return func(s *TreapStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// GamesOption applies a configuration option to the Games registry.
type GamesOption func(*Games)

// WithCleanupInterval sets how often idle games are swept.
func WithCleanupInterval(every time.Duration) GamesOption {
	return func(g *Games) {
		if every > 0 {
			g.cleanup = every
		}
	}
}

// WithOnEvicted registers a callback for games removed by Delete, Flush or
// idle expiry.
func WithOnEvicted(fn func(*Game)) GamesOption {
	return func(g *Games) {
		g.onEvicted = fn
	}
}
