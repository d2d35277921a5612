package service

import (
	"time"

	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/scoring"
	"github.com/okian/pitchperfect/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the scoring engine shared by all games.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithAttentionConfig sets the attention dynamics for new games.
func WithAttentionConfig(cfg attention.Config) Option {
	return func(s *Service) { s.attentionCfg = cfg }
}

// WithGameConfig sets the game rules for new games.
func WithGameConfig(cfg game.Config) Option {
	return func(s *Service) { s.gameCfg = cfg }
}

// WithCatalog sets the investor and power-up tables.
func WithCatalog(c *investor.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithQueueSize sets the command queue capacity of each game.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithGameTTL sets how long an untouched game stays registered.
func WithGameTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.gameTTL = ttl
		}
	}
}

// WithDedupeTTL sets how long transcript chunk IDs are remembered.
func WithDedupeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.dedupeTTL = ttl
		}
	}
}

// WithTickInterval sets the wall-clock tick period of game runners. It
// defaults to the attention tick interval, i.e. real time.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithSeed makes investor spawning and attention recovery reproducible.
// Zero seeds from the clock.
func WithSeed(seed int64) Option {
	return func(s *Service) { s.seed = seed }
}

// WithIDGenerator overrides uuid-based game IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
