// Package config defines service configuration and how it is loaded.
//
// Every tunable of the scoring engine, the attention simulator and the game
// lives here so the same binary can run different policies.
package config

import (
	"fmt"
	"time"

	"github.com/okian/pitchperfect/internal/domain/achievement"
	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/combo"
	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the command queue of each game.
	QueueSize int `koanf:"queue_size"`

	// GameTTL is how long an untouched game is kept.
	GameTTL time.Duration `koanf:"game_ttl"`

	// DedupeTTL is how long transcript chunk IDs are remembered.
	DedupeTTL time.Duration `koanf:"dedupe_ttl"`

	// TranscriptRate and TranscriptBurst limit live pushes per game.
	TranscriptRate  float64 `koanf:"transcript_rate"`
	TranscriptBurst int     `koanf:"transcript_burst"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// LexiconFile optionally replaces the built-in word lists.
	LexiconFile string `koanf:"lexicon_file"`

	// Seed makes games reproducible. Zero seeds from the clock.
	Seed int64 `koanf:"seed"`

	Scoring      scoring.Policy     `koanf:"scoring"`
	Combo        combo.Config       `koanf:"combo"`
	Attention    attention.Config   `koanf:"attention"`
	Achievements achievement.Config `koanf:"achievements"`
	Game         game.Config        `koanf:"game"`

	PowerUpChance float64            `koanf:"power_up_chance"`
	Investors     []investor.Profile `koanf:"investors"`
	PowerUps      []investor.PowerUp `koanf:"power_ups"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           256,
		GameTTL:             15 * time.Minute,
		DedupeTTL:           10 * time.Minute,
		TranscriptRate:      20,
		TranscriptBurst:     40,
		MaxLeaderboardLimit: 100,
		Scoring:             scoring.DefaultPolicy(),
		Combo:               combo.DefaultConfig(),
		Attention:           attention.DefaultConfig(),
		Achievements:        achievement.DefaultConfig(),
		Game:                game.DefaultConfig(),
		PowerUpChance:       investor.DefaultPowerUpChance,
		Investors:           investor.DefaultProfiles(),
		PowerUps:            investor.DefaultPowerUps(),
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.TranscriptRate <= 0 || c.TranscriptBurst < 1:
		return fmt.Errorf("%w: transcript_rate and transcript_burst must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	for _, check := range []func() error{
		c.Scoring.Validate,
		c.Combo.Validate,
		c.Attention.Validate,
		c.Game.Validate,
	} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if _, err := c.Catalog(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
