package game

import (
	"fmt"
	"time"
)

// Config sets the game clock and pitch rules.
type Config struct {
	Duration      time.Duration `koanf:"duration"`
	PitchTimeout  time.Duration `koanf:"pitch_timeout"`
	SpawnInterval time.Duration `koanf:"spawn_interval"`
	MaxInvestors  int           `koanf:"max_investors"`
	SuccessScore  float64       `koanf:"success_score"`
}

// DefaultConfig returns a three minute game with thirty second pitches.
func DefaultConfig() Config {
	return Config{
		Duration:      180 * time.Second,
		PitchTimeout:  30 * time.Second,
		SpawnInterval: 4 * time.Second,
		MaxInvestors:  12,
		SuccessScore:  7.0,
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidConfig)
	case c.PitchTimeout <= 0:
		return fmt.Errorf("%w: pitch_timeout must be positive", ErrInvalidConfig)
	case c.SpawnInterval <= 0:
		return fmt.Errorf("%w: spawn_interval must be positive", ErrInvalidConfig)
	case c.MaxInvestors < 1:
		return fmt.Errorf("%w: max_investors must be at least 1", ErrInvalidConfig)
	case c.SuccessScore < 0 || c.SuccessScore > 10:
		return fmt.Errorf("%w: success_score must be in [0,10]", ErrInvalidConfig)
	}
	return nil
}
