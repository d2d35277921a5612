package attention

import (
	"fmt"
	"time"
)

// Config tunes the decay and recovery dynamics.
type Config struct {
	TickInterval time.Duration `koanf:"tick_interval"`
	GracePeriod  time.Duration `koanf:"grace_period"`

	BaseIncrement    float64 `koanf:"base_increment"`
	MaxIncrement     float64 `koanf:"max_increment"`
	FillerPenalty    float64 `koanf:"filler_penalty"`
	GoodContentBonus float64 `koanf:"good_content_bonus"`
	MaxFillerRatio   float64 `koanf:"max_filler_ratio"`

	// MinPositiveForRelief is how many positive keywords a new utterance
	// needs before the increment factor is lowered.
	MinPositiveForRelief int `koanf:"min_positive_for_relief"`

	SilenceThreshold int     `koanf:"silence_threshold"`
	SilencePenalty   float64 `koanf:"silence_penalty"`

	RecoveryChance float64 `koanf:"recovery_chance"`
	RecoveryAmount float64 `koanf:"recovery_amount"`

	WarningLevel      float64 `koanf:"warning_level"`
	ConfidenceDamping float64 `koanf:"confidence_damping"`
}

// DefaultConfig returns the built-in dynamics.
func DefaultConfig() Config {
	return Config{
		TickInterval:         100 * time.Millisecond,
		GracePeriod:          4 * time.Second,
		BaseIncrement:        0.02,
		MaxIncrement:         0.25,
		FillerPenalty:        0.08,
		GoodContentBonus:     0.15,
		MaxFillerRatio:       0.2,
		MinPositiveForRelief: 1,
		SilenceThreshold:     10,
		SilencePenalty:       0.1,
		RecoveryChance:       0.3,
		RecoveryAmount:       0.15,
		WarningLevel:         80,
		ConfidenceDamping:    0.3,
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.TickInterval <= 0:
		return fmt.Errorf("%w: tick_interval must be positive", ErrInvalidConfig)
	case c.GracePeriod < 0:
		return fmt.Errorf("%w: grace_period must not be negative", ErrInvalidConfig)
	case c.BaseIncrement < 0 || c.MaxIncrement < c.BaseIncrement:
		return fmt.Errorf("%w: increment bounds [%.3f,%.3f] are invalid", ErrInvalidConfig, c.BaseIncrement, c.MaxIncrement)
	case c.RecoveryChance < 0 || c.RecoveryChance > 1:
		return fmt.Errorf("%w: recovery_chance must be in [0,1]", ErrInvalidConfig)
	case c.WarningLevel <= 0 || c.WarningLevel > MaxLevel:
		return fmt.Errorf("%w: warning_level must be in (0,100]", ErrInvalidConfig)
	case c.SilenceThreshold < 0:
		return fmt.Errorf("%w: silence_threshold must not be negative", ErrInvalidConfig)
	case c.ConfidenceDamping < 0 || c.ConfidenceDamping > 1:
		return fmt.Errorf("%w: confidence_damping must be in [0,1]", ErrInvalidConfig)
	}
	return nil
}
