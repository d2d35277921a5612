// Package achievement evaluates one-off unlocks against a composed score.
package achievement

import (
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/domain/types"
)

// Default thresholds and rewards.
const (
	DefaultPerfectScore      = 9.5
	DefaultQuickPitchSeconds = 15
	DefaultBusinessTermCount = 10

	DefaultPerfectPitchReward  = 500
	DefaultComboMasterReward   = 300
	DefaultSpeedDemonReward    = 200
	DefaultBusinessSavvyReward = 250
)

// Config holds the thresholds and rewards for every achievement.
type Config struct {
	PerfectScore      float64 `koanf:"perfect_score"`
	QuickPitchSeconds float64 `koanf:"quick_pitch_seconds"`
	BusinessTermCount int     `koanf:"business_term_count"`

	PerfectPitchReward  int `koanf:"perfect_pitch_reward"`
	ComboMasterReward   int `koanf:"combo_master_reward"`
	SpeedDemonReward    int `koanf:"speed_demon_reward"`
	BusinessSavvyReward int `koanf:"business_savvy_reward"`
}

// DefaultConfig returns the built-in thresholds.
func DefaultConfig() Config {
	return Config{
		PerfectScore:        DefaultPerfectScore,
		QuickPitchSeconds:   DefaultQuickPitchSeconds,
		BusinessTermCount:   DefaultBusinessTermCount,
		PerfectPitchReward:  DefaultPerfectPitchReward,
		ComboMasterReward:   DefaultComboMasterReward,
		SpeedDemonReward:    DefaultSpeedDemonReward,
		BusinessSavvyReward: DefaultBusinessSavvyReward,
	}
}

// Rule is a named predicate over a score result.
type Rule struct {
	ID     types.AchievementID
	Reward int
	Match  func(model.ScoreResult) bool
}

// Evaluator checks a fixed, ordered rule list. It holds no state between calls.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator builds the standard rule set. maxMultiplier is the top of the
// combo table; combo_master needs the applied multiplier to reach it.
func NewEvaluator(cfg Config, maxMultiplier float64) *Evaluator {
	return &Evaluator{rules: []Rule{
		{
			ID:     types.AchievementPerfectPitch,
			Reward: cfg.PerfectPitchReward,
			Match:  func(r model.ScoreResult) bool { return r.Total >= cfg.PerfectScore },
		},
		{
			ID:     types.AchievementComboMaster,
			Reward: cfg.ComboMasterReward,
			Match: func(r model.ScoreResult) bool {
				return maxMultiplier > 1 && r.Combo.Multiplier >= maxMultiplier
			},
		},
		{
			ID:     types.AchievementSpeedDemon,
			Reward: cfg.SpeedDemonReward,
			Match:  func(r model.ScoreResult) bool { return r.Stats.DurationSeconds < cfg.QuickPitchSeconds },
		},
		{
			ID:     types.AchievementBusinessSavvy,
			Reward: cfg.BusinessSavvyReward,
			Match:  func(r model.ScoreResult) bool { return r.Stats.KeywordCount >= cfg.BusinessTermCount },
		},
	}}
}

// NewEvaluatorWithRules builds an evaluator from custom rules, kept in order.
func NewEvaluatorWithRules(rules ...Rule) *Evaluator {
	return &Evaluator{rules: rules}
}

// Evaluate returns every matching achievement in declaration order.
func (e *Evaluator) Evaluate(r model.ScoreResult) []model.Achievement {
	out := make([]model.Achievement, 0, len(e.rules))
	for _, rule := range e.rules {
		if rule.Match(r) {
			out = append(out, model.Achievement{ID: rule.ID, Reward: rule.Reward})
		}
	}
	return out
}
