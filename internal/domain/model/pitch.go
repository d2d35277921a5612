// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/pitchperfect/internal/domain/types"
)

// DeliveryAnalysis is the optional audio-derived quality signal for a pitch.
// Every field is normalized to [0,1].
type DeliveryAnalysis struct {
	Clarity        float64 `json:"clarity"`
	Pace           float64 `json:"pace"`
	Confidence     float64 `json:"confidence"`
	TonalVariation float64 `json:"tonal_variation"`
}

// TimedToken is a spoken word with its offset from the start of the pitch.
type TimedToken struct {
	Text string        `json:"text"`
	At   time.Duration `json:"at"`
}

// PitchInput is the immutable input to one scoring run.
type PitchInput struct {
	Transcript      string            // final transcript
	DurationSeconds float64           // speaking time, must be > 0
	AttentionLevel  float64           // final boredom level, 0-100
	Delivery        *DeliveryAnalysis // nil when no analysis was available
	Tokens          []TimedToken      // optional word timings for combo detection
}

// Breakdown holds the four sub-scores scaled to 0-10.
type Breakdown struct {
	Content    float64 `json:"content"`
	Delivery   float64 `json:"delivery"`
	Engagement float64 `json:"engagement"`
	Efficiency float64 `json:"efficiency"`
}

// Combo is the streak summary of a transcript.
type Combo struct {
	PeakStreak int     `json:"peak_streak"`
	Multiplier float64 `json:"multiplier"`
	Level      int     `json:"level"` // 1-based index into the multiplier steps
}

// Stats are the raw transcript measurements behind a score.
type Stats struct {
	WordCount         int     `json:"word_count"`
	KeywordCount      int     `json:"keyword_count"`
	FillerCount       int     `json:"filler_count"`
	CategoriesCovered int     `json:"categories_covered"`
	WordsPerMinute    float64 `json:"words_per_minute"`
	DurationSeconds   float64 `json:"duration_seconds"`
	ShortInput        bool    `json:"short_input"`
	DeliveryDefaulted bool    `json:"delivery_defaulted"`
}

// Achievement is an unlocked achievement with its reward.
type Achievement struct {
	ID     types.AchievementID `json:"id"`
	Reward int                 `json:"reward"`
}

// ScoreResult is the immutable output of one scoring run.
type ScoreResult struct {
	Total        float64       `json:"total"`
	Breakdown    Breakdown     `json:"breakdown"`
	Feedback     []string      `json:"feedback"`
	Combo        Combo         `json:"combo"`
	Achievements []Achievement `json:"achievements"`
	Stats        Stats         `json:"stats"`
}

// HasAchievement reports whether id was unlocked.
func (r ScoreResult) HasAchievement(id types.AchievementID) bool {
	for _, a := range r.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Reward sums the rewards of all unlocked achievements.
func (r ScoreResult) Reward() int {
	total := 0
	for _, a := range r.Achievements {
		total += a.Reward
	}
	return total
}
