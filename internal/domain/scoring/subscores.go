package scoring

import (
	"math"

	"github.com/okian/pitchperfect/internal/domain/lexicon"
	"github.com/okian/pitchperfect/internal/domain/model"
)

// ContentScore rates argument breadth. categories is the number of topic
// categories the lexicon defines.
func ContentScore(c lexicon.Counts, categories int, p Policy) float64 {
	if c.Words < p.MinWords {
		return p.ContentFloor
	}

	coverage := 0.0
	if categories > 0 {
		coverage = float64(c.Covered()) / float64(categories)
	}
	density := float64(c.Positive) / float64(c.Words)
	bonus := math.Min(1, density/p.DensityTarget)

	penalty := 0.0
	if ratio := c.FillerRatio(); ratio > p.MaxFillerRatio {
		penalty = (ratio - p.MaxFillerRatio) * p.FillerPenaltyFactor
	}

	return clamp01(p.CoverageWeight*coverage + p.DensityWeight*bonus - penalty)
}

// DeliveryScore rates the audio-derived signal, or returns the neutral
// default when there is none.
func DeliveryScore(d *model.DeliveryAnalysis, p Policy) float64 {
	if d == nil {
		return p.NeutralDelivery
	}
	w := p.DeliveryWeights
	return clamp01(
		clamp01(d.Clarity)*w.Clarity +
			clamp01(d.Pace)*w.Pace +
			clamp01(d.Confidence)*w.Confidence +
			clamp01(d.TonalVariation)*w.TonalVariation,
	)
}

// EngagementScore maps the final attention level to [0,1]. The forgiveness
// exponent keeps moderate loss from dominating.
func EngagementScore(level float64, p Policy) float64 {
	lost := clamp(level, 0, 100) / 100
	return clamp01(1 - math.Pow(lost, p.EngagementForgiveness))
}

// WordsPerMinute returns the speaking rate. duration must be positive.
func WordsPerMinute(words int, durationSeconds float64) float64 {
	return float64(words) / durationSeconds * 60
}

// EfficiencyScore is 1 inside the optimal words-per-minute band and falls
// off linearly with the distance to the nearer edge.
func EfficiencyScore(wpm float64, p Policy) float64 {
	var deviation float64
	switch {
	case wpm < p.WPMMin:
		deviation = p.WPMMin - wpm
	case wpm > p.WPMMax:
		deviation = wpm - p.WPMMax
	default:
		return 1
	}
	return math.Max(0, 1-deviation/p.WPMPenaltyDivisor)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
