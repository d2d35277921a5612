package scoring

import (
	"fmt"
	"math"
)

// Weights are the shares of each sub-score in the composed total.
type Weights struct {
	Content    float64 `koanf:"content"`
	Delivery   float64 `koanf:"delivery"`
	Engagement float64 `koanf:"engagement"`
	Efficiency float64 `koanf:"efficiency"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Content + w.Delivery + w.Engagement + w.Efficiency
}

// DeliveryWeights are the shares of each delivery signal.
type DeliveryWeights struct {
	Clarity        float64 `koanf:"clarity"`
	Pace           float64 `koanf:"pace"`
	Confidence     float64 `koanf:"confidence"`
	TonalVariation float64 `koanf:"tonal_variation"`
}

// Sum returns the total of all weights.
func (w DeliveryWeights) Sum() float64 {
	return w.Clarity + w.Pace + w.Confidence + w.TonalVariation
}

// Policy collects every tunable of the scoring engine.
type Policy struct {
	Weights         Weights         `koanf:"weights"`
	DeliveryWeights DeliveryWeights `koanf:"delivery_weights"`

	MinWords            int     `koanf:"min_words"`
	ContentFloor        float64 `koanf:"content_floor"`
	CoverageWeight      float64 `koanf:"coverage_weight"`
	DensityWeight       float64 `koanf:"density_weight"`
	DensityTarget       float64 `koanf:"density_target"`
	MaxFillerRatio      float64 `koanf:"max_filler_ratio"`
	FillerPenaltyFactor float64 `koanf:"filler_penalty_factor"`

	NeutralDelivery       float64 `koanf:"neutral_delivery"`
	EngagementForgiveness float64 `koanf:"engagement_forgiveness"`

	WPMMin            float64 `koanf:"wpm_min"`
	WPMMax            float64 `koanf:"wpm_max"`
	WPMPenaltyDivisor float64 `koanf:"wpm_penalty_divisor"`

	FeedbackThreshold float64 `koanf:"feedback_threshold"`
}

// DefaultPolicy returns the built-in scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		Weights: Weights{
			Content:    0.4,
			Delivery:   0.3,
			Engagement: 0.2,
			Efficiency: 0.1,
		},
		DeliveryWeights: DeliveryWeights{
			Clarity:        0.3,
			Pace:           0.3,
			Confidence:     0.2,
			TonalVariation: 0.2,
		},
		MinWords:              30,
		ContentFloor:          0.2,
		CoverageWeight:        0.8,
		DensityWeight:         0.2,
		DensityTarget:         0.1,
		MaxFillerRatio:        0.2,
		FillerPenaltyFactor:   2,
		NeutralDelivery:       0.5,
		EngagementForgiveness: 1.2,
		WPMMin:                80,
		WPMMax:                160,
		WPMPenaltyDivisor:     100,
		FeedbackThreshold:     0.6,
	}
}

const weightTolerance = 1e-6

// Validate reports the first inconsistent setting.
func (p Policy) Validate() error {
	switch {
	case math.Abs(p.Weights.Sum()-1) > weightTolerance:
		return fmt.Errorf("%w: score weights sum to %.3f", ErrInvalidPolicy, p.Weights.Sum())
	case math.Abs(p.DeliveryWeights.Sum()-1) > weightTolerance:
		return fmt.Errorf("%w: delivery weights sum to %.3f", ErrInvalidPolicy, p.DeliveryWeights.Sum())
	case p.MinWords < 1:
		return fmt.Errorf("%w: min_words must be positive", ErrInvalidPolicy)
	case p.ContentFloor < 0 || p.ContentFloor > 1:
		return fmt.Errorf("%w: content_floor must be in [0,1]", ErrInvalidPolicy)
	case p.CoverageWeight < 0 || p.DensityWeight < 0:
		return fmt.Errorf("%w: coverage_weight and density_weight must not be negative", ErrInvalidPolicy)
	case p.CoverageWeight+p.DensityWeight > 1+weightTolerance:
		return fmt.Errorf("%w: coverage_weight and density_weight sum to %.3f, above 1", ErrInvalidPolicy, p.CoverageWeight+p.DensityWeight)
	case p.DensityTarget <= 0:
		return fmt.Errorf("%w: density_target must be positive", ErrInvalidPolicy)
	case !unit(p.MaxFillerRatio):
		return fmt.Errorf("%w: max_filler_ratio must be in [0,1]", ErrInvalidPolicy)
	case p.FillerPenaltyFactor < 0:
		return fmt.Errorf("%w: filler_penalty_factor must not be negative", ErrInvalidPolicy)
	case !unit(p.NeutralDelivery):
		return fmt.Errorf("%w: neutral_delivery must be in [0,1]", ErrInvalidPolicy)
	case p.WPMMin <= 0 || p.WPMMax < p.WPMMin:
		return fmt.Errorf("%w: wpm band [%.0f,%.0f] is invalid", ErrInvalidPolicy, p.WPMMin, p.WPMMax)
	case p.WPMPenaltyDivisor <= 0:
		return fmt.Errorf("%w: wpm_penalty_divisor must be positive", ErrInvalidPolicy)
	case p.EngagementForgiveness < 1:
		return fmt.Errorf("%w: engagement_forgiveness must be at least 1", ErrInvalidPolicy)
	case !unit(p.FeedbackThreshold):
		return fmt.Errorf("%w: feedback_threshold must be in [0,1]", ErrInvalidPolicy)
	}
	for _, w := range []float64{
		p.Weights.Content, p.Weights.Delivery, p.Weights.Engagement, p.Weights.Efficiency,
		p.DeliveryWeights.Clarity, p.DeliveryWeights.Pace, p.DeliveryWeights.Confidence, p.DeliveryWeights.TonalVariation,
	} {
		if w < 0 {
			return fmt.Errorf("%w: weight %.3f is negative", ErrInvalidPolicy, w)
		}
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }
