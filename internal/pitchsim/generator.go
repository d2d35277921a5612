// Package pitchsim generates synthetic pitches and plays them through a
// game session without wall-clock time.
package pitchsim

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/okian/pitchperfect/internal/domain/lexicon"
	"github.com/okian/pitchperfect/internal/domain/model"
)

// Quality selects how convincing a generated pitch is.
type Quality string

// Pitch qualities.
const (
	QualityPoor    Quality = "poor"
	QualityAverage Quality = "average"
	QualityStrong  Quality = "strong"
)

// ParseQuality validates a quality name.
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := mixes[q]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuality, s)
	}
	return q, nil
}

// mix is the word composition and delivery of one quality.
type mix struct {
	keywordShare float64
	fillerShare  float64
	categories   int
	delivery     model.DeliveryAnalysis
}

var mixes = map[Quality]mix{
	QualityStrong: {
		keywordShare: 0.35,
		fillerShare:  0.02,
		categories:   6,
		delivery:     model.DeliveryAnalysis{Clarity: 0.85, Pace: 0.8, Confidence: 0.9, TonalVariation: 0.75},
	},
	QualityAverage: {
		keywordShare: 0.15,
		fillerShare:  0.08,
		categories:   3,
		delivery:     model.DeliveryAnalysis{Clarity: 0.6, Pace: 0.55, Confidence: 0.6, TonalVariation: 0.5},
	},
	QualityPoor: {
		keywordShare: 0.03,
		fillerShare:  0.3,
		categories:   1,
		delivery:     model.DeliveryAnalysis{Clarity: 0.3, Pace: 0.3, Confidence: 0.25, TonalVariation: 0.2},
	},
}

// Delivery returns the delivery sample a speaker of quality q produces.
func (q Quality) Delivery() model.DeliveryAnalysis { return mixes[q].delivery }

var neutralWords = []string{
	"we", "our", "the", "a", "to", "and", "for", "with", "is", "are", "people",
	"every", "day", "it", "that", "this", "now", "how", "why", "so", "can", "will",
	"you", "they", "make", "help", "today", "simple", "small", "business",
}

// Generator composes transcripts from a lexicon.
type Generator struct {
	lex     *lexicon.Set
	rng     *rand.Rand
	neutral []string
}

// NewGenerator returns a generator drawing words with rng. A nil lexicon
// uses the built-in one.
func NewGenerator(lex *lexicon.Set, rng *rand.Rand) *Generator {
	if lex == nil {
		lex = lexicon.Default()
	}
	neutral := make([]string, 0, len(neutralWords))
	for _, w := range neutralWords {
		if !lex.IsPositive(w) && !lex.IsFiller(w) {
			neutral = append(neutral, w)
		}
	}
	if len(neutral) == 0 {
		neutral = []string{"well"}
	}
	return &Generator{lex: lex, rng: rng, neutral: neutral}
}

// Pitch returns a transcript of n words. Keywords rotate through the first
// categories of the lexicon so coverage follows the quality.
func (g *Generator) Pitch(q Quality, n int) string {
	m := mixes[q]
	cats := g.lex.Categories()
	if m.categories < len(cats) {
		cats = cats[:m.categories]
	}
	general := g.lex.Uncategorized()
	fillers := g.lex.Fillers()

	words := make([]string, 0, n)
	keywords := 0
	for range n {
		r := g.rng.Float64()
		switch {
		case r < m.fillerShare && len(fillers) > 0:
			words = append(words, g.pick(fillers))
		case r < m.fillerShare+m.keywordShare:
			if len(cats) > 0 && (keywords < len(cats) || len(general) == 0 || g.rng.Float64() < 0.7) {
				words = append(words, g.pick(g.lex.Keywords(cats[keywords%len(cats)])))
			} else {
				words = append(words, g.pick(general))
			}
			keywords++
		default:
			words = append(words, g.pick(g.neutral))
		}
	}
	return strings.Join(words, " ")
}

func (g *Generator) pick(words []string) string {
	if len(words) == 0 {
		words = g.neutral
	}
	return words[g.rng.Intn(len(words))]
}
