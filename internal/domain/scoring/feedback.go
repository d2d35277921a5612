package scoring

// Advisory strings, emitted in this order.
const (
	FeedbackContent     = "Include more business terms and key concepts"
	FeedbackShort       = "Make your pitch more comprehensive"
	FeedbackDelivery    = "Work on clarity and pacing"
	FeedbackEngagement  = "Keep the investor more engaged"
	FeedbackSpeakFaster = "Try speaking a bit faster"
	FeedbackSpeakSlower = "Slow down slightly for better clarity"
)

type subScores struct {
	content    float64
	delivery   float64
	engagement float64
	efficiency float64
}

// feedback runs one threshold check per sub-score. The short-input advisory
// depends on word count alone.
func feedback(s subScores, words int, wpm float64, p Policy) []string {
	out := make([]string, 0, 4)
	if s.content < p.FeedbackThreshold {
		out = append(out, FeedbackContent)
	}
	if words < p.MinWords {
		out = append(out, FeedbackShort)
	}
	if s.delivery < p.FeedbackThreshold {
		out = append(out, FeedbackDelivery)
	}
	if s.engagement < p.FeedbackThreshold {
		out = append(out, FeedbackEngagement)
	}
	if s.efficiency < p.FeedbackThreshold {
		switch {
		case wpm < p.WPMMin:
			out = append(out, FeedbackSpeakFaster)
		case wpm > p.WPMMax:
			out = append(out, FeedbackSpeakSlower)
		}
	}
	return out
}
