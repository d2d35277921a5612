package pitchsim

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/pitchperfect/internal/domain/model"
)

// WriteScore renders a score result as text.
func WriteScore(w io.Writer, r model.ScoreResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "total\t%.1f\n", r.Total)
	fmt.Fprintf(tw, "content\t%.1f\n", r.Breakdown.Content)
	fmt.Fprintf(tw, "delivery\t%.1f\n", r.Breakdown.Delivery)
	fmt.Fprintf(tw, "engagement\t%.1f\n", r.Breakdown.Engagement)
	fmt.Fprintf(tw, "efficiency\t%.1f\n", r.Breakdown.Efficiency)
	fmt.Fprintf(tw, "words\t%d (%d keywords, %d fillers, %.0f wpm)\n",
		r.Stats.WordCount, r.Stats.KeywordCount, r.Stats.FillerCount, r.Stats.WordsPerMinute)
	fmt.Fprintf(tw, "categories\t%d\n", r.Stats.CategoriesCovered)
	fmt.Fprintf(tw, "combo\tx%.1f (peak streak %d)\n", r.Combo.Multiplier, r.Combo.PeakStreak)
	if r.Stats.ShortInput {
		fmt.Fprintf(tw, "note\tshort input\n")
	}
	if r.Stats.DeliveryDefaulted {
		fmt.Fprintf(tw, "note\tno delivery analysis\n")
	}
	for _, a := range r.Achievements {
		fmt.Fprintf(tw, "achievement\t%s (+%d)\n", a.ID, a.Reward)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, f := range r.Feedback {
		if _, err := fmt.Fprintf(w, "- %s\n", f); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport renders a simulated game as a table followed by one attention
// trajectory per pitch.
func WriteReport(w io.Writer, r Report) error {
	fmt.Fprintf(w, "quality=%s seed=%d score=%.1f elapsed=%.0fs investors=%d\n",
		r.Quality, r.Seed, r.Score, r.Elapsed, r.Investors)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tinvestor\toutcome\ttotal\tx\tpoints\tattention\tseconds\tpower-up")
	for i, p := range r.Pitches {
		powerUp := "-"
		if p.PowerUp != "" {
			powerUp = string(p.PowerUp)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%.2f\t%.1f\t%.0f\t%.1f\t%s\n",
			i+1, p.Investor, p.Outcome, p.Total, p.Multiplier, p.Points, p.Attention, p.Duration, powerUp)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for i, p := range r.Pitches {
		levels := make([]string, len(p.Trajectory))
		for j, l := range p.Trajectory {
			levels[j] = fmt.Sprintf("%.0f", l)
		}
		if _, err := fmt.Fprintf(w, "%d: %s\n", i+1, strings.Join(levels, " ")); err != nil {
			return err
		}
	}
	return nil
}
