package loadgen

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteReport renders a load report as text.
func WriteReport(w io.Writer, r *Report) error {
	s := r.Stats
	fmt.Fprintf(w, "games=%d failed=%d successes=%d chunks=%d duplicates=%d rate_limited=%d duration=%s\n",
		s.Games, s.Failed, s.Successes, s.Chunks, s.Duplicates, s.RateLimited, s.Duration.Round(1e6))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "player\tgames\tbest\trank\tleaderboard\tok")
	for _, p := range r.Players {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%d\t%.2f\t%t\n", p.Player, p.Games, p.Best, p.Rank, p.Recorded, p.Match)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Top) > 0 {
		fmt.Fprintln(w, "top:")
		for _, e := range r.Top {
			fmt.Fprintf(w, "  %d. %s %.2f\n", e.Rank, e.Player, e.Score)
		}
	}
	for _, m := range r.Mismatches {
		if _, err := fmt.Fprintf(w, "mismatch: %s\n", m); err != nil {
			return err
		}
	}
	return nil
}
