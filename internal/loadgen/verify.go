package loadgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/okian/pitchperfect/internal/adapters/repository"
	"github.com/okian/pitchperfect/pkg/logger"
)

const scoreTolerance = 1e-9

// verify waits for every player's best recorded score to show up in the
// leaderboard and checks the top rows are ordered.
func (r *runner) verify(ctx context.Context, results []gameResult, report *Report) error {
	players := expectedBests(results)

	deadline := time.Now().Add(r.cfg.Settle)
	for i := range players {
		p := &players[i]
		entry, err := r.waitRank(ctx, p.Player, p.Best, deadline)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		p.Rank = entry.Rank
		p.Recorded = entry.Score
		p.Match = err == nil
		if !p.Match {
			report.Mismatches = append(report.Mismatches,
				fmt.Sprintf("%s: best %.3f, leaderboard %.3f (%v)", p.Player, p.Best, entry.Score, err))
		}
	}
	report.Players = players

	var top []repository.Entry
	if err := r.client.get(ctx, fmt.Sprintf("/leaderboard?limit=%d", r.cfg.TopN), &top); err != nil {
		return err
	}
	report.Top = top
	report.Mismatches = append(report.Mismatches, checkTop(top, players)...)

	if len(report.Mismatches) > 0 {
		for _, m := range report.Mismatches {
			r.log.Warn(ctx, "leaderboard mismatch", logger.String("detail", m))
		}
		return fmt.Errorf("%w: %d problems", ErrMismatch, len(report.Mismatches))
	}
	r.log.Info(ctx, "leaderboard verified", logger.Int("players", len(players)))
	return nil
}

// expectedBests folds game results into one row per player, best first.
func expectedBests(results []gameResult) []PlayerResult {
	byPlayer := map[string]*PlayerResult{}
	var order []string
	for _, res := range results {
		if !res.Recorded {
			continue
		}
		p, ok := byPlayer[res.Player]
		if !ok {
			p = &PlayerResult{Player: res.Player, Best: math.Inf(-1)}
			byPlayer[res.Player] = p
			order = append(order, res.Player)
		}
		p.Games++
		p.Best = max(p.Best, res.Score)
	}

	out := make([]PlayerResult, 0, len(order))
	for _, name := range order {
		out = append(out, *byPlayer[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Best != out[j].Best {
			return out[i].Best > out[j].Best
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// waitRank polls the player's row until it carries best or deadline passes.
func (r *runner) waitRank(ctx context.Context, player string, best float64, deadline time.Time) (repository.Entry, error) {
	for {
		var entry repository.Entry
		err := r.client.get(ctx, playerPath(player), &entry)
		switch {
		case err == nil && math.Abs(entry.Score-best) <= scoreTolerance:
			return entry, nil
		case err == nil && entry.Score > best+scoreTolerance:
			// another run or an unobserved game scored higher
			return entry, fmt.Errorf("leaderboard is ahead")
		case err != nil && statusCode(err) != http.StatusNotFound:
			return entry, err
		}
		if time.Now().After(deadline) {
			if err == nil {
				err = errors.New("timed out waiting for score")
			}
			return entry, err
		}
		if err := sleep(ctx, r.cfg.PollInterval); err != nil {
			return entry, err
		}
	}
}

// checkTop reports ordering problems in the top rows and players of this
// run whose rank puts them in the top but who are missing from it.
func checkTop(top []repository.Entry, players []PlayerResult) []string {
	var problems []string
	seen := make(map[string]repository.Entry, len(top))
	for i, e := range top {
		seen[e.Player] = e
		// equal scores share the rank of the first of them
		want := i + 1
		if i > 0 && e.Score == top[i-1].Score {
			want = top[i-1].Rank
		}
		if e.Rank != want {
			problems = append(problems, fmt.Sprintf("row %d has rank %d, want %d", i+1, e.Rank, want))
		}
		if i > 0 && e.Score > top[i-1].Score {
			problems = append(problems, fmt.Sprintf("row %d outscores row %d", i+1, i))
		}
	}
	for _, p := range players {
		if !p.Match || p.Rank < 1 || p.Rank > len(top) {
			continue
		}
		e, ok := seen[p.Player]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s ranked %d but missing from top", p.Player, p.Rank))
			continue
		}
		if math.Abs(e.Score-p.Best) > scoreTolerance {
			problems = append(problems, fmt.Sprintf("%s scores %.3f in top, %.3f by rank", p.Player, e.Score, p.Best))
		}
	}
	return problems
}
