package loadgen

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/types"
	"github.com/okian/pitchperfect/internal/pitchsim"
	"github.com/okian/pitchperfect/pkg/logger"
)

// gameResult is what one player observed in one game.
type gameResult struct {
	Player      string
	GameID      string
	Recorded    bool // final score was read before the game was deleted
	Score       float64
	Outcome     types.Outcome
	Chunks      int
	Duplicates  int
	RateLimited int
	Err         error
}

type ack struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// play runs one game: create, wait for an investor, pitch, end, delete.
func (r *runner) play(ctx context.Context, i int) gameResult {
	res := gameResult{Player: r.cfg.player(i)}

	var view game.View
	if _, err := r.client.do(ctx, http.MethodPost, "/games", map[string]string{"player": res.Player}, &view, http.StatusCreated); err != nil {
		res.Err = err
		return res
	}
	res.GameID = view.ID

	res.Err = r.pitch(ctx, i, &res)
	r.finish(ctx, &res)
	return res
}

func (r *runner) pitch(ctx context.Context, i int, res *gameResult) error {
	base := "/games/" + res.GameID

	investorID, err := r.waitInvestor(ctx, base)
	if err != nil {
		return err
	}

	var started struct {
		PitchID string `json:"pitch_id"`
	}
	if _, err := r.client.do(ctx, http.MethodPost, base+"/pitches", map[string]string{"investor_id": investorID}, &started, http.StatusCreated); err != nil {
		return err
	}
	pitchPath := base + "/pitches/" + started.PitchID

	gen := pitchsim.NewGenerator(nil, rand.New(rand.NewSource(r.cfg.Seed+int64(i)))) //nolint:gosec // reproducible transcripts
	words := strings.Fields(gen.Pitch(r.cfg.Quality, r.cfg.Words))

	closed := false
	for n, end := 0, 0; end < len(words) && !closed; n++ {
		end = min(len(words), end+r.cfg.ChunkWords)
		chunk := map[string]string{
			"chunk_id": fmt.Sprintf("c%d", n),
			"text":     strings.Join(words[:end], " "),
		}

		sends := 1
		if n == 0 {
			sends = 2 // the retry must be reported as a duplicate
		}
		for range sends {
			var a ack
			code, err := r.client.do(ctx, http.MethodPost, pitchPath+"/transcript", chunk, &a, http.StatusAccepted, http.StatusOK)
			switch {
			case code == http.StatusTooManyRequests:
				res.RateLimited++
			case code == http.StatusConflict:
				closed = true
			case err != nil:
				return err
			case a.Duplicate:
				res.Duplicates++
			default:
				res.Chunks++
			}
		}

		if r.cfg.Delivery && !closed {
			d := r.cfg.Quality.Delivery()
			code, err := r.client.do(ctx, http.MethodPost, pitchPath+"/delivery", d, nil, http.StatusAccepted)
			if err != nil && code != http.StatusConflict && code != http.StatusTooManyRequests {
				return err
			}
		}
		if err := sleep(ctx, r.cfg.Pace); err != nil {
			return err
		}
	}

	if closed {
		return nil
	}
	if active, err := r.waitElapsed(ctx, base, started.PitchID); err != nil || !active {
		return err
	}

	var result game.PitchResult
	code, err := r.client.do(ctx, http.MethodPost, pitchPath+"/end", nil, &result, http.StatusOK)
	if code == http.StatusConflict {
		return nil
	}
	if err != nil {
		return err
	}
	res.Outcome = result.Outcome
	return nil
}

// waitInvestor polls the game until an investor is waiting.
func (r *runner) waitInvestor(ctx context.Context, base string) (string, error) {
	for {
		var view game.View
		if err := r.client.get(ctx, base, &view); err != nil {
			return "", err
		}
		if view.Over {
			return "", fmt.Errorf("game %s ended before an investor arrived", view.ID)
		}
		for _, inv := range view.Investors {
			if !inv.Pitched {
				return inv.ID, nil
			}
		}
		if err := sleep(ctx, r.cfg.PollInterval); err != nil {
			return "", err
		}
	}
}

// waitElapsed polls until pitchID has run for at least one tick. It reports
// false when the game closed the pitch first.
func (r *runner) waitElapsed(ctx context.Context, base, pitchID string) (bool, error) {
	for {
		var view game.View
		if err := r.client.get(ctx, base, &view); err != nil {
			return false, err
		}
		if view.Pitch == nil || view.Pitch.ID != pitchID {
			return false, nil
		}
		if view.Pitch.ElapsedSeconds > 0 {
			return true, nil
		}
		if err := sleep(ctx, r.cfg.PollInterval); err != nil {
			return false, err
		}
	}
}

// finish reads the final score and deletes the game, which enters it into
// the leaderboard.
func (r *runner) finish(ctx context.Context, res *gameResult) {
	base := "/games/" + res.GameID
	var view game.View
	if err := r.client.get(ctx, base, &view); err == nil && view.Pitch == nil {
		res.Recorded = true
		res.Score = view.Score
		if res.Outcome == "" && len(view.History) > 0 {
			res.Outcome = view.History[len(view.History)-1].Outcome
		}
	}
	if _, err := r.client.do(ctx, http.MethodDelete, base, nil, nil, http.StatusNoContent); err != nil {
		res.Recorded = false
		r.log.Warn(ctx, "delete game failed", logger.String("game_id", res.GameID), logger.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
