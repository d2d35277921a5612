package loadgen

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pitchperfect/internal/adapters/repository"
	"github.com/okian/pitchperfect/internal/domain/types"
	"github.com/okian/pitchperfect/pkg/logger"
)

// progressInterval is how often workers log progress.
const progressInterval = time.Second

// Stats counts what the run did.
type Stats struct {
	Games       int           `json:"games"`
	Failed      int           `json:"failed"`
	Successes   int           `json:"successes"`
	Chunks      int           `json:"chunks"`
	Duplicates  int           `json:"duplicates"`
	RateLimited int           `json:"rate_limited"`
	Duration    time.Duration `json:"duration"`
}

// PlayerResult compares a player's best observed score with the leaderboard.
type PlayerResult struct {
	Player   string  `json:"player"`
	Games    int     `json:"games"`
	Best     float64 `json:"best"`
	Rank     int     `json:"rank"`
	Recorded float64 `json:"recorded"`
	Match    bool    `json:"match"`
}

// Report is the outcome of a load run.
type Report struct {
	Stats      Stats              `json:"stats"`
	Players    []PlayerResult     `json:"players"`
	Top        []repository.Entry `json:"top"`
	Mismatches []string           `json:"mismatches,omitempty"`
}

type runner struct {
	cfg    Config
	client *client
	log    logger.Logger
}

// Run plays cfg.Games games with cfg.Workers workers, then checks the
// leaderboard. A non-nil report is returned whenever games were played, even
// when verification fails with ErrMismatch.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	r := &runner{
		cfg:    cfg,
		client: newClient(cfg.BaseURL, cfg.Timeout),
		log:    logger.Get().Named("loadgen"),
	}

	r.log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("games", cfg.Games),
		logger.Int("players", cfg.Players),
		logger.Int("workers", cfg.Workers),
		logger.String("quality", string(cfg.Quality)),
	)

	if err := r.checkHealth(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	results := r.playAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Stats: summarize(results)}
	report.Stats.Duration = time.Since(start)
	r.log.Info(ctx, "games finished",
		logger.Int("games", report.Stats.Games),
		logger.Int("failed", report.Stats.Failed),
		logger.Int("chunks", report.Stats.Chunks),
		logger.Int("duplicates", report.Stats.Duplicates),
		logger.Int("rateLimited", report.Stats.RateLimited),
		logger.Duration("duration", report.Stats.Duration),
	)

	if err := r.verify(ctx, results, report); err != nil {
		return report, err
	}
	return report, nil
}

func (r *runner) checkHealth(ctx context.Context) error {
	if err := r.client.get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// playAll fans the games out to a fixed pool of workers.
func (r *runner) playAll(ctx context.Context) []gameResult {
	results := make([]gameResult, r.cfg.Games)
	jobs := make(chan int, r.cfg.Workers*2)

	var (
		wg       sync.WaitGroup
		done     atomic.Int64
		failed   atomic.Int64
		mu       sync.Mutex
		reported time.Time
	)

	for range r.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				results[i] = r.play(ctx, i)
				if err := results[i].Err; err != nil {
					failed.Add(1)
					r.log.Warn(ctx, "game failed", logger.String("player", results[i].Player), logger.Error(err))
				}
				n := done.Add(1)

				mu.Lock()
				if time.Since(reported) >= progressInterval {
					reported = time.Now()
					r.log.Info(ctx, "progress",
						logger.Int("done", int(n)),
						logger.Int("total", r.cfg.Games),
						logger.Int("failed", int(failed.Load())),
					)
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range r.cfg.Games {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return results
}

func summarize(results []gameResult) Stats {
	var s Stats
	for _, res := range results {
		if res.Player == "" {
			continue
		}
		s.Games++
		if res.Err != nil {
			s.Failed++
		}
		if res.Outcome == types.OutcomeSuccess {
			s.Successes++
		}
		s.Chunks += res.Chunks
		s.Duplicates += res.Duplicates
		s.RateLimited += res.RateLimited
	}
	return s
}
