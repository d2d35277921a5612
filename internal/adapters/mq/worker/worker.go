// Package worker runs one game session on its own goroutine.
//
// Every tick and every command for a game passes through the Runner loop, so
// the session is never touched concurrently. Callers talk to it through the
// bounded command queue and read state from the snapshot published after each
// step.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pitchperfect/internal/adapters/mq/queue"
	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/domain/types"
	"github.com/okian/pitchperfect/pkg/logger"
	"github.com/okian/pitchperfect/pkg/metrics"
)

const (
	defaultTickInterval     = 100 * time.Millisecond
	defaultSubscriberBuffer = 64
)

// Worker is anything with a run loop and graceful shutdown.
type Worker interface {
	// Run starts the loop until ctx is canceled, the game ends or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the loop and waits for it to exit.
	Shutdown(ctx context.Context) error
}

// Runner owns a game.Session.
type Runner struct {
	session *game.Session
	queue   queue.Queue
	name    string
	logger  logger.Logger

	tickInterval time.Duration
	subBuffer    int

	view atomic.Pointer[game.View]

	subMu   sync.Mutex
	subs    map[uint64]chan game.Event
	nextSub uint64
	closed  bool

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}
}

var _ Worker = (*Runner)(nil)

// NewRunner creates a runner for session reading commands from q.
func NewRunner(session *game.Session, q queue.Queue, opts ...Option) *Runner {
	r := &Runner{
		session:      session,
		queue:        q,
		name:         "runner",
		logger:       logger.Get().Named("runner"),
		tickInterval: defaultTickInterval,
		subBuffer:    defaultSubscriberBuffer,
		subs:         make(map[uint64]chan game.Event),
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.With(logger.String("game_id", session.ID()))
	r.publishView()
	return r
}

// Run drives the session until the game ends, ctx is canceled or Shutdown
// is called. Leaving the loop stops the game.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)
	defer r.closeSubscribers()

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	commands := r.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			r.finish(context.WithoutCancel(ctx), "context done")
			return
		case <-r.shutdown:
			r.finish(ctx, "shutdown")
			return
		case cmd, ok := <-commands:
			if !ok {
				r.finish(ctx, "queue closed")
				return
			}
			r.execute(ctx, cmd)
		case <-ticker.C:
			events := r.session.Tick(ctx)
			r.emit(ctx, events)
			r.publishView()
		}
		if r.session.Over() {
			r.logger.Info(ctx, "game over", logger.Float64("score", r.session.Score()))
			return
		}
	}
}

func (r *Runner) execute(ctx context.Context, cmd queue.Command) {
	start := time.Now()
	cmd.Do(ctx)
	metrics.RecordCommandLatency(float64(time.Since(cmd.EnqueuedAt).Milliseconds()))
	r.logger.Debug(ctx, "command executed",
		logger.String("command", cmd.Name),
		logger.Duration("took", time.Since(start)),
	)
	r.publishView()
}

func (r *Runner) finish(ctx context.Context, reason string) {
	r.emit(ctx, r.session.Stop())
	r.publishView()
	r.logger.Info(ctx, "runner stopped", logger.String("reason", reason))
}

// Shutdown stops the loop and waits for it to exit.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.shutdown) })

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Snapshot returns the state published after the last step.
func (r *Runner) Snapshot() game.View { return *r.view.Load() }

func (r *Runner) publishView() {
	v := r.session.Snapshot()
	r.view.Store(&v)
}

// Subscribe returns a channel of future events and a function to cancel the
// subscription. The channel is closed when the runner exits. Events are
// dropped for subscribers that fall behind.
func (r *Runner) Subscribe() (<-chan game.Event, func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	ch := make(chan game.Event, r.subBuffer)
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	return ch, func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
}

func (r *Runner) closeSubscribers() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.closed = true
}

// emit records, logs and fans out events.
func (r *Runner) emit(ctx context.Context, events []game.Event) {
	for _, e := range events {
		r.observe(ctx, e)
	}

	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, e := range events {
		for _, ch := range r.subs {
			select {
			case ch <- e:
			default:
				r.logger.Debug(ctx, "subscriber behind, event dropped", logger.String("type", string(e.Type)))
			}
		}
	}
}

func (r *Runner) observe(ctx context.Context, e game.Event) {
	switch e.Type {
	case game.EventInvestorSpawned:
		r.logger.Debug(ctx, "investor spawned", logger.String("investor_id", e.InvestorID))
	case game.EventPitchStarted:
		metrics.RecordPitchStarted()
		r.logger.Info(ctx, "pitch started",
			logger.String("pitch_id", e.PitchID),
			logger.String("investor_id", e.InvestorID),
		)
	case game.EventAttention:
		metrics.RecordAttentionTick()
		r.logger.Debug(ctx, "attention tick",
			logger.String("pitch_id", e.PitchID),
			logger.Float64("level", e.Level),
			logger.Int("combo", e.Combo),
		)
	case game.EventWarning:
		metrics.RecordAttentionWarning()
		r.logger.Info(ctx, "investor losing interest",
			logger.String("pitch_id", e.PitchID),
			logger.Float64("level", e.Level),
		)
	case game.EventPowerUp:
		metrics.RecordPowerUp(string(e.Modifier))
		r.logger.Info(ctx, "power-up activated",
			logger.String("pitch_id", e.PitchID),
			logger.String("modifier", string(e.Modifier)),
		)
	case game.EventPowerUpExpired:
		r.logger.Debug(ctx, "power-up expired", logger.String("modifier", string(e.Modifier)))
	case game.EventPitchEnded:
		res := e.Result
		metrics.RecordPitchEnded(string(res.Outcome))
		if res.Outcome != types.OutcomeAborted {
			metrics.RecordPitchScore(res.Score.Total)
			metrics.RecordComboLevel(res.Score.Combo.Level)
			for _, a := range res.Score.Achievements {
				metrics.RecordAchievement(string(a.ID))
			}
		}
		r.logger.Info(ctx, "pitch ended",
			logger.String("pitch_id", res.PitchID),
			logger.String("outcome", string(res.Outcome)),
			logger.String("reason", res.Reason),
			logger.Float64("total", res.Score.Total),
			logger.Float64("points", res.Points),
		)
	case game.EventGameOver:
		r.logger.Debug(ctx, "game over event", logger.Float64("score", e.Score))
	}
}

// Command claim states. The loop and the caller race to move a command out
// of cmdPending; whoever wins decides whether fn runs.
const (
	cmdPending int32 = iota
	cmdRunning
	cmdAbandoned
)

// submit runs fn on the loop and waits for it. A full queue fails fast with
// queue.ErrBackpressure. A caller whose ctx ends before the loop reaches the
// command gets ctx.Err() and fn never runs.
func (r *Runner) submit(ctx context.Context, name string, fn func(ctx context.Context, s *game.Session) ([]game.Event, error)) error {
	reply := make(chan error, 1)
	var state atomic.Int32
	cmd := queue.Command{
		Name: name,
		Do: func(loopCtx context.Context) {
			if ctx.Err() != nil || !state.CompareAndSwap(cmdPending, cmdRunning) {
				r.logger.Debug(loopCtx, "command dropped, caller gone", logger.String("command", name))
				return
			}
			events, err := fn(loopCtx, r.session)
			r.emit(loopCtx, events)
			reply <- err
		},
	}
	if err := r.queue.Enqueue(ctx, cmd); err != nil {
		if errors.Is(err, queue.ErrClosed) {
			return game.ErrGameOver
		}
		return err
	}

	select {
	case err := <-reply:
		return err
	case <-r.done:
		select {
		case err := <-reply:
			return err
		default:
			return game.ErrGameOver
		}
	case <-ctx.Done():
		if state.CompareAndSwap(cmdPending, cmdAbandoned) {
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		// The loop already claimed it; its effect stands.
		return <-reply
	}
}

// StartPitch begins a pitch to investorID.
func (r *Runner) StartPitch(ctx context.Context, investorID string) (string, error) {
	var pitchID string
	err := r.submit(ctx, "start_pitch", func(_ context.Context, s *game.Session) ([]game.Event, error) {
		id, err := s.StartPitch(investorID)
		if err != nil {
			return nil, err
		}
		pitchID = id
		return []game.Event{s.PitchStartedEvent(id, investorID)}, nil
	})
	return pitchID, err
}

// PushTranscript replaces the live transcript of pitchID.
func (r *Runner) PushTranscript(ctx context.Context, pitchID, text string) error {
	return r.submit(ctx, "push_transcript", func(_ context.Context, s *game.Session) ([]game.Event, error) {
		return nil, s.PushTranscript(pitchID, text)
	})
}

// PushDelivery records a delivery sample for pitchID.
func (r *Runner) PushDelivery(ctx context.Context, pitchID string, a model.DeliveryAnalysis) error {
	return r.submit(ctx, "push_delivery", func(_ context.Context, s *game.Session) ([]game.Event, error) {
		return nil, s.PushDelivery(pitchID, a)
	})
}

// ActivatePowerUp uses the power-up of the investor being pitched.
func (r *Runner) ActivatePowerUp(ctx context.Context, pitchID string) (investor.PowerUp, error) {
	var pu investor.PowerUp
	err := r.submit(ctx, "activate_power_up", func(_ context.Context, s *game.Session) ([]game.Event, error) {
		p, err := s.ActivatePowerUp(pitchID)
		if err != nil {
			return nil, err
		}
		pu = p
		return []game.Event{s.PowerUpEvent(pitchID, p.Kind)}, nil
	})
	return pu, err
}

// EndPitch scores pitchID.
func (r *Runner) EndPitch(ctx context.Context, pitchID string) (game.PitchResult, error) {
	var result game.PitchResult
	err := r.submit(ctx, "end_pitch", func(ctx context.Context, s *game.Session) ([]game.Event, error) {
		start := time.Now()
		res, err := s.EndPitch(ctx, pitchID)
		metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordScoringError("end_pitch")
			return nil, err
		}
		result = res
		return []game.Event{s.PitchEndedEvent(res)}, nil
	})
	return result, err
}

// AbortPitch drops pitchID without scoring it.
func (r *Runner) AbortPitch(ctx context.Context, pitchID string) (game.PitchResult, error) {
	var result game.PitchResult
	err := r.submit(ctx, "abort_pitch", func(_ context.Context, s *game.Session) ([]game.Event, error) {
		res, err := s.AbortPitch(pitchID)
		if err != nil {
			return nil, err
		}
		result = res
		return []game.Event{s.PitchEndedEvent(res)}, nil
	})
	return result, err
}
