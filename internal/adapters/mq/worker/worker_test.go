package worker_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchperfect/internal/adapters/mq/queue"
	"github.com/okian/pitchperfect/internal/adapters/mq/worker"
	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/scoring"
	logging "github.com/okian/pitchperfect/pkg/logger"
)

type fixedRNG float64

func (f fixedRNG) Float64() float64 { return float64(f) }

func newRunner(q queue.Queue, opts ...game.Option) *worker.Runner {
	_ = logging.InitWithWriter(io.Discard)
	cfg := attention.DefaultConfig()
	cfg.SilencePenalty = 0
	sim := attention.NewSimulator(cfg, nil, fixedRNG(0.99))
	s := game.NewSession("g-1", scoring.NewEngine(), sim, fixedRNG(0.5), opts...)
	return worker.NewRunner(s, q, worker.WithName("test"), worker.WithTickInterval(time.Millisecond), worker.WithSubscriberBuffer(4096))
}

// waitFor reads events until one of type t arrives.
func waitFor(events <-chan game.Event, t game.EventType) (game.Event, bool) {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return game.Event{}, false
			}
			if e.Type == t {
				return e, true
			}
		case <-timeout:
			return game.Event{}, false
		}
	}
}

func TestRunnerPitch(t *testing.T) {
	Convey("Given a running game", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		r := newRunner(queue.NewInMemoryQueue())
		events, unsubscribe := r.Subscribe()
		defer unsubscribe()
		go r.Run(ctx)

		spawned, ok := waitFor(events, game.EventInvestorSpawned)
		So(ok, ShouldBeTrue)

		Convey("When a pitch is started, fed and ended", func() {
			pitchID, err := r.StartPitch(ctx, spawned.InvestorID)
			So(err, ShouldBeNil)

			started, ok := waitFor(events, game.EventPitchStarted)
			So(ok, ShouldBeTrue)
			So(started.PitchID, ShouldEqual, pitchID)

			So(r.PushTranscript(ctx, pitchID, "our platform solves a real problem"), ShouldBeNil)
			_, ok = waitFor(events, game.EventAttention)
			So(ok, ShouldBeTrue)

			res, err := r.EndPitch(ctx, pitchID)

			Convey("Then the result is scored and published", func() {
				So(err, ShouldBeNil)
				So(res.PitchID, ShouldEqual, pitchID)
				So(res.Score.Stats.WordCount, ShouldEqual, 6)

				ended, ok := waitFor(events, game.EventPitchEnded)
				So(ok, ShouldBeTrue)
				So(ended.Result.PitchID, ShouldEqual, pitchID)
				So(r.Snapshot().History, ShouldHaveLength, 1)
				So(r.Snapshot().Pitch, ShouldBeNil)
			})

			Convey("Then a stale pitch ID is rejected", func() {
				err := r.PushTranscript(ctx, "other", "hello")
				So(errors.Is(err, game.ErrStalePitch), ShouldBeTrue)
			})
		})

		Convey("When the runner is shut down", func() {
			So(r.Shutdown(context.Background()), ShouldBeNil)

			Convey("Then the game is over and later commands fail", func() {
				_, ok := waitFor(events, game.EventGameOver)
				So(ok, ShouldBeTrue)
				So(r.Snapshot().Over, ShouldBeTrue)

				_, err := r.StartPitch(ctx, spawned.InvestorID)
				So(errors.Is(err, game.ErrGameOver), ShouldBeTrue)
			})
		})
	})
}

func TestRunnerGameClock(t *testing.T) {
	Convey("Given a two second game", t, func() {
		cfg := game.DefaultConfig()
		cfg.Duration = 2 * time.Second
		r := newRunner(queue.NewInMemoryQueue(), game.WithConfig(cfg))
		events, _ := r.Subscribe()
		go r.Run(context.Background())

		Convey("Then the runner exits once time is up", func() {
			over, ok := waitFor(events, game.EventGameOver)
			So(ok, ShouldBeTrue)
			So(over.At, ShouldEqual, 2*time.Second)

			exited := false
			select {
			case <-r.Done():
				exited = true
			case <-time.After(5 * time.Second):
			}
			So(exited, ShouldBeTrue)

			_, open := <-events
			So(open, ShouldBeFalse)
		})
	})
}

func TestRunnerBackpressure(t *testing.T) {
	Convey("Given a runner that is not draining a one-slot queue", t, func() {
		r := newRunner(queue.NewInMemoryQueue(queue.WithCapacity(1)))

		Convey("When two commands are submitted", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, first := r.StartPitch(ctx, "inv")
			second := r.PushTranscript(context.Background(), "p", "hello")

			Convey("Then the first times out waiting and the second is refused", func() {
				So(errors.Is(first, context.DeadlineExceeded), ShouldBeTrue)
				So(errors.Is(second, queue.ErrBackpressure), ShouldBeTrue)
			})
		})
	})
}

func TestRunnerDropsAbandonedCommands(t *testing.T) {
	Convey("Given a game with a waiting investor whose loop has not started", t, func() {
		_ = logging.InitWithWriter(io.Discard)
		sim := attention.NewSimulator(attention.DefaultConfig(), nil, fixedRNG(0.99))
		s := game.NewSession("g-2", scoring.NewEngine(), sim, fixedRNG(0.5))
		inv, ok := s.Spawn()
		So(ok, ShouldBeTrue)
		r := worker.NewRunner(s, queue.NewInMemoryQueue(), worker.WithTickInterval(time.Hour))

		Convey("When a pitch start times out before the loop reaches it", func() {
			short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			pitchID, err := r.StartPitch(short, inv.ID)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			So(pitchID, ShouldBeEmpty)

			ctx, stop := context.WithCancel(context.Background())
			defer stop()
			go r.Run(ctx)

			Convey("Then the stale command is skipped and a retry succeeds", func() {
				retryID, err := r.StartPitch(ctx, inv.ID)
				So(err, ShouldBeNil)
				So(retryID, ShouldNotBeEmpty)

				So(r.PushTranscript(ctx, retryID, "our platform"), ShouldBeNil)
			})
		})
	})
}
