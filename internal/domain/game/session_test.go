package game_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/combo"
	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/domain/scoring"
	"github.com/okian/pitchperfect/internal/domain/types"
)

type fixedRNG float64

func (f fixedRNG) Float64() float64 { return float64(f) }

const goodTranscript = "Small shops face a costly problem with stock tracking every single week. " +
	"Our platform automates ordering for each customer in this local market and we earn revenue " +
	"through a monthly plan that owners can afford very easily and quickly today"

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// quietConfig drops the silence penalty so tests need not stream words.
func quietConfig() attention.Config {
	cfg := attention.DefaultConfig()
	cfg.SilencePenalty = 0
	return cfg
}

func newSession(acfg attention.Config, opts ...game.Option) *game.Session {
	sim := attention.NewSimulator(acfg, nil, fixedRNG(0.99))
	opts = append([]game.Option{game.WithIDGenerator(sequentialIDs())}, opts...)
	return game.NewSession("g-1", scoring.NewEngine(), sim, fixedRNG(0.99), opts...)
}

func ticks(s *game.Session, n int) []game.Event {
	var events []game.Event
	for i := 0; i < n; i++ {
		events = append(events, s.Tick(context.Background())...)
	}
	return events
}

func ofType(events []game.Event, t game.EventType) []game.Event {
	var out []game.Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func TestSpawning(t *testing.T) {
	Convey("Given a new game", t, func() {
		s := newSession(quietConfig())

		Convey("When four seconds pass", func() {
			events := ticks(s, 40)

			Convey("Then one investor spawns using the roll", func() {
				spawned := ofType(events, game.EventInvestorSpawned)
				So(len(spawned), ShouldEqual, 1)
				So(len(s.Investors()), ShouldEqual, 1)
				So(s.Investors()[0].Profile.Type, ShouldEqual, investor.TypeShark)
				So(s.Investors()[0].PowerUp, ShouldBeNil)
			})
		})

		Convey("When the whole game clock runs", func() {
			events := ticks(s, 1800)

			Convey("Then investors are capped and the game ends once", func() {
				So(len(s.Investors()), ShouldEqual, 12)
				So(len(ofType(events, game.EventGameOver)), ShouldEqual, 1)
				So(s.Over(), ShouldBeTrue)
				So(s.Tick(context.Background()), ShouldBeNil)
			})
		})
	})
}

func TestPitchLifecycle(t *testing.T) {
	Convey("Given a game with one investor", t, func() {
		s := newSession(quietConfig())
		inv, ok := s.Spawn()
		So(ok, ShouldBeTrue)
		ctx := context.Background()

		Convey("When starting pitches incorrectly", func() {
			_, err := s.StartPitch("nobody")
			So(errors.Is(err, game.ErrInvestorNotFound), ShouldBeTrue)

			_, err = s.StartPitch(inv.ID)
			So(err, ShouldBeNil)
			_, err = s.StartPitch(inv.ID)
			So(errors.Is(err, game.ErrPitchActive), ShouldBeTrue)
		})

		Convey("When a strong pitch is delivered and ended", func() {
			pitchID, err := s.StartPitch(inv.ID)
			So(err, ShouldBeNil)
			So(s.PushTranscript(pitchID, goodTranscript), ShouldBeNil)
			So(s.PushDelivery(pitchID, model.DeliveryAnalysis{Clarity: 0.9, Pace: 0.9, Confidence: 0.9, TonalVariation: 0.9}), ShouldBeNil)
			ticks(s, 240)

			res, err := s.EndPitch(ctx, pitchID)

			Convey("Then it succeeds and scores with the investor multiplier", func() {
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, types.OutcomeSuccess)
				So(res.Duration, ShouldAlmostEqual, 24, 1e-9)
				So(res.Score.Total, ShouldBeGreaterThanOrEqualTo, 7.0)
				So(res.Score.Stats.DeliveryDefaulted, ShouldBeFalse)
				So(res.Multiplier, ShouldEqual, 1.8)
				So(res.Points, ShouldAlmostEqual, res.Score.Total*1.8+float64(res.Score.Reward()), 1e-9)
				So(s.Score(), ShouldAlmostEqual, res.Points, 1e-9)
				So(s.ActivePitchID(), ShouldEqual, "")
				So(s.History(), ShouldHaveLength, 1)
			})

			Convey("Then late commands for the pitch are rejected", func() {
				err := s.PushDelivery(pitchID, model.DeliveryAnalysis{})
				So(errors.Is(err, game.ErrNoActivePitch), ShouldBeTrue)
				_, err = s.StartPitch(inv.ID)
				So(errors.Is(err, game.ErrInvestorPitched), ShouldBeTrue)
			})
		})

		Convey("When a command carries another pitch ID", func() {
			_, err := s.StartPitch(inv.ID)
			So(err, ShouldBeNil)
			err = s.PushTranscript("old-pitch", "hello")
			So(errors.Is(err, game.ErrStalePitch), ShouldBeTrue)
		})

		Convey("When a pitch is ended before any time passes", func() {
			pitchID, _ := s.StartPitch(inv.ID)
			_, err := s.EndPitch(ctx, pitchID)

			Convey("Then scoring rejects it and the pitch stays active", func() {
				So(errors.Is(err, scoring.ErrInvalidDuration), ShouldBeTrue)
				So(s.ActivePitchID(), ShouldEqual, pitchID)
			})
		})

		Convey("When a delivery sample is not a number", func() {
			pitchID, _ := s.StartPitch(inv.ID)
			err := s.PushDelivery(pitchID, model.DeliveryAnalysis{Clarity: math.NaN()})
			So(errors.Is(err, scoring.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the pitch is aborted", func() {
			pitchID, _ := s.StartPitch(inv.ID)
			res, err := s.AbortPitch(pitchID)

			Convey("Then it is recorded without points", func() {
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, types.OutcomeAborted)
				So(res.Points, ShouldEqual, 0.0)
				So(s.Score(), ShouldEqual, 0.0)
			})
		})

		Convey("When the speaker says nothing until the timeout", func() {
			pitchID, _ := s.StartPitch(inv.ID)
			events := ticks(s, 300)
			ended := ofType(events, game.EventPitchEnded)

			Convey("Then the pitch is scored as a failure", func() {
				So(len(ended), ShouldEqual, 1)
				So(ended[0].Result.PitchID, ShouldEqual, pitchID)
				So(ended[0].Result.Outcome, ShouldEqual, types.OutcomeFailure)
				So(ended[0].Result.Reason, ShouldEqual, "time up")
				So(ended[0].Result.Score.Stats.ShortInput, ShouldBeTrue)
			})
		})
	})
}

func TestExhaustion(t *testing.T) {
	Convey("Given an investor who loses interest instantly", t, func() {
		acfg := quietConfig()
		acfg.BaseIncrement = 60
		acfg.MaxIncrement = 60
		acfg.RecoveryChance = 0
		s := newSession(acfg)
		inv, _ := s.Spawn()
		pitchID, _ := s.StartPitch(inv.ID)
		So(s.PushTranscript(pitchID, goodTranscript), ShouldBeNil)

		events := ticks(s, 45)

		Convey("Then the pitch ends exhausted regardless of content", func() {
			ended := ofType(events, game.EventPitchEnded)
			So(len(ended), ShouldEqual, 1)
			res := ended[0].Result
			So(res.Outcome, ShouldEqual, types.OutcomeExhausted)
			So(res.Attention, ShouldEqual, 100.0)
			So(res.Score.Breakdown.Engagement, ShouldEqual, 0.0)
			So(res.Points, ShouldEqual, 0.0)
			So(s.Score(), ShouldEqual, 0.0)
		})

		Convey("Then a warning precedes the end", func() {
			So(len(ofType(events, game.EventWarning)), ShouldEqual, 1)
		})
	})
}

func TestPowerUps(t *testing.T) {
	catalogWith := func(pu investor.PowerUp) *investor.Catalog {
		c, err := investor.NewCatalog(investor.DefaultProfiles(), []investor.PowerUp{pu}, 1)
		if err != nil {
			panic(err)
		}
		return c
	}

	Convey("Given an investor carrying double points", t, func() {
		s := newSession(quietConfig(), game.WithCatalog(catalogWith(investor.PowerUp{
			Kind: types.PowerUpDoublePoints, Duration: 60 * time.Second, Rarity: 1,
		})))
		// A 0.99 roll is always under a carry chance of 1.
		inv, _ := s.Spawn()
		So(inv.PowerUp, ShouldNotBeNil)
		pitchID, _ := s.StartPitch(inv.ID)

		Convey("When it is activated during a strong pitch", func() {
			pu, err := s.ActivatePowerUp(pitchID)
			So(err, ShouldBeNil)
			So(pu.Kind, ShouldEqual, types.PowerUpDoublePoints)

			_, err = s.ActivatePowerUp(pitchID)
			So(errors.Is(err, game.ErrNoPowerUp), ShouldBeTrue)

			So(s.PushTranscript(pitchID, goodTranscript), ShouldBeNil)
			ticks(s, 240)
			res, err := s.EndPitch(context.Background(), pitchID)

			Convey("Then the points are doubled on top of the investor multiplier", func() {
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, types.OutcomeSuccess)
				So(res.Multiplier, ShouldAlmostEqual, 3.6, 1e-9)
				So(res.Points, ShouldAlmostEqual, res.Score.Total*3.6+float64(res.Score.Reward()), 1e-9)
			})
		})
	})

	Convey("Given an investor carrying a time freeze", t, func() {
		s := newSession(quietConfig(), game.WithCatalog(catalogWith(investor.PowerUp{
			Kind: types.PowerUpTimeFreeze, Duration: 5 * time.Second, Rarity: 1,
		})))
		inv, _ := s.Spawn()
		pitchID, _ := s.StartPitch(inv.ID)
		ticks(s, 50)
		before := s.Snapshot().Pitch.Attention

		_, err := s.ActivatePowerUp(pitchID)
		So(err, ShouldBeNil)
		events := ticks(s, 20)

		Convey("Then attention holds while frozen", func() {
			view := s.Snapshot()
			So(view.Pitch.Frozen, ShouldBeTrue)
			So(view.Pitch.Attention, ShouldEqual, before)
			So(ofType(events, game.EventPowerUpExpired), ShouldBeEmpty)
		})

		Convey("Then the freeze expires after its duration", func() {
			events = append(events, ticks(s, 30)...)
			So(len(ofType(events, game.EventPowerUpExpired)), ShouldEqual, 1)
			So(s.Snapshot().Pitch.Frozen, ShouldBeFalse)
		})
	})

	Convey("Given an investor without a power-up", t, func() {
		s := newSession(quietConfig())
		inv, _ := s.Spawn()
		pitchID, _ := s.StartPitch(inv.ID)
		_, err := s.ActivatePowerUp(pitchID)
		So(errors.Is(err, game.ErrNoPowerUp), ShouldBeTrue)
	})
}

func TestStopAndSnapshot(t *testing.T) {
	Convey("Given a game with a pitch in progress", t, func() {
		s := newSession(quietConfig())
		inv, _ := s.Spawn()
		pitchID, _ := s.StartPitch(inv.ID)
		So(s.PushTranscript(pitchID, "our platform"), ShouldBeNil)
		ticks(s, 10)

		Convey("Then the snapshot reflects the live pitch", func() {
			v := s.Snapshot()
			So(v.ID, ShouldEqual, "g-1")
			So(v.ElapsedSeconds, ShouldAlmostEqual, 1, 1e-9)
			So(v.RemainingSeconds, ShouldAlmostEqual, 179, 1e-9)
			So(v.Pitch, ShouldNotBeNil)
			So(v.Pitch.ID, ShouldEqual, pitchID)
			So(v.Pitch.Words, ShouldEqual, 2)
			So(v.Pitch.Phase, ShouldEqual, "grace")
			So(v.Pitch.ComboStreak, ShouldEqual, 1)
			So(v.Investors, ShouldHaveLength, 1)
		})

		Convey("When the game is stopped", func() {
			events := s.Stop()

			Convey("Then the pitch is aborted and the game is over", func() {
				So(len(events), ShouldEqual, 2)
				So(events[0].Type, ShouldEqual, game.EventPitchEnded)
				So(events[0].Result.Outcome, ShouldEqual, types.OutcomeAborted)
				So(events[1].Type, ShouldEqual, game.EventGameOver)
				So(s.Stop(), ShouldBeNil)

				_, err := s.StartPitch(inv.ID)
				So(errors.Is(err, game.ErrGameOver), ShouldBeTrue)
				So(s.Snapshot().Pitch, ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given game configs", t, func() {
		So(game.DefaultConfig().Validate(), ShouldBeNil)

		bad := game.DefaultConfig()
		bad.MaxInvestors = 0
		So(errors.Is(bad.Validate(), game.ErrInvalidConfig), ShouldBeTrue)

		bad = game.DefaultConfig()
		bad.SuccessScore = 11
		So(errors.Is(bad.Validate(), game.ErrInvalidConfig), ShouldBeTrue)
	})
}

func TestTranscriptRevisions(t *testing.T) {
	Convey("Given a pitch scored with combos enabled", t, func() {
		cc := combo.DefaultConfig()
		cc.Enabled = true
		sim := attention.NewSimulator(quietConfig(), nil, fixedRNG(0.99))
		s := game.NewSession("g-1", scoring.NewEngine(scoring.WithCombo(cc)), sim, fixedRNG(0.99),
			game.WithIDGenerator(sequentialIDs()))
		inv, ok := s.Spawn()
		So(ok, ShouldBeTrue)
		pitchID, err := s.StartPitch(inv.ID)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When a keyword is retracted and spoken again many times", func() {
			for i := 0; i < 12; i++ {
				So(s.PushTranscript(pitchID, "revenue"), ShouldBeNil)
				So(s.PushTranscript(pitchID, ""), ShouldBeNil)
			}
			So(s.PushTranscript(pitchID, "revenue"), ShouldBeNil)
			So(s.Snapshot().Pitch.Words, ShouldEqual, 1)
			So(s.Snapshot().Pitch.ComboStreak, ShouldEqual, 1)
			ticks(s, 10)

			res, err := s.EndPitch(ctx, pitchID)

			Convey("Then the combo counts the single keyword once", func() {
				So(err, ShouldBeNil)
				So(res.Score.Combo.PeakStreak, ShouldEqual, 1)
				So(res.Score.Combo.Multiplier, ShouldEqual, 1.0)
				So(res.Score.Combo.Level, ShouldEqual, 1)
			})
		})

		Convey("When filler is rewritten in place into keywords", func() {
			So(s.PushTranscript(pitchID, "um uh like um uh like um uh like"), ShouldBeNil)
			So(s.Snapshot().Pitch.ComboStreak, ShouldEqual, 0)
			So(s.PushTranscript(pitchID, "revenue pricing margin profit sales fees market customers growth"), ShouldBeNil)
			So(s.Snapshot().Pitch.ComboStreak, ShouldEqual, 9)
			ticks(s, 10)

			res, err := s.EndPitch(ctx, pitchID)

			Convey("Then the streak follows the rewritten words", func() {
				So(err, ShouldBeNil)
				So(res.Score.Combo.PeakStreak, ShouldEqual, 9)
				So(res.Score.Combo.Multiplier, ShouldEqual, 1.8)
				So(res.Score.Combo.Level, ShouldEqual, 4)
			})
		})

		Convey("When the tail of a snapshot is revised", func() {
			So(s.PushTranscript(pitchID, "our platform"), ShouldBeNil)
			ticks(s, 50)
			So(s.PushTranscript(pitchID, "our platform solves pain"), ShouldBeNil)
			So(s.PushTranscript(pitchID, "our platform fixes pain"), ShouldBeNil)
			ticks(s, 10)

			res, err := s.EndPitch(ctx, pitchID)

			Convey("Then the kept prefix keeps its earlier timing", func() {
				So(err, ShouldBeNil)
				So(res.Score.Stats.WordCount, ShouldEqual, 4)
				So(res.Score.Combo.PeakStreak, ShouldEqual, 1)
			})
		})
	})
}
