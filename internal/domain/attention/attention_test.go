package attention_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/domain/types"
)

// fixedRNG always rolls the same value.
type fixedRNG float64

func (f fixedRNG) Float64() float64 { return float64(f) }

const noRecovery = fixedRNG(0.99)

var normal = investor.Profile{Type: investor.TypeNormal, BoredomRate: 1, ScoreMultiplier: 1, Rarity: 0.7}

// pastGrace ticks s through its grace period with an empty transcript.
func pastGrace(sim *attention.Simulator, s *attention.State) {
	ticks := int(sim.Config().GracePeriod / sim.Config().TickInterval)
	for i := 0; i < ticks; i++ {
		sim.Tick(s, "")
	}
}

func TestGracePeriod(t *testing.T) {
	Convey("Given a fresh state", t, func() {
		sim := attention.NewSimulator(attention.DefaultConfig(), nil, noRecovery)
		s := sim.NewState(normal)

		So(s.Phase, ShouldEqual, attention.PhaseGrace)
		So(s.IncrementFactor, ShouldAlmostEqual, 0.02)

		Convey("When ticking through the grace period", func() {
			pastGrace(sim, s)

			Convey("Then no decay applies", func() {
				So(s.Level, ShouldEqual, 0.0)
				So(s.Phase, ShouldEqual, attention.PhaseGrace)
				So(s.GraceElapsed, ShouldEqual, 4*time.Second)
			})

			Convey("Then the next tick starts scoring", func() {
				res := sim.Tick(s, "")
				So(res.Phase, ShouldEqual, attention.PhaseScoring)
				So(s.Level, ShouldAlmostEqual, 0.02)
			})
		})
	})

	Convey("Given a shark", t, func() {
		shark, _ := investor.Default().Profile(investor.TypeShark)
		s := attention.NewState(shark, attention.DefaultConfig())

		Convey("Then the base increment scales with the boredom rate", func() {
			So(s.BaseIncrement(), ShouldAlmostEqual, 0.026)
			So(s.IncrementFactor, ShouldAlmostEqual, 0.026)
		})
	})
}

func TestSilence(t *testing.T) {
	Convey("Given a state past its grace period", t, func() {
		sim := attention.NewSimulator(attention.DefaultConfig(), nil, noRecovery)
		s := sim.NewState(normal)
		pastGrace(sim, s)

		Convey("When the speaker stays silent for twelve ticks", func() {
			var last attention.TickResult
			for i := 0; i < 12; i++ {
				last = sim.Tick(s, "")
			}

			Convey("Then the penalty grows with ticks past the threshold", func() {
				So(last.Silent, ShouldBeTrue)
				// 12 increments plus penalties for counters 10, 11 and 12.
				want := 12*0.02 + 0.1*(0+1+2)/10
				So(s.Level, ShouldAlmostEqual, want, 1e-9)
			})
		})

		Convey("When a word count stays the same but the text changes", func() {
			sim.Tick(s, "hello there")
			res := sim.Tick(s, "hello there!")
			So(res.Silent, ShouldBeTrue)
		})
	})
}

func TestContentAdjustsIncrement(t *testing.T) {
	Convey("Given a state past its grace period", t, func() {
		sim := attention.NewSimulator(attention.DefaultConfig(), nil, noRecovery)
		s := sim.NewState(normal)
		pastGrace(sim, s)

		Convey("When the new words are mostly filler", func() {
			res := sim.Tick(s, "um uh like basically")

			Convey("Then the factor rises by the filler penalty", func() {
				So(res.Silent, ShouldBeFalse)
				So(s.IncrementFactor, ShouldAlmostEqual, 0.10, 1e-9)
			})

			Convey("And repeated filler is capped", func() {
				text := "um uh like basically"
				for i := 0; i < 10; i++ {
					text += " um"
					sim.Tick(s, text)
				}
				So(s.IncrementFactor, ShouldAlmostEqual, 0.25, 1e-9)
			})

			Convey("And a keyword sentence brings it down to half the base", func() {
				sim.Tick(s, "um uh like basically our platform has real revenue")
				So(s.IncrementFactor, ShouldAlmostEqual, 0.01, 1e-9)
			})
		})

		Convey("When only the delta is filler-free", func() {
			sim.Tick(s, "um uh er hmm")
			sim.Tick(s, "um uh er hmm then our market grows")

			Convey("Then earlier filler does not count again", func() {
				So(s.IncrementFactor, ShouldAlmostEqual, 0.01, 1e-9)
			})
		})

		Convey("When the recogniser retracts words", func() {
			sim.Tick(s, "um uh er hmm")
			So(s.IncrementFactor, ShouldAlmostEqual, 0.10, 1e-9)
			res := sim.Tick(s, "um uh er")

			Convey("Then the surviving filler is not penalised twice", func() {
				So(res.Silent, ShouldBeFalse)
				So(s.IncrementFactor, ShouldAlmostEqual, 0.10, 1e-9)
			})

			Convey("Then only words past the shared prefix are classified", func() {
				sim.Tick(s, "um uh er our platform has real revenue")
				So(s.IncrementFactor, ShouldAlmostEqual, 0.01, 1e-9)
			})
		})
	})
}

func TestRecoveryAndBounds(t *testing.T) {
	Convey("Given a state that always recovers", t, func() {
		sim := attention.NewSimulator(attention.DefaultConfig(), nil, fixedRNG(0))
		s := sim.NewState(normal)
		pastGrace(sim, s)
		s.Level = 0.1

		Convey("Then the level drops and never goes below zero", func() {
			res := sim.Tick(s, "")
			So(res.Recovered, ShouldBeTrue)
			So(s.Level, ShouldEqual, 0.0)
		})
	})

	Convey("Given a state close to the warning level", t, func() {
		sim := attention.NewSimulator(attention.DefaultConfig(), nil, noRecovery)
		s := sim.NewState(normal)
		pastGrace(sim, s)
		s.Level = 79.99

		Convey("Then the warning fires exactly once", func() {
			first := sim.Tick(s, "")
			second := sim.Tick(s, "")
			So(first.Warning, ShouldBeTrue)
			So(second.Warning, ShouldBeFalse)
			So(s.Warned, ShouldBeTrue)
		})

		Convey("Then a reset re-arms it", func() {
			sim.Tick(s, "")
			_, err := s.ApplyModifier(types.ModifierReset, 0)
			So(err, ShouldBeNil)
			So(s.Level, ShouldEqual, 0.0)
			So(s.Warned, ShouldBeFalse)
		})
	})

	Convey("Given a state about to be exhausted", t, func() {
		sim := attention.NewSimulator(attention.DefaultConfig(), nil, noRecovery)
		s := sim.NewState(normal)
		pastGrace(sim, s)
		s.Level = 99.99

		res := sim.Tick(s, "")

		Convey("Then reaching 100 ends the pitch", func() {
			So(res.Exhausted, ShouldBeTrue)
			So(s.Level, ShouldEqual, 100.0)
			So(s.Phase, ShouldEqual, attention.PhaseEnded)
			So(s.Active(), ShouldBeFalse)
		})

		Convey("Then further ticks apply nothing", func() {
			again := sim.Tick(s, "um um um")
			So(again.Delta, ShouldEqual, 0.0)
			So(again.Exhausted, ShouldBeTrue)
			So(s.Level, ShouldEqual, 100.0)
			So(again.Phase, ShouldEqual, attention.PhaseEnded)
		})
	})
}

func TestModifiers(t *testing.T) {
	Convey("Given a state past its grace period", t, func() {
		cfg := attention.DefaultConfig()
		sim := attention.NewSimulator(cfg, nil, noRecovery)
		s := sim.NewState(normal)
		pastGrace(sim, s)
		tick := cfg.TickInterval

		Convey("When a freeze is active", func() {
			h, err := s.ApplyModifier(types.ModifierFreeze, 5*time.Second)
			So(err, ShouldBeNil)
			So(h.ExpiresAt, ShouldEqual, s.Elapsed+5*time.Second)

			level := s.Level
			sim.Tick(s, "um uh like")

			Convey("Then the level holds while the factor keeps evolving", func() {
				So(s.Frozen(), ShouldBeTrue)
				So(s.EffectiveIncrement(), ShouldEqual, 0.0)
				So(s.Level, ShouldEqual, level)
				So(s.IncrementFactor, ShouldAlmostEqual, 0.10, 1e-9)
			})

			Convey("Then expiry restores the live factor, not the baseline", func() {
				for i := 0; i < int(5*time.Second/tick); i++ {
					sim.Tick(s, "um uh like")
				}
				So(s.Frozen(), ShouldBeFalse)
				So(s.EffectiveIncrement(), ShouldAlmostEqual, 0.10, 1e-9)
			})

			Convey("Then ending it early unfreezes", func() {
				So(s.Expire(h), ShouldBeTrue)
				So(s.Expire(h), ShouldBeFalse)
				So(s.Frozen(), ShouldBeFalse)
			})
		})

		Convey("When two freezes overlap", func() {
			_, _ = s.ApplyModifier(types.ModifierFreeze, 2*time.Second)
			for i := 0; i < 10; i++ {
				sim.Tick(s, "")
			}
			second, _ := s.ApplyModifier(types.ModifierFreeze, 2*time.Second)

			Convey("Then the first expiry leaves the second in force", func() {
				var expired []attention.Handle
				for i := 0; i < 10; i++ {
					expired = append(expired, sim.Tick(s, "").Expired...)
				}
				So(len(expired), ShouldEqual, 1)
				So(s.Frozen(), ShouldBeTrue)
				So(s.Modifiers(), ShouldResemble, []attention.Handle{second})
			})

			Convey("Then the freeze lifts when the last one expires", func() {
				for i := 0; i < 20; i++ {
					sim.Tick(s, "")
				}
				So(s.Frozen(), ShouldBeFalse)
				So(s.Modifiers(), ShouldBeEmpty)
			})
		})

		Convey("When doubles overlap", func() {
			_, _ = s.ApplyModifier(types.ModifierDouble, 8*time.Second)
			_, _ = s.ApplyModifier(types.ModifierDouble, 8*time.Second)

			Convey("Then the multiplier does not stack", func() {
				So(s.ScoreMultiplier(), ShouldEqual, 2.0)
			})
		})

		Convey("When an unknown modifier is applied", func() {
			_, err := s.ApplyModifier("teleport", time.Second)
			So(errors.Is(err, attention.ErrUnknownModifier), ShouldBeTrue)
		})

		Convey("When the state ends", func() {
			_, _ = s.ApplyModifier(types.ModifierDouble, 8*time.Second)
			s.End()
			So(s.Doubled(), ShouldBeFalse)
			So(s.ScoreMultiplier(), ShouldEqual, 1.0)
		})
	})
}

func TestApplyDelivery(t *testing.T) {
	Convey("Given an active state", t, func() {
		cfg := attention.DefaultConfig()
		s := attention.NewState(normal, cfg)

		Convey("When a confident delivery arrives", func() {
			s.ApplyDelivery(model.DeliveryAnalysis{Confidence: 1}, cfg)
			So(s.IncrementFactor, ShouldAlmostEqual, 0.014, 1e-9)

			Convey("Then repeated damping stops at half the base", func() {
				for i := 0; i < 10; i++ {
					s.ApplyDelivery(model.DeliveryAnalysis{Confidence: 1}, cfg)
				}
				So(s.IncrementFactor, ShouldAlmostEqual, 0.01, 1e-9)
			})
		})

		Convey("When the state has ended", func() {
			s.End()
			s.ApplyDelivery(model.DeliveryAnalysis{Confidence: 1}, cfg)
			So(s.IncrementFactor, ShouldAlmostEqual, 0.02)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given attention configs", t, func() {
		So(attention.DefaultConfig().Validate(), ShouldBeNil)

		mutations := []func(*attention.Config){
			func(c *attention.Config) { c.TickInterval = 0 },
			func(c *attention.Config) { c.GracePeriod = -time.Second },
			func(c *attention.Config) { c.MaxIncrement = 0.01 },
			func(c *attention.Config) { c.RecoveryChance = 2 },
			func(c *attention.Config) { c.WarningLevel = 120 },
			func(c *attention.Config) { c.SilenceThreshold = -1 },
			func(c *attention.Config) { c.ConfidenceDamping = 1.5 },
		}
		for _, mutate := range mutations {
			c := attention.DefaultConfig()
			mutate(&c)
			So(errors.Is(c.Validate(), attention.ErrInvalidConfig), ShouldBeTrue)
		}
	})
}
