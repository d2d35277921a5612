package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchperfect/internal/config"
	"github.com/okian/pitchperfect/internal/domain/investor"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.Scoring.MinWords, convey.ShouldEqual, 30)
			convey.So(cfg.Combo.Enabled, convey.ShouldBeFalse)
			convey.So(cfg.Game.Duration, convey.ShouldEqual, 180*time.Second)
			convey.So(cfg.Investors, convey.ShouldHaveLength, 4)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Attention.TickInterval, convey.ShouldEqual, 100*time.Millisecond)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			setEnv(map[string]string{
				"PITCH_ADDR":                        ":8080",
				"PITCH_QUEUE_SIZE":                  "64",
				"PITCH_GAME_TTL":                    "5m",
				"PITCH_SCORING__MIN_WORDS":          "40",
				"PITCH_COMBO__ENABLED":              "true",
				"PITCH_ATTENTION__GRACE_PERIOD":     "2s",
				"PITCH_GAME__SUCCESS_SCORE":         "6.5",
				"PITCH_ACHIEVEMENTS__PERFECT_SCORE": "9",
			})
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.GameTTL, convey.ShouldEqual, 5*time.Minute)
				convey.So(cfg.Scoring.MinWords, convey.ShouldEqual, 40)
				convey.So(cfg.Combo.Enabled, convey.ShouldBeTrue)
				convey.So(cfg.Attention.GracePeriod, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.Game.SuccessScore, convey.ShouldEqual, 6.5)
				convey.So(cfg.Achievements.PerfectScore, convey.ShouldEqual, 9.0)
			})

			convey.Convey("Then untouched nested fields keep their defaults", func() {
				convey.So(cfg.Scoring.Weights.Content, convey.ShouldEqual, 0.4)
				convey.So(cfg.Attention.TickInterval, convey.ShouldEqual, 100*time.Millisecond)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeFile(t, "config.yaml", `
addr: ":9090"
seed: 7
scoring:
  weights:
    content: 0.5
    delivery: 0.2
    engagement: 0.2
    efficiency: 0.1
combo:
  enabled: true
  steps: [1.0, 1.5]
game:
  duration: 60s
investors:
  - type: shark
    boredom_rate: 1.3
    score_multiplier: 1.8
    rarity: 1
`)
			setEnv(map[string]string{config.EnvFile: path, "PITCH_SEED": "9"})
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Seed, convey.ShouldEqual, int64(9))
				convey.So(cfg.Scoring.Weights.Content, convey.ShouldEqual, 0.5)
				convey.So(cfg.Combo.Steps, convey.ShouldResemble, []float64{1.0, 1.5})
				convey.So(cfg.Game.Duration, convey.ShouldEqual, time.Minute)
				convey.So(cfg.Game.PitchTimeout, convey.ShouldEqual, 30*time.Second)
			})

			convey.Convey("Then lists replace the defaults", func() {
				convey.So(cfg.Investors, convey.ShouldHaveLength, 1)
				convey.So(cfg.Investors[0].Type, convey.ShouldEqual, investor.TypeShark)
				convey.So(cfg.PowerUps, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When loading config with a broken file", func() {
			path := writeFile(t, "broken.yaml", "addr: [unclosed")
			setEnv(map[string]string{config.EnvFile: path})
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with a missing file", func() {
			setEnv(map[string]string{config.EnvFile: filepath.Join(t.TempDir(), "nope.yaml")})
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When an env value has the wrong type", func() {
			setEnv(map[string]string{"PITCH_QUEUE_SIZE": "lots"})
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When weights no longer sum to one", func() {
			setEnv(map[string]string{"PITCH_SCORING__WEIGHTS__CONTENT": "0.9"})
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given configs with one bad setting", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"zero queue", func(c *config.Config) { c.QueueSize = 0 }},
			{"no rate", func(c *config.Config) { c.TranscriptRate = 0 }},
			{"empty steps", func(c *config.Config) { c.Combo.Steps = nil }},
			{"descending steps", func(c *config.Config) { c.Combo.Steps = []float64{1, 2, 1.5} }},
			{"zero combo window", func(c *config.Config) { c.Combo.Window = 0 }},
			{"negative combo window", func(c *config.Config) { c.Combo.Window = -time.Second }},
			{"zero keywords per step", func(c *config.Config) { c.Combo.MinKeywordsPerStep = 0 }},
			{"filler ratio above one", func(c *config.Config) { c.Scoring.MaxFillerRatio = 1.5 }},
			{"content weights above one", func(c *config.Config) { c.Scoring.CoverageWeight = 0.9 }},
			{"inverted wpm band", func(c *config.Config) { c.Scoring.WPMMin, c.Scoring.WPMMax = 200, 100 }},
			{"bad attention", func(c *config.Config) { c.Attention.TickInterval = 0 }},
			{"bad game", func(c *config.Config) { c.Game.MaxInvestors = 0 }},
			{"no investors", func(c *config.Config) { c.Investors = nil }},
			{"power-up chance", func(c *config.Config) { c.PowerUpChance = 2 }},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

func TestConfigBuild(t *testing.T) {
	convey.Convey("Given a config pointing at a custom lexicon", t, func() {
		cfg := config.New()
		cfg.LexiconFile = writeFile(t, "lexicon.yaml", `
categories:
  problem: [pain]
  solution: [widget]
`)

		convey.Convey("Then the engine uses it", func() {
			engine, err := cfg.Engine()
			convey.So(err, convey.ShouldBeNil)
			convey.So(engine.Lexicon().Categories(), convey.ShouldHaveLength, 2)
			convey.So(engine.Lexicon().IsPositive("widget"), convey.ShouldBeTrue)
		})

		convey.Convey("Then a missing lexicon file fails to load", func() {
			cfg.LexiconFile = filepath.Join(t.TempDir(), "missing.yaml")
			_, err := cfg.Engine()
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Then the catalog is built from the tables", func() {
			catalog, err := cfg.Catalog()
			convey.So(err, convey.ShouldBeNil)
			p, ok := catalog.Profile(investor.TypeAngel)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(p.ScoreMultiplier, convey.ShouldEqual, 2.0)
		})
	})
}

// Helper functions.

var configEnvVars = []string{
	config.EnvFile,
	"PITCH_ADDR",
	"PITCH_QUEUE_SIZE",
	"PITCH_GAME_TTL",
	"PITCH_SEED",
	"PITCH_SCORING__MIN_WORDS",
	"PITCH_SCORING__WEIGHTS__CONTENT",
	"PITCH_COMBO__ENABLED",
	"PITCH_ATTENTION__GRACE_PERIOD",
	"PITCH_GAME__SUCCESS_SCORE",
	"PITCH_ACHIEVEMENTS__PERFECT_SCORE",
}

func setEnv(vars map[string]string) {
	for k, v := range vars {
		_ = os.Setenv(k, v)
	}
}

func clearConfigEnvVars() {
	for _, envVar := range configEnvVars {
		_ = os.Unsetenv(envVar)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
