package pitchsim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/okian/pitchperfect/internal/domain/attention"
	"github.com/okian/pitchperfect/internal/domain/game"
	"github.com/okian/pitchperfect/internal/domain/investor"
	"github.com/okian/pitchperfect/internal/domain/scoring"
	"github.com/okian/pitchperfect/internal/domain/types"
	"github.com/okian/pitchperfect/pkg/logger"
)

// Plan describes one simulated game.
type Plan struct {
	Quality     Quality
	Seed        int64
	Pitches     int           // stop after this many pitches, 0 plays the whole game
	Words       int           // words per pitch
	WPM         float64       // speaking pace
	Delivery    bool          // push delivery samples once per second
	PowerUps    bool          // use an investor's power-up as soon as the pitch starts
	SampleEvery time.Duration // attention trajectory resolution
}

// DefaultPlan is a full game of average pitches.
func DefaultPlan() Plan {
	return Plan{
		Quality:     QualityAverage,
		Seed:        1,
		Words:       60,
		WPM:         130,
		SampleEvery: time.Second,
	}
}

func (p Plan) validate() error {
	if _, ok := mixes[p.Quality]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuality, p.Quality)
	}
	switch {
	case p.Pitches < 0:
		return fmt.Errorf("%w: pitches must not be negative", ErrInvalidPlan)
	case p.Words < 1:
		return fmt.Errorf("%w: words must be positive", ErrInvalidPlan)
	case p.WPM <= 0 || math.IsNaN(p.WPM) || math.IsInf(p.WPM, 0):
		return fmt.Errorf("%w: wpm must be positive", ErrInvalidPlan)
	case p.SampleEvery <= 0:
		return fmt.Errorf("%w: sample interval must be positive", ErrInvalidPlan)
	}
	return nil
}

// PitchReport summarises one simulated pitch.
type PitchReport struct {
	PitchID      string                `json:"pitch_id"`
	InvestorID   string                `json:"investor_id"`
	Investor     investor.Type         `json:"investor"`
	PowerUp      types.PowerUpKind     `json:"power_up,omitempty"`
	Outcome      types.Outcome         `json:"outcome"`
	Reason       string                `json:"reason,omitempty"`
	Total        float64               `json:"total"`
	Multiplier   float64               `json:"multiplier"`
	Points       float64               `json:"points"`
	Attention    float64               `json:"attention"`
	Duration     float64               `json:"duration_seconds"`
	Combo        int                   `json:"combo_level"`
	Achievements []types.AchievementID `json:"achievements,omitempty"`
	Trajectory   []float64             `json:"trajectory"`
}

// Report is the result of a simulated game.
type Report struct {
	Quality   Quality       `json:"quality"`
	Seed      int64         `json:"seed"`
	Score     float64       `json:"score"`
	Elapsed   float64       `json:"elapsed_seconds"`
	Investors int           `json:"investors"`
	Pitches   []PitchReport `json:"pitches"`
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithAttentionConfig sets the decay dynamics.
func WithAttentionConfig(cfg attention.Config) Option {
	return func(s *Simulator) { s.attentionCfg = cfg }
}

// WithGameConfig sets the game clock and pitch rules.
func WithGameConfig(cfg game.Config) Option {
	return func(s *Simulator) { s.gameCfg = cfg }
}

// WithCatalog sets the investor tables.
func WithCatalog(c *investor.Catalog) Option {
	return func(s *Simulator) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// Simulator plays synthetic pitches through game sessions on a virtual
// clock. Games are deterministic for a given Plan.
type Simulator struct {
	engine       *scoring.Engine
	attentionCfg attention.Config
	gameCfg      game.Config
	catalog      *investor.Catalog
	logger       logger.Logger
}

// NewSimulator creates a simulator scoring with engine.
func NewSimulator(engine *scoring.Engine, opts ...Option) *Simulator {
	s := &Simulator{
		engine:       engine,
		attentionCfg: attention.DefaultConfig(),
		gameCfg:      game.DefaultConfig(),
		catalog:      investor.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("pitchsim")
	}
	return s
}

// livePitch is the speaker's side of the pitch in progress.
type livePitch struct {
	report      PitchReport
	words       []string
	spoken      int
	budget      float64
	sinceSample time.Duration
}

// Run plays one game according to plan.
func (s *Simulator) Run(ctx context.Context, plan Plan) (Report, error) {
	if err := plan.validate(); err != nil {
		return Report{}, err
	}

	seeds := rand.New(rand.NewSource(plan.Seed)) //nolint:gosec // reproducible simulation
	n := 0
	nextID := func() string {
		n++
		return fmt.Sprintf("sim-%d", n)
	}
	sim := attention.NewSimulator(s.attentionCfg, s.engine.Lexicon(), rand.New(rand.NewSource(seeds.Int63()))) //nolint:gosec // reproducible simulation
	session := game.NewSession(fmt.Sprintf("sim-%d", plan.Seed), s.engine, sim,
		rand.New(rand.NewSource(seeds.Int63())), //nolint:gosec // reproducible simulation
		game.WithConfig(s.gameCfg),
		game.WithCatalog(s.catalog),
		game.WithIDGenerator(nextID),
	)
	gen := NewGenerator(s.engine.Lexicon(), rand.New(rand.NewSource(seeds.Int63()))) //nolint:gosec // reproducible simulation

	report := Report{Quality: plan.Quality, Seed: plan.Seed}
	dt := s.attentionCfg.TickInterval
	var cur *livePitch

	done := func(lp *livePitch, res game.PitchResult) {
		r := lp.report
		r.Outcome = res.Outcome
		r.Reason = res.Reason
		r.Total = res.Score.Total
		r.Multiplier = res.Multiplier
		r.Points = res.Points
		r.Attention = res.Attention
		r.Duration = res.Duration
		r.Combo = res.Score.Combo.Level
		for _, a := range res.Score.Achievements {
			r.Achievements = append(r.Achievements, a.ID)
		}
		r.Trajectory = append(r.Trajectory, res.Attention)
		report.Pitches = append(report.Pitches, r)
		s.logger.Debug(ctx, "simulated pitch ended",
			logger.String("pitch_id", r.PitchID),
			logger.String("outcome", string(r.Outcome)),
			logger.Float64("total", r.Total),
		)
	}

	for !session.Over() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		if plan.Pitches > 0 && len(report.Pitches) >= plan.Pitches {
			session.Stop()
			break
		}

		if cur == nil {
			var err error
			if cur, err = s.begin(session, gen, plan); err != nil {
				return Report{}, err
			}
		}

		sampled := false
		for _, e := range session.Tick(ctx) {
			if cur == nil {
				break
			}
			switch e.Type {
			case game.EventAttention:
				if e.PitchID != cur.report.PitchID {
					continue
				}
				cur.sinceSample += dt
				if cur.sinceSample >= plan.SampleEvery {
					cur.sinceSample = 0
					cur.report.Trajectory = append(cur.report.Trajectory, e.Level)
					sampled = true
				}
			case game.EventPitchEnded:
				if e.Result.PitchID == cur.report.PitchID {
					done(cur, *e.Result)
					cur = nil
				}
			}
		}
		if cur == nil || session.Over() {
			continue
		}
		if sampled && plan.Delivery {
			if err := session.PushDelivery(cur.report.PitchID, plan.Quality.Delivery()); err != nil {
				return Report{}, err
			}
		}

		cur.budget += plan.WPM / 60 * dt.Seconds()
		if said := min(len(cur.words), int(cur.budget)); said > cur.spoken {
			cur.spoken = said
			if err := session.PushTranscript(cur.report.PitchID, strings.Join(cur.words[:said], " ")); err != nil {
				return Report{}, err
			}
		}
		if cur.spoken == len(cur.words) {
			res, err := session.EndPitch(ctx, cur.report.PitchID)
			if err != nil {
				return Report{}, err
			}
			done(cur, res)
			cur = nil
		}
	}

	report.Score = session.Score()
	report.Elapsed = session.Elapsed().Seconds()
	report.Investors = len(session.Investors())
	return report, nil
}

// begin starts a pitch to the first investor still waiting, if any.
func (s *Simulator) begin(session *game.Session, gen *Generator, plan Plan) (*livePitch, error) {
	for _, inv := range session.Investors() {
		if inv.Pitched {
			continue
		}
		id, err := session.StartPitch(inv.ID)
		if err != nil {
			return nil, err
		}
		lp := &livePitch{
			report: PitchReport{PitchID: id, InvestorID: inv.ID, Investor: inv.Profile.Type},
			words:  strings.Fields(gen.Pitch(plan.Quality, plan.Words)),
		}
		if plan.PowerUps && inv.PowerUp != nil {
			if pu, err := session.ActivatePowerUp(id); err == nil {
				lp.report.PowerUp = pu.Kind
			}
		}
		return lp, nil
	}
	return nil, nil
}
