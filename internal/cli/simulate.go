package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pitchperfect/internal/pitchsim"
	"github.com/okian/pitchperfect/pkg/logger"
)

type simulateOptions struct {
	quality     string
	seed        int64
	pitches     int
	words       int
	wpm         float64
	delivery    bool
	powerUps    bool
	sampleEvery time.Duration
	json        bool
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	def := pitchsim.DefaultPlan()
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a synthetic game on a virtual clock",
		Long: `Simulate spawns investors and pitches generated transcripts to them
until the game clock runs out or --pitches have been made. The same seed
and configuration always produce the same report.

Example:
  pitchsim simulate --quality strong --seed 42 --delivery
  pitchsim simulate --quality poor --pitches 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.quality, "quality", "q", string(def.Quality), "pitch quality: poor, average or strong")
	f.Int64Var(&opts.seed, "seed", def.Seed, "random seed")
	f.IntVarP(&opts.pitches, "pitches", "n", def.Pitches, "stop after this many pitches (0 plays the whole game)")
	f.IntVar(&opts.words, "words", def.Words, "words per pitch")
	f.Float64Var(&opts.wpm, "wpm", def.WPM, "speaking pace in words per minute")
	f.BoolVar(&opts.delivery, "delivery", def.Delivery, "stream delivery samples every second")
	f.BoolVar(&opts.powerUps, "powerups", def.PowerUps, "use power-ups as soon as a pitch starts")
	f.DurationVar(&opts.sampleEvery, "sample", def.SampleEvery, "attention trajectory resolution")
	f.BoolVar(&opts.json, "json", false, "print the report as JSON")
	return cmd
}

func runSimulate(cmd *cobra.Command, root *rootOptions, opts *simulateOptions) error {
	ctx := cmd.Context()

	quality, err := pitchsim.ParseQuality(opts.quality)
	if err != nil {
		return err
	}
	cfg, err := root.load(ctx)
	if err != nil {
		return err
	}
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	sim := pitchsim.NewSimulator(engine,
		pitchsim.WithAttentionConfig(cfg.Attention),
		pitchsim.WithGameConfig(cfg.Game),
		pitchsim.WithCatalog(catalog),
		pitchsim.WithLogger(logger.Named("pitchsim")),
	)
	report, err := sim.Run(ctx, pitchsim.Plan{
		Quality:     quality,
		Seed:        opts.seed,
		Pitches:     opts.pitches,
		Words:       opts.words,
		WPM:         opts.wpm,
		Delivery:    opts.delivery,
		PowerUps:    opts.powerUps,
		SampleEvery: opts.sampleEvery,
	})
	if err != nil {
		return err
	}

	if opts.json {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return pitchsim.WriteReport(cmd.OutOrStdout(), report)
}
