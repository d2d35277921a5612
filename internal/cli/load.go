package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/okian/pitchperfect/internal/loadgen"
	"github.com/okian/pitchperfect/internal/pitchsim"
)

type loadOptions struct {
	cfg     loadgen.Config
	quality string
	json    bool
}

func newLoadCmd() *cobra.Command {
	opts := &loadOptions{cfg: loadgen.DefaultConfig()}
	opts.quality = string(opts.cfg.Quality)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Play concurrent games against a running server",
		Long: `Load creates games for a set of players, pitches generated transcripts
to the first investor of each game, deletes the games and then checks that
the leaderboard holds every player's best score in order.

The first transcript chunk of every pitch is sent twice to exercise
duplicate detection.

Example:
  pitchsim load --url http://localhost:9080 --games 100 --players 20 --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.cfg.BaseURL, "url", opts.cfg.BaseURL, "server base URL")
	f.IntVar(&opts.cfg.Games, "games", opts.cfg.Games, "games to play")
	f.IntVar(&opts.cfg.Players, "players", opts.cfg.Players, "distinct players")
	f.IntVarP(&opts.cfg.Workers, "workers", "w", opts.cfg.Workers, "concurrent games")
	f.StringVarP(&opts.quality, "quality", "q", opts.quality, "pitch quality: poor, average or strong")
	f.IntVar(&opts.cfg.Words, "words", opts.cfg.Words, "words per pitch")
	f.IntVar(&opts.cfg.ChunkWords, "chunk", opts.cfg.ChunkWords, "words per transcript chunk")
	f.DurationVar(&opts.cfg.Pace, "pace", opts.cfg.Pace, "pause between chunks")
	f.BoolVar(&opts.cfg.Delivery, "delivery", opts.cfg.Delivery, "send a delivery sample with every chunk")
	f.Int64Var(&opts.cfg.Seed, "seed", opts.cfg.Seed, "transcript seed")
	f.IntVar(&opts.cfg.TopN, "top", opts.cfg.TopN, "leaderboard rows to fetch")
	f.DurationVar(&opts.cfg.Timeout, "timeout", opts.cfg.Timeout, "per request timeout")
	f.DurationVar(&opts.cfg.Settle, "settle", opts.cfg.Settle, "how long to wait for the leaderboard")
	f.StringVar(&opts.cfg.PlayerPrefix, "prefix", "", "player name prefix (random by default)")
	f.BoolVar(&opts.json, "json", false, "print the report as JSON")
	return cmd
}

func runLoad(cmd *cobra.Command, opts *loadOptions) error {
	quality, err := pitchsim.ParseQuality(opts.quality)
	if err != nil {
		return err
	}
	cfg := opts.cfg
	cfg.Quality = quality

	report, err := loadgen.Run(cmd.Context(), cfg)
	if report == nil {
		return err
	}
	// print the report even when verification failed
	var werr error
	if opts.json {
		werr = writeJSON(cmd.OutOrStdout(), report)
	} else {
		werr = loadgen.WriteReport(cmd.OutOrStdout(), report)
	}
	return errors.Join(err, werr)
}
