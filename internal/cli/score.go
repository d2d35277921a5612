package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/pitchperfect/internal/domain/model"
	"github.com/okian/pitchperfect/internal/pitchsim"
)

type scoreOptions struct {
	duration   float64
	attention  float64
	clarity    float64
	pace       float64
	confidence float64
	tonal      float64
	combo      bool
	json       bool
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score [transcript-file]",
		Short: "Score one transcript",
		Long: `Score reads a transcript from a file, or stdin when no file or "-" is
given, and prints the total, the sub-scores and the feedback.

Delivery analysis is only used when at least one delivery flag is set.

Example:
  pitchsim score pitch.txt --duration 42 --attention 35
  echo "our platform solves a costly problem" | pitchsim score --duration 5 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, root, opts, args)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.duration, "duration", 30, "speaking time in seconds")
	f.Float64Var(&opts.attention, "attention", 0, "final boredom level, 0-100")
	f.Float64Var(&opts.clarity, "clarity", 0.5, "delivery clarity, 0-1")
	f.Float64Var(&opts.pace, "pace", 0.5, "delivery pace, 0-1")
	f.Float64Var(&opts.confidence, "confidence", 0.5, "delivery confidence, 0-1")
	f.Float64Var(&opts.tonal, "tonal", 0.5, "delivery tonal variation, 0-1")
	f.BoolVar(&opts.combo, "combo", false, "enable the keyword combo multiplier")
	f.BoolVar(&opts.json, "json", false, "print the result as JSON")
	return cmd
}

func runScore(cmd *cobra.Command, root *rootOptions, opts *scoreOptions, args []string) error {
	ctx := cmd.Context()

	transcript, err := readTranscript(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := root.load(ctx)
	if err != nil {
		return err
	}
	if opts.combo {
		cfg.Combo.Enabled = true
	}
	engine, err := cfg.Engine()
	if err != nil {
		return err
	}

	in := model.PitchInput{
		Transcript:      transcript,
		DurationSeconds: opts.duration,
		AttentionLevel:  opts.attention,
	}
	f := cmd.Flags()
	if f.Changed("clarity") || f.Changed("pace") || f.Changed("confidence") || f.Changed("tonal") {
		in.Delivery = &model.DeliveryAnalysis{
			Clarity:        opts.clarity,
			Pace:           opts.pace,
			Confidence:     opts.confidence,
			TonalVariation: opts.tonal,
		}
	}

	res, err := engine.Score(ctx, in)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	return pitchsim.WriteScore(cmd.OutOrStdout(), res)
}

func readTranscript(stdin io.Reader, args []string) (string, error) {
	var (
		b   []byte
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
