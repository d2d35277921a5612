// Package cli implements the pitchsim command line: offline scoring of a
// transcript and deterministic game simulation.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/pitchperfect/internal/config"
	"github.com/okian/pitchperfect/pkg/logger"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	verbose    bool
}

// NewRootCmd builds the pitchsim command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "pitchsim",
		Short: "Score pitches and simulate games offline",
		Long: `pitchsim runs the pitch scoring engine and the game loop without the
HTTP service.

Configuration is read from --config (YAML) and PITCH_* environment
variables, exactly like the server.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.ErrOrStderr()); err != nil {
				return err
			}
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			return logger.SetLevelString(level)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (default: $PITCH_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(newScoreCmd(opts), newSimulateCmd(opts), newLoadCmd())
	return cmd
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// load reads the configuration the same way the server does, with --config
// taking the place of PITCH_CONFIG when given.
func (o *rootOptions) load(ctx context.Context) (*config.Config, error) {
	if o.configFile == "" {
		return config.Load(ctx)
	}
	return config.LoadFile(ctx, o.configFile)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
