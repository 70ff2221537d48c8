// Command glugen prepares the glu headers and renderer sources for
// distribution.
//
// Usage:
//
//	glugen flatten <in> <out>   # inline local #include directives
//	glugen inject <in> <out>    # embed shader files as string constants
//	glugen build                # run glugen.yaml (or the default manifest)
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xopoww/glugen/logging"
)

var (
	// Global flags
	verbose   bool
	logFormat string

	logger *zap.Logger
)

// ErrMissingArgument is returned when a command gets too few positional
// arguments.
var ErrMissingArgument = errors.New("syntax error")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glugen",
		Short: "Generate standalone glu headers and shader-embedded sources",
		Long: `glugen is the build-time source generator of the glu library.

It flattens headers that include each other into standalone files and
embeds external shader files into C++ sources as string constants.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(verbose, logFormat)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "log format: console or json")

	rootCmd.AddCommand(newFlattenCmd(), newInjectCmd(), newBuildCmd())
	return rootCmd
}

// inOutArgs accepts exactly an input and an output path.
func inOutArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: %s <in> <out>", ErrMissingArgument, cmd.Name())
	}
	if len(args) > 2 {
		return fmt.Errorf("unexpected arguments %q", args[2:])
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
