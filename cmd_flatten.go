package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xopoww/glugen/flatten"
)

func newFlattenCmd() *cobra.Command {
	var allowIndent bool

	cmd := &cobra.Command{
		Use:   "flatten <in> <out>",
		Short: "Inline local #include directives into one standalone file",
		Long: `Replaces every line-leading #include "path" directive of <in>, recursively,
with the content of the referenced file (resolved relative to the including
file) and writes the result to <out>. Circular includes are an error.`,
		Args: inOutArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("generating", zap.String("input", args[0]), zap.String("output", args[1]))
			f := flatten.New(flatten.Options{AllowIndent: allowIndent, Logger: logger})
			return f.FlattenFile(args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&allowIndent, "allow-indent", false, "also match directives preceded by whitespace")
	return cmd
}
