package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xopoww/glugen/inject"
)

func newInjectCmd() *cobra.Command {
	var (
		shaderDir    string
		templatePath string
	)

	cmd := &cobra.Command{
		Use:   "inject <in> <out>",
		Short: "Embed shader files referenced by load calls",
		Long: `Rewrites every RGC_SHADER_INJECTOR_LOAD_SRC(dest, "file") call of <in> to load
a generated string constant instead, defines the constants in place of the
RGC_SHADER_INJECTOR_INJECTION_POINT line and writes the result to <out>.`,
		Args: inOutArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := inject.Options{ShaderDir: shaderDir, Logger: logger}
			if templatePath != "" {
				data, err := os.ReadFile(templatePath)
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				opts.DefinitionTemplate = string(data)
			}

			in, err := inject.New(opts)
			if err != nil {
				return err
			}
			logger.Info("generating", zap.String("input", args[0]), zap.String("output", args[1]))
			return in.Inject(args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&shaderDir, "shader-dir", "", "directory relative shader paths are resolved against (default: working directory)")
	cmd.Flags().StringVar(&templatePath, "template", "", "text/template file rendering one constant definition")
	return cmd
}
