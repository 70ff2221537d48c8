package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xopoww/glugen/app"
	"github.com/xopoww/glugen/config"
)

func newBuildCmd() *cobra.Command {
	var (
		configPath string
		check      bool
		initConfig bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run every job of the build manifest",
		Long: `Generates the standalone headers and shader-injected sources listed in the
manifest. Without --config, glugen.yaml in the working directory is used when
present, otherwise the default glu layout (glu/*.hpp -> dist/).

With --check nothing is written; stale outputs are printed as diffs and the
command fails. With --init the default manifest is written to --config (or
glugen.yaml) instead of building; an existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initConfig {
				return writeDefaultConfig(configPath)
			}

			var (
				cfg *config.Config
				err error
			)
			if configPath == "" {
				cfg, err = config.LoadOrDefault(config.DefaultPath)
			} else {
				cfg, err = config.Load(configPath)
			}
			if err != nil {
				return err
			}

			opts := []app.Option{app.WithLogger(logger)}
			if check {
				opts = append(opts, app.WithCheck(cmd.OutOrStdout()))
			}
			b, err := app.NewBuilder(cfg, opts...)
			if err != nil {
				return err
			}
			return b.Run()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "build manifest (.yaml or .toml)")
	cmd.Flags().BoolVar(&check, "check", false, "verify outputs are up to date without writing")
	cmd.Flags().BoolVar(&initConfig, "init", false, "write the default manifest and exit")
	return cmd
}

func writeDefaultConfig(path string) error {
	if path == "" {
		path = config.DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Default().Save(path); err != nil {
		return err
	}
	logger.Info("wrote default manifest", zap.String("path", path))
	return nil
}
