package main

import (
	"io"

	"femtrans/internal/config"
	"femtrans/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout, errOut: stderr, logger: zap.NewNop()}
	var configPath, logLevel string

	root := &cobra.Command{
		Use:           "femtrans",
		Short:         "Normalize finite element model snapshots",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `femtrans reads a solver-neutral JSON model snapshot, rewrites it into its
analysis-ready form and validates the result.

Settings come from --config (YAML) and FEMTRANS_* environment variables.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		translateCmd(a),
		validateCmd(a),
		inspectCmd(a),
	)
	return root
}
