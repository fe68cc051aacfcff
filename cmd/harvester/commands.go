package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"altibbi/internal/config"
	"altibbi/internal/logger"
	"altibbi/internal/models"
	"altibbi/internal/pipeline"
)

type options struct {
	configFile string
	dataDir    string
	logLevel   string
	only       []string
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "harvester",
		Short:         "Download articles, news and questions from the search API",
		Long:          "Fetches every configured collection page by page, writes one JSON file per record and combines each collection into a single array.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHarvest(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to YAML configuration file (default "+config.DefaultConfigPath+" if present)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Output directory (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.StringSliceVar(&opts.only, "only", nil, "Limit the run to the named collection (repeatable)")

	rootCmd.AddCommand(newCombineCmd(opts), newStatusCmd(opts))

	return rootCmd
}

func newCombineCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "combine",
		Short: "Rebuild combined files from existing record files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, cols, err := setup(opts)
			if err != nil {
				return err
			}

			results := pipeline.NewDriver(cfg, log).CombineOnly(cols)
			fmt.Fprint(cmd.OutOrStdout(), pipeline.SummaryTable(results))

			return nil
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show checkpoints, record counts and combined files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, cols, err := setup(opts)
			if err != nil {
				return err
			}

			statuses, err := pipeline.NewDriver(cfg, log).Status(cols)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), pipeline.StatusTable(statuses))

			return nil
		},
	}
}

func runHarvest(cmd *cobra.Command, opts *options) error {
	cfg, log, cols, err := setup(opts)
	if err != nil {
		return err
	}

	log.Info("Starting harvest", "collections", len(cols), "data_dir", cfg.Output.DataDir)

	results, err := pipeline.NewDriver(cfg, log).Run(cmd.Context(), cols)

	fmt.Fprint(cmd.OutOrStdout(), pipeline.SummaryTable(results))

	return err
}

// setup loads configuration, applies flag overrides and selects collections.
func setup(opts *options) (*config.Config, *logger.Logger, []models.Collection, error) {
	cfg, err := config.LoadConfig(config.ResolvePath(opts.configFile))
	if err != nil {
		return nil, nil, nil, err
	}

	if opts.dataDir != "" {
		cfg.Output.DataDir = opts.dataDir
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid flags: %w", err)
	}

	log := logger.NewLoggerWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	log.Debug("Configuration loaded", "config", cfg.String())

	cols, err := cfg.SelectCollections(opts.only)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, log, cols, nil
}

// execute runs the CLI and returns the process exit code.
// Collection aborts still exit 0; only fatal errors fail the process.
func execute(ctx context.Context) int {
	if err := newRootCmd(&options{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)

		return 1
	}

	return 0
}
