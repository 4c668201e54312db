package main

import (
	"io"
	"log/slog"

	"github.com/aretw0/journey/internal/cli"
	"github.com/aretw0/journey/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer

	verbose bool
	format  string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "journey",
	Short: "Design, simulate and analyze customer journeys",
	Long: `journey models marketing funnels as probabilistic state machines.
Journeys are simulated with reproducible Monte Carlo cohorts to find
where customers drop off and which channels carry them forward.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		var err error
		cfg, err = config.Load(files...)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("store") {
			cfg.Store, _ = flags.GetString("store")
		}
		if flags.Changed("data-dir") {
			cfg.DataDir, _ = flags.GetString("data-dir")
			if !flags.Changed("sqlite-path") {
				cfg.SQLitePath = config.DefaultSQLitePath(cfg.DataDir)
			}
		}
		if flags.Changed("sqlite-path") {
			cfg.SQLitePath, _ = flags.GetString("sqlite-path")
		}
		if flags.Changed("redis-addr") {
			cfg.RedisAddr, _ = flags.GetString("redis-addr")
		}
		if flags.Changed("catalog") {
			cfg.CatalogDir, _ = flags.GetString("catalog")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, logCloser, err = cli.CreateLogger(cfg, verbose)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVarP(&format, "format", "f", cli.FormatJSON, "output format: json or markdown")
	pf.StringVar(&envFile, "env-file", "", "load settings from this .env file (default ./.env)")
	pf.String("store", config.StoreFile, "journey store: memory, file, redis or sqlite (env JOURNEY_STORE)")
	pf.String("data-dir", ".journey", "directory for the file and sqlite stores (env JOURNEY_DATA_DIR)")
	pf.String("sqlite-path", "", "sqlite database path (env JOURNEY_SQLITE_PATH)")
	pf.String("redis-addr", "localhost:6379", "redis address (env JOURNEY_REDIS_ADDR)")
	pf.String("catalog", "", "read-only directory of journey definition files (env JOURNEY_CATALOG_DIR)")
}

// openBackend wires the engine for a command. The caller closes it.
func openBackend(cmd *cobra.Command) (*cli.Backend, error) {
	return cli.NewBackend(cmd.Context(), cfg, logger, nil)
}

func printer(cmd *cobra.Command) (*cli.Printer, error) {
	return cli.NewPrinter(cmd.OutOrStdout(), format)
}
