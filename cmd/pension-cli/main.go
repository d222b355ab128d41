// Package main provides the pension advisor command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pension/backend/internal/bootstrap"
	"github.com/pension/backend/internal/infrastructure/config"
	"github.com/pension/backend/internal/infrastructure/logger"
)

// cli carries global flags and the services built before each command
type cli struct {
	cfgFile  string
	dataFile string
	jsonOut  bool
	noColor  bool
	verbose  bool

	app *bootstrap.App
	log *zap.Logger
	ui  *UI
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "pension-cli",
		Short: "养老保险产品分析与推荐工具",
		Long: `pension-cli loads a pension insurance product table and answers
catalog and recommendation queries from the command line.

Without --data or a configured data.path the built-in demo catalog is used.
All commands support --json for automation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.cfgFile, "config", "c", "", "config file path (default: ./config.toml if present)")
	flags.StringVarP(&c.dataFile, "data", "d", "", "product table to load (CSV or XLSX)")
	flags.BoolVar(&c.jsonOut, "json", false, "output in JSON format")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log loading details to stderr")

	root.AddCommand(
		c.newSummaryCmd(),
		c.newSearchCmd(),
		c.newListCmd(),
		c.newShowCmd(),
		c.newRecommendCmd(),
		c.newAdviceCmd(),
		c.newCompareCmd(),
		c.newExportCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(c.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.dataFile != "" {
		cfg.Data.Path = c.dataFile
	}
	// One-shot runs neither restore nor write snapshots and expose no metrics
	cfg.Snapshot.Backend = config.SnapshotBackendNone
	cfg.Metrics.Enabled = false

	level := "warn"
	if c.verbose {
		level = "debug"
	}
	c.log, err = logger.New(&logger.Config{
		Level:  level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c.app, err = bootstrap.New(ctx, cfg, c.log)
	if err != nil {
		return err
	}
	source, err := c.app.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	c.log.Debug("catalog loaded",
		zap.String("source", source),
		zap.Int("products", c.app.Catalog.Current().Len()),
	)

	c.ui = NewUI(cmd.OutOrStdout(), c.noColor)
	return nil
}

func (c *cli) teardown() error {
	if c.log != nil {
		logger.Sync(c.log)
	}
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
