package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bonuskar/internal/config"
	"bonuskar/internal/history"
	"bonuskar/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dataDir    string

	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bonuskar",
	Short: "bonuskar - AH bonus shopping assistant",
	Long: `bonuskar scrapes the Albert Heijn bonus pages, classifies the
promotions into shopping buckets with an LLM, drives the products into
the online cart and records every run in a local shopping history.

The history lives in a single JSON file and is fully queryable from the
"history" command group.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if dataDir != "" {
			cfg.Files.History = filepath.Join(dataDir, filepath.Base(cfg.Files.History))
			cfg.Files.ProductCache = filepath.Join(dataDir, filepath.Base(cfg.Files.ProductCache))
			cfg.Logging.Dir = filepath.Join(dataDir, "logs")
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		if err := logging.Initialize(logging.Options{
			Dir:     cfg.Logging.Dir,
			Level:   cfg.Logging.Level,
			Enabled: cfg.Logging.Enabled,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		logging.Boot("bonuskar starting, history=%s", cfg.Files.History)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func openStore() (*history.Store, error) {
	store, err := history.Open(cfg.Files.History)
	if err != nil {
		return nil, fmt.Errorf("open shopping history: %w", err)
	}
	return store, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "bonuskar.yaml", "Configuration file")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Directory for history, cache and logs")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
