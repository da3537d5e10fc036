package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jgoulah/wattlens/internal/config"
	"github.com/jgoulah/wattlens/internal/database"
	"github.com/jgoulah/wattlens/internal/logging"
)

var (
	cfgFile string
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "wattlens",
	Short: "Track household energy use and find consumption patterns",
	Long: `WattLens records household appliance inventories, predicts monthly consumption
and cost against a tiered tariff, and groups households by usage pattern.
Data is kept in a local SQLite database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "human-readable debug logging on stderr")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// newLogger builds the process logger from config and flags
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.GetLogLevel()
	if verbose {
		level = "debug"
	}
	return logging.New(level, verbose)
}

// openDB opens the database connection. The --db flag wins over config.
func openDB(cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	path := cfg.GetDBPath()
	if dbPath != "" {
		path = dbPath
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path, logger)
}

// money formats an amount with thousands separators and at most two decimals
func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

// env bundles what most commands need
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB
}

// setup loads config, builds the logger and opens the database
func setup() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	db, err := openDB(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) Close() {
	e.db.Close()
	e.logger.Sync()
}
