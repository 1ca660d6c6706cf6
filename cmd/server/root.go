package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/budget-forecast/config"
	"github.com/warp/budget-forecast/store/sqlite"
)

var (
	flagConfig   string
	flagDB       string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "budget-forecast",
	Short:         "Budget forecast projection engine",
	Long:          "Project planned purchases, bills and income into a cash-flow timeline and monthly balances.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides config)")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Store.DBPath = flagDB
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	if flags.Changed("port") {
		cfg.Server.Port = flagPort
	}
	if flags.Changed("monitor-schedule") {
		cfg.Monitor.Schedule = flagMonitorSchedule
	}
	if flags.Changed("no-monitor") {
		cfg.Monitor.Enabled = !flagNoMonitor
	}
	return cfg, cfg.Validate()
}

// openStore opens the SQLite store and builds the logger.
func openStore(cfg config.Config) (*sqlite.Store, *logrus.Logger, error) {
	logger := cfg.Log.NewLogger()
	store, err := sqlite.New(cfg.Store.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.WithField("db", cfg.Store.DBPath).Debug("store opened")
	return store, logger, nil
}
