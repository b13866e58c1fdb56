package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinkerbelle-io/tb-asset/internal/config"
	"github.com/tinkerbelle-io/tb-asset/internal/logging"
)

var (
	// Flags
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "tb-asset",
	Short: "TinkerBelle asset inventory agent",
	Long: `tb-asset inventories the machine it runs on: hardware identity, drives,
graphics adapters, memory modules and network adapters. The result is stored
against the asset registered under the machine's serial number.

Without a subcommand it runs "collect".`,
	SilenceUsage: true,
	RunE:         runCollect,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: tb-asset.yaml in ., ~/.config/tb-asset, /etc/tb-asset)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (env: TB_ASSET_LOG_LEVEL)")
	addCollectFlags(rootCmd)
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("tb-asset %s\n", version))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the logger. --log-level
// wins over the configured level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
