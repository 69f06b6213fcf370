// Package main provides the lockreact CLI: browser, terminal and SSH play.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lockreact/internal/config"
	"lockreact/internal/logging"
)

var (
	configPath string
	envPath    string
	logLevel   string
	logPretty  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lockreact",
		Short:         "Lock-light reaction time trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "lockreact.yaml", "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", true, "human-readable console logs")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newSSHCmd())

	return rootCmd
}

// loadConfig resolves defaults, file, environment and then explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(envPath); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringFlag(cmd, "log-level", &cfg.Log.Level, logLevel)
	applyBoolFlag(cmd, "log-pretty", &cfg.Log.Pretty, logPretty)
	return cfg, nil
}

// setupLogging points the global logger at out, or stderr when out is nil.
func setupLogging(cfg config.Config, out io.Writer) error {
	if err := logging.Setup(logging.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Out: out}); err != nil {
		return err
	}
	log.Debug().Str("config", configPath).Msg("configuration loaded")
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyBoolFlag(cmd *cobra.Command, name string, target *bool, value bool) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyDurationFlag(cmd *cobra.Command, name string, target *time.Duration, value time.Duration) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}
