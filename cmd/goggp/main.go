// Command goggp checks, plays, benchmarks and cross-verifies games written
// in the game description language.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitrdm/goggp/internal/config"
	"github.com/gitrdm/goggp/internal/logging"
	"github.com/gitrdm/goggp/pkg/statemachine"
)

var (
	// Global flags
	configPath string
	logLevel   string
	backend    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "goggp",
	Short: "Game description rules engine",
	Long: `goggp answers state-transition queries for games written in the game
description language, using either a backward-chaining prover or a compiled
propositional network.

A GAME argument is the name of a bundled game (see "goggp games") or the
path of a .kif file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if backend != "" {
			cfg.Engine.Backend = backend
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "goggp.yaml", "Config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "State machine backend (prover, propnet)")

	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(verifyCmd)
}

// machineOptions returns the configured engine options with the logger.
func machineOptions() statemachine.Options {
	opts := cfg.StateMachineOptions()
	opts.Logger = logger
	return opts
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
