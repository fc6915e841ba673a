package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/golimit/internal/config"
	"github.com/njchilds90/golimit/internal/logging"
	"github.com/njchilds90/golimit/internal/metrics"
	"github.com/njchilds90/golimit/internal/resolver"
)

var rootCmd = &cobra.Command{
	Use:   "golimit",
	Short: "golimit computes symbolic limits of one-variable functions",
	Long:  `golimit evaluates lim f(x) as x approaches a point, from both sides,
the right or the left. It runs as a one-shot command, an interactive
prompt, an HTTP API or an MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// app bundles what every subcommand needs.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	resolver *resolver.Service
}

func setup(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)
	slog.SetDefault(logger)

	m := metrics.New()
	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		resolver: resolver.NewService(logger, resolver.WithMetrics(m), resolver.WithMaxOrder(cfg.Engine.MaxOrder)),
	}, nil
}
