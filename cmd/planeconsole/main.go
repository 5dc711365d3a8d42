// Package main runs an interactive pipeline console with a few example commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	console "github.com/network-plane/planeconsole"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planeconsole",
		Short: "Interactive command pipeline console",
		Long: `An interactive console that runs pipelines of builtin commands and
external programs, e.g.

  > echo hello | upper
  > help | !grep exit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runConsole,
	}

	rootCmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML or TOML)")
	rootCmd.Flags().StringP("prompt", "p", "", "Prompt text (overrides config)")
	rootCmd.Flags().String("marker", "", "Prefix marking external program stages (overrides config)")
	rootCmd.Flags().StringP("log-level", "l", "", "Log level (debug, info, warn, error)")

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*console.Config, error) {
	cfg := console.DefaultConfig()
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		if cfg, err = console.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("prompt") {
		cfg.Prompt, _ = cmd.Flags().GetString("prompt")
	}
	if cmd.Flags().Changed("marker") {
		marker, _ := cmd.Flags().GetString("marker")
		cfg.ExternalMarker = &marker
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, cfg.Validate()
}

func runConsole(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := console.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	opts := append(cfg.Options(),
		console.WithLogger(logger),
		console.WithMiddleware(console.TimingMiddleware),
	)
	c := console.New(opts...)
	registerExamples(c)

	reader, err := console.NewLineReader(cfg.Interactive, c.Completer(), os.Stdin)
	if err != nil {
		return err
	}
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	c.SetLineReader(reader)

	logger.Debug("console starting", "prompt", cfg.Prompt, "interactive", cfg.Interactive)
	return c.Run(ctx)
}
