package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/investmatch/internal/config"
	"github.com/kailas-cloud/investmatch/internal/version"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	logLevel   string
	configPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:          "investmatch",
		Short:        "Startup investor recommendation service",
		Version:      version.String(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), &g)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.env, "env", config.GetEnv(), "Environment (selects config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file path (overrides --env lookup)")

	rootCmd.AddCommand(newServeCmd(&g), newIngestCmd(&g), newRecommendCmd(&g))
	return rootCmd
}

func newServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), g)
		},
	}
}

func newIngestCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load investors from a JSON file into the index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd.Context(), g, file, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file: an array of investors or {\"investors\": [...]}")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRecommendCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank investors for a startup profile read from a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd.Context(), g, file, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the startup profile")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadConfig(g *globalFlags) (config.Config, error) {
	if g.configPath != "" {
		cfg, err := config.LoadFile(g.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(g.env)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
