package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/critters/config"
)

var (
	configPath string
	worldPath  string
	opts       runOptions
)

var rootCmd = &cobra.Command{
	Use:           "critters",
	Short:         "Toroidal artificial-life simulation of foraging, mating critters",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// JSON to stdout for structured logging
		slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.OutOrStdout(), nil)))
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless until max ticks or a signal",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.configPath = configPath
		opts.worldPath = worldPath
		opts.seedSet = cmd.Flags().Changed("seed")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err := runSimulation(ctx, opts)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration and world spec without running",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, spec, err := loadInputs(configPath, worldPath)
		if err != nil {
			return err
		}
		w, h := spec.Extent(cfg.World.TileSize)
		slog.Info("configuration valid",
			"width", w,
			"height", h,
			"scenery", len(spec.Scenery),
			"starting_critters", cfg.Critter.StartingMales+cfg.Critter.StartingFemales,
		)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().StringVar(&worldPath, "world", "", "Path to world spec (empty = built-in world)")

	f := runCmd.Flags()
	f.Int64Var(&opts.seed, "seed", 0, "RNG seed (default: config random_seed, else time-based)")
	f.IntVar(&opts.maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	f.StringVar(&opts.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	f.BoolVar(&opts.realtime, "realtime", false, "Pace ticks to the configured framerate")
	f.BoolVar(&opts.logStats, "log-stats", false, "Output window and perf stats via slog")
	f.Float64Var(&opts.statsWindow, "stats-window", 0, "Stats window size in seconds (0 = use config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("critters failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
