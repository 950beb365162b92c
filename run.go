package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/telemetry"
)

// runOptions holds the run command's flags.
type runOptions struct {
	configPath  string
	worldPath   string
	seed        int64
	seedSet     bool
	maxTicks    int
	outputDir   string
	realtime    bool
	logStats    bool
	statsWindow float64
}

// loadInputs reads and validates the configuration and world spec.
func loadInputs(configPath, worldPath string) (*config.Config, *config.WorldSpec, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	spec, err := config.LoadWorldSpec(worldPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading world: %w", err)
	}
	return cfg, spec, nil
}

// resolveSeed picks the RNG seed: the flag, then the config's random_seed,
// then the clock.
func resolveSeed(opts runOptions, cfg *config.Config) int64 {
	if opts.seedSet {
		return opts.seed
	}
	if seed, ok := cfg.Seed(); ok {
		return seed
	}
	return time.Now().UnixNano()
}

// runSimulation builds a world and ticks it until ctx is done or maxTicks
// is reached.
func runSimulation(ctx context.Context, opts runOptions) (*game.World, error) {
	cfg, spec, err := loadInputs(opts.configPath, opts.worldPath)
	if err != nil {
		return nil, err
	}
	if opts.statsWindow > 0 {
		cfg.Telemetry.StatsWindow = opts.statsWindow
	}

	seed := resolveSeed(opts, cfg)
	w, err := game.New(cfg, spec, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := slog.With("run_id", runID)

	output, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := output.Close(); err != nil {
			log.Error("failed to close output", "error", err)
		}
	}()
	if err := output.WriteConfig(cfg); err != nil {
		return nil, err
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	w.SetPerfCollector(perf)
	w.SetTelemetry(game.TelemetryOptions{
		Collector: telemetry.NewCollector(runID, cfg.Telemetry.StatsWindow, cfg.World.Framerate),
		Output:    output,
		Bookmarks: telemetry.NewBookmarkDetector(10),
		LogStats:  opts.logStats,
	})

	log.Info("starting simulation",
		"seed", seed,
		"width", w.Width(),
		"height", w.Height(),
		"critters", w.Count(components.KindCritter),
		"max_ticks", opts.maxTicks,
		"realtime", opts.realtime,
		"output_dir", output.Dir(),
	)

	var frames <-chan time.Time
	if opts.realtime {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.World.Framerate))
		defer ticker.Stop()
		frames = ticker.C
	}

	start := time.Now()
loop:
	for opts.maxTicks <= 0 || w.TickCount() < opts.maxTicks {
		if frames != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-frames:
				perf.RecordFrame()
			}
		} else if ctx.Err() != nil {
			break
		}
		w.Tick()
	}

	stats := w.Stats()
	log.Info("simulation finished",
		"ticks", w.TickCount(),
		"critters", w.Count(components.KindCritter),
		"food", w.Count(components.KindFood),
		"births", stats.Births,
		"deaths", stats.Deaths,
		"food_eaten", stats.FoodEaten,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return w, nil
}
