package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/critters/config"
)

// formatDuration formats a duration as 1h02m03s, or 2m03s when under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

type optimizeOptions struct {
	configPath string
	worldPath  string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func newRootCmd() *cobra.Command {
	var opts optimizeOptions
	cmd := &cobra.Command{
		Use:          "optimize",
		Short:        "Search simulation parameters for long-lived, stable critter populations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.OutOrStdout(), nil)))
			return runOptimize(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	f.StringVar(&opts.worldPath, "world", "", "World spec (empty = built-in world)")
	f.IntVar(&opts.maxTicks, "max-ticks", 54000, "Maximum simulation duration in ticks (cap)")
	f.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	f.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	f.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	f.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func runOptimize(opts optimizeOptions) error {
	if opts.seeds < 1 {
		return errors.New("--seeds must be at least 1")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := baseCfg.Validate(); err != nil {
		return err
	}
	spec, err := config.LoadWorldSpec(opts.worldPath)
	if err != nil {
		return fmt.Errorf("loading world: %w", err)
	}

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, opts.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, opts.maxTicks, evalSeeds, baseCfg, spec)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	popSize := opts.population
	if popSize == 0 {
		// Auto-size: 4 + floor(3*ln(n))
		popSize = 4 + int(3.0*math.Log(float64(dim)))
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.maxEvals,
		Concurrent:      0, // Seeds already run in parallel
	}

	logFile, err := os.Create(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := logWriter.Write(header); err != nil {
		return fmt.Errorf("writing log header: %w", err)
	}

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// CMA-ES explores the unit box; clamp back into parameter bounds.
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			quality := evaluator.LastQuality()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.4f", quality)}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			logWriter.Write(row)
			logWriter.Flush()

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(opts.maxEvals-evalCount) * avgPerEval

			// Fitness = -(survivalTicks × (1 + 0.2×quality))
			survivalSec := -fitness / (1.0 + 0.2*quality) / float64(baseCfg.World.Framerate)
			slog.Info("evaluation",
				"eval", evalCount,
				"max_evals", opts.maxEvals,
				"survived_sec", math.Round(survivalSec),
				"quality", quality,
				"best", bestFitness,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(remaining),
			)

			return fitness
		},
	}

	slog.Info("starting CMA-ES optimization",
		"params", dim,
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"max_ticks", opts.maxTicks,
	)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		return errors.New("optimization produced no evaluations")
	}

	slog.Info("optimization complete",
		"evals", evalCount,
		"elapsed", formatDuration(time.Since(startTime)),
		"best_fitness", bestFitness,
	)
	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "value", bestParams[i])
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, bestParams)

	configOutPath := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best config saved", "path", configOutPath)
	return nil
}
