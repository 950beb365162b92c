package main

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/game"
	"github.com/pthm-cable/critters/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	spec        *config.WorldSpec
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config, spec *config.WorldSpec) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		spec:        spec,
		statsWindow: 10.0, // 10 seconds per window
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: below this for extinctionGraceSec the run
// counts as functionally extinct.
const (
	minViablePop       = 2
	extinctionGraceSec = 30.0
	warmupSec          = 5.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int                     // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected each window
	initialEnergy float64
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Every seed runs in its own goroutine on its own World.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := computeQuality(result.windowStats, result.initialEnergy)
			results[idx] = seedResult{
				fitness: computeFitness(result.survivalTicks, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless simulation run.
// Runs until functional extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{initialEnergy: cfg.Critter.InitialEnergy}

	w, err := game.New(cfg, fe.spec, rand.New(rand.NewSource(seed)))
	if err != nil {
		// An unusable parameter set never survives.
		return result
	}
	w.SetTelemetry(game.TelemetryOptions{
		Collector: telemetry.NewCollector("optimize", fe.statsWindow, cfg.World.Framerate),
		OnWindow: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})

	fps := cfg.World.Framerate
	graceTicks := int(extinctionGraceSec * float64(fps))
	warmupTicks := int(warmupSec * float64(fps))
	belowTicks := 0

	for w.TickCount() < fe.maxTicks {
		w.Tick()

		tick := w.TickCount()
		if tick < warmupTicks {
			continue
		}

		n := w.Count(components.KindCritter)
		if n == 0 {
			result.survivalTicks = tick
			return result
		}
		if n < minViablePop {
			belowTicks++
		} else {
			belowTicks = 0
		}
		if belowTicks >= graceTicks {
			result.survivalTicks = tick
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// copyConfig returns an independent copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func computeFitness(survivalTicks int, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.40
	qualityWeightEnergy    = 0.30
	qualityWeightTurnover  = 0.30

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 4 // exclude windows with fewer critters
)

// computeQuality computes population quality ∈ [0, 1] from window stats.
// initialEnergy scales the energy health score.
func computeQuality(windows []telemetry.WindowStats, initialEnergy float64) float64 {
	if len(windows) <= qualityWarmupWindows || initialEnergy <= 0 {
		return 0
	}

	var energySum, turnoverSum float64
	counts := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Critters < qualityMinPop {
			continue
		}
		counts = append(counts, float64(w.Critters))

		// Energy health: median near half the birth energy
		energySum += math.Exp(-math.Pow((w.EnergyP50/initialEnergy-0.5)/0.3, 2))

		// Turnover: some births per critter each window
		perCritter := float64(w.Births) / float64(w.Critters)
		turnoverSum += 1.0 - math.Exp(-perCritter/0.3)
	}

	if len(counts) == 0 {
		return 0
	}
	n := float64(len(counts))

	stabilityScore := 0.0
	if len(counts) >= 2 {
		c := cv(counts)
		stabilityScore = math.Exp(-c * c)
	}

	quality := qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energySum/n +
		qualityWeightTurnover*turnoverSum/n

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
