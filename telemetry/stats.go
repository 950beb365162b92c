package telemetry

import (
	"context"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/critters/traits"
)

// Summary describes how one quantity is distributed across the critters
// alive at the end of a window.
type Summary struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// Summarize computes the mean, sample standard deviation and empirical
// quantiles of values. values is sorted in place. An empty slice yields a
// zero Summary; a single value has zero spread.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	slices.Sort(values)

	s := Summary{
		P10: stat.Quantile(0.10, stat.Empirical, values, nil),
		P50: stat.Quantile(0.50, stat.Empirical, values, nil),
		P90: stat.Quantile(0.90, stat.Empirical, values, nil),
	}
	if n == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(values, nil)
	return s
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	RunID       string  `csv:"run_id"`
	WindowStart int     `csv:"-"`
	WindowEnd   int     `csv:"window_end"`
	SimTimeSec  float64 `csv:"sim_time"`

	// Population at window end
	Critters  int `csv:"critters"`
	Males     int `csv:"males"`
	Females   int `csv:"females"`
	Food      int `csv:"food"`
	Skeletons int `csv:"skeletons"`

	// Events during window
	Births      int `csv:"births"`
	Deaths      int `csv:"deaths"`
	FoodEaten   int `csv:"food_eaten"`
	FoodSpawned int `csv:"food_spawned"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	AgeMean       float64 `csv:"age_mean"`
	MaxGeneration int     `csv:"max_generation"`

	// Trait drift
	ReproductionPeriodMean          float64 `csv:"reproduction_period_mean"`
	ReproductionPeriodStd           float64 `csv:"reproduction_period_std"`
	ReproductionEnergyThresholdMean float64 `csv:"reproduction_energy_threshold_mean"`
	ReproductionEnergyThresholdStd  float64 `csv:"reproduction_energy_threshold_std"`
	MeanTurnIntervalMean            float64 `csv:"mean_turn_interval_mean"`
	MeanTurnIntervalStd             float64 `csv:"mean_turn_interval_std"`
	AgentMoveSpeedMean              float64 `csv:"agent_move_speed_mean"`
	AgentMoveSpeedStd               float64 `csv:"agent_move_speed_std"`
}

// setTrait stores the summary of one trait in its columns.
func (s *WindowStats) setTrait(t traits.Trait, sum Summary) {
	switch t {
	case traits.ReproductionPeriod:
		s.ReproductionPeriodMean, s.ReproductionPeriodStd = sum.Mean, sum.Std
	case traits.ReproductionEnergyThreshold:
		s.ReproductionEnergyThresholdMean, s.ReproductionEnergyThresholdStd = sum.Mean, sum.Std
	case traits.MeanTurnInterval:
		s.MeanTurnIntervalMean, s.MeanTurnIntervalStd = sum.Mean, sum.Std
	case traits.AgentMoveSpeed:
		s.AgentMoveSpeedMean, s.AgentMoveSpeedStd = sum.Mean, sum.Std
	}
}

// TraitMean returns the population mean of t at window end.
func (s WindowStats) TraitMean(t traits.Trait) float64 {
	switch t {
	case traits.ReproductionPeriod:
		return s.ReproductionPeriodMean
	case traits.ReproductionEnergyThreshold:
		return s.ReproductionEnergyThresholdMean
	case traits.MeanTurnInterval:
		return s.MeanTurnIntervalMean
	case traits.AgentMoveSpeed:
		return s.AgentMoveSpeedMean
	}
	return 0
}

func (s WindowStats) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("run_id", s.RunID),
		slog.Int("window_start", s.WindowStart),
		slog.Int("window_end", s.WindowEnd),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("critters", s.Critters),
		slog.Int("males", s.Males),
		slog.Int("females", s.Females),
		slog.Int("food", s.Food),
		slog.Int("skeletons", s.Skeletons),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("food_spawned", s.FoodSpawned),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("age_mean", s.AgeMean),
		slog.Int("max_generation", s.MaxGeneration),
	}
	for _, t := range traits.All() {
		attrs = append(attrs, slog.Float64(t.String()+"_mean", s.TraitMean(t)))
	}
	return attrs
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(s.attrs()...)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.LogAttrs(context.Background(), slog.LevelInfo, "stats", s.attrs()...)
}
