package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/telemetry"
)

func TestParamVectorNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector(config.Defaults())
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		assert.InDelta(t, raw[i], back[i], 1e-9, pv.Specs[i].Name)
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector(config.Defaults())
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = math.Inf(1)
	}

	for i, c := range pv.Clamp(v) {
		assert.Equal(t, pv.Specs[i].Max, c)
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg := config.Defaults()
	pv := NewParamVector(cfg)

	values := pv.DefaultVector()
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "food.spawn_period":
			values[i] = 20.4
		case "critter.view_distance":
			values[i] = 120
		case "agent.trait_variance":
			values[i] = 0.9 // clamped to 0.5
		}
	}
	pv.ApplyToConfig(cfg, values)

	assert.Equal(t, 20, cfg.Food.SpawnPeriod)
	assert.Equal(t, 120.0, cfg.Critter.ViewDistance)
	assert.Equal(t, 120.0*120.0, cfg.Derived.ViewDistanceSq)
	assert.Equal(t, 0.5, cfg.Agent.TraitVariance)
	require.NoError(t, cfg.Validate())
}

func TestComputeQuality(t *testing.T) {
	assert.Zero(t, computeQuality(nil, 100))

	steady := make([]telemetry.WindowStats, 10)
	for i := range steady {
		steady[i] = telemetry.WindowStats{Critters: 30, Births: 30, EnergyP50: 50}
	}
	good := computeQuality(steady, 100)
	assert.Greater(t, good, 0.9)
	assert.LessOrEqual(t, good, 1.0)

	swinging := make([]telemetry.WindowStats, 10)
	for i := range swinging {
		swinging[i] = telemetry.WindowStats{Critters: 5 + 40*(i%2), Births: 0, EnergyP50: 5}
	}
	assert.Less(t, computeQuality(swinging, 100), good)
}

func TestComputeFitnessPrefersSurvival(t *testing.T) {
	assert.Less(t, computeFitness(2000, 0), computeFitness(1000, 1))
	assert.Less(t, computeFitness(1000, 1), computeFitness(1000, 0))
}

func TestEvaluateIsDeterministic(t *testing.T) {
	cfg := config.Defaults()
	spec, err := config.LoadWorldSpec("")
	require.NoError(t, err)

	pv := NewParamVector(cfg)
	fe := NewFitnessEvaluator(pv, 300, []int64{1, 2}, cfg, spec)

	x := pv.DefaultVector()
	a := fe.Evaluate(x)
	b := fe.Evaluate(x)
	assert.Equal(t, a, b)
	assert.Less(t, a, 0.0, "some ticks always survive")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1m05s", formatDuration(65e9))
	assert.Equal(t, "2h03m04s", formatDuration((2*3600+3*60+4)*1e9))
}
