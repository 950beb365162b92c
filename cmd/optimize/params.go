// Package main provides CMA-ES optimization for critter simulation parameters.
package main

import (
	"math"

	"github.com/pthm-cable/critters/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Config path, also used for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Apply   func(cfg *config.Config, v float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Defaults are read from base so the search starts at the user's config.
func NewParamVector(base *config.Config) *ParamVector {
	round := func(v float64) int { return int(math.Round(v)) }
	return &ParamVector{
		Specs: []ParamSpec{
			// Food supply
			{Name: "food.spawn_period", Min: 3, Max: 90, Default: float64(base.Food.SpawnPeriod),
				Apply: func(c *config.Config, v float64) { c.Food.SpawnPeriod = max(1, round(v)) }},
			{Name: "food.energy", Min: 10, Max: 150, Default: base.Food.Energy,
				Apply: func(c *config.Config, v float64) { c.Food.Energy = v }},
			{Name: "food.collision_radius", Min: 4, Max: 30, Default: base.Food.CollisionRadius,
				Apply: func(c *config.Config, v float64) { c.Food.CollisionRadius = v }},
			// Metabolism
			{Name: "critter.energy_decay_rate", Min: 0.02, Max: 0.5, Default: base.Critter.EnergyDecayRate,
				Apply: func(c *config.Config, v float64) { c.Critter.EnergyDecayRate = v }},
			{Name: "critter.initial_energy", Min: 30, Max: 250, Default: base.Critter.InitialEnergy,
				Apply: func(c *config.Config, v float64) { c.Critter.InitialEnergy = v }},
			// Reproduction
			{Name: "critter.reproduction_cost", Min: 5, Max: 120, Default: base.Critter.ReproductionCost,
				Apply: func(c *config.Config, v float64) { c.Critter.ReproductionCost = v }},
			{Name: "critter.reproduction_radius", Min: 10, Max: 80, Default: base.Critter.ReproductionRadius,
				Apply: func(c *config.Config, v float64) { c.Critter.ReproductionRadius = v }},
			{Name: "critter.maturity_age", Min: 2, Max: 60, Default: float64(base.Critter.MaturityAge),
				Apply: func(c *config.Config, v float64) { c.Critter.MaturityAge = round(v) }},
			// Senses
			{Name: "critter.view_distance", Min: 30, Max: 250, Default: base.Critter.ViewDistance,
				Apply: func(c *config.Config, v float64) { c.Critter.ViewDistance = v }},
			// Inheritance
			{Name: "agent.trait_variance", Min: 0, Max: 0.5, Default: base.Agent.TraitVariance,
				Apply: func(c *config.Config, v float64) { c.Agent.TraitVariance = v }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice, clamped
// into the search box.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to cfg and refreshes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].Apply(cfg, v)
	}
	cfg.ComputeDerived()
}
