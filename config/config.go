// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/critters/agent"
	"github.com/pthm-cable/critters/traits"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfiguration is wrapped by every validation failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	RandomSeed string          `yaml:"random_seed"` // hashed into the RNG seed; empty means time-based
	World      WorldConfig     `yaml:"world"`
	Critter    CritterConfig   `yaml:"critter"`
	Food       FoodConfig      `yaml:"food"`
	Agent      AgentConfig     `yaml:"agent"`
	Skeleton   SkeletonConfig  `yaml:"skeleton"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world timing and tiling.
// World extents come from the world spec: cols*tile_size by rows*tile_size.
type WorldConfig struct {
	TileSize       int `yaml:"tile_size"`
	Framerate      int `yaml:"framerate"`       // ticks per simulated second
	AgeingInterval int `yaml:"ageing_interval"` // seconds per sprite age group
}

// CritterConfig holds critter body parameters.
type CritterConfig struct {
	InitialEnergy      float64 `yaml:"initial_energy"`
	EnergyDecayRate    float64 `yaml:"energy_decay_rate"` // per tick
	ReproductionCost   float64 `yaml:"reproduction_cost"` // paid by the initiator only
	ViewDistance       float64 `yaml:"view_distance"`
	MaxMoveSpeed       float64 `yaml:"max_move_speed"`
	MaturityAge        int     `yaml:"maturity_age"` // seconds
	ReproductionRadius float64 `yaml:"reproduction_radius"`
	StartingMales      int     `yaml:"starting_males"`
	StartingFemales    int     `yaml:"starting_females"`
	HeartTime          int     `yaml:"heart_time"` // seconds
}

// FoodConfig holds food parameters.
type FoodConfig struct {
	SpawnPeriod     int     `yaml:"spawn_period"` // ticks between spawns
	Energy          float64 `yaml:"energy"`
	CollisionRadius float64 `yaml:"collision_radius"`
	InitialCount    int     `yaml:"initial_count"`
}

// AgentConfig holds decision and inheritance parameters.
type AgentConfig struct {
	TraitVariance          float64      `yaml:"trait_variance"`
	CritterAvoidanceRadius float64      `yaml:"critter_avoidance_radius"`
	SceneryAvoidanceRadius float64      `yaml:"scenery_avoidance_radius"`
	AvoidanceTime          float64      `yaml:"avoidance_time"` // seconds
	Traits                 TraitsConfig `yaml:"traits"`
}

// TraitsConfig holds the base value and range of every heritable trait.
type TraitsConfig struct {
	ReproductionPeriod          traits.Bound `yaml:"reproduction_period"`
	ReproductionEnergyThreshold traits.Bound `yaml:"reproduction_energy_threshold"`
	MeanTurnInterval            traits.Bound `yaml:"mean_turn_interval"`
	AgentMoveSpeed              traits.Bound `yaml:"agent_move_speed"`
}

// Bounds returns the table form indexed by trait.
func (t *TraitsConfig) Bounds() traits.Bounds {
	var b traits.Bounds
	b[traits.ReproductionPeriod] = t.ReproductionPeriod
	b[traits.ReproductionEnergyThreshold] = t.ReproductionEnergyThreshold
	b[traits.MeanTurnInterval] = t.MeanTurnInterval
	b[traits.AgentMoveSpeed] = t.AgentMoveSpeed
	return b
}

// SkeletonConfig holds death marker parameters.
type SkeletonConfig struct {
	Enabled bool `yaml:"enabled"`
	Time    int  `yaml:"time"` // seconds before removal
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds per sample
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ViewDistanceSq           float64
	CollisionRadiusSq        float64
	ReproductionRadiusSq     float64
	SceneryAvoidanceRadiusSq float64
	SkeletonTicks            int
	Bounds                   traits.Bounds
	AgentParams              agent.Params
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// ComputeDerived recalculates values derived from the loaded config.
// Call it again after changing fields programmatically.
func (c *Config) ComputeDerived() {
	c.Derived.ViewDistanceSq = c.Critter.ViewDistance * c.Critter.ViewDistance
	c.Derived.CollisionRadiusSq = c.Food.CollisionRadius * c.Food.CollisionRadius
	c.Derived.ReproductionRadiusSq = c.Critter.ReproductionRadius * c.Critter.ReproductionRadius
	c.Derived.SceneryAvoidanceRadiusSq = c.Agent.SceneryAvoidanceRadius * c.Agent.SceneryAvoidanceRadius
	c.Derived.SkeletonTicks = c.Skeleton.Time * c.World.Framerate
	c.Derived.Bounds = c.Agent.Traits.Bounds()
	c.Derived.AgentParams = agent.Params{
		Framerate:              c.World.Framerate,
		AvoidanceTime:          c.Agent.AvoidanceTime,
		CritterAvoidanceRadius: c.Agent.CritterAvoidanceRadius,
		SceneryAvoidanceRadius: c.Agent.SceneryAvoidanceRadius,
		ReproductionRadius:     c.Critter.ReproductionRadius,
	}
}

// Validate reports every impossible value. The returned error wraps
// ErrInvalidConfiguration.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}

	positive("world.tile_size", float64(c.World.TileSize))
	positive("world.framerate", float64(c.World.Framerate))
	positive("world.ageing_interval", float64(c.World.AgeingInterval))

	nonNegative("critter.initial_energy", c.Critter.InitialEnergy)
	nonNegative("critter.energy_decay_rate", c.Critter.EnergyDecayRate)
	nonNegative("critter.reproduction_cost", c.Critter.ReproductionCost)
	nonNegative("critter.view_distance", c.Critter.ViewDistance)
	nonNegative("critter.max_move_speed", c.Critter.MaxMoveSpeed)
	nonNegative("critter.maturity_age", float64(c.Critter.MaturityAge))
	nonNegative("critter.reproduction_radius", c.Critter.ReproductionRadius)
	nonNegative("critter.starting_males", float64(c.Critter.StartingMales))
	nonNegative("critter.starting_females", float64(c.Critter.StartingFemales))
	nonNegative("critter.heart_time", float64(c.Critter.HeartTime))

	positive("food.spawn_period", float64(c.Food.SpawnPeriod))
	nonNegative("food.energy", c.Food.Energy)
	nonNegative("food.collision_radius", c.Food.CollisionRadius)
	nonNegative("food.initial_count", float64(c.Food.InitialCount))

	if !(c.Agent.TraitVariance >= 0 && c.Agent.TraitVariance <= 1) {
		errs = append(errs, fmt.Errorf("agent.trait_variance must be in [0, 1], got %v", c.Agent.TraitVariance))
	}
	nonNegative("agent.critter_avoidance_radius", c.Agent.CritterAvoidanceRadius)
	nonNegative("agent.scenery_avoidance_radius", c.Agent.SceneryAvoidanceRadius)
	nonNegative("agent.avoidance_time", c.Agent.AvoidanceTime)

	bounds := c.Agent.Traits.Bounds()
	if err := bounds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("agent.traits: %w", err))
	}

	nonNegative("skeleton.time", float64(c.Skeleton.Time))
	positive("telemetry.stats_window", c.Telemetry.StatsWindow)
	nonNegative("telemetry.perf_collector_window", float64(c.Telemetry.PerfCollectorWindow))

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
}

// Seed converts RandomSeed into an RNG seed. ok is false when no seed is set.
func (c *Config) Seed() (seed int64, ok bool) {
	if c.RandomSeed == "" {
		return 0, false
	}
	h := fnv.New64a()
	h.Write([]byte(c.RandomSeed))
	return int64(h.Sum64() & math.MaxInt64), true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
