// Package traits defines the heritable behavioral parameters of a critter.
package traits

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Trait identifies one heritable parameter.
type Trait uint8

const (
	ReproductionPeriod          Trait = iota // Ticks between reproduction attempts
	ReproductionEnergyThreshold              // Energy required before seeking a mate
	MeanTurnInterval                         // Mean seconds between idle turns
	AgentMoveSpeed                           // Distance moved per tick

	NumTraits int = iota
)

var traitNames = [NumTraits]string{
	ReproductionPeriod:          "reproduction_period",
	ReproductionEnergyThreshold: "reproduction_energy_threshold",
	MeanTurnInterval:            "mean_turn_interval",
	AgentMoveSpeed:              "agent_move_speed",
}

// All returns every trait in declaration order.
func All() []Trait {
	all := make([]Trait, NumTraits)
	for i := range all {
		all[i] = Trait(i)
	}
	return all
}

// String returns the configuration name of the trait.
func (t Trait) String() string {
	if int(t) < NumTraits {
		return traitNames[t]
	}
	return fmt.Sprintf("trait(%d)", uint8(t))
}

// ParseTrait looks a trait up by its configuration name.
func ParseTrait(name string) (Trait, bool) {
	for i, n := range traitNames {
		if n == name {
			return Trait(i), true
		}
	}
	return 0, false
}

// Bound holds the base value and allowed range of one trait.
type Bound struct {
	Base float64 `yaml:"base"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

// Clamp limits v to [Min, Max].
func (b Bound) Clamp(v float64) float64 {
	return math.Min(math.Max(v, b.Min), b.Max)
}

// Bounds is the trait-bounds table, indexed by Trait.
type Bounds [NumTraits]Bound

// Validate reports every inconsistent bound.
func (bs *Bounds) Validate() error {
	var errs []error
	for i, b := range bs {
		name := Trait(i).String()
		if math.IsNaN(b.Base) || math.IsNaN(b.Min) || math.IsNaN(b.Max) {
			errs = append(errs, fmt.Errorf("%s: NaN bound", name))
			continue
		}
		if b.Min > b.Max {
			errs = append(errs, fmt.Errorf("%s: min %v > max %v", name, b.Min, b.Max))
			continue
		}
		if b.Base < b.Min || b.Base > b.Max {
			errs = append(errs, fmt.Errorf("%s: base %v outside [%v, %v]", name, b.Base, b.Min, b.Max))
		}
	}
	return errors.Join(errs...)
}

// Genome holds one value per trait.
type Genome [NumTraits]float64

// NewInitial returns a genome with every trait at its base value.
func NewInitial(bounds *Bounds) Genome {
	var g Genome
	for i, b := range bounds {
		g[i] = b.Base
	}
	return g
}

// NewFromParents derives a child genome. Each trait is the parents' average
// plus a uniform perturbation of up to variance*average, clamped to bounds.
// A zero variance yields the exact average and never draws from rng.
func NewFromParents(a, b *Genome, variance float64, bounds *Bounds, rng *rand.Rand) Genome {
	var g Genome
	for i := range g {
		avg := (a[i] + b[i]) / 2
		if variance != 0 {
			avg += (rng.Float64()*2 - 1) * variance * avg
		}
		g[i] = bounds[i].Clamp(avg)
	}
	return g
}

// Get returns the value of a trait.
func (g *Genome) Get(t Trait) float64 {
	return g[t]
}

// Named returns the genome keyed by trait name.
func (g *Genome) Named() map[string]float64 {
	m := make(map[string]float64, NumTraits)
	for i, v := range g {
		m[traitNames[i]] = v
	}
	return m
}

// Within reports whether every trait lies inside its bounds.
func (g *Genome) Within(bounds *Bounds) bool {
	for i, v := range g {
		if v < bounds[i].Min || v > bounds[i].Max {
			return false
		}
	}
	return true
}
