// Package components defines ECS components for the simulation.
//
// Every entity carries a Position and an Object header. The remaining
// component marks the variant: Critter, Food, Scenery or Skeleton.
package components

import (
	"github.com/pthm-cable/critters/agent"
	"github.com/pthm-cable/critters/traits"
)

// Kind is the closed set of entity variants.
type Kind = agent.Kind

const (
	KindCritter  = agent.KindCritter
	KindFood     = agent.KindFood
	KindScenery  = agent.KindScenery
	KindSkeleton = agent.KindSkeleton
)

// NumKinds is the number of entity variants.
const NumKinds = 4

// Gender of a critter.
type Gender = agent.Gender

const (
	Male   = agent.Male
	Female = agent.Female
)

// Object is the header shared by every entity.
type Object struct {
	ID   uint32 // per-world serial, never reused within a run
	Kind Kind
}

// Critter holds the state of a living critter.
type Critter struct {
	Direction      float64 // radians, clockwise-positive, [0, 2*Pi)
	Energy         float64
	Age            int // simulated seconds
	Gender         Gender
	Genome         traits.Genome
	Agent          agent.State
	HeartCountdown int // seconds left on the mating heart
	Ticks          int // drives ageing; offset for initial critters

	// Lineage
	Generation int
	ParentID   uint32
}

// Mature reports whether the critter may reproduce.
func (c *Critter) Mature(maturityAge int) bool {
	return c.Age >= maturityAge
}

// AgeBucket maps age onto the four sprite age groups.
func (c *Critter) AgeBucket(ageingInterval int) int {
	if ageingInterval <= 0 {
		return 3
	}
	return min(c.Age/ageingInterval, 3)
}

// Food is an edible item.
type Food struct {
	Energy float64
}

// Scenery is a static obstacle.
type Scenery struct {
	Type SceneryType
}

// Skeleton marks where a critter died. It has no effect on the simulation.
type Skeleton struct {
	Countdown int // ticks until removal
}

// SceneryType identifies a scenery sprite.
type SceneryType uint8

const (
	Palm SceneryType = iota
	Oak
	DeadTree
	Pine
	Fern
	Rocks
	Stump
	YellowFlowers
	PinkFlowers
	numSceneryTypes
)

var sceneryNames = [numSceneryTypes]string{
	Palm:          "palm",
	Oak:           "oak",
	DeadTree:      "dead_tree",
	Pine:          "pine",
	Fern:          "fern",
	Rocks:         "rocks",
	Stump:         "stump",
	YellowFlowers: "yellow_flowers",
	PinkFlowers:   "pink_flowers",
}

func (t SceneryType) String() string {
	if t < numSceneryTypes {
		return sceneryNames[t]
	}
	return "unknown"
}

// ParseSceneryType looks a scenery type up by its world-spec name.
func ParseSceneryType(name string) (SceneryType, bool) {
	for i, n := range sceneryNames {
		if n == name {
			return SceneryType(i), true
		}
	}
	return 0, false
}
