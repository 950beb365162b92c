// Package agent implements the per-critter behavior policy.
//
// An agent sees only its own critter and the objects around it, each given as
// a toroidal offset from the critter. It returns a turn, a move distance and an
// optional mate; the world applies the action.
package agent

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/critters/traits"
)

// Kind identifies an entity variant.
type Kind uint8

const (
	KindCritter Kind = iota
	KindFood
	KindScenery
	KindSkeleton
)

var kindNames = [...]string{"critter", "food", "scenery", "skeleton"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Gender of a critter.
type Gender uint8

const (
	Male Gender = iota
	Female
)

func (g Gender) String() string {
	if g == Female {
		return "female"
	}
	return "male"
}

// Opposite returns the other gender.
func (g Gender) Opposite() Gender {
	if g == Male {
		return Female
	}
	return Male
}

// NoMate marks an action without a reproduction target.
const NoMate = -1

// wanderSentinel is the value of the wander draw that triggers a turn.
const wanderSentinel = 5

// Params are the world-level settings the policy reads.
type Params struct {
	Framerate              int     // ticks per simulated second
	AvoidanceTime          float64 // seconds spent moving away once triggered
	CritterAvoidanceRadius float64
	SceneryAvoidanceRadius float64
	ReproductionRadius     float64
}

// State is the memory an agent carries between ticks.
type State struct {
	Clock          int // ticks since the last mate was chosen
	AvoidCountdown int // ticks of avoidance remaining
}

// Self describes the deciding critter.
type Self struct {
	Direction float64
	Energy    float64
	Mature    bool
	Gender    Gender
	Genome    *traits.Genome
}

// Visible is one object in view, relative to the deciding critter.
type Visible struct {
	Kind   Kind
	DX, DY float64
	Gender Gender // critters only
	Mature bool   // critters only
}

// Action is the outcome of one decision.
type Action struct {
	Turn float64 // radians added to the current direction
	Move float64 // requested distance
	Mate int     // index into the visible slice, or NoMate
}

// Decide runs one tick of the policy.
//
// Avoidance takes priority over everything. When not avoiding, a mate may be
// selected, and the critter then either heads for the nearest food or wanders.
func Decide(s *State, self Self, visible []Visible, p *Params, rng *rand.Rand) Action {
	speed := self.Genome.Get(traits.AgentMoveSpeed)
	act := Action{Move: speed, Mate: NoMate}

	s.Clock++

	if s.AvoidCountdown > 0 {
		s.AvoidCountdown--
		return act
	}

	if i := firstThreat(visible, p); i >= 0 {
		v := visible[i]
		act.Turn = math.Atan2(-v.DY, -v.DX) - self.Direction
		s.AvoidCountdown = int(math.Round(p.AvoidanceTime * float64(p.Framerate)))
		return act
	}

	if wantsMate(s, self) {
		if i := firstMate(self, visible, p); i >= 0 {
			s.Clock = 0
			act.Mate = i
		}
	}

	if i := nearestFood(visible); i >= 0 {
		v := visible[i]
		act.Turn = math.Atan2(v.DY, v.DX) - self.Direction
		return act
	}

	act.Turn = wander(self.Genome.Get(traits.MeanTurnInterval), p.Framerate, rng)
	return act
}

// firstThreat returns the first critter or scenery inside its avoidance radius.
func firstThreat(visible []Visible, p *Params) int {
	critterSq := p.CritterAvoidanceRadius * p.CritterAvoidanceRadius
	scenerySq := p.SceneryAvoidanceRadius * p.SceneryAvoidanceRadius
	for i := range visible {
		v := &visible[i]
		d := v.DX*v.DX + v.DY*v.DY
		switch v.Kind {
		case KindCritter:
			if d < critterSq {
				return i
			}
		case KindScenery:
			if d < scenerySq {
				return i
			}
		}
	}
	return -1
}

func wantsMate(s *State, self Self) bool {
	return self.Mature &&
		self.Energy > self.Genome.Get(traits.ReproductionEnergyThreshold) &&
		float64(s.Clock) > self.Genome.Get(traits.ReproductionPeriod)
}

func firstMate(self Self, visible []Visible, p *Params) int {
	radiusSq := p.ReproductionRadius * p.ReproductionRadius
	want := self.Gender.Opposite()
	for i := range visible {
		v := &visible[i]
		if v.Kind != KindCritter || v.Gender != want || !v.Mature {
			continue
		}
		if v.DX*v.DX+v.DY*v.DY < radiusSq {
			return i
		}
	}
	return -1
}

// nearestFood returns the closest visible food; the first of equal minima wins.
func nearestFood(visible []Visible) int {
	best := -1
	bestSq := math.Inf(1)
	for i := range visible {
		v := &visible[i]
		if v.Kind != KindFood {
			continue
		}
		d := v.DX*v.DX + v.DY*v.DY
		if d < bestSq {
			best, bestSq = i, d
		}
	}
	return best
}

// wander turns by a random quarter turn roughly once per meanInterval seconds.
func wander(meanInterval float64, framerate int, rng *rand.Rand) float64 {
	n := int(float64(framerate)*meanInterval) + 1
	if n < 1 {
		n = 1
	}
	if rng.Intn(n) != wanderSentinel {
		return 0
	}
	return float64(rng.Intn(4)) * math.Pi / 2
}
