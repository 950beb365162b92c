package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/traits"
)

// spawnInitialPopulation creates the starting critters and food.
func (w *World) spawnInitialPopulation() {
	cfg := w.cfg
	genome := traits.NewInitial(&cfg.Derived.Bounds)

	spawnStarter := func(gender components.Gender) {
		x, y := w.randomPosition()
		// Whole radians and a counter offset keep starters from moving in lockstep.
		crit := components.Critter{
			Direction: float64(w.rng.Intn(6)),
			Energy:    cfg.Critter.InitialEnergy,
			Age:       2 * cfg.World.AgeingInterval,
			Gender:    gender,
			Genome:    genome,
			Ticks:     w.rng.Intn(6),
		}
		x, y = w.clearOfScenery(x, y)
		w.spawnCritter(x, y, &crit)
	}

	for i := 0; i < cfg.Critter.StartingMales; i++ {
		spawnStarter(components.Male)
	}
	for i := 0; i < cfg.Critter.StartingFemales; i++ {
		spawnStarter(components.Female)
	}
	for i := 0; i < cfg.Food.InitialCount; i++ {
		w.addFood()
	}
}

// addFood places food at a random spot clear of scenery.
func (w *World) addFood() ecs.Entity {
	x, y := w.clearOfScenery(w.randomPosition())
	return w.spawnFood(x, y, w.cfg.Food.Energy)
}

// randomPosition returns a uniformly random point in the world.
func (w *World) randomPosition() (float64, float64) {
	return w.rng.Float64() * w.width, w.rng.Float64() * w.height
}

// clearOfScenery relocates (x, y) until it is not too close to any scenery.
// After relocationAttempts tries the last candidate is kept.
func (w *World) clearOfScenery(x, y float64) (float64, float64) {
	limitSq := 1.5 * w.cfg.Derived.SceneryAvoidanceRadiusSq
	for attempt := 0; attempt < relocationAttempts; attempt++ {
		if !w.nearScenery(x, y, limitSq) {
			return x, y
		}
		x, y = w.randomPosition()
	}
	if w.nearScenery(x, y, limitSq) {
		slog.Warn("no spot clear of scenery, placing anyway",
			"x", x, "y", y, "attempts", relocationAttempts)
	}
	return x, y
}

func (w *World) nearScenery(x, y, limitSq float64) bool {
	for _, p := range w.sceneryPoints {
		if systems.SquaredDistance(x, y, p.X, p.Y, w.width, w.height) < limitSq {
			return true
		}
	}
	return false
}

// nextObject allocates a header with a fresh ID.
func (w *World) nextObject(kind components.Kind) components.Object {
	obj := components.Object{ID: w.nextID, Kind: kind}
	w.nextID++
	w.counts[kind]++
	return obj
}

// spawnCritter adds a critter at exactly (x, y).
func (w *World) spawnCritter(x, y float64, crit *components.Critter) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	obj := w.nextObject(components.KindCritter)
	return w.critterMapper.NewEntity(&pos, &obj, crit)
}

// spawnFood adds food at exactly (x, y).
func (w *World) spawnFood(x, y, energy float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	obj := w.nextObject(components.KindFood)
	food := components.Food{Energy: energy}
	w.stats.FoodSpawned++
	return w.foodMapper.NewEntity(&pos, &obj, &food)
}

// spawnScenery adds a scenery object at exactly (x, y).
func (w *World) spawnScenery(x, y float64, t components.SceneryType) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	obj := w.nextObject(components.KindScenery)
	sc := components.Scenery{Type: t}
	w.sceneryPoints = append(w.sceneryPoints, systems.Point{X: x, Y: y})
	return w.sceneryMapper.NewEntity(&pos, &obj, &sc)
}

// spawnSkeleton marks where a critter died.
func (w *World) spawnSkeleton(x, y float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	obj := w.nextObject(components.KindSkeleton)
	sk := components.Skeleton{Countdown: w.cfg.Derived.SkeletonTicks}
	return w.skeletonMapper.NewEntity(&pos, &obj, &sk)
}

// remove deletes an entity and updates the population counter of its kind.
func (w *World) remove(e ecs.Entity) {
	if !w.world.Alive(e) {
		return
	}
	kind := w.objMap.Get(e).Kind
	w.world.RemoveEntity(e)
	w.counts[kind]--
}
