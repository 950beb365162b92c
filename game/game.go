// Package game owns the simulation world and its tick pipeline.
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/agent"
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
)

// relocationAttempts bounds the search for a spot clear of scenery.
const relocationAttempts = 1000

// Stats holds cumulative event counts since the world was created.
type Stats struct {
	Births      int
	Deaths      int
	FoodEaten   int
	FoodSpawned int
}

// World holds the complete simulation state.
// A World is not safe for concurrent use; distinct Worlds share nothing.
type World struct {
	cfg *config.Config
	rng *rand.Rand

	world *ecs.World

	// Entity mappers, one per variant
	critterMapper  *ecs.Map3[components.Position, components.Object, components.Critter]
	foodMapper     *ecs.Map3[components.Position, components.Object, components.Food]
	sceneryMapper  *ecs.Map3[components.Position, components.Object, components.Scenery]
	skeletonMapper *ecs.Map3[components.Position, components.Object, components.Skeleton]

	objectFilter   *ecs.Filter2[components.Position, components.Object]
	critterFilter  *ecs.Filter3[components.Position, components.Object, components.Critter]
	foodFilter     *ecs.Filter3[components.Position, components.Object, components.Food]
	skeletonFilter *ecs.Filter3[components.Position, components.Object, components.Skeleton]

	// Individual component mappers for lookups
	posMap      *ecs.Map[components.Position]
	objMap      *ecs.Map[components.Object]
	critterMap  *ecs.Map[components.Critter]
	foodMap     *ecs.Map[components.Food]
	sceneryMap  *ecs.Map[components.Scenery]
	skeletonMap *ecs.Map[components.Skeleton]

	// Spatial index over the per-tick snapshot
	grid *systems.SpatialGrid

	// Scenery never moves, so its positions are cached for placement checks.
	sceneryPoints []systems.Point

	// Per-tick scratch buffers, reused across ticks
	snapshot  []snapshotEntry
	positions []systems.Point
	neighbors []systems.Neighbor
	visible   []agent.Visible
	decisions []decision
	removals  []ecs.Entity

	perf      *telemetry.PerfCollector
	telemetry *TelemetryOptions

	// State
	width, height float64
	tick          int
	nextID        uint32
	counts        [components.NumKinds]int
	stats         Stats
}

// New builds a world from configuration and a world spec: scenery from the
// spec, the starting critters and the initial food.
//
// Derived config values are recomputed, so callers may adjust fields freely
// beforehand.
func New(cfg *config.Config, spec *config.WorldSpec, rng *rand.Rand) (*World, error) {
	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if spec == nil || spec.Rows <= 0 || spec.Cols <= 0 {
		return nil, fmt.Errorf("%w: world spec has no extent", config.ErrInvalidConfiguration)
	}
	if rng == nil {
		return nil, errors.New("game: nil random source")
	}

	width, height := spec.Extent(cfg.World.TileSize)
	world := ecs.NewWorld()

	w := &World{
		cfg:            cfg,
		rng:            rng,
		world:          world,
		width:          width,
		height:         height,
		critterMapper:  ecs.NewMap3[components.Position, components.Object, components.Critter](world),
		foodMapper:     ecs.NewMap3[components.Position, components.Object, components.Food](world),
		sceneryMapper:  ecs.NewMap3[components.Position, components.Object, components.Scenery](world),
		skeletonMapper: ecs.NewMap3[components.Position, components.Object, components.Skeleton](world),
		objectFilter:   ecs.NewFilter2[components.Position, components.Object](world),
		critterFilter:  ecs.NewFilter3[components.Position, components.Object, components.Critter](world),
		foodFilter:     ecs.NewFilter3[components.Position, components.Object, components.Food](world),
		skeletonFilter: ecs.NewFilter3[components.Position, components.Object, components.Skeleton](world),
		posMap:         ecs.NewMap[components.Position](world),
		objMap:         ecs.NewMap[components.Object](world),
		critterMap:     ecs.NewMap[components.Critter](world),
		foodMap:        ecs.NewMap[components.Food](world),
		sceneryMap:     ecs.NewMap[components.Scenery](world),
		skeletonMap:    ecs.NewMap[components.Skeleton](world),
		nextID:         1,
	}

	// Cells sized to the view distance keep each query to a small block.
	w.grid = systems.NewSpatialGrid(width, height, cfg.Critter.ViewDistance)

	for _, s := range spec.Scenery {
		x, y := systems.NormalizePosition(float64(s.X), float64(s.Y), width, height)
		w.spawnScenery(x, y, s.Type)
	}
	w.spawnInitialPopulation()

	return w, nil
}

// SetPerfCollector installs a phase timer. Pass nil to disable timing.
func (w *World) SetPerfCollector(p *telemetry.PerfCollector) {
	w.perf = p
}

// Config returns the configuration the world was built with.
func (w *World) Config() *config.Config {
	return w.cfg
}

// Width returns the world width.
func (w *World) Width() float64 { return w.width }

// Height returns the world height.
func (w *World) Height() float64 { return w.height }

// TickCount returns the number of completed ticks.
func (w *World) TickCount() int { return w.tick }

// Count returns the number of live entities of a kind.
func (w *World) Count(kind components.Kind) int {
	if int(kind) >= len(w.counts) {
		return 0
	}
	return w.counts[kind]
}

// Stats returns cumulative event counts.
func (w *World) Stats() Stats {
	return w.stats
}
