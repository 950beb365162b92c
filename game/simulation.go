package game

import (
	"cmp"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/agent"
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

// snapshotEntry is the pre-tick view of one entity that others may sense.
type snapshotEntry struct {
	entity ecs.Entity
	id     uint32
	kind   components.Kind
	pos    systems.Point
	gender components.Gender
	mature bool
}

// decision is a critter's action for the tick, resolved to entity handles.
type decision struct {
	entity ecs.Entity
	act    agent.Action
	mate   ecs.Entity
}

// Tick advances the simulation by one step.
//
// Every critter senses and decides against the same pre-tick snapshot before
// any action is applied. Actions then commit one critter at a time in
// creation order. Offspring born this tick are not in the snapshot and first
// act on the next tick.
func (w *World) Tick() {
	w.startTick()

	w.startPhase(telemetry.PhaseSnapshot)
	w.takeSnapshot()

	w.startPhase(telemetry.PhaseDecide)
	w.decideAll()

	w.startPhase(telemetry.PhaseCommit)
	for i := range w.decisions {
		w.commit(&w.decisions[i])
	}

	w.startPhase(telemetry.PhaseSkeletons)
	w.updateSkeletons()

	w.startPhase(telemetry.PhaseFoodSpawn)
	if w.tick%w.cfg.Food.SpawnPeriod == 0 {
		w.addFood()
	}

	w.tick++

	w.startPhase(telemetry.PhaseTelemetry)
	w.flushTelemetry()

	w.endTick()
}

// takeSnapshot records every sensible entity in creation order and indexes
// their positions in the spatial grid.
func (w *World) takeSnapshot() {
	w.snapshot = w.snapshot[:0]
	maturity := w.cfg.Critter.MaturityAge

	query := w.objectFilter.Query()
	for query.Next() {
		pos, obj := query.Get()
		if obj.Kind == components.KindSkeleton {
			continue
		}
		entry := snapshotEntry{
			entity: query.Entity(),
			id:     obj.ID,
			kind:   obj.Kind,
			pos:    systems.Point{X: pos.X, Y: pos.Y},
		}
		if obj.Kind == components.KindCritter {
			crit := w.critterMap.Get(entry.entity)
			entry.gender = crit.Gender
			entry.mature = crit.Mature(maturity)
		}
		w.snapshot = append(w.snapshot, entry)
	}

	// Store order shifts as entities are removed; creation order does not.
	slices.SortFunc(w.snapshot, func(a, b snapshotEntry) int {
		return cmp.Compare(a.id, b.id)
	})

	w.positions = w.positions[:0]
	w.grid.Clear()
	for i := range w.snapshot {
		p := w.snapshot[i].pos
		w.positions = append(w.positions, p)
		w.grid.Insert(i, p.X, p.Y)
	}
}

// decideAll runs the agent of every snapshot critter.
func (w *World) decideAll() {
	w.decisions = w.decisions[:0]
	params := &w.cfg.Derived.AgentParams
	maturity := w.cfg.Critter.MaturityAge

	for ref, entry := range w.snapshot {
		if entry.kind != components.KindCritter {
			continue
		}
		pos := w.positions[ref]
		w.neighbors = w.grid.QueryRadiusInto(w.neighbors[:0], pos.X, pos.Y, w.cfg.Critter.ViewDistance, ref, w.positions)

		w.visible = w.visible[:0]
		for _, n := range w.neighbors {
			other := &w.snapshot[n.Ref]
			w.visible = append(w.visible, agent.Visible{
				Kind:   other.kind,
				DX:     n.DX,
				DY:     n.DY,
				Gender: other.gender,
				Mature: other.mature,
			})
		}

		crit := w.critterMap.Get(entry.entity)
		self := agent.Self{
			Direction: crit.Direction,
			Energy:    crit.Energy,
			Mature:    crit.Mature(maturity),
			Gender:    crit.Gender,
			Genome:    &crit.Genome,
		}
		act := agent.Decide(&crit.Agent, self, w.visible, params, w.rng)

		d := decision{entity: entry.entity, act: act}
		if act.Mate != agent.NoMate {
			d.mate = w.snapshot[w.neighbors[act.Mate].Ref].entity
		}
		w.decisions = append(w.decisions, d)
	}
}

// commit applies one critter's decision: move, reproduce, eat, decay, die, age.
func (w *World) commit(d *decision) {
	if !w.world.Alive(d.entity) {
		return
	}
	cfg := w.cfg

	crit := w.critterMap.Get(d.entity)
	pos := w.posMap.Get(d.entity)

	// Move
	move := systems.ClampMove(d.act.Move, cfg.Critter.MaxMoveSpeed)
	crit.Direction = systems.NormalizeHeading(crit.Direction + d.act.Turn)
	pos.X, pos.Y = systems.NormalizePosition(
		pos.X+math.Cos(crit.Direction)*move,
		pos.Y+math.Sin(crit.Direction)*move,
		w.width, w.height,
	)

	// Reproduce. Spawning invalidates component pointers, so re-fetch after.
	if d.act.Mate != agent.NoMate && w.tryReproduce(d.entity, d.mate) {
		crit = w.critterMap.Get(d.entity)
		pos = w.posMap.Get(d.entity)
	}

	// Eat every food in reach
	x, y := pos.X, pos.Y
	w.removals = w.removals[:0]
	query := w.foodFilter.Query()
	for query.Next() {
		fpos, _, _ := query.Get()
		if systems.SquaredDistance(x, y, fpos.X, fpos.Y, w.width, w.height) < cfg.Derived.CollisionRadiusSq {
			w.removals = append(w.removals, query.Entity())
		}
	}
	if len(w.removals) > 0 {
		var gained float64
		for _, e := range w.removals {
			gained += w.foodMap.Get(e).Energy
			w.remove(e)
			w.stats.FoodEaten++
		}
		crit = w.critterMap.Get(d.entity)
		crit.Energy += gained
	}

	// Decay and death
	crit.Energy -= cfg.Critter.EnergyDecayRate
	if crit.Energy <= 0 {
		w.remove(d.entity)
		w.stats.Deaths++
		if cfg.Skeleton.Enabled {
			w.spawnSkeleton(x, y)
		}
		return
	}

	// Ageing, once per simulated second
	crit.Ticks++
	if crit.Ticks%cfg.World.Framerate == 0 {
		crit.Age++
		if crit.HeartCountdown > 0 {
			crit.HeartCountdown--
		}
	}
}

// tryReproduce mates actor with target if they are still compatible.
// Only the actor pays the reproduction cost.
func (w *World) tryReproduce(actor, target ecs.Entity) bool {
	cfg := w.cfg
	if !w.world.Alive(target) || !w.critterMap.Has(target) {
		return false
	}

	a := w.critterMap.Get(actor)
	b := w.critterMap.Get(target)
	if !a.Mature(cfg.Critter.MaturityAge) || !b.Mature(cfg.Critter.MaturityAge) || a.Gender == b.Gender {
		return false
	}
	apos := w.posMap.Get(actor)
	bpos := w.posMap.Get(target)
	if systems.SquaredDistance(apos.X, apos.Y, bpos.X, bpos.Y, w.width, w.height) >= cfg.Derived.ReproductionRadiusSq {
		return false
	}

	a.HeartCountdown = cfg.Critter.HeartTime
	b.HeartCountdown = cfg.Critter.HeartTime

	gender := components.Female
	if w.rng.Intn(2) == 1 {
		gender = components.Male
	}
	child := components.Critter{
		Direction:  systems.NormalizeHeading(a.Direction + math.Pi),
		Energy:     cfg.Critter.InitialEnergy,
		Gender:     gender,
		Genome:     traits.NewFromParents(&a.Genome, &b.Genome, cfg.Agent.TraitVariance, &cfg.Derived.Bounds, w.rng),
		Generation: max(a.Generation, b.Generation) + 1,
		ParentID:   w.objMap.Get(actor).ID,
	}
	a.Energy -= cfg.Critter.ReproductionCost
	x, y := apos.X, apos.Y

	w.spawnCritter(x, y, &child)
	w.stats.Births++
	return true
}

// updateSkeletons counts down and removes expired skeletons.
func (w *World) updateSkeletons() {
	w.removals = w.removals[:0]
	query := w.skeletonFilter.Query()
	for query.Next() {
		_, _, sk := query.Get()
		sk.Countdown--
		if sk.Countdown <= 0 {
			w.removals = append(w.removals, query.Entity())
		}
	}
	for _, e := range w.removals {
		w.remove(e)
	}
}

func (w *World) startTick() {
	if w.perf != nil {
		w.perf.StartTick()
	}
}

func (w *World) startPhase(phase string) {
	if w.perf != nil {
		w.perf.StartPhase(phase)
	}
}

func (w *World) endTick() {
	if w.perf != nil {
		w.perf.EndTick()
	}
}
