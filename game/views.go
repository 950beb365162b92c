package game

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/traits"
)

// EntityView is a read-only copy of what a renderer needs for one entity.
// Fields that do not apply to the entity's kind are zero.
type EntityView struct {
	ID             uint32
	Kind           components.Kind
	X, Y           float64
	Direction      float64
	AgeBucket      int
	Gender         components.Gender
	HeartCountdown int
	SceneryType    components.SceneryType
	Countdown      int
}

// CritterView adds the simulation state of a critter.
type CritterView struct {
	EntityView
	Energy     float64
	Age        int
	Genome     traits.Genome
	Generation int
	ParentID   uint32
}

// Entities returns every live entity except skeletons, in creation order.
func (w *World) Entities() []EntityView {
	views := make([]EntityView, 0, w.Count(components.KindCritter)+w.Count(components.KindFood)+w.Count(components.KindScenery))
	ageing := w.cfg.World.AgeingInterval

	query := w.objectFilter.Query()
	for query.Next() {
		pos, obj := query.Get()
		v := EntityView{ID: obj.ID, Kind: obj.Kind, X: pos.X, Y: pos.Y}
		e := query.Entity()
		switch obj.Kind {
		case components.KindCritter:
			crit := w.critterMap.Get(e)
			v.Direction = crit.Direction
			v.AgeBucket = crit.AgeBucket(ageing)
			v.Gender = crit.Gender
			v.HeartCountdown = crit.HeartCountdown
		case components.KindScenery:
			v.SceneryType = w.sceneryMap.Get(e).Type
		case components.KindSkeleton:
			continue
		}
		views = append(views, v)
	}
	sortByID(views, func(v EntityView) uint32 { return v.ID })
	return views
}

// Critters returns every live critter, in creation order.
func (w *World) Critters() []CritterView {
	views := make([]CritterView, 0, w.Count(components.KindCritter))
	ageing := w.cfg.World.AgeingInterval

	query := w.critterFilter.Query()
	for query.Next() {
		pos, obj, crit := query.Get()
		views = append(views, CritterView{
			EntityView: EntityView{
				ID:             obj.ID,
				Kind:           obj.Kind,
				X:              pos.X,
				Y:              pos.Y,
				Direction:      crit.Direction,
				AgeBucket:      crit.AgeBucket(ageing),
				Gender:         crit.Gender,
				HeartCountdown: crit.HeartCountdown,
			},
			Energy:     crit.Energy,
			Age:        crit.Age,
			Genome:     crit.Genome,
			Generation: crit.Generation,
			ParentID:   crit.ParentID,
		})
	}
	sortByID(views, func(v CritterView) uint32 { return v.ID })
	return views
}

// Skeletons returns every live skeleton, in creation order.
func (w *World) Skeletons() []EntityView {
	views := make([]EntityView, 0, w.Count(components.KindSkeleton))

	query := w.skeletonFilter.Query()
	for query.Next() {
		pos, obj, sk := query.Get()
		views = append(views, EntityView{
			ID:        obj.ID,
			Kind:      obj.Kind,
			X:         pos.X,
			Y:         pos.Y,
			Countdown: sk.Countdown,
		})
	}
	sortByID(views, func(v EntityView) uint32 { return v.ID })
	return views
}

func sortByID[T any](views []T, id func(T) uint32) {
	slices.SortFunc(views, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
}
