package telemetry

import "github.com/pthm-cable/critters/traits"

// Sample is the world state a window flush reads. Event counters are
// cumulative since the start of the run; the collector turns them into
// per-window deltas.
type Sample struct {
	Tick int

	Critters  int
	Males     int
	Females   int
	Food      int
	Skeletons int

	Births      int
	Deaths      int
	FoodEaten   int
	FoodSpawned int

	// Per-critter values. Flush sorts them in place.
	Energy        []float64
	Age           []float64
	Traits        [traits.NumTraits][]float64
	MaxGeneration int
}

// events is the cumulative counter state at the last flush.
type events struct {
	births, deaths, foodEaten, foodSpawned int
}

// Collector cuts the run into fixed windows and produces WindowStats.
type Collector struct {
	runID       string
	windowTicks int
	framerate   int

	windowStart int
	last        events
}

// NewCollector creates a new stats collector.
// windowSec: how long each stats window lasts in simulated seconds
// framerate: ticks per simulated second
func NewCollector(runID string, windowSec float64, framerate int) *Collector {
	ticks := int(windowSec * float64(framerate))
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{
		runID:       runID,
		windowTicks: ticks,
		framerate:   framerate,
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(tick int) bool {
	return tick-c.windowStart >= c.windowTicks
}

// Flush produces a WindowStats ending at s.Tick and starts the next window.
func (c *Collector) Flush(s *Sample) WindowStats {
	energy := Summarize(s.Energy)
	age := Summarize(s.Age)

	stats := WindowStats{
		RunID:       c.runID,
		WindowStart: c.windowStart,
		WindowEnd:   s.Tick,
		SimTimeSec:  float64(s.Tick) / float64(c.framerate),

		Critters:  s.Critters,
		Males:     s.Males,
		Females:   s.Females,
		Food:      s.Food,
		Skeletons: s.Skeletons,

		Births:      s.Births - c.last.births,
		Deaths:      s.Deaths - c.last.deaths,
		FoodEaten:   s.FoodEaten - c.last.foodEaten,
		FoodSpawned: s.FoodSpawned - c.last.foodSpawned,

		EnergyMean: energy.Mean,
		EnergyStd:  energy.Std,
		EnergyP10:  energy.P10,
		EnergyP50:  energy.P50,
		EnergyP90:  energy.P90,

		AgeMean:       age.Mean,
		MaxGeneration: s.MaxGeneration,
	}
	for _, t := range traits.All() {
		stats.setTrait(t, Summarize(s.Traits[t]))
	}

	c.windowStart = s.Tick
	c.last = events{
		births:      s.Births,
		deaths:      s.Deaths,
		foodEaten:   s.FoodEaten,
		foodSpawned: s.FoodSpawned,
	}
	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}

// RunID returns the identifier stamped on every record.
func (c *Collector) RunID() string {
	return c.runID
}
