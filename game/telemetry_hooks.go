package game

import (
	"log/slog"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

// TelemetryOptions wires window statistics into the tick loop.
// Every field is optional except Collector.
type TelemetryOptions struct {
	Collector *telemetry.Collector
	Output    *telemetry.OutputManager
	Bookmarks *telemetry.BookmarkDetector
	// LogStats logs every window (and perf stats if a collector is set).
	LogStats bool
	// OnWindow is called with every flushed window.
	OnWindow func(telemetry.WindowStats)
}

// SetTelemetry enables window statistics. A nil Collector disables them.
func (w *World) SetTelemetry(opts TelemetryOptions) {
	if opts.Collector == nil {
		w.telemetry = nil
		return
	}
	w.telemetry = &opts
}

// flushTelemetry emits a stats window when one has elapsed.
func (w *World) flushTelemetry() {
	t := w.telemetry
	if t == nil || !t.Collector.ShouldFlush(w.tick) {
		return
	}

	sample := w.Sample()
	stats := t.Collector.Flush(&sample)

	if t.OnWindow != nil {
		t.OnWindow(stats)
	}

	var perfStats telemetry.PerfStats
	if w.perf != nil {
		perfStats = w.perf.Stats()
	}

	if t.LogStats {
		stats.LogStats()
		if w.perf != nil {
			perfStats.LogStats(stats.RunID)
		}
	}

	if t.Output != nil {
		if err := t.Output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if w.perf != nil {
			if err := t.Output.WritePerf(perfStats, stats.RunID, stats.WindowEnd); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
	}

	if t.Bookmarks == nil {
		return
	}
	for _, bm := range t.Bookmarks.Check(stats) {
		if t.LogStats {
			bm.LogBookmark()
		}
		if err := t.Output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// Sample collects the current population and cumulative event counters.
func (w *World) Sample() telemetry.Sample {
	s := telemetry.Sample{
		Tick:        w.tick,
		Critters:    w.counts[components.KindCritter],
		Food:        w.counts[components.KindFood],
		Skeletons:   w.counts[components.KindSkeleton],
		Births:      w.stats.Births,
		Deaths:      w.stats.Deaths,
		FoodEaten:   w.stats.FoodEaten,
		FoodSpawned: w.stats.FoodSpawned,
	}

	n := s.Critters
	s.Energy = make([]float64, 0, n)
	s.Age = make([]float64, 0, n)
	for i := range s.Traits {
		s.Traits[i] = make([]float64, 0, n)
	}

	query := w.critterFilter.Query()
	for query.Next() {
		_, _, crit := query.Get()
		if crit.Gender == components.Male {
			s.Males++
		} else {
			s.Females++
		}
		s.Energy = append(s.Energy, crit.Energy)
		s.Age = append(s.Age, float64(crit.Age))
		for _, t := range traits.All() {
			s.Traits[t] = append(s.Traits[t], crit.Genome.Get(t))
		}
		s.MaxGeneration = max(s.MaxGeneration, crit.Generation)
	}
	return s
}
