package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBabyBoom           BookmarkType = "baby_boom"
	BookmarkPopulationRecovery BookmarkType = "population_recovery"
	BookmarkPopulationCrash    BookmarkType = "population_crash"
	BookmarkExtinction         BookmarkType = "extinction"
	BookmarkStablePopulation   BookmarkType = "stable_population"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"run_id", b.RunID,
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// stableWindows is how many consecutive calm windows make a stable population.
const stableWindows = 5

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentMin   int // minimum critter count since the last recovery
	recentPeak  int // peak critter count since the last crash
	stableCount int // consecutive windows with a steady population
	extinct     bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindows {
		historySize = stableWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		recentMin:   -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.RunID = stats.RunID
			bookmarks = append(bookmarks, *b)
		}
	}

	if bd.historyFull || bd.historyIdx > 0 {
		add(bd.checkBabyBoom(stats))
		add(bd.checkRecovery(stats))
		add(bd.checkCrash(stats))
		add(bd.checkStable(stats))
	}
	add(bd.checkExtinction(stats))

	bd.addToHistory(stats)

	if bd.recentMin < 0 || stats.Critters < bd.recentMin {
		bd.recentMin = stats.Critters
	}
	if stats.Critters > bd.recentPeak {
		bd.recentPeak = stats.Critters
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	var ordered []WindowStats
	if bd.historyFull {
		ordered = append(ordered, bd.history[bd.historyIdx:]...)
	}
	ordered = append(ordered, bd.history[:bd.historyIdx]...)
	if len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}

// checkBabyBoom fires when births exceed twice the rolling average.
func (bd *BookmarkDetector) checkBabyBoom(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Births
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Births) > avg*2.0 && stats.Births >= 3 {
		return &Bookmark{
			Type:        BookmarkBabyBoom,
			Tick:        stats.WindowEnd,
			Description: fmt.Sprintf("%d births is %.1fx average (%.1f)", stats.Births, float64(stats.Births)/avg, avg),
		}
	}
	return nil
}

// checkRecovery fires when a population that fell to 3 or fewer triples.
func (bd *BookmarkDetector) checkRecovery(stats WindowStats) *Bookmark {
	if bd.recentMin <= 0 || bd.recentMin > 3 {
		return nil
	}

	if stats.Critters >= bd.recentMin*3 && stats.Critters >= 6 {
		oldMin := bd.recentMin
		bd.recentMin = stats.Critters
		return &Bookmark{
			Type:        BookmarkPopulationRecovery,
			Tick:        stats.WindowEnd,
			Description: fmt.Sprintf("Population recovered from %d to %d", oldMin, stats.Critters),
		}
	}
	return nil
}

// checkCrash fires when the population drops more than 30% below its recent peak.
func (bd *BookmarkDetector) checkCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Critters)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Critters < bd.recentPeak-5 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Critters
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEnd,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Critters),
		}
	}
	return nil
}

// checkExtinction fires once when the last critter dies.
func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if stats.Critters > 0 {
		bd.extinct = false
		return nil
	}
	if bd.extinct {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEnd,
		Description: fmt.Sprintf("Last critter died after %d deaths this window", stats.Deaths),
	}
}

// checkStable fires once after the population holds steady for stableWindows windows.
func (bd *BookmarkDetector) checkStable(stats WindowStats) *Bookmark {
	if stats.Critters < 10 {
		bd.stableCount = 0
		return nil
	}

	history := bd.recent(4)
	if len(history) < 4 {
		return nil
	}

	counts := make([]float64, len(history))
	for i, h := range history {
		counts[i] = float64(h.Critters)
	}
	mean, variance := stat.PopMeanVariance(counts, nil)

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount == stableWindows {
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEnd,
			Description: fmt.Sprintf("Population steady around %.0f over %d windows", mean, stableWindows),
		}
	}
	return nil
}
