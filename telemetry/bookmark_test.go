package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func typesOf(bookmarks []Bookmark) []BookmarkType {
	var types []BookmarkType
	for _, b := range bookmarks {
		types = append(types, b.Type)
	}
	return types
}

func TestBookmarkDetector_BabyBoom(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEnd: i * 300, Critters: 20, Births: 2})
	}

	bookmarks := bd.Check(WindowStats{RunID: "run", WindowEnd: 1500, Critters: 26, Births: 8})
	assert.Contains(t, typesOf(bookmarks), BookmarkBabyBoom)
	for _, b := range bookmarks {
		assert.Equal(t, "run", b.RunID)
		assert.Equal(t, 1500, b.Tick)
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEnd: i * 300, Critters: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEnd: 1500, Critters: 50})
	assert.Contains(t, typesOf(bookmarks), BookmarkPopulationCrash)

	// The peak resets, so a steady low population does not keep firing.
	bookmarks = bd.Check(WindowStats{WindowEnd: 1800, Critters: 50})
	assert.NotContains(t, typesOf(bookmarks), BookmarkPopulationCrash)
}

func TestBookmarkDetector_PopulationRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEnd: i * 300, Critters: 2})
	}

	bookmarks := bd.Check(WindowStats{WindowEnd: 900, Critters: 10})
	assert.Contains(t, typesOf(bookmarks), BookmarkPopulationRecovery)
}

func TestBookmarkDetector_ExtinctionFiresOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEnd: 300, Critters: 4})
	assert.Contains(t, typesOf(bd.Check(WindowStats{WindowEnd: 600, Critters: 0, Deaths: 4})), BookmarkExtinction)
	assert.NotContains(t, typesOf(bd.Check(WindowStats{WindowEnd: 900, Critters: 0})), BookmarkExtinction)
}

func TestBookmarkDetector_StablePopulation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var firedAt []int
	for i := 0; i < 12; i++ {
		for _, b := range bd.Check(WindowStats{WindowEnd: i * 300, Critters: 40}) {
			if b.Type == BookmarkStablePopulation {
				firedAt = append(firedAt, i)
			}
		}
	}

	// Four windows of history are needed before counting, then five calm ones.
	assert.Equal(t, []int{8}, firedAt)
}

func TestBookmarkDetector_SmallPopulationIsNotStable(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 12; i++ {
		for _, b := range bd.Check(WindowStats{WindowEnd: i * 300, Critters: 5}) {
			assert.NotEqual(t, BookmarkStablePopulation, b.Type)
		}
	}
}
