package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/critters/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	assert.Nil(t, om)

	// A nil manager swallows writes.
	assert.NoError(t, om.WriteTelemetry(WindowStats{}))
	assert.NoError(t, om.WriteConfig(config.Defaults()))
	assert.NoError(t, om.Close())
	assert.Equal(t, "", om.Dir())
}

func TestOutputManagerWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	require.NoError(t, om.WriteConfig(config.Defaults()))
	require.NoError(t, om.WriteTelemetry(WindowStats{RunID: "r", WindowEnd: 300, Critters: 20}))
	require.NoError(t, om.WriteTelemetry(WindowStats{RunID: "r", WindowEnd: 600, Critters: 18}))
	require.NoError(t, om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, "r", 300))
	require.NoError(t, om.WriteBookmark(Bookmark{RunID: "r", Type: BookmarkBabyBoom, Tick: 600}))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "one header and two rows")
	assert.True(t, strings.HasPrefix(lines[0], "run_id,window_end,sim_time,critters"))
	assert.NotContains(t, lines[0], "WindowStart")

	var rows []WindowStats
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 600, rows[1].WindowEnd)
	assert.Equal(t, 18, rows[1].Critters)

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(perf), "decide_pct")

	marks, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(marks), "r,baby_boom,600")

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().World.Framerate, cfg.World.Framerate)
}
