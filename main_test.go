package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/critters/config"
)

func TestRunSimulationWritesOutput(t *testing.T) {
	dir := t.TempDir()
	w, err := runSimulation(context.Background(), runOptions{
		seed:        7,
		seedSet:     true,
		maxTicks:    90,
		outputDir:   dir,
		statsWindow: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 90, w.TickCount())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4, "header plus one row per simulated second")

	for _, name := range []string{"config.yaml", "perf.csv", "bookmarks.csv"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestRunSimulationSeedIsReproducible(t *testing.T) {
	opts := runOptions{seed: 99, seedSet: true, maxTicks: 120}

	a, err := runSimulation(context.Background(), opts)
	require.NoError(t, err)
	b, err := runSimulation(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, a.Critters(), b.Critters())
	assert.Equal(t, a.Stats(), b.Stats())
}

func TestRunSimulationStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := runSimulation(ctx, runOptions{seed: 1, seedSet: true})
	require.NoError(t, err)
	assert.Equal(t, 0, w.TickCount())
}

func TestRunSimulationRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  framerate: 0\n"), 0644))

	_, err := runSimulation(context.Background(), runOptions{configPath: path, maxTicks: 1})
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)
}

func TestResolveSeed(t *testing.T) {
	cfg := config.Defaults()
	cfg.RandomSeed = "critters"
	fromConfig, ok := cfg.Seed()
	require.True(t, ok)

	assert.Equal(t, int64(5), resolveSeed(runOptions{seed: 5, seedSet: true}, cfg))
	assert.Equal(t, int64(0), resolveSeed(runOptions{seed: 0, seedSet: true}, cfg), "an explicit zero seed is honored")
	assert.Equal(t, fromConfig, resolveSeed(runOptions{}, cfg))
}

func TestValidateCommand(t *testing.T) {
	var out bytes.Buffer
	logger := slog.Default()
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"validate"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		slog.SetDefault(logger)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"msg":"configuration valid"`)
	assert.Contains(t, out.String(), `"width":800`)
}
