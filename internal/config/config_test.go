package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	src := `
equations:
  - "dS = ( 0.05 * S ) * dt + ( 0.2 * S ) * dW1"
grid:
  start: 0
  end: 1
  step: 0.25
scenarios: 500
initial_values:
  S: 100
rng: sobol
scheme: runge-kutta
seed: 7
workers: 4
output:
  path: out.csv
  format: csv
`
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"dS = ( 0.05 * S ) * dt + ( 0.2 * S ) * dW1"}, cfg.Equations)
	require.Equal(t, 500, cfg.Scenarios)
	require.Equal(t, map[string]float64{"S": 100}, cfg.InitialValues)
	require.Equal(t, "sobol", cfg.RNG)
	require.Equal(t, "runge-kutta", cfg.Scheme)
	require.Equal(t, uint64(7), cfg.Seed)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, "out.csv", cfg.Output.Path)
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios: 10\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Scenarios)
	require.Equal(t, DefaultRNG, cfg.RNG)
	require.Equal(t, DefaultScheme, cfg.Scheme)
	require.Equal(t, DefaultFormat, cfg.Output.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Equations = []string{"dX = ( 1.0 ) * dW1"}
	cfg.Grid = GridConfig{Points: []float64{0, 0.5, 1}}
	cfg.InitialValues = map[string]float64{"X": 0}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestExpandGridPoints(t *testing.T) {
	g := GridConfig{Points: []float64{0, 0.1, 0.3}}
	points, err := g.ExpandGrid()
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0.1, 0.3}, points)
}

func TestExpandGridRange(t *testing.T) {
	g := GridConfig{Start: 0, End: 1, Step: 0.25}
	points, err := g.ExpandGrid()
	require.NoError(t, err)
	require.Len(t, points, 5)
	require.Equal(t, 0.0, points[0])
	require.InDelta(t, 1.0, points[4], 1e-12)
}

func TestExpandGridRaggedEnd(t *testing.T) {
	// End not on a step boundary: the end point is still included.
	g := GridConfig{Start: 0, End: 1, Step: 0.3}
	points, err := g.ExpandGrid()
	require.NoError(t, err)
	require.Equal(t, 1.0, points[len(points)-1])
	require.Len(t, points, 5) // 0, 0.3, 0.6, 0.9, 1
}

func TestExpandGridErrors(t *testing.T) {
	_, err := (GridConfig{Start: 0, End: 1, Step: 0}).ExpandGrid()
	require.Error(t, err)
	_, err = (GridConfig{Start: 1, End: 1, Step: 0.1}).ExpandGrid()
	require.Error(t, err)
}
