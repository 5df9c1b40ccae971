// Package config loads run specifications from YAML files.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultScenarios = 100
	DefaultRNG       = "pseudo"
	DefaultScheme    = "euler"
	DefaultFormat    = "csv"
)

// Config mirrors the simulate entry point plus output settings for the
// CLI. The grid is given either as explicit points or as a start/end/
// step range.
type Config struct {
	Equations     []string           `yaml:"equations"`
	Grid          GridConfig         `yaml:"grid"`
	Scenarios     int                `yaml:"scenarios"`
	InitialValues map[string]float64 `yaml:"initial_values"`
	RNG           string             `yaml:"rng"`
	Scheme        string             `yaml:"scheme"`
	Seed          uint64             `yaml:"seed"`
	Workers       int                `yaml:"workers"`
	Output        OutputConfig       `yaml:"output"`
}

type GridConfig struct {
	Points []float64 `yaml:"points"`
	Start  float64   `yaml:"start"`
	End    float64   `yaml:"end"`
	Step   float64   `yaml:"step"`
}

type OutputConfig struct {
	Path   string `yaml:"path"`   // empty means stdout
	Format string `yaml:"format"` // csv or json
}

func DefaultConfig() *Config {
	return &Config{
		Scenarios: DefaultScenarios,
		RNG:       DefaultRNG,
		Scheme:    DefaultScheme,
		Output:    OutputConfig{Format: DefaultFormat},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExpandGrid returns the explicit points if given, otherwise the range
// [Start, End] sampled every Step, end point included. Shape validation
// beyond that (length, monotonicity) belongs to spec building.
func (g GridConfig) ExpandGrid() ([]float64, error) {
	if len(g.Points) > 0 {
		return g.Points, nil
	}
	if g.Step <= 0 {
		return nil, fmt.Errorf("grid: step must be positive, got %g", g.Step)
	}
	if g.End <= g.Start {
		return nil, fmt.Errorf("grid: end %g must be greater than start %g", g.End, g.Start)
	}
	n := int(math.Floor((g.End-g.Start)/g.Step+1e-9)) + 1
	points := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		points = append(points, g.Start+float64(i)*g.Step)
	}
	if last := points[len(points)-1]; g.End-last > 1e-9*math.Max(1, math.Abs(g.End)) {
		points = append(points, g.End)
	}
	return points, nil
}
