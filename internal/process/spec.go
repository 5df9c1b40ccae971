package process

// RNG methods and integration schemes accepted by a Spec.
const (
	RNGPseudo = "pseudo"
	RNGSobol  = "sobol"

	SchemeEuler      = "euler"
	SchemeRungeKutta = "runge-kutta"
)

// Spec is a fully validated simulation request. Once NewSpec returns,
// no further input checking happens anywhere downstream.
type Spec struct {
	Model     *Model
	Grid      []float64
	Scenarios int
	Initial   []float64 // resolved to Model.Names order
	RNG       string
	Scheme    string
	Seed      uint64
}

// NewSpec validates the run configuration against the compiled model.
// Grid and scenario problems are ConfigErrors; initial value key
// mismatches are ValidationErrors, since they point at equation-level
// input rather than run shape.
func NewSpec(model *Model, grid []float64, scenarios int, initial map[string]float64, rngMethod, scheme string, seed uint64) (*Spec, error) {
	if len(grid) < 2 {
		return nil, configErrorf("time_steps", "need at least 2 grid points, got %d", len(grid))
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] <= grid[i-1] {
			return nil, configErrorf("time_steps", "grid must be strictly increasing, got %g after %g at position %d", grid[i], grid[i-1], i)
		}
	}
	if scenarios < 1 {
		return nil, configErrorf("scenarios", "must be >= 1, got %d", scenarios)
	}
	switch rngMethod {
	case RNGPseudo, RNGSobol:
	default:
		return nil, configErrorf("rng_method", "unrecognized value %q (want %q or %q)", rngMethod, RNGPseudo, RNGSobol)
	}
	switch scheme {
	case SchemeEuler, SchemeRungeKutta:
	default:
		return nil, configErrorf("scheme", "unrecognized value %q (want %q or %q)", scheme, SchemeEuler, SchemeRungeKutta)
	}

	// initial_values keys must match the declared process names exactly.
	resolved := make([]float64, len(model.Names))
	seen := make(map[string]bool, len(initial))
	for i, name := range model.Names {
		v, ok := initial[name]
		if !ok {
			return nil, validationErrorf(name, "missing initial value for declared process")
		}
		resolved[i] = v
		seen[name] = true
	}
	for key := range initial {
		if !seen[key] {
			return nil, validationErrorf(key, "initial value does not match any declared process")
		}
	}

	gridCopy := make([]float64, len(grid))
	copy(gridCopy, grid)

	return &Spec{
		Model:     model,
		Grid:      gridCopy,
		Scenarios: scenarios,
		Initial:   resolved,
		RNG:       rngMethod,
		Scheme:    scheme,
		Seed:      seed,
	}, nil
}

// Steps is the number of grid intervals.
func (s *Spec) Steps() int { return len(s.Grid) - 1 }
