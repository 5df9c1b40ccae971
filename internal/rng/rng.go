// Package rng provides the noise sources feeding the integrators: a
// seeded pseudo-random source and a Sobol quasi-random source. Both are
// addressed by (scenario, step) as pure functions — no source carries a
// shared advancing cursor — so output is identical no matter how
// scenarios are partitioned across workers.
package rng

// Source produces the per-step noise for one (scenario, step) cell.
// Normal fills out with standard-normal draws (one per Wiener
// dimension), Uniform with draws in [0, 1) (one per jump dimension).
// Implementations must be safe for concurrent use across scenarios.
type Source interface {
	Normal(scenario, step int, out []float64)
	Uniform(scenario, step int, out []float64)
}

// Draw is the ephemeral per-step noise vector consumed by a stepper:
// raw standard normals for each distinct Wiener index and uniforms for
// each distinct jump index. The stepper scales normals to variance dt
// and turns uniforms into occurrence indicators.
type Draw struct {
	Wiener []float64
	JumpU  []float64
}

// NewDraw allocates a draw for the given noise dimensions.
func NewDraw(wienerDims, jumpDims int) *Draw {
	return &Draw{
		Wiener: make([]float64, wienerDims),
		JumpU:  make([]float64, jumpDims),
	}
}

// Fill refreshes the draw for (scenario, step) from src.
func (d *Draw) Fill(src Source, scenario, step int) {
	src.Normal(scenario, step, d.Wiener)
	src.Uniform(scenario, step, d.JumpU)
}

// splitmix64 is the finalizer from Vigna's SplitMix64 generator, used
// to derive independent stream seeds from (seed, scenario, step).
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
