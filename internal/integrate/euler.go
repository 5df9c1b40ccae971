package integrate

import (
	"math"

	"github.com/stochlab/sdesim/internal/process"
	"github.com/stochlab/sdesim/internal/rng"
)

// EulerMaruyama is the first-order explicit scheme:
//
//	next[p] = state[p] + drift_p(state,t)*dt
//	        + sum_k diffusion_pk(state,t) * sqrt(dt) * Z_k
//	        + sum_m 1{U_m < lambda_m(state,t)*dt} * magnitude_pm(state,t)
//
// where Z_k is the standard-normal draw shared by every process
// referencing Wiener index k.
type EulerMaruyama struct{}

func (EulerMaruyama) Step(m *process.Model, state, next []float64, t, dt float64, d *rng.Draw) error {
	sqrtDt := math.Sqrt(dt)
	for i, def := range m.Defs {
		v := state[i] + def.Drift(state, t)*dt
		for _, dif := range def.Diffusions {
			v += dif.Coeff(state, t) * sqrtDt * d.Wiener[dif.Wiener]
		}
		v += jumpTerm(def, state, t, dt, d)
		next[i] = v
	}
	return checkFinite(m, next, t+dt)
}
