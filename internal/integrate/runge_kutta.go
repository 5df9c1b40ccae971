package integrate

import (
	"math"

	"github.com/stochlab/sdesim/internal/process"
	"github.com/stochlab/sdesim/internal/rng"
)

// RungeKutta is an explicit two-stage stochastic Runge–Kutta scheme of
// weak order 2 in the diffusion part. Stage weights are fixed:
//
//	predictor = state + drift(state,t)*dt + diffusion(state,t)*dW
//	next      = state + drift(state,t)*dt
//	          + 1/2 * (diffusion(state,t) + diffusion(predictor,t+dt)) * dW
//	          + jumps evaluated exactly as in Euler–Maruyama
//
// Drift carries weight (1, 0) and diffusion (1/2, 1/2), so with all
// diffusion coefficients zero the scheme reduces exactly to
// Euler–Maruyama. Jumps get no higher-order correction.
type RungeKutta struct {
	pred []float64 // predictor state scratch, reused across steps
}

// NewRungeKutta returns a stepper with scratch sized for n processes;
// the scratch grows on first use if n is 0.
func NewRungeKutta(n int) *RungeKutta {
	return &RungeKutta{pred: make([]float64, n)}
}

func (r *RungeKutta) Step(m *process.Model, state, next []float64, t, dt float64, d *rng.Draw) error {
	n := len(state)
	if len(r.pred) != n {
		r.pred = make([]float64, n)
	}
	sqrtDt := math.Sqrt(dt)

	// Stage 1: Euler predictor from drift and diffusion at the current state.
	for i, def := range m.Defs {
		v := state[i] + def.Drift(state, t)*dt
		for _, dif := range def.Diffusions {
			v += dif.Coeff(state, t) * sqrtDt * d.Wiener[dif.Wiener]
		}
		r.pred[i] = v
	}

	// Stage 2: average the diffusion coefficient over both stages,
	// reusing the same realized increments.
	for i, def := range m.Defs {
		v := state[i] + def.Drift(state, t)*dt
		for _, dif := range def.Diffusions {
			c := 0.5 * (dif.Coeff(state, t) + dif.Coeff(r.pred, t+dt))
			v += c * sqrtDt * d.Wiener[dif.Wiener]
		}
		v += jumpTerm(def, state, t, dt, d)
		next[i] = v
	}
	return checkFinite(m, next, t+dt)
}
