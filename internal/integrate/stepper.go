// Package integrate holds the state-transition schemes. A Stepper is a
// pure function from (state, t, dt, noise draw) to the next state; it
// owns no storage and never touches the random source directly.
package integrate

import (
	"errors"
	"fmt"
	"math"

	"github.com/stochlab/sdesim/internal/process"
	"github.com/stochlab/sdesim/internal/rng"
)

// ErrUnstable signals a non-finite state component after a step. The
// orchestrator truncates the affected scenario at the last valid step;
// other scenarios are unaffected.
var ErrUnstable = errors.New("integrate: numerical instability (NaN or Inf state)")

// InstabilityError wraps ErrUnstable with the offending process and time.
type InstabilityError struct {
	Process string
	Time    float64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%v: process %s at t=%g", ErrUnstable, e.Process, e.Time)
}

func (e *InstabilityError) Unwrap() error { return ErrUnstable }

// Stepper advances every process by one grid interval. state holds the
// values at the start of the step and is not modified; next receives
// the values at t+dt. Both slices are in model declaration order.
type Stepper interface {
	Step(m *process.Model, state, next []float64, t, dt float64, d *rng.Draw) error
}

// New returns the stepper for a validated scheme name.
func New(scheme string) Stepper {
	if scheme == process.SchemeRungeKutta {
		return NewRungeKutta(0)
	}
	return EulerMaruyama{}
}

// jumpTerm evaluates the jump contribution of def over an interval of
// length dt: a Bernoulli(lambda*dt) occurrence indicator per jump index
// times the magnitude coefficient. This is a first-order approximation
// of the Poisson count; the probability of a missed second jump within
// one step is O((lambda*dt)^2), so the bias vanishes as the grid is
// refined and overstates jump frequency on coarse grids.
func jumpTerm(def *process.Definition, state []float64, t, dt float64, d *rng.Draw) float64 {
	v := 0.0
	for _, j := range def.Jumps {
		lambda := j.Intensity(state, t)
		if p := lambda * dt; p > 0 && d.JumpU[j.Index] < p {
			v += j.Magnitude(state, t)
		}
	}
	return v
}

func checkFinite(m *process.Model, next []float64, t float64) error {
	for i, v := range next {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InstabilityError{Process: m.Defs[i].Name, Time: t}
		}
	}
	return nil
}
