package integrate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stochlab/sdesim/internal/parser"
	"github.com/stochlab/sdesim/internal/process"
	"github.com/stochlab/sdesim/internal/rng"
)

func buildModel(t *testing.T, srcs ...string) *process.Model {
	t.Helper()
	eqs, err := parser.ParseAll(srcs)
	require.NoError(t, err)
	m, err := process.Build(eqs)
	require.NoError(t, err)
	return m
}

// With diffusion and jumps absent, Euler integration of dX = r*X dt
// must track X0*exp(r*t) within an O(h) bound.
func TestEulerDeterministicExponential(t *testing.T) {
	m := buildModel(t, "dX = ( 0.5 * X ) * dt")
	stepper := EulerMaruyama{}
	draw := rng.NewDraw(0, 0)

	const h = 1e-3
	state := []float64{1}
	next := []float64{0}
	steps := int(1.0 / h)
	for i := 0; i < steps; i++ {
		require.NoError(t, stepper.Step(m, state, next, float64(i)*h, h, draw))
		state, next = next, state
	}

	exact := math.Exp(0.5)
	require.InDelta(t, exact, state[0], 10*h, "euler error exceeds O(h) bound")
}

func TestEulerDiffusionUsesSharedDraw(t *testing.T) {
	// Two processes on the same Wiener index see the same realized
	// increment, scaled by their own coefficients.
	m := buildModel(t,
		"dA = ( 1.0 ) * dW1",
		"dB = ( 2.0 ) * dW1",
	)
	stepper := EulerMaruyama{}
	draw := rng.NewDraw(1, 0)
	draw.Wiener[0] = 0.7

	state := []float64{0, 0}
	next := []float64{0, 0}
	dt := 0.25
	require.NoError(t, stepper.Step(m, state, next, 0, dt, draw))

	dA := next[0]
	dB := next[1]
	require.InDelta(t, 0.7*math.Sqrt(dt), dA, 1e-15)
	require.Equal(t, 2*dA, dB)
}

func TestEulerWienerVarianceScaling(t *testing.T) {
	m := buildModel(t, "dX = ( 1.0 ) * dW1")
	stepper := EulerMaruyama{}
	draw := rng.NewDraw(1, 0)
	draw.Wiener[0] = 1.0

	state := []float64{0}
	next := []float64{0}
	require.NoError(t, stepper.Step(m, state, next, 0, 0.04, draw))
	require.InDelta(t, 0.2, next[0], 1e-15) // sqrt(dt) scaling
}

// The two-stage scheme must reduce exactly to Euler–Maruyama when all
// diffusion coefficients evaluate to zero.
func TestRungeKuttaReducesToEuler(t *testing.T) {
	m := buildModel(t, "dX = ( 0.3 * X ) * dt + ( 0.0 ) * dW1")
	euler := EulerMaruyama{}
	rk := NewRungeKutta(1)

	draw := rng.NewDraw(1, 0)
	draw.Wiener[0] = 1.3

	state := []float64{2}
	nextE := []float64{0}
	nextRK := []float64{0}
	require.NoError(t, euler.Step(m, state, nextE, 0.5, 0.1, draw))
	require.NoError(t, rk.Step(m, state, nextRK, 0.5, 0.1, draw))
	require.Equal(t, nextE, nextRK)
}

func TestRungeKuttaAveragesDiffusionStages(t *testing.T) {
	// dX = (X)*dW1 from X0=1 with increment z over dt: predictor is
	// 1 + z*sqrt(dt); the corrector coefficient is the average of X at
	// both stages.
	m := buildModel(t, "dX = ( X ) * dW1")
	rk := NewRungeKutta(1)
	draw := rng.NewDraw(1, 0)
	draw.Wiener[0] = 0.5

	dt := 0.04
	sq := math.Sqrt(dt)
	state := []float64{1}
	next := []float64{0}
	require.NoError(t, rk.Step(m, state, next, 0, dt, draw))

	pred := 1 + 0.5*sq
	want := 1 + 0.5*(1+pred)*0.5*sq
	require.InDelta(t, want, next[0], 1e-15)
}

func TestRungeKuttaMatchesEulerJumps(t *testing.T) {
	m := buildModel(t, "dX = ( 2.0 ) * dJ1(100.0)")
	euler := EulerMaruyama{}
	rk := NewRungeKutta(1)

	draw := rng.NewDraw(0, 1)
	draw.JumpU[0] = 0.01 // below lambda*dt, jump fires

	state := []float64{0}
	nextE := []float64{0}
	nextRK := []float64{0}
	require.NoError(t, euler.Step(m, state, nextE, 0, 0.01, draw))
	require.NoError(t, rk.Step(m, state, nextRK, 0, 0.01, draw))
	require.Equal(t, 2.0, nextE[0])
	require.Equal(t, nextE, nextRK)
}

func TestJumpIndicator(t *testing.T) {
	m := buildModel(t, "dX = ( 1.0 ) * dJ1(2.0)")
	stepper := EulerMaruyama{}
	draw := rng.NewDraw(0, 1)
	state := []float64{0}
	next := []float64{0}

	// lambda*dt = 0.02: u below fires, u above does not.
	draw.JumpU[0] = 0.019
	require.NoError(t, stepper.Step(m, state, next, 0, 0.01, draw))
	require.Equal(t, 1.0, next[0])

	draw.JumpU[0] = 0.021
	require.NoError(t, stepper.Step(m, state, next, 0, 0.01, draw))
	require.Equal(t, 0.0, next[0])
}

// The empirical jump rate over many draws converges to lambda*dt.
func TestJumpFrequencyConvergence(t *testing.T) {
	m := buildModel(t, "dX = ( 1.0 ) * dJ1(2.0)")
	stepper := EulerMaruyama{}
	src := rng.NewPseudo(99)
	draw := rng.NewDraw(0, 1)

	const (
		dt        = 0.01
		scenarios = 2000
		steps     = 50
	)
	jumps := 0
	state := []float64{0}
	next := []float64{0}
	for sc := 0; sc < scenarios; sc++ {
		for i := 0; i < steps; i++ {
			draw.Fill(src, sc, i)
			require.NoError(t, stepper.Step(m, state, next, 0, dt, draw))
			if next[0] != 0 {
				jumps++
			}
		}
	}

	want := 2.0 * dt * scenarios * steps // 2000 expected occurrences
	require.InDelta(t, want, float64(jumps), 0.1*want)
}

func TestInstabilitySignal(t *testing.T) {
	m := buildModel(t, "dX = ( 1 / X ) * dt")
	stepper := EulerMaruyama{}
	draw := rng.NewDraw(0, 0)

	state := []float64{0} // 1/0 -> +Inf
	next := []float64{0}
	err := stepper.Step(m, state, next, 0, 0.1, draw)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnstable))

	var ierr *InstabilityError
	require.True(t, errors.As(err, &ierr))
	require.Equal(t, "X", ierr.Process)
}

func TestNewStepperSelection(t *testing.T) {
	_, isEuler := New(process.SchemeEuler).(EulerMaruyama)
	require.True(t, isEuler)
	_, isRK := New(process.SchemeRungeKutta).(*RungeKutta)
	require.True(t, isRK)
}
