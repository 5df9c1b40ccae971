package integrate

import (
	"testing"

	"github.com/stochlab/sdesim/internal/parser"
	"github.com/stochlab/sdesim/internal/process"
	"github.com/stochlab/sdesim/internal/rng"
)

func benchModel(b *testing.B) *process.Model {
	b.Helper()
	eqs, err := parser.ParseAll([]string{
		"dS = ( 0.05 * S ) * dt + ( 0.2 * S ) * dW1",
		"dV = ( 2.0 * (0.04 - V) ) * dt + ( 0.3 * V ^ 0.5 ) * dW2",
	})
	if err != nil {
		b.Fatal(err)
	}
	m, err := process.Build(eqs)
	if err != nil {
		b.Fatal(err)
	}
	return m
}

func BenchmarkEulerStep(b *testing.B) {
	m := benchModel(b)
	stepper := EulerMaruyama{}
	src := rng.NewPseudo(1)
	draw := rng.NewDraw(2, 0)
	state := []float64{100, 0.04}
	next := []float64{0, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		draw.Fill(src, 0, i)
		if err := stepper.Step(m, state, next, 0, 0.01, draw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRungeKuttaStep(b *testing.B) {
	m := benchModel(b)
	stepper := NewRungeKutta(2)
	src := rng.NewPseudo(1)
	draw := rng.NewDraw(2, 0)
	state := []float64{100, 0.04}
	next := []float64{0, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		draw.Fill(src, 0, i)
		if err := stepper.Step(m, state, next, 0, 0.01, draw); err != nil {
			b.Fatal(err)
		}
	}
}
