// Package sdesim is a Monte Carlo engine for systems of coupled
// stochastic differential equations. Processes are declared as equation
// strings of the form
//
//	dX = ( 0.05 * X ) * dt + ( 0.2 * X ) * dW1 + ( -0.1 * X ) * dJ1(0.5)
//
// with drift, diffusion and jump terms. Distinct dW / dJ symbols get
// independent noise; reusing a symbol across equations makes those
// processes share the realized draw each step, expressing correlated
// shocks. Simulate produces one row per (scenario, process, grid
// point), bit-reproducible for a fixed seed regardless of the number of
// workers used.
package sdesim

import (
	"context"

	"github.com/stochlab/sdesim/internal/parser"
	"github.com/stochlab/sdesim/internal/process"
	"github.com/stochlab/sdesim/internal/sim"
	"github.com/stochlab/sdesim/internal/table"
)

// Accepted values for Request.RNG and Request.Scheme.
const (
	RNGPseudo = process.RNGPseudo
	RNGSobol  = process.RNGSobol

	SchemeEuler      = process.SchemeEuler
	SchemeRungeKutta = process.SchemeRungeKutta
)

// Row is one output sample.
type Row = table.Row

// Truncation flags a scenario halted early by numerical instability.
type Truncation = sim.Truncation

// ParseError reports malformed equation text with its byte offset.
type ParseError = parser.ParseError

// ValidationError reports semantic problems: duplicate process names,
// undeclared symbols, mismatched initial values.
type ValidationError = process.ValidationError

// ConfigError reports an invalid run configuration: bad grid, scenario
// count, or unrecognized rng/scheme value.
type ConfigError = process.ConfigError

// Option configures the underlying simulator.
type Option = sim.Option

// WithWorkers sets the number of scenario partitions; the result is
// identical for any value.
var WithWorkers = sim.WithWorkers

// WithLogger attaches a structured logger to the run.
var WithLogger = sim.WithLogger

// Request is the input of Simulate; it maps one-to-one onto the
// engine's single entry operation.
type Request struct {
	Equations     []string
	TimeSteps     []float64
	Scenarios     int
	InitialValues map[string]float64
	RNG           string // RNGPseudo or RNGSobol
	Scheme        string // SchemeEuler or SchemeRungeKutta
	Seed          uint64 // pseudo only; sobol is seedless
}

// Result is the tabular output plus per-scenario truncation
// diagnostics.
type Result struct {
	Rows        []Row
	Truncations []Truncation
}

// Simulate parses and validates the request, then runs every scenario.
// ParseError, ValidationError and ConfigError all surface before any
// simulation work begins. When ctx is canceled mid-run, the rows of
// every fully computed scenario are returned together with the context
// error.
func Simulate(ctx context.Context, req Request, opts ...Option) (*Result, error) {
	eqs, err := parser.ParseAll(req.Equations)
	if err != nil {
		return nil, err
	}
	model, err := process.Build(eqs)
	if err != nil {
		return nil, err
	}
	spec, err := process.NewSpec(model, req.TimeSteps, req.Scenarios, req.InitialValues, req.RNG, req.Scheme, req.Seed)
	if err != nil {
		return nil, err
	}
	simulator, err := sim.New(spec, opts...)
	if err != nil {
		return nil, err
	}
	res, err := simulator.Run(ctx)
	if res == nil {
		return nil, err
	}
	return &Result{Rows: res.Rows, Truncations: res.Truncations}, err
}
