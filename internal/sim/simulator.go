// Package sim drives the Monte Carlo loop: one worker-owned state
// vector per scenario, fresh noise per step, rows assembled into a
// single fixed output order regardless of parallelism.
package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stochlab/sdesim/internal/integrate"
	"github.com/stochlab/sdesim/internal/process"
	"github.com/stochlab/sdesim/internal/rng"
	"github.com/stochlab/sdesim/internal/table"
)

// Truncation marks a scenario halted by numerical instability: its
// trajectory ends at Time (the last finite grid point) instead of the
// end of the grid. Step is the index of the failed interval.
type Truncation struct {
	Scenario int     `json:"scenario"`
	Step     int     `json:"step"`
	Time     float64 `json:"time"`
}

// Result is the assembled output: rows grouped by scenario ascending,
// then process in declaration order, then time ascending, plus one
// truncation diagnostic per halted scenario.
type Result struct {
	Rows        []table.Row
	Truncations []Truncation
}

// Simulator owns a validated spec and its noise source. Safe to Run
// repeatedly; runs are independent and bit-identical.
type Simulator struct {
	spec    *process.Spec
	src     rng.Source
	workers int
	log     zerolog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets the scenario partition count; defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.workers = n }
}

// WithLogger attaches a logger for run summaries and truncation
// warnings; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// New builds a simulator for a validated spec. A sobol request whose
// model needs more noise dimensions than the sequence supports is a
// ConfigError here, still before any simulation work.
func New(spec *process.Spec, opts ...Option) (*Simulator, error) {
	s := &Simulator{spec: spec, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	if spec.RNG == process.RNGSobol {
		src, err := rng.NewSobol(spec.Steps(), spec.Model.WienerDims, spec.Model.JumpDims)
		if err != nil {
			return nil, &process.ConfigError{Field: "rng_method", Msg: err.Error()}
		}
		s.src = src
	} else {
		s.src = rng.NewPseudo(spec.Seed)
	}
	return s, nil
}

// Source exposes the noise source; tests use it to cross-check emitted
// values against independently sampled draws.
func (s *Simulator) Source() rng.Source { return s.src }

// Run computes every scenario. Scenarios are embarrassingly parallel:
// each is owned by exactly one worker, and the only shared inputs (the
// spec and the noise source) are read-only. Cancellation is honored at
// scenario boundaries and between steps; scenarios already finished
// stay in the result, the in-flight scenario is discarded whole, and
// the context error is returned alongside the partial result.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	spec := s.spec
	nScen := spec.Scenarios
	nProc := len(spec.Model.Defs)

	scenarioRows := make([][]table.Row, nScen)
	truncations := make([]*Truncation, nScen)

	workers := s.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > nScen {
		workers = nScen
	}
	chunk := (nScen + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > nScen {
			end = nScen
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			stepper := integrate.New(spec.Scheme)
			draw := rng.NewDraw(spec.Model.WienerDims, spec.Model.JumpDims)
			state := make([]float64, nProc)
			next := make([]float64, nProc)
			for sc := start; sc < end; sc++ {
				if ctx.Err() != nil {
					return
				}
				rows, trunc, ok := s.runScenario(ctx, sc, stepper, draw, state, next)
				if !ok {
					return
				}
				scenarioRows[sc] = rows
				truncations[sc] = trunc
			}
		}(start, end)
	}
	wg.Wait()

	res := &Result{}
	for sc := 0; sc < nScen; sc++ {
		if scenarioRows[sc] == nil {
			continue
		}
		res.Rows = append(res.Rows, scenarioRows[sc]...)
		if t := truncations[sc]; t != nil {
			res.Truncations = append(res.Truncations, *t)
			s.log.Warn().
				Int("scenario", t.Scenario).
				Int("step", t.Step).
				Float64("time", t.Time).
				Msg("scenario truncated on non-finite state")
		}
	}

	if err := ctx.Err(); err != nil {
		s.log.Info().Int("rows", len(res.Rows)).Msg("run canceled, returning completed scenarios")
		return res, err
	}
	s.log.Info().
		Int("scenarios", nScen).
		Int("processes", nProc).
		Int("rows", len(res.Rows)).
		Int("truncated", len(res.Truncations)).
		Msg("simulation complete")
	return res, nil
}

// runScenario walks one scenario over the grid. It records a state
// snapshot per grid point and assembles rows process-major afterwards,
// which is what keeps the global row order independent of scheduling.
// ok=false means the context was canceled mid-path and nothing of this
// scenario may be emitted.
func (s *Simulator) runScenario(ctx context.Context, sc int, stepper integrate.Stepper, draw *rng.Draw, state, next []float64) (rows []table.Row, trunc *Truncation, ok bool) {
	spec := s.spec
	grid := spec.Grid
	names := spec.Model.Names

	copy(state, spec.Initial)

	path := make([][]float64, 1, len(grid))
	path[0] = snapshot(state)

	for i := 0; i < len(grid)-1; i++ {
		if ctx.Err() != nil {
			return nil, nil, false
		}
		dt := grid[i+1] - grid[i]
		draw.Fill(s.src, sc, i)
		if err := stepper.Step(spec.Model, state, next, grid[i], dt, draw); err != nil {
			trunc = &Truncation{Scenario: sc + 1, Step: i, Time: grid[i]}
			break
		}
		state, next = next, state
		path = append(path, snapshot(state))
	}

	rows = make([]table.Row, 0, len(names)*len(path))
	for p, name := range names {
		for ti, snap := range path {
			rows = append(rows, table.Row{
				Scenario: sc + 1,
				Process:  name,
				Time:     grid[ti],
				Value:    snap[p],
			})
		}
	}
	return rows, trunc, true
}

func snapshot(state []float64) []float64 {
	c := make([]float64, len(state))
	copy(c, state)
	return c
}
