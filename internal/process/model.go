// Package process builds the simulation model from parsed equations:
// it validates symbols, assigns stable global indices to noise symbols,
// and compiles coefficient expressions into index-resolved programs.
package process

import "github.com/stochlab/sdesim/internal/parser"

// Diffusion is one diffusion term of a process: Coeff scaled by the
// Wiener increment with global index Wiener.
type Diffusion struct {
	Wiener int
	Coeff  Program
}

// Jump is one jump term: on an occurrence of jump index Index during a
// step, Magnitude(state, t) is added to the process. Intensity gives the
// Poisson rate lambda used for the per-step occurrence draw.
type Jump struct {
	Index     int
	Intensity Program
	Magnitude Program
}

// Definition is the compiled, immutable form of one process equation.
type Definition struct {
	Name       string
	Drift      Program
	Diffusions []Diffusion
	Jumps      []Jump
}

// Model is the compiled set of coupled processes plus the shared noise
// index registry. WienerDims and JumpDims count the distinct dW / dJ
// symbols across all equations; two equations using the same symbol
// share the single realized draw per step, which is how correlated
// shocks are expressed.
type Model struct {
	Defs       []*Definition
	Names      []string
	WienerDims int
	JumpDims   int

	wienerIndex map[string]int
	jumpIndex   map[string]int
}

// WienerIndex reports the global index assigned to a dW symbol.
func (m *Model) WienerIndex(symbol string) (int, bool) {
	i, ok := m.wienerIndex[symbol]
	return i, ok
}

// JumpIndex reports the global index assigned to a dJ symbol.
func (m *Model) JumpIndex(symbol string) (int, bool) {
	i, ok := m.jumpIndex[symbol]
	return i, ok
}

// Build runs the semantic pass over parsed equations: rejects duplicate
// process names and undeclared symbols, assigns noise indices in first
// sighting order, and compiles every coefficient expression.
func Build(eqs []*parser.Equation) (*Model, error) {
	m := &Model{
		Names:       make([]string, 0, len(eqs)),
		wienerIndex: make(map[string]int),
		jumpIndex:   make(map[string]int),
	}

	stateIndex := make(map[string]int, len(eqs))
	for _, eq := range eqs {
		if _, dup := stateIndex[eq.Name]; dup {
			return nil, validationErrorf(eq.Name, "duplicate process name")
		}
		stateIndex[eq.Name] = len(m.Names)
		m.Names = append(m.Names, eq.Name)
	}

	for _, eq := range eqs {
		def := &Definition{Name: eq.Name}

		drift := make([]Program, 0, len(eq.Drift))
		for _, e := range eq.Drift {
			p, err := compile(e, stateIndex)
			if err != nil {
				return nil, err
			}
			drift = append(drift, p)
		}
		def.Drift = sum(drift)

		for _, term := range eq.Diffusions {
			coeff, err := compile(term.Coeff, stateIndex)
			if err != nil {
				return nil, err
			}
			idx, ok := m.wienerIndex[term.Symbol]
			if !ok {
				idx = len(m.wienerIndex)
				m.wienerIndex[term.Symbol] = idx
			}
			def.Diffusions = append(def.Diffusions, Diffusion{Wiener: idx, Coeff: coeff})
		}

		for _, term := range eq.Jumps {
			magnitude, err := compile(term.Magnitude, stateIndex)
			if err != nil {
				return nil, err
			}
			intensity, err := compile(term.Intensity, stateIndex)
			if err != nil {
				return nil, err
			}
			idx, ok := m.jumpIndex[term.Symbol]
			if !ok {
				idx = len(m.jumpIndex)
				m.jumpIndex[term.Symbol] = idx
			}
			def.Jumps = append(def.Jumps, Jump{Index: idx, Intensity: intensity, Magnitude: magnitude})
		}

		m.Defs = append(m.Defs, def)
	}

	m.WienerDims = len(m.wienerIndex)
	m.JumpDims = len(m.jumpIndex)
	return m, nil
}
