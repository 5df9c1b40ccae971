package process

import (
	"math"

	"github.com/stochlab/sdesim/internal/parser"
)

// Program is a compiled coefficient expression. State variables were
// resolved to indices into the flat state slice at compile time, so
// evaluation in the step loop does no name lookup.
type Program func(state []float64, t float64) float64

type builtin struct {
	arity int
	fn1   func(float64) float64
	fn2   func(float64, float64) float64
}

var builtins = map[string]builtin{
	"exp":  {arity: 1, fn1: math.Exp},
	"log":  {arity: 1, fn1: math.Log},
	"sqrt": {arity: 1, fn1: math.Sqrt},
	"sin":  {arity: 1, fn1: math.Sin},
	"cos":  {arity: 1, fn1: math.Cos},
	"tanh": {arity: 1, fn1: math.Tanh},
	"abs":  {arity: 1, fn1: math.Abs},
	"min":  {arity: 2, fn2: math.Min},
	"max":  {arity: 2, fn2: math.Max},
}

// compile lowers an AST into a closure tree over (state, t). index maps
// declared process names to state positions; "t" is the builtin time
// variable. Unknown identifiers are a ValidationError naming the symbol.
func compile(e parser.Expr, index map[string]int) (Program, error) {
	switch n := e.(type) {
	case *parser.Num:
		v := n.Value
		return func(_ []float64, _ float64) float64 { return v }, nil

	case *parser.Var:
		if n.Name == "t" {
			return func(_ []float64, t float64) float64 { return t }, nil
		}
		i, ok := index[n.Name]
		if !ok {
			return nil, validationErrorf(n.Name, "undeclared symbol: not a process name, t, dt, dW<k> or dJ<m>")
		}
		return func(state []float64, _ float64) float64 { return state[i] }, nil

	case *parser.Unary:
		x, err := compile(n.X, index)
		if err != nil {
			return nil, err
		}
		return func(state []float64, t float64) float64 { return -x(state, t) }, nil

	case *parser.Binary:
		x, err := compile(n.X, index)
		if err != nil {
			return nil, err
		}
		y, err := compile(n.Y, index)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case '+':
			return func(state []float64, t float64) float64 { return x(state, t) + y(state, t) }, nil
		case '-':
			return func(state []float64, t float64) float64 { return x(state, t) - y(state, t) }, nil
		case '*':
			return func(state []float64, t float64) float64 { return x(state, t) * y(state, t) }, nil
		case '/':
			return func(state []float64, t float64) float64 { return x(state, t) / y(state, t) }, nil
		case '^':
			return func(state []float64, t float64) float64 { return math.Pow(x(state, t), y(state, t)) }, nil
		}
		return nil, validationErrorf(string(n.Op), "unsupported operator")

	case *parser.Call:
		b, ok := builtins[n.Name]
		if !ok {
			return nil, validationErrorf(n.Name, "unknown function")
		}
		if len(n.Args) != b.arity {
			return nil, validationErrorf(n.Name, "expects %d argument(s), got %d", b.arity, len(n.Args))
		}
		args := make([]Program, len(n.Args))
		for i, a := range n.Args {
			p, err := compile(a, index)
			if err != nil {
				return nil, err
			}
			args[i] = p
		}
		if b.arity == 1 {
			fn, a0 := b.fn1, args[0]
			return func(state []float64, t float64) float64 { return fn(a0(state, t)) }, nil
		}
		fn, a0, a1 := b.fn2, args[0], args[1]
		return func(state []float64, t float64) float64 { return fn(a0(state, t), a1(state, t)) }, nil
	}
	return nil, validationErrorf("", "unsupported expression node")
}

// sum folds several drift programs into one. An equation with no dt term
// has zero drift.
func sum(programs []Program) Program {
	switch len(programs) {
	case 0:
		return func(_ []float64, _ float64) float64 { return 0 }
	case 1:
		return programs[0]
	default:
		ps := programs
		return func(state []float64, t float64) float64 {
			v := 0.0
			for _, p := range ps {
				v += p(state, t)
			}
			return v
		}
	}
}
