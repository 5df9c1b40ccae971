package parser

// Expr is a node of a parsed coefficient expression. Trees are immutable
// after parsing; evaluation happens on the compiled form (internal/process),
// never by walking these nodes in the step loop.
type Expr interface {
	exprNode()
}

// Num is a numeric literal.
type Num struct {
	Value float64
}

// Var references a named state variable or the builtin time variable t.
// Offset is the byte offset of the identifier in the equation source,
// kept so semantic validation can point at the exact symbol.
type Var struct {
	Name   string
	Offset int
}

// Unary is unary minus.
type Unary struct {
	X Expr
}

// Binary is an infix operation; Op is one of + - * / ^.
type Binary struct {
	Op byte
	X  Expr
	Y  Expr
}

// Call is a builtin function application, e.g. exp(X1).
type Call struct {
	Name   string
	Args   []Expr
	Offset int
}

func (*Num) exprNode()    {}
func (*Var) exprNode()    {}
func (*Unary) exprNode()  {}
func (*Binary) exprNode() {}
func (*Call) exprNode()   {}

// DiffusionTerm is one `( coeff ) * dW<k>` term. Symbol keeps the full
// noise identifier (e.g. "dW1"); index assignment happens later in the
// shared registry so that equal symbols across equations share a draw.
type DiffusionTerm struct {
	Symbol string
	Coeff  Expr
}

// JumpTerm is one `( magnitude ) * dJ<m>(intensity)` term.
type JumpTerm struct {
	Symbol    string
	Magnitude Expr
	Intensity Expr
}

// Equation is the parsed form of a single process equation
// `d<Name> = <term> ( + <term> )*`. Terms retain source order.
type Equation struct {
	Name       string
	NameOffset int
	Drift      []Expr // coefficients of dt terms, summed by the compiler
	Diffusions []DiffusionTerm
	Jumps      []JumpTerm
	Source     string
}
