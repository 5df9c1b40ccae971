// Package parser turns SDE equation strings into process equation ASTs.
//
// The accepted grammar is
//
//	equation = "d" Name "=" term { "+" term }
//	term     = "(" expr ")" "*" ( "dt" | WienerSym | JumpSym "(" expr ")" )
//	expr     = additive over literals, identifiers, + - * / ^,
//	           parentheses, unary minus and builtin calls
//
// where WienerSym is an identifier starting with "dW" and JumpSym one
// starting with "dJ". Symbol meaning (state variable vs. noise index) is
// resolved by the semantic pass in internal/process; this package only
// guarantees shape and reports every failure as a *ParseError carrying
// the offending equation and byte offset.
package parser

import (
	"fmt"
	"strings"
)

// ParseError describes a syntactic failure in one equation.
type ParseError struct {
	Equation string
	Offset   int
	Msg      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d in %q: %s", e.Offset, e.Equation, e.Msg)
}

type parser struct {
	src string
	lex *lexer
	tok token
}

// Parse parses a single process equation.
func Parse(src string) (*Equation, error) {
	p := &parser{src: src, lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseEquation()
}

// ParseAll parses every equation, stopping at the first failure.
func ParseAll(srcs []string) ([]*Equation, error) {
	if len(srcs) == 0 {
		return nil, &ParseError{Equation: "", Offset: 0, Msg: "no equations provided"}
	}
	eqs := make([]*Equation, 0, len(srcs))
	for _, src := range srcs {
		eq, err := Parse(src)
		if err != nil {
			return nil, err
		}
		eqs = append(eqs, eq)
	}
	return eqs, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(offset int, format string, args ...any) error {
	return &ParseError{Equation: p.src, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind) (token, error) {
	if p.tok.kind != kind {
		return token{}, p.errorf(p.tok.offset, "expected %s, found %s", kind, p.tok.describe())
	}
	tok := p.tok
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return tok, nil
}

func (p *parser) parseEquation() (*Equation, error) {
	lhs, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if len(lhs.text) < 2 || lhs.text[0] != 'd' {
		return nil, p.errorf(lhs.offset, "left-hand side must be a differential like dX1, found %q", lhs.text)
	}
	eq := &Equation{
		Name:       lhs.text[1:],
		NameOffset: lhs.offset + 1,
		Source:     p.src,
	}

	if _, err := p.expect(tokEquals); err != nil {
		return nil, err
	}

	if err := p.parseTerm(eq); err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.parseTerm(eq); err != nil {
			return nil, err
		}
	}

	if p.tok.kind != tokEOF {
		return nil, p.errorf(p.tok.offset, "expected '+' or end of equation, found %s", p.tok.describe())
	}
	return eq, nil
}

// parseTerm parses `( expr ) * <differential>` and files the term under
// drift, diffusion or jump depending on the differential symbol.
func (p *parser) parseTerm(eq *Equation) error {
	if _, err := p.expect(tokLParen); err != nil {
		return err
	}
	coeff, err := p.parseExpr()
	if err != nil {
		return err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return err
	}
	if _, err := p.expect(tokStar); err != nil {
		return err
	}

	sym, err := p.expect(tokIdent)
	if err != nil {
		return err
	}
	switch {
	case sym.text == "dt":
		eq.Drift = append(eq.Drift, coeff)
	case strings.HasPrefix(sym.text, "dW"):
		eq.Diffusions = append(eq.Diffusions, DiffusionTerm{Symbol: sym.text, Coeff: coeff})
	case strings.HasPrefix(sym.text, "dJ"):
		if p.tok.kind != tokLParen {
			return p.errorf(p.tok.offset, "jump term %s requires an intensity argument, e.g. %s(0.5)", sym.text, sym.text)
		}
		if err := p.advance(); err != nil {
			return err
		}
		intensity, err := p.parseExpr()
		if err != nil {
			return err
		}
		if p.tok.kind == tokComma {
			return p.errorf(p.tok.offset, "jump term %s takes exactly one intensity argument", sym.text)
		}
		if _, err := p.expect(tokRParen); err != nil {
			return err
		}
		eq.Jumps = append(eq.Jumps, JumpTerm{Symbol: sym.text, Magnitude: coeff, Intensity: intensity})
	default:
		return p.errorf(sym.offset, "term must end in dt, dW<k> or dJ<m>(...), found %q", sym.text)
	}
	return nil
}

// Expression precedence, loosest first: additive, multiplicative, unary
// minus, power (right associative), atom.

func (p *parser) parseExpr() (Expr, error) {
	x, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := byte('+')
		if p.tok.kind == tokMinus {
			op = '-'
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *parser) parseMul() (Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := byte('*')
		if p.tok.kind == tokSlash {
			op = '/'
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokMinus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{X: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokCaret {
		if err := p.advance(); err != nil {
			return nil, err
		}
		// Right associative: 2^3^2 = 2^(3^2).
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: '^', X: x, Y: y}, nil
	}
	return x, nil
}

func (p *parser) parseAtom() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		v := p.tok.value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Num{Value: v}, nil
	case tokIdent:
		name, offset := p.tok.text, p.tok.offset
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokLParen {
			return p.parseCall(name, offset)
		}
		return &Var{Name: name, Offset: offset}, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf(p.tok.offset, "unbalanced parentheses: expected ')', found %s", p.tok.describe())
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return x, nil
	default:
		return nil, p.errorf(p.tok.offset, "expected literal, variable or '(', found %s", p.tok.describe())
	}
}

func (p *parser) parseCall(name string, offset int) (Expr, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	call := &Call{Name: name, Offset: offset}
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if p.tok.kind != tokRParen {
		return nil, p.errorf(p.tok.offset, "unbalanced parentheses in call to %s: expected ')', found %s", name, p.tok.describe())
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return call, nil
}
