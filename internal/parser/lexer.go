package parser

import "strconv"

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// next scans the next token. Lexer errors (bad characters, malformed
// literals) surface as *ParseError against the full equation text.
func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, offset: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch c {
	case '+':
		l.pos++
		return token{kind: tokPlus, text: "+", offset: start}, nil
	case '-':
		l.pos++
		return token{kind: tokMinus, text: "-", offset: start}, nil
	case '*':
		l.pos++
		return token{kind: tokStar, text: "*", offset: start}, nil
	case '/':
		l.pos++
		return token{kind: tokSlash, text: "/", offset: start}, nil
	case '^':
		l.pos++
		return token{kind: tokCaret, text: "^", offset: start}, nil
	case '(':
		l.pos++
		return token{kind: tokLParen, text: "(", offset: start}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, text: ")", offset: start}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, text: ",", offset: start}, nil
	case '=':
		l.pos++
		return token{kind: tokEquals, text: "=", offset: start}, nil
	}

	if isDigit(c) || c == '.' {
		return l.scanNumber(start)
	}
	if isIdentStart(c) {
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], offset: start}, nil
	}

	return token{}, &ParseError{Equation: l.src, Offset: start, Msg: "unexpected character " + strconv.QuoteRune(rune(c))}
}

// scanNumber accepts decimal and scientific literals: 1, 0.5, .5, 1e-3, 2.5E+4.
func (l *lexer) scanNumber(start int) (token, error) {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.src) || !isDigit(l.src[l.pos]) {
			// "2e" followed by non-digit is not an exponent; back off and
			// let the identifier rule have the 'e'.
			l.pos = mark
		} else {
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}

	text := l.src[start:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, &ParseError{Equation: l.src, Offset: start, Msg: "malformed numeric literal " + strconv.Quote(text)}
	}
	return token{kind: tokNumber, text: text, offset: start, value: v}, nil
}
