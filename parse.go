package golimit

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ============================================================
// Parser: Python-like infix notation
// ============================================================

var (
	ErrSyntax          = errors.New("invalid syntax")
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrUnknownFunction = errors.New("unknown function")
)

// ParseError reports where in the input parsing stopped.
type ParseError struct {
	Pos int
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

type parseConfig struct {
	symbols map[string]bool
}

type ParseOption func(*parseConfig)

// WithSymbols declares identifiers that parse as free symbols.
func WithSymbols(names ...string) ParseOption {
	return func(c *parseConfig) {
		for _, n := range names {
			c.symbols[n] = true
		}
	}
}

// Parse reads text such as "sin(x)/x" or "(1 + 1/x)**x" into a simplified
// expression. Identifiers other than the built-in constants and functions
// must be declared with WithSymbols.
func Parse(text string, opts ...ParseOption) (Expr, error) {
	cfg := &parseConfig{symbols: map[string]bool{}}
	for _, o := range opts {
		o(cfg)
	}
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, cfg: cfg}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(ErrSyntax, "empty expression")
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(ErrSyntax, "unexpected %q", t.text)
	}
	return e.Simplify(), nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string, opts ...ParseOption) Expr {
	e, err := Parse(text, opts...)
	if err != nil {
		panic("golimit: " + err.Error())
	}
	return e
}

// ============================================================
// Tokenizer
// ============================================================

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r >= '0' && r <= '9' || r == '.':
			j := scanNumber(s, i)
			if j == i+1 && r == '.' {
				return nil, &ParseError{Pos: i, Msg: "unexpected '.'", Err: ErrSyntax}
			}
			toks = append(toks, token{kind: tokNum, text: s[i:j], pos: i})
			i = j
		case r == '_' || unicode.IsLetter(r):
			j := i + size
			for j < len(s) {
				r2, sz := utf8.DecodeRuneInString(s[j:])
				if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) {
					break
				}
				j += sz
			}
			toks = append(toks, token{kind: tokIdent, text: s[i:j], pos: i})
			i = j
		case r == '*':
			if strings.HasPrefix(s[i:], "**") {
				toks = append(toks, token{kind: tokOp, text: "**", pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "*", pos: i})
				i++
			}
		case r == '+' || r == '-' || r == '/' || r == '^':
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r), Err: ErrSyntax}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

// scanNumber returns the end of the numeric literal starting at i:
// digits, an optional fraction and an optional exponent.
func scanNumber(s string, i int) int {
	j := i
	digits := func() {
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
	}
	digits()
	if j < len(s) && s[j] == '.' {
		j++
		digits()
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && s[k] >= '0' && s[k] <= '9' {
			j = k
			digits()
		}
	}
	return j
}

func parseNumber(text string) (*Num, bool) {
	lit := text
	if strings.HasPrefix(lit, ".") {
		lit = "0" + lit
	}
	if i := strings.IndexAny(lit, "eE"); i > 0 && lit[i-1] == '.' {
		lit = lit[:i] + "0" + lit[i:]
	} else if strings.HasSuffix(lit, ".") {
		lit += "0"
	}
	r, ok := new(big.Rat).SetString(lit)
	if !ok {
		return nil, false
	}
	return &Num{val: r}, true
}

// ============================================================
// Recursive descent
// ============================================================

type parser struct {
	toks []token
	pos  int
	cfg  *parseConfig
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(sentinel error, format string, args ...interface{}) error {
	return &ParseError{Pos: p.peek().pos, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, o := range ops {
		if t.text == o {
			return true
		}
	}
	return false
}

// expr = term (("+" | "-") term)*
func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = MulOf(N(-1), right)
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return AddOf(terms...), nil
}

// term = unary (("*" | "/") unary)*
func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/") {
		op := p.next().text
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "/" {
			right = PowOf(right, N(-1))
		}
		left = MulOf(left, right)
	}
	return left, nil
}

// unary = ("+" | "-") unary | power
func (p *parser) unary() (Expr, error) {
	if p.isOp("+", "-") {
		op := p.next().text
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return MulOf(N(-1), e), nil
		}
		return e, nil
	}
	return p.power()
}

// power = primary (("**" | "^") unary)?
func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.isOp("**", "^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNum:
		p.next()
		n, ok := parseNumber(t.text)
		if !ok {
			return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("bad number %q", t.text), Err: ErrSyntax}
		}
		if next := p.peek(); next.kind == tokIdent || next.kind == tokNum || next.kind == tokLParen {
			return nil, p.errorf(ErrSyntax, "unexpected %q after number", next.text)
		}
		return n, nil
	case tokLParen:
		p.next()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf(ErrSyntax, "expected ')'")
		}
		p.next()
		return e, nil
	case tokIdent:
		p.next()
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		return p.identifier(t)
	case tokEOF:
		return nil, p.errorf(ErrSyntax, "unexpected end of input")
	}
	return nil, p.errorf(ErrSyntax, "unexpected %q", t.text)
}

func (p *parser) identifier(t token) (Expr, error) {
	switch t.text {
	case "pi":
		return Pi, nil
	case "E":
		return E, nil
	case "oo":
		return Oo, nil
	case "nan":
		return Nan, nil
	}
	if p.cfg.symbols[t.text] {
		return S(t.text), nil
	}
	if _, ok := lookupFunc(t.text); ok {
		return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("function %s used without arguments", t.text), Err: ErrSyntax}
	}
	return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("name %q is not defined", t.text), Err: ErrUnknownSymbol}
}

func (p *parser) call(name token) (Expr, error) {
	fn, ok := lookupFunc(name.text)
	if !ok {
		return nil, &ParseError{Pos: name.pos, Msg: fmt.Sprintf("function %q is not defined", name.text), Err: ErrUnknownFunction}
	}
	p.next() // (
	var args []Expr
	if p.peek().kind != tokRParen {
		for {
			a, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if p.peek().kind != tokRParen {
		return nil, p.errorf(ErrSyntax, "expected ')'")
	}
	p.next()
	if len(args) < fn.minArgs || len(args) > fn.maxArgs {
		return nil, &ParseError{Pos: name.pos, Msg: fmt.Sprintf("%s takes %s", name.text, fn.arity()), Err: ErrSyntax}
	}
	return fn.build(args), nil
}

// ============================================================
// Function table
// ============================================================

type funcSpec struct {
	minArgs, maxArgs int
	build            func(args []Expr) Expr
}

func (f funcSpec) arity() string {
	if f.minArgs == f.maxArgs {
		if f.minArgs == 1 {
			return "exactly 1 argument"
		}
		return fmt.Sprintf("exactly %d arguments", f.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", f.minArgs, f.maxArgs)
}

func unary(build func(Expr) Expr) funcSpec {
	return funcSpec{minArgs: 1, maxArgs: 1, build: func(a []Expr) Expr { return build(a[0]) }}
}

var logSpec = funcSpec{minArgs: 1, maxArgs: 2, build: func(a []Expr) Expr {
	if len(a) == 2 {
		return MulOf(LogOf(a[0]), PowOf(LogOf(a[1]), N(-1)))
	}
	return LogOf(a[0])
}}

var funcTable = map[string]funcSpec{
	"sin":     unary(SinOf),
	"cos":     unary(CosOf),
	"tan":     unary(TanOf),
	"cot":     unary(CotOf),
	"sec":     unary(SecOf),
	"csc":     unary(CscOf),
	"asin":    unary(AsinOf),
	"acos":    unary(AcosOf),
	"atan":    unary(AtanOf),
	"acot":    unary(AcotOf),
	"sinh":    unary(SinhOf),
	"cosh":    unary(CoshOf),
	"tanh":    unary(TanhOf),
	"coth":    unary(CothOf),
	"asinh":   unary(AsinhOf),
	"acosh":   unary(AcoshOf),
	"atanh":   unary(AtanhOf),
	"exp":     unary(ExpOf),
	"sqrt":    unary(SqrtOf),
	"Abs":     unary(AbsOf),
	"abs":     unary(AbsOf),
	"sign":    unary(SignOf),
	"floor":   unary(FloorOf),
	"ceiling": unary(CeilingOf),
}

func lookupFunc(name string) (funcSpec, bool) {
	if name == "log" || name == "ln" {
		return logSpec, true
	}
	f, ok := funcTable[name]
	return f, ok
}
