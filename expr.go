// Package golimit provides a deterministic symbolic kernel for computing
// one-variable limits.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable canonical output
//   - Directional limits at finite points and at infinity
//   - AI/LLM friendly: JSON, LaTeX, and MCP-ready APIs
package golimit

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Eval() (float64, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// sameExpr compares two canonical expressions by kind and rendering.
func sameExpr(a, b Expr) bool {
	return a.exprType() == b.exprType() && a.String() == b.String()
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("golimit: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Eval() (float64, bool) { f, _ := n.val.Float64(); return f, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("golimit: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numAbs(a *Num) *Num { return &Num{val: new(big.Rat).Abs(a.val)} }

// numFloor returns the largest integer not above n.
func numFloor(n *Num) *Num {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(n.val.Num(), n.val.Denom(), m)
	return &Num{val: new(big.Rat).SetInt(q)}
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym             { return &Sym{name: name} }
func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return s.name }
func (s *Sym) Eval() (float64, bool) { return 0, false }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

// ============================================================
// Const: named real constants
// ============================================================

type Const struct{ name string }

var (
	Pi = &Const{name: "pi"}
	E  = &Const{name: "E"}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Name() string          { return c.name }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return "\\pi"
	}
	return "e"
}

func (c *Const) Eval() (float64, bool) {
	if c.name == "pi" {
		return math.Pi, true
	}
	return math.E, true
}

// ============================================================
// Infinity, NaN
// ============================================================

// Infinity is the real extended value +oo or -oo.
type Infinity struct{ neg bool }

var (
	Oo    = &Infinity{}
	NegOo = &Infinity{neg: true}
)

func infOf(sign int) *Infinity {
	if sign < 0 {
		return NegOo
	}
	return Oo
}

func (i *Infinity) Simplify() Expr        { return i }
func (i *Infinity) Sub(string, Expr) Expr { return i }
func (i *Infinity) Equal(other Expr) bool { o, ok := other.(*Infinity); return ok && i.neg == o.neg }
func (i *Infinity) exprType() string      { return "inf" }
func (i *Infinity) IsNegative() bool      { return i.neg }
func (i *Infinity) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "inf", "negative": i.neg}
}

func (i *Infinity) String() string {
	if i.neg {
		return "-oo"
	}
	return "oo"
}

func (i *Infinity) LaTeX() string {
	if i.neg {
		return "-\\infty"
	}
	return "\\infty"
}

func (i *Infinity) Eval() (float64, bool) {
	if i.neg {
		return math.Inf(-1), true
	}
	return math.Inf(1), true
}

type NaN struct{}

var Nan = &NaN{}

func (*NaN) Simplify() Expr                 { return Nan }
func (*NaN) String() string                 { return "nan" }
func (*NaN) LaTeX() string                  { return "\\text{NaN}" }
func (*NaN) Sub(string, Expr) Expr          { return Nan }
func (*NaN) Eval() (float64, bool)          { return math.NaN(), true }
func (*NaN) Equal(other Expr) bool          { _, ok := other.(*NaN); return ok }
func (*NaN) exprType() string               { return "nan" }
func (*NaN) toJSON() map[string]interface{} { return map[string]interface{}{"type": "nan"} }

// ============================================================
// AccumBounds: a value known only to stay within [lo, hi]
// ============================================================

type AccumBounds struct{ lo, hi Expr }

// Bounds returns the interval [lo, hi], collapsing it when both ends agree.
func Bounds(lo, hi Expr) Expr { return (&AccumBounds{lo: lo, hi: hi}).Simplify() }

func (b *AccumBounds) Simplify() Expr {
	lo, hi := b.lo.Simplify(), b.hi.Simplify()
	if lo.Equal(hi) {
		return lo
	}
	return &AccumBounds{lo: lo, hi: hi}
}

func (b *AccumBounds) String() string {
	return "AccumBounds(" + b.lo.String() + ", " + b.hi.String() + ")"
}

func (b *AccumBounds) LaTeX() string {
	return "\\left\\langle " + b.lo.LaTeX() + ", " + b.hi.LaTeX() + "\\right\\rangle"
}

func (b *AccumBounds) Sub(varName string, value Expr) Expr {
	return Bounds(b.lo.Sub(varName, value), b.hi.Sub(varName, value))
}

func (b *AccumBounds) Eval() (float64, bool) { return 0, false }
func (b *AccumBounds) Equal(other Expr) bool { return sameExpr(b, other) }
func (b *AccumBounds) exprType() string      { return "bounds" }
func (b *AccumBounds) Min() Expr             { return b.lo }
func (b *AccumBounds) Max() Expr             { return b.hi }
func (b *AccumBounds) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "bounds", "lo": b.lo.toJSON(), "hi": b.hi.toJSON()}
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	case *AccumBounds:
		collectSymbols(v.lo, out)
		collectSymbols(v.hi, out)
	}
}

func dependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// ============================================================
// Top-level helpers
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}
