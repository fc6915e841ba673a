package golimit

import (
	"math"
	"math/big"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr     { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr     { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr     { return funcOf("tan", arg).Simplify() }
func CotOf(arg Expr) Expr     { return funcOf("cot", arg).Simplify() }
func SecOf(arg Expr) Expr     { return funcOf("sec", arg).Simplify() }
func CscOf(arg Expr) Expr     { return funcOf("csc", arg).Simplify() }
func AsinOf(arg Expr) Expr    { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr    { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr    { return funcOf("atan", arg).Simplify() }
func AcotOf(arg Expr) Expr    { return funcOf("acot", arg).Simplify() }
func SinhOf(arg Expr) Expr    { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr    { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr    { return funcOf("tanh", arg).Simplify() }
func CothOf(arg Expr) Expr    { return funcOf("coth", arg).Simplify() }
func AsinhOf(arg Expr) Expr   { return funcOf("asinh", arg).Simplify() }
func AcoshOf(arg Expr) Expr   { return funcOf("acosh", arg).Simplify() }
func AtanhOf(arg Expr) Expr   { return funcOf("atanh", arg).Simplify() }
func ExpOf(arg Expr) Expr     { return funcOf("exp", arg).Simplify() }
func LogOf(arg Expr) Expr     { return funcOf("log", arg).Simplify() }
func AbsOf(arg Expr) Expr     { return funcOf("Abs", arg).Simplify() }
func SignOf(arg Expr) Expr    { return funcOf("sign", arg).Simplify() }
func FloorOf(arg Expr) Expr   { return funcOf("floor", arg).Simplify() }
func CeilingOf(arg Expr) Expr { return funcOf("ceiling", arg).Simplify() }

// odd functions satisfy f(-x) = -f(x); even functions f(-x) = f(x).
var (
	oddFuncs  = map[string]bool{"sin": true, "tan": true, "cot": true, "csc": true, "asin": true, "atan": true, "sinh": true, "tanh": true, "coth": true, "asinh": true, "atanh": true, "sign": true}
	evenFuncs = map[string]bool{"cos": true, "sec": true, "cosh": true, "Abs": true}
)

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if _, ok := arg.(*NaN); ok {
		return Nan
	}
	if isNegativeTerm(arg) {
		if _, isInf := arg.(*Infinity); !isInf {
			switch {
			case oddFuncs[f.name]:
				return MulOf(N(-1), funcOf(f.name, negateTerm(arg)).Simplify())
			case evenFuncs[f.name]:
				return funcOf(f.name, negateTerm(arg)).Simplify()
			}
		}
	}
	if r := f.exact(arg); r != nil {
		return r
	}
	return &Func{name: f.name, arg: arg}
}

// exact returns a closed form for special arguments, or nil.
func (f *Func) exact(arg Expr) Expr {
	if inf, ok := arg.(*Infinity); ok {
		return funcAtInfinity(f.name, inf)
	}
	switch f.name {
	case "sin", "cos", "tan", "cot", "sec", "csc":
		r, ok := piMultiple(arg)
		if !ok {
			return nil
		}
		s, c := sinPi(r), sinPi(new(big.Rat).Add(r, big.NewRat(1, 2)))
		if s == nil || c == nil {
			return nil
		}
		return trigRatio(f.name, s, c)
	case "exp":
		if n, ok := arg.(*Num); ok {
			if n.IsZero() {
				return N(1)
			}
			if n.IsOne() {
				return E
			}
		}
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg
		}
	case "log":
		if n, ok := arg.(*Num); ok && n.IsOne() {
			return N(0)
		}
		if c, ok := arg.(*Const); ok && c.name == "E" {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			if _, ok := inner.arg.(*Num); ok {
				return inner.arg
			}
		}
	case "Abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n)
		}
		if len(FreeSymbols(arg)) == 0 {
			if v, ok := arg.Eval(); ok && !math.IsNaN(v) && v > 0 {
				return arg
			}
		}
		if inner, ok := arg.(*Func); ok && inner.name == "Abs" {
			return inner
		}
	case "sign":
		if n, ok := arg.(*Num); ok {
			return N(int64(n.val.Sign()))
		}
		if len(FreeSymbols(arg)) == 0 {
			if v, ok := arg.Eval(); ok && v > 0 {
				return N(1)
			}
		}
	case "floor", "ceiling":
		if n, ok := arg.(*Num); ok {
			fl := numFloor(n)
			if f.name == "ceiling" && !n.IsInteger() {
				return numAdd(fl, N(1))
			}
			return fl
		}
		if len(FreeSymbols(arg)) == 0 {
			if v, ok := arg.Eval(); ok && !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) < 1e15 {
				r := math.Round(v)
				if math.Abs(v-r) > 1e-9 {
					if f.name == "floor" {
						return N(int64(math.Floor(v)))
					}
					return N(int64(math.Ceil(v)))
				}
			}
		}
	case "asin", "atan", "sinh", "tanh", "asinh", "atanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
		if isNumEqual(arg, 1) {
			switch f.name {
			case "asin":
				return MulOf(F(1, 2), Pi)
			case "atan":
				return MulOf(F(1, 4), Pi)
			}
		}
	case "acos":
		if isNumEqual(arg, 0) {
			return MulOf(F(1, 2), Pi)
		}
		if isNumEqual(arg, 1) {
			return N(0)
		}
	case "acot":
		if isNumEqual(arg, 0) {
			return MulOf(F(1, 2), Pi)
		}
		if isNumEqual(arg, 1) {
			return MulOf(F(1, 4), Pi)
		}
	case "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "acosh":
		if isNumEqual(arg, 1) {
			return N(0)
		}
	}
	return nil
}

func funcAtInfinity(name string, inf *Infinity) Expr {
	halfPi := MulOf(F(1, 2), Pi)
	switch name {
	case "exp":
		if inf.neg {
			return N(0)
		}
		return Oo
	case "log", "Abs", "cosh", "acosh":
		return Oo
	case "sinh", "asinh", "floor", "ceiling":
		return inf
	case "atan":
		if inf.neg {
			return MulOf(N(-1), halfPi)
		}
		return halfPi
	case "tanh", "sign":
		if inf.neg {
			return N(-1)
		}
		return N(1)
	case "acot":
		return N(0)
	case "coth":
		if inf.neg {
			return N(-1)
		}
		return N(1)
	case "sin", "cos":
		return Bounds(N(-1), N(1))
	}
	return nil
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(new(big.Rat).SetInt64(v)) == 0
}

// piMultiple recognizes r*pi for rational r.
func piMultiple(e Expr) (*big.Rat, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsZero() {
			return new(big.Rat), true
		}
	case *Const:
		if v.name == "pi" {
			return big.NewRat(1, 1), true
		}
	case *Mul:
		if len(v.factors) == 2 {
			c, ok1 := v.factors[0].(*Num)
			p, ok2 := v.factors[1].(*Const)
			if ok1 && ok2 && p.name == "pi" {
				return c.Rat(), true
			}
		}
	}
	return nil, false
}

// sinPi returns sin(r*pi) for multiples of pi/4 and pi/6, or nil.
func sinPi(r *big.Rat) Expr {
	// reduce r modulo 2
	twelfths := new(big.Rat).Mul(r, big.NewRat(12, 1))
	if !twelfths.IsInt() {
		return nil
	}
	k := new(big.Int).Mod(twelfths.Num(), big.NewInt(24)).Int64()
	sign := int64(1)
	if k >= 12 {
		sign = -1
		k -= 12
	}
	var v Expr
	switch k {
	case 0:
		return N(0)
	case 2, 10:
		v = F(1, 2)
	case 3, 9:
		v = MulOf(F(1, 2), SqrtOf(N(2)))
	case 4, 8:
		v = MulOf(F(1, 2), SqrtOf(N(3)))
	case 6:
		v = N(1)
	default:
		return nil
	}
	return MulOf(N(sign), v)
}

func trigRatio(name string, s, c Expr) Expr {
	inv := func(e Expr) Expr {
		if isNumEqual(e, 0) {
			return nil
		}
		return PowOf(e, N(-1))
	}
	switch name {
	case "sin":
		return s
	case "cos":
		return c
	case "tan":
		if ic := inv(c); ic != nil {
			return MulOf(s, ic)
		}
	case "cot":
		if is := inv(s); is != nil {
			return MulOf(c, is)
		}
	case "sec":
		return inv(c)
	case "csc":
		return inv(s)
	}
	return nil
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "cot", "sec", "csc", "exp", "log", "sinh", "cosh", "tanh", "coth":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "Abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\left\\lfloor " + f.arg.LaTeX() + " \\right\\rfloor"
	case "ceiling":
		return "\\left\\lceil " + f.arg.LaTeX() + " \\right\\rceil"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Eval() (float64, bool) {
	v, ok := f.arg.Eval()
	if !ok {
		return 0, false
	}
	fn, known := floatFuncs[f.name]
	if !known {
		return 0, false
	}
	return fn(v), true
}

var floatFuncs = map[string]func(float64) float64{
	"sin":     math.Sin,
	"cos":     math.Cos,
	"tan":     math.Tan,
	"cot":     func(v float64) float64 { return math.Cos(v) / math.Sin(v) },
	"sec":     func(v float64) float64 { return 1 / math.Cos(v) },
	"csc":     func(v float64) float64 { return 1 / math.Sin(v) },
	"asin":    math.Asin,
	"acos":    math.Acos,
	"atan":    math.Atan,
	"acot":    func(v float64) float64 { return math.Atan(1 / v) },
	"sinh":    math.Sinh,
	"cosh":    math.Cosh,
	"tanh":    math.Tanh,
	"coth":    func(v float64) float64 { return 1 / math.Tanh(v) },
	"asinh":   math.Asinh,
	"acosh":   math.Acosh,
	"atanh":   math.Atanh,
	"exp":     math.Exp,
	"log":     math.Log,
	"Abs":     math.Abs,
	"floor":   math.Floor,
	"ceiling": math.Ceil,
	"sign":    signFloat,
}

func signFloat(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return v
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
