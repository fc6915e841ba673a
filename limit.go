package golimit

import (
	"errors"
	"fmt"
	"math"
)

// ============================================================
// Limits
// ============================================================

// Dir selects the side from which the variable approaches a finite point.
type Dir int

const (
	DirBoth Dir = iota
	DirRight
	DirLeft
)

func (d Dir) String() string {
	switch d {
	case DirRight:
		return "+"
	case DirLeft:
		return "-"
	}
	return "+-"
}

var (
	ErrUndetermined = errors.New("could not determine the limit")
	ErrComplex      = errors.New("the limit is not a real number")
	ErrNoLimit      = errors.New("the limit does not exist")
	ErrInvalidPoint = errors.New("invalid limit point")
)

// NoLimitError reports one-sided limits that disagree.
type NoLimitError struct {
	Left, Right Expr
}

func (e *NoLimitError) Error() string {
	return fmt.Sprintf("The limit does not exist since left hand limit = %s and right hand limit = %s", e.Left, e.Right)
}

func (e *NoLimitError) Is(target error) bool { return target == ErrNoLimit }

// DefaultMaxOrder is the last truncation order the series ladder tries.
const DefaultMaxOrder = 32

type limitConfig struct {
	maxOrder int64
}

type LimitOption func(*limitConfig)

// WithMaxOrder caps the series truncation order. Values below 4 use 4.
func WithMaxOrder(n int) LimitOption {
	return func(c *limitConfig) {
		if n < 4 {
			n = 4
		}
		c.maxOrder = int64(n)
	}
}

// Limit computes the limit of expr as varName approaches point. At ±oo the
// direction is ignored. Disagreeing one-sided limits yield *NoLimitError.
func Limit(expr Expr, varName string, point Expr, dir Dir, opts ...LimitOption) (Expr, error) {
	cfg := &limitConfig{maxOrder: DefaultMaxOrder}
	for _, o := range opts {
		o(cfg)
	}
	expr = expr.Simplify()
	point = point.Simplify()
	if len(FreeSymbols(point)) > 0 {
		return nil, fmt.Errorf("%w: %s has free symbols", ErrInvalidPoint, point)
	}
	switch point.(type) {
	case *NaN, *AccumBounds:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPoint, point)
	}
	if _, ok := expr.(*NaN); ok {
		return Nan, nil
	}
	if !dependsOn(expr, varName) {
		return expr, nil
	}

	if inf, ok := point.(*Infinity); ok {
		coef := N(1)
		if inf.neg {
			coef = N(-1)
		}
		return limitSeries(expr, varName, point, dir, cfg, func(ev *evaluator) *series {
			return ev.monoSeries(monomial{e: bigRat(-1)}, coef)
		})
	}

	if v, ok := continuousAt(expr, varName, point); ok {
		return v, nil
	}

	side := func(sign int64) (Expr, error) {
		d := DirRight
		if sign < 0 {
			d = DirLeft
		}
		return limitSeries(expr, varName, point, d, cfg, func(ev *evaluator) *series {
			return ev.add(ev.constant(point), ev.monoSeries(monomial{e: bigRat(1)}, N(sign)))
		})
	}
	switch dir {
	case DirRight:
		return side(1)
	case DirLeft:
		return side(-1)
	}
	right, err := side(1)
	if err != nil {
		return nil, err
	}
	left, err := side(-1)
	if err != nil {
		return nil, err
	}
	if sameLimit(left, right) {
		return right, nil
	}
	return nil, &NoLimitError{Left: left, Right: right}
}

// limitSeries runs the truncation ladder for one substitution x = sub(t).
func limitSeries(expr Expr, varName string, point Expr, dir Dir, cfg *limitConfig, sub func(*evaluator) *series) (Expr, error) {
	for order := int64(4); order <= cfg.maxOrder; order *= 2 {
		ev := newEvaluator(varName, order)
		ev.sub = sub(ev)
		s := ev.expand(expr)
		if ev.err == nil {
			v, err := ev.limitValue(s)
			if err == nil {
				return v, nil
			}
			ev.err = err
		}
		if !errors.Is(ev.err, errPrecision) {
			return nil, ev.err
		}
	}
	return nil, fmt.Errorf("%w of %s as %s -> %s%s", ErrUndetermined, expr, varName, point, dirSuffix(point, dir))
}

func dirSuffix(point Expr, dir Dir) string {
	if _, ok := point.(*Infinity); ok {
		return ""
	}
	return dir.String()
}

func sameLimit(a, b Expr) bool {
	if a.Equal(b) {
		return true
	}
	va, okA := a.Eval()
	vb, okB := b.Eval()
	if !okA || !okB || math.IsNaN(va) || math.IsNaN(vb) || math.IsInf(va, 0) || math.IsInf(vb, 0) {
		return false
	}
	return math.Abs(va-vb) <= 1e-12*math.Max(1, math.Max(math.Abs(va), math.Abs(vb)))
}

// ============================================================
// Continuity fast path
// ============================================================

const singularTolerance = 1e-10

// continuousAt substitutes point when every subexpression evaluates to a
// finite number away from the singular set of its operator.
func continuousAt(expr Expr, varName string, point Expr) (Expr, bool) {
	x, ok := point.Eval()
	if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, false
	}
	if _, ok := evalAt(expr, varName, x); !ok {
		return nil, false
	}
	v := expr.Sub(varName, point).Simplify()
	f, ok := v.Eval()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return v, true
}

// evalAt evaluates expr at varName = x, failing near removable or essential
// singularities.
func evalAt(e Expr, varName string, x float64) (float64, bool) {
	finite := func(v float64) (float64, bool) {
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	switch v := e.(type) {
	case *Sym:
		if v.name == varName {
			return x, true
		}
		return 0, false
	case *Add:
		sum := 0.0
		for _, t := range v.terms {
			f, ok := evalAt(t, varName, x)
			if !ok {
				return 0, false
			}
			sum += f
		}
		return finite(sum)
	case *Mul:
		prod := 1.0
		for _, t := range v.factors {
			f, ok := evalAt(t, varName, x)
			if !ok {
				return 0, false
			}
			prod *= f
		}
		return finite(prod)
	case *Pow:
		b, ok := evalAt(v.base, varName, x)
		if !ok {
			return 0, false
		}
		ex, ok := evalAt(v.exp, varName, x)
		if !ok {
			return 0, false
		}
		if math.Abs(b) < singularTolerance {
			n, isNum := v.exp.(*Num)
			if !isNum || !n.IsInteger() || !n.IsPositive() {
				return 0, false
			}
		}
		return finite(math.Pow(b, ex))
	case *Func:
		a, ok := evalAt(v.arg, varName, x)
		if !ok || !regularAt(v.name, a) {
			return 0, false
		}
		return finite(floatFuncs[v.name](a))
	}
	if !dependsOn(e, varName) {
		f, ok := e.Eval()
		if !ok {
			return 0, false
		}
		return finite(f)
	}
	return 0, false
}

// regularAt reports whether the named function is continuous at a.
func regularAt(name string, a float64) bool {
	nearInt := math.Abs(a-math.Round(a)) < singularTolerance
	switch name {
	case "log":
		return a > singularTolerance
	case "tan", "sec":
		return math.Abs(math.Cos(a)) > singularTolerance
	case "cot", "csc":
		return math.Abs(math.Sin(a)) > singularTolerance
	case "floor", "ceiling":
		return !nearInt
	case "sign", "acot", "coth":
		return math.Abs(a) > singularTolerance
	case "asin", "acos", "atanh":
		return math.Abs(a) < 1-singularTolerance
	case "acosh":
		return a > 1+singularTolerance
	}
	_, known := floatFuncs[name]
	return known
}
