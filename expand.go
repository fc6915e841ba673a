package golimit

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Expression → series
// ============================================================

// expand returns the series of e with the limit variable replaced by ev.sub.
func (ev *evaluator) expand(e Expr) *series {
	if ev.err != nil {
		return ev.fail(ev.err)
	}
	if !dependsOn(e, ev.varName) {
		return ev.constantExpr(e)
	}
	switch v := e.(type) {
	case *Sym:
		return ev.sub
	case *Add:
		acc := ev.zero()
		for _, t := range v.terms {
			acc = ev.add(acc, ev.expand(t))
		}
		return acc
	case *Mul:
		acc := ev.one()
		for _, f := range v.factors {
			acc = ev.mul(acc, ev.expand(f))
			if ev.err != nil {
				break
			}
		}
		return acc
	case *Pow:
		base := ev.expand(v.base)
		if n, ok := v.exp.(*Num); ok {
			return ev.powRat(base, n.val)
		}
		return ev.exp(ev.mul(ev.expand(v.exp), ev.log(base)))
	case *Func:
		return ev.function(v.name, ev.expand(v.arg))
	}
	return ev.fail(fmt.Errorf("%w: cannot expand %s", ErrUndetermined, e))
}

func (ev *evaluator) constantExpr(e Expr) *series {
	switch e.(type) {
	case *AccumBounds:
		return ev.constant(e)
	case *Infinity, *NaN:
		return ev.fail(fmt.Errorf("%w: %s inside the expression", ErrUndetermined, e))
	}
	f, ok := e.Eval()
	if ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return ev.fail(fmt.Errorf("%w: %s is not a finite real number", ErrUndetermined, e))
	}
	return ev.constant(e)
}

func (ev *evaluator) function(name string, a *series) *series {
	if ev.err != nil {
		return a
	}
	switch name {
	case "exp":
		return ev.exp(a)
	case "log":
		return ev.log(a)
	case "sin":
		return ev.sinCos(a, false)
	case "cos":
		return ev.sinCos(a, true)
	case "tan", "cot", "sec", "csc":
		return ev.trigRatio(name, a)
	case "sinh", "cosh", "tanh", "coth":
		return ev.hyperbolic(name, a)
	case "atan":
		return ev.atan(a)
	case "acot":
		if a.isZero() {
			return ev.constant(MulOf(F(1, 2), Pi))
		}
		return ev.atan(ev.inverse(a))
	case "asin":
		return ev.asin(a)
	case "acos":
		return ev.minus(ev.constant(MulOf(F(1, 2), Pi)), ev.asin(a))
	case "asinh":
		return ev.asinh(a)
	case "acosh":
		// log(u + sqrt(u**2 - 1))
		root := ev.powRat(ev.minus(ev.mul(a, a), ev.one()), big.NewRat(1, 2))
		return ev.log(ev.add(a, root))
	case "atanh":
		num := ev.log(ev.add(ev.one(), a))
		den := ev.log(ev.minus(ev.one(), a))
		return ev.scaleConst(ev.minus(num, den), F(1, 2))
	case "Abs":
		s, err := ev.leadSign(a)
		if err != nil {
			return ev.fail(err)
		}
		if s < 0 {
			return ev.neg(a)
		}
		return a
	case "sign":
		s, err := ev.leadSign(a)
		if err != nil {
			return ev.fail(err)
		}
		return ev.constant(N(int64(s)))
	case "floor", "ceiling":
		return ev.floorCeil(a, name == "ceiling")
	}
	return ev.fail(fmt.Errorf("%w: no expansion for %s", ErrUndetermined, name))
}

// ============================================================
// Elementary functions
// ============================================================

func (ev *evaluator) exp(a *series) *series {
	if ev.err != nil || a.isZero() {
		return ev.one()
	}
	if a.scale != nil {
		dir, err := ev.scaleDir(a)
		if err != nil {
			return ev.fail(err)
		}
		if dir < 0 {
			return ev.compose(a, invFact)
		}
		// a itself becomes the exponent of a deeper scale
		if _, err := ev.leadSign(a); err != nil {
			return ev.fail(err)
		}
		return ev.norm([]term{{m: unitMono, c: N(1)}}, nil, a)
	}
	all, lnc, c0, small, err := ev.split(a)
	if err != nil {
		return ev.fail(err)
	}
	var div []term
	var loglog Expr
	for _, t := range all {
		if _, ok := t.c.(*AccumBounds); ok {
			return ev.fail(fmt.Errorf("%w: oscillating exponent", ErrUndetermined))
		}
		switch {
		case dom(t.m, loglogMono) == 0:
			loglog = t.c
		case dom(t.m, logMono) > 0:
			div = append(div, t)
		default:
			return ev.fail(fmt.Errorf("%w: exponent grows slower than a logarithm", ErrUndetermined))
		}
	}
	res := ev.compose(small, invFact)
	res = ev.scaleConst(res, coefMap(c0, ExpOf, true))
	if lnc != nil {
		e, err := ratOf(lnc)
		if err != nil {
			return ev.fail(err)
		}
		res = ev.mul(res, ev.monoSeries(monomial{e: e}, N(1)))
	}
	if loglog != nil {
		// exp(n·ln(-ln t)) = (-ln t)^n
		n, ok := loglog.(*Num)
		if !ok || !n.IsInteger() || !n.val.Num().IsInt64() {
			return ev.fail(fmt.Errorf("%w: fractional power of a logarithm", ErrUndetermined))
		}
		k := n.val.Num().Int64()
		c := N(1)
		if k%2 != 0 {
			c = N(-1)
		}
		res = ev.mul(res, ev.monoSeries(monomial{e: new(big.Rat), k: int(k)}, c))
	}
	if len(div) == 0 {
		return res
	}
	return ev.withScale(res, ev.norm(div, nil, nil))
}

// ratOf converts a constant power of t to an exact or float rational.
func ratOf(c Expr) (*big.Rat, error) {
	if n, ok := c.(*Num); ok {
		return n.Rat(), nil
	}
	if _, ok := c.(*AccumBounds); ok {
		return nil, fmt.Errorf("%w: oscillating exponent", ErrUndetermined)
	}
	f, ok := c.Eval()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: exponent %s", ErrUndetermined, c)
	}
	return new(big.Rat).SetFloat64(f), nil
}

func (ev *evaluator) log(a *series) *series {
	if ev.err != nil {
		return a
	}
	if len(a.terms) == 0 {
		if a.prec == nil {
			return ev.fail(fmt.Errorf("%w: logarithm of zero", ErrUndetermined))
		}
		return ev.fail(errPrecision)
	}
	lead := a.terms[0]
	if lead.m.j != 0 {
		return ev.fail(fmt.Errorf("%w: iterated logarithm", ErrUndetermined))
	}
	s, ok := termSign(lead)
	if !ok {
		return ev.fail(fmt.Errorf("%w: logarithm of an oscillating value", ErrUndetermined))
	}
	if s < 0 {
		return ev.fail(ErrComplex)
	}
	// c·(ln t)^k = (-1)^k·c · (-ln t)^k, and the first factor is positive
	pos := lead.c
	if lead.m.k%2 != 0 {
		pos = coefMap(lead.c, func(e Expr) Expr { return MulOf(N(-1), e) }, false)
	}
	cinv, err := coefInv(lead.c)
	if err != nil {
		return ev.fail(err)
	}
	r := ev.mul(&series{terms: a.terms[1:], prec: a.prec}, ev.monoSeries(lead.m.inv(), cinv))
	res := ev.compose(r, func(j int) Expr {
		if j == 0 {
			return N(0)
		}
		if j%2 == 1 {
			return F(1, int64(j))
		}
		return F(-1, int64(j))
	})
	res = ev.add(res, ev.constant(coefMap(pos, LogOf, true)))
	if lead.m.e.Sign() != 0 {
		res = ev.add(res, ev.monoSeries(logMono, NRat(lead.m.e)))
	}
	if lead.m.k != 0 {
		res = ev.add(res, ev.monoSeries(loglogMono, N(int64(lead.m.k))))
	}
	if a.scale != nil {
		res = ev.add(res, a.scale)
	}
	return res
}

// bounded returns the constant series [lo, hi].
func (ev *evaluator) bounded(lo, hi Expr) *series { return ev.constant(Bounds(lo, hi)) }

func (ev *evaluator) sinCos(a *series, cos bool) *series {
	if ev.err != nil {
		return a
	}
	if a.isZero() {
		if cos {
			return ev.one()
		}
		return ev.zero()
	}
	grows, err := ev.growing(a)
	if err != nil {
		return ev.fail(err)
	}
	if grows {
		return ev.bounded(N(-1), N(1))
	}
	var c0 Expr = N(0)
	small := a
	if a.scale == nil {
		_, _, c, rest, err := ev.split(a)
		if err != nil {
			return ev.fail(err)
		}
		c0, small = c, rest
	}
	if _, ok := c0.(*AccumBounds); ok {
		return ev.fail(fmt.Errorf("%w: trigonometric function of an oscillating value", ErrUndetermined))
	}
	s, c := SinOf(c0), CosOf(c0)
	derivs := []Expr{s, c, MulOf(N(-1), s), MulOf(N(-1), c)}
	if cos {
		derivs = []Expr{c, MulOf(N(-1), s), MulOf(N(-1), c), s}
	}
	return ev.compose(small, func(j int) Expr { return MulOf(derivs[j%4], invFact(j)) })
}

func (ev *evaluator) trigRatio(name string, a *series) *series {
	grows, err := ev.growing(a)
	if err != nil {
		return ev.fail(err)
	}
	if grows {
		return ev.bounded(NegOo, Oo)
	}
	switch name {
	case "tan":
		return ev.div(ev.sinCos(a, false), ev.sinCos(a, true))
	case "cot":
		return ev.div(ev.sinCos(a, true), ev.sinCos(a, false))
	case "sec":
		return ev.inverse(ev.sinCos(a, true))
	}
	return ev.inverse(ev.sinCos(a, false))
}

func (ev *evaluator) hyperbolic(name string, a *series) *series {
	ep, em := ev.exp(a), ev.exp(ev.neg(a))
	sinh := ev.scaleConst(ev.minus(ep, em), F(1, 2))
	cosh := ev.scaleConst(ev.add(ep, em), F(1, 2))
	switch name {
	case "sinh":
		return sinh
	case "cosh":
		return cosh
	case "tanh":
		return ev.div(sinh, cosh)
	}
	return ev.div(cosh, sinh)
}

// atanSeries sums the Taylor series of atan around zero.
func (ev *evaluator) atanSeries(u *series) *series {
	return ev.compose(u, func(j int) Expr {
		if j%2 == 0 {
			return N(0)
		}
		if (j/2)%2 == 0 {
			return F(1, int64(j))
		}
		return F(-1, int64(j))
	})
}

func (ev *evaluator) atan(a *series) *series {
	if ev.err != nil || a.isZero() {
		return ev.zero()
	}
	grows, err := ev.growing(a)
	if err != nil {
		return ev.fail(err)
	}
	if grows {
		// atan(u) = sign(u)·pi/2 - atan(1/u)
		s, err := ev.leadSign(a)
		if err != nil {
			return ev.fail(err)
		}
		half := ev.constant(MulOf(F(int64(s), 2), Pi))
		return ev.minus(half, ev.atanSeries(ev.inverse(a)))
	}
	if a.scale != nil {
		return ev.atanSeries(a)
	}
	_, _, c0, r, err := ev.split(a)
	if err != nil {
		return ev.fail(err)
	}
	if _, ok := c0.(*AccumBounds); ok {
		return ev.fail(fmt.Errorf("%w: arctangent of an oscillating value", ErrUndetermined))
	}
	if isZeroCoef(c0) {
		return ev.atanSeries(r)
	}
	// atan(c + r) = atan(c) + atan(r / (1 + c² + c·r))
	den := ev.add(ev.constant(AddOf(N(1), PowOf(c0, N(2)))), ev.scaleConst(r, c0))
	w := ev.div(r, den)
	return ev.add(ev.constant(AtanOf(c0)), ev.atanSeries(w))
}

func (ev *evaluator) asin(a *series) *series {
	if ev.err != nil || a.isZero() {
		return ev.zero()
	}
	// asin(u) = atan(u / sqrt(1 - u²))
	root := ev.powRat(ev.minus(ev.one(), ev.mul(a, a)), big.NewRat(1, 2))
	if len(root.terms) == 0 && root.prec == nil {
		s, err := ev.leadSign(a)
		if err != nil {
			return ev.fail(err)
		}
		return ev.constant(MulOf(F(int64(s), 2), Pi))
	}
	return ev.atan(ev.div(a, root))
}

func (ev *evaluator) asinh(a *series) *series {
	if ev.err != nil || a.isZero() {
		return ev.zero()
	}
	s, err := ev.leadSign(a)
	if err != nil {
		return ev.fail(err)
	}
	if s < 0 {
		return ev.neg(ev.asinh(ev.neg(a)))
	}
	root := ev.powRat(ev.add(ev.mul(a, a), ev.one()), big.NewRat(1, 2))
	return ev.log(ev.add(a, root))
}

func (ev *evaluator) floorCeil(a *series, ceiling bool) *series {
	grows, err := ev.growing(a)
	if err != nil {
		return ev.fail(err)
	}
	if grows {
		if ceiling {
			return ev.add(a, ev.bounded(N(0), N(1)))
		}
		return ev.add(a, ev.bounded(N(-1), N(0)))
	}
	var c0 Expr = N(0)
	small := a
	if a.scale == nil {
		_, _, c, rest, err := ev.split(a)
		if err != nil {
			return ev.fail(err)
		}
		c0, small = c, rest
	}
	if _, ok := c0.(*AccumBounds); ok {
		return ev.fail(fmt.Errorf("%w: integer part of an oscillating value", ErrUndetermined))
	}
	n, isNum := c0.(*Num)
	if !isNum || !n.IsInteger() {
		var v Expr
		if ceiling {
			v = CeilingOf(c0)
		} else {
			v = FloorOf(c0)
		}
		if _, ok := v.(*Num); !ok {
			return ev.fail(fmt.Errorf("%w: integer part of %s", ErrUndetermined, c0))
		}
		return ev.constant(v)
	}
	s, err := ev.leadSign(small)
	if err != nil {
		return ev.fail(err)
	}
	switch {
	case s > 0 && ceiling:
		return ev.constant(numAdd(n, N(1)))
	case s < 0 && !ceiling:
		return ev.constant(numSub(n, N(1)))
	}
	return ev.constant(n)
}

// ============================================================
// Limit value of a series
// ============================================================

func (ev *evaluator) limitValue(s *series) (Expr, error) {
	dir, err := ev.scaleDir(s)
	if err != nil {
		return nil, err
	}
	if dir < 0 {
		return N(0), nil
	}
	if len(s.terms) == 0 {
		if s.prec == nil || (dir == 0 && s.prec.vanishing()) {
			return N(0), nil
		}
		return nil, errPrecision
	}
	lead := s.terms[0]
	if dir == 0 {
		switch {
		case lead.m.vanishing():
			return N(0), nil
		case lead.m.isUnit():
			v := lead.c.Simplify()
			if _, ok := v.(*NaN); ok {
				return nil, ErrComplex
			}
			return v, nil
		}
	}
	return infinityOf(lead)
}

// infinityOf is the limit of a term that grows without bound.
func infinityOf(t term) (Expr, error) {
	if sgn, ok := termSign(t); ok {
		return infOf(sgn), nil
	}
	if b, ok := t.c.(*AccumBounds); ok {
		lo, okLo := b.lo.Eval()
		hi, okHi := b.hi.Eval()
		flip := t.m.k%2 != 0
		switch {
		case okLo && lo == 0 && !flip, okHi && hi == 0 && flip:
			return Bounds(N(0), Oo), nil
		case okHi && hi == 0 && !flip, okLo && lo == 0 && flip:
			return Bounds(NegOo, N(0)), nil
		}
		return Bounds(NegOo, Oo), nil
	}
	return nil, fmt.Errorf("%w: sign of %s", ErrUndetermined, t.c)
}
