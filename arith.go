package golimit

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	var infs []*Infinity
	var bounds []*AccumBounds
	coeffs := map[string]*Num{}
	bases := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		switch v := t.(type) {
		case *Num:
			numAccum = numAdd(numAccum, v)
		case *NaN:
			return Nan
		case *Infinity:
			infs = append(infs, v)
		case *AccumBounds:
			bounds = append(bounds, v)
		default:
			c, rest := splitCoeff(v)
			key := rest.String()
			if _, seen := coeffs[key]; !seen {
				order = append(order, key)
				coeffs[key] = N(0)
				bases[key] = rest
			}
			coeffs[key] = numAdd(coeffs[key], c)
		}
	}
	if len(infs) > 0 {
		for _, inf := range infs[1:] {
			if inf.neg != infs[0].neg {
				return Nan
			}
		}
		return infs[0]
	}

	result := []Expr{}
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		result = append(result, scaleBy(c, bases[key]))
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(bounds) > 0 {
		lo := append([]Expr{}, result...)
		hi := append([]Expr{}, result...)
		for _, b := range bounds {
			lo = append(lo, b.lo)
			hi = append(hi, b.hi)
		}
		return Bounds(AddOf(lo...), AddOf(hi...))
	}
	sortTerms(result)
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates the rational coefficient of a product.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return c, rest[0]
	}
	return c, &Mul{factors: rest}
}

func scaleBy(c *Num, e Expr) Expr {
	if c.IsOne() {
		return e
	}
	return MulOf(c, e)
}

// sortTerms orders terms with symbols first (highest degree leading),
// then the rational constant, then the remaining constants.
func sortTerms(terms []Expr) {
	class := func(e Expr) int {
		if _, ok := e.(*Num); ok {
			return 1
		}
		if len(FreeSymbols(e)) > 0 {
			return 0
		}
		return 2
	}
	keys := make([]string, len(terms))
	for i, t := range terms {
		keys[i] = t.String()
	}
	idx := make([]int, len(terms))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := terms[idx[i]], terms[idx[j]]
		ca, cb := class(a), class(b)
		if ca != cb {
			return ca < cb
		}
		if ca == 0 {
			da, db := degree(a), degree(b)
			if da != db {
				return da > db
			}
		}
		return keys[idx[i]] < keys[idx[j]]
	})
	sorted := make([]Expr, len(terms))
	for i, k := range idx {
		sorted[i] = terms[k]
	}
	copy(terms, sorted)
}

// degree approximates the total polynomial degree used for term ordering.
func degree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if n, ok := v.exp.(*Num); ok {
			return degree(v.base) * n.Float64()
		}
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += degree(f)
		}
		return d
	}
	return 0
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Eval() (float64, bool) {
	acc := 0.0
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return 0, false
		}
		acc += v
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool { return sameExpr(a, other) }
func (a *Add) exprType() string      { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	var infs []*Infinity
	var bounds []*AccumBounds
	bases := map[string]Expr{}
	exps := map[string][]Expr{}
	order := []string{}
	for _, f := range flat {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *NaN:
			return Nan
		case *Infinity:
			infs = append(infs, v)
		case *AccumBounds:
			bounds = append(bounds, v)
		default:
			b, ex := asPower(v)
			key := b.String()
			if _, seen := bases[key]; !seen {
				order = append(order, key)
				bases[key] = b
			}
			exps[key] = append(exps[key], ex)
		}
	}
	if coeff.IsZero() {
		if len(infs) > 0 {
			return Nan
		}
		return N(0)
	}

	others := []Expr{}
	pending := []Expr{}
	for _, key := range order {
		p := PowOf(bases[key], AddOf(exps[key]...))
		switch pv := p.(type) {
		case *Num:
			coeff = numMul(coeff, pv)
		case *Mul:
			pending = append(pending, pv.factors...)
		default:
			others = append(others, p)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(pending) > 0 {
		all := append([]Expr{coeff}, others...)
		for _, inf := range infs {
			all = append(all, inf)
		}
		for _, b := range bounds {
			all = append(all, b)
		}
		return MulOf(append(all, pending...)...)
	}

	if len(infs) > 0 || len(bounds) > 0 {
		return mulSpecial(coeff, others, infs, bounds)
	}

	sortFactors(others)
	if coeff.IsOne() {
		if len(others) == 0 {
			return coeff
		}
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	if len(others) == 0 {
		return coeff
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// mulSpecial folds infinities and bounds into a product whose remaining
// factors are constants of known sign.
func mulSpecial(coeff *Num, others []Expr, infs []*Infinity, bounds []*AccumBounds) Expr {
	rest := append([]Expr{coeff}, others...)
	var restExpr Expr = coeff
	if len(others) > 0 {
		restExpr = &Mul{factors: rest}
	}
	v, ok := restExpr.Eval()
	if !ok || math.IsNaN(v) || v == 0 {
		all := append([]Expr{}, rest...)
		for _, inf := range infs {
			all = append(all, inf)
		}
		for _, b := range bounds {
			all = append(all, b)
		}
		return &Mul{factors: all}
	}
	sign := 1
	if v < 0 {
		sign = -1
	}
	if len(infs) > 0 {
		for _, inf := range infs {
			if inf.neg {
				sign = -sign
			}
		}
		for _, b := range bounds {
			s, ok := boundsSign(b)
			if !ok || s == 0 {
				return Nan
			}
			sign *= s
		}
		return infOf(sign)
	}
	var acc Expr = bounds[0]
	for _, b := range bounds[1:] {
		ab, ok := acc.(*AccumBounds)
		if !ok {
			acc = MulOf(acc, b)
			continue
		}
		acc = mulBounds(ab, b)
	}
	ab, isBounds := acc.(*AccumBounds)
	if !isBounds {
		return MulOf(acc, restExpr)
	}
	lo, hi := MulOf(ab.lo, restExpr), MulOf(ab.hi, restExpr)
	if sign < 0 {
		lo, hi = hi, lo
	}
	return Bounds(lo, hi)
}

// boundsSign reports 1 or -1 for an interval that excludes zero, 0 otherwise.
func boundsSign(b *AccumBounds) (int, bool) {
	lo, ok1 := b.lo.Eval()
	hi, ok2 := b.hi.Eval()
	if !ok1 || !ok2 {
		return 0, false
	}
	switch {
	case lo > 0:
		return 1, true
	case hi < 0:
		return -1, true
	}
	return 0, true
}

func mulBounds(a, b *AccumBounds) Expr {
	cands := []Expr{MulOf(a.lo, b.lo), MulOf(a.lo, b.hi), MulOf(a.hi, b.lo), MulOf(a.hi, b.hi)}
	lo, hi := cands[0], cands[0]
	lv, _ := lo.Eval()
	hv := lv
	for _, c := range cands[1:] {
		v, _ := c.Eval()
		if v < lv {
			lo, lv = c, v
		}
		if v > hv {
			hi, hv = c, v
		}
	}
	return Bounds(lo, hi)
}

// asPower views an expression as base**exp.
func asPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

func sortFactors(fs []Expr) {
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(fs))
	for i, e := range fs {
		b, _ := asPower(e)
		ks[i] = keyed{e: e, key: b.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	for i := range ks {
		fs[i] = ks[i].e
	}
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Eval() (float64, bool) {
	acc := 1.0
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return 0, false
		}
		acc *= v
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool { return sameExpr(m, other) }
func (m *Mul) exprType() string      { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base**exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }
func SqrtOf(arg Expr) Expr      { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	if _, ok := base.(*NaN); ok {
		return Nan
	}
	if _, ok := exp.(*NaN); ok {
		return Nan
	}

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	switch b := base.(type) {
	case *Num:
		if b.IsOne() {
			return N(1)
		}
		if expIsNum {
			if r := numPow(b, en); r != nil {
				return r
			}
		}
	case *Const:
		if b.name == "E" {
			return ExpOf(exp)
		}
	case *Infinity:
		if expIsNum {
			if en.IsNegative() {
				return N(0)
			}
			if !b.neg {
				return Oo
			}
			if en.IsInteger() {
				if en.val.Num().Bit(0) == 0 {
					return Oo
				}
				return NegOo
			}
		}
	case *Pow:
		if expIsNum && en.IsInteger() {
			return PowOf(b.base, MulOf(b.exp, en))
		}
	case *Func:
		if b.name == "exp" {
			return ExpOf(MulOf(b.arg, exp))
		}
	case *Mul:
		if expIsNum && en.IsInteger() {
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, en)
			}
			return MulOf(fs...)
		}
	}
	return &Pow{base: base, exp: exp}
}

const maxExactPower = 256

// numPow evaluates b**e exactly when the result stays rational or a reduced
// radical. It returns nil when the power must stay unevaluated and nan for a
// negative power of zero.
func numPow(b, e *Num) Expr {
	if b.IsZero() {
		if e.IsPositive() {
			return N(0)
		}
		// division by zero has no real value
		return Nan
	}
	if e.IsInteger() {
		if !e.val.Num().IsInt64() {
			return nil
		}
		k := e.val.Num().Int64()
		if k > maxExactPower || k < -maxExactPower {
			return nil
		}
		return ratPow(b, k)
	}
	if b.IsNegative() {
		return nil
	}
	p := e.val.Num()
	q := e.val.Denom()
	if !p.IsInt64() || !q.IsInt64() || q.Int64() > 64 {
		return nil
	}
	qi := q.Int64()
	k := new(big.Int)
	r := new(big.Int)
	k.DivMod(p, q, r)
	if !k.IsInt64() || k.Int64() > maxExactPower || k.Int64() < -maxExactPower {
		return nil
	}
	ri := r.Int64()

	whole := ratPow(b, k.Int64())
	s, u := perfectPower(b.val.Num(), qi)
	sc, uc := perfectPower(b.val.Denom(), qi)
	if k.Sign() == 0 && s.Cmp(big.NewInt(1)) == 0 && sc.Cmp(big.NewInt(1)) == 0 && uc.Cmp(big.NewInt(1)) == 0 {
		return nil
	}

	coeff := new(big.Rat).Set(whole.val)
	coeff.Mul(coeff, new(big.Rat).SetInt(new(big.Int).Exp(s, big.NewInt(ri), nil)))
	coeff.Mul(coeff, new(big.Rat).SetInt(new(big.Int).Exp(sc, big.NewInt(qi-ri), nil)))
	coeff.Quo(coeff, new(big.Rat).SetInt(b.val.Denom()))

	factors := []Expr{}
	if u.Cmp(big.NewInt(1)) != 0 {
		factors = append(factors, &Pow{base: &Num{val: new(big.Rat).SetInt(u)}, exp: F(ri, qi)})
	}
	if uc.Cmp(big.NewInt(1)) != 0 {
		factors = append(factors, &Pow{base: &Num{val: new(big.Rat).SetInt(uc)}, exp: F(qi-ri, qi)})
	}
	c := &Num{val: coeff}
	if len(factors) == 0 {
		return c
	}
	sortFactors(factors)
	if c.IsOne() && len(factors) == 1 {
		return factors[0]
	}
	if c.IsOne() {
		return &Mul{factors: factors}
	}
	return &Mul{factors: append([]Expr{c}, factors...)}
}

// ratPow computes b**k for an integer k.
func ratPow(b *Num, k int64) *Num {
	neg := k < 0
	if neg {
		k = -k
	}
	num := new(big.Int).Exp(b.val.Num(), big.NewInt(k), nil)
	den := new(big.Int).Exp(b.val.Denom(), big.NewInt(k), nil)
	r := new(big.Rat).SetFrac(num, den)
	if neg {
		r.Inv(r)
	}
	return &Num{val: r}
}

// perfectPower splits n = s**q * u, extracting every q-th power found by
// trial division.
func perfectPower(n *big.Int, q int64) (s, u *big.Int) {
	s, u = big.NewInt(1), big.NewInt(1)
	if !n.IsInt64() {
		return s, new(big.Int).Set(n)
	}
	m := n.Int64()
	for p := int64(2); p*p <= m && p <= 100000; p++ {
		cnt := int64(0)
		for m%p == 0 {
			m /= p
			cnt++
		}
		if cnt == 0 {
			continue
		}
		bp := big.NewInt(p)
		s.Mul(s, new(big.Int).Exp(bp, big.NewInt(cnt/q), nil))
		u.Mul(u, new(big.Int).Exp(bp, big.NewInt(cnt%q), nil))
	}
	u.Mul(u, big.NewInt(m))
	return s, u
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Eval() (float64, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return 0, false
	}
	return math.Pow(b, e), true
}

func (p *Pow) Equal(other Expr) bool { return sameExpr(p, other) }
func (p *Pow) exprType() string      { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Rendering
// ============================================================

// isNegativeTerm reports whether a sum term prints with a leading minus.
func isNegativeTerm(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			return c.IsNegative()
		}
	case *Infinity:
		return v.neg
	}
	return false
}

func negateTerm(e Expr) Expr {
	switch v := e.(type) {
	case *Num:
		return numNeg(v)
	case *Infinity:
		return infOf(1)
	case *Mul:
		c := v.factors[0].(*Num)
		nc := numNeg(c)
		if nc.IsOne() {
			if len(v.factors) == 2 {
				return v.factors[1]
			}
			return &Mul{factors: v.factors[1:]}
		}
		return &Mul{factors: append([]Expr{nc}, v.factors[1:]...)}
	}
	return e
}

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		neg := isNegativeTerm(t)
		s := t.String()
		if neg {
			s = negateTerm(t).String()
		}
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(s)
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		neg := isNegativeTerm(t)
		s := t.LaTeX()
		if neg {
			s = negateTerm(t).LaTeX()
		}
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// fraction splits a product into numerator and denominator factors.
func (m *Mul) fraction() (sign string, coeff *Num, num, den []Expr) {
	coeff = N(1)
	rest := m.factors
	if c, ok := m.factors[0].(*Num); ok {
		coeff = c
		rest = m.factors[1:]
	}
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	for _, f := range rest {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() {
				den = append(den, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		num = append(num, f)
	}
	return sign, coeff, num, den
}

func (m *Mul) String() string {
	sign, coeff, num, den := m.fraction()
	numParts := []string{}
	if !coeff.val.Num().IsInt64() || coeff.val.Num().Int64() != 1 {
		numParts = append(numParts, coeff.val.Num().String())
	}
	for _, f := range num {
		numParts = append(numParts, factorString(f))
	}
	denParts := []string{}
	if !coeff.val.IsInt() {
		denParts = append(denParts, coeff.val.Denom().String())
	}
	for _, f := range den {
		denParts = append(denParts, factorString(f))
	}
	numStr := "1"
	if len(numParts) > 0 {
		numStr = strings.Join(numParts, "*")
	}
	switch len(denParts) {
	case 0:
		return sign + numStr
	case 1:
		return sign + numStr + "/" + denParts[0]
	}
	return sign + numStr + "/(" + strings.Join(denParts, "*") + ")"
}

func factorString(f Expr) string {
	switch f.(type) {
	case *Add:
		return "(" + f.String() + ")"
	}
	return f.String()
}

func (m *Mul) LaTeX() string {
	sign, coeff, num, den := m.fraction()
	numParts := []string{}
	if !coeff.val.Num().IsInt64() || coeff.val.Num().Int64() != 1 {
		numParts = append(numParts, coeff.val.Num().String())
	}
	for _, f := range num {
		if _, isAdd := f.(*Add); isAdd {
			numParts = append(numParts, "\\left("+f.LaTeX()+"\\right)")
		} else {
			numParts = append(numParts, f.LaTeX())
		}
	}
	denParts := []string{}
	if !coeff.val.IsInt() {
		denParts = append(denParts, coeff.val.Denom().String())
	}
	for _, f := range den {
		if _, isAdd := f.(*Add); isAdd {
			denParts = append(denParts, "\\left("+f.LaTeX()+"\\right)")
		} else {
			denParts = append(denParts, f.LaTeX())
		}
	}
	numStr := "1"
	if len(numParts) > 0 {
		numStr = strings.Join(numParts, " ")
	}
	if len(denParts) == 0 {
		return sign + numStr
	}
	return sign + "\\frac{" + numStr + "}{" + strings.Join(denParts, " ") + "}"
}

func powBaseString(b Expr) string {
	switch v := b.(type) {
	case *Add, *Mul, *Pow, *AccumBounds:
		return "(" + b.String() + ")"
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return "(" + b.String() + ")"
		}
	}
	return b.String()
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok {
		switch {
		case en.val.Cmp(big.NewRat(1, 2)) == 0:
			return "sqrt(" + p.base.String() + ")"
		case en.val.Cmp(big.NewRat(-1, 2)) == 0:
			return "1/sqrt(" + p.base.String() + ")"
		case en.IsNegOne():
			return "1/" + powBaseString(p.base)
		case en.IsNegative() || !en.IsInteger():
			return powBaseString(p.base) + "**(" + en.String() + ")"
		}
		return powBaseString(p.base) + "**" + en.String()
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Add, *Mul, *Pow:
		expStr = "(" + expStr + ")"
	}
	return powBaseString(p.base) + "**" + expStr
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok {
		switch {
		case en.val.Cmp(big.NewRat(1, 2)) == 0:
			return "\\sqrt{" + p.base.LaTeX() + "}"
		case en.IsNegOne():
			return "\\frac{1}{" + p.base.LaTeX() + "}"
		}
	}
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}
