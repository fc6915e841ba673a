package golimit

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
)

// ============================================================
// Asymptotic series as t → 0+
// ============================================================
//
// A series is exp(D) · (Σ c_i · t^e_i · (ln t)^k_i · λ^j_i + O(prec)), where
// λ = ln(-ln t) and D is either nil or itself a series that diverges faster
// than ln t. Terms are kept most dominant first. Coefficients are constant
// expressions and may be AccumBounds when only bounds of an oscillating part
// are known; such terms are exact as sets.

// errPrecision means the requested truncation order was too low to decide.
var errPrecision = errors.New("golimit: insufficient series precision")

const (
	maxSeriesTerms = 128
	maxComposeIter = 200
	zeroTolerance  = 1e-12
)

// monomial is t^e · (ln t)^k · (ln(-ln t))^j.
type monomial struct {
	e *big.Rat
	k int
	j int
}

var (
	unitMono   = monomial{e: new(big.Rat)}
	logMono    = monomial{e: new(big.Rat), k: 1}
	loglogMono = monomial{e: new(big.Rat), j: 1}
)

func bigRat(n int64) *big.Rat { return big.NewRat(n, 1) }

// beyondMono is smaller than every monomial the evaluator produces; it marks
// contributions dropped because of an exponentially smaller scale.
var beyondMono = monomial{e: big.NewRat(1<<30, 1)}

func (m monomial) mul(o monomial) monomial {
	return monomial{e: new(big.Rat).Add(m.e, o.e), k: m.k + o.k, j: m.j + o.j}
}

func (m monomial) inv() monomial { return monomial{e: new(big.Rat).Neg(m.e), k: -m.k, j: -m.j} }

// pow raises m to r; it fails when a log power would not stay integral.
func (m monomial) pow(r *big.Rat) (monomial, bool) {
	k, okK := intPow(m.k, r)
	j, okJ := intPow(m.j, r)
	if !okK || !okJ {
		return monomial{}, false
	}
	return monomial{e: new(big.Rat).Mul(m.e, r), k: k, j: j}, true
}

func intPow(n int, r *big.Rat) (int, bool) {
	v := new(big.Rat).Mul(big.NewRat(int64(n), 1), r)
	if !v.IsInt() || !v.Num().IsInt64() {
		return 0, false
	}
	return int(v.Num().Int64()), true
}

func (m monomial) divergent() bool { return dom(m, unitMono) > 0 }

func (m monomial) vanishing() bool { return dom(m, unitMono) < 0 }

func (m monomial) isUnit() bool { return m.e.Sign() == 0 && m.k == 0 && m.j == 0 }

func (m monomial) key() string { return fmt.Sprintf("%s|%d|%d", m.e.RatString(), m.k, m.j) }

func (m monomial) String() string {
	out := "t**" + m.e.RatString()
	if m.k != 0 {
		out += fmt.Sprintf("*log(t)**%d", m.k)
	}
	if m.j != 0 {
		out += fmt.Sprintf("*log(-log(t))**%d", m.j)
	}
	return out
}

// dom is positive when a dominates b as t → 0+, negative when b dominates.
func dom(a, b monomial) int {
	if c := a.e.Cmp(b.e); c != 0 {
		return -c
	}
	switch {
	case a.k > b.k:
		return 1
	case a.k < b.k:
		return -1
	case a.j > b.j:
		return 1
	case a.j < b.j:
		return -1
	}
	return 0
}

// minPrec returns the more dominant of two error bounds; nil is exact.
func minPrec(a, b *monomial) *monomial {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case dom(*a, *b) >= 0:
		return a
	}
	return b
}

type term struct {
	m monomial
	c Expr
}

type series struct {
	terms []term
	prec  *monomial
	scale *series
}

func (s *series) isZero() bool { return len(s.terms) == 0 && s.prec == nil }

func (s *series) String() string {
	out := ""
	if s.scale != nil {
		out = "exp(" + s.scale.String() + ")*"
	}
	out += "(" + termsString(s.terms)
	if s.prec != nil {
		if len(s.terms) > 0 {
			out += " + "
		}
		out += "O(" + s.prec.String() + ")"
	}
	return out + ")"
}

func termsString(ts []term) string {
	if len(ts) == 0 {
		return "0"
	}
	out := ""
	for i, t := range ts {
		if i > 0 {
			out += " + "
		}
		out += "(" + t.c.String() + ")*" + t.m.String()
	}
	return out
}

// ============================================================
// Coefficients
// ============================================================

func isZeroCoef(c Expr) bool {
	n, ok := c.(*Num)
	return ok && n.IsZero()
}

// coefAdd sums two coefficients and reports whether the sum vanished,
// allowing for rounding when the symbolic sum does not fold.
func coefAdd(a, b Expr) (Expr, bool) {
	s := AddOf(a, b)
	if isZeroCoef(s) {
		return s, true
	}
	if _, ok := s.(*AccumBounds); ok {
		return s, false
	}
	va, okA := a.Eval()
	vb, okB := b.Eval()
	vs, okS := s.Eval()
	if okA && okB && okS && !math.IsNaN(vs) {
		scale := math.Max(math.Abs(va), math.Abs(vb))
		if math.Abs(vs) <= zeroTolerance*scale {
			return N(0), true
		}
	}
	return s, false
}

// coefSign returns the sign of a coefficient when it is determined.
func coefSign(c Expr) (int, bool) {
	switch v := c.(type) {
	case *Num:
		return v.val.Sign(), v.val.Sign() != 0
	case *AccumBounds:
		lo, okLo := v.lo.Eval()
		hi, okHi := v.hi.Eval()
		switch {
		case okLo && lo > 0:
			return 1, true
		case okHi && hi < 0:
			return -1, true
		}
		return 0, false
	}
	f, ok := c.Eval()
	if !ok || math.IsNaN(f) || f == 0 {
		return 0, false
	}
	if f > 0 {
		return 1, true
	}
	return -1, true
}

// coefMap applies a monotone function to a coefficient, mapping the end
// points of bounds. Decreasing functions swap them.
func coefMap(c Expr, f func(Expr) Expr, increasing bool) Expr {
	if b, ok := c.(*AccumBounds); ok {
		lo, hi := f(b.lo), f(b.hi)
		if !increasing {
			lo, hi = hi, lo
		}
		return Bounds(lo, hi)
	}
	return f(c)
}

func coefInv(c Expr) (Expr, error) {
	if b, ok := c.(*AccumBounds); ok {
		if _, known := coefSign(b); !known {
			return nil, fmt.Errorf("%w: division by an interval containing zero", ErrUndetermined)
		}
	}
	return coefMap(c, func(e Expr) Expr { return PowOf(e, N(-1)) }, false), nil
}

// termSign is the sign of a term for small positive t. Only odd powers of
// ln t are negative.
func termSign(t term) (int, bool) {
	s, ok := coefSign(t.c)
	if !ok {
		return 0, false
	}
	if t.m.k%2 != 0 {
		s = -s
	}
	return s, true
}

func invFact(j int) Expr {
	f := new(big.Int).MulRange(1, int64(j))
	return NRat(new(big.Rat).SetFrac(big.NewInt(1), f))
}

// ============================================================
// Evaluator
// ============================================================

type evaluator struct {
	varName string
	sub     *series
	order   *big.Rat
	kmin    int
	err     error
}

func newEvaluator(varName string, order int64) *evaluator {
	return &evaluator{varName: varName, order: big.NewRat(order, 1), kmin: -int(order)}
}

// fail records the first error and returns a placeholder series.
func (ev *evaluator) fail(err error) *series {
	if ev.err == nil {
		ev.err = err
	}
	return &series{prec: &monomial{e: new(big.Rat)}}
}

func (ev *evaluator) zero() *series { return &series{} }
func (ev *evaluator) one() *series  { return ev.constant(N(1)) }

func (ev *evaluator) constant(c Expr) *series {
	return ev.monoSeries(unitMono, c)
}

func (ev *evaluator) monoSeries(m monomial, c Expr) *series {
	if isZeroCoef(c) {
		return ev.zero()
	}
	return ev.norm([]term{{m: m, c: c}}, nil, nil)
}

func (ev *evaluator) bigO(m monomial) *series { return &series{prec: &m} }

// truncated reports whether m falls beyond the working order. Powers of t
// count from t^0, or from lead when lead vanishes, so a leading t^40 keeps its
// own corrections. Log powers always count from lead.
func (ev *evaluator) truncated(m, lead monomial) bool {
	ref := unitMono.e
	if lead.vanishing() {
		ref = lead.e
	}
	return new(big.Rat).Sub(m.e, ref).Cmp(ev.order) >= 0 || m.k-lead.k < ev.kmin || m.j-lead.j < ev.kmin
}

// norm merges equal monomials, drops zero coefficients, sorts by dominance
// and applies the error bound and the evaluator's truncation.
func (ev *evaluator) norm(terms []term, prec *monomial, scale *series) *series {
	merged := mergeTerms(terms)
	if prec != nil {
		kept := merged[:0]
		for _, t := range merged {
			if dom(t.m, *prec) > 0 {
				kept = append(kept, t)
			}
		}
		merged = kept
	}
	for i, t := range merged {
		if i >= maxSeriesTerms || ev.truncated(t.m, merged[0].m) {
			m := t.m
			prec = minPrec(prec, &m)
			merged = merged[:i]
			break
		}
	}
	if len(merged) == 0 && prec == nil {
		return &series{}
	}
	if scale != nil && scale.isZero() {
		scale = nil
	}
	return &series{terms: merged, prec: prec, scale: scale}
}

func mergeTerms(terms []term) []term {
	if len(terms) == 0 {
		return nil
	}
	index := map[string]int{}
	out := make([]term, 0, len(terms))
	dead := map[int]bool{}
	for _, t := range terms {
		if isZeroCoef(t.c) {
			continue
		}
		key := t.m.key()
		if i, ok := index[key]; ok {
			sum, zero := coefAdd(out[i].c, t.c)
			out[i].c = sum
			dead[i] = zero
			continue
		}
		index[key] = len(out)
		out = append(out, term{m: t.m, c: t.c})
	}
	live := out[:0]
	for i, t := range out {
		if !dead[i] {
			live = append(live, t)
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return dom(live[i].m, live[j].m) > 0 })
	if len(live) == 0 {
		return nil
	}
	return live
}

func scaleTerms(ts []term, c Expr) []term {
	out := make([]term, len(ts))
	for i, t := range ts {
		out[i] = term{m: t.m, c: MulOf(c, t.c)}
	}
	return out
}

// scaleCmp compares exp(da) with exp(db): positive when da grows faster.
// A nil scale is exp(0).
func (ev *evaluator) scaleCmp(da, db *series) (int, error) {
	var d *series
	switch {
	case da == nil && db == nil:
		return 0, nil
	case db == nil:
		d = da
	case da == nil:
		d = ev.neg(db)
	default:
		d = ev.minus(da, db)
	}
	if d.isZero() {
		return 0, nil
	}
	if ev.err != nil {
		return 0, ev.err
	}
	return ev.leadSign(d)
}

// sumScale adds two exponents; nil stands for zero.
func (ev *evaluator) sumScale(a, b *series) *series {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	s := ev.add(a, b)
	if s.isZero() {
		return nil
	}
	return s
}

// mulScale multiplies an exponent by a constant; nil stays nil.
func (ev *evaluator) mulScale(d *series, c Expr) *series {
	if d == nil {
		return nil
	}
	return ev.scaleConst(d, c)
}

// scaleDir is the direction of the exponential factor: 1 when it grows
// beyond all powers, -1 when it decays, 0 without one.
func (ev *evaluator) scaleDir(s *series) (int, error) {
	return ev.scaleCmp(s.scale, nil)
}

func (ev *evaluator) add(a, b *series) *series {
	if a.isZero() {
		return b
	}
	if b.isZero() {
		return a
	}
	c, err := ev.scaleCmp(a.scale, b.scale)
	if err != nil {
		return ev.fail(err)
	}
	if c != 0 {
		keep := a
		if c < 0 {
			keep = b
		}
		return ev.norm(keep.terms, minPrec(keep.prec, &beyondMono), keep.scale)
	}
	terms := append(append([]term{}, a.terms...), b.terms...)
	return ev.norm(terms, minPrec(a.prec, b.prec), a.scale)
}

func (ev *evaluator) neg(a *series) *series { return ev.scaleConst(a, N(-1)) }

func (ev *evaluator) minus(a, b *series) *series { return ev.add(a, ev.neg(b)) }

func (ev *evaluator) scaleConst(a *series, c Expr) *series {
	if isZeroCoef(c) {
		return ev.zero()
	}
	return ev.norm(scaleTerms(a.terms, c), a.prec, a.scale)
}

func (ev *evaluator) mul(a, b *series) *series {
	if a.isZero() || b.isZero() {
		return ev.zero()
	}
	var prec *monomial
	var lead monomial
	if len(a.terms) > 0 && len(b.terms) > 0 {
		lead = a.terms[0].m.mul(b.terms[0].m)
	}
	cand := func(m monomial) {
		if prec == nil || dom(m, *prec) > 0 {
			mm := m
			prec = &mm
		}
	}
	if b.prec != nil && len(a.terms) > 0 {
		cand(a.terms[0].m.mul(*b.prec))
	}
	if a.prec != nil && len(b.terms) > 0 {
		cand(b.terms[0].m.mul(*a.prec))
	}
	if a.prec != nil && b.prec != nil {
		cand(a.prec.mul(*b.prec))
	}
	terms := make([]term, 0, len(a.terms)*len(b.terms))
	for _, x := range a.terms {
		for _, y := range b.terms {
			m := x.m.mul(y.m)
			if prec != nil && dom(m, *prec) <= 0 {
				continue
			}
			if ev.truncated(m, lead) {
				cand(m)
				continue
			}
			terms = append(terms, term{m: m, c: MulOf(x.c, y.c)})
		}
	}
	return ev.norm(terms, prec, ev.sumScale(a.scale, b.scale))
}

// withScale returns s multiplied by exp(d).
func (ev *evaluator) withScale(s *series, d *series) *series {
	return ev.norm(s.terms, s.prec, ev.sumScale(s.scale, d))
}

// compose sums coef(j) · r^j for j ≥ 0. r must vanish as t → 0+.
func (ev *evaluator) compose(r *series, coef func(j int) Expr) *series {
	c0 := ev.constant(coef(0))
	if r.isZero() {
		return c0
	}
	if r.scale != nil {
		// r is smaller than every power; higher powers drop out
		lin := ev.scaleConst(&series{terms: r.terms, prec: minPrec(r.prec, &beyondMono), scale: r.scale}, coef(1))
		return ev.add(c0, lin)
	}
	if len(r.terms) == 0 {
		return ev.add(c0, r)
	}
	if !r.terms[0].m.vanishing() {
		return ev.fail(fmt.Errorf("golimit: composing with a non-vanishing series %s", r))
	}
	res := c0
	pw := ev.one()
	for j := 1; j <= maxComposeIter; j++ {
		pw = ev.mul(pw, r)
		if ev.err != nil {
			return res
		}
		if len(pw.terms) == 0 {
			return ev.add(res, pw)
		}
		if ev.truncated(pw.terms[0].m, r.terms[0].m) {
			return ev.add(res, ev.bigO(pw.terms[0].m))
		}
		if c := coef(j); !isZeroCoef(c) {
			res = ev.add(res, ev.scaleConst(pw, c))
		}
	}
	return ev.add(res, ev.bigO(pw.terms[0].m))
}

func (ev *evaluator) inverse(a *series) *series {
	if len(a.terms) == 0 {
		if a.prec == nil {
			return ev.fail(fmt.Errorf("%w: division by zero", ErrUndetermined))
		}
		return ev.fail(errPrecision)
	}
	lead := a.terms[0]
	cinv, err := coefInv(lead.c)
	if err != nil {
		return ev.fail(err)
	}
	linv := ev.monoSeries(lead.m.inv(), cinv)
	r := ev.mul(&series{terms: a.terms[1:], prec: a.prec}, linv)
	s := ev.compose(r, func(j int) Expr {
		if j%2 == 0 {
			return N(1)
		}
		return N(-1)
	})
	return ev.withScale(ev.mul(s, linv), ev.mulScale(a.scale, N(-1)))
}

func (ev *evaluator) div(a, b *series) *series { return ev.mul(a, ev.inverse(b)) }

func (ev *evaluator) powInt(a *series, n int64) *series {
	if n < 0 {
		return ev.inverse(ev.powInt(a, -n))
	}
	res := ev.one()
	base := a
	for n > 0 {
		if n&1 == 1 {
			res = ev.mul(res, base)
		}
		n >>= 1
		if n > 0 {
			base = ev.mul(base, base)
		}
		if ev.err != nil {
			return res
		}
	}
	return res
}

func (ev *evaluator) powRat(a *series, r *big.Rat) *series {
	if r.IsInt() && r.Num().IsInt64() {
		if n := r.Num().Int64(); n >= -64 && n <= 64 {
			return ev.powInt(a, n)
		}
	}
	if len(a.terms) == 0 {
		if a.prec == nil {
			if r.Sign() > 0 {
				return ev.zero()
			}
			return ev.fail(fmt.Errorf("%w: division by zero", ErrUndetermined))
		}
		return ev.fail(errPrecision)
	}
	lead := a.terms[0]
	m, ok := lead.m.pow(r)
	if !ok {
		return ev.fail(fmt.Errorf("%w: fractional power of a logarithm", ErrUndetermined))
	}
	sign, known := coefSign(lead.c)
	if !known {
		return ev.fail(fmt.Errorf("%w: power of an oscillating value", ErrUndetermined))
	}
	if sign < 0 && !r.IsInt() {
		// complex values; only the modulus tending to zero is meaningful
		if m.vanishing() && a.scale == nil {
			return ev.bigO(m)
		}
		return ev.fail(ErrComplex)
	}
	rn := NRat(r)
	cr := coefMap(lead.c, func(e Expr) Expr { return PowOf(e, rn) }, r.Sign() > 0)
	cinv, err := coefInv(lead.c)
	if err != nil {
		return ev.fail(err)
	}
	rest := ev.mul(&series{terms: a.terms[1:], prec: a.prec}, ev.monoSeries(lead.m.inv(), cinv))
	binom := new(big.Rat).SetInt64(1)
	last := 0
	s := ev.compose(rest, func(j int) Expr {
		for last < j {
			// C(r, j) = C(r, j-1) · (r - j + 1) / j
			f := new(big.Rat).Sub(r, big.NewRat(int64(last), 1))
			binom.Mul(binom, f)
			binom.Quo(binom, big.NewRat(int64(last+1), 1))
			last++
		}
		return NRat(binom)
	})
	res := ev.mul(s, ev.monoSeries(m, cr))
	return ev.withScale(res, ev.mulScale(a.scale, rn))
}

// split separates an unscaled series into its divergent part, the
// coefficient of ln t, the constant term and the vanishing remainder.
func (ev *evaluator) split(a *series) (div []term, lnc, c0 Expr, small *series, err error) {
	if a.prec != nil && dom(*a.prec, unitMono) >= 0 {
		return nil, nil, nil, nil, errPrecision
	}
	var rest []term
	for _, t := range a.terms {
		switch {
		case t.m.isUnit():
			c0 = t.c
		case dom(t.m, logMono) == 0:
			lnc = t.c
		case t.m.divergent():
			div = append(div, t)
		default:
			rest = append(rest, t)
		}
	}
	if c0 == nil {
		c0 = N(0)
	}
	return div, lnc, c0, &series{terms: rest, prec: a.prec}, nil
}

// leadSign is the sign of the series for small positive t.
func (ev *evaluator) leadSign(a *series) (int, error) {
	if len(a.terms) == 0 {
		if a.prec == nil {
			return 0, nil
		}
		return 0, errPrecision
	}
	s, ok := termSign(a.terms[0])
	if !ok {
		return 0, fmt.Errorf("%w: sign of an oscillating value", ErrUndetermined)
	}
	return s, nil
}

// growing reports whether the series tends to ±∞.
func (ev *evaluator) growing(a *series) (bool, error) {
	dir, err := ev.scaleDir(a)
	if err != nil {
		return false, err
	}
	if dir != 0 {
		return dir > 0, nil
	}
	return len(a.terms) > 0 && a.terms[0].m.divergent(), nil
}
