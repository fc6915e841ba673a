package resolver

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golimit"
	"github.com/njchilds90/golimit/internal/logging"
	"github.com/njchilds90/golimit/internal/metrics"
)

func TestResolve_Success(t *testing.T) {
	cases := []struct {
		name, function, point string
		side                  SideMode
		result, display       string
	}{
		{"sinc", "sin(x)/x", "0", Both, "1", "lim[x→0] sin(x)/x = 1"},
		{"right pole", "1/x", "0", FromRight, "oo", "lim[x→0 +] 1/x = oo"},
		{"left pole", "1/x", "0", FromLeft, "-oo", "lim[x→0 -] 1/x = -oo"},
		{"infinity alias", "(1 + 1/x)**x", "oo", Both, "E", "lim[x→oo] (1 + 1/x)**x = E"},
		{"inf alias", "1/x", "INF", Both, "0", "lim[x→INF] 1/x = 0"},
		{"negative infinity alias", "exp(x)", "-inf", Both, "0", "lim[x→-inf] exp(x) = 0"},
		{"rational point", "x**2", "1/2", Both, "1/4", "lim[x→1/2] x**2 = 1/4"},
		{"pi point", "sin(x)", "pi", Both, "0", "lim[x→pi] sin(x) = 0"},
		{"oscillation", "sin(1/x)", "0", Both, "AccumBounds(-1, 1)", "lim[x→0] sin(1/x) = AccumBounds(-1, 1)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := Resolve(c.function, c.point, c.side)
			require.True(t, res.Success, "detail: %s", res.Detail)
			assert.Equal(t, c.result, res.Value.String())
			assert.Equal(t, c.display, res.Display)
			assert.Empty(t, res.TitleHint())
		})
	}
}

func TestResolve_InvalidFunction(t *testing.T) {
	for _, fn := range []string{")((bad", "", "2x", "y + 1", "foo(x)"} {
		res := Resolve(fn, "0", Both)
		assert.False(t, res.Success, fn)
		assert.Equal(t, InvalidFunction, res.Kind, fn)
		assert.Equal(t, "Função inválida.", res.Detail, fn)
		assert.Equal(t, "Erro", res.TitleHint(), fn)
	}
}

func TestResolve_InvalidPoint(t *testing.T) {
	for _, side := range []SideMode{Both, FromRight, FromLeft} {
		for _, pt := range []string{"banana", "x", "", "1/0", "(("} {
			res := Resolve("sin(x)", pt, side)
			assert.Equal(t, InvalidPoint, res.Kind, pt)
			assert.Equal(t, "Ponto inválido.", res.Detail, pt)
			assert.Equal(t, "Erro", res.TitleHint(), pt)
		}
	}
}

func TestResolve_FunctionCheckedFirst(t *testing.T) {
	res := Resolve(")((bad", "banana", Both)
	assert.Equal(t, InvalidFunction, res.Kind)
}

func TestResolve_TwoSidedDisagreement(t *testing.T) {
	res := Resolve("1/x", "0", Both)
	require.False(t, res.Success)
	assert.Equal(t, EvaluationError, res.Kind)
	assert.Equal(t, "The limit does not exist since left hand limit = -oo and right hand limit = oo", res.Detail)
	assert.Equal(t, "Erro ao calcular", res.TitleHint())
	assert.Equal(t, "Ocorreu um erro:\nThe limit does not exist since left hand limit = -oo and right hand limit = oo", res.Message())
}

func TestResolve_EngineErrors(t *testing.T) {
	cases := []struct {
		name, function, point string
		side                  SideMode
		detail                string
	}{
		{"complex value", "log(x)", "-1", Both, "the limit is not a real number"},
		{"complex from the left", "sqrt(x)", "-2", FromLeft, "the limit is not a real number"},
		{"triple logarithm", "log(log(log(x)))", "oo", Both, "could not determine the limit: iterated logarithm"},
		{"integer part of an oscillation", "floor(sin(1/x))", "0", FromRight, "could not determine the limit: integer part of an oscillating value"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := Resolve(c.function, c.point, c.side)
			require.False(t, res.Success)
			assert.Equal(t, EvaluationError, res.Kind)
			assert.Equal(t, c.detail, res.Detail)
			assert.Equal(t, "Erro ao calcular", res.TitleHint())
			assert.Equal(t, ErrorPrefix+c.detail, res.Message())
		})
	}
}

func TestResolve_RecoversPanics(t *testing.T) {
	orig := computeLimit
	t.Cleanup(func() { computeLimit = orig })
	computeLimit = func(golimit.Expr, string, golimit.Expr, golimit.Dir, ...golimit.LimitOption) (golimit.Expr, error) {
		panic("golimit: series blew up")
	}

	var res Result
	require.NotPanics(t, func() { res = Resolve("sin(x)/x", "0", Both) })
	assert.False(t, res.Success)
	assert.Equal(t, EvaluationError, res.Kind)
	assert.Equal(t, "golimit: series blew up", res.Detail)
	assert.Equal(t, "Erro ao calcular", res.TitleHint())
}

func TestResolve_DivisionByZeroFunction(t *testing.T) {
	for _, fn := range []string{"0**(-1)", "x + 0**(-1)", "x/0"} {
		res := Resolve(fn, "1", Both)
		require.True(t, res.Success, fn)
		assert.Equal(t, "nan", res.Value.String(), fn)
	}
}

func TestResolveInput_Normalizes(t *testing.T) {
	res := ResolveInput(RawInput{FunctionText: " SEN(x)/x ", PointText: "0", Side: Both})
	require.True(t, res.Success)
	assert.Equal(t, "lim[x→0] sin(x)/x = 1", res.Display)

	res = ResolveInput(RawInput{FunctionText: "x^2", PointText: "+∞", Side: Both})
	require.True(t, res.Success)
	assert.Equal(t, "lim[x→oo] x**2 = oo", res.Display)

	res = ResolveInput(RawInput{FunctionText: "x*2", PointText: "1,5", Side: FromRight})
	require.True(t, res.Success)
	assert.Equal(t, "lim[x→1.5 +] x*2 = 3", res.Display)
}

func TestParseSide(t *testing.T) {
	for in, want := range map[string]SideMode{"": Both, "+": FromRight, "-": FromLeft, " + ": FromRight} {
		got, err := ParseSide(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSide("both")
	assert.Error(t, err)
}

func TestSideMode_Labels(t *testing.T) {
	assert.Equal(t, "Ambos os lados", Both.Label())
	assert.Equal(t, "Pela direita (+)", FromRight.Label())
	assert.Equal(t, "Pela esquerda (-)", FromLeft.Label())
	assert.Equal(t, "", Both.String())
}

func TestService_Resolve(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.New()
	svc := NewService(logging.NewWithWriter(&buf, slog.LevelDebug), WithMetrics(m), WithMaxOrder(8))

	res := svc.Resolve(context.Background(), RawInput{FunctionText: "sin(x)/x", PointText: "0"})
	require.True(t, res.Success)
	res = svc.Resolve(context.Background(), RawInput{FunctionText: "sin(x)", PointText: "banana", Side: FromLeft})
	require.False(t, res.Success)

	assert.Contains(t, buf.String(), "limit resolved")
	assert.Contains(t, buf.String(), "result=1")
	assert.Contains(t, buf.String(), "kind=invalid_point")
	assert.Contains(t, buf.String(), "err=")

	count, err := testutil.GatherAndCount(m.Registry(), "golimit_resolutions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_WithoutMetrics(t *testing.T) {
	svc := NewService(logging.NewNop())
	res := svc.Resolve(context.Background(), RawInput{FunctionText: "x", PointText: "2"})
	assert.True(t, res.Success)
}
