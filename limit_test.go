package golimit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golimit"
)

func limitOf(t *testing.T, expr, point string, dir golimit.Dir) (golimit.Expr, error) {
	t.Helper()
	e, err := golimit.Parse(expr, golimit.WithSymbols("x"))
	require.NoError(t, err)
	p, err := golimit.Parse(point)
	require.NoError(t, err)
	return golimit.Limit(e, "x", p, dir)
}

func TestLimit_Values(t *testing.T) {
	cases := []struct {
		name, expr, point string
		dir               golimit.Dir
		want              string
	}{
		{"continuous", "x**2 + 1", "3", golimit.DirBoth, "10"},
		{"constant", "5", "0", golimit.DirBoth, "5"},
		{"symbolic value", "sin(x)", "1", golimit.DirBoth, "sin(1)"},
		{"sinc", "sin(x)/x", "0", golimit.DirBoth, "1"},
		{"removable", "(x**2 - 1)/(x - 1)", "1", golimit.DirBoth, "2"},
		{"cosine", "(1 - cos(x))/x**2", "0", golimit.DirBoth, "1/2"},
		{"pole from right", "1/x", "0", golimit.DirRight, "oo"},
		{"pole from left", "1/x", "0", golimit.DirLeft, "-oo"},
		{"even pole", "1/x**2", "0", golimit.DirBoth, "oo"},
		{"compound interest", "(1 + 1/x)**x", "oo", golimit.DirBoth, "E"},
		{"rational at infinity", "(2*x + 1)/(x - 3)", "oo", golimit.DirBoth, "2"},
		{"rational at minus infinity", "x**2/(x + 1)", "-oo", golimit.DirBoth, "-oo"},
		{"exponential beats power", "exp(x)/x**5", "oo", golimit.DirBoth, "oo"},
		{"power beats exponential", "x**3*exp(-x)", "oo", golimit.DirBoth, "0"},
		{"essential from right", "exp(-1/x)", "0", golimit.DirRight, "0"},
		{"essential from left", "exp(-1/x)", "0", golimit.DirLeft, "oo"},
		{"x log x", "x*log(x)", "0", golimit.DirRight, "0"},
		{"x to the x", "x**x", "0", golimit.DirRight, "1"},
		{"log at zero", "log(x)", "0", golimit.DirRight, "-oo"},
		{"square root", "sqrt(x)", "0", golimit.DirBoth, "0"},
		{"bounded oscillation", "sin(1/x)", "0", golimit.DirBoth, "AccumBounds(-1, 1)"},
		{"squeezed", "x*sin(1/x)", "0", golimit.DirBoth, "0"},
		{"sine at infinity", "sin(x)/x", "oo", golimit.DirBoth, "0"},
		{"arctangent", "atan(x)", "oo", golimit.DirBoth, "pi/2"},
		{"floor from right", "floor(x)", "1", golimit.DirRight, "1"},
		{"floor from left", "floor(x)", "1", golimit.DirLeft, "0"},
		{"sign from left", "sign(x)", "0", golimit.DirLeft, "-1"},
		{"tangent ratio", "tan(x)/x", "0", golimit.DirBoth, "1"},
		{"exponential difference", "(exp(x) - 1)/x", "0", golimit.DirBoth, "1"},
		{"high power ratio", "(x + 1)**40/x**40", "oo", golimit.DirBoth, "1"},
		{"exponential beats a high power", "exp(x)/x**40", "oo", golimit.DirBoth, "oo"},
		{"high power of sine", "sin(x)**200/x**200", "0", golimit.DirBoth, "1"},
		{"iterated logarithm", "log(log(x))", "oo", golimit.DirBoth, "oo"},
		{"log over log log", "log(x)/log(log(x))", "oo", golimit.DirBoth, "oo"},
		{"log log over log", "log(log(x))/log(x)", "oo", golimit.DirBoth, "0"},
		{"nested exponential", "exp(exp(x))/exp(x)", "oo", golimit.DirBoth, "oo"},
		{"decaying nested exponential", "exp(-exp(x))", "oo", golimit.DirBoth, "0"},
		{"division by zero", "x + 0**(-1)", "1", golimit.DirBoth, "nan"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := limitOf(t, c.expr, c.point, c.dir)
			require.NoError(t, err)
			assert.Equal(t, c.want, golimit.String(got))
		})
	}
}

func TestLimit_TwoSidedDisagreement(t *testing.T) {
	_, err := limitOf(t, "1/x", "0", golimit.DirBoth)
	require.Error(t, err)
	assert.True(t, errors.Is(err, golimit.ErrNoLimit))
	assert.Equal(t, "The limit does not exist since left hand limit = -oo and right hand limit = oo", err.Error())

	var nl *golimit.NoLimitError
	require.True(t, errors.As(err, &nl))
	assert.Equal(t, "-oo", nl.Left.String())
	assert.Equal(t, "oo", nl.Right.String())
}

func TestLimit_JumpDiscontinuity(t *testing.T) {
	_, err := limitOf(t, "floor(x)", "2", golimit.DirBoth)
	assert.ErrorIs(t, err, golimit.ErrNoLimit)
}

func TestLimit_InvalidPoint(t *testing.T) {
	x := golimit.S("x")
	_, err := golimit.Limit(x, "x", golimit.S("y"), golimit.DirBoth)
	assert.ErrorIs(t, err, golimit.ErrInvalidPoint)
}

func TestLimit_MaxOrderOption(t *testing.T) {
	e, err := golimit.Parse("(sin(x) - x)/x**3", golimit.WithSymbols("x"))
	require.NoError(t, err)
	got, err := golimit.Limit(e, "x", golimit.N(0), golimit.DirBoth, golimit.WithMaxOrder(8))
	require.NoError(t, err)
	assert.Equal(t, "-1/6", golimit.String(got))
}

func TestDir_String(t *testing.T) {
	assert.Equal(t, "+-", golimit.DirBoth.String())
	assert.Equal(t, "+", golimit.DirRight.String())
	assert.Equal(t, "-", golimit.DirLeft.String())
}

func TestLimit_UndeterminedKeepsContext(t *testing.T) {
	_, err := limitOf(t, "log(log(log(x)))", "oo", golimit.DirBoth)
	require.Error(t, err)
	assert.ErrorIs(t, err, golimit.ErrUndetermined)
	assert.Equal(t, "could not determine the limit: iterated logarithm", err.Error())

	_, err = limitOf(t, "log(x)", "-1", golimit.DirBoth)
	assert.ErrorIs(t, err, golimit.ErrComplex)
}
