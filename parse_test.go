package golimit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golimit"
)

func TestParse_Canonical(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"x**2", "x**2"},
		{"x^2", "x**2"},
		{"2*x + 3", "2*x + 3"},
		{"x - 1", "x - 1"},
		{"-x", "-x"},
		{"sin(x)/x", "sin(x)/x"},
		{"1/x", "1/x"},
		{"1.5", "3/2"},
		{".5*x", "x/2"},
		{"2e3", "2000"},
		{"x + x", "2*x"},
		{"ln(x)", "log(x)"},
		{"log(8, 2)", "log(8)/log(2)"},
		{"sqrt(4)", "2"},
		{"abs(-2)", "2"},
		{"E**x", "exp(x)"},
		{"sin(pi/6)", "1/2"},
		{"  (x)  ", "x"},
		{"oo", "oo"},
		{"-oo", "-oo"},
		{"2**-1", "1/2"},
		{"-x**2", "-x**2"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			e, err := golimit.Parse(c.in, golimit.WithSymbols("x"))
			require.NoError(t, err)
			assert.Equal(t, c.want, golimit.String(e))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"", golimit.ErrSyntax},
		{"x y", golimit.ErrSyntax},
		{"2x", golimit.ErrSyntax},
		{")((bad", golimit.ErrSyntax},
		{"(x", golimit.ErrSyntax},
		{"x +", golimit.ErrSyntax},
		{"x $ 2", golimit.ErrSyntax},
		{"sin", golimit.ErrSyntax},
		{"sin(x, x)", golimit.ErrSyntax},
		{"banana", golimit.ErrUnknownSymbol},
		{"y + 1", golimit.ErrUnknownSymbol},
		{"foo(x)", golimit.ErrUnknownFunction},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			_, err := golimit.Parse(c.in, golimit.WithSymbols("x"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
			var pe *golimit.ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := golimit.Parse("x y", golimit.WithSymbols("x"))
	var pe *golimit.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Pos)
}

func TestParse_UndeclaredSymbol(t *testing.T) {
	_, err := golimit.Parse("x")
	assert.ErrorIs(t, err, golimit.ErrUnknownSymbol)
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { golimit.MustParse("(") })
}
