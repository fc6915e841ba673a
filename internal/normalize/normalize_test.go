package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpression(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"plain", "sin(x)/x", "sin(x)/x"},
		{"trim", "  x + 1\t", "x + 1"},
		{"caret", "x^2", "x**2"},
		{"nested caret", "(x^2)^3", "(x**2)**3"},
		{"ln", "ln(x)", "log(x)"},
		{"ln with space", "ln (x)", "log(x)"},
		{"ln is case sensitive", "LN(x)", "LN(x)"},
		{"ln inside identifier", "kln(x)", "kln(x)"},
		{"sen upper", "SEN(x)", "sin(x)"},
		{"sen mixed", "Sen(x)/x", "sin(x)/x"},
		{"tg", "tg(x)", "tan(x)"},
		{"ctg", "CTG(x)", "cot(x)"},
		{"sen without call", "sen", "sen"},
		{"sen inside identifier", "assen(x)", "assen(x)"},
		{"infinity symbol", "∞", "oo"},
		{"plus infinity symbol", "+∞", "oo"},
		{"minus infinity symbol", "-∞", "-oo"},
		{"plus oo", "+oo", "oo"},
		{"decimal comma", "3,5", "3.5"},
		{"decimal comma in expression", "2,5*x", "2.5*x"},
		{"digit-flanked argument comma", "f(1,2)", "f(1.2)"},
		{"argument comma", "log(x, 2)", "log(x, 2)"},
		{"combined", " sen(x)^2 + ln(x) ", "sin(x)**2 + log(x)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Expression(c.in))
		})
	}
}

func TestExpression_Idempotent(t *testing.T) {
	for _, in := range []string{"x^2", "ln(x)", "SEN(x)", "+∞", "3,5", "tg(x)^2 + 1,25"} {
		once := Expression(in)
		assert.Equal(t, once, Expression(once), in)
	}
}
