package presentation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/golimit/internal/config"
	"github.com/njchilds90/golimit/internal/resolver"
)

func newTestRenderer() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewRenderer(&buf, config.DefaultTheme), &buf
}

func TestRenderer_Success(t *testing.T) {
	r, buf := newTestRenderer()
	r.Result(resolver.Resolve("sin(x)/x", "0", resolver.Both))
	assert.Equal(t, "lim[x→0] sin(x)/x = 1\n", buf.String())
}

func TestRenderer_FailureModal(t *testing.T) {
	r, buf := newTestRenderer()
	r.Result(resolver.Resolve(")((bad", "0", resolver.Both))

	want := "" +
		"┌─ Erro ─────────────────┐\n" +
		"│ Função inválida.       │\n" +
		"└────────────────────────┘\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderer_EvaluationModal(t *testing.T) {
	r, buf := newTestRenderer()
	r.Result(resolver.Resolve("1/x", "0", resolver.Both))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "┌─ Erro ao calcular "))
	assert.Equal(t, "│ Ocorreu um erro:", strings.TrimRight(strings.TrimSuffix(lines[1], "│"), " "))
	assert.Contains(t, lines[2], "The limit does not exist")

	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}
}

func TestRenderer_Banner(t *testing.T) {
	r, buf := newTestRenderer()
	r.Banner()
	assert.Equal(t, Title+"\n"+Tip+"\n\n", buf.String())
}

func TestRenderer_Help(t *testing.T) {
	r, buf := newTestRenderer()
	require.NoError(t, r.Help())
	assert.Contains(t, buf.String(), Title)
	assert.Contains(t, buf.String(), "Pela direita (+)")
}

func TestRenderer_ModalBackground(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, config.DefaultTheme, WithProfile(termenv.TrueColor))
	r.Modal("Erro", "Ponto inválido.")
	// #0B1220 as a 24-bit background
	assert.Contains(t, buf.String(), "48;2;11;18;32")
	assert.Contains(t, buf.String(), "Ponto inválido.")

	buf.Reset()
	r = NewRenderer(&buf, config.DefaultTheme, WithProfile(termenv.ANSI256))
	r.Modal("Erro", "Ponto inválido.")
	assert.NotContains(t, buf.String(), "48;")
}
