// Package presentation draws limit results, error notifications and help
// text on a terminal in the calculator's palette.
package presentation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/njchilds90/golimit/internal/config"
	"github.com/njchilds90/golimit/internal/resolver"
)

// Fixed interface texts.
const (
	Title         = "Calculadora de Limites"
	Tip           = "Dica: use ** para potência (ex.: x**2) • pi, E, oo"
	DefaultFunc   = "sin(x)/x"
	DefaultPoint  = "0"
	defaultWidth  = 80
	minModalWidth = 24
	modalPadding  = 2
)

// Renderer writes styled output to a single writer.
type Renderer struct {
	out     io.Writer
	profile termenv.Profile
	theme   config.Theme
	width   int
	tty     bool
}

type Option func(*Renderer)

// WithProfile forces a color profile; termenv.Ascii disables styling.
func WithProfile(p termenv.Profile) Option {
	return func(r *Renderer) { r.profile = p }
}

// NewRenderer detects whether out is a terminal. Non-terminal writers get
// plain text.
func NewRenderer(out io.Writer, theme config.Theme, opts ...Option) *Renderer {
	r := &Renderer{out: out, theme: theme, profile: termenv.Ascii, width: defaultWidth}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.tty = true
		r.profile = termenv.NewOutput(f).EnvColorProfile()
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			r.width = w
		}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Renderer) style(s, hex string) termenv.Style {
	return r.profile.String(s).Foreground(r.profile.Color(hex))
}

// Banner prints the title and the notation tip.
func (r *Renderer) Banner() {
	fmt.Fprintln(r.out, r.style(Title, r.theme.Accent).Bold())
	fmt.Fprintln(r.out, r.style(Tip, r.theme.Muted))
	fmt.Fprintln(r.out)
}

// Result shows a success inline and a failure as a modal box.
func (r *Renderer) Result(res resolver.Result) {
	if res.Success {
		fmt.Fprintln(r.out, r.style(res.Display, r.theme.Fg).Bold())
		return
	}
	r.Modal(res.TitleHint(), res.Message())
}

// Modal draws a bordered notification with title on the top edge.
func (r *Renderer) Modal(title, message string) {
	fmt.Fprint(r.out, r.modal(title, message))
}

func (r *Renderer) modal(title, message string) string {
	lines := strings.Split(message, "\n")
	inner := utf8.RuneCountInString(title) + 2
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > inner {
			inner = n
		}
	}
	inner += modalPadding
	if inner < minModalWidth {
		inner = minModalWidth
	}

	border := func(s string) string { return r.style(s, r.theme.AccentError).String() }
	var sb strings.Builder
	head := "┌─ " + title + " " + strings.Repeat("─", inner-utf8.RuneCountInString(title)-3) + "┐"
	sb.WriteString(border(head) + "\n")
	for _, l := range lines {
		pad := inner - utf8.RuneCountInString(l) - 1
		sb.WriteString(border("│") + r.body(" "+l+strings.Repeat(" ", pad)) + border("│") + "\n")
	}
	sb.WriteString(border("└"+strings.Repeat("─", inner)+"┘") + "\n")
	return sb.String()
}

// body styles a line inside the modal; truecolor terminals also get the
// theme background.
func (r *Renderer) body(s string) string {
	st := r.style(s, r.theme.Fg)
	if r.profile == termenv.TrueColor && r.theme.Bg != "" {
		st = st.Background(r.profile.Color(r.theme.Bg))
	}
	return st.String()
}

// Muted prints secondary text such as prompts' defaults.
func (r *Renderer) Muted(s string) {
	fmt.Fprintln(r.out, r.style(s, r.theme.Muted))
}

// Help renders the command reference as markdown.
func (r *Renderer) Help() error {
	styleName := "notty"
	if r.tty {
		styleName = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styleName),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return err
	}
	out, err := md.Render(helpMarkdown)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(r.out, out)
	return err
}

const helpMarkdown = `# ` + Title + `

Enter a function of ` + "`x`" + `, then the point, then the side.
An empty answer keeps the value shown in brackets.

| Side | Input |
|---|---|
| Ambos os lados | (empty) |
| Pela direita (+) | ` + "`+`" + ` |
| Pela esquerda (-) | ` + "`-`" + ` |

Notation: ` + "`x**2`" + ` or ` + "`x^2`" + `, ` + "`ln(x)`" + `, ` + "`sen(x)`" + `, ` + "`tg(x)`" + `,
` + "`pi`" + `, ` + "`E`" + `, ` + "`oo`" + `, ` + "`∞`" + ` and decimal commas such as ` + "`3,5`" + `.

Commands: ` + "`:help`" + `, ` + "`:quit`" + `.
`
