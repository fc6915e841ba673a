// Package normalize rewrites user-typed math text into the notation the
// golimit parser accepts.
package normalize

import (
	"strings"

	"github.com/dlclark/regexp2"
)

type rule struct {
	re   *regexp2.Regexp
	repl string
}

// Applied in order. The decimal-comma rule runs last so that the
// preceding rules never see a rewritten separator.
var rules = []rule{
	{regexp2.MustCompile(`\^`, regexp2.None), "**"},
	{regexp2.MustCompile(`\bln\s*\(`, regexp2.None), "log("},
	{regexp2.MustCompile(`\bsen\s*\(`, regexp2.IgnoreCase), "sin("},
	{regexp2.MustCompile(`\btg\s*\(`, regexp2.IgnoreCase), "tan("},
	{regexp2.MustCompile(`\bctg\s*\(`, regexp2.IgnoreCase), "cot("},
	{regexp2.MustCompile(`∞`, regexp2.None), "oo"},
	{regexp2.MustCompile(`\+oo`, regexp2.None), "oo"},
	{regexp2.MustCompile(`(?<=\d),(?=\d)`, regexp2.None), "."},
}

// Expression trims s and rewrites regional notation: ^ becomes **,
// ln/sen/tg/ctg calls become log/sin/tan/cot, ∞ and +oo become oo, and a
// comma between two digits becomes a decimal point. It never fails; an
// input without any of these tokens is returned trimmed and unchanged.
func Expression(s string) string {
	out := strings.TrimSpace(s)
	if out == "" {
		return out
	}
	for _, r := range rules {
		replaced, err := r.re.Replace(out, r.repl, -1, -1)
		if err != nil {
			// Only a match timeout can fail, and no timeout is set.
			continue
		}
		out = replaced
	}
	return out
}
