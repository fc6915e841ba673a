package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/golimit/internal/presentation"
	"github.com/njchilds90/golimit/internal/resolver"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive limit calculator",
	Long: `Prompts for the function, the point and the side, then prints the
limit. An empty answer keeps the previous value. Type :help for notation
and :quit (or Ctrl+D) to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		r := presentation.NewRenderer(cmd.OutOrStdout(), a.cfg.Theme)
		r.Banner()
		return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), r, a.resolver)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// replState holds the last function and point, used as defaults for the
// next round. The side always defaults to both.
type replState struct {
	function string
	point    string
}

type errQuit struct{}

func (errQuit) Error() string { return "quit" }

func runREPL(ctx context.Context, in io.Reader, out io.Writer, r *presentation.Renderer, svc *resolver.Service) error {
	scanner := bufio.NewScanner(in)
	state := replState{function: presentation.DefaultFunc, point: presentation.DefaultPoint}

	// ask returns the trimmed answer, or def when the answer is empty.
	ask := func(label, def string) (string, error) {
		for {
			if def == "" {
				fmt.Fprintf(out, "%s: ", label)
			} else {
				fmt.Fprintf(out, "%s [%s]: ", label, def)
			}
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", errQuit{}
			}
			answer := strings.TrimSpace(scanner.Text())
			switch answer {
			case ":quit", ":q":
				return "", errQuit{}
			case ":help", ":h":
				if err := r.Help(); err != nil {
					return "", err
				}
				continue
			case "":
				return def, nil
			}
			return answer, nil
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		function, err := ask("Função", state.function)
		if err != nil {
			return quitOrErr(out, err)
		}
		point, err := ask("Ponto", state.point)
		if err != nil {
			return quitOrErr(out, err)
		}
		sideText, err := ask("Lado (vazio, + ou -)", "")
		if err != nil {
			return quitOrErr(out, err)
		}
		side, err := resolver.ParseSide(sideText)
		if err != nil {
			r.Modal("Erro", err.Error())
			continue
		}
		r.Muted(side.Label())

		state = replState{function: function, point: point}
		r.Result(svc.Resolve(ctx, resolver.RawInput{FunctionText: function, PointText: point, Side: side}))
		fmt.Fprintln(out)
	}
}

func quitOrErr(out io.Writer, err error) error {
	if _, ok := err.(errQuit); ok {
		fmt.Fprintln(out)
		return nil
	}
	return err
}
