package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/njchilds90/golimit/internal/presentation"
	"github.com/njchilds90/golimit/internal/resolver"
)

// errReported marks a failure already shown to the user.
var errReported = errors.New("limit could not be computed")

var calcCmd = &cobra.Command{
	Use:   "calc [function] [point]",
	Short: "Compute one limit and print it",
	Long:  `Computes the limit of function as x approaches point and prints
lim[x→point] function = result. Missing arguments default to sin(x)/x and 0.`,
	Example: `  golimit calc "sin(x)/x" 0
  golimit calc "1/x" 0 --side +
  golimit calc "(1 + 1/x)^x" oo`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		sideFlag, _ := cmd.Flags().GetString("side")
		side, err := resolver.ParseSide(sideFlag)
		if err != nil {
			return err
		}

		in := resolver.RawInput{FunctionText: presentation.DefaultFunc, PointText: presentation.DefaultPoint, Side: side}
		if len(args) > 0 {
			in.FunctionText = args[0]
		}
		if len(args) > 1 {
			in.PointText = args[1]
		}

		res := a.resolver.Resolve(cmd.Context(), in)
		presentation.NewRenderer(cmd.OutOrStdout(), a.cfg.Theme).Result(res)
		if !res.Success {
			return errReported
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().StringP("side", "s", "", `Side of approach: "" (both), "+" (right) or "-" (left)`)
}
