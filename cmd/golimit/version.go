package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/golimit"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of golimit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "golimit version %s\n", golimit.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
