package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"coffeeify/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <path>...",
	Short: "Show whether paths would be compiled",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, path := range args {
			kind := "passthrough"
			switch {
			case classify.IsLiterate(path):
				kind = "literate"
			case classify.IsCandidate(path):
				kind = "coffee"
			}
			out := "-"
			if classify.IsCandidate(path) {
				out = classify.OutputName(path)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", path, kind, out)
		}
		return tw.Flush()
	},
}
