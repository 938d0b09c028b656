package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coffeeify/internal/diag"
	"coffeeify/internal/diagfmt"
)

// printFailures writes failures to stderr in the --diag-format format.
func printFailures(cmd *cobra.Command, failures []diag.Failure) error {
	format, err := cmd.Root().PersistentFlags().GetString("diag-format")
	if err != nil {
		return err
	}
	wd, _ := os.Getwd()
	out := cmd.ErrOrStderr()

	switch format {
	case "pretty":
		color, err := useColor(cmd, os.Stderr)
		if err != nil {
			return err
		}
		return diagfmt.Pretty(out, failures, diagfmt.PrettyOpts{Color: color, BaseDir: wd})
	case "json":
		return diagfmt.JSON(out, failures, diagfmt.JSONOpts{BaseDir: wd})
	}
	return fmt.Errorf("invalid --diag-format %q (expected pretty|json)", format)
}
