package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"coffeeify/internal/diag"
	"coffeeify/internal/transform"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <file|->",
	Short: "Compile one file to stdout",
	Long: `Compile one file through the cache and print the result. Files that are
not CoffeeScript are printed unchanged. With "-" the source is read from
stdin and --name decides how it is treated.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().Bool("no-source-map", false, "do not embed an inline source map")
	compileCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	compileCmd.Flags().String("name", "stdin.coffee", "file name used for stdin input")
}

func runCompile(cmd *cobra.Command, args []string) (err error) {
	stopProfiles, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiles()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := newEnv(cmd, false)
	if err != nil {
		return err
	}
	if noMap, _ := cmd.Flags().GetBool("no-source-map"); noMap {
		e.driver.SetSourceMap(false)
	}

	path := args[0]
	var in io.Reader
	if path == "-" {
		path, _ = cmd.Flags().GetString("name")
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	out := cmd.OutOrStdout()
	if name, _ := cmd.Flags().GetString("output"); name != "" {
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = f
	}
	w := bufio.NewWriter(out)

	_, err = transform.Pipe(cmd.Context(), path, e.driver, in, w)
	if err != nil {
		if kind := diag.KindOf(err); kind == diag.KindParse || kind == diag.KindStorage {
			if perr := printFailures(cmd, []diag.Failure{{Path: path, Err: err}}); perr != nil {
				return perr
			}
			return errReported
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return w.Flush()
}
