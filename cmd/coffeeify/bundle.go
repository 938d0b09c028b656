package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"coffeeify/internal/buildpipeline"
	"coffeeify/internal/report"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle [flags] <path>...",
	Short: "Transform a tree of files into an output directory",
	Long: `Run every file under the given paths through the transform: CoffeeScript
files are compiled to .js, everything else is copied unchanged. Per-file
errors are reported and do not stop the other files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBundle,
}

func init() {
	bundleCmd.Flags().StringP("out", "o", "", "output directory (empty: compile only)")
	bundleCmd.Flags().Int("jobs", 0, "max parallel files (0 = config or GOMAXPROCS)")
	bundleCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	bundleCmd.Flags().String("report", "", "write a report (.json, or .mp for msgpack)")
	bundleCmd.Flags().Bool("timings", false, "print stage timings")
	bundleCmd.Flags().Bool("no-source-map", false, "do not embed inline source maps")
	bundleCmd.Flags().Int("max-failures", 0, "stop recording failures after this many (0 = all)")
}

func runBundle(cmd *cobra.Command, args []string) error {
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

	flags := cmd.Flags()
	outDir, _ := flags.GetString("out")
	jobs, _ := flags.GetInt("jobs")
	uiFlag, _ := flags.GetString("ui")
	reportPath, _ := flags.GetString("report")
	showTimings, _ := flags.GetBool("timings")
	noMap, _ := flags.GetBool("no-source-map")
	maxFailures, _ := flags.GetInt("max-failures")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	e, err := newEnv(cmd, showTimings)
	if err != nil {
		return err
	}
	if noMap {
		e.driver.SetSourceMap(false)
	}
	if jobs == 0 {
		jobs = e.cfg.Jobs
	}

	inputs, err := buildpipeline.Collect(args)
	if err != nil {
		return err
	}
	req := &buildpipeline.Request{
		Inputs:      inputs,
		OutDir:      outDir,
		Jobs:        jobs,
		MaxFailures: maxFailures,
	}

	start := time.Now()
	var res *buildpipeline.Result
	if !quiet && shouldUseTUI(mode) && len(inputs) > 0 {
		res, err = runBundleWithUI(cmd.Context(), "bundle", e.driver, req)
	} else {
		res, err = buildpipeline.Bundle(cmd.Context(), e.driver, req)
	}
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := report.WriteFile(reportPath, report.Build(res, time.Now())); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if showTimings {
		printStageTimings(cmd.ErrOrStderr(), res)
	}
	if !quiet {
		printBundleSummary(cmd, res, time.Since(start))
	}

	if res.Failed() {
		if err := printFailures(cmd, res.Failures.Items()); err != nil {
			return err
		}
		return errReported
	}
	return nil
}

func printBundleSummary(cmd *cobra.Command, res *buildpipeline.Result, elapsed time.Duration) {
	var compiled, cached, copied int
	for _, fr := range res.Files {
		switch {
		case fr.Err != nil:
		case !fr.Candidate:
			copied++
		case fr.Cached:
			cached++
		default:
			compiled++
		}
	}
	color, _ := useColor(cmd, os.Stderr)
	status := "ok"
	if res.Failed() {
		status = fmt.Sprintf("%d failed", res.Failures.Len())
	}
	if color {
		status = colorStatus(status, res.Failed())
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d compiled, %d cached, %d copied, %s in %.1f ms\n",
		compiled, cached, copied, status, toMillis(elapsed))
}
