package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"coffeeify/internal/buildpipeline"
)

func printStageTimings(out io.Writer, res *buildpipeline.Result) {
	if out == nil || res == nil {
		return
	}
	for _, stage := range []buildpipeline.Stage{buildpipeline.StageRead, buildpipeline.StageTransform, buildpipeline.StageWrite} {
		if res.Timings.Has(stage) {
			fmt.Fprintf(out, "%-10s %9.1f ms\n", stage, toMillis(res.Timings.Duration(stage)))
		}
	}
	if len(res.Phases.Phases) > 0 {
		fmt.Fprint(out, res.Phases.Summary())
	}
}

func colorStatus(s string, failed bool) string {
	c := color.New(color.FgGreen, color.Bold)
	if failed {
		c = color.New(color.FgRed, color.Bold)
	}
	c.EnableColor()
	return c.Sprint(s)
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
