package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"coffeeify/internal/buildpipeline"
	"coffeeify/internal/transform"
	"coffeeify/internal/ui"
)

type bundleOutcome struct {
	result *buildpipeline.Result
	err    error
}

func runBundleWithUI(ctx context.Context, title string, deps transform.Compiler, req *buildpipeline.Request) (*buildpipeline.Result, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan bundleOutcome, 1)

	files := make([]string, len(req.Inputs))
	for i, in := range req.Inputs {
		files[i] = in.Rel
	}

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Bundle(ctx, deps, &reqCopy)
		outcomeCh <- bundleOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep draining so the pipeline never blocks on a full channel.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
