// Package buildpipeline runs the transform over many files at once and
// writes the results into an output tree.
package buildpipeline

import (
	"sync"
	"time"
)

// Stage describes a per-file pipeline phase.
type Stage string

const (
	// StageCollect is input discovery.
	StageCollect Stage = "collect"
	// StageRead is loading a file's bytes.
	StageRead Stage = "read"
	// StageTransform is the compile (or passthrough) step.
	StageTransform Stage = "transform"
	// StageWrite is writing the output file.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	Cached  bool // set on StageTransform done events served from the cache
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations summed over all files.
type Timings struct {
	stages map[Stage]time.Duration
}

// Add accumulates dur for stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}

type lockedTimings struct {
	mu sync.Mutex
	t  Timings
}

func (l *lockedTimings) add(stage Stage, dur time.Duration) {
	l.mu.Lock()
	l.t.Add(stage, dur)
	l.mu.Unlock()
}

func (l *lockedTimings) snapshot() Timings {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := Timings{stages: make(map[Stage]time.Duration, len(l.t.stages))}
	for k, v := range l.t.stages {
		out.stages[k] = v
	}
	return out
}
