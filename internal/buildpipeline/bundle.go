package buildpipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"coffeeify/internal/classify"
	"coffeeify/internal/diag"
	"coffeeify/internal/digest"
	"coffeeify/internal/observ"
	"coffeeify/internal/trace"
	"coffeeify/internal/transform"
)

// Request configures a bundle run.
type Request struct {
	Inputs   []Input
	OutDir   string // empty: transform only, write nothing
	Jobs     int    // 0 = GOMAXPROCS
	Progress ProgressSink
	// MaxFailures caps the failures kept in Result.Failures; 0 keeps all.
	MaxFailures int
}

// FileResult is the outcome for one input.
type FileResult struct {
	Path      string
	Rel       string
	Output    string // path written, empty if nothing was written
	Candidate bool
	Digest    digest.Digest
	Cached    bool
	Bytes     int
	Err       error
	Elapsed   time.Duration
	Timing    *observ.Report
}

// Result is the outcome of a bundle run. Files is in input order.
type Result struct {
	Files    []FileResult
	Failures *diag.Bag
	Timings  Timings
	Phases   observ.Report // per-phase compile totals, when the driver records them
}

// Failed reports whether any file failed.
func (r *Result) Failed() bool {
	return r.Failures != nil && r.Failures.HasErrors()
}

// Bundle transforms every input, concurrently up to Jobs at a time. A
// file's failure is recorded and does not stop the others; only context
// cancellation aborts the run.
func Bundle(ctx context.Context, deps transform.Compiler, req *Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return nil, fmt.Errorf("missing bundle request")
	}

	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "bundle")
	defer func() { span.End(fmt.Sprintf("%d files", len(req.Inputs))) }()

	result := &Result{
		Files:    make([]FileResult, len(req.Inputs)),
		Failures: diag.NewBag(req.MaxFailures),
	}
	if len(req.Inputs) == 0 {
		return result, nil
	}

	outputs, collisions := planOutputs(req.Inputs)
	emitQueued(req.Progress, req.Inputs)

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	passCtx, pass := trace.StartSpan(ctx, trace.ScopePass, "transform")
	var totals observ.Totals
	var timings lockedTimings

	// Each goroutine owns result.Files[i]; no lock needed there.
	g, gctx := errgroup.WithContext(passCtx)
	g.SetLimit(min(jobs, len(req.Inputs)))
	for i, in := range req.Inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr := FileResult{Path: in.Path, Rel: in.Rel}
			if other, dup := collisions[i]; dup {
				fr.Err = fmt.Errorf("output %s collides with %s", outputs[i], other)
				emit(req.Progress, Event{File: in.Rel, Stage: StageWrite, Status: StatusError, Err: fr.Err})
			} else {
				fr = runOne(gctx, deps, req, in, outputs[i], &timings)
			}
			if fr.Timing != nil {
				totals.Add(*fr.Timing)
			}
			if fr.Err != nil {
				result.Failures.Add(in.Rel, fr.Err)
			}
			result.Files[i] = fr
			return nil
		})
	}
	err := g.Wait()
	pass.End("")

	result.Timings = timings.snapshot()
	result.Phases = totals.Report()
	if err != nil {
		emit(req.Progress, Event{Stage: StageTransform, Status: StatusError, Err: err})
		return result, err
	}
	status := StatusDone
	if result.Failed() {
		status = StatusError
	}
	emit(req.Progress, Event{Stage: StageTransform, Status: status, Elapsed: result.Timings.Sum(StageRead, StageTransform, StageWrite)})
	return result, nil
}

func runOne(ctx context.Context, deps transform.Compiler, req *Request, in Input, outRel string, timings *lockedTimings) FileResult {
	start := time.Now()
	fr := FileResult{Path: in.Path, Rel: in.Rel, Candidate: classify.IsCandidate(in.Path)}
	fail := func(stage Stage, err error) FileResult {
		fr.Err = err
		fr.Elapsed = time.Since(start)
		emit(req.Progress, Event{File: in.Rel, Stage: stage, Status: StatusError, Err: err, Elapsed: fr.Elapsed})
		return fr
	}

	emit(req.Progress, Event{File: in.Rel, Stage: StageRead, Status: StatusWorking})
	t0 := time.Now()
	data, err := os.ReadFile(in.Path)
	timings.add(StageRead, time.Since(t0))
	if err != nil {
		return fail(StageRead, err)
	}

	emit(req.Progress, Event{File: in.Rel, Stage: StageTransform, Status: StatusWorking})
	t0 = time.Now()
	var out bytes.Buffer
	res, err := transform.Pipe(ctx, in.Path, deps, bytes.NewReader(data), &out)
	timings.add(StageTransform, time.Since(t0))
	fr.Digest = res.Artifact.Digest
	fr.Cached = res.Artifact.Hit
	fr.Timing = res.Artifact.Timing
	if err != nil {
		return fail(StageTransform, err)
	}
	emit(req.Progress, Event{File: in.Rel, Stage: StageTransform, Status: StatusDone, Cached: fr.Cached, Elapsed: time.Since(t0)})

	fr.Bytes = out.Len()
	if req.OutDir != "" {
		emit(req.Progress, Event{File: in.Rel, Stage: StageWrite, Status: StatusWorking})
		t0 = time.Now()
		dst := filepath.Join(req.OutDir, filepath.FromSlash(outRel))
		err := writeOutput(dst, out.Bytes())
		timings.add(StageWrite, time.Since(t0))
		if err != nil {
			return fail(StageWrite, err)
		}
		fr.Output = dst
	}

	fr.Elapsed = time.Since(start)
	emit(req.Progress, Event{File: in.Rel, Stage: StageWrite, Status: StatusDone, Cached: fr.Cached, Elapsed: fr.Elapsed})
	return fr
}

// planOutputs maps each input to its output path below OutDir. The second
// and later inputs mapping to an already taken output are reported as
// collisions, keyed by input index, with the earlier input's path.
func planOutputs(inputs []Input) ([]string, map[int]string) {
	outputs := make([]string, len(inputs))
	owner := make(map[string]string, len(inputs))
	collisions := make(map[int]string)
	for i, in := range inputs {
		outputs[i] = in.Rel
		if classify.IsCandidate(in.Rel) {
			outputs[i] = classify.OutputName(in.Rel)
		}
		if prev, ok := owner[outputs[i]]; ok {
			collisions[i] = prev
			continue
		}
		owner[outputs[i]] = in.Path
	}
	return outputs, collisions
}

func writeOutput(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
