// Package transform adapts the compile driver to a bundler's per-file
// stream: CoffeeScript files are buffered and compiled on end of input,
// everything else passes through untouched.
package transform

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"coffeeify/internal/classify"
	"coffeeify/internal/compiler"
	"coffeeify/internal/driver"
	"coffeeify/internal/source"
	"coffeeify/internal/trace"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("transform: write after end of input")

// State is a stream's position in its lifecycle.
type State uint8

const (
	StateIdle        State = iota // candidate, nothing written yet
	StateBuffering                // candidate, collecting input
	StateFinalizing               // end of input seen, compiling
	StateEmitting                 // compiled output delivered
	StateFailed                   // error delivered
	StatePassthrough              // not a candidate
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffering:
		return "buffering"
	case StateFinalizing:
		return "finalizing"
	case StateEmitting:
		return "emitting"
	case StateFailed:
		return "failed"
	case StatePassthrough:
		return "passthrough"
	}
	return "unknown"
}

// Compiler is what a stream needs from the driver.
type Compiler interface {
	GetOrCompile(ctx context.Context, unit *source.Unit, opts compiler.Options) (driver.Artifact, error)
	SourceMap() bool
}

// Result describes how a finished stream ended. Artifact is zero for
// passthrough streams.
type Result struct {
	Path      string
	Candidate bool
	Artifact  driver.Artifact
	Err       error
}

// Stream is the transform for one file. Write and Close must not be called
// concurrently with each other.
type Stream struct {
	ctx  context.Context
	path string
	deps Compiler
	sink Sink

	mu     sync.Mutex
	state  State
	closed bool
	buf    bytes.Buffer
	result Result
}

// New returns the stream for path. Classification happens once, here.
func New(ctx context.Context, path string, deps Compiler, sink Sink) *Stream {
	s := &Stream{ctx: ctx, path: path, deps: deps, sink: sink}
	s.result.Path = path
	if classify.IsCandidate(path) {
		s.state = StateIdle
		s.result.Candidate = true
	} else {
		s.state = StatePassthrough
	}
	return s
}

// State returns the current state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Write accepts a chunk of input. Passthrough streams forward a copy of p
// immediately; candidate streams buffer it.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if s.state == StatePassthrough {
		s.sink.Data(bytes.Clone(p))
		return len(p), nil
	}
	s.state = StateBuffering
	return s.buf.Write(p)
}

// Close marks end of input. For a candidate it compiles the buffered
// content, blocking until the result has been delivered to the sink: the
// code (newline-terminated) then End, or the error then End. Calling Close
// again is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.state == StatePassthrough {
		trace.Point(trace.FromContext(s.ctx), trace.ScopeChunk, "passthrough", s.path, trace.CurrentSpan(s.ctx))
		s.sink.End()
		return nil
	}

	s.state = StateFinalizing
	unit := source.NewUnit(s.path, s.buf.Bytes())
	art, err := s.deps.GetOrCompile(s.ctx, unit, driver.OptionsFor(s.path, s.deps.SourceMap()))
	s.result.Artifact = art
	if err != nil {
		s.state = StateFailed
		s.result.Err = err
		s.sink.Error(err)
		s.sink.End()
		return nil
	}

	s.state = StateEmitting
	code := art.Code
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	s.sink.Data([]byte(code))
	s.sink.End()
	return nil
}

// Abort ends the stream without compiling, delivering err then End. It is
// a no-op after Close.
func (s *Stream) Abort(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.state = StateFailed
	s.result.Err = err
	s.sink.Error(err)
	s.sink.End()
}

// Result returns the outcome. It is complete once Close has returned.
func (s *Stream) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Pipe streams r through a transform for path into w. Compile failures are
// returned as the stream's error; nothing is written to w for them.
func Pipe(ctx context.Context, path string, deps Compiler, r io.Reader, w io.Writer) (Result, error) {
	sink := &WriterSink{W: w}
	s := New(ctx, path, deps, sink)
	if _, err := io.Copy(s, r); err != nil {
		s.Abort(err)
		return s.Result(), err
	}
	if err := s.Close(); err != nil {
		return s.Result(), err
	}
	return s.Result(), sink.Err()
}
