package transform

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"coffeeify/internal/cache"
	"coffeeify/internal/diag"
	"coffeeify/internal/driver"
	"coffeeify/internal/sourcemap"
	"coffeeify/internal/testkit"
)

func newDeps(t *testing.T, sourceMap bool) (*driver.Driver, *testkit.Compiler) {
	t.Helper()
	tc := &testkit.Compiler{}
	return driver.New(cache.Open(t.TempDir()), tc, driver.Config{SourceMap: sourceMap}), tc
}

func TestPassthroughForwardsChunks(t *testing.T) {
	deps, tc := newDeps(t, true)
	sink := NewCollector()
	s := New(context.Background(), "c.js", deps, sink)
	if s.State() != StatePassthrough {
		t.Fatalf("state = %s", s.State())
	}

	chunks := [][]byte{[]byte("var a = 1;\n"), []byte("var b = (;\n"), {0xff, 0x00}}
	var want []byte
	for _, c := range chunks {
		if _, err := s.Write(c); err != nil {
			t.Fatal(err)
		}
		want = append(want, c...)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(sink.Bytes(), want) || sink.Chunks() != len(chunks) {
		t.Fatalf("got %q in %d chunks", sink.Bytes(), sink.Chunks())
	}
	if got := strings.Join(sink.Events(), ","); got != "data,data,data,end" {
		t.Fatalf("events = %s", got)
	}
	if tc.Calls() != 0 {
		t.Fatal("passthrough must not compile")
	}
}

func TestPassthroughCopiesChunk(t *testing.T) {
	deps, _ := newDeps(t, false)
	sink := NewCollector()
	s := New(context.Background(), "style.css", deps, sink)
	buf := []byte("a{}")
	if _, err := s.Write(buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	if string(sink.Bytes()) != "a{}" {
		t.Fatalf("sink aliased the caller's buffer: %q", sink.Bytes())
	}
}

func TestCandidateCompilesOnClose(t *testing.T) {
	deps, tc := newDeps(t, true)
	sink := NewCollector()
	s := New(context.Background(), "a.coffee", deps, sink)
	if s.State() != StateIdle {
		t.Fatalf("state = %s", s.State())
	}

	for _, c := range []string{"x ", "= ", "1\n"} {
		if _, err := s.Write([]byte(c)); err != nil {
			t.Fatal(err)
		}
	}
	if s.State() != StateBuffering || sink.Chunks() != 0 || tc.Calls() != 0 {
		t.Fatal("candidate must buffer until end of input")
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if s.State() != StateEmitting {
		t.Fatalf("state = %s", s.State())
	}
	if got := strings.Join(sink.Events(), ","); got != "data,end" {
		t.Fatalf("events = %s", got)
	}
	out := string(sink.Bytes())
	if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
		t.Fatalf("output must end with exactly one newline: %q", out)
	}
	m, err := sourcemap.Find(out)
	if err != nil || len(m.Sources) != 1 || m.Sources[0] != "a.coffee" {
		t.Fatalf("map = %+v, %v", m, err)
	}
	if !tc.LastOptions().Bare || !tc.LastOptions().Inline {
		t.Fatalf("options = %+v", tc.LastOptions())
	}
}

func TestCompileErrorBeforeEnd(t *testing.T) {
	deps, _ := newDeps(t, true)
	sink := NewCollector()
	s := New(context.Background(), "b.coffee", deps, sink)
	if _, err := s.Write([]byte("x = (\n")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(sink.Events(), ","); got != "error,end" {
		t.Fatalf("events = %s", got)
	}
	var pe *diag.ParseError
	if !errors.As(sink.Err(), &pe) {
		t.Fatalf("err = %v", sink.Err())
	}
	lines := strings.Split(pe.Error(), "\n")
	if len(lines) != 4 || lines[0] != "b.coffee:1" || lines[2] != "    ^" {
		t.Fatalf("annotation:\n%s", pe.Error())
	}
	if s.State() != StateFailed || s.Result().Err == nil {
		t.Fatalf("state = %s", s.State())
	}
}

func TestWriteAfterClose(t *testing.T) {
	deps, _ := newDeps(t, false)
	for _, path := range []string{"a.coffee", "c.js"} {
		sink := NewCollector()
		s := New(context.Background(), path, deps, sink)
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Write([]byte("x")); !errors.Is(err, ErrClosed) {
			t.Fatalf("%s: err = %v", path, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("%s: second Close: %v", path, err)
		}
		if n := strings.Count(strings.Join(sink.Events(), ","), "end"); n != 1 {
			t.Fatalf("%s: End delivered %d times", path, n)
		}
	}
}

func TestLiterateStream(t *testing.T) {
	deps, tc := newDeps(t, false)
	var out bytes.Buffer
	src := "# Title\n\nProse (unbalanced.\n\n    x = 1\n"
	res, err := Pipe(context.Background(), "notes.litcoffee", deps, strings.NewReader(src), &out)
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	if !tc.LastOptions().Literate || !res.Candidate {
		t.Fatalf("options = %+v", tc.LastOptions())
	}
}

func TestPipe(t *testing.T) {
	deps, _ := newDeps(t, false)

	var js bytes.Buffer
	res, err := Pipe(context.Background(), "lib.js", deps, strings.NewReader("module.exports = 1;\n"), &js)
	if err != nil || js.String() != "module.exports = 1;\n" || res.Candidate {
		t.Fatalf("passthrough = %q, %+v, %v", js.String(), res, err)
	}

	var bad bytes.Buffer
	_, err = Pipe(context.Background(), "bad.coffee", deps, strings.NewReader("s = 'open\n"), &bad)
	if diag.KindOf(err) != diag.KindParse || bad.Len() != 0 {
		t.Fatalf("err = %v, out = %q", err, bad.String())
	}

	readErr := errors.New("disk gone")
	_, err = Pipe(context.Background(), "x.coffee", deps, iotest.ErrReader(readErr), io.Discard)
	if !errors.Is(err, readErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestConcurrentStreams(t *testing.T) {
	deps, tc := newDeps(t, true)
	files := map[string]string{
		"a.coffee":  "x = 1\n",
		"b.coffee":  "x = (\n",
		"c.js":      "var c;\n",
		"a2.coffee": "x = 1\n",
	}
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := map[string]Result{}
	for path, src := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _ := Pipe(context.Background(), path, deps, strings.NewReader(src), io.Discard)
			mu.Lock()
			results[path] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	if results["b.coffee"].Err == nil || results["a.coffee"].Err != nil || results["c.js"].Err != nil {
		t.Fatalf("one stream's failure leaked into another: %+v", results)
	}
	// Same content under two paths: each output is a valid compile, with
	// the map naming one of the two racing paths.
	for _, path := range []string{"a.coffee", "a2.coffee"} {
		m, err := sourcemap.Find(results[path].Artifact.Code)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if len(m.Sources) != 1 || (m.Sources[0] != "a.coffee" && m.Sources[0] != "a2.coffee") {
			t.Fatalf("%s: sources = %v", path, m.Sources)
		}
	}
	stripMap := func(code string) string {
		js, _, err := sourcemap.ExtractInline(code)
		if err != nil {
			t.Fatal(err)
		}
		return js
	}
	if stripMap(results["a.coffee"].Artifact.Code) != stripMap(results["a2.coffee"].Artifact.Code) {
		t.Fatal("identical content compiled to different code")
	}
	if tc.Calls() > 3 {
		t.Fatalf("compiler ran %d times", tc.Calls())
	}
}
