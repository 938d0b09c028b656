package driver

import (
	"context"
	"fmt"

	"coffeeify/internal/compiler"
	"coffeeify/internal/diag"
	"coffeeify/internal/digest"
	"coffeeify/internal/observ"
	"coffeeify/internal/source"
	"coffeeify/internal/sourcemap"
	"coffeeify/internal/trace"
)

// Artifact is the compiled output of one unit.
type Artifact struct {
	Code   string // ends with a newline; with source maps, the map comment line
	Digest digest.Digest
	Hit    bool           // served from the cache
	Timing *observ.Report // nil unless Config.Timings

	path string
}

// GetOrCompile returns the cached output for unit's content, compiling and
// storing it on a miss. The entry is written before GetOrCompile returns.
// Failed compiles are never stored.
//
// The key is the content digest alone: opts do not take part, so output
// cached under one source map setting is served under the other.
func (d *Driver) GetOrCompile(ctx context.Context, unit *source.Unit, opts compiler.Options) (Artifact, error) {
	key := digest.Sum(unit.Content)

	ctx, span := trace.StartSpan(ctx, trace.ScopeFile, "compile:"+unit.Path)
	span.WithExtra("digest", key.String())

	if d.flight == nil {
		art, err := d.lookup(ctx, key, unit, opts)
		endSpan(span, art, err)
		return art, err
	}

	v, err, shared := d.flight.Do(key.String(), func() (any, error) {
		return d.lookup(ctx, key, unit, opts)
	})
	art, _ := v.(Artifact)
	if shared {
		span.WithExtra("shared", "true")
		// Parse errors are labelled with the leader's path; relabel for ours.
		if err != nil && unit.Path != art.path {
			err = d.relabel(err, unit)
		}
	}
	endSpan(span, art, err)
	return art, err
}

func (d *Driver) lookup(ctx context.Context, key digest.Digest, unit *source.Unit, opts compiler.Options) (Artifact, error) {
	var timer *observ.Timer
	if d.timings {
		timer = observ.NewTimer()
	}
	art := Artifact{Digest: key, path: unit.Path}

	if d.store.Exists(key) {
		idx := timer.Begin("read")
		data, err := d.store.Read(key)
		timer.End(idx, "")
		if err != nil {
			return art, &diag.StorageError{Op: "read", Path: d.store.Path(key), Err: err}
		}
		art.Code = string(data)
		art.Hit = true
		art.Timing = reportOf(timer)
		return art, nil
	}

	idx := timer.Begin("compile")
	code, err := d.compileInner(ctx, unit, opts)
	timer.End(idx, "")
	if err != nil {
		return art, err
	}

	idx = timer.Begin("store")
	d.store.EnsureDir()
	err = d.store.Write(key, []byte(code))
	timer.End(idx, "")
	if err != nil {
		return art, &diag.StorageError{Op: "write", Path: d.store.Path(key), Err: err}
	}
	art.Code = code
	art.Timing = reportOf(timer)
	return art, nil
}

// compileInner runs the compiler and shapes its output into the cached
// form: code plus newline, or code followed by the inline map comment.
func (d *Driver) compileInner(ctx context.Context, unit *source.Unit, opts compiler.Options) (string, error) {
	src := unit.Text()
	out, err := d.compiler.Compile(ctx, src, opts)
	if err != nil {
		return "", diag.Annotate(err, src, unit.Path)
	}
	if !opts.SourceMap {
		return out.JS + "\n", nil
	}

	m, err := sourcemap.FromJSON(out.SourceMap)
	if err != nil {
		return "", fmt.Errorf("%s: compiler source map: %w", unit.Path, err)
	}
	m.SetSources(unit.Path)
	return sourcemap.Embed(out.JS, m)
}

func (d *Driver) relabel(err error, unit *source.Unit) error {
	pe, ok := err.(*diag.ParseError)
	if !ok {
		return err
	}
	return diag.Relabel(pe, unit.Path)
}

func reportOf(t *observ.Timer) *observ.Report {
	if t == nil {
		return nil
	}
	r := t.Report()
	return &r
}

func endSpan(span *trace.Span, art Artifact, err error) {
	if art.Hit {
		span.WithExtra("cache", "hit")
	} else {
		span.WithExtra("cache", "miss")
	}
	if err != nil {
		span.End(diag.KindOf(err).String())
		return
	}
	span.End("")
}
