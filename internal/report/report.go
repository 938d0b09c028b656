// Package report serializes a bundle run's per-file outcomes, as JSON or
// as msgpack, chosen by the output file's extension.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"coffeeify/internal/buildpipeline"
	"coffeeify/internal/diag"
	"coffeeify/internal/observ"
)

// SchemaVersion is bumped when Report changes incompatibly.
const SchemaVersion uint16 = 1

// Format selects the encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatMsgpack
)

// FormatFor picks the format from a file name: .mp and .msgpack select
// msgpack, anything else JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return FormatMsgpack
	}
	return FormatJSON
}

// Location is a 1-based error position.
type Location struct {
	Line   int `json:"line" msgpack:"line"`
	Column int `json:"column" msgpack:"column"`
}

// File is one input's outcome.
type File struct {
	Path      string    `json:"path" msgpack:"path"`
	Output    string    `json:"output,omitempty" msgpack:"output,omitempty"`
	Candidate bool      `json:"candidate" msgpack:"candidate"`
	Digest    string    `json:"digest,omitempty" msgpack:"digest,omitempty"`
	Cache     string    `json:"cache,omitempty" msgpack:"cache,omitempty"` // "hit" or "miss"
	Status    string    `json:"status" msgpack:"status"`                   // "ok" or the error kind
	Error     string    `json:"error,omitempty" msgpack:"error,omitempty"`
	Location  *Location `json:"location,omitempty" msgpack:"location,omitempty"`
	Bytes     int       `json:"bytes" msgpack:"bytes"`
	ElapsedMS float64   `json:"elapsed_ms" msgpack:"elapsed_ms"`
}

// Report is the whole run.
type Report struct {
	Schema    uint16         `json:"schema" msgpack:"schema"`
	Generated time.Time      `json:"generated" msgpack:"generated"`
	Files     []File         `json:"files" msgpack:"files"`
	Compiled  int            `json:"compiled" msgpack:"compiled"`
	Cached    int            `json:"cached" msgpack:"cached"`
	Failed    int            `json:"failed" msgpack:"failed"`
	Timings   *observ.Report `json:"timings,omitempty" msgpack:"timings,omitempty"`
}

// Build summarizes res.
func Build(res *buildpipeline.Result, now time.Time) *Report {
	r := &Report{Schema: SchemaVersion, Generated: now.UTC(), Files: make([]File, 0, len(res.Files))}
	for _, fr := range res.Files {
		f := File{
			Path:      fr.Rel,
			Output:    filepath.ToSlash(fr.Output),
			Candidate: fr.Candidate,
			Status:    "ok",
			Bytes:     fr.Bytes,
			ElapsedMS: float64(fr.Elapsed) / float64(time.Millisecond),
		}
		if !fr.Digest.IsZero() {
			f.Digest = fr.Digest.String()
			f.Cache = "miss"
			if fr.Cached {
				f.Cache = "hit"
			}
		}
		if fr.Err != nil {
			f.Status = diag.KindOf(fr.Err).String()
			f.Error = fr.Err.Error()
			var pe *diag.ParseError
			if errors.As(fr.Err, &pe) {
				f.Error = pe.Message
				f.Location = &Location{Line: pe.Line, Column: pe.Column}
			}
			r.Failed++
		} else if fr.Candidate {
			if fr.Cached {
				r.Cached++
			} else {
				r.Compiled++
			}
		}
		r.Files = append(r.Files, f)
	}
	if len(res.Phases.Phases) > 0 {
		phases := res.Phases
		r.Timings = &phases
	}
	return r
}

// Encode writes r to w in format.
func Encode(w io.Writer, r *Report, format Format) error {
	if format == FormatMsgpack {
		return msgpack.NewEncoder(w).Encode(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Decode reads a report written by Encode.
func Decode(rd io.Reader, format Format) (*Report, error) {
	var r Report
	var err error
	if format == FormatMsgpack {
		err = msgpack.NewDecoder(rd).Decode(&r)
	} else {
		err = json.NewDecoder(rd).Decode(&r)
	}
	if err != nil {
		return nil, err
	}
	if r.Schema != SchemaVersion {
		return nil, fmt.Errorf("report schema %d, want %d", r.Schema, SchemaVersion)
	}
	return &r, nil
}

// WriteFile writes r to path via a temp file in the same directory, so a
// reader never sees a partial report.
func WriteFile(path string, r *Report) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name()) //nolint:errcheck
		}
	}()
	if err = Encode(f, r, FormatFor(path)); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
