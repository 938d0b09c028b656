package diagfmt

import (
	"errors"
	"io"

	json "github.com/goccy/go-json"

	"coffeeify/internal/diag"
)

// LocationJSON is a 1-based position.
type LocationJSON struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Width  int `json:"width"`
}

// FailureJSON is one failure.
type FailureJSON struct {
	File      string        `json:"file"`
	Kind      string        `json:"kind"`
	Message   string        `json:"message"`
	Location  *LocationJSON `json:"location,omitempty"`
	Source    string        `json:"source,omitempty"`
	Annotated string        `json:"annotated,omitempty"`
}

// Output is the root JSON document.
type Output struct {
	Failures  []FailureJSON `json:"failures"`
	Count     int           `json:"count"`
	Truncated bool          `json:"truncated,omitempty"`
}

// Build converts failures to their JSON form.
func Build(failures []diag.Failure, opts JSONOpts) Output {
	out := Output{Failures: make([]FailureJSON, 0, len(failures)), Count: len(failures)}
	for i, f := range failures {
		if opts.Max > 0 && i >= opts.Max {
			out.Truncated = true
			break
		}
		out.Failures = append(out.Failures, failureJSON(f, opts))
	}
	return out
}

// JSON writes failures as an indented JSON document.
func JSON(w io.Writer, failures []diag.Failure, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(failures, opts))
}

func failureJSON(f diag.Failure, opts JSONOpts) FailureJSON {
	fj := FailureJSON{
		File: displayPath(f.Path, opts.PathMode, opts.BaseDir),
		Kind: diag.KindOf(f.Err).String(),
	}
	var pe *diag.ParseError
	if errors.As(f.Err, &pe) {
		fj.Message = pe.Message
		fj.Location = &LocationJSON{Line: pe.Line, Column: pe.Column, Width: pe.Width}
		fj.Source = pe.Source
		fj.Annotated = pe.Annotated
		return fj
	}
	if f.Err != nil {
		fj.Message = f.Err.Error()
	}
	return fj
}
