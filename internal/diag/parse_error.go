package diag

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"coffeeify/internal/compiler"
	"coffeeify/internal/source"
)

// ParseError is a syntax error located in the original source. Line and
// Column are 1-based.
type ParseError struct {
	File      string
	Message   string
	Line      int
	Column    int
	Width     int    // caret count
	Source    string // text of the offending line
	Annotated string
}

// Error returns the annotated text.
func (e *ParseError) Error() string { return e.Annotated }

// String returns the annotated text.
func (e *ParseError) String() string { return e.Annotated }

// GoString keeps %#v output readable in test failures and logs.
func (e *ParseError) GoString() string { return e.Annotated }

// Kind returns KindParse.
func (e *ParseError) Kind() Kind { return KindParse }

// Annotate converts a located *compiler.SyntaxError into a *ParseError for
// src, labelled with file. Errors without a location are returned unchanged.
func Annotate(err error, src, file string) error {
	var synErr *compiler.SyntaxError
	if !errors.As(err, &synErr) || synErr.Location == nil {
		return err
	}
	loc := synErr.Location

	pe := &ParseError{
		File:    file,
		Message: synErr.Message,
		Line:    loc.FirstLine + 1,
		Column:  loc.FirstColumn + 1,
		Width:   caretWidth(loc),
	}
	pe.Source = sourceLine(src, pe.Line)
	pe.Annotated = pe.render()
	return pe
}

// Relabel returns a copy of e attributed to file.
func Relabel(e *ParseError, file string) *ParseError {
	cp := *e
	cp.File = file
	cp.Annotated = cp.render()
	return &cp
}

func (e *ParseError) render() string {
	return strings.Join([]string{
		fmt.Sprintf("%s:%d", e.File, e.Line),
		e.Source,
		strings.Repeat(" ", max(e.Column-1, 0)) + strings.Repeat("^", e.Width),
		"ParseError: " + e.Message,
	}, "\n")
}

// caretWidth spans the error on its line, at least one marker. Errors that
// cross lines get a single marker.
func caretWidth(loc *compiler.Location) int {
	if loc.FirstLine != loc.LastLine {
		return 1
	}
	return max(loc.LastColumn-loc.FirstColumn, 1)
}

func sourceLine(src string, line int) string {
	n, err := safecast.Conv[uint32](line)
	if err != nil {
		return ""
	}
	return source.NewUnit("", []byte(src)).Line(n)
}
