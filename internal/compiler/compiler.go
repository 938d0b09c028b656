// Package compiler defines the contract of the CoffeeScript compiler that the
// transform drives, and an implementation backed by the coffee executable.
package compiler

import (
	"context"
	"fmt"
)

// Options mirrors the options CoffeeScript's compile() accepts.
type Options struct {
	SourceMap     bool   // produce a raw v3 map alongside the code
	Literate      bool   // input is literate CoffeeScript
	GeneratedFile string // name recorded as the map's generated file
	Bare          bool   // no top-level function safety wrapper
	Inline        bool
}

// Output is a successful compile. SourceMap holds the raw v3 map JSON and is
// only set when Options.SourceMap was requested.
type Output struct {
	JS        string
	SourceMap []byte
}

// Compiler turns CoffeeScript into JavaScript. A rejected grammar must be
// reported as a *SyntaxError carrying a Location; any other failure is
// treated as opaque.
type Compiler interface {
	Compile(ctx context.Context, src string, opts Options) (Output, error)
}

// Func adapts a function to Compiler.
type Func func(ctx context.Context, src string, opts Options) (Output, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, src string, opts Options) (Output, error) {
	return f(ctx, src, opts)
}

// Location is a 0-based range in the compiler's coordinates. LastColumn is
// exclusive: a one-character token at column 4 has FirstColumn 4 and
// LastColumn 5.
type Location struct {
	FirstLine   int
	FirstColumn int
	LastLine    int
	LastColumn  int
}

// SyntaxError is the compiler's structured rejection of the input.
type SyntaxError struct {
	Message  string
	Location *Location
}

func (e *SyntaxError) Error() string {
	if e.Location == nil {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Location.FirstLine+1, e.Location.FirstColumn+1, e.Message)
}
