// Package diag defines the failure model of a compile.
//
// # Kinds
//
// Every failure surfaced by a file stream falls into one of three kinds,
// reported by KindOf:
//
//   - KindParse – the compiler rejected the grammar and told us where. The
//     error is a *ParseError with a four-line annotation.
//   - KindCompiler – any other compiler failure. The original error is passed
//     through untouched.
//   - KindStorage – reading an existing cache entry or writing a new one
//     failed. The error is a *StorageError.
//
// Kinds are tags, not a type hierarchy: callers switch on KindOf(err) or use
// errors.As with the concrete types.
//
// # Annotation
//
// Annotate converts a located compiler.SyntaxError plus the original source
// into a *ParseError whose Error and String methods return the annotated text:
//
//	a.coffee:2
//	  x = (
//	      ^
//	ParseError: missing )
//
// Package diag performs no IO and no coloring; rendering for terminals and
// JSON lives in internal/diagfmt.
package diag
