package fuzztests

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"coffeeify/internal/diag"
	"coffeeify/internal/source"
	"coffeeify/internal/testkit"
)

func FuzzAnnotate(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		src := string(clamp(input))
		err := diag.Annotate(testkit.Check(src), src, "fuzz.coffee")
		if err == nil {
			return
		}
		var pe *diag.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("located error not annotated: %v", err)
		}
		lines := strings.Split(pe.Annotated, "\n")
		if len(lines) != 4 {
			t.Fatalf("annotation has %d lines:\n%s", len(lines), pe.Annotated)
		}
		if lines[0] != "fuzz.coffee:"+strconv.Itoa(pe.Line) {
			t.Fatalf("header = %q", lines[0])
		}
		caret := lines[2]
		if strings.TrimLeft(caret, " ") != strings.Repeat("^", pe.Width) || len(caret)-pe.Width != pe.Column-1 {
			t.Fatalf("caret line %q for column %d width %d", caret, pe.Column, pe.Width)
		}
		if pe.Width < 1 {
			t.Fatalf("width = %d", pe.Width)
		}
	})
}

func FuzzLineMatchesSplit(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)
		unit := source.NewUnit("fuzz.coffee", input)
		parts := strings.Split(string(input), "\n")
		if unit.LineCount() != len(parts) {
			t.Fatalf("LineCount = %d, want %d", unit.LineCount(), len(parts))
		}
		for i, want := range parts {
			if got := unit.Line(uint32(i + 1)); got != want {
				t.Fatalf("Line(%d) = %q, want %q", i+1, got, want)
			}
		}
		if got := unit.Line(uint32(len(parts) + 1)); got != "" {
			t.Fatalf("line past the end = %q", got)
		}
	})
}
