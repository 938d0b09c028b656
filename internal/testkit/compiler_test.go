package testkit

import (
	"context"
	"errors"
	"testing"

	"coffeeify/internal/compiler"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		ok     bool
		line   int
		column int
	}{
		{"valid", "x = ->\n  1\n", true, 0, 0},
		{"string", "a = 'ok'\nb = \"open\n", false, 1, 4},
		{"escaped quote", "a = 'it\\'s'\n", true, 0, 0},
		{"paren", "f = (a,\n  b\n", false, 0, 4},
		{"nested", "x = [1, {a: 2}]\n", true, 0, 0},
		{"unmatched", "x = 1)\n", false, 0, 5},
		{"block comment", "x = 1\n###\nopen block\n", false, 1, 0},
		{"closed block comment", "###\n(\n###\nx = 1\n", true, 0, 0},
		{"line comment", "# (\nx = 1\n", true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.src)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var synErr *compiler.SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("expected syntax error, got %v", err)
			}
			if synErr.Location.FirstLine != tt.line || synErr.Location.FirstColumn != tt.column {
				t.Fatalf("location = %+v, want %d:%d", synErr.Location, tt.line, tt.column)
			}
		})
	}
}

func TestCompilerCountsAndRecordsOptions(t *testing.T) {
	c := &Compiler{}
	opts := compiler.Options{SourceMap: true, GeneratedFile: "a.coffee", Bare: true, Inline: true}
	out, err := c.Compile(context.Background(), "x = 1\n", opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if out.JS == "" || len(out.SourceMap) == 0 {
		t.Fatalf("unexpected output %+v", out)
	}
	if c.Calls() != 1 || c.LastOptions() != opts {
		t.Fatalf("calls=%d last=%+v", c.Calls(), c.LastOptions())
	}
}

func TestCompilerLiterate(t *testing.T) {
	c := &Compiler{}
	src := "# Title with ( unbalanced prose\n\n    x = 1\n"
	if _, err := c.Compile(context.Background(), src, compiler.Options{Literate: true}); err != nil {
		t.Fatalf("literate prose should be ignored: %v", err)
	}
	if _, err := c.Compile(context.Background(), "    y = (\n", compiler.Options{Literate: true}); err == nil {
		t.Fatal("expected error in literate code block")
	}
}
