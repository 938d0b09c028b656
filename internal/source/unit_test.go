package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLineMatchesSplit(t *testing.T) {
	inputs := []string{
		"",
		"one",
		"one\n",
		"x = ->\n  1\n",
		"a\nb\nc",
		"crlf\r\nline\r\n",
		"\n\n\n",
	}
	for _, in := range inputs {
		u := NewUnit("t.coffee", []byte(in))
		parts := strings.Split(in, "\n")
		if u.LineCount() != len(parts) {
			t.Errorf("%q: LineCount = %d, want %d", in, u.LineCount(), len(parts))
		}
		for i, want := range parts {
			if got := u.Line(uint32(i + 1)); got != want {
				t.Errorf("%q: Line(%d) = %q, want %q", in, i+1, got, want)
			}
		}
		if got := u.Line(uint32(len(parts) + 1)); got != "" {
			t.Errorf("%q: out of range line = %q, want empty", in, got)
		}
		if got := u.Line(0); got != "" {
			t.Errorf("%q: Line(0) = %q, want empty", in, got)
		}
	}
}

func TestPosition(t *testing.T) {
	u := NewUnit("p.coffee", []byte("ab\ncd\n\nef"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{2, LineCol{1, 3}}, // the '\n' itself
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		if got := u.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestLoadKeepsBytesVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.coffee")
	content := []byte("\xEF\xBB\xBFx = 1\r\ny = 2\r\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	u, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(u.Content) != string(content) {
		t.Fatalf("content changed on load: %q", u.Content)
	}
	if _, err := Load(filepath.Join(dir, "missing.coffee")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRelativePath(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "base")
	inside := filepath.Join(base, "nested", "file.coffee")
	outside := filepath.Join(tmp, "other", "file.coffee")

	got, err := RelativePath(inside, base)
	if err != nil {
		t.Fatalf("RelativePath: %v", err)
	}
	if got != "nested/file.coffee" {
		t.Fatalf("inside: got %q", got)
	}

	got, err = RelativePath(outside, base)
	if err != nil {
		t.Fatalf("RelativePath: %v", err)
	}
	if got != normalizePath(outside) {
		t.Fatalf("outside: got %q, want %q", got, normalizePath(outside))
	}

	u := NewUnit(inside, nil)
	if dp := u.DisplayPath(base); dp != "nested/file.coffee" {
		t.Fatalf("DisplayPath = %q", dp)
	}
}

func TestLineOversizedContent(t *testing.T) {
	saved := maxIndexed
	maxIndexed = 6
	t.Cleanup(func() { maxIndexed = saved })

	u := NewUnit("big.coffee", []byte("a\nb\nc\nd\ne\n"))
	if len(u.LineIdx) != 3 {
		t.Fatalf("LineIdx = %v, want the first 3 newlines", u.LineIdx)
	}
	for n := uint32(0); n <= 6; n++ {
		if got := u.Line(n); got != "" {
			t.Errorf("Line(%d) = %q, want empty", n, got)
		}
	}
}
