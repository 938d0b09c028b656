package source

import (
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// NewUnit wraps buffered content for path and indexes its lines.
func NewUnit(path string, content []byte) *Unit {
	return &Unit{
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
	}
}

// Load reads path from disk verbatim. Unlike an editor-facing loader it does
// not strip BOMs or normalize CRLF: the bytes are hashed as-is.
func Load(path string) (*Unit, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewUnit(path, content), nil
}

// Text returns the content as a string.
func (u *Unit) Text() string {
	return string(u.Content)
}

// LineCount returns the number of '\n'-separated lines, counting a trailing
// empty line the way strings.Split does.
func (u *Unit) LineCount() int {
	return len(u.LineIdx) + 1
}

// Line returns the text of line lineNum (1-based), without its '\n'.
// A '\r' before the newline is kept. Out-of-range lines yield "", as does
// every line of content too large for uint32 offsets.
func (u *Unit) Line(lineNum uint32) string {
	if lineNum == 0 || uint64(len(u.Content)) > maxIndexed {
		return ""
	}

	lenLineIdx, err := safecast.Conv[uint32](len(u.LineIdx))
	if err != nil {
		return ""
	}
	lenContent, err := safecast.Conv[uint32](len(u.Content))
	if err != nil {
		return ""
	}

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lenLineIdx:
		start = u.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if lineNum-1 < lenLineIdx {
		end = u.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	if start > lenContent || end < start {
		return ""
	}
	return string(u.Content[start:end])
}

// Position converts a byte offset into a 1-based line and column.
func (u *Unit) Position(off uint32) LineCol {
	return toLineCol(u.LineIdx, off)
}

// DisplayPath returns Path relative to baseDir when it lies inside it.
func (u *Unit) DisplayPath(baseDir string) string {
	if baseDir == "" || !filepath.IsAbs(u.Path) {
		return normalizePath(u.Path)
	}
	rel, err := RelativePath(u.Path, baseDir)
	if err != nil {
		return normalizePath(u.Path)
	}
	return rel
}
