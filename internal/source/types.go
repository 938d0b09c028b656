package source

// Unit is one fully buffered input file. It is immutable once built; callers
// must not modify Content after handing it to NewUnit.
type Unit struct {
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n' bytes
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
