// Package diagfmt renders compile failures for people (colored annotated
// text) and for tools (JSON).
package diagfmt

import (
	"path/filepath"

	"coffeeify/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths relative to BaseDir when they are inside it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	BaseDir  string
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // 0 = no limit
}

func displayPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative:
		if rel, err := source.RelativePath(path, baseDir); err == nil {
			return rel
		}
	case PathModeAuto:
		if baseDir == "" {
			return filepath.ToSlash(path)
		}
		return source.NewUnit(path, nil).DisplayPath(baseDir)
	}
	return filepath.ToSlash(path)
}
