// Package driver runs one file through the compile cache: digest lookup,
// compile on a miss, store on success.
package driver

import (
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"coffeeify/internal/classify"
	"coffeeify/internal/compiler"
	"coffeeify/internal/digest"
)

// Store is the entry storage GetOrCompile reads through. *cache.Store
// implements it.
type Store interface {
	Path(key digest.Digest) string
	Exists(key digest.Digest) bool
	Read(key digest.Digest) ([]byte, error)
	EnsureDir()
	Write(key digest.Digest, data []byte) error
}

// Config holds per-driver compile settings.
type Config struct {
	// SourceMap embeds an inline source map in compiled output.
	SourceMap bool
	// Dedupe collapses concurrent misses for the same digest into one
	// compile. Without it two identical files in flight may both compile.
	Dedupe bool
	// Timings records per-phase durations on every Artifact.
	Timings bool
}

// DefaultConfig returns source maps on, no dedupe.
func DefaultConfig() Config {
	return Config{SourceMap: true}
}

// Driver compiles units through the cache. It is safe for concurrent use.
type Driver struct {
	store     Store
	compiler  compiler.Compiler
	sourceMap atomic.Bool
	timings   bool
	flight    *singleflight.Group
}

// New returns a driver reading through store and compiling with c.
func New(store Store, c compiler.Compiler, cfg Config) *Driver {
	d := &Driver{store: store, compiler: c, timings: cfg.Timings}
	d.sourceMap.Store(cfg.SourceMap)
	if cfg.Dedupe {
		d.flight = &singleflight.Group{}
	}
	return d
}

// SetSourceMap changes the source map setting for subsequent compiles.
// Entries already cached are served as they were stored.
func (d *Driver) SetSourceMap(on bool) {
	d.sourceMap.Store(on)
}

// SourceMap reports the current source map setting.
func (d *Driver) SourceMap() bool {
	return d.sourceMap.Load()
}

// OptionsFor builds compile options for path from the current settings.
func (d *Driver) OptionsFor(path string) compiler.Options {
	return OptionsFor(path, d.SourceMap())
}

// OptionsFor builds compile options for path. Output is always bare with
// the map inlined; literate mode follows the extension.
func OptionsFor(path string, sourceMap bool) compiler.Options {
	return compiler.Options{
		SourceMap:     sourceMap,
		Literate:      classify.IsLiterate(path),
		GeneratedFile: path,
		Bare:          true,
		Inline:        true,
	}
}
