// Package config loads coffeeify settings from coffeeify.toml (or
// .coffeeify.yaml) found by walking up from the working directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"coffeeify/internal/cache"
	"coffeeify/internal/compiler"
)

// FileNames are searched in order in every directory.
var FileNames = []string{"coffeeify.toml", ".coffeeify.yaml", ".coffeeify.yml"}

// Config is the resolved configuration.
type Config struct {
	Path       string // file it was read from; empty for defaults
	SourceMap  bool
	Coffee     string
	CoffeeArgs []string
	CacheDir   string
	Dedupe     bool
	Jobs       int
}

// Default returns the built-in configuration: source maps on, the coffee
// executable from PATH, the shared temp-dir cache.
func Default() Config {
	return Config{
		SourceMap: true,
		Coffee:    compiler.DefaultCommand,
		CacheDir:  cache.DefaultDir(),
	}
}

type fileConfig struct {
	Compile compileSection `toml:"compile" yaml:"compile"`
	Cache   cacheSection   `toml:"cache" yaml:"cache"`
	Bundle  bundleSection  `toml:"bundle" yaml:"bundle"`
}

type compileSection struct {
	SourceMap *bool    `toml:"source_map" yaml:"source_map"`
	Coffee    string   `toml:"coffee" yaml:"coffee"`
	Args      []string `toml:"args" yaml:"args"`
}

type cacheSection struct {
	Dir    string `toml:"dir" yaml:"dir"`
	Dedupe bool   `toml:"dedupe" yaml:"dedupe"`
}

type bundleSection struct {
	Jobs int `toml:"jobs" yaml:"jobs"`
}

// Find walks up from startDir looking for a config file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest config file, falling back to Default.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path; the format follows the extension.
func Load(path string) (Config, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		fc, err = decodeTOML(data)
	case ".yaml", ".yml":
		fc, err = decodeYAML(data)
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg, err := resolve(fc, filepath.Dir(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func decodeTOML(data []byte) (fileConfig, error) {
	var fc fileConfig
	meta, err := toml.Decode(string(data), &fc)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fileConfig{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if meta.IsDefined("compile", "coffee") && strings.TrimSpace(fc.Compile.Coffee) == "" {
		return fileConfig{}, errors.New("[compile].coffee must not be empty")
	}
	return fc, nil
}

func decodeYAML(data []byte) (fileConfig, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return fc, nil
}

func resolve(fc fileConfig, baseDir string) (Config, error) {
	cfg := Default()
	if fc.Compile.SourceMap != nil {
		cfg.SourceMap = *fc.Compile.SourceMap
	}
	if c := strings.TrimSpace(fc.Compile.Coffee); c != "" {
		cfg.Coffee = c
	}
	cfg.CoffeeArgs = fc.Compile.Args
	if d := strings.TrimSpace(fc.Cache.Dir); d != "" {
		if !filepath.IsAbs(d) {
			d = filepath.Join(baseDir, d)
		}
		cfg.CacheDir = d
	}
	cfg.Dedupe = fc.Cache.Dedupe
	if fc.Bundle.Jobs < 0 {
		return Config{}, fmt.Errorf("[bundle].jobs must be >= 0, got %d", fc.Bundle.Jobs)
	}
	cfg.Jobs = fc.Bundle.Jobs
	return cfg, nil
}
