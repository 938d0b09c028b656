package buildpipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Input is one file to bundle. Rel is its path below the root it was found
// under and decides where its output goes.
type Input struct {
	Path string
	Rel  string
}

// Collect expands paths into a sorted, de-duplicated file list. Directories
// are walked recursively; hidden entries (dot-prefixed) inside them are
// skipped. A file named directly keeps its base name as Rel.
func Collect(paths []string) ([]Input, error) {
	seen := make(map[string]struct{})
	var inputs []Input
	add := func(path, rel string) {
		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		inputs = append(inputs, Input{Path: path, Rel: filepath.ToSlash(rel)})
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root, filepath.Base(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			add(path, rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", root, err)
		}
	}

	sort.Slice(inputs, func(i, j int) bool {
		if inputs[i].Rel != inputs[j].Rel {
			return inputs[i].Rel < inputs[j].Rel
		}
		return inputs[i].Path < inputs[j].Path
	})
	return inputs, nil
}
