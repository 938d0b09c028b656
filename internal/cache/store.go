// Package cache is the on-disk store behind the compile cache: a flat
// directory of files named by the hex digest of their source, each holding
// the raw compiled output.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"coffeeify/internal/digest"
)

// DirName is the directory created under the system temp dir by default.
const DirName = "coffeeify_cache"

// ErrNotFound is returned by Read for a missing entry.
var ErrNotFound = errors.New("cache entry not found")

// Store is a flat directory of entries. It takes no locks: writes replace the
// entry atomically, so readers always see one complete artifact. Racing
// writers of a key may still differ, since artifacts with an inline source
// map name the file they were compiled for; the last rename wins.
type Store struct {
	dir string
}

// DefaultDir returns the well-known cache location, e.g. /tmp/coffeeify_cache.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), DirName)
}

// Open returns a store rooted at dir. The directory is created lazily on the
// first write.
func Open(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// Dir returns the store's root.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the entry path for key.
func (s *Store) Path(key digest.Digest) string {
	return filepath.Join(s.dir, key.String())
}

// Exists reports whether an entry for key is present. Any stat failure reads
// as absent; a following Read still reports real errors.
func (s *Store) Exists(key digest.Digest) bool {
	info, err := os.Stat(s.Path(key))
	return err == nil && info.Mode().IsRegular()
}

// Read returns the entry bytes for key.
func (s *Store) Read(key digest.Digest) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return data, err
}

// EnsureDir creates the store directory if needed. Failures are ignored:
// the directory usually exists already, and a real problem surfaces on Write.
func (s *Store) EnsureDir() {
	_ = os.MkdirAll(s.dir, 0o755) //nolint:errcheck
}

// Write stores data under key. The entry appears atomically: a reader sees
// either no entry or the complete bytes. Writing the same bytes twice leaves
// the same entry as writing them once.
func (s *Store) Write(key digest.Digest, data []byte) error {
	p := s.Path(key)
	f, err := os.CreateTemp(s.dir, "tmp-"+key.String()+"-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Stats summarizes the store contents.
type Stats struct {
	Dir     string
	Entries int
	Bytes   int64
}

// Stat walks the store. A missing directory is an empty store.
func (s *Store) Stat() (Stats, error) {
	st := Stats{Dir: s.dir}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	for _, e := range entries {
		if !isEntryName(e.Name()) || !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return st, err
		}
		st.Entries++
		st.Bytes += info.Size()
	}
	return st, nil
}

// Clean removes every entry and leftover temp file. The compile path never
// calls it; it exists for explicit user purges.
func (s *Store) Clean() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if !isEntryName(name) && !strings.HasPrefix(name, "tmp-") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func isEntryName(name string) bool {
	_, err := digest.Parse(name)
	return err == nil
}
