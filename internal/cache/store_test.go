package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"coffeeify/internal/digest"
)

func TestWriteThenRead(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "cache"))
	key := digest.Sum([]byte("x = 1\n"))

	if s.Exists(key) {
		t.Fatal("entry exists before write")
	}
	if _, err := s.Read(key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read on miss = %v, want ErrNotFound", err)
	}

	s.EnsureDir()
	if err := s.Write(key, []byte("var x;\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.Exists(key) {
		t.Fatal("entry missing after write")
	}
	got, err := s.Read(key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "var x;\n" {
		t.Fatalf("Read = %q", got)
	}
	if filepath.Base(s.Path(key)) != key.String() {
		t.Fatalf("entry not named by digest: %s", s.Path(key))
	}
}

func TestDoubleWriteIsIdempotent(t *testing.T) {
	dirOnce := filepath.Join(t.TempDir(), "once")
	dirTwice := filepath.Join(t.TempDir(), "twice")
	key := digest.Sum([]byte("same"))
	payload := []byte("compiled output\n")

	once := Open(dirOnce)
	once.EnsureDir()
	if err := once.Write(key, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}

	twice := Open(dirTwice)
	twice.EnsureDir()
	for range 2 {
		if err := twice.Write(key, payload); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	assertSameTree(t, dirOnce, dirTwice)
}

func TestConcurrentWritersLeaveOneEntry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "race")
	s := Open(dir)
	key := digest.Sum([]byte("race"))
	payload := bytes.Repeat([]byte("a"), 64<<10)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.EnsureDir()
			if err := s.Write(key, payload); err != nil {
				t.Errorf("Write: %v", err)
			}
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != key.String() {
		t.Fatalf("unexpected store contents: %v", entries)
	}
	got, err := s.Read(key)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("Read after race: err=%v len=%d", err, len(got))
	}
}

func TestEnsureDirSwallowsErrors(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := Open(filepath.Join(blocker, "cache"))
	s.EnsureDir() // must not panic
	s.EnsureDir()
	if err := s.Write(digest.Sum(nil), []byte("x")); err == nil {
		t.Fatal("expected write under a regular file to fail")
	}
}

func TestStatAndClean(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "cache"))
	st, err := s.Stat()
	if err != nil || st.Entries != 0 {
		t.Fatalf("Stat on missing dir = %+v, %v", st, err)
	}

	s.EnsureDir()
	for _, in := range []string{"a", "b", "c"} {
		if err := s.Write(digest.Sum([]byte(in)), []byte(in+in)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "README"), []byte("keep"), 0o600); err != nil {
		t.Fatal(err)
	}

	st, err = s.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Entries != 3 || st.Bytes != 6 {
		t.Fatalf("Stat = %+v, want 3 entries / 6 bytes", st)
	}

	n, err := s.Clean()
	if err != nil || n != 3 {
		t.Fatalf("Clean = %d, %v", n, err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "README")); err != nil {
		t.Fatalf("Clean removed a foreign file: %v", err)
	}
}

func TestDefaultDir(t *testing.T) {
	if got := Open("").Dir(); got != filepath.Join(os.TempDir(), DirName) {
		t.Fatalf("default dir = %q", got)
	}
}

func assertSameTree(t *testing.T, a, b string) {
	t.Helper()
	ea, err := os.ReadDir(a)
	if err != nil {
		t.Fatal(err)
	}
	eb, err := os.ReadDir(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(ea) != len(eb) {
		t.Fatalf("entry count differs: %d vs %d", len(ea), len(eb))
	}
	for i := range ea {
		if ea[i].Name() != eb[i].Name() {
			t.Fatalf("entry names differ: %s vs %s", ea[i].Name(), eb[i].Name())
		}
		da, _ := os.ReadFile(filepath.Join(a, ea[i].Name()))
		db, _ := os.ReadFile(filepath.Join(b, eb[i].Name()))
		if !bytes.Equal(da, db) {
			t.Fatalf("entry %s differs", ea[i].Name())
		}
	}
}
