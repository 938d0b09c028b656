package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"coffeeify/internal/cache"
	"coffeeify/internal/digest"
	"coffeeify/internal/version"
)

// run executes the root command with a fresh config file and cache dir.
func run(t *testing.T, cacheDir string, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "coffeeify.toml")
	cfg := "[compile]\nsource_map = false\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", cfgPath, "--cache-dir", cacheDir, "--color", "off"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "classify", "a.coffee", "b.litcoffee", "c.js")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s", out)
	}
	for i, want := range [][]string{{"a.coffee", "coffee", "a.js"}, {"b.litcoffee", "literate", "b.js"}, {"c.js", "passthrough", "-"}} {
		if got := strings.Fields(lines[i]); strings.Join(got, " ") != strings.Join(want, " ") {
			t.Errorf("line %d = %q, want %v", i, lines[i], want)
		}
	}
}

func TestCompilePassthrough(t *testing.T) {
	src := filepath.Join(t.TempDir(), "lib.js")
	if err := os.WriteFile(src, []byte("module.exports = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := run(t, t.TempDir(), "compile", src)
	if err != nil {
		t.Fatal(err)
	}
	if out != "module.exports = 1;\n" {
		t.Fatalf("out = %q", out)
	}
}

func TestCompileServedFromCache(t *testing.T) {
	cacheDir := t.TempDir()
	content := []byte("x = 1\n")
	if err := cache.Open(cacheDir).Write(digest.Sum(content), []byte("var x = 1;\n")); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(t.TempDir(), "a.coffee")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// The cached entry is served without running coffee.
	out, _, err := run(t, cacheDir, "--coffee", "coffeeify-no-such-compiler", "compile", src)
	if err != nil {
		t.Fatal(err)
	}
	if out != "var x = 1;\n" {
		t.Fatalf("out = %q", out)
	}
}

func TestCacheCommands(t *testing.T) {
	cacheDir := t.TempDir()
	store := cache.Open(cacheDir)
	for _, s := range []string{"a", "b"} {
		if err := store.Write(digest.Sum([]byte(s)), []byte("var "+s+";\n")); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := run(t, cacheDir, "cache", "path")
	if err != nil || strings.TrimSpace(out) != cacheDir {
		t.Fatalf("path = %q, %v", out, err)
	}
	out, _, err = run(t, cacheDir, "cache", "stat")
	if err != nil || !strings.Contains(out, "2 entries, 14 B") {
		t.Fatalf("stat = %q, %v", out, err)
	}
	out, _, err = run(t, cacheDir, "cache", "clean")
	if err != nil || !strings.Contains(out, "removed 2 entries") {
		t.Fatalf("clean = %q, %v", out, err)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var info version.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Version != version.Version {
		t.Fatalf("info = %+v", info)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected error")
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatal("explicit modes must win")
	}
}

func TestHumanBytes(t *testing.T) {
	tests := map[int64]string{0: "0 B", 1023: "1023 B", 1024: "1.0 KiB", 1536: "1.5 KiB", 5 << 20: "5.0 MiB"}
	for n, want := range tests {
		if got := humanBytes(n); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
