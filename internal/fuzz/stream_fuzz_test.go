package fuzztests

import (
	"bytes"
	"context"
	"testing"

	"coffeeify/internal/cache"
	"coffeeify/internal/classify"
	"coffeeify/internal/driver"
	"coffeeify/internal/testkit"
	"coffeeify/internal/transform"
)

func FuzzPassthroughIsIdentity(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)
		tc := &testkit.Compiler{}
		deps := driver.New(cache.Open(t.TempDir()), tc, driver.DefaultConfig())

		sink := transform.NewCollector()
		s := transform.New(context.Background(), "vendor.js", deps, sink)
		// Feed in uneven chunks.
		for rest := input; len(rest) > 0; {
			n := min(len(rest), 1+len(rest)%7)
			if _, err := s.Write(rest[:n]); err != nil {
				t.Fatal(err)
			}
			rest = rest[n:]
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(sink.Bytes(), input) || tc.Calls() != 0 {
			t.Fatalf("passthrough changed %d bytes into %d (calls=%d)", len(input), len(sink.Bytes()), tc.Calls())
		}
	})
}

func FuzzClassify(f *testing.F) {
	for _, p := range []string{"a.coffee", "b.litcoffee", "c.coffee.md", "d.js", ".coffee", "x.coffee.md.js", "é.coffee"} {
		f.Add(p)
	}
	f.Fuzz(func(t *testing.T, path string) {
		if classify.IsLiterate(path) && !classify.IsCandidate(path) {
			t.Fatalf("%q is literate but not a candidate", path)
		}
		if classify.IsCandidate(path) {
			out := classify.OutputName(path)
			if len(out) < 3 || out[len(out)-3:] != ".js" {
				t.Fatalf("OutputName(%q) = %q", path, out)
			}
		}
	})
}
