package diag

import (
	"sort"
	"sync"
)

// Failure is one file's error.
type Failure struct {
	Path string
	Err  error
}

// Kind tags the failure.
func (f Failure) Kind() Kind { return KindOf(f.Err) }

// Bag collects per-file failures from concurrent streams.
type Bag struct {
	mu    sync.Mutex
	items []Failure
	max   int
}

// NewBag returns a bag that keeps at most max failures; max <= 0 keeps all.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add records err for path. Returns false once the bag is full.
func (b *Bag) Add(path string, err error) bool {
	if err == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, Failure{Path: path, Err: err})
	return true
}

// Len returns the number of failures.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// HasErrors reports whether any failure was recorded.
func (b *Bag) HasErrors() bool {
	return b.Len() > 0
}

// Items returns the failures ordered by path, then by line for parse errors.
func (b *Bag) Items() []Failure {
	b.mu.Lock()
	out := make([]Failure, len(b.items))
	copy(out, b.items)
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return lineOf(out[i].Err) < lineOf(out[j].Err)
	})
	return out
}

func lineOf(err error) int {
	if pe, ok := err.(*ParseError); ok {
		return pe.Line
	}
	return 0
}
