package transform

import (
	"io"
	"sync"
)

// Sink receives a stream's output. Data may be called any number of times,
// Error at most once and always before End, End exactly once.
type Sink interface {
	Data(p []byte)
	Error(err error)
	End()
}

// Collector is a Sink that keeps everything it receives. It is safe for
// concurrent use.
type Collector struct {
	mu     sync.Mutex
	data   []byte
	chunks int
	err    error
	ended  bool
	order  []string
	done   chan struct{}
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{done: make(chan struct{})}
}

func (c *Collector) Data(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = append(c.data, p...)
	c.chunks++
	c.order = append(c.order, "data")
}

func (c *Collector) Error(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	c.order = append(c.order, "error")
}

func (c *Collector) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return
	}
	c.ended = true
	c.order = append(c.order, "end")
	close(c.done)
}

// Done is closed when End is received.
func (c *Collector) Done() <-chan struct{} { return c.done }

// Bytes returns the data received so far.
func (c *Collector) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.data...)
}

// Chunks returns how many Data calls were received.
func (c *Collector) Chunks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chunks
}

// Err returns the error received, if any.
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Events returns the sequence of calls received: "data", "error", "end".
func (c *Collector) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// WriterSink forwards data to an io.Writer. The first write failure or
// stream error is kept and returned by Err.
type WriterSink struct {
	W io.Writer

	err error
}

func (s *WriterSink) Data(p []byte) {
	if s.err != nil {
		return
	}
	if _, err := s.W.Write(p); err != nil {
		s.err = err
	}
}

func (s *WriterSink) Error(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *WriterSink) End() {}

// Err returns the first failure seen.
func (s *WriterSink) Err() error { return s.err }
