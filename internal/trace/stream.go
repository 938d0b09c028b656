package trace

import (
	"io"
	"sync"
)

// StreamTracer writes each admitted event as soon as it arrives. Write
// errors are dropped so tracing never fails a compile.
type StreamTracer struct {
	leveled
	format Format

	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{leveled: leveled{level}, format: format, w: w}
}

// Emit stamps Seq under the write lock, so sequence numbers in the output
// are increasing.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	t.buf = AppendEvent(t.buf[:0], ev, t.format)
	_, _ = t.w.Write(t.buf)
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes a file output. Stderr stays open.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if _, ok := t.w.(stderr); ok {
		return nil
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
