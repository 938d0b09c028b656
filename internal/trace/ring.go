package trace

import (
	"io"
	"strconv"
	"sync"
)

// DefaultRingSize is the ring capacity used when none is configured.
const DefaultRingSize = 4096

// RingTracer keeps the most recent events in memory. The CLI dumps it when
// a command exits, which gives the tail of a long bundle without streaming
// every file.
type RingTracer struct {
	leveled

	mu     sync.Mutex
	events []Event
	total  uint64 // events ever stored; total % len(events) is the next slot
}

func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingTracer{leveled: leveled{level}, events: make([]Event, size)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.admits(ev) {
		return
	}
	t.mu.Lock()
	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.total%uint64(len(t.events))] = stored
	t.total++
	t.mu.Unlock()
}

// Dropped reports how many events were overwritten by newer ones.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped()
}

func (t *RingTracer) dropped() uint64 {
	if size := uint64(len(t.events)); t.total > size {
		return t.total - size
	}
	return 0
}

// Snapshot copies the held events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.events))
	out := make([]Event, 0, t.total-t.dropped())
	for i := t.dropped(); i < t.total; i++ {
		out = append(out, t.events[i%size])
	}
	return out
}

// Dump writes the held events to w in one write. Text dumps start with a
// note when older events were overwritten.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	if format == FormatAuto {
		format = FormatText
	}
	var buf []byte
	if n := t.Dropped(); n > 0 && format == FormatText {
		buf = append(buf, "... "...)
		buf = strconv.AppendUint(buf, n, 10)
		buf = append(buf, " earlier events dropped\n"...)
	}
	for _, ev := range t.Snapshot() {
		buf = AppendEvent(buf, &ev, format)
	}
	_, err := w.Write(buf)
	return err
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }
