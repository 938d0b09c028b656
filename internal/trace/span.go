package trace

import (
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
	openSpans   atomic.Int64
)

// NextSeq returns the next process-wide sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span ID. IDs start at 1.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// OpenSpans reports spans begun and not yet ended in this process.
func OpenSpans() int64 { return openSpans.Load() }

// Span is one timed operation. A span from a disabled tracer is inert:
// every method is a no-op and ID is 0.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	ended   atomic.Bool

	mu    sync.Mutex
	extra map[string]string
}

// Begin emits a begin event and returns the span. parent is 0 for a root.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	openSpans.Add(1)
	t.Emit(s.event(KindSpanBegin, s.started, "", nil))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string, extra map[string]string) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Open:     openSpans.Load(),
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	}
}

// End emits the end event with the extras collected so far and returns the
// elapsed time. Only the first call emits.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || !s.ended.CompareAndSwap(false, true) {
		return 0
	}
	openSpans.Add(-1)
	now := time.Now()
	s.mu.Lock()
	extra := s.extra
	s.extra = nil
	s.mu.Unlock()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail, extra))
	return now.Sub(s.started)
}

// WithExtra records a key/value pair for the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	s.mu.Lock()
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	s.mu.Unlock()
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Open:     openSpans.Load(),
		Name:     name,
		Detail:   detail,
	})
}
