package trace

import "time"

// Kind separates span boundaries from instant events.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string { return nameAt(kindNames[:], int(k)) }

// Scope orders events from coarse to fine. A level records every scope up
// to its finest one.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one CLI command
	ScopePass                    // one bundle pass
	ScopeFile                    // one file: cache lookup, compile, store
	ScopeChunk                   // one chunk through a passthrough stream
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeFile:   "file",
	ScopeChunk:  "chunk",
}

func (s Scope) String() string { return nameAt(scopeNames[:], int(s)) }

func nameAt(names []string, i int) string {
	if i < 0 || i >= len(names) || names[i] == "" {
		return "unknown"
	}
	return names[i]
}

// Event is one trace record. Seq is stamped by the tracer that stores it,
// so it reflects that tracer's write order.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for a root span
	Open     int64  // spans begun and not yet ended when the event was built
	Name     string // "bundle", "transform", "compile:src/a.coffee"
	Detail   string
	Extra    map[string]string
}
