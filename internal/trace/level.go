package trace

import (
	"fmt"
	"strings"
)

// Level controls how much is recorded.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // heartbeats and ring dumps only
	LevelPhase        // driver and pass spans
	LevelDetail       // plus one span per compiled file
	LevelDebug        // plus chunk events
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string { return nameAt(levelNames[:], int(l)) }

// ParseLevel accepts a level name in any case. Empty means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected %s)", s, strings.Join(levelNames[:], "|"))
}

// finest maps a level to the finest scope it records.
var finest = [...]Scope{
	LevelPhase:  ScopePass,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeChunk,
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(finest) {
		return false
	}
	return scope != 0 && scope <= finest[l]
}
