package trace

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto   Format = iota // chosen from the output path
	FormatText                 // one readable line per event
	FormatNDJSON               // one JSON object per line
)

// ParseFormat accepts auto, text, ndjson or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected auto|text|ndjson)", s)
}

// AppendEvent appends the encoded event, newline included, to dst.
func AppendEvent(dst []byte, ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return appendNDJSON(dst, ev)
	}
	return appendText(dst, ev)
}

var markers = [...]byte{
	KindSpanBegin: '>',
	KindSpanEnd:   '<',
	KindPoint:     '.',
	KindHeartbeat: '~',
}

// appendText renders
//
//	15:04:05.000 file     > compile:a.coffee (detail) cache=miss digest=ab12
//
// Child events are indented by two spaces.
func appendText(dst []byte, ev *Event) []byte {
	dst = ev.Time.AppendFormat(dst, "15:04:05.000")
	dst = append(dst, ' ')
	scope := ev.Scope.String()
	dst = append(dst, scope...)
	for i := len(scope); i < len("unknown"); i++ {
		dst = append(dst, ' ')
	}
	dst = append(dst, ' ')
	if ev.ParentID != 0 {
		dst = append(dst, "  "...)
	}
	marker := byte('?')
	if int(ev.Kind) < len(markers) && markers[ev.Kind] != 0 {
		marker = markers[ev.Kind]
	}
	dst = append(dst, marker, ' ')
	dst = append(dst, ev.Name...)
	if ev.Detail != "" {
		dst = append(dst, " ("...)
		dst = append(dst, ev.Detail...)
		dst = append(dst, ')')
	}
	if ev.Kind == KindHeartbeat {
		dst = append(dst, " open="...)
		dst = strconv.AppendInt(dst, ev.Open, 10)
	}
	for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
		dst = append(dst, ' ')
		dst = append(dst, k...)
		dst = append(dst, '=')
		dst = append(dst, ev.Extra[k]...)
	}
	return append(dst, '\n')
}

type record struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Open     int64             `json:"open"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func appendNDJSON(dst []byte, ev *Event) []byte {
	data, err := json.Marshal(record{
		Time:     ev.Time.UTC().Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Open:     ev.Open,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		data = fmt.Appendf(nil, `{"seq":%d,"error":%q}`, ev.Seq, err.Error())
	}
	dst = append(dst, data...)
	return append(dst, '\n')
}
