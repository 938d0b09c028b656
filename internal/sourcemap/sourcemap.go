// Package sourcemap converts raw v3 source maps into the inline comment form
// that bundlers pick up from compiled output.
package sourcemap

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// CommentPrefix starts the inline source map comments this package writes.
const CommentPrefix = "//# sourceMappingURL=data:application/json;charset=utf-8;base64,"

// mapURLPrefix is what every inline JSON map comment starts with. Media type
// parameters such as charset may follow before ";base64,"; CoffeeScript 2
// writes none.
const mapURLPrefix = "//# sourceMappingURL=data:application/json"

const sourceURLPrefix = "//# sourceURL="

// ErrNoInlineMap is returned when compiled output carries no inline map.
var ErrNoInlineMap = errors.New("no inline source map")

// Map is a revision 3 source map.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// FromJSON decodes a raw map.
func FromJSON(raw []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode source map: %w", err)
	}
	if m.Version != 3 {
		return nil, fmt.Errorf("decode source map: unsupported version %d", m.Version)
	}
	if m.Names == nil {
		m.Names = []string{}
	}
	return &m, nil
}

// SetSources replaces the sources list.
func (m *Map) SetSources(sources ...string) {
	m.Sources = append([]string(nil), sources...)
}

// JSON encodes the map.
func (m *Map) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToComment renders the map as an inline base64 comment.
func (m *Map) ToComment() (string, error) {
	data, err := m.JSON()
	if err != nil {
		return "", fmt.Errorf("encode source map: %w", err)
	}
	return CommentPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// FromComment decodes a single inline map comment line.
func FromComment(line string) (*Map, error) {
	payload, ok := inlinePayload(line)
	if !ok {
		return nil, ErrNoInlineMap
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode inline source map: %w", err)
	}
	return FromJSON(raw)
}

// Embed appends m to code as a trailing comment line. The result ends with a
// newline.
func Embed(code string, m *Map) (string, error) {
	comment, err := m.ToComment()
	if err != nil {
		return "", err
	}
	return code + "\n" + comment + "\n", nil
}

// ExtractInline splits compiled output into code and the raw JSON of its
// inline map. Any sourceURL comment is dropped along with the map.
func ExtractInline(code string) (string, []byte, error) {
	lines := strings.Split(code, "\n")
	mapLine := -1
	var payload string
	for i := len(lines) - 1; i >= 0; i-- {
		if p, ok := inlinePayload(lines[i]); ok {
			mapLine, payload = i, p
			break
		}
	}
	if mapLine < 0 {
		return code, nil, ErrNoInlineMap
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return code, nil, fmt.Errorf("decode inline source map: %w", err)
	}

	kept := make([]string, 0, len(lines))
	for i, l := range lines {
		if i == mapLine || strings.HasPrefix(strings.TrimSpace(l), sourceURLPrefix) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimRight(strings.Join(kept, "\n"), "\n"), raw, nil
}

// inlinePayload returns the base64 data of an inline JSON map comment:
// mapURLPrefix, any ";param" segments, then ";base64,".
func inlinePayload(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), mapURLPrefix)
	if !ok || !strings.HasPrefix(rest, ";") {
		return "", false
	}
	params, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || strings.Contains(params, ",") {
		return "", false
	}
	return payload, true
}

// Find returns the inline map carried by compiled output, if any.
func Find(code string) (*Map, error) {
	_, raw, err := ExtractInline(code)
	if err != nil {
		return nil, err
	}
	return FromJSON(raw)
}
