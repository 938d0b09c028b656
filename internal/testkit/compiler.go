// Package testkit provides test doubles shared by package tests.
package testkit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"coffeeify/internal/compiler"
)

// Compiler is a stand-in for the CoffeeScript compiler. It does not
// translate anything: it checks that strings, block comments and brackets
// are closed, reports the first problem as a located *compiler.SyntaxError,
// and otherwise wraps the source in a JavaScript string literal.
type Compiler struct {
	// Err, when set, is returned from every call instead of compiling.
	Err error
	// Gate, when set, blocks each call until it is closed.
	Gate chan struct{}

	calls atomic.Int64
	mu    sync.Mutex
	last  compiler.Options
}

// Compile implements compiler.Compiler.
func (c *Compiler) Compile(ctx context.Context, src string, opts compiler.Options) (compiler.Output, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.last = opts
	c.mu.Unlock()

	if c.Gate != nil {
		select {
		case <-c.Gate:
		case <-ctx.Done():
			return compiler.Output{}, ctx.Err()
		}
	}
	if c.Err != nil {
		return compiler.Output{}, c.Err
	}

	code := src
	if opts.Literate {
		code = literateCode(src)
	}
	if err := Check(code); err != nil {
		return compiler.Output{}, err
	}

	out := compiler.Output{
		JS: fmt.Sprintf("var __coffee = %s;", strconv.Quote(code)),
	}
	if opts.SourceMap {
		out.SourceMap = []byte(fmt.Sprintf(
			`{"version":3,"file":%s,"sourceRoot":"","sources":[""],"names":[],"mappings":"AAAA;AACA"}`,
			strconv.Quote(opts.GeneratedFile)))
	}
	return out, nil
}

// Calls returns how many times Compile ran.
func (c *Compiler) Calls() int {
	return int(c.calls.Load())
}

// LastOptions returns the options of the most recent call.
func (c *Compiler) LastOptions() compiler.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// literateCode keeps only indented lines, blanking prose so line numbers
// still line up with the original.
func literateCode(src string) string {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "    "):
			lines[i] = l[4:]
		case strings.HasPrefix(l, "\t"):
			lines[i] = l[1:]
		default:
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

type opener struct {
	ch        byte
	line, col int
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// Check reports the first unterminated construct in src.
func Check(src string) error {
	var stack []opener
	line, col := 0, 0
	advance := func(b byte) {
		if b == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}

	for i := 0; i < len(src); {
		b := src[i]
		switch {
		case strings.HasPrefix(src[i:], "###"):
			startLine, startCol := line, col
			end := strings.Index(src[i+3:], "###")
			if end < 0 {
				return located("missing ###", startLine, startCol, startLine, startCol+3)
			}
			for _, c := range []byte(src[i : i+3+end+3]) {
				advance(c)
			}
			i += 3 + end + 3
			continue
		case b == '#':
			for i < len(src) && src[i] != '\n' {
				advance(src[i])
				i++
			}
			continue
		case b == '"' || b == '\'':
			startLine, startCol := line, col
			advance(b)
			i++
			closed := false
			for i < len(src) {
				c := src[i]
				if c == '\\' && i+1 < len(src) {
					advance(c)
					advance(src[i+1])
					i += 2
					continue
				}
				advance(c)
				i++
				if c == b {
					closed = true
					break
				}
			}
			if !closed {
				return located("missing "+string(b), startLine, startCol, startLine, startCol+1)
			}
			continue
		case b == '(' || b == '[' || b == '{':
			stack = append(stack, opener{ch: b, line: line, col: col})
		case closers[b] != 0:
			if len(stack) == 0 || stack[len(stack)-1].ch != closers[b] {
				return located("unmatched "+string(b), line, col, line, col+1)
			}
			stack = stack[:len(stack)-1]
		}
		advance(b)
		i++
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return located("missing "+string(matching(top.ch)), top.line, top.col, top.line, top.col+1)
	}
	return nil
}

func matching(open byte) byte {
	for c, o := range closers {
		if o == open {
			return c
		}
	}
	return open
}

func located(msg string, fl, fc, ll, lc int) error {
	return &compiler.SyntaxError{
		Message:  msg,
		Location: &compiler.Location{FirstLine: fl, FirstColumn: fc, LastLine: ll, LastColumn: lc},
	}
}
