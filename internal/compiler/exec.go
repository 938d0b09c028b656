package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"coffeeify/internal/sourcemap"
)

// DefaultCommand is the executable Exec runs when none is configured.
const DefaultCommand = "coffee"

// Exec compiles by piping source through the coffee command line tool.
type Exec struct {
	Command string   // executable; DefaultCommand if empty
	Args    []string // extra arguments placed before the generated ones
}

// NewExec returns an Exec for command.
func NewExec(command string) *Exec {
	return &Exec{Command: command}
}

// Compile runs `coffee --compile --stdio` on src. ctx is checked before the
// process starts; once running, the compile is not interrupted.
func (e *Exec) Compile(ctx context.Context, src string, opts Options) (Output, error) {
	name := e.Command
	if name == "" {
		name = DefaultCommand
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	// #nosec G204 -- the command comes from trusted configuration
	cmd := exec.Command(name, e.args(opts)...)
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if synErr := parseStderr(stderr.String()); synErr != nil {
				return Output{}, synErr
			}
			return Output{}, fmt.Errorf("%s exited with %d: %s", name, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return Output{}, fmt.Errorf("run %s: %w", name, err)
	}

	out := Output{JS: stdout.String()}
	if opts.SourceMap {
		code, raw, err := sourcemap.ExtractInline(out.JS)
		if err != nil {
			return Output{}, fmt.Errorf("%s: %w", name, err)
		}
		out.JS = code
		out.SourceMap = raw
	}
	return out, nil
}

func (e *Exec) args(opts Options) []string {
	args := append([]string(nil), e.Args...)
	args = append(args, "--compile", "--stdio", "--no-header")
	if opts.Bare {
		args = append(args, "--bare")
	}
	if opts.Literate {
		args = append(args, "--literate")
	}
	if opts.SourceMap {
		args = append(args, "--inline-map")
	}
	return args
}

var (
	diagLineRe = regexp.MustCompile(`^\S*:(\d+):(\d+): error: (.*)$`)
	ansiRe     = regexp.MustCompile("\x1b\\[[0-9;]*m")
)

// parseStderr recognizes coffee's error report:
//
//	[stdin]:2:5: error: unexpected indentation
//	    a = 1
//	    ^^
//
// The caret run gives the width of the offending token. Multi-line errors are
// only underlined to the end of their first line, so the location is single
// line either way.
func parseStderr(stderr string) *SyntaxError {
	lines := strings.Split(ansiRe.ReplaceAllString(stderr, ""), "\n")
	for i, l := range lines {
		m := diagLineRe.FindStringSubmatch(strings.TrimRight(l, "\r"))
		if m == nil {
			continue
		}
		line, err1 := strconv.Atoi(m[1])
		col, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || line < 1 || col < 1 {
			return nil
		}
		width := 1
		if i+2 < len(lines) {
			if n := strings.Count(lines[i+2], "^"); n > 0 {
				width = n
			}
		}
		return &SyntaxError{
			Message: m[3],
			Location: &Location{
				FirstLine:   line - 1,
				FirstColumn: col - 1,
				LastLine:    line - 1,
				LastColumn:  col - 1 + width,
			},
		}
	}
	return nil
}
