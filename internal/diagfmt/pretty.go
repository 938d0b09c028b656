package diagfmt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"coffeeify/internal/diag"
)

type palette struct {
	path, caret, label, note *color.Color
}

func newPalette(on bool) palette {
	p := palette{
		path:  color.New(color.Bold),
		caret: color.New(color.FgRed, color.Bold),
		label: color.New(color.FgRed, color.Bold),
		note:  color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.path, p.caret, p.label, p.note} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes each failure. Parse errors are shown as the four-line
// annotation (location, source line, carets, message); other failures as a
// single line tagged with their kind.
func Pretty(w io.Writer, failures []diag.Failure, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	for i, f := range failures {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := prettyOne(w, f, opts, pal); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, f diag.Failure, opts PrettyOpts, pal palette) error {
	path := displayPath(f.Path, opts.PathMode, opts.BaseDir)

	var pe *diag.ParseError
	if errors.As(f.Err, &pe) {
		lines := []string{
			pal.path.Sprintf("%s:%d", path, pe.Line),
			pe.Source,
			strings.Repeat(" ", max(pe.Column-1, 0)) + pal.caret.Sprint(strings.Repeat("^", pe.Width)),
			pal.label.Sprint("ParseError:") + " " + pe.Message,
		}
		_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
		return err
	}

	_, err := fmt.Fprintf(w, "%s: %s %s\n", pal.path.Sprint(path), pal.note.Sprint(diag.KindOf(f.Err).String()+" error:"), f.Err)
	return err
}
