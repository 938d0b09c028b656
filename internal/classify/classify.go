// Package classify decides from a file path whether a file is CoffeeScript
// and whether it uses the literate (Markdown-hosted) dialect.
package classify

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

var (
	candidateRe = regexp.MustCompile(`\.((lit)?coffee|coffee\.md)$`)
	literateRe  = regexp.MustCompile(`\.(litcoffee|coffee\.md)$`)
)

// Extensions lists the recognized suffixes, literate ones included.
var Extensions = []string{".coffee", ".litcoffee", ".coffee.md"}

// IsCandidate reports whether path should be compiled.
func IsCandidate(path string) bool {
	return candidateRe.MatchString(norm.NFC.String(path))
}

// IsLiterate reports whether path is literate CoffeeScript. It only sets a
// compile option; candidacy is decided by IsCandidate.
func IsLiterate(path string) bool {
	return literateRe.MatchString(norm.NFC.String(path))
}

// OutputName maps a candidate path to the name of its compiled JavaScript
// file. Non-candidates are returned unchanged.
func OutputName(path string) string {
	p := norm.NFC.String(path)
	loc := candidateRe.FindStringIndex(p)
	if loc == nil {
		return path
	}
	return p[:loc[0]] + ".js"
}
