package normalisers

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	spaceBeforePunc = regexp.MustCompile(`\s([.,!?;:])`)
)

// Clean collapses every whitespace run to one space, removes the space
// before . , ! ? ; : and trims the result.
func Clean(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = spaceBeforePunc.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// Title derives a readable title from a file name: the extension and a
// trailing "_clean" are dropped and separators become spaces.
func Title(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, "_clean")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}
