package policy

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

const (
	standardBody = `(?:ДСТУ|НПАОП|ДБН|ГОСТ|СНиП|ISO|EN|IEC)` +
		`(?:\s+(?:ISO|EN|IEC|Б|Н))*` +
		`\s+(?:\p{Lu}\.)?[0-9IVX][0-9A-Za-zА-Яа-яІіЇїЄєҐґ.\-:/]*`
	clauseBody = `(?:п\.\s*|пункт\s+)?([0-9]+(?:\.[0-9]+)*)`
)

var (
	// standardAnywhere requires a non-letter before the code.
	standardAnywhere = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(` + standardBody + `)`)
	citationPart     = regexp.MustCompile(`^\s*(` + standardBody + `)(?:\s*,\s*` + clauseBody + `)?\s*$`)
	parenGroup       = regexp.MustCompile(`\s?\(([^()]*)\)`)
)

// CitationFormatter finds, renders and checks bracketed standard references.
type CitationFormatter struct{}

// Extract returns the citations found in bracket groups such as
// "(ДСТУ ISO 14175-2008, 5.3.2; НПАОП 0.00-1.01-07)", deduplicated in order.
func (CitationFormatter) Extract(text string) []domain.Citation {
	var out []domain.Citation
	seen := make(map[domain.Citation]bool)
	for _, m := range parenGroup.FindAllStringSubmatch(text, -1) {
		cits, ok := parseGroup(m[1])
		if !ok {
			continue
		}
		for _, c := range cits {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Standards returns every standard code mentioned in text, bracketed or not.
func (CitationFormatter) Standards(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range standardAnywhere.FindAllStringSubmatch(text, -1) {
		s := normaliseStandard(m[1])
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Format renders citations as one bracket group, e.g. "(A, 1.2; B)".
func (CitationFormatter) Format(cits []domain.Citation) string {
	if len(cits) == 0 {
		return ""
	}
	parts := make([]string, len(cits))
	for i, c := range cits {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, "; ") + ")"
}

// Enforce drops cited standards that occur in none of the chunks and
// returns the answer with the citations that remain. When nothing is
// cited but the chunks carry citations, the group of the best-ranked
// cited chunk is appended on a new line.
func (f CitationFormatter) Enforce(answer string, chunks []domain.RetrievedChunk) (string, []domain.Citation) {
	known := make(map[string]bool)
	for _, c := range chunks {
		for _, s := range f.Standards(c.Content) {
			known[s] = true
		}
	}

	answer = parenGroup.ReplaceAllStringFunc(answer, func(group string) string {
		m := parenGroup.FindStringSubmatch(group)
		cits, ok := parseGroup(m[1])
		if !ok {
			return group
		}
		kept := cits[:0]
		for _, c := range cits {
			if isKnown(known, c.Standard) {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			return ""
		}
		prefix := ""
		if strings.HasPrefix(group, " ") || strings.HasPrefix(group, "\t") {
			prefix = " "
		}
		return prefix + f.Format(kept)
	})

	cited := f.Extract(answer)
	if len(cited) > 0 || len(chunks) == 0 {
		return answer, cited
	}
	for _, c := range chunks {
		cits := f.chunkCitations(c.Content)
		if len(cits) == 0 {
			continue
		}
		answer = strings.TrimRight(answer, " \t\n") + "\n" + f.Format(cits)
		return answer, cits
	}
	return answer, nil
}

// chunkCitations prefers bracketed citations and falls back to bare codes.
func (f CitationFormatter) chunkCitations(text string) []domain.Citation {
	if cits := f.Extract(text); len(cits) > 0 {
		return cits
	}
	var out []domain.Citation
	for _, s := range f.Standards(text) {
		out = append(out, domain.Citation{Standard: s})
	}
	return out
}

// parseGroup parses "A, 1.2; B" into citations. It fails when any part is
// not a standard reference, so ordinary parentheses are left alone.
func parseGroup(inner string) ([]domain.Citation, bool) {
	parts := strings.Split(inner, ";")
	out := make([]domain.Citation, 0, len(parts))
	for _, p := range parts {
		m := citationPart.FindStringSubmatch(p)
		if m == nil {
			return nil, false
		}
		out = append(out, domain.Citation{Standard: normaliseStandard(m[1]), Clause: m[2]})
	}
	return out, len(out) > 0
}

// isKnown matches exactly or by word-aligned suffix, so "ISO 14175-2008"
// and "ДСТУ ISO 14175-2008" refer to the same standard.
func isKnown(known map[string]bool, standard string) bool {
	if known[standard] {
		return true
	}
	for k := range known {
		if strings.HasSuffix(k, " "+standard) || strings.HasSuffix(standard, " "+k) {
			return true
		}
	}
	return false
}

func normaliseStandard(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".-:/")
}
