package policy

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

// Fixed block headings.
const (
	SummaryHeading     = "Швидкий підсумок"
	firstHeading       = "Головне"
	nextHeading        = "Що ще важливо"
	detailsHeading     = "Деталі"
	continuationSuffix = " (продовження)"
	maxBodyLines       = 3
	minLineLimit       = 80
)

var (
	blankLines  = regexp.MustCompile(`\n[ \t]*\n`)
	headingLine = regexp.MustCompile(`^<b>([^<]+?)</b>\s*:?$`)
	sentenceEnd = regexp.MustCompile(`[.!?…]+["»)]*\s+`)
)

// Layout splits long or multi-idea answers into headed blocks.
type Layout struct {
	// Threshold is the visible length above which an answer is split.
	Threshold int
}

// Apply returns the laid-out text and its blocks. Short single-paragraph
// answers are returned unchanged with no blocks.
//
// Every block is a <b>heading</b> line followed by 1-3 body lines, and
// the last block is headed SummaryHeading. Blocks are separated by one
// blank line.
func (l Layout) Apply(text string) (string, []domain.Block) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	blocks := parseBlocks(text)
	if visibleLen(text) <= l.Threshold && len(blocks) <= 1 {
		return text, nil
	}

	lineLimit := l.Threshold / 2
	if lineLimit < minLineLimit {
		lineLimit = minLineLimit
	}

	for i := range blocks {
		if blocks[i].Heading == "" {
			blocks[i].Heading = nextHeading
			if i == 0 {
				blocks[i].Heading = firstHeading
			}
		}
		blocks[i].Lines = splitLongLines(blocks[i].Lines, lineLimit)
	}

	blocks = withSummaryLast(blocks)
	blocks = expand(blocks)
	return Render(blocks), blocks
}

// Render joins blocks into the delivered text.
func Render(blocks []domain.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		var sb strings.Builder
		sb.WriteString("<b>")
		sb.WriteString(b.Heading)
		sb.WriteString("</b>")
		for _, line := range b.Lines {
			sb.WriteByte('\n')
			sb.WriteString(line)
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n")
}

// parseBlocks reads paragraphs. A paragraph whose first line is wholly
// bold is headed by it; a heading alone on its paragraph heads the next
// untitled paragraph or, failing that, is kept as body text.
func parseBlocks(text string) []domain.Block {
	var blocks []domain.Block
	pending := ""
	for _, para := range blankLines.Split(text, -1) {
		var lines []string
		for _, line := range strings.Split(para, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}

		b := domain.Block{Lines: lines}
		if m := headingLine.FindStringSubmatch(lines[0]); m != nil {
			b.Heading = strings.TrimSpace(m[1])
			b.Lines = lines[1:]
		}

		if b.Heading == "" && pending != "" {
			b.Heading = pending
		} else if pending != "" {
			blocks = append(blocks, orphan(pending))
		}
		pending = ""

		if len(b.Lines) == 0 {
			pending = b.Heading
			continue
		}
		blocks = append(blocks, b)
	}
	if pending != "" {
		blocks = append(blocks, orphan(pending))
	}
	return blocks
}

// orphan handles a bold line with no body after it. A summary heading
// stays empty to be filled later; any other becomes untitled body text.
func orphan(heading string) domain.Block {
	if isSummary(heading) {
		return domain.Block{Heading: heading}
	}
	return domain.Block{Lines: []string{"<b>" + heading + "</b>"}}
}

func isSummary(heading string) bool {
	h := strings.TrimRightFunc(strings.TrimSpace(heading), unicode.IsPunct)
	return strings.EqualFold(h, SummaryHeading)
}

// withSummaryLast moves the summary block to the end, creating it from
// the first body line when the answer has none.
func withSummaryLast(blocks []domain.Block) []domain.Block {
	first := ""
	for _, b := range blocks {
		if !isSummary(b.Heading) && len(b.Lines) > 0 {
			first = b.Lines[0]
			break
		}
	}

	summary := domain.Block{Heading: SummaryHeading}
	rest := make([]domain.Block, 0, len(blocks)+1)
	for _, b := range blocks {
		if isSummary(b.Heading) {
			summary.Lines = append(summary.Lines, b.Lines...)
			continue
		}
		rest = append(rest, b)
	}
	if len(summary.Lines) == 0 {
		if first == "" {
			return rest
		}
		summary.Lines = []string{first}
	}
	return append(rest, summary)
}

// expand splits bodies longer than maxBodyLines. Overflow of an ordinary
// block continues under the same heading; overflow of the summary moves
// in front of it so the summary stays last.
func expand(blocks []domain.Block) []domain.Block {
	var out []domain.Block
	for i, b := range blocks {
		if len(b.Lines) <= maxBodyLines {
			out = append(out, b)
			continue
		}

		if i == len(blocks)-1 && isSummary(b.Heading) {
			extra := b.Lines[:len(b.Lines)-maxBodyLines]
			for j := 0; j < len(extra); j += maxBodyLines {
				heading := detailsHeading
				if j > 0 {
					heading += continuationSuffix
				}
				out = append(out, domain.Block{Heading: heading, Lines: extra[j:min(j+maxBodyLines, len(extra))]})
			}
			out = append(out, domain.Block{Heading: b.Heading, Lines: b.Lines[len(extra):]})
			continue
		}

		for j := 0; j < len(b.Lines); j += maxBodyLines {
			heading := b.Heading
			if j > 0 {
				heading += continuationSuffix
			}
			out = append(out, domain.Block{Heading: heading, Lines: b.Lines[j:min(j+maxBodyLines, len(b.Lines))]})
		}
	}
	return out
}

// splitLongLines breaks lines over limit at sentence ends and regroups
// the sentences greedily into lines of at most limit visible characters.
func splitLongLines(lines []string, limit int) []string {
	var out []string
	for _, line := range lines {
		if visibleLen(line) <= limit {
			out = append(out, line)
			continue
		}
		cur := ""
		for _, s := range sentences(line) {
			switch {
			case cur == "":
				cur = s
			case visibleLen(cur)+1+visibleLen(s) <= limit:
				cur += " " + s
			default:
				out = append(out, balanceLine(cur))
				cur = s
			}
		}
		if cur != "" {
			out = append(out, balanceLine(cur))
		}
	}
	return out
}

// sentences splits after terminal punctuation followed by an uppercase
// letter or a tag, so "п. 5.3" and "0.5 мм" stay whole.
func sentences(line string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(line, -1) {
		next, _ := utf8.DecodeRuneInString(line[loc[1]:])
		if !unicode.IsUpper(next) && next != '<' {
			continue
		}
		out = append(out, strings.TrimSpace(line[start:loc[1]]))
		start = loc[1]
	}
	if rest := strings.TrimSpace(line[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
