package policy

import (
	"html"
	"regexp"
	"strings"
)

var (
	mdBoldStars  = regexp.MustCompile(`\*\*(.+?)\*\*`)
	mdBoldUnders = regexp.MustCompile(`__(.+?)__`)
	mdHeading    = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.*?)\s*#*\s*$`)
	mdListMarker = regexp.MustCompile(`^(\s*)[*_]\s+`)
	anyTag       = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	entity       = regexp.MustCompile(`^&(?:[A-Za-z]+|#[0-9]+|#[xX][0-9A-Fa-f]+);`)
)

// Markup reduces model output to the single markup the chat transport
// accepts: <b> for bold, everything else plain text.
type Markup struct{}

// Sanitize converts Markdown bold to <b>, turns Markdown headings into
// bold lines, drops list markers and every other tag, escapes stray
// < > & and balances <b> on each line.
func (Markup) Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if m := mdHeading.FindStringSubmatch(line); m != nil {
			line = "**" + m[1] + "**"
			if m[1] == "" {
				line = ""
			}
		}
		line = mdListMarker.ReplaceAllString(line, "$1")
		line = mdBoldStars.ReplaceAllString(line, "<b>$1</b>")
		line = mdBoldUnders.ReplaceAllString(line, "<b>$1</b>")
		line = strings.ReplaceAll(line, "*", "")
		lines[i] = strings.TrimRight(balanceLine(line), " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// balanceLine keeps only well-nested <b> pairs and escapes the text between tags.
func balanceLine(line string) string {
	var b strings.Builder
	open := false
	last := 0
	for _, loc := range anyTag.FindAllStringIndex(line, -1) {
		b.WriteString(escapeText(line[last:loc[0]]))
		last = loc[1]

		switch tagName(line[loc[0]:loc[1]]) {
		case "b", "strong":
			if !open {
				b.WriteString("<b>")
				open = true
			}
		case "/b", "/strong":
			if open {
				b.WriteString("</b>")
				open = false
			}
		}
	}
	b.WriteString(escapeText(line[last:]))
	if open {
		b.WriteString("</b>")
	}
	return strings.ReplaceAll(b.String(), "<b></b>", "")
}

// tagName returns the lowercased element name, prefixed with "/" for end tags.
func tagName(tag string) string {
	tag = strings.TrimSuffix(strings.TrimPrefix(tag, "<"), ">")
	tag = strings.TrimSuffix(tag, "/")
	closing := strings.HasPrefix(tag, "/")
	tag = strings.TrimPrefix(tag, "/")
	if i := strings.IndexAny(tag, " \t\n"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ToLower(tag)
	if closing {
		return "/" + tag
	}
	return tag
}

// escapeText escapes < and > and any & that does not start an entity.
func escapeText(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			if entity.MatchString(s[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// StripTags removes tags and decodes entities, leaving the visible text.
func StripTags(s string) string {
	return html.UnescapeString(anyTag.ReplaceAllString(s, ""))
}
