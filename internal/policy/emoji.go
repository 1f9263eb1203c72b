package policy

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

const zwj = 0x200D

var doubleSpace = regexp.MustCompile(` {2,}`)

// Emoji caps decorative symbols per block.
type Emoji struct {
	// Max is the number of emoji kept in each block.
	Max int
}

// Limit drops every emoji after the first Max in each blank-line
// separated block. Joined sequences and modifiers count as one emoji.
func (e Emoji) Limit(text string) string {
	blocks := strings.Split(text, "\n\n")
	for i, b := range blocks {
		blocks[i] = e.limitBlock(b)
	}
	return strings.Join(blocks, "\n\n")
}

// LimitBlocks applies the same cap to structured blocks, heading included.
func (e Emoji) LimitBlocks(blocks []domain.Block) []domain.Block {
	out := make([]domain.Block, 0, len(blocks))
	for _, b := range blocks {
		parts := strings.Split(e.limitBlock(b.Heading+"\n"+strings.Join(b.Lines, "\n")), "\n")
		lb := domain.Block{Heading: parts[0]}
		for _, line := range parts[1:] {
			if line != "" {
				lb.Lines = append(lb.Lines, line)
			}
		}
		out = append(out, lb)
	}
	return out
}

func (e Emoji) limitBlock(block string) string {
	var b strings.Builder
	count := 0
	dropping, joinNext, lastRI, dropped := false, false, false, false

	for _, r := range block {
		switch {
		case isEmojiComponent(r):
			if !dropping {
				b.WriteRune(r)
			}
			joinNext = r == zwj
		case isEmoji(r):
			ri := isRegionalIndicator(r)
			if joinNext || (ri && lastRI) {
				// part of the previous emoji
				if !dropping {
					b.WriteRune(r)
				}
				joinNext, lastRI = false, false
				continue
			}
			count++
			dropping = count > e.Max
			if dropping {
				dropped = true
			} else {
				b.WriteRune(r)
			}
			lastRI = ri
		default:
			dropping, joinNext, lastRI = false, false, false
			b.WriteRune(r)
		}
	}

	if !dropped {
		return b.String()
	}
	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(doubleSpace.ReplaceAllString(line, " "))
	}
	return strings.Join(lines, "\n")
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return !(r >= 0x1F3FB && r <= 0x1F3FF)
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0x231A || r == 0x231B || (r >= 0x23E9 && r <= 0x23F3) || (r >= 0x23F8 && r <= 0x23FA):
		return true
	case r == 0x2B50 || r == 0x2B55 || r == 0x2B1B || r == 0x2B1C || (r >= 0x2B05 && r <= 0x2B07):
		return true
	}
	return false
}

func isEmojiComponent(r rune) bool {
	return r == 0xFE0F || r == 0xFE0E || r == zwj || r == 0x20E3 ||
		(r >= 0x1F3FB && r <= 0x1F3FF) || (r >= 0xE0020 && r <= 0xE007F)
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}
