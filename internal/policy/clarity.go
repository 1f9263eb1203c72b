package policy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ClarificationText asks the user to narrow down a vague question.
const ClarificationText = "Уточни, будь ласка, про яку роботу чи ситуацію йдеться?"

// FallbackText is returned when the corpus holds nothing relevant.
const FallbackText = "У нормах цього не знайшов. Перепитай інженера з охорони праці " +
	"або перевір інструкцію твого підприємства."

// Fallback returns the not-found answer, led by the directive in an emergency.
func Fallback(emergency bool) string {
	if emergency {
		return Escalation{}.Apply(FallbackText)
	}
	return FallbackText
}

// Clarity decides whether a question is specific enough to retrieve for.
type Clarity struct {
	// MinContentWords is how many content words a clear question needs.
	MinContentWords int

	// MinLetters is how many letters make a word a content word.
	MinLetters int
}

// DefaultClarity needs two words of at least three letters.
func DefaultClarity() Clarity {
	return Clarity{MinContentWords: 2, MinLetters: 3}
}

// IsClear reports whether the question has enough content words.
func (c Clarity) IsClear(question string) bool {
	words := strings.FieldsFunc(question, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’' && r != '-'
	})

	content := 0
	for _, w := range words {
		letters := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= c.MinLetters {
			content++
		}
	}
	return content >= c.MinContentWords
}

// visibleLen counts runes after tags are stripped and entities decoded.
func visibleLen(s string) int {
	return utf8.RuneCountInString(StripTags(s))
}
