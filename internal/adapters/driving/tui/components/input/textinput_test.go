package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestionInput(t *testing.T) {
	q := NewQuestionInput(nil)

	require.NotNil(t, q)
	assert.True(t, q.Focused())
	assert.Empty(t, q.Value())
	assert.Equal(t, CharLimit, q.textinput.CharLimit)
}

func TestQuestionInput_Typing(t *testing.T) {
	q := NewQuestionInput(nil)

	q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("газ")})

	assert.Equal(t, "газ", q.Value())
	assert.Contains(t, q.View(), "Питання:")
}

func TestQuestionInput_SetValueAndReset(t *testing.T) {
	q := NewQuestionInput(nil)

	q.SetValue("Як кріпити балон?")
	assert.Equal(t, "Як кріпити балон?", q.Value())

	q.Reset()
	assert.Empty(t, q.Value())
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	q := NewQuestionInput(nil)

	q.Blur()
	assert.False(t, q.Focused())

	q.Focus()
	assert.True(t, q.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	tests := []struct {
		name          string
		width         int
		expectedInner int
	}{
		{"wide terminal", 100, 86},
		{"narrow terminal keeps a minimum", 20, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuestionInput(nil)

			q.SetWidth(tt.width)

			assert.Equal(t, tt.width, q.Width())
			assert.Equal(t, tt.expectedInner, q.textinput.Width)
		})
	}
}
