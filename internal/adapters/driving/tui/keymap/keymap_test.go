package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Contains(t, km.Quit.Keys(), "esc")
	assert.Equal(t, []string{"enter"}, km.Send.Keys())
}

func TestDefaultKeyMap_NoPrintableKeys(t *testing.T) {
	km := DefaultKeyMap()

	for _, group := range km.FullHelp() {
		for _, b := range group {
			for _, k := range b.Keys() {
				assert.Greater(t, len([]rune(k)), 1, "binding %q would swallow typed text", k)
			}
		}
	}
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 4)
	assert.Equal(t, "ask", help[0].Help().Desc)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		binding  key.Binding
		expected bool
	}{
		{"enter sends", "enter", DefaultKeyMap().Send, true},
		{"ctrl+u scrolls", "ctrl+u", DefaultKeyMap().ScrollUp, true},
		{"q does not quit", "q", DefaultKeyMap().Quit, false},
		{"empty binding", "x", key.NewBinding(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Matches(tt.key, tt.binding))
		})
	}
}
