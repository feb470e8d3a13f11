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
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"submit", km.Submit, []string{"enter"}},
		{"up", km.Up, []string{"up"}},
		{"down", km.Down, []string{"down"}},
		{"copy", km.Copy, []string{"ctrl+y"}},
		{"open", km.Open, []string{"ctrl+o"}},
		{"export", km.Export, []string{"ctrl+e"}},
		{"mode", km.ToggleMode, []string{"ctrl+t"}},
		{"source", km.ToggleSource, []string{"tab"}},
		{"reload", km.Reload, []string{"r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_ChatKeysDoNotCollideWithTyping(t *testing.T) {
	km := DefaultKeyMap()

	// Letters typed into the question must never trigger chat actions.
	for _, b := range []key.Binding{km.Copy, km.Open, km.Export, km.ToggleMode, km.ToggleSource, km.Up, km.Down} {
		for _, k := range b.Keys() {
			assert.Greater(t, len(k), 1, "binding %q is a single character", k)
		}
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 2)
	assert.Equal(t, km.Quit.Keys(), help[0].Keys())
	assert.Equal(t, km.Help.Keys(), help[1].Keys())
}

func TestKeyMap_ChatHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ChatHelp()

	require.Len(t, help, 4)
	assert.Equal(t, "ask", help[0].Help().Desc)
}

func TestKeyMap_AnswerHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.AnswerHelp()

	require.Len(t, help, 4)
	assert.Equal(t, "copy", help[0].Help().Desc)
	assert.Equal(t, "export", help[2].Help().Desc)
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.FullHelp()

	require.Len(t, help, 4)
	for _, group := range help {
		assert.NotEmpty(t, group)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("ctrl+y", km.Copy))
	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("", km.Back))
}
