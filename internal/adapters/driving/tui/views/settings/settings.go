// Package settings provides the settings editor view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coach/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// Key constants for key handling.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
)

// View lists every setting and edits one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	keys     []string
	err      error
	notice   string

	selected     int
	scrollOffset int
	editing      bool
	editor       textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	editor := textinput.New()
	editor.CharLimit = 512

	v := &View{
		styles:          s,
		settingsService: settingsService,
		editor:          editor,
		width:           80,
		height:          24,
	}
	if settingsService != nil {
		v.keys = settingsService.Keys()
	}
	return v
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		s, err := svc.Get()
		return messages.SettingsLoaded{Settings: s, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.notice = "Error: " + msg.Err.Error()
			return v, nil
		}
		v.notice = "Saved " + msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	if v.editing {
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keyEnter:
		if v.settings == nil || len(v.keys) == 0 {
			return v, nil
		}
		return v, v.startEditing()
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) startEditing() tea.Cmd {
	key := v.keys[v.selected]
	v.editing = true
	v.notice = ""
	v.editor.Reset()
	v.editor.EchoMode = textinput.EchoNormal
	v.editor.Placeholder = ""
	if isSecret(key) {
		// Secrets are never prefilled; an empty value keeps the old one.
		v.editor.EchoMode = textinput.EchoPassword
		v.editor.Placeholder = "enter a new value"
	} else if current, ok := v.settings.Lookup(key); ok {
		v.editor.SetValue(current)
		v.editor.CursorEnd()
	}
	return v.editor.Focus()
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.editing = false
		v.editor.Blur()
		return v, nil
	case keyEnter:
		key := v.keys[v.selected]
		value := v.editor.Value()
		v.editing = false
		v.editor.Blur()
		if isSecret(key) && value == "" {
			return v, nil
		}
		svc := v.settingsService
		return v, func() tea.Msg {
			return messages.SettingsSaved{Key: key, Err: svc.Set(key, value)}
		}
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	available := v.height - 10
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the settings list.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.settings == nil:
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
	default:
		b.WriteString(v.renderList())
	}

	if v.editing {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Subtitle.Render(v.keys[v.selected] + ": "))
		b.WriteString(v.styles.InputField.Render(v.editor.View()))
	}

	if v.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Normal.Render(v.notice))
	}

	b.WriteString("\n\n")
	if v.editing {
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] edit  [esc] back"))
	}
	return b.String()
}

func (v *View) renderList() string {
	keyWidth := 0
	for _, k := range v.keys {
		keyWidth = max(keyWidth, len(k))
	}

	lines := make([]string, 0, len(v.keys))
	end := min(v.scrollOffset+v.visibleItemCount(), len(v.keys))
	for i := v.scrollOffset; i < end; i++ {
		key := v.keys[i]
		value, _ := v.settings.Lookup(key)
		value = display(key, value)

		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}
		line := fmt.Sprintf("%s%-*s  %s", indicator, keyWidth, key, value)
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render(line))
		} else {
			lines = append(lines, v.styles.Normal.Render(line))
		}
	}
	if len(v.keys) > v.visibleItemCount() {
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.keys))))
	}
	return strings.Join(lines, "\n")
}

func isSecret(key string) bool {
	return key == "llm.api_key" || key == "dropbox.app_secret"
}

// display masks secrets and marks empty values.
func display(key, value string) string {
	switch {
	case value == "":
		return "(not set)"
	case isSecret(key):
		return "********"
	default:
		return value
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Selected returns the index of the selected key.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// Reset leaves edit mode and clears notices.
func (v *View) Reset() {
	v.editing = false
	v.editor.Blur()
	v.notice = ""
}
