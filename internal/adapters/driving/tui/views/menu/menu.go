// Package menu provides the start screen of the TUI: the Dropbox
// connection state and the list of views.
package menu

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/coach/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coach/internal/core/domain"
)

// Item is one menu entry. Items with Quit set end the program.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View is the start screen.
type View struct {
	styles     *styles.Styles
	items      []Item
	selected   int
	connection *domain.ConnectionStatus
	width      int
	height     int
	ready      bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Ask", Hint: "Ask a question about your manuals", View: messages.ViewChat},
			{Label: "Documents", Hint: "See which files can be used as sources", View: messages.ViewDocuments},
			{Label: "Settings", Hint: "Tune the budget, scoring and Gemini access", View: messages.ViewSettings},
			{Label: "Help", Hint: "Keyboard shortcuts", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.ConnectionLoaded:
		status := msg.Status
		v.connection = &status

	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}

	return v, nil
}

func (v *View) handleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		v.selected = max(v.selected-1, 0)
	case "down", "j":
		v.selected = min(v.selected+1, len(v.items)-1)
	case "enter":
		return v.choose(v.selected)
	case "q":
		return tea.Quit
	default:
		// Digits jump straight to an entry.
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(v.items) {
			v.selected = n - 1
			return v.choose(v.selected)
		}
	}
	return nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Canvas Coach"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Answers from your own Canvas manuals"))
	b.WriteString("\n")
	b.WriteString(v.connectionLine())
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := strconv.Itoa(i+1) + " " + item.Label
		if i == v.selected {
			b.WriteString("> " + v.styles.Title.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		b.WriteString("\n")
	}

	if hint := v.items[v.selected].Hint; hint != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(hint))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-5] Jump  [Enter] Select  [q] Quit"))

	return b.String()
}

func (v *View) connectionLine() string {
	if v.connection == nil {
		return ""
	}
	state := v.connection.State
	line := "Dropbox: " + state.Phase.Description()
	if state.Account != "" {
		line += " (" + state.Account + ")"
	}
	switch state.Phase {
	case domain.PhaseConnected:
		return v.styles.Success.Render(line)
	case domain.PhaseFailed:
		if state.Reason != "" {
			line += ": " + state.Reason
		}
		return v.styles.Error.Render(line)
	case domain.PhaseIdle:
		return v.styles.Warning.Render(line) + "\n" +
			v.styles.Muted.Render("Run 'coach connect' to link Dropbox, or ask from the local library.")
	}
	return v.styles.Warning.Render(line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
