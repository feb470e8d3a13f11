// Package documents provides the candidate documents view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/coach/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// View lists the documents a question would be answered from.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	actionService   driving.AnswerActionService
	ctx             context.Context

	source       domain.SourceKind
	documents    []domain.DocumentHandle
	selected     int
	scrollOffset int
	loading      bool
	err          error
	notice       string

	width  int
	height int
	ready  bool
}

// NewView creates a new documents view.
func NewView(
	s *styles.Styles,
	documentService driving.DocumentService,
	actionService driving.AnswerActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		actionService:   actionService,
		ctx:             context.Background(),
		source:          domain.SourceDropbox,
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the documents of the current source.
func (v *View) Init() tea.Cmd {
	return v.load()
}

// load returns a command that lists the current source.
func (v *View) load() tea.Cmd {
	v.loading = true
	v.err = nil
	v.notice = ""
	svc, ctx, source := v.documentService, v.ctx, v.source
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Source: source, Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx, source)
		return messages.DocumentsLoaded{Source: source, Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DocumentsLoaded:
		// A reply for a source the user already switched away from is stale.
		if msg.Source != v.source {
			return v, nil
		}
		v.loading = false
		v.selected, v.scrollOffset = 0, 0
		if msg.Err != nil {
			v.err = msg.Err
			v.documents = nil
		} else {
			v.documents = msg.Documents
		}
		return v, nil

	case messages.ActionCompleted:
		if msg.Err != nil {
			v.notice = "Error: " + msg.Err.Error()
		} else {
			v.notice = msg.Message
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "tab":
		if v.source == domain.SourceDropbox {
			v.source = domain.SourceLibrary
		} else {
			v.source = domain.SourceDropbox
		}
		v.documents = nil
		return v, v.load()
	case "r":
		return v, v.load()
	case "enter":
		return v, v.openSelected()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// openSelected opens the selected document's web page, if it has one.
func (v *View) openSelected() tea.Cmd {
	doc := v.SelectedDocument()
	if doc == nil {
		return nil
	}
	ref := domain.SourceRef{Name: doc.DisplayName, Locator: doc.LocatorPath}
	if v.actionService == nil || v.actionService.SourceURL(ref) == "" {
		v.notice = doc.DisplayName + " has no web page"
		return nil
	}
	actions, ctx := v.actionService, v.ctx
	return func() tea.Msg {
		if err := actions.OpenSource(ctx, ref); err != nil {
			return messages.ActionCompleted{Err: err}
		}
		return messages.ActionCompleted{Message: "Opening " + ref.Name}
	}
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, header, notice and help
	available := v.height - 9
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the documents view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	title := fmt.Sprintf("Documents - %s (%d)", v.source, len(v.documents))
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render(v.emptyText()))
	default:
		b.WriteString(v.renderList())
	}

	if v.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Normal.Render(v.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] open  [tab] source  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) emptyText() string {
	if v.source == domain.SourceLibrary {
		return "The library is empty. Add documents with 'coach library add'."
	}
	return "No supported documents found in Dropbox."
}

func (v *View) renderList() string {
	nameWidth := v.width - 32
	if nameWidth < 16 {
		nameWidth = 16
	}

	var b strings.Builder
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %-*s  %9s  %s", nameWidth, "NAME", "SIZE", "MODIFIED")))
	b.WriteString("\n")

	visibleItems := v.visibleItemCount()
	end := min(v.scrollOffset+visibleItems, len(v.documents))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderDocument(i, &v.documents[i], nameWidth))
		b.WriteString("\n")
	}

	if len(v.documents) > visibleItems {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1, end, len(v.documents))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderDocument renders a single document line.
func (v *View) renderDocument(index int, doc *domain.DocumentHandle, nameWidth int) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := doc.DisplayName
	if r := []rune(name); len(r) > nameWidth {
		name = string(r[:nameWidth-3]) + "..."
	}

	size := humanize.Bytes(uint64(max(doc.SizeBytes, 0)))
	modified := "-"
	if !doc.ModifiedAt.IsZero() {
		modified = humanize.Time(doc.ModifiedAt)
	}

	line := fmt.Sprintf("%s%-*s  %9s  %s", indicator, nameWidth, name, size, modified)
	if index == v.selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Source returns the source being listed.
func (v *View) Source() domain.SourceKind {
	return v.source
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.DocumentHandle {
	return v.documents
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.DocumentHandle {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// Loading reports whether a list request is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
