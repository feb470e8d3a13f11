// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/coach/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coach/internal/core/domain"
)

// SourceList displays the sources of an answer in a navigable list.
type SourceList struct {
	sources  []domain.SourceRef
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 6,
	}
}

// View renders the list. An empty list renders nothing.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return ""
	}

	lines := make([]string, 0, len(l.sources)+1)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))))

	visible := l.height - 1
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.sources) {
		end = len(l.sources)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSource(i, &l.sources[i]))
	}

	return strings.Join(lines, "\n")
}

// renderSource formats one source with its score and, for smart answers, confidence.
func (l *SourceList) renderSource(index int, src *domain.SourceRef) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	detail := fmt.Sprintf("score %d", src.Score)
	confidence := ""
	if src.Confidence > 0 {
		confidence = fmt.Sprintf(" %d%%", src.Confidence)
	}

	maxName := l.width - len(detail) - len(confidence) - 6
	if maxName < 10 {
		maxName = 10
	}
	name := truncate(src.Name, maxName)

	if index == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s%s", indicator, maxName, name, detail, confidence))
	}
	return l.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxName, name)) +
		l.styles.Muted.Render(detail) +
		l.styles.Confidence(src.Confidence).Render(confidence)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetSources replaces the list and resets the selection.
func (l *SourceList) SetSources(sources []domain.SourceRef) {
	l.sources = sources
	l.selected = 0
}

// Sources returns the current sources.
func (l *SourceList) Sources() []domain.SourceRef {
	return l.sources
}

// Selected returns the index of the selected source.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedSource returns the selected source, or nil if the list is empty.
func (l *SourceList) SelectedSource() *domain.SourceRef {
	if l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}
