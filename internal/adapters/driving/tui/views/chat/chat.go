// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/coach/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// sourceListHeight is the number of rows reserved for the source list.
const sourceListHeight = 5

// View is the chat view: a question input, the streamed answer and its sources.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	sources    *list.SourceList
	statusbar  *status.Bar
	transcript viewport.Model
	spinner    spinner.Model

	askService    driving.AskService
	actionService driving.AnswerActionService
	ctx           context.Context

	mode      domain.AskMode
	source    domain.SourceKind
	exportDir string
	now       func() time.Time

	// Per-question state.
	reqCtx    context.Context
	cancel    context.CancelFunc
	cancelled bool
	busy      bool
	question  string
	prepared  *domain.PreparedAnswer
	updates   <-chan domain.AnswerUpdate
	text      string
	answer    *domain.Answer
	err       error

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	askService driving.AskService,
	actionService driving.AnswerActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		sources:       list.NewSourceList(s),
		statusbar:     status.NewBar(s, km),
		transcript:    viewport.New(80, 10),
		spinner:       sp,
		askService:    askService,
		actionService: actionService,
		ctx:           context.Background(),
		mode:          domain.AskModeHeuristic,
		source:        domain.SourceDropbox,
		exportDir:     ".",
		now:           time.Now,
		width:         80,
		height:        24,
	}
	v.refresh()
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerPrepared:
		return v, v.handlePrepared(msg)

	case messages.StreamStarted:
		if !v.busy {
			return v, nil
		}
		if msg.Err != nil {
			v.finish(msg.Err)
			return v, nil
		}
		v.updates = msg.Updates
		return v, waitForUpdate(v.updates)

	case messages.AnswerUpdated:
		return v, v.handleUpdate(msg)

	case messages.ActionCompleted:
		if msg.Err != nil {
			v.statusbar.SetMessage("Error: " + msg.Err.Error())
		} else {
			v.statusbar.SetMessage(msg.Message)
		}
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.statusbar.SetSpinner(v.spinner.View())
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.Back):
		if v.busy {
			v.cancelled = true
			v.cancel()
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(k, v.keymap.Submit):
		return v, v.submit()

	case keymap.Matches(k, v.keymap.ToggleMode):
		if !v.busy {
			v.mode = nextMode(v.mode)
		}
		return v, nil

	case keymap.Matches(k, v.keymap.ToggleSource):
		if !v.busy {
			v.source = nextSource(v.source)
		}
		return v, nil

	case keymap.Matches(k, v.keymap.Up):
		v.sources.MoveUp()
		return v, nil

	case keymap.Matches(k, v.keymap.Down):
		v.sources.MoveDown()
		return v, nil

	case keymap.Matches(k, v.keymap.ScrollUp), keymap.Matches(k, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(k, v.keymap.Copy):
		return v, v.copyAnswer()

	case keymap.Matches(k, v.keymap.Open):
		return v, v.openSource()

	case keymap.Matches(k, v.keymap.Export):
		return v, v.exportAnswer()
	}

	// Typing the next question is allowed while an answer streams.
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit starts preparing an answer for the typed question.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.busy {
		return nil
	}
	if v.askService == nil {
		v.question = question
		v.finish(ErrNoAskService)
		return nil
	}

	v.reqCtx, v.cancel = context.WithCancel(v.ctx)
	v.busy = true
	v.cancelled = false
	v.question = question
	v.prepared, v.updates, v.answer, v.err = nil, nil, nil, nil
	v.text = ""
	v.sources.SetSources(nil)
	v.input.Reset()
	v.statusbar.SetState(status.StatePreparing)
	v.refresh()

	ask, ctx := v.askService, v.reqCtx
	opts := domain.AskOptions{Mode: v.mode, Source: v.source}
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		prepared, err := ask.Prepare(ctx, question, opts)
		return messages.AnswerPrepared{Prepared: prepared, Err: err}
	})
}

func (v *View) handlePrepared(msg messages.AnswerPrepared) tea.Cmd {
	if !v.busy {
		return nil
	}
	if msg.Err != nil {
		v.finish(msg.Err)
		return nil
	}

	v.prepared = msg.Prepared
	v.sources.SetSources(msg.Prepared.Sources)
	v.statusbar.SetState(status.StateStreaming)
	v.refresh()

	ask, ctx, prepared := v.askService, v.reqCtx, v.prepared
	return func() tea.Msg {
		updates, err := ask.Stream(ctx, prepared)
		return messages.StreamStarted{Updates: updates, Err: err}
	}
}

func (v *View) handleUpdate(msg messages.AnswerUpdated) tea.Cmd {
	if !v.busy {
		return nil
	}
	if msg.Closed {
		v.finish(nil)
		return nil
	}

	u := msg.Update
	if u.Err != nil {
		v.err = u.Err
	}
	if u.Text != "" {
		v.text = u.Text
	}
	v.refresh()
	return waitForUpdate(v.updates)
}

// waitForUpdate reads one update from the stream.
func waitForUpdate(updates <-chan domain.AnswerUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return messages.AnswerUpdated{Closed: true}
		}
		return messages.AnswerUpdated{Update: u}
	}
}

// finish ends the current question with err, or with the last stream error.
func (v *View) finish(err error) {
	if err == nil {
		err = v.err
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.busy = false
	v.updates = nil
	v.statusbar.SetSpinner("")

	switch {
	case v.cancelled:
		v.err = nil
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("Cancelled")
	case err != nil:
		v.err = err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(describe(err))
	default:
		v.answer = v.prepared.Finish(v.text, v.now())
		v.statusbar.SetState(status.StateDone)
	}
	v.refresh()
}

// describe shortens well-known errors for the status bar.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrBudgetExceeded):
		return "question is too long for the context budget"
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrAuthExpired):
		return "Dropbox is not connected, run 'coach connect'"
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "Gemini is not configured, run 'coach settings llm'"
	default:
		return err.Error()
	}
}

func (v *View) copyAnswer() tea.Cmd {
	if v.answer == nil {
		v.statusbar.SetMessage("No answer to copy")
		return nil
	}
	if v.actionService == nil {
		v.statusbar.SetMessage("Copy not available")
		return nil
	}
	actions, ctx, answer := v.actionService, v.ctx, v.answer
	return func() tea.Msg {
		if err := actions.CopyAnswer(ctx, answer); err != nil {
			return messages.ActionCompleted{Err: err}
		}
		return messages.ActionCompleted{Message: "Answer copied to clipboard"}
	}
}

func (v *View) openSource() tea.Cmd {
	src := v.sources.SelectedSource()
	if src == nil {
		v.statusbar.SetMessage("No source selected")
		return nil
	}
	if v.actionService == nil || v.actionService.SourceURL(*src) == "" {
		v.statusbar.SetMessage(src.Name + " has no web page")
		return nil
	}
	actions, ctx, ref := v.actionService, v.ctx, *src
	return func() tea.Msg {
		if err := actions.OpenSource(ctx, ref); err != nil {
			return messages.ActionCompleted{Err: err}
		}
		return messages.ActionCompleted{Message: "Opening " + ref.Name}
	}
}

func (v *View) exportAnswer() tea.Cmd {
	if v.answer == nil {
		v.statusbar.SetMessage("No answer to export")
		return nil
	}
	if v.actionService == nil {
		v.statusbar.SetMessage("Export not available")
		return nil
	}
	actions, answer := v.actionService, v.answer
	path := filepath.Join(v.exportDir,
		"coach-"+answer.GeneratedAt.Format("20060102-150405")+actions.ExportExtension())
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return messages.ActionCompleted{Err: fmt.Errorf("create export file: %w", err)}
		}
		if err := actions.Export(answer, f); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return messages.ActionCompleted{Err: err}
		}
		if err := f.Close(); err != nil {
			return messages.ActionCompleted{Err: fmt.Errorf("close export file: %w", err)}
		}
		return messages.ActionCompleted{Message: "Saved " + path}
	}
}

func nextMode(m domain.AskMode) domain.AskMode {
	if m == domain.AskModeSmart {
		return domain.AskModeHeuristic
	}
	return domain.AskModeSmart
}

func nextSource(s domain.SourceKind) domain.SourceKind {
	if s == domain.SourceLibrary {
		return domain.SourceDropbox
	}
	return domain.SourceLibrary
}

// refresh re-renders the transcript, following the end while the user has not scrolled up.
func (v *View) refresh() {
	follow := v.transcript.AtBottom()
	v.transcript.SetContent(v.renderTranscript())
	if follow {
		v.transcript.GotoBottom()
	}
}

func (v *View) renderTranscript() string {
	if v.question == "" {
		return v.styles.Muted.Render(
			"Ask a question about Canvas. Coach looks through your Dropbox or\n" +
				"local library for the manuals that answer it.")
	}

	wrap := v.width - 2
	if wrap < 20 {
		wrap = 20
	}

	var b strings.Builder
	b.WriteString(v.styles.Question.Width(wrap).Render("> " + v.question))
	b.WriteString("\n\n")

	if p := v.prepared; p != nil {
		if p.NoSources {
			b.WriteString(v.styles.Warning.Render("No matching documents; answering from general knowledge."))
			b.WriteString("\n")
		}
		if n := len(p.Prompt.Omitted); n > 0 {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d document(s) did not fit the context budget.", n)))
			b.WriteString("\n")
		}
		if p.NoSources || len(p.Prompt.Omitted) > 0 {
			b.WriteString("\n")
		}
	}

	if v.text != "" {
		b.WriteString(v.styles.Answer.Width(wrap).Render(v.text))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		v.styles.Title.Render("Canvas Coach"), " ",
		v.styles.ModeBadge(v.mode), " ",
		v.styles.Badge.Render(string(v.source)),
	)

	sections := []string{header, "", v.input.View(), "", v.transcript.View()}
	if v.sources.Count() > 0 {
		sections = append(sections, "", v.sources.View())
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.sources.SetDimensions(width, sourceListHeight)
	v.statusbar.SetWidth(width)

	// header, input box, source list, status bar and spacing
	transcriptHeight := height - 12 - sourceListHeight
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	v.transcript.Width = width
	v.transcript.Height = transcriptHeight
	v.refresh()
}

// SetMode sets the search mode used for the next question.
func (v *View) SetMode(mode domain.AskMode) {
	if mode.IsValid() {
		v.mode = mode
	}
}

// Mode returns the search mode used for the next question.
func (v *View) Mode() domain.AskMode {
	return v.mode
}

// Source returns the document source used for the next question.
func (v *View) Source() domain.SourceKind {
	return v.source
}

// SetExportDir sets where exported answers are written.
func (v *View) SetExportDir(dir string) {
	v.exportDir = dir
}

// Busy reports whether an answer is being prepared or streamed.
func (v *View) Busy() bool {
	return v.busy
}

// Answer returns the last finished answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Text returns the answer text streamed so far.
func (v *View) Text() string {
	return v.text
}

// Err returns the error of the last question, if any.
func (v *View) Err() error {
	return v.err
}

// StatusMessage returns the message shown in the status bar.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Reset clears the transcript for a fresh conversation.
func (v *View) Reset() {
	if v.busy {
		v.cancel()
	}
	v.busy = false
	v.cancelled = false
	v.question, v.text = "", ""
	v.prepared, v.updates, v.answer, v.err = nil, nil, nil, nil
	v.sources.SetSources(nil)
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
	v.refresh()
}
