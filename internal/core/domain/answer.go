package domain

import (
	"time"
	"unicode/utf8"
)

// AssembledContext is the budgeted prompt given to the completion service.
// Its length in characters never exceeds the budget it was packed for.
type AssembledContext struct {
	// Text is the full prompt.
	Text string

	// Included lists display names of documents with a full block, in order.
	Included []string

	// Omitted lists display names of documents without a full block, in order.
	Omitted []string

	// ManifestIncluded is true when the omitted documents were listed.
	ManifestIncluded bool
}

// Len returns the prompt length in characters.
func (c AssembledContext) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// StreamedAnswer is a growing answer plus a completion flag.
type StreamedAnswer struct {
	Text     string
	Complete bool
}

// Append adds a delta. It reports false once the answer is complete.
func (a *StreamedAnswer) Append(delta string) bool {
	if a.Complete {
		return false
	}
	a.Text += delta
	return true
}

// AnswerUpdate is emitted for every change to a streamed answer.
// Exactly one final update carries Complete or Err.
type AnswerUpdate struct {
	// Text is the accumulated answer so far.
	Text string

	// Delta is the text added by this update.
	Delta string

	Complete bool
	Err      error
}

// AskOptions configures a question-answering request.
type AskOptions struct {
	Mode   AskMode
	Source SourceKind

	// MaxDocuments caps how many candidate files are fetched. Zero uses settings.
	MaxDocuments int
}

// SourceRef describes a document that contributed to an answer.
type SourceRef struct {
	Name       string `json:"name"`
	Locator    string `json:"locator"`
	Score      int    `json:"score"`
	Confidence int    `json:"confidence,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// PreparedAnswer holds everything needed to stream an answer.
type PreparedAnswer struct {
	Question string
	Mode     AskMode
	Terms    SearchTermSet
	Prompt   AssembledContext

	// Sources lists documents given a full block in the prompt.
	Sources []SourceRef

	// NoSources is true when no document made it into the prompt.
	// The prompt then asks for a general-knowledge answer.
	NoSources bool

	// Ranking is set in smart mode.
	Ranking *RankingMeta
}

// Answer is a completed answer ready for display or export.
type Answer struct {
	Question    string      `json:"question"`
	Text        string      `json:"text"`
	Sources     []SourceRef `json:"sources"`
	NoSources   bool        `json:"no_sources"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Finish builds the completed answer from the streamed text.
func (p *PreparedAnswer) Finish(text string, at time.Time) *Answer {
	return &Answer{
		Question:    p.Question,
		Text:        text,
		Sources:     p.Sources,
		NoSources:   p.NoSources,
		GeneratedAt: at,
	}
}
