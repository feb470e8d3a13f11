package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// noDocumentsMarker ends the context when there is nothing to include.
const noDocumentsMarker = "=== NO DOCUMENTS AVAILABLE ===\n"

// typeLabels map name substrings to a cosmetic document category.
// The first matching rule wins.
var typeLabels = []struct {
	needles []string
	label   string
}{
	{[]string{"handleiding", "manual", "guide", "instructie"}, "Handleiding"},
	{[]string{"faq", "veelgestelde"}, "FAQ"},
	{[]string{"rubric"}, "Rubric"},
	{[]string{"beleid", "policy", "reglement", "regeling"}, "Beleid"},
	{[]string{"toets", "quiz", "tentamen", "exam"}, "Toetsing"},
	{[]string{"sjabloon", "template"}, "Sjabloon"},
}

// ContextPacker assembles scored documents into a prompt under a character budget.
type ContextPacker struct {
	scoring     domain.ScoringSettings
	promptStore driven.PromptStore
}

// NewContextPacker creates a packer. promptStore may be nil.
func NewContextPacker(scoring domain.ScoringSettings, promptStore driven.PromptStore) *ContextPacker {
	return &ContextPacker{scoring: scoring, promptStore: promptStore}
}

// Pack orders documents by descending score, keeping input order for ties,
// and includes full document blocks while they fit in maxChars. Documents
// left out are listed in a manifest when it fits too. When no block fits
// the header switches to the no-sources instructions but keeps the
// document count and manifest. The result never exceeds maxChars characters.
func (p *ContextPacker) Pack(
	docs []domain.ScoredDocument,
	question string,
	terms domain.SearchTermSet,
	maxChars int,
) (domain.AssembledContext, error) {
	if maxChars <= 0 {
		return domain.AssembledContext{}, fmt.Errorf("%w: context budget must be positive, got %d", domain.ErrInvalidInput, maxChars)
	}
	if need := p.HeaderLength(question, terms, len(docs)); need > maxChars {
		return domain.AssembledContext{}, fmt.Errorf("%w: header needs %d of %d characters", domain.ErrBudgetExceeded, need, maxChars)
	}

	if len(docs) == 0 {
		header := p.header(question, terms, 0, false)
		if charLen(header)+charLen(noDocumentsMarker) > maxChars {
			return domain.AssembledContext{}, fmt.Errorf("%w: no room for empty marker", domain.ErrBudgetExceeded)
		}
		return domain.AssembledContext{Text: header + noDocumentsMarker}, nil
	}

	ordered := sortByScore(docs)
	result := domain.AssembledContext{}

	header := p.header(question, terms, len(ordered), true)
	used := charLen(header)

	var body strings.Builder
	next := 0
	for ; next < len(ordered); next++ {
		block := p.block(ordered[next], next+1, len(ordered))
		n := charLen(block)
		if used+n > maxChars {
			break
		}
		body.WriteString(block)
		used += n
		result.Included = append(result.Included, ordered[next].Document.Handle.DisplayName)
	}

	if next == 0 {
		header = p.header(question, terms, len(ordered), false)
		used = charLen(header)
	}

	if next < len(ordered) {
		rest := ordered[next:]
		for _, d := range rest {
			result.Omitted = append(result.Omitted, d.Document.Handle.DisplayName)
		}
		switch manifest := manifest(rest); {
		case used+charLen(manifest) <= maxChars:
			body.WriteString(manifest)
			result.ManifestIncluded = true
		case next == 0 && used+charLen(noDocumentsMarker) <= maxChars:
			body.WriteString(noDocumentsMarker)
		}
	}

	result.Text = header + body.String()
	return result, nil
}

// HeaderLength returns the length of the longest header Pack may write
// for docCount documents, which is the minimum budget any context for the
// question needs.
func (p *ContextPacker) HeaderLength(question string, terms domain.SearchTermSet, docCount int) int {
	n := charLen(p.header(question, terms, docCount, false))
	if docCount > 0 {
		n = max(n, charLen(p.header(question, terms, docCount, true)))
	}
	return n
}

// PriorityTier labels a score HIGH, MEDIUM or LOW.
func (p *ContextPacker) PriorityTier(score int) string {
	switch {
	case score > p.scoring.PriorityHigh:
		return "HIGH"
	case score > p.scoring.PriorityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func (p *ContextPacker) header(question string, terms domain.SearchTermSet, docCount int, withSources bool) string {
	joined := terms.Join(", ")
	if joined == "" {
		joined = "(none)"
	}

	instructions := loadPrompt(p.promptStore, driven.PromptNoSources, defaultNoSourcesInstructions)
	if withSources {
		instructions = loadPrompt(p.promptStore, driven.PromptAnswerInstructions, defaultAnswerInstructions)
	}

	var b strings.Builder
	b.WriteString("=== CANVAS COACH CONTEXT ===\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Search terms: %s\n", joined)
	fmt.Fprintf(&b, "Documents: %d\n\n", docCount)
	b.WriteString(strings.TrimSpace(instructions))
	b.WriteString("\n\n")
	return b.String()
}

func (p *ContextPacker) block(d domain.ScoredDocument, ordinal, total int) string {
	name := d.Document.Handle.DisplayName
	text := d.Document.Text

	var b strings.Builder
	fmt.Fprintf(&b, "--- DOCUMENT %d/%d: %s ---\n", ordinal, total, name)
	fmt.Fprintf(&b, "Type: %s | Score: %d | Length: %d chars | Priority: %s\n",
		typeLabel(name), d.Score, charLen(text), p.PriorityTier(d.Score))
	if notes := strings.TrimSpace(d.Notes); notes != "" {
		fmt.Fprintf(&b, "Notes:\n%s\n", notes)
	}
	fmt.Fprintf(&b, "=== START OF %s ===\n", name)
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "=== END OF %s ===\n\n", name)
	return b.String()
}

func manifest(rest []domain.ScoredDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== DOCUMENTS NOT INCLUDED (%d) ===\n", len(rest))
	for _, d := range rest {
		fmt.Fprintf(&b, "- %s (%d chars, score %d)\n", d.Document.Handle.DisplayName, charLen(d.Document.Text), d.Score)
	}
	return b.String()
}

// sortByScore returns a copy sorted by descending score, stable for ties.
func sortByScore(docs []domain.ScoredDocument) []domain.ScoredDocument {
	ordered := make([]domain.ScoredDocument, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})
	return ordered
}

func typeLabel(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range typeLabels {
		for _, n := range rule.needles {
			if strings.Contains(lower, n) {
				return rule.label
			}
		}
	}
	return "Document"
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
