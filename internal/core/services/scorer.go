package services

import (
	"strings"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// instructionalWords mark procedural text regardless of the question.
var instructionalWords = []string{
	"step", "procedure", "how-to", "method",
	"stap", "werkwijze", "instructie",
}

// HeuristicScorer computes keyword relevance scores.
// Scores are deterministic and never negative.
type HeuristicScorer struct {
	weights domain.ScoringSettings
}

// NewHeuristicScorer creates a scorer. Negative weights are treated as zero.
func NewHeuristicScorer(weights domain.ScoringSettings) *HeuristicScorer {
	weights.TermWeight = max(weights.TermWeight, 0)
	weights.EmphasisBonus = max(weights.EmphasisBonus, 0)
	weights.InstructionBonus = max(weights.InstructionBonus, 0)
	return &HeuristicScorer{weights: weights}
}

// Score rates how well text matches terms.
func (s *HeuristicScorer) Score(text string, terms domain.SearchTermSet) int {
	lower := strings.ToLower(text)
	score := 0

	for _, term := range terms.Terms() {
		n := strings.Count(lower, term)
		if n == 0 {
			continue
		}
		score += n * s.weights.TermWeight
		if isLabelled(lower, term) {
			score += s.weights.EmphasisBonus
		}
	}

	for _, w := range instructionalWords {
		score += strings.Count(lower, w) * s.weights.InstructionBonus
	}

	return score
}

// ScoreAll scores every document, keeping input order.
func (s *HeuristicScorer) ScoreAll(docs []domain.ExtractedDocument, terms domain.SearchTermSet) []domain.ScoredDocument {
	scored := make([]domain.ScoredDocument, len(docs))
	for i, d := range docs {
		scored[i] = domain.ScoredDocument{Document: d, Score: s.Score(d.Text, terms)}
	}
	return scored
}

// isLabelled reports whether term appears as a label ("term:") or in emphasis markup.
func isLabelled(lower, term string) bool {
	if strings.Contains(lower, term+":") {
		return true
	}
	for _, mark := range []string{"**", "__", "*", "_"} {
		if strings.Contains(lower, mark+term+mark) {
			return true
		}
	}
	return false
}
