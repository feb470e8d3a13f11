package domain

import (
	"sort"
	"strings"
)

// SearchTermSet is a case-insensitive set of terms derived from one question.
// The zero value is an empty set ready to use.
type SearchTermSet struct {
	terms map[string]struct{}
}

// NewSearchTermSet creates a set containing the given terms.
func NewSearchTermSet(terms ...string) SearchTermSet {
	var s SearchTermSet
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add inserts a term. Blank terms are ignored and case is folded.
func (s *SearchTermSet) Add(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}
	if s.terms == nil {
		s.terms = make(map[string]struct{})
	}
	s.terms[term] = struct{}{}
}

// Contains reports whether the set holds term, ignoring case.
func (s SearchTermSet) Contains(term string) bool {
	_, ok := s.terms[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

// Len returns the number of distinct terms.
func (s SearchTermSet) Len() int {
	return len(s.terms)
}

// Terms returns the terms in lexical order.
func (s SearchTermSet) Terms() []string {
	out := make([]string, 0, len(s.terms))
	for t := range s.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Join returns the sorted terms joined by sep.
func (s SearchTermSet) Join(sep string) string {
	return strings.Join(s.Terms(), sep)
}

// Equal reports whether both sets hold the same terms.
func (s SearchTermSet) Equal(other SearchTermSet) bool {
	if len(s.terms) != len(other.terms) {
		return false
	}
	for t := range s.terms {
		if _, ok := other.terms[t]; !ok {
			return false
		}
	}
	return true
}

// ScoredDocument pairs an extracted document with its heuristic score.
type ScoredDocument struct {
	Document ExtractedDocument
	Score    int

	// Notes is optional text placed in the document's context block,
	// such as an LLM summary in smart mode.
	Notes string
}

// SmartSearchResult is an LLM relevance judgement for one document.
// A RelevanceScore of zero is never represented; such documents are excluded.
type SmartSearchResult struct {
	Document         DocumentHandle `json:"document"`
	RelevanceScore   int            `json:"relevance_score"`
	Confidence       int            `json:"confidence"`
	RelevantSections []string       `json:"relevant_sections"`
	Summary          string         `json:"summary"`
	KeyPoints        []string       `json:"key_points"`
	Reasoning        string         `json:"reasoning"`

	// Degraded is set when the result came from the numeric fallback prompt.
	Degraded bool `json:"degraded,omitempty"`
}

// RankingMeta summarises a filtered result list.
type RankingMeta struct {
	AverageConfidence float64 `json:"average_confidence"`
	HighestScore      int     `json:"highest_score"`
}

// RankedResults is the ordered, filtered output of the ranker.
type RankedResults struct {
	Results []SmartSearchResult `json:"results"`
	Meta    RankingMeta         `json:"meta"`
}

// AskMode selects how documents are ranked for an answer.
type AskMode string

// Available ask modes.
const (
	// AskModeHeuristic scores documents by keyword heuristics and packs them all.
	AskModeHeuristic AskMode = "heuristic"

	// AskModeSmart judges each document with the LLM and keeps only relevant ones.
	AskModeSmart AskMode = "smart"
)

// IsValid returns true if the mode is recognised.
func (m AskMode) IsValid() bool {
	return m == AskModeHeuristic || m == AskModeSmart
}

// String returns the string representation.
func (m AskMode) String() string {
	return string(m)
}
