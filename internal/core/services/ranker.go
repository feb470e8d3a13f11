package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// Ranker orders judged documents by confidence-weighted relevance.
type Ranker struct {
	floor int
}

// NewRanker creates a ranker that drops results rescaled at or below floor.
func NewRanker(settings domain.RankingSettings) *Ranker {
	return &Ranker{floor: settings.RelevanceFloor}
}

// Rescale weights a relevance score by confidence: round(score * confidence / 100).
func Rescale(score, confidence int) int {
	return int(math.Round(float64(score) * float64(confidence) / 100))
}

// Rank replaces each RelevanceScore with its rescaled value, sorts by it
// (ties broken by confidence, then input order) and drops results at or
// below the floor. Meta describes the kept results only.
func (r *Ranker) Rank(results []domain.SmartSearchResult) domain.RankedResults {
	kept := make([]domain.SmartSearchResult, 0, len(results))
	for _, res := range results {
		res.RelevanceScore = Rescale(res.RelevanceScore, res.Confidence)
		if res.RelevanceScore <= r.floor {
			continue
		}
		kept = append(kept, res)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].RelevanceScore != kept[j].RelevanceScore {
			return kept[i].RelevanceScore > kept[j].RelevanceScore
		}
		return kept[i].Confidence > kept[j].Confidence
	})

	out := domain.RankedResults{Results: kept}
	if len(kept) == 0 {
		return out
	}

	total := 0
	for _, res := range kept {
		total += res.Confidence
		out.Meta.HighestScore = max(out.Meta.HighestScore, res.RelevanceScore)
	}
	out.Meta.AverageConfidence = float64(total) / float64(len(kept))
	return out
}
