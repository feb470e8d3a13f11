package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func judged(name string, score, confidence int) domain.SmartSearchResult {
	return domain.SmartSearchResult{
		Document:       domain.DocumentHandle{ID: name, DisplayName: name},
		RelevanceScore: score,
		Confidence:     confidence,
	}
}

func TestRescale(t *testing.T) {
	assert.Equal(t, 40, Rescale(80, 50))
	assert.Equal(t, 45, Rescale(50, 90))
	assert.Equal(t, 1, Rescale(1, 50))
	assert.Equal(t, 0, Rescale(100, 0))
}

func TestRanker_ConfidenceWeighting(t *testing.T) {
	r := NewRanker(domain.RankingSettings{RelevanceFloor: 10})

	ranked := r.Rank([]domain.SmartSearchResult{
		judged("confident", 80, 50),
		judged("modest", 50, 90),
	})

	require.Len(t, ranked.Results, 2)
	assert.Equal(t, "modest", ranked.Results[0].Document.ID)
	assert.Equal(t, 45, ranked.Results[0].RelevanceScore)
	assert.Equal(t, "confident", ranked.Results[1].Document.ID)
	assert.Equal(t, 40, ranked.Results[1].RelevanceScore)
}

func TestRanker_DropsAtOrBelowFloor(t *testing.T) {
	r := NewRanker(domain.RankingSettings{RelevanceFloor: 10})

	ranked := r.Rank([]domain.SmartSearchResult{
		judged("at-floor", 20, 50),
		judged("below", 5, 100),
		judged("kept", 30, 50),
	})

	require.Len(t, ranked.Results, 1)
	assert.Equal(t, "kept", ranked.Results[0].Document.ID)
	assert.Equal(t, 15, ranked.Meta.HighestScore)
	assert.InDelta(t, 50.0, ranked.Meta.AverageConfidence, 0.001)
}

func TestRanker_TiesByConfidenceThenInputOrder(t *testing.T) {
	r := NewRanker(domain.RankingSettings{})

	ranked := r.Rank([]domain.SmartSearchResult{
		judged("first", 60, 50),   // 30
		judged("second", 30, 100), // 30
		judged("third", 60, 50),   // 30
	})

	ids := []string{}
	for _, res := range ranked.Results {
		ids = append(ids, res.Document.ID)
	}
	assert.Equal(t, []string{"second", "first", "third"}, ids)
	assert.InDelta(t, 200.0/3, ranked.Meta.AverageConfidence, 0.001)
}

func TestRanker_Empty(t *testing.T) {
	ranked := NewRanker(domain.RankingSettings{RelevanceFloor: 10}).Rank(nil)

	assert.Empty(t, ranked.Results)
	assert.Zero(t, ranked.Meta.HighestScore)
	assert.Zero(t, ranked.Meta.AverageConfidence)
}
