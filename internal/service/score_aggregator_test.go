package service

import (
	"testing"

	"dealdesk-llm/internal/domain"
)

func TestAggregateOverallScoreAllDimensions(t *testing.T) {
	scores := map[string]domain.DimensionScore{
		domain.DimensionMarket:      {Score: 80},
		domain.DimensionTeam:        {Score: 70},
		domain.DimensionProduct:     {Score: 60},
		domain.DimensionTraction:    {Score: 90},
		domain.DimensionFinancials:  {Score: 50},
		domain.DimensionCompetitive: {Score: 40},
	}
	// 80*.20 + 70*.25 + 60*.20 + 90*.15 + 50*.10 + 40*.10 = 69.0
	if got := AggregateOverallScore(scores); got != 69 {
		t.Fatalf("expected 69, got %d", got)
	}
}

func TestAggregateOverallScoreMissingDimensionsRenormalize(t *testing.T) {
	scores := map[string]domain.DimensionScore{
		domain.DimensionTeam:    {Score: 100},
		domain.DimensionProduct: {Score: 100},
	}
	// Las dimensiones ausentes no arrastran el score a cero.
	if got := AggregateOverallScore(scores); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestAggregateOverallScorePartialSubset(t *testing.T) {
	scores := map[string]domain.DimensionScore{
		domain.DimensionMarket: {Score: 80},
		domain.DimensionTeam:   {Score: 40},
	}
	// (80*.20 + 40*.25) / .45 = 57.77... -> 58
	if got := AggregateOverallScore(scores); got != 58 {
		t.Fatalf("expected 58, got %d", got)
	}
}

func TestAggregateOverallScoreSkipsInvalidScores(t *testing.T) {
	scores := map[string]domain.DimensionScore{
		domain.DimensionMarket: {Score: 150},
		domain.DimensionTeam:   {Score: -5},
		domain.DimensionProduct: {Score: 60},
	}
	if got := AggregateOverallScore(scores); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
}

func TestAggregateOverallScoreEmpty(t *testing.T) {
	if got := AggregateOverallScore(nil); got != 0 {
		t.Fatalf("expected 0 without valid scores, got %d", got)
	}
	if got := AggregateOverallScore(map[string]domain.DimensionScore{"vision": {Score: 90}}); got != 0 {
		t.Fatalf("expected 0 for unknown dimension, got %d", got)
	}
}
