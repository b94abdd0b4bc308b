package service

import (
	"math"

	"dealdesk-llm/internal/domain"
)

// Pesos fijos por dimension; suman 1.00.
var dimensionWeights = map[string]float64{
	domain.DimensionMarket:      0.20,
	domain.DimensionTeam:        0.25,
	domain.DimensionProduct:     0.20,
	domain.DimensionTraction:    0.15,
	domain.DimensionFinancials:  0.10,
	domain.DimensionCompetitive: 0.10,
}

// AggregateOverallScore combina los puntajes por dimension en un score
// global ponderado. Las dimensiones ausentes o fuera de [0,100] se saltean
// y los pesos se renormalizan: una respuesta incompleta sigue dando un
// score representativo en vez de uno artificialmente deflactado.
func AggregateOverallScore(scores map[string]domain.DimensionScore) int {
	var sum, total float64
	for dim, weight := range dimensionWeights {
		ds, ok := scores[dim]
		if !ok || ds.Score < 0 || ds.Score > 100 {
			continue
		}
		sum += float64(ds.Score) * weight
		total += weight
	}
	if total <= 0 {
		return 0
	}
	return int(math.Round(sum / total))
}
