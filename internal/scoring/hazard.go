package scoring

import (
	"fmt"
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// HazardScore normalizes the mean of the valid indicator samples against
// ceiling into a 0-100 score.
func HazardScore(values []float64, ceiling float64) domain.HazardScore {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	var mean float64
	if n > 0 {
		mean = sum / float64(n)
	}

	score := 0.0
	if ceiling > 0 {
		score = clip(mean/ceiling, 0, 1) * 100
	}
	return domain.HazardScore{
		Score:     score,
		Level:     domain.LevelForScore(score),
		Indicator: mean,
		Ceiling:   ceiling,
		Formula:   fmt.Sprintf("H = clip(%.4g / %.4g, 0, 1) × 100 = %.2f", mean, ceiling, score),
	}
}
