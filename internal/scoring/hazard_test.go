package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func TestHazardScore(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		ceiling float64
		score   float64
		level   domain.RiskLevel
	}{
		{"half of ceiling", []float64{10, 20}, 30, 50, domain.LevelMedium},
		{"above ceiling clips", []float64{100}, 30, 100, domain.LevelVeryHigh},
		{"negative clips to zero", []float64{-5}, 100, 0, domain.LevelVeryLow},
		{"NaN skipped", []float64{math.NaN(), 24}, 30, 80, domain.LevelVeryHigh},
		{"empty", nil, 30, 0, domain.LevelVeryLow},
		{"zero ceiling", []float64{5}, 0, 0, domain.LevelVeryLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HazardScore(tc.values, tc.ceiling)
			assert.InDelta(t, tc.score, got.Score, 1e-9)
			assert.Equal(t, tc.level, got.Level)
			assert.Contains(t, got.Formula, "H = clip(")
		})
	}
}

func TestLadder(t *testing.T) {
	l := Ladder{Steps: []Step{{10, 100}, {20, 50}}, Else: 5}
	assert.Equal(t, 100.0, l.Score(-1))
	assert.Equal(t, 50.0, l.Score(10))
	assert.Equal(t, 5.0, l.Score(20))
	assert.Equal(t, 5.0, l.Score(math.NaN()))
}
