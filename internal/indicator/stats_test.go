package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}
	assert.InDelta(t, 20, Percentile(values, 95), 1e-9)
	assert.InDelta(t, 11, Percentile(values, 50), 1e-9)
	assert.InDelta(t, 1, Percentile(values, 0), 1e-9)
	assert.InDelta(t, 21, Percentile(values, 100), 1e-9)

	assert.InDelta(t, 2.5, Percentile([]float64{1, 4, math.NaN()}, 50), 1e-9)
	assert.True(t, math.IsNaN(Percentile(nil, 95)))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 95))
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 2, Mean([]float64{1, 3, math.NaN(), math.Inf(1)}), 1e-12)
	assert.True(t, math.IsNaN(Mean([]float64{math.NaN()})))
}
