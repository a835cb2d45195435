package binning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heatClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(Bounds(0, 3, 8, 20), []float64{0.001, 0.003, 0.010, 0.020})
	require.NoError(t, err)
	return c
}

func TestBounds(t *testing.T) {
	bins := Bounds(0, 3, 8)
	require.Len(t, bins, 3)
	assert.Equal(t, Bin{Lower: 0, Upper: 3}, bins[0])
	assert.True(t, math.IsInf(bins[2].Upper, 1))
	assert.Equal(t, "[8,inf)", bins[2].String())
	assert.Equal(t, "[0,3)", bins[0].String())
}

func TestNewClassifier_Validation(t *testing.T) {
	tests := []struct {
		name  string
		bins  []Bin
		rates []float64
		want  error
	}{
		{"empty", nil, nil, errEmptyTable},
		{"length mismatch", Bounds(0, 1), []float64{0.1}, errRateMismatch},
		{"gap", []Bin{{0, 1}, {2, math.Inf(1)}}, []float64{0, 0.1}, errBinGap},
		{"inverted", []Bin{{1, 0}, {0, math.Inf(1)}}, []float64{0, 0.1}, errBinGap},
		{"bounded tail", []Bin{{0, 1}, {1, 2}}, []float64{0, 0.1}, errBoundedTail},
		{"decreasing rates", Bounds(0, 1), []float64{0.2, 0.1}, errRateDecrease},
		{"rate above one", Bounds(0, 1), []float64{0.2, 1.5}, errRateOutOfUnit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClassifier(tc.bins, tc.rates)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClassify(t *testing.T) {
	c := heatClassifier(t)

	tests := []struct {
		v    float64
		want int
	}{
		{0, 0},
		{2.999, 0},
		{3, 1},
		{7.5, 1},
		{8, 2},
		{19.99, 2},
		{20, 3},
		{1e9, 3},
		{math.Inf(1), 3},
		{-1, 3},
		{math.NaN(), 3},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.Classify(tc.v), "value %v", tc.v)
	}
}

func TestClassify_IsTotal(t *testing.T) {
	c := heatClassifier(t)
	for _, v := range []float64{-math.MaxFloat64, -3, 0, 2.5, 3, 1e300, math.Inf(-1), math.Inf(1), math.NaN()} {
		idx := c.Classify(v)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, c.Len())
	}
}

func TestClassifierCopies(t *testing.T) {
	c := heatClassifier(t)
	rates := c.Rates()
	rates[0] = 99
	assert.Equal(t, 0.001, c.Rates()[0])
	assert.Equal(t, []string{"[0,3)", "[3,8)", "[8,20)", "[20,inf)"}, c.Labels())
}
