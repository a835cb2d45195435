package binning

import (
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Distribution is the per-bin occurrence frequency of a sample.
// Probabilities sum to 1 whenever Samples > 0 and are all zero otherwise.
type Distribution struct {
	Probabilities []float64       `json:"probabilities"`
	Counts        []int           `json:"counts"`
	Samples       int             `json:"samples"`
	Skipped       int             `json:"skipped"`
	Unit          domain.TimeUnit `json:"unit"`
}

// Label describes what the probabilities mean for the series' time unit.
func (d Distribution) Label() string {
	switch d.Unit {
	case domain.Monthly:
		return "fraction of months"
	case domain.Daily:
		return "fraction of days"
	default:
		return "annual probability"
	}
}

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	var s float64
	for _, p := range d.Probabilities {
		s += p
	}
	return s
}

// Estimate counts values per bin. NaN and infinite values are skipped and
// reported in Skipped.
func (c *Classifier) Estimate(values []float64) Distribution {
	d := Distribution{
		Probabilities: make([]float64, len(c.bins)),
		Counts:        make([]int, len(c.bins)),
		Unit:          domain.Yearly,
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			d.Skipped++
			continue
		}
		d.Counts[c.Classify(v)]++
		d.Samples++
	}
	if d.Samples == 0 {
		return d
	}
	for i, n := range d.Counts {
		d.Probabilities[i] = float64(n) / float64(d.Samples)
	}
	return d
}

// EstimateSeries is Estimate over an intensity series, keeping its time unit.
func (c *Classifier) EstimateSeries(s domain.IntensitySeries) Distribution {
	d := c.Estimate(s.Values)
	if s.Unit != "" {
		d.Unit = s.Unit
	}
	return d
}
