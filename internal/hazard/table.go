// Package hazard holds the per-hazard registry: bin tables, damage rates,
// score ceilings and the intensity extractor for each of the nine hazards.
package hazard

import (
	"fmt"

	"github.com/couchcryptid/climate-risk-engine/internal/binning"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Table is the bin configuration of one hazard. Edges are ascending lower
// bounds; the last bin is open above.
type Table struct {
	Edges   []float64 `yaml:"edges" json:"edges"`
	Rates   []float64 `yaml:"rates" json:"rates"`
	Ceiling float64   `yaml:"ceiling" json:"ceiling"`
	Label   string    `yaml:"label" json:"label"`
}

// Classifier builds the validated bin classifier for t.
func (t Table) Classifier() (*binning.Classifier, error) {
	if t.Ceiling <= 0 {
		return nil, fmt.Errorf("score ceiling must be positive, got %g", t.Ceiling)
	}
	return binning.NewClassifier(binning.Bounds(t.Edges...), t.Rates)
}

// DefaultTables returns the built-in bin tables.
func DefaultTables() map[domain.HazardType]Table {
	return map[domain.HazardType]Table{
		domain.ExtremeHeat: {
			Edges: []float64{0, 3, 8, 20}, Rates: []float64{0.001, 0.003, 0.010, 0.020},
			Ceiling: 30, Label: "warm spell duration (days/yr)",
		},
		domain.ExtremeCold: {
			Edges: []float64{0, 3, 7, 15}, Rates: []float64{0.0005, 0.002, 0.006, 0.012},
			Ceiling: 20, Label: "cold spell duration (days/yr)",
		},
		domain.Drought: {
			Edges: []float64{0, 1, 3, 6}, Rates: []float64{0.0, 0.002, 0.008, 0.020},
			Ceiling: 12, Label: "drought months (SPEI-12 < -1)",
		},
		domain.RiverFlood: {
			Edges: []float64{0, 0.3, 0.5, 0.7}, Rates: []float64{0.0005, 0.003, 0.012, 0.030},
			Ceiling: 1, Label: "wetness-rainfall blend (0-1)",
		},
		domain.UrbanFlood: {
			Edges: []float64{0, 2, 5, 10}, Rates: []float64{0.0005, 0.002, 0.008, 0.020},
			Ceiling: 15, Label: "heavy rain days (>= 30 mm)",
		},
		domain.SeaLevelRise: {
			Edges: []float64{0, 20, 50, 100}, Rates: []float64{0.0, 0.002, 0.010, 0.030},
			Ceiling: 100, Label: "sea level rise (cm)",
		},
		domain.Typhoon: {
			Edges: []float64{0, 1, 5, 15}, Rates: []float64{0.0, 0.005, 0.020, 0.050},
			Ceiling: 20, Label: "cumulative typhoon exposure index",
		},
		domain.Wildfire: {
			Edges: []float64{0, 11.2, 21.3, 38}, Rates: []float64{0.0005, 0.002, 0.008, 0.025},
			Ceiling: 50, Label: "annual 95th percentile FWI",
		},
		domain.WaterStress: {
			Edges: []float64{0, 0.1, 0.2, 0.4, 0.8}, Rates: []float64{0.0, 0.001, 0.003, 0.008, 0.015},
			Ceiling: 1, Label: "withdrawal / renewable resource",
		},
	}
}
