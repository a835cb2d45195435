package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Exposure factor names.
const (
	FactorRiverDistance = "river_distance"
	FactorCoastDistance = "coast_distance"
	FactorElevation     = "elevation"
	FactorImpervious    = "impervious"
	FactorLandCover     = "land_cover"
	FactorBasement      = "basement"
	FactorUse           = "use"
)

// ExposureDefaults are the conservative values substituted for unknown
// attributes.
type ExposureDefaults struct {
	DistanceM          float64 `yaml:"distance_m"`
	ElevationM         float64 `yaml:"elevation_m"`
	ImperviousFraction float64 `yaml:"impervious_fraction"`
	LandCover          string  `yaml:"land_cover"`
	Use                string  `yaml:"use"`
	BasementFloors     int     `yaml:"basement_floors"`
}

// ExposureConfig is the exposure rule table.
type ExposureConfig struct {
	RiverDistance Ladder                                   `yaml:"river_distance"`
	CoastDistance Ladder                                   `yaml:"coast_distance"`
	Elevation     Ladder                                   `yaml:"elevation"`
	ColdElevation Ladder                                   `yaml:"cold_elevation"`
	LandCover     map[domain.HazardType]map[string]float64 `yaml:"land_cover"`
	UseDemand     map[string]float64                       `yaml:"use_demand"`
	Weights       map[domain.HazardType]map[string]float64 `yaml:"weights"`
	Defaults      ExposureDefaults                         `yaml:"defaults"`
}

// DefaultExposureConfig returns the built-in exposure rules.
func DefaultExposureConfig() ExposureConfig {
	return ExposureConfig{
		RiverDistance: Ladder{Steps: []Step{{100, 100}, {300, 80}, {500, 60}, {1000, 40}, {2000, 20}}, Else: 10},
		CoastDistance: Ladder{Steps: []Step{{200, 100}, {500, 80}, {1000, 60}, {3000, 40}, {10000, 20}}, Else: 5},
		Elevation:     Ladder{Steps: []Step{{2, 100}, {5, 80}, {10, 60}, {20, 40}, {50, 20}}, Else: 10},
		ColdElevation: Ladder{Steps: []Step{{200, 40}, {500, 55}, {1000, 70}, {2000, 85}}, Else: 100},
		LandCover: map[domain.HazardType]map[string]float64{
			domain.ExtremeHeat: {
				domain.LandUrban: 100, domain.LandBare: 80, domain.LandCropland: 60, domain.LandGrassland: 50,
				domain.LandForest: 30, domain.LandWetland: 30, domain.LandWater: 20,
			},
			domain.Drought: {
				domain.LandCropland: 100, domain.LandGrassland: 80, domain.LandBare: 70, domain.LandForest: 60,
				domain.LandUrban: 50, domain.LandWetland: 40, domain.LandWater: 30,
			},
			domain.Wildfire: {
				domain.LandForest: 100, domain.LandGrassland: 80, domain.LandCropland: 50, domain.LandBare: 30,
				domain.LandUrban: 30, domain.LandWetland: 20, domain.LandWater: 0,
			},
		},
		UseDemand: map[string]float64{
			"factory": 100, "datacenter": 100, "commercial": 60, "residential": 50, "office": 40, "warehouse": 30,
		},
		Weights: map[domain.HazardType]map[string]float64{
			domain.ExtremeHeat:  {FactorLandCover: 0.6, FactorImpervious: 0.4},
			domain.ExtremeCold:  {FactorElevation: 1},
			domain.Drought:      {FactorLandCover: 1},
			domain.RiverFlood:   {FactorRiverDistance: 0.5, FactorElevation: 0.3, FactorBasement: 0.2},
			domain.UrbanFlood:   {FactorImpervious: 0.5, FactorElevation: 0.3, FactorBasement: 0.2},
			domain.SeaLevelRise: {FactorCoastDistance: 0.6, FactorElevation: 0.4},
			domain.Typhoon:      {FactorCoastDistance: 0.7, FactorElevation: 0.3},
			domain.Wildfire:     {FactorLandCover: 1},
			domain.WaterStress:  {FactorUse: 1},
		},
		Defaults: ExposureDefaults{
			DistanceM:          500,
			ElevationM:         10,
			ImperviousFraction: 0.5,
			LandCover:          domain.LandUrban,
			Use:                "commercial",
			BasementFloors:     1,
		},
	}
}

// ExposureScorer applies an ExposureConfig.
type ExposureScorer struct {
	cfg ExposureConfig
}

// NewExposureScorer validates cfg and returns a scorer.
func NewExposureScorer(cfg ExposureConfig) (*ExposureScorer, error) {
	for _, h := range domain.AllHazards() {
		w, ok := cfg.Weights[h]
		if !ok || len(w) == 0 {
			return nil, fmt.Errorf("exposure config: no weights for %s", h)
		}
		if err := checkWeights(w); err != nil {
			return nil, fmt.Errorf("exposure config: %s: %w", h, err)
		}
		if _, uses := w[FactorLandCover]; uses && cfg.LandCover[h] == nil {
			return nil, fmt.Errorf("exposure config: no land cover table for %s", h)
		}
	}
	return &ExposureScorer{cfg: cfg}, nil
}

// Score computes E for h. Unknown attributes are replaced by defaults and
// listed under Factors["fallback_fields"] with DataSource set to fallback.
func (s *ExposureScorer) Score(h domain.HazardType, attrs domain.LocationAttributes) (domain.ExposureScore, error) {
	weights, ok := s.cfg.Weights[h]
	if !ok {
		return domain.ExposureScore{}, fmt.Errorf("exposure: unknown hazard %q", h)
	}
	sp, b := attrs.Spatial, attrs.Building
	d := s.cfg.Defaults
	fb := newFallbacks()
	factors := map[string]any{}
	scores := map[string]float64{}

	for _, name := range sortedKeys(weights) {
		switch name {
		case FactorRiverDistance:
			v := fb.floatOr("distance_to_river_m", sp.DistanceToRiverM, d.DistanceM)
			factors["distance_to_river_m"] = v
			scores[name] = s.cfg.RiverDistance.Score(v)
		case FactorCoastDistance:
			v := fb.floatOr("distance_to_coast_m", sp.DistanceToCoastM, d.DistanceM)
			factors["distance_to_coast_m"] = v
			scores[name] = s.cfg.CoastDistance.Score(v)
		case FactorElevation:
			v := fb.floatOr("elevation_m", sp.ElevationM, d.ElevationM)
			factors["elevation_m"] = v
			if h == domain.ExtremeCold {
				scores[name] = s.cfg.ColdElevation.Score(v)
			} else {
				scores[name] = s.cfg.Elevation.Score(v)
			}
		case FactorImpervious:
			v := clip(fb.floatOr("impervious_fraction", sp.ImperviousFraction, d.ImperviousFraction), 0, 1)
			factors["impervious_fraction"] = v
			scores[name] = v * 100
		case FactorLandCover:
			lc := fb.strOr("land_cover", sp.LandCover, d.LandCover)
			table := s.cfg.LandCover[h]
			v, known := table[lc]
			if !known {
				fb.add("land_cover")
				lc = d.LandCover
				v = table[lc]
			}
			factors["land_cover"] = lc
			scores[name] = v
		case FactorBasement:
			n := fb.intOr("basement_floors", b.BasementFloors, d.BasementFloors)
			factors["basement_floors"] = n
			scores[name] = basementScore(n)
		case FactorUse:
			use := fb.strOr("use", b.Use, d.Use)
			v, known := s.cfg.UseDemand[use]
			if !known {
				fb.add("use")
				use = d.Use
				v = s.cfg.UseDemand[use]
			}
			factors["use"] = use
			scores[name] = v
		default:
			return domain.ExposureScore{}, fmt.Errorf("exposure: unknown factor %q for %s", name, h)
		}
	}

	score := weighted(weights, scores)
	for k, v := range scores {
		factors[k+"_score"] = round2(v)
	}
	src := fb.annotate(factors)
	return domain.ExposureScore{
		Score:      score,
		Level:      domain.LevelForScore(score),
		Factors:    factors,
		DataSource: src,
	}, nil
}

func basementScore(n int) float64 {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return 70
	default:
		return 100
	}
}

// weighted returns Σ w·s / Σ w, clipped to [0,100].
func weighted(weights, scores map[string]float64) float64 {
	var num, den float64
	for _, k := range sortedKeys(weights) {
		num += weights[k] * scores[k]
		den += weights[k]
	}
	if den == 0 {
		return 0
	}
	return clip(num/den, 0, 100)
}

func checkWeights(w map[string]float64) error {
	var total float64
	for k, v := range w {
		if v < 0 {
			return fmt.Errorf("negative weight for %s", k)
		}
		total += v
	}
	if total <= 0 {
		return fmt.Errorf("weights sum to zero")
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fallbacks records which attributes were defaulted.
type fallbacks struct {
	fields map[string]bool
}

func newFallbacks() *fallbacks {
	return &fallbacks{fields: map[string]bool{}}
}

func (f *fallbacks) add(name string) { f.fields[name] = true }

func (f *fallbacks) floatOr(name string, v *float64, def float64) float64 {
	if v == nil {
		f.add(name)
		return def
	}
	return *v
}

func (f *fallbacks) intOr(name string, v *int, def int) int {
	if v == nil {
		f.add(name)
		return def
	}
	return *v
}

func (f *fallbacks) boolOr(name string, v *bool, def bool) bool {
	if v == nil {
		f.add(name)
		return def
	}
	return *v
}

func (f *fallbacks) strOr(name, v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		f.add(name)
		return def
	}
	return v
}

// annotate adds the sorted fallback field list to factors and returns the
// resulting data source.
func (f *fallbacks) annotate(factors map[string]any) domain.DataSource {
	if len(f.fields) == 0 {
		return domain.SourceReal
	}
	factors["fallback_fields"] = sortedKeys(f.fields)
	return domain.SourceFallback
}
