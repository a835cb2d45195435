package scoring

import (
	"fmt"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Vulnerability factor names.
const (
	FactorAge       = "age"
	FactorStructure = "structure"
	FactorFloors    = "floors"
	FactorWaterTank = "water_tank"
)

// VulnerabilityDefaults are the conservative values substituted for unknown
// building attributes.
type VulnerabilityDefaults struct {
	BuildYear      int    `yaml:"build_year"`
	Structure      string `yaml:"structure"`
	GroundFloors   int    `yaml:"ground_floors"`
	BasementFloors int    `yaml:"basement_floors"`
	HasWaterTank   bool   `yaml:"has_water_tank"`
	Use            string `yaml:"use"`
}

// VulnerabilityConfig is the vulnerability rule table. Structure scores are
// keyed by hazard because materials fail differently under wind, fire,
// water and temperature.
type VulnerabilityConfig struct {
	BuildYear    Ladder                                   `yaml:"build_year"`
	GroundFloors Ladder                                   `yaml:"ground_floors"`
	Structure    map[domain.HazardType]map[string]float64 `yaml:"structure"`
	WaterTank    map[bool]float64                         `yaml:"water_tank"`
	UseDemand    map[string]float64                       `yaml:"use_demand"`
	Weights      map[domain.HazardType]map[string]float64 `yaml:"weights"`
	Defaults     VulnerabilityDefaults                    `yaml:"defaults"`
}

// DefaultVulnerabilityConfig returns the built-in vulnerability rules.
func DefaultVulnerabilityConfig() VulnerabilityConfig {
	thermal := map[string]float64{
		domain.StructureWood: 70, domain.StructureMasonry: 50, domain.StructureSteel: 60, domain.StructureRC: 40,
	}
	flood := map[string]float64{
		domain.StructureWood: 80, domain.StructureMasonry: 60, domain.StructureSteel: 50, domain.StructureRC: 40,
	}
	return VulnerabilityConfig{
		BuildYear:    Ladder{Steps: []Step{{1970, 100}, {1981, 80}, {2000, 60}, {2010, 40}}, Else: 20},
		GroundFloors: Ladder{Steps: []Step{{2, 100}, {3, 80}, {6, 50}, {11, 30}}, Else: 20},
		Structure: map[domain.HazardType]map[string]float64{
			domain.ExtremeHeat:  thermal,
			domain.ExtremeCold:  thermal,
			domain.RiverFlood:   flood,
			domain.UrbanFlood:   flood,
			domain.SeaLevelRise: flood,
			domain.Typhoon: {
				domain.StructureWood: 90, domain.StructureMasonry: 70, domain.StructureSteel: 50, domain.StructureRC: 30,
			},
			domain.Wildfire: {
				domain.StructureWood: 100, domain.StructureMasonry: 50, domain.StructureSteel: 40, domain.StructureRC: 30,
			},
		},
		WaterTank: map[bool]float64{true: 30, false: 70},
		UseDemand: map[string]float64{
			"factory": 100, "datacenter": 100, "commercial": 60, "residential": 50, "office": 40, "warehouse": 30,
		},
		Weights: map[domain.HazardType]map[string]float64{
			domain.ExtremeHeat:  {FactorAge: 0.5, FactorStructure: 0.5},
			domain.ExtremeCold:  {FactorAge: 0.5, FactorStructure: 0.5},
			domain.Drought:      {FactorWaterTank: 0.7, FactorAge: 0.3},
			domain.RiverFlood:   {FactorAge: 0.3, FactorStructure: 0.3, FactorFloors: 0.2, FactorBasement: 0.2},
			domain.UrbanFlood:   {FactorAge: 0.3, FactorStructure: 0.3, FactorFloors: 0.2, FactorBasement: 0.2},
			domain.SeaLevelRise: {FactorAge: 0.3, FactorStructure: 0.3, FactorFloors: 0.2, FactorBasement: 0.2},
			domain.Typhoon:      {FactorAge: 0.5, FactorStructure: 0.5},
			domain.Wildfire:     {FactorAge: 0.4, FactorStructure: 0.6},
			domain.WaterStress:  {FactorWaterTank: 0.7, FactorUse: 0.3},
		},
		Defaults: VulnerabilityDefaults{
			BuildYear:      1990,
			Structure:      domain.StructureMasonry,
			GroundFloors:   3,
			BasementFloors: 1,
			HasWaterTank:   false,
			Use:            "commercial",
		},
	}
}

// VulnerabilityScorer applies a VulnerabilityConfig.
type VulnerabilityScorer struct {
	cfg VulnerabilityConfig
}

// NewVulnerabilityScorer validates cfg and returns a scorer.
func NewVulnerabilityScorer(cfg VulnerabilityConfig) (*VulnerabilityScorer, error) {
	for _, h := range domain.AllHazards() {
		w, ok := cfg.Weights[h]
		if !ok || len(w) == 0 {
			return nil, fmt.Errorf("vulnerability config: no weights for %s", h)
		}
		if err := checkWeights(w); err != nil {
			return nil, fmt.Errorf("vulnerability config: %s: %w", h, err)
		}
		if _, uses := w[FactorStructure]; uses && cfg.Structure[h] == nil {
			return nil, fmt.Errorf("vulnerability config: no structure table for %s", h)
		}
	}
	return &VulnerabilityScorer{cfg: cfg}, nil
}

// Score computes V for h from building attributes.
func (s *VulnerabilityScorer) Score(h domain.HazardType, b domain.BuildingAttributes) (domain.VulnerabilityScore, error) {
	weights, ok := s.cfg.Weights[h]
	if !ok {
		return domain.VulnerabilityScore{}, fmt.Errorf("vulnerability: unknown hazard %q", h)
	}
	d := s.cfg.Defaults
	fb := newFallbacks()
	factors := map[string]any{}
	scores := map[string]float64{}

	for _, name := range sortedKeys(weights) {
		switch name {
		case FactorAge:
			y := fb.intOr("build_year", b.BuildYear, d.BuildYear)
			factors["build_year"] = y
			scores[name] = s.cfg.BuildYear.Score(float64(y))
		case FactorStructure:
			st := fb.strOr("structure", b.Structure, d.Structure)
			table := s.cfg.Structure[h]
			v, known := table[st]
			if !known {
				fb.add("structure")
				st = d.Structure
				v = table[st]
			}
			factors["structure"] = st
			scores[name] = v
		case FactorFloors:
			n := fb.intOr("ground_floors", b.GroundFloors, d.GroundFloors)
			factors["ground_floors"] = n
			scores[name] = s.cfg.GroundFloors.Score(float64(n))
		case FactorBasement:
			n := fb.intOr("basement_floors", b.BasementFloors, d.BasementFloors)
			factors["basement_floors"] = n
			scores[name] = basementScore(n)
		case FactorWaterTank:
			tank := fb.boolOr("has_water_tank", b.HasWaterTank, d.HasWaterTank)
			factors["has_water_tank"] = tank
			scores[name] = s.cfg.WaterTank[tank]
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
			return domain.VulnerabilityScore{}, fmt.Errorf("vulnerability: unknown factor %q for %s", name, h)
		}
	}

	score := weighted(weights, scores)
	for k, v := range scores {
		factors[k+"_score"] = round2(v)
	}
	src := fb.annotate(factors)
	return domain.VulnerabilityScore{
		Score:      score,
		Level:      domain.LevelForScore(score),
		Factors:    factors,
		DataSource: src,
	}, nil
}
