package domain

import (
	"fmt"
	"strings"
)

// HazardType identifies one of the nine fixed hazard categories.
type HazardType string

const (
	ExtremeHeat  HazardType = "extreme_heat"
	ExtremeCold  HazardType = "extreme_cold"
	Drought      HazardType = "drought"
	RiverFlood   HazardType = "river_flood"
	UrbanFlood   HazardType = "urban_flood"
	SeaLevelRise HazardType = "sea_level_rise"
	Typhoon      HazardType = "typhoon"
	Wildfire     HazardType = "wildfire"
	WaterStress  HazardType = "water_stress"
)

var allHazards = []HazardType{
	ExtremeHeat, ExtremeCold, Drought, RiverFlood, UrbanFlood,
	SeaLevelRise, Typhoon, Wildfire, WaterStress,
}

// AllHazards returns every hazard type in canonical order.
func AllHazards() []HazardType {
	return append([]HazardType(nil), allHazards...)
}

// Valid reports whether h is one of the known hazard types.
func (h HazardType) Valid() bool {
	for _, known := range allHazards {
		if h == known {
			return true
		}
	}
	return false
}

// ParseHazardType normalizes s (case, dashes, spaces) and validates it.
func ParseHazardType(s string) (HazardType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	h := HazardType(norm)
	if !h.Valid() {
		return "", fmt.Errorf("unknown hazard type %q", s)
	}
	return h, nil
}

// Scenario is an emissions pathway, or the historical selector for observed data.
type Scenario string

const (
	SSP126     Scenario = "SSP1-2.6"
	SSP245     Scenario = "SSP2-4.5"
	SSP370     Scenario = "SSP3-7.0"
	SSP585     Scenario = "SSP5-8.5"
	Historical Scenario = "historical"
)

var pathways = []Scenario{SSP126, SSP245, SSP370, SSP585}

// Scenarios returns the four pathways ordered from low to high forcing.
func Scenarios() []Scenario {
	return append([]Scenario(nil), pathways...)
}

// Rank returns the position of s in the low-to-high forcing order, or -1 for
// the historical selector and unknown values.
func (s Scenario) Rank() int {
	for i, p := range pathways {
		if s == p {
			return i
		}
	}
	return -1
}

// IsPathway reports whether s is one of the four emissions pathways.
func (s Scenario) IsPathway() bool {
	return s.Rank() >= 0
}

// ParseScenario accepts canonical names ("SSP2-4.5") as well as compact forms
// ("ssp245") and "historical".
func ParseScenario(s string) (Scenario, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == string(Historical) {
		return Historical, nil
	}
	compact := strings.NewReplacer("-", "", ".", "", "_", "", " ", "").Replace(norm)
	for _, p := range pathways {
		pc := strings.NewReplacer("-", "", ".", "").Replace(strings.ToLower(string(p)))
		if compact == pc {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown scenario %q", s)
}

// TimeUnit tags the sampling interval of a series.
type TimeUnit string

const (
	Yearly  TimeUnit = "yearly"
	Monthly TimeUnit = "monthly"
	Daily   TimeUnit = "daily"
)
