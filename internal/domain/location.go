package domain

import "github.com/shopspring/decimal"

// Land cover classes recognised by the exposure tables and the wetness model.
const (
	LandForest    = "forest"
	LandGrassland = "grassland"
	LandCropland  = "cropland"
	LandUrban     = "urban"
	LandWetland   = "wetland"
	LandWater     = "water"
	LandBare      = "bare"
)

// Building structure classes.
const (
	StructureRC      = "rc"
	StructureSteel   = "steel"
	StructureMasonry = "masonry"
	StructureWood    = "wood"
)

// SpatialAttributes describe the site. Nil pointers and empty strings mean the
// attribute is unknown; scorers substitute conservative defaults.
type SpatialAttributes struct {
	DistanceToRiverM   *float64 `json:"distance_to_river_m,omitempty" yaml:"distance_to_river_m,omitempty"`
	DistanceToCoastM   *float64 `json:"distance_to_coast_m,omitempty" yaml:"distance_to_coast_m,omitempty"`
	ElevationM         *float64 `json:"elevation_m,omitempty" yaml:"elevation_m,omitempty"`
	LandCover          string   `json:"land_cover,omitempty" yaml:"land_cover,omitempty"`
	ImperviousFraction *float64 `json:"impervious_fraction,omitempty" yaml:"impervious_fraction,omitempty"`
}

// BuildingAttributes describe the facility.
type BuildingAttributes struct {
	BuildYear      *int   `json:"build_year,omitempty" yaml:"build_year,omitempty"`
	Structure      string `json:"structure,omitempty" yaml:"structure,omitempty"`
	Use            string `json:"use,omitempty" yaml:"use,omitempty"`
	GroundFloors   *int   `json:"ground_floors,omitempty" yaml:"ground_floors,omitempty"`
	BasementFloors *int   `json:"basement_floors,omitempty" yaml:"basement_floors,omitempty"`
	HasWaterTank   *bool  `json:"has_water_tank,omitempty" yaml:"has_water_tank,omitempty"`
}

// Overlay returns b with every attribute set in o replacing the one in b.
func (b BuildingAttributes) Overlay(o BuildingAttributes) BuildingAttributes {
	if o.BuildYear != nil {
		b.BuildYear = o.BuildYear
	}
	if o.Structure != "" {
		b.Structure = o.Structure
	}
	if o.Use != "" {
		b.Use = o.Use
	}
	if o.GroundFloors != nil {
		b.GroundFloors = o.GroundFloors
	}
	if o.BasementFloors != nil {
		b.BasementFloors = o.BasementFloors
	}
	if o.HasWaterTank != nil {
		b.HasWaterTank = o.HasWaterTank
	}
	return b
}

// LocationAttributes bundles what a LocationAttributeProvider knows about a point.
type LocationAttributes struct {
	Spatial  SpatialAttributes  `json:"spatial" yaml:"spatial"`
	Building BuildingAttributes `json:"building" yaml:"building"`
}

// AssetInfo carries the optional financial inputs of an assessment.
// A nil Value means expected loss is not computed.
type AssetInfo struct {
	Value         *decimal.Decimal `json:"value,omitempty" yaml:"value,omitempty"`
	InsuranceRate float64          `json:"insurance_rate" yaml:"insurance_rate"`
}

// Float is a helper for optional numeric attributes.
func Float(v float64) *float64 { return &v }

// Int is a helper for optional integer attributes.
func Int(v int) *int { return &v }

// Bool is a helper for optional boolean attributes.
func Bool(v bool) *bool { return &v }
