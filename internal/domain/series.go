package domain

import (
	"math"
	"time"
)

// Climate variable names understood by series providers.
const (
	VarWSDI            = "wsdi"             // warm spell duration index, days/yr
	VarCSDI            = "csdi"             // cold spell duration index, days/yr
	VarDroughtMonths   = "drought_months"   // months/yr with SPEI-12 below -1
	VarRx5Day          = "rx5day"           // max 5-day precipitation, mm
	VarHeavyRainDays   = "heavy_rain_days"  // days/yr with >= 30 mm
	VarSeaLevelRise    = "sea_level_rise"   // cm relative to 1995-2014
	VarTas             = "tas"              // mean air temperature, °C
	VarTasmax          = "tasmax"           // °C
	VarTasmin          = "tasmin"           // °C
	VarHurs            = "hurs"             // relative humidity, %
	VarWind            = "sfcwind"          // 10 m wind speed, m/s
	VarPr              = "pr"               // precipitation, mm per period
	VarRsds            = "rsds"             // surface downwelling shortwave, W/m²
	VarDischarge       = "discharge"        // river discharge, m³/s (historical, daily)
	VarWaterWithdrawal = "water_withdrawal" // basin withdrawal, m³/yr (historical)
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether the coordinate lies within WGS-84 bounds.
func (g Geo) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180 &&
		!math.IsNaN(g.Lat) && !math.IsNaN(g.Lon)
}

// TimeRange is an inclusive span of calendar years.
type TimeRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Contains reports whether year lies within the range.
func (r TimeRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// Years lists every year in the range in ascending order.
func (r TimeRange) Years() []int {
	if r.End < r.Start {
		return nil
	}
	out := make([]int, 0, r.End-r.Start+1)
	for y := r.Start; y <= r.End; y++ {
		out = append(out, y)
	}
	return out
}

// WindowAround returns [year-half, year+half].
func WindowAround(year, half int) TimeRange {
	return TimeRange{Start: year - half, End: year + half}
}

// Point is one timestamped sample. Missing observations carry NaN.
type Point struct {
	Time  time.Time `json:"time" yaml:"time"`
	Value float64   `json:"value" yaml:"value"`
}

// Series is an ordered climate variable series as returned by a provider.
type Series struct {
	Variable string   `json:"variable" yaml:"variable"`
	Unit     TimeUnit `json:"unit" yaml:"unit"`
	Points   []Point  `json:"points" yaml:"points"`
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.Points) }

// Values returns the sample values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// SeriesQuery selects one variable at one location for one scenario and period.
type SeriesQuery struct {
	Geo      Geo
	Variable string
	Scenario Scenario
	Range    TimeRange
}

// TrackQuery selects historical storm track points near a location.
type TrackQuery struct {
	Geo      Geo
	RadiusKm float64
	Range    TimeRange
}

// TrackPoint is one best-track observation of a tropical cyclone with its wind
// radii ellipses. Angles are degrees counter-clockwise from east.
type TrackPoint struct {
	StormID       string    `json:"storm_id" yaml:"storm_id"`
	Time          time.Time `json:"time" yaml:"time"`
	Lat           float64   `json:"lat" yaml:"lat"`
	Lon           float64   `json:"lon" yaml:"lon"`
	Grade         string    `json:"grade" yaml:"grade"`
	GaleMajorKm   float64   `json:"gale_major_km" yaml:"gale_major_km"`
	GaleMinorKm   float64   `json:"gale_minor_km" yaml:"gale_minor_km"`
	GaleAngleDeg  float64   `json:"gale_angle_deg" yaml:"gale_angle_deg"`
	StormMajorKm  float64   `json:"storm_major_km" yaml:"storm_major_km"`
	StormMinorKm  float64   `json:"storm_minor_km" yaml:"storm_minor_km"`
	StormAngleDeg float64   `json:"storm_angle_deg" yaml:"storm_angle_deg"`
}

// IntensitySeries is the per-period hazard indicator produced by an extractor.
// It is created fresh per calculation and never mutated afterwards.
type IntensitySeries struct {
	Hazard HazardType  `json:"hazard"`
	Unit   TimeUnit    `json:"unit"`
	Times  []time.Time `json:"times,omitempty"`
	Values []float64   `json:"values"`
}

// Len returns the number of samples.
func (s IntensitySeries) Len() int { return len(s.Values) }

// FallbackIntensity is the single zero-valued sample substituted when an
// extractor has no usable input.
func FallbackIntensity(h HazardType) IntensitySeries {
	return IntensitySeries{Hazard: h, Unit: Yearly, Values: []float64{0}}
}

// YearStart returns January 1st of year in UTC.
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
