package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataSource records whether a result was computed from real inputs or from
// documented fallbacks.
type DataSource string

const (
	SourceReal     DataSource = "real"
	SourceFallback DataSource = "fallback"
)

// Merge combines two provenance flags; any fallback taints the result.
func (d DataSource) Merge(o DataSource) DataSource {
	if d == SourceFallback || o == SourceFallback {
		return SourceFallback
	}
	return SourceReal
}

// RiskLevel is the five-band severity label shared by every 0-100 score.
type RiskLevel string

const (
	LevelVeryHigh RiskLevel = "Very High"
	LevelHigh     RiskLevel = "High"
	LevelMedium   RiskLevel = "Medium"
	LevelLow      RiskLevel = "Low"
	LevelVeryLow  RiskLevel = "Very Low"
)

// LevelForScore maps a 0-100 score to its severity band.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 80:
		return LevelVeryHigh
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	case score >= 20:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// HazardScore is the normalised hazard intensity H.
type HazardScore struct {
	Score     float64   `json:"score"`
	Level     RiskLevel `json:"level"`
	Indicator float64   `json:"indicator"`
	Ceiling   float64   `json:"ceiling"`
	Formula   string    `json:"formula"`
}

// ExposureScore is E with the inputs that drove it.
type ExposureScore struct {
	Score      float64        `json:"score"`
	Level      RiskLevel      `json:"level"`
	Factors    map[string]any `json:"factors,omitempty"`
	DataSource DataSource     `json:"data_source"`
}

// VulnerabilityScore is V with the inputs that drove it.
type VulnerabilityScore struct {
	Score      float64        `json:"score"`
	Level      RiskLevel      `json:"level"`
	Factors    map[string]any `json:"factors,omitempty"`
	DataSource DataSource     `json:"data_source"`
}

// AALResult is the scaled annual average loss.
// ExpectedLoss is nil when no asset value was supplied, which is distinct
// from a computed zero loss.
type AALResult struct {
	BaseAAL            float64          `json:"base_aal"`
	VulnerabilityScale float64          `json:"vulnerability_scale"`
	FinalAAL           float64          `json:"final_aal"`
	InsuranceRate      float64          `json:"insurance_rate"`
	ExpectedLoss       *decimal.Decimal `json:"expected_loss,omitempty"`
	Formula            string           `json:"formula"`
}

// IntegratedRisk is the H·E·V composite.
type IntegratedRisk struct {
	HScore              float64   `json:"h_score"`
	EScore              float64   `json:"e_score"`
	VScore              float64   `json:"v_score"`
	IntegratedRiskScore float64   `json:"integrated_risk_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
}

// ProbabilitySummary is the per-bin occurrence distribution behind base AAL.
// For monthly series the values are fractions of months, not annual probabilities.
type ProbabilitySummary struct {
	Bins    []string  `json:"bins"`
	Values  []float64 `json:"values"`
	Rates   []float64 `json:"damage_rates"`
	Unit    TimeUnit  `json:"unit"`
	Label   string    `json:"label"`
	Samples int       `json:"samples"`
	Skipped int       `json:"skipped"`
}

// YearProbabilities is one point of a smoothed probability curve.
type YearProbabilities struct {
	Year   int       `json:"year"`
	Values []float64 `json:"values"`
}

// HazardResult is the full per-hazard output for one location, scenario and year.
type HazardResult struct {
	ID               string              `json:"id"`
	Geo              Geo                 `json:"geo"`
	Hazard           HazardType          `json:"hazard"`
	Scenario         Scenario            `json:"scenario"`
	Year             int                 `json:"year"`
	HazardScore      HazardScore         `json:"hazard_score"`
	Exposure         ExposureScore       `json:"exposure"`
	Vulnerability    VulnerabilityScore  `json:"vulnerability"`
	Risk             IntegratedRisk      `json:"risk"`
	AAL              AALResult           `json:"aal"`
	Probabilities    ProbabilitySummary  `json:"probabilities"`
	ProbabilityCurve []YearProbabilities `json:"probability_curve,omitempty"`
	DataSource       DataSource          `json:"data_source"`
	Fallbacks        []string            `json:"fallbacks,omitempty"`
	Provenance       string              `json:"provenance"`
	ComputedAt       time.Time           `json:"computed_at"`
}

// Assessment groups every hazard result for one location.
type Assessment struct {
	ID         string         `json:"id"`
	RequestID  string         `json:"request_id,omitempty"`
	Geo        Geo            `json:"geo"`
	Scenario   Scenario       `json:"scenario"`
	Year       int            `json:"year"`
	Hazards    []HazardResult `json:"hazards"`
	MeanAAL    float64        `json:"mean_aal"`
	MeanRisk   float64        `json:"mean_risk"`
	DataSource DataSource     `json:"data_source"`
	ComputedAt time.Time      `json:"computed_at"`
}

// Hazard returns the result for h, if present.
func (a Assessment) Hazard(h HazardType) (HazardResult, bool) {
	for _, r := range a.Hazards {
		if r.Hazard == h {
			return r, true
		}
	}
	return HazardResult{}, false
}
