package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Vulnerability damage multiplier band.
const (
	MinVulnerabilityFactor = 0.9
	MaxVulnerabilityFactor = 1.1
)

// Integrate combines H, E and V into clip(H·E·V/10000, 0, 100).
func Integrate(h, e, v float64) domain.IntegratedRisk {
	score := clip(h*e*v/10000, 0, 100)
	return domain.IntegratedRisk{
		HScore:              h,
		EScore:              e,
		VScore:              v,
		IntegratedRiskScore: score,
		RiskLevel:           domain.LevelForScore(score),
	}
}

// VulnerabilityFactor maps V onto the ±10% damage multiplier band.
func VulnerabilityFactor(v float64) float64 {
	return clip(0.9+0.2*(v/100), MinVulnerabilityFactor, MaxVulnerabilityFactor)
}

// BaseAAL returns Σ probability[i] × rate[i].
func BaseAAL(probabilities, rates []float64) (float64, error) {
	if len(probabilities) != len(rates) {
		return 0, fmt.Errorf("base aal: %d probabilities for %d damage rates", len(probabilities), len(rates))
	}
	var aal float64
	for i, p := range probabilities {
		aal += p * rates[i]
	}
	return aal, nil
}

// ScaleAAL applies the vulnerability multiplier and insurance offset to base.
// The insurance rate is used as given. ExpectedLoss is computed only when
// the asset value is known.
func ScaleAAL(base, v float64, asset *domain.AssetInfo) domain.AALResult {
	var insurance float64
	if asset != nil {
		insurance = asset.InsuranceRate
	}
	f := VulnerabilityFactor(v)
	final := base * f * (1 - insurance)

	res := domain.AALResult{
		BaseAAL:            base,
		VulnerabilityScale: f,
		FinalAAL:           final,
		InsuranceRate:      insurance,
		Formula: fmt.Sprintf("AAL = %.6f × %.4f × (1 − %.4f) = %.6f",
			base, f, insurance, final),
	}
	if asset != nil && asset.Value != nil {
		loss := asset.Value.Mul(decimal.NewFromFloat(final)).Round(2)
		res.ExpectedLoss = &loss
		res.Formula += fmt.Sprintf("; expected loss = %s × %.6f = %s", asset.Value.String(), final, loss.String())
	}
	return res
}
