package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// DirectSpec describes a hazard whose indicator is a pre-computed climate
// extreme index read straight from a provider.
type DirectSpec struct {
	Hazard   domain.HazardType
	Variable string
	Unit     domain.TimeUnit

	// FloorAtZero clamps negative samples to 0 instead of dropping them.
	// A sea-level fall scores as no change.
	FloorAtZero bool
}

// DirectSpecs lists the pass-through hazards and the variables they read.
func DirectSpecs() map[domain.HazardType]DirectSpec {
	return map[domain.HazardType]DirectSpec{
		domain.ExtremeHeat:  {Hazard: domain.ExtremeHeat, Variable: domain.VarWSDI, Unit: domain.Yearly},
		domain.ExtremeCold:  {Hazard: domain.ExtremeCold, Variable: domain.VarCSDI, Unit: domain.Yearly},
		domain.Drought:      {Hazard: domain.Drought, Variable: domain.VarDroughtMonths, Unit: domain.Yearly},
		domain.UrbanFlood:   {Hazard: domain.UrbanFlood, Variable: domain.VarHeavyRainDays, Unit: domain.Yearly},
		domain.SeaLevelRise: {Hazard: domain.SeaLevelRise, Variable: domain.VarSeaLevelRise, Unit: domain.Yearly, FloorAtZero: true},
	}
}

// Direct validates a pre-computed index series and returns it as intensity.
// Negative samples become NaN for counts and 0 for floored indices.
func Direct(spec DirectSpec, s domain.Series) (domain.IntensitySeries, error) {
	if s.Len() == 0 {
		return domain.IntensitySeries{}, domain.MissingData(spec.Hazard, "series", spec.Variable, domain.ErrNotFound)
	}
	if s.Unit != "" && s.Unit != spec.Unit {
		return domain.IntensitySeries{}, domain.Computation(spec.Hazard, "unit",
			fmt.Sprintf("%s is %s, want %s", spec.Variable, s.Unit, spec.Unit))
	}

	out := domain.IntensitySeries{
		Hazard: spec.Hazard,
		Unit:   spec.Unit,
		Times:  make([]time.Time, s.Len()),
		Values: make([]float64, s.Len()),
	}
	for i, p := range s.Points {
		v := p.Value
		if v < 0 {
			if spec.FloorAtZero {
				v = 0
			} else {
				v = math.NaN()
			}
		}
		out.Times[i] = p.Time
		out.Values[i] = v
	}
	return out, nil
}
