package indicator

import (
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Wetness-model constants.
const (
	TWIMin        = 2.0
	TWIRange      = 13.0
	RainCeilingMm = 300.0
	TWIWeight     = 0.4
	RainWeight    = 0.6
	UnknownTWI    = 8.0
)

// twiByLandCover maps land cover to the midpoint of its typical topographic
// wetness index band.
var twiByLandCover = map[string]float64{
	domain.LandForest:    5,
	domain.LandGrassland: 7,
	domain.LandCropland:  8,
	domain.LandUrban:     9,
	domain.LandWetland:   11,
	domain.LandWater:     13.5,
	domain.LandBare:      6,
}

// TWIForLandCover returns the wetness index for a land cover class and
// whether the class was recognised. Unknown classes get UnknownTWI.
func TWIForLandCover(landCover string) (float64, bool) {
	v, ok := twiByLandCover[strings.ToLower(strings.TrimSpace(landCover))]
	if !ok {
		return UnknownTWI, false
	}
	return v, true
}

// NormalizeTWI maps a wetness index into [0,1].
func NormalizeTWI(twi float64) float64 {
	return clamp((twi-TWIMin)/TWIRange, 0, 1)
}

// NormalizeRain maps a 5-day maximum precipitation in mm into [0,1].
func NormalizeRain(rx5day float64) float64 {
	return clamp(rx5day/RainCeilingMm, 0, 1)
}

// RiverFloodIntensity blends the static wetness proxy with each sample of
// the Rx5day series. Negative or NaN rainfall samples become NaN.
func RiverFloodIntensity(rx5day domain.Series, twi float64) (domain.IntensitySeries, error) {
	if rx5day.Len() == 0 {
		return domain.IntensitySeries{}, domain.MissingData(domain.RiverFlood, "series", domain.VarRx5Day, domain.ErrNotFound)
	}
	twiNorm := NormalizeTWI(twi)
	unit := rx5day.Unit
	if unit == "" {
		unit = domain.Yearly
	}
	out := domain.IntensitySeries{
		Hazard: domain.RiverFlood,
		Unit:   unit,
		Times:  make([]time.Time, rx5day.Len()),
		Values: make([]float64, rx5day.Len()),
	}
	for i, p := range rx5day.Points {
		out.Times[i] = p.Time
		if math.IsNaN(p.Value) || p.Value < 0 {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = TWIWeight*twiNorm + RainWeight*NormalizeRain(p.Value)
	}
	return out, nil
}
