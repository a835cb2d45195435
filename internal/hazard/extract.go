package hazard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/indicator"
)

// Request identifies one hazard calculation.
type Request struct {
	Geo        domain.Geo
	Scenario   domain.Scenario
	Year       int
	Window     domain.TimeRange
	Attributes domain.LocationAttributes
}

// Extraction is an intensity series with the attributes that had to be
// defaulted while computing it.
type Extraction struct {
	Series     domain.IntensitySeries
	Fallbacks  []string
	Provenance string
}

// Extractor computes the intensity series of one hazard.
type Extractor func(ctx context.Context, src domain.ClimateSeriesProvider, req Request) (Extraction, error)

// fetch reads a required series. Absent data becomes a missing-data error;
// other provider errors are returned wrapped as upstream failures.
func fetch(ctx context.Context, src domain.ClimateSeriesProvider, h domain.HazardType, q domain.SeriesQuery) (domain.Series, error) {
	s, err := src.Series(ctx, q)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Series{}, domain.MissingData(h, "series", q.Variable, err)
		}
		return domain.Series{}, fmt.Errorf("fetch %s for %s: %w", q.Variable, h, err)
	}
	if s.Len() == 0 {
		return domain.Series{}, domain.MissingData(h, "series", q.Variable, domain.ErrNotFound)
	}
	return s, nil
}

// fetchOptional is fetch for inputs that have a documented substitute.
func fetchOptional(ctx context.Context, src domain.ClimateSeriesProvider, h domain.HazardType, q domain.SeriesQuery) (domain.Series, bool, error) {
	s, err := fetch(ctx, src, h, q)
	if err != nil {
		if domain.IsMissingData(err) {
			return domain.Series{}, false, nil
		}
		return domain.Series{}, false, err
	}
	return s, true, nil
}

func query(req Request, variable string) domain.SeriesQuery {
	return domain.SeriesQuery{Geo: req.Geo, Variable: variable, Scenario: req.Scenario, Range: req.Window}
}

func describe(variables []string, s domain.Scenario, r domain.TimeRange) string {
	return fmt.Sprintf("%s %s %d-%d", strings.Join(variables, "+"), s, r.Start, r.End)
}

func directExtractor(spec indicator.DirectSpec) Extractor {
	return func(ctx context.Context, src domain.ClimateSeriesProvider, req Request) (Extraction, error) {
		s, err := fetch(ctx, src, spec.Hazard, query(req, spec.Variable))
		if err != nil {
			return Extraction{}, err
		}
		series, err := indicator.Direct(spec, s)
		if err != nil {
			return Extraction{}, err
		}
		return Extraction{
			Series:     series,
			Provenance: describe([]string{spec.Variable}, req.Scenario, req.Window),
		}, nil
	}
}

func extractRiverFlood(ctx context.Context, src domain.ClimateSeriesProvider, req Request) (Extraction, error) {
	rx5, err := fetch(ctx, src, domain.RiverFlood, query(req, domain.VarRx5Day))
	if err != nil {
		return Extraction{}, err
	}
	twi, known := indicator.TWIForLandCover(req.Attributes.Spatial.LandCover)
	series, err := indicator.RiverFloodIntensity(rx5, twi)
	if err != nil {
		return Extraction{}, err
	}
	ex := Extraction{
		Series: series,
		Provenance: fmt.Sprintf("%s; TWI %.1f (%s)",
			describe([]string{domain.VarRx5Day}, req.Scenario, req.Window), twi, landCoverName(req.Attributes.Spatial.LandCover)),
	}
	if !known {
		ex.Fallbacks = append(ex.Fallbacks, "land_cover")
	}
	return ex, nil
}

func landCoverName(lc string) string {
	if lc == "" {
		return "unknown"
	}
	return lc
}

func extractWildfire(ctx context.Context, src domain.ClimateSeriesProvider, req Request) (Extraction, error) {
	vars := []string{domain.VarTas, domain.VarHurs, domain.VarWind, domain.VarPr}
	series := make([]domain.Series, len(vars))
	for i, v := range vars {
		s, err := fetch(ctx, src, domain.Wildfire, query(req, v))
		if err != nil {
			return Extraction{}, err
		}
		series[i] = s
	}
	out, err := indicator.FireWeatherIntensity(indicator.FireWeatherInputs{
		Latitude: req.Geo.Lat,
		Tas:      series[0],
		Hurs:     series[1],
		Wind:     series[2],
		Pr:       series[3],
	})
	if err != nil {
		return Extraction{}, err
	}
	return Extraction{Series: out, Provenance: describe(vars, req.Scenario, req.Window) + "; annual P95 FWI"}, nil
}

func (r *Registry) extractTyphoon(ctx context.Context, src domain.ClimateSeriesProvider, req Request) (Extraction, error) {
	tracks, err := src.StormTracks(ctx, domain.TrackQuery{Geo: req.Geo, RadiusKm: r.periods.TrackRadiusKm, Range: r.periods.Tracks})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Extraction{}, domain.MissingData(domain.Typhoon, "tracks", "best track", err)
		}
		return Extraction{}, fmt.Errorf("fetch storm tracks: %w", err)
	}
	series := indicator.TyphoonIntensity(req.Geo, tracks, r.periods.Tracks)
	return Extraction{
		Series: series,
		Provenance: fmt.Sprintf("best track %d-%d within %.0f km (%d points)",
			r.periods.Tracks.Start, r.periods.Tracks.End, r.periods.TrackRadiusKm, len(tracks)),
	}, nil
}

func (r *Registry) climateInputs(ctx context.Context, src domain.ClimateSeriesProvider, q domain.SeriesQuery) (indicator.ClimateInputs, []string, error) {
	var in indicator.ClimateInputs
	var missing []string

	required := map[string]*domain.Series{
		domain.VarTasmax: &in.Tasmax,
		domain.VarTasmin: &in.Tasmin,
		domain.VarPr:     &in.Pr,
	}
	for _, v := range []string{domain.VarTasmax, domain.VarTasmin, domain.VarPr} {
		q.Variable = v
		s, err := fetch(ctx, src, domain.WaterStress, q)
		if err != nil {
			return in, nil, err
		}
		*required[v] = s
	}

	optional := map[string]*domain.Series{
		domain.VarTas:  &in.Tas,
		domain.VarHurs: &in.Hurs,
		domain.VarWind: &in.Wind,
		domain.VarRsds: &in.Rsds,
	}
	for _, v := range []string{domain.VarTas, domain.VarHurs, domain.VarWind, domain.VarRsds} {
		q.Variable = v
		s, ok, err := fetchOptional(ctx, src, domain.WaterStress, q)
		if err != nil {
			return in, nil, err
		}
		if !ok {
			missing = append(missing, v)
			continue
		}
		*optional[v] = s
	}
	return in, missing, nil
}

func (r *Registry) extractWaterStress(ctx context.Context, src domain.ClimateSeriesProvider, req Request) (Extraction, error) {
	hist := domain.SeriesQuery{Geo: req.Geo, Scenario: domain.Historical, Range: r.periods.Baseline}

	hist.Variable = domain.VarDischarge
	discharge, err := fetch(ctx, src, domain.WaterStress, hist)
	if err != nil {
		return Extraction{}, err
	}
	hist.Variable = domain.VarWaterWithdrawal
	withdrawal, err := fetch(ctx, src, domain.WaterStress, hist)
	if err != nil {
		return Extraction{}, err
	}

	baseline, baseMissing, err := r.climateInputs(ctx, src, hist)
	if err != nil {
		return Extraction{}, err
	}
	projection, projMissing, err := r.climateInputs(ctx, src, query(req, ""))
	if err != nil {
		return Extraction{}, err
	}

	var fallbacks []string
	elev := r.periods.DefaultElevationM
	if e := req.Attributes.Spatial.ElevationM; e != nil {
		elev = *e
	} else {
		fallbacks = append(fallbacks, "elevation_m")
	}

	series, detail, err := indicator.WaterStressIntensity(indicator.WaterStressInput{
		Geo:            req.Geo,
		ElevationM:     elev,
		Scenario:       req.Scenario,
		Range:          req.Window,
		BaselinePeriod: r.periods.Baseline,
		Discharge:      discharge,
		Withdrawal:     withdrawal,
		Baseline:       baseline,
		Projection:     projection,
		Curves:         r.curves,
	})
	if err != nil {
		return Extraction{}, err
	}
	if detail.RatioFallback {
		fallbacks = append(fallbacks, "baseline_effective_precipitation")
	}
	fallbacks = append(fallbacks, dedupe(append(baseMissing, projMissing...))...)

	return Extraction{
		Series:    series,
		Fallbacks: fallbacks,
		Provenance: fmt.Sprintf("TRWR %.3g m³ (discharge %d-%d), withdrawal %.3g m³, baseline EP %.1f mm; %s",
			detail.TRWR, r.periods.Baseline.Start, r.periods.Baseline.End, detail.BaselineWithdrawal, detail.BaselineEP,
			describe([]string{"tasmax", "tasmin", "pr"}, req.Scenario, req.Window)),
	}, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
