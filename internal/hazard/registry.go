package hazard

import (
	"context"
	"fmt"

	"github.com/couchcryptid/climate-risk-engine/internal/binning"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/indicator"
	"github.com/couchcryptid/climate-risk-engine/internal/scoring"
)

// Periods fixes the historical spans used by hazards that read observed data.
type Periods struct {
	Baseline          domain.TimeRange `yaml:"baseline"`
	Tracks            domain.TimeRange `yaml:"tracks"`
	TrackRadiusKm     float64          `yaml:"track_radius_km"`
	DefaultElevationM float64          `yaml:"default_elevation_m"`
}

// DefaultPeriods returns the 1991-2020 climate normal for baselines and the
// 1951-2020 best-track record for typhoons.
func DefaultPeriods() Periods {
	return Periods{
		Baseline:          domain.TimeRange{Start: 1991, End: 2020},
		Tracks:            domain.TimeRange{Start: 1951, End: 2020},
		TrackRadiusKm:     1000,
		DefaultElevationM: 10,
	}
}

// Entry is everything the engine knows about one hazard.
type Entry struct {
	Hazard     domain.HazardType
	Table      Table
	Classifier *binning.Classifier
	Smoothed   binning.Smoothed
	Extract    Extractor
}

// Registry maps each hazard to its entry and carries the shared scorer
// configuration. It is immutable after New and safe for concurrent use.
type Registry struct {
	entries       map[domain.HazardType]*Entry
	periods       Periods
	curves        indicator.WaterStressCurves
	exposure      *scoring.ExposureScorer
	vulnerability *scoring.VulnerabilityScorer
}

// New builds a registry from cfg, validating every table.
func New(cfg Config) (*Registry, error) {
	if err := cfg.WaterStressCurves.Validate(); err != nil {
		return nil, err
	}
	exp, err := scoring.NewExposureScorer(cfg.Exposure)
	if err != nil {
		return nil, err
	}
	vuln, err := scoring.NewVulnerabilityScorer(cfg.Vulnerability)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		entries:       make(map[domain.HazardType]*Entry, len(domain.AllHazards())),
		periods:       cfg.Periods,
		curves:        cfg.WaterStressCurves,
		exposure:      exp,
		vulnerability: vuln,
	}

	direct := indicator.DirectSpecs()
	for _, h := range domain.AllHazards() {
		table, ok := cfg.Tables[h]
		if !ok {
			return nil, fmt.Errorf("hazard %s: no bin table", h)
		}
		c, err := table.Classifier()
		if err != nil {
			return nil, fmt.Errorf("hazard %s: %w", h, err)
		}

		var extract Extractor
		switch h {
		case domain.RiverFlood:
			extract = extractRiverFlood
		case domain.Wildfire:
			extract = extractWildfire
		case domain.Typhoon:
			extract = r.extractTyphoon
		case domain.WaterStress:
			extract = r.extractWaterStress
		default:
			extract = directExtractor(direct[h])
		}

		r.entries[h] = &Entry{
			Hazard:     h,
			Table:      table,
			Classifier: c,
			Smoothed:   binning.NewSmoothed(c),
			Extract:    extract,
		}
	}
	return r, nil
}

// Default returns a registry with the built-in tables.
func Default() *Registry {
	r, err := New(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default hazard registry: %v", err))
	}
	return r
}

// Entry returns the entry for h.
func (r *Registry) Entry(h domain.HazardType) (*Entry, error) {
	e, ok := r.entries[h]
	if !ok {
		return nil, fmt.Errorf("unknown hazard %q", h)
	}
	return e, nil
}

// Extract runs the extractor of h.
func (r *Registry) Extract(ctx context.Context, h domain.HazardType, src domain.ClimateSeriesProvider, req Request) (Extraction, error) {
	e, err := r.Entry(h)
	if err != nil {
		return Extraction{}, err
	}
	return e.Extract(ctx, src, req)
}

// Exposure returns the exposure scorer.
func (r *Registry) Exposure() *scoring.ExposureScorer { return r.exposure }

// Vulnerability returns the vulnerability scorer.
func (r *Registry) Vulnerability() *scoring.VulnerabilityScorer { return r.vulnerability }

// Periods returns the historical spans in use.
func (r *Registry) Periods() Periods { return r.periods }
