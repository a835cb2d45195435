// Package assess runs the full hazard, exposure, vulnerability and loss
// calculation for one location and applies the documented fallbacks when
// inputs are missing.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/binning"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/hazard"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/scoring"
)

// DefaultWindowYears is the half-width W of the evaluation window [Y-W, Y+W].
const DefaultWindowYears = 10

// Assessor computes hazard results. It holds no per-request state and is
// safe for concurrent use.
type Assessor struct {
	registry *hazard.Registry
	climate  domain.ClimateSeriesProvider
	attrs    domain.LocationAttributeProvider
	window   int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates an Assessor. attrs may be nil, in which case every site is
// scored with default attributes. A non-positive window selects DefaultWindowYears.
func New(registry *hazard.Registry, climate domain.ClimateSeriesProvider, attrs domain.LocationAttributeProvider, window int, logger *slog.Logger, metrics *observability.Metrics) *Assessor {
	if window <= 0 {
		window = DefaultWindowYears
	}
	return &Assessor{
		registry: registry,
		climate:  climate,
		attrs:    attrs,
		window:   window,
		logger:   logger,
		metrics:  metrics,
	}
}

// Window returns the evaluation window for a target year.
func (a *Assessor) Window(year int) domain.TimeRange {
	return domain.WindowAround(year, a.window)
}

// Assess evaluates every requested hazard at one location. Missing data is
// replaced by documented fallbacks; an upstream provider failure aborts the
// assessment and is returned.
func (a *Assessor) Assess(ctx context.Context, req domain.AssessmentRequest) (domain.Assessment, error) {
	if err := req.Validate(); err != nil {
		return domain.Assessment{}, err
	}

	attrs, attrSource, err := domain.LookupAttributes(ctx, req.Geo, a.attrs, a.logger)
	if err != nil {
		a.metrics.AssessmentErrors.Inc()
		return domain.Assessment{}, fmt.Errorf("lookup attributes at %s: %w", domain.LocationKey(req.Geo), err)
	}
	if attrSource == domain.SourceFallback {
		a.metrics.Fallbacks.WithLabelValues("all", "attributes").Inc()
	}
	if req.Building != nil {
		attrs.Building = attrs.Building.Overlay(*req.Building)
	}

	hazards := req.HazardList()
	out := domain.Assessment{
		ID:         domain.AssessmentID(req.Geo, req.Scenario, req.Year),
		RequestID:  req.RequestID,
		Geo:        req.Geo,
		Scenario:   req.Scenario,
		Year:       req.Year,
		Hazards:    make([]domain.HazardResult, 0, len(hazards)),
		DataSource: attrSource,
		ComputedAt: domain.Now(),
	}

	for _, h := range hazards {
		res, err := a.assessHazard(ctx, h, req, attrs)
		if err != nil {
			a.metrics.AssessmentErrors.Inc()
			return domain.Assessment{}, err
		}
		out.Hazards = append(out.Hazards, res)
		out.MeanAAL += res.AAL.FinalAAL
		out.MeanRisk += res.Risk.IntegratedRiskScore
		out.DataSource = out.DataSource.Merge(res.DataSource)
	}
	if n := len(out.Hazards); n > 0 {
		out.MeanAAL /= float64(n)
		out.MeanRisk /= float64(n)
	}

	a.metrics.Assessments.Inc()
	a.logger.Debug("assessment complete",
		"id", out.ID,
		"lat", req.Geo.Lat,
		"lon", req.Geo.Lon,
		"scenario", req.Scenario,
		"year", req.Year,
		"mean_aal", out.MeanAAL,
		"data_source", out.DataSource,
	)
	return out, nil
}

func (a *Assessor) assessHazard(ctx context.Context, h domain.HazardType, req domain.AssessmentRequest, attrs domain.LocationAttributes) (domain.HazardResult, error) {
	start := time.Now()
	defer func() {
		a.metrics.HazardDuration.WithLabelValues(string(h)).Observe(time.Since(start).Seconds())
	}()

	entry, err := a.registry.Entry(h)
	if err != nil {
		return domain.HazardResult{}, err
	}

	window := a.Window(req.Year)
	ex, err := a.registry.Extract(ctx, h, a.climate, hazard.Request{
		Geo:        req.Geo,
		Scenario:   req.Scenario,
		Year:       req.Year,
		Window:     window,
		Attributes: attrs,
	})
	source := domain.SourceReal
	substituted := false
	if err != nil {
		if !domain.IsMissingData(err) && !domain.IsComputation(err) {
			return domain.HazardResult{}, fmt.Errorf("assess %s at %s: %w", h, domain.LocationKey(req.Geo), err)
		}
		a.fallback(h, req.Geo, err)
		ex = substitute(h)
		substituted = true
	}

	dist := entry.Classifier.EstimateSeries(ex.Series)
	if dist.Samples == 0 && !substituted {
		a.fallback(h, req.Geo, domain.Computation(h, "intensity", "no valid samples in window"))
		ex = substitute(h)
		substituted = true
		dist = entry.Classifier.EstimateSeries(ex.Series)
	}
	if substituted {
		source = domain.SourceFallback
	} else if len(ex.Fallbacks) > 0 {
		source = domain.SourceFallback
		for _, f := range ex.Fallbacks {
			a.metrics.Fallbacks.WithLabelValues(string(h), f).Inc()
		}
		a.logger.Warn("hazard inputs defaulted",
			"hazard", h,
			"fields", ex.Fallbacks,
			"lat", req.Geo.Lat,
			"lon", req.Geo.Lon,
		)
	}

	hs := scoring.HazardScore(ex.Series.Values, entry.Table.Ceiling)
	exp, err := a.registry.Exposure().Score(h, attrs)
	if err != nil {
		return domain.HazardResult{}, err
	}
	vuln, err := a.registry.Vulnerability().Score(h, attrs.Building)
	if err != nil {
		return domain.HazardResult{}, err
	}
	if exp.DataSource == domain.SourceFallback {
		a.metrics.Fallbacks.WithLabelValues(string(h), "exposure").Inc()
	}
	if vuln.DataSource == domain.SourceFallback {
		a.metrics.Fallbacks.WithLabelValues(string(h), "vulnerability").Inc()
	}

	risk := scoring.Integrate(hs.Score, exp.Score, vuln.Score)
	base, err := scoring.BaseAAL(dist.Probabilities, entry.Classifier.Rates())
	if err != nil {
		return domain.HazardResult{}, fmt.Errorf("assess %s: %w", h, err)
	}
	aal := scoring.ScaleAAL(base, vuln.Score, req.Asset)

	res := domain.HazardResult{
		ID:            domain.RecordID(req.Geo, h, req.Scenario, req.Year),
		Geo:           req.Geo,
		Hazard:        h,
		Scenario:      req.Scenario,
		Year:          req.Year,
		HazardScore:   hs,
		Exposure:      exp,
		Vulnerability: vuln,
		Risk:          risk,
		AAL:           aal,
		Probabilities: summarize(entry.Classifier, dist),
		DataSource:    source.Merge(exp.DataSource).Merge(vuln.DataSource),
		Fallbacks:     ex.Fallbacks,
		ComputedAt:    domain.Now(),
	}
	if !substituted {
		res.ProbabilityCurve = entry.Smoothed.EstimateByYear(ex.Series, window.Start)
	}
	res.Provenance = provenance(ex.Provenance, hs, risk, aal)
	return res, nil
}

// fallback logs a recovered data error.
func (a *Assessor) fallback(h domain.HazardType, g domain.Geo, err error) {
	stage := "intensity"
	var de *domain.DataError
	if errors.As(err, &de) && de.Stage != "" {
		stage = de.Stage
	}
	a.metrics.Fallbacks.WithLabelValues(string(h), stage).Inc()
	a.logger.Warn("hazard data unavailable, using fallback intensity",
		"hazard", h,
		"stage", stage,
		"lat", g.Lat,
		"lon", g.Lon,
		"error", err,
	)
}

func substitute(h domain.HazardType) hazard.Extraction {
	return hazard.Extraction{
		Series:     domain.FallbackIntensity(h),
		Fallbacks:  []string{"intensity"},
		Provenance: "fallback intensity 0",
	}
}

func summarize(c *binning.Classifier, d binning.Distribution) domain.ProbabilitySummary {
	return domain.ProbabilitySummary{
		Bins:    c.Labels(),
		Values:  d.Probabilities,
		Rates:   c.Rates(),
		Unit:    d.Unit,
		Label:   d.Label(),
		Samples: d.Samples,
		Skipped: d.Skipped,
	}
}

func provenance(source string, hs domain.HazardScore, risk domain.IntegratedRisk, aal domain.AALResult) string {
	parts := []string{
		source,
		hs.Formula,
		fmt.Sprintf("R = clip(%.2f × %.2f × %.2f / 10000, 0, 100) = %.2f",
			risk.HScore, risk.EScore, risk.VScore, risk.IntegratedRiskScore),
		aal.Formula,
	}
	return strings.Join(parts, "; ")
}
