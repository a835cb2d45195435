package hazard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/fixture"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	for _, h := range domain.AllHazards() {
		e, err := r.Entry(h)
		require.NoError(t, err, h)
		assert.Equal(t, h, e.Hazard)
		assert.Equal(t, len(e.Table.Edges), e.Classifier.Len())
		assert.NotNil(t, e.Extract)
		assert.Positive(t, e.Table.Ceiling)
	}
	_, err := r.Entry("hail")
	assert.Error(t, err)
}

func TestHeatTableMatchesReferenceExample(t *testing.T) {
	e, err := Default().Entry(domain.ExtremeHeat)
	require.NoError(t, err)

	d := e.Classifier.Estimate([]float64{0, 1, 2, 3})
	assert.Equal(t, []float64{0.75, 0.25, 0, 0}, d.Probabilities)
	assert.Equal(t, []float64{0.001, 0.003, 0.010, 0.020}, e.Classifier.Rates())
}

func TestSeaLevelFallLandsInFirstBin(t *testing.T) {
	e, err := Default().Entry(domain.SeaLevelRise)
	require.NoError(t, err)

	s := domain.Series{Variable: domain.VarSeaLevelRise, Unit: domain.Yearly, Points: []domain.Point{
		{Time: domain.YearStart(2049), Value: -3},
		{Time: domain.YearStart(2050), Value: -1},
	}}
	ex, err := e.Extract(context.Background(), fixedSource{s}, Request{
		Geo: domain.Geo{Lat: 59.3, Lon: 18.1}, Scenario: domain.SSP245, Year: 2050, Window: domain.WindowAround(2050, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, ex.Series.Values)

	d := e.Classifier.Estimate(ex.Series.Values)
	assert.Equal(t, []float64{1, 0, 0, 0}, d.Probabilities)
}

// fixedSource serves the same series for every query.
type fixedSource struct{ s domain.Series }

func (p fixedSource) Series(context.Context, domain.SeriesQuery) (domain.Series, error) { return p.s, nil }

func (fixedSource) StormTracks(context.Context, domain.TrackQuery) ([]domain.TrackPoint, error) {
	return nil, nil
}

func TestParseOverrides(t *testing.T) {
	doc := []byte(`
tables:
  extreme-heat:
    edges: [0, 5, 10]
    rates: [0.0, 0.01, 0.05]
    ceiling: 25
water_stress_curves:
  anchors: [2020, 2100]
  curves:
    SSP1-2.6: [1.0, 1.1]
    SSP5-8.5: [1.0, 2.0]
periods:
  baseline: {start: 1981, end: 2010}
  tracks: {start: 1981, end: 2010}
  track_radius_km: 500
  default_elevation_m: 5
`)
	cfg, err := ParseOverrides(doc, DefaultConfig())
	require.NoError(t, err)

	heat := cfg.Tables[domain.ExtremeHeat]
	assert.Equal(t, []float64{0, 5, 10}, heat.Edges)
	assert.Equal(t, 25.0, heat.Ceiling)
	assert.Equal(t, "warm spell duration (days/yr)", heat.Label)
	assert.Equal(t, DefaultTables()[domain.Drought], cfg.Tables[domain.Drought])
	assert.Equal(t, 1981, cfg.Periods.Baseline.Start)

	r, err := New(cfg)
	require.NoError(t, err)
	e, err := r.Entry(domain.ExtremeHeat)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Classifier.Len())

	m, err := cfg.WaterStressCurves.Multiplier(domain.SSP245, 2100)
	require.NoError(t, err)
	assert.InDelta(t, 1.55, m, 1e-9)
}

func TestParseOverrides_Invalid(t *testing.T) {
	_, err := ParseOverrides([]byte("tables:\n  hail: {edges: [0], rates: [0], ceiling: 1}\n"), DefaultConfig())
	assert.ErrorContains(t, err, "unknown hazard")

	_, err = ParseOverrides([]byte("tables: [1, 2"), DefaultConfig())
	assert.ErrorContains(t, err, "parse hazard tables")

	cfg, err := ParseOverrides([]byte("tables:\n  drought: {edges: [0, 1], rates: [0.5, 0.1], ceiling: 12}\n"), DefaultConfig())
	require.NoError(t, err)
	_, err = New(cfg)
	assert.ErrorContains(t, err, "drought")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Len(t, cfg.Tables, 9)

	_, err = LoadConfig("/nonexistent/tables.yaml")
	assert.ErrorContains(t, err, "read hazard tables")
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Periods.Baseline = domain.TimeRange{Start: 2001, End: 2002}
	cfg.Periods.Tracks = domain.TimeRange{Start: 2001, End: 2010}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func syntheticDataset(t *testing.T) *fixture.Dataset {
	t.Helper()
	d, err := fixture.Synthetic(fixture.SyntheticOptions{
		Seed:       1,
		Sites:      []fixture.SiteSpec{{Name: "manila", Geo: domain.Geo{Lat: 14.6, Lon: 121.0}}},
		Projection: domain.TimeRange{Start: 2049, End: 2051},
		Baseline:   domain.TimeRange{Start: 2001, End: 2002},
		Tracks:     domain.TimeRange{Start: 2001, End: 2010},
	})
	require.NoError(t, err)
	return d
}

func TestExtract_AllHazards(t *testing.T) {
	r := testRegistry(t)
	src := syntheticDataset(t)
	req := Request{
		Geo:      domain.Geo{Lat: 14.6, Lon: 121.0},
		Scenario: domain.SSP585,
		Year:     2050,
		Window:   domain.WindowAround(2050, 1),
		Attributes: domain.LocationAttributes{
			Spatial: domain.SpatialAttributes{LandCover: domain.LandUrban, ElevationM: domain.Float(12)},
		},
	}

	for _, h := range domain.AllHazards() {
		t.Run(string(h), func(t *testing.T) {
			ex, err := r.Extract(context.Background(), h, src, req)
			require.NoError(t, err)
			assert.Equal(t, h, ex.Series.Hazard)
			assert.Positive(t, ex.Series.Len())
			assert.NotEmpty(t, ex.Provenance)
			assert.Empty(t, ex.Fallbacks)
		})
	}

	typhoon, err := r.Extract(context.Background(), domain.Typhoon, src, req)
	require.NoError(t, err)
	assert.Equal(t, 10, typhoon.Series.Len())
}

func TestExtract_RiverFloodUnknownLandCover(t *testing.T) {
	r := testRegistry(t)
	req := Request{Geo: domain.Geo{Lat: 14.6, Lon: 121.0}, Scenario: domain.SSP126, Year: 2050, Window: domain.WindowAround(2050, 1)}

	ex, err := r.Extract(context.Background(), domain.RiverFlood, syntheticDataset(t), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"land_cover"}, ex.Fallbacks)
	assert.Contains(t, ex.Provenance, "unknown")
}

func TestExtract_MissingData(t *testing.T) {
	r := testRegistry(t)
	req := Request{Geo: domain.Geo{Lat: -33.9, Lon: 18.4}, Scenario: domain.SSP126, Year: 2050, Window: domain.WindowAround(2050, 1)}

	for _, h := range []domain.HazardType{domain.ExtremeHeat, domain.Wildfire, domain.WaterStress, domain.RiverFlood, domain.Typhoon} {
		_, err := r.Extract(context.Background(), h, syntheticDataset(t), req)
		assert.True(t, domain.IsMissingData(err), "%s: %v", h, err)
	}
}

type failingSource struct{}

func (failingSource) Series(context.Context, domain.SeriesQuery) (domain.Series, error) {
	return domain.Series{}, errors.New("connection refused")
}

func (failingSource) StormTracks(context.Context, domain.TrackQuery) ([]domain.TrackPoint, error) {
	return nil, errors.New("connection refused")
}

func TestExtract_UpstreamErrorPropagates(t *testing.T) {
	r := testRegistry(t)
	req := Request{Geo: domain.Geo{Lat: 1, Lon: 1}, Scenario: domain.SSP126, Year: 2050, Window: domain.WindowAround(2050, 1)}

	for _, h := range domain.AllHazards() {
		_, err := r.Extract(context.Background(), h, failingSource{}, req)
		require.Error(t, err, h)
		assert.False(t, domain.IsMissingData(err), h)
		assert.ErrorContains(t, err, "connection refused")
	}
}
