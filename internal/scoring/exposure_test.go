package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func fullSpatial() domain.SpatialAttributes {
	return domain.SpatialAttributes{
		DistanceToRiverM:   domain.Float(80),
		DistanceToCoastM:   domain.Float(15000),
		ElevationM:         domain.Float(3),
		LandCover:          domain.LandForest,
		ImperviousFraction: domain.Float(0.2),
	}
}

func fullBuilding() domain.BuildingAttributes {
	return domain.BuildingAttributes{
		BuildYear:      domain.Int(2015),
		Structure:      domain.StructureRC,
		Use:            "office",
		GroundFloors:   domain.Int(8),
		BasementFloors: domain.Int(0),
		HasWaterTank:   domain.Bool(true),
	}
}

func TestExposureScorer_AllHazardsReal(t *testing.T) {
	s, err := NewExposureScorer(DefaultExposureConfig())
	require.NoError(t, err)

	attrs := domain.LocationAttributes{Spatial: fullSpatial(), Building: fullBuilding()}
	for _, h := range domain.AllHazards() {
		t.Run(string(h), func(t *testing.T) {
			got, err := s.Score(h, attrs)
			require.NoError(t, err)
			assert.Equal(t, domain.SourceReal, got.DataSource)
			assert.GreaterOrEqual(t, got.Score, 0.0)
			assert.LessOrEqual(t, got.Score, 100.0)
			assert.Equal(t, domain.LevelForScore(got.Score), got.Level)
			assert.NotContains(t, got.Factors, "fallback_fields")
		})
	}
}

func TestExposureScorer_RiverFlood(t *testing.T) {
	s, err := NewExposureScorer(DefaultExposureConfig())
	require.NoError(t, err)

	got, err := s.Score(domain.RiverFlood, domain.LocationAttributes{Spatial: fullSpatial(), Building: fullBuilding()})
	require.NoError(t, err)
	// river 80 m → 100, elevation 3 m → 80, no basement → 0.
	assert.InDelta(t, 0.5*100+0.3*80+0.2*0, got.Score, 1e-9)
	assert.Equal(t, 80.0, got.Factors["distance_to_river_m"])
	assert.Equal(t, domain.LevelHigh, got.Level)
}

func TestExposureScorer_Fallback(t *testing.T) {
	s, err := NewExposureScorer(DefaultExposureConfig())
	require.NoError(t, err)

	got, err := s.Score(domain.SeaLevelRise, domain.LocationAttributes{})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, got.DataSource)
	assert.Equal(t, []string{"distance_to_coast_m", "elevation_m"}, got.Factors["fallback_fields"])
	// coast 500 m → 60, elevation 10 m → 40.
	assert.InDelta(t, 0.6*60+0.4*40, got.Score, 1e-9)
}

func TestExposureScorer_UnknownCategory(t *testing.T) {
	s, err := NewExposureScorer(DefaultExposureConfig())
	require.NoError(t, err)

	attrs := domain.LocationAttributes{Spatial: domain.SpatialAttributes{LandCover: "tundra"}}
	got, err := s.Score(domain.Wildfire, attrs)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, got.DataSource)
	assert.Equal(t, domain.LandUrban, got.Factors["land_cover"])
	assert.InDelta(t, 30, got.Score, 1e-9)
}

func TestExposureScorer_OnlyReferencedFieldsFallBack(t *testing.T) {
	s, err := NewExposureScorer(DefaultExposureConfig())
	require.NoError(t, err)

	// Wildfire exposure depends on land cover only.
	attrs := domain.LocationAttributes{Spatial: domain.SpatialAttributes{LandCover: domain.LandForest}}
	got, err := s.Score(domain.Wildfire, attrs)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceReal, got.DataSource)
	assert.Equal(t, 100.0, got.Score)
}

func TestNewExposureScorer_Invalid(t *testing.T) {
	cfg := DefaultExposureConfig()
	delete(cfg.Weights, domain.Typhoon)
	_, err := NewExposureScorer(cfg)
	assert.ErrorContains(t, err, "typhoon")

	cfg = DefaultExposureConfig()
	cfg.Weights[domain.Drought] = map[string]float64{FactorLandCover: -1}
	_, err = NewExposureScorer(cfg)
	assert.ErrorContains(t, err, "negative weight")

	cfg = DefaultExposureConfig()
	delete(cfg.LandCover, domain.Wildfire)
	_, err = NewExposureScorer(cfg)
	assert.ErrorContains(t, err, "land cover table")
}

func TestExposureScorer_UnknownHazard(t *testing.T) {
	s, err := NewExposureScorer(DefaultExposureConfig())
	require.NoError(t, err)
	_, err = s.Score("hail", domain.LocationAttributes{})
	assert.Error(t, err)
}
