package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func TestEllipseMembership(t *testing.T) {
	centre := domain.Geo{Lat: 25, Lon: 125}

	t.Run("centre is inside", func(t *testing.T) {
		assert.Equal(t, 0.0, EllipseMembership(centre, centre, 300, 100, 37))
	})

	t.Run("far away is outside", func(t *testing.T) {
		assert.Greater(t, EllipseMembership(domain.Geo{Lat: -60, Lon: -50}, centre, 500, 300, 0), 1.0)
		assert.Greater(t, EllipseMembership(domain.Geo{Lat: math.Inf(1), Lon: 0}, centre, 500, 300, 0), 1.0)
	})

	t.Run("degenerate radii", func(t *testing.T) {
		assert.True(t, math.IsInf(EllipseMembership(centre, centre, 0, 100, 0), 1))
		assert.True(t, math.IsInf(EllipseMembership(centre, centre, 100, -1, 0), 1))
	})

	t.Run("rotation aligns the major axis", func(t *testing.T) {
		// 200 km due north of the centre.
		north := domain.Geo{Lat: centre.Lat + 200/KmPerDegLat, Lon: centre.Lon}

		// Major axis east-west: 200 km north lies outside a 300×100 ellipse.
		assert.InDelta(t, 4.0, EllipseMembership(north, centre, 300, 100, 0), 1e-9)
		// Rotated 90°: the major axis points north.
		assert.InDelta(t, 4.0/9.0, EllipseMembership(north, centre, 300, 100, 90), 1e-9)
	})

	t.Run("antimeridian", func(t *testing.T) {
		c := domain.Geo{Lat: 0, Lon: 179.9}
		site := domain.Geo{Lat: 0, Lon: -179.9}
		assert.Less(t, EllipseMembership(site, c, 50, 50, 0), 1.0)
	})
}

func TestInfluence(t *testing.T) {
	site := domain.Geo{Lat: 25, Lon: 125}
	tp := domain.TrackPoint{
		Lat: 25, Lon: 125, Grade: "TY",
		GaleMajorKm: 500, GaleMinorKm: 400,
		StormMajorKm: 150, StormMinorKm: 100,
	}
	assert.Equal(t, InfluenceTyphoon, Influence(site, tp))

	tp.Grade = "STS"
	assert.Equal(t, InfluenceStorm, Influence(site, tp))

	// 3 degrees east is ~300 km: inside gale, outside storm.
	tp.Lon = 128
	assert.Equal(t, InfluenceGale, Influence(site, tp))

	tp.Lon = 140
	assert.Equal(t, InfluenceNone, Influence(site, tp))

	assert.True(t, IsTyphoonGrade("violentty"))
	assert.False(t, IsTyphoonGrade("TS"))
}

func TestTyphoonIntensity(t *testing.T) {
	site := domain.Geo{Lat: 25, Lon: 125}
	at := func(year int, grade string) domain.TrackPoint {
		return domain.TrackPoint{
			Time: time.Date(year, 8, 1, 0, 0, 0, 0, time.UTC),
			Lat:  25, Lon: 125, Grade: grade,
			GaleMajorKm: 500, GaleMinorKm: 400, StormMajorKm: 150, StormMinorKm: 100,
		}
	}
	tracks := []domain.TrackPoint{at(2001, "TY"), at(2001, "STY"), at(2003, "TS"), at(1999, "TY")}

	got := TyphoonIntensity(site, tracks, domain.TimeRange{Start: 2000, End: 2003})
	assert.Equal(t, []float64{0, 10, 0, 3}, got.Values)
	assert.Equal(t, domain.Typhoon, got.Hazard)

	assert.Equal(t, 10.0, AnnualExposure(site, tracks, 2001))
	assert.Equal(t, 0.0, AnnualExposure(site, tracks, 2002))
}
