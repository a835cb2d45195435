package indicator

import (
	"math"
	"strings"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Kilometres per degree in the local tangent plane.
const (
	KmPerDegLon = 111.32
	KmPerDegLat = 110.574
)

// Typhoon influence classes.
const (
	InfluenceNone = iota
	InfluenceGale
	InfluenceStorm
	InfluenceTyphoon
)

// InfluenceWeights are the per-class contributions to annual exposure.
var InfluenceWeights = [4]float64{0, 1, 3, 5}

var typhoonGrades = map[string]bool{
	"TY":        true,
	"STY":       true,
	"VSTY":      true,
	"VIOLENTTY": true,
}

// IsTyphoonGrade reports whether a best-track grade is typhoon strength.
func IsTyphoonGrade(grade string) bool {
	return typhoonGrades[strings.ToUpper(strings.TrimSpace(grade))]
}

// EllipseMembership returns (x'/a)² + (y'/b)² for site relative to an ellipse
// centred at centre with semi-axes a (along angleDeg) and b. Values ≤ 1 are
// inside. Non-positive radii give +Inf.
func EllipseMembership(site, centre domain.Geo, a, b, angleDeg float64) float64 {
	if !(a > 0) || !(b > 0) {
		return math.Inf(1)
	}
	dlon := site.Lon - centre.Lon
	if dlon > 180 {
		dlon -= 360
	} else if dlon < -180 {
		dlon += 360
	}
	dx := dlon * KmPerDegLon * math.Cos(centre.Lat*math.Pi/180)
	dy := (site.Lat - centre.Lat) * KmPerDegLat

	theta := angleDeg * math.Pi / 180
	xr := dx*math.Cos(theta) + dy*math.Sin(theta)
	yr := -dx*math.Sin(theta) + dy*math.Cos(theta)
	m := (xr/a)*(xr/a) + (yr/b)*(yr/b)
	if math.IsNaN(m) {
		return math.Inf(1)
	}
	return m
}

// Influence classifies one track point's effect on site.
func Influence(site domain.Geo, tp domain.TrackPoint) int {
	centre := domain.Geo{Lat: tp.Lat, Lon: tp.Lon}
	if EllipseMembership(site, centre, tp.StormMajorKm, tp.StormMinorKm, tp.StormAngleDeg) <= 1 {
		if IsTyphoonGrade(tp.Grade) {
			return InfluenceTyphoon
		}
		return InfluenceStorm
	}
	if EllipseMembership(site, centre, tp.GaleMajorKm, tp.GaleMinorKm, tp.GaleAngleDeg) <= 1 {
		return InfluenceGale
	}
	return InfluenceNone
}

// AnnualExposure sums influence weights over the track points in year.
func AnnualExposure(site domain.Geo, tracks []domain.TrackPoint, year int) float64 {
	var total float64
	for _, tp := range tracks {
		if tp.Time.Year() != year {
			continue
		}
		total += InfluenceWeights[Influence(site, tp)]
	}
	return total
}

// TyphoonIntensity returns one cumulative exposure value for every year of
// r. Years without track points contribute zero.
func TyphoonIntensity(site domain.Geo, tracks []domain.TrackPoint, r domain.TimeRange) domain.IntensitySeries {
	perYear := make(map[int]float64)
	for _, tp := range tracks {
		y := tp.Time.Year()
		if !r.Contains(y) {
			continue
		}
		perYear[y] += InfluenceWeights[Influence(site, tp)]
	}
	out := domain.IntensitySeries{Hazard: domain.Typhoon, Unit: domain.Yearly}
	for _, y := range r.Years() {
		out.Times = append(out.Times, domain.YearStart(y))
		out.Values = append(out.Values, perYear[y])
	}
	return out
}
