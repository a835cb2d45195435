// Package fixture serves climate series, storm tracks and location
// attributes from an in-memory dataset, typically loaded from YAML.
package fixture

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// DefaultMaxDistanceKm is how far a query may be from a dataset site and
// still be served by it.
const DefaultMaxDistanceKm = 50.0

// SeriesEntry is one variable of one site. Samples are consecutive from
// Start at the spacing given by Unit.
type SeriesEntry struct {
	Variable string          `yaml:"variable"`
	Scenario string          `yaml:"scenario"`
	Unit     domain.TimeUnit `yaml:"unit"`
	Start    string          `yaml:"start"`
	Values   []float64       `yaml:"values"`
}

// Site is one dataset grid point.
type Site struct {
	Name       string                    `yaml:"name"`
	Geo        domain.Geo                `yaml:"geo"`
	Attributes domain.LocationAttributes `yaml:"attributes"`
	Series     []SeriesEntry             `yaml:"series"`
}

// Dataset implements domain.ClimateSeriesProvider and
// domain.LocationAttributeProvider over a fixed set of sites.
type Dataset struct {
	Sites         []Site              `yaml:"sites"`
	Tracks        []domain.TrackPoint `yaml:"tracks"`
	MaxDistanceKm float64             `yaml:"max_distance_km"`

	index []map[string]domain.Series
}

// Build validates entries and indexes them for lookup. It must be called
// after the dataset is assembled and before it is queried.
func (d *Dataset) Build() error {
	if d.MaxDistanceKm <= 0 {
		d.MaxDistanceKm = DefaultMaxDistanceKm
	}
	d.index = make([]map[string]domain.Series, len(d.Sites))
	for i, site := range d.Sites {
		d.index[i] = make(map[string]domain.Series, len(site.Series))
		for _, e := range site.Series {
			s, err := e.expand()
			if err != nil {
				return fmt.Errorf("site %q: %w", site.Name, err)
			}
			key, err := seriesKey(e.Variable, e.Scenario)
			if err != nil {
				return fmt.Errorf("site %q: %w", site.Name, err)
			}
			d.index[i][key] = s
		}
	}
	return nil
}

func seriesKey(variable, scenario string) (string, error) {
	if scenario == "" {
		return variable + "|*", nil
	}
	s, err := domain.ParseScenario(scenario)
	if err != nil {
		return "", err
	}
	return variable + "|" + string(s), nil
}

func (e SeriesEntry) expand() (domain.Series, error) {
	start, err := time.Parse("2006-01-02", e.Start)
	if err != nil {
		return domain.Series{}, fmt.Errorf("series %s: bad start %q: %w", e.Variable, e.Start, err)
	}
	unit := e.Unit
	if unit == "" {
		unit = domain.Yearly
	}
	s := domain.Series{Variable: e.Variable, Unit: unit, Points: make([]domain.Point, len(e.Values))}
	for i, v := range e.Values {
		var t time.Time
		switch unit {
		case domain.Daily:
			t = start.AddDate(0, 0, i)
		case domain.Monthly:
			t = start.AddDate(0, i, 0)
		case domain.Yearly:
			t = start.AddDate(i, 0, 0)
		default:
			return domain.Series{}, fmt.Errorf("series %s: unknown unit %q", e.Variable, unit)
		}
		s.Points[i] = domain.Point{Time: t, Value: v}
	}
	return s, nil
}

// nearest returns the index of the closest site within range, or -1.
func (d *Dataset) nearest(g domain.Geo) int {
	best, bestKm := -1, math.Inf(1)
	for i, s := range d.Sites {
		km := HaversineKm(g, s.Geo)
		if km <= d.MaxDistanceKm && km < bestKm {
			best, bestKm = i, km
		}
	}
	return best
}

// Series returns the requested variable at the closest site, trimmed to
// the query range. A scenario-less entry serves every scenario.
func (d *Dataset) Series(_ context.Context, q domain.SeriesQuery) (domain.Series, error) {
	i := d.nearest(q.Geo)
	if i < 0 {
		return domain.Series{}, fmt.Errorf("no site near %s: %w", domain.LocationKey(q.Geo), domain.ErrNotFound)
	}
	s, ok := d.index[i][q.Variable+"|"+string(q.Scenario)]
	if !ok {
		s, ok = d.index[i][q.Variable+"|*"]
	}
	if !ok {
		return domain.Series{}, fmt.Errorf("%s/%s at %s: %w", q.Variable, q.Scenario, d.Sites[i].Name, domain.ErrNotFound)
	}

	out := domain.Series{Variable: s.Variable, Unit: s.Unit}
	for _, p := range s.Points {
		if q.Range.Contains(p.Time.Year()) {
			out.Points = append(out.Points, p)
		}
	}
	if out.Len() == 0 {
		return domain.Series{}, fmt.Errorf("%s/%s at %s in %d-%d: %w",
			q.Variable, q.Scenario, d.Sites[i].Name, q.Range.Start, q.Range.End, domain.ErrNotFound)
	}
	return out, nil
}

// StormTracks returns track points within the query radius and period.
// Locations the dataset does not cover are not found, so an empty result
// always means no storm passed nearby.
func (d *Dataset) StormTracks(_ context.Context, q domain.TrackQuery) ([]domain.TrackPoint, error) {
	if d.nearest(q.Geo) < 0 {
		return nil, fmt.Errorf("no site near %s: %w", domain.LocationKey(q.Geo), domain.ErrNotFound)
	}
	var out []domain.TrackPoint
	for _, tp := range d.Tracks {
		if !q.Range.Contains(tp.Time.Year()) {
			continue
		}
		if HaversineKm(q.Geo, domain.Geo{Lat: tp.Lat, Lon: tp.Lon}) > q.RadiusKm {
			continue
		}
		out = append(out, tp)
	}
	return out, nil
}

// Attributes returns the attributes of the closest site.
func (d *Dataset) Attributes(_ context.Context, g domain.Geo) (domain.LocationAttributes, error) {
	i := d.nearest(g)
	if i < 0 {
		return domain.LocationAttributes{}, fmt.Errorf("no site near %s: %w", domain.LocationKey(g), domain.ErrNotFound)
	}
	return d.Sites[i].Attributes, nil
}

// HaversineKm is the great-circle distance between two points.
func HaversineKm(a, b domain.Geo) float64 {
	const earthRadiusKm = 6371.0
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
