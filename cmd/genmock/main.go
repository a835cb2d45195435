// Command genmock generates a deterministic synthetic climate dataset for
// local runs and tests, and optionally a matching file of assessment requests
// that can be replayed onto the request topic.
//
// Usage:
//
//	go run ./cmd/genmock -out data/fixture.yaml
//	go run ./cmd/genmock -out data/fixture.yaml -sites sites.yaml -projection 2030-2070 \
//	  -requests data/requests.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/fixture"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/hazard"
)

// defaultSites spans the hazard mix: typhoon coast, river delta, continental
// heat, boreal cold and a dry interior.
var defaultSites = []fixture.SiteSpec{
	{Name: "manila", Geo: domain.Geo{Lat: 14.5995, Lon: 120.9842}, Attributes: domain.LocationAttributes{
		Spatial: domain.SpatialAttributes{
			DistanceToRiverM: domain.Float(350), DistanceToCoastM: domain.Float(1800),
			ElevationM: domain.Float(8), LandCover: domain.LandUrban, ImperviousFraction: domain.Float(0.8),
		},
		Building: domain.BuildingAttributes{BuildYear: domain.Int(1998), Structure: domain.StructureRC, GroundFloors: domain.Int(6)},
	}},
	{Name: "cebu", Geo: domain.Geo{Lat: 10.3157, Lon: 123.8854}, Attributes: domain.LocationAttributes{
		Spatial: domain.SpatialAttributes{
			DistanceToRiverM: domain.Float(2200), DistanceToCoastM: domain.Float(900),
			ElevationM: domain.Float(15), LandCover: domain.LandUrban,
		},
	}},
	{Name: "tokyo", Geo: domain.Geo{Lat: 35.6812, Lon: 139.7671}, Attributes: domain.LocationAttributes{
		Spatial: domain.SpatialAttributes{
			DistanceToRiverM: domain.Float(1200), DistanceToCoastM: domain.Float(3500),
			ElevationM: domain.Float(4), LandCover: domain.LandUrban, ImperviousFraction: domain.Float(0.9),
		},
		Building: domain.BuildingAttributes{BuildYear: domain.Int(2012), Structure: domain.StructureSteel, GroundFloors: domain.Int(30), BasementFloors: domain.Int(3)},
	}},
	{Name: "munich", Geo: domain.Geo{Lat: 48.1351, Lon: 11.5820}, Attributes: domain.LocationAttributes{
		Spatial: domain.SpatialAttributes{
			DistanceToRiverM: domain.Float(600), DistanceToCoastM: domain.Float(400000),
			ElevationM: domain.Float(520), LandCover: domain.LandCropland,
		},
	}},
	{Name: "phoenix", Geo: domain.Geo{Lat: 33.4484, Lon: -112.0740}, Attributes: domain.LocationAttributes{
		Spatial: domain.SpatialAttributes{
			DistanceToRiverM: domain.Float(5000), DistanceToCoastM: domain.Float(300000),
			ElevationM: domain.Float(331), LandCover: domain.LandBare,
		},
	}},
	{Name: "helsinki", Geo: domain.Geo{Lat: 60.1699, Lon: 24.9384}, Attributes: domain.LocationAttributes{
		Spatial: domain.SpatialAttributes{
			DistanceToRiverM: domain.Float(3000), DistanceToCoastM: domain.Float(500),
			ElevationM: domain.Float(17), LandCover: domain.LandForest,
		},
		Building: domain.BuildingAttributes{BuildYear: domain.Int(1975), Structure: domain.StructureMasonry},
	}},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the YAML dataset")
	sitesPath := flag.String("sites", "", "YAML list of sites (name, geo, attributes); defaults to a built-in set")
	seed := flag.Int64("seed", 42, "random seed")
	projection := flag.String("projection", "2040-2060", "scenario years to generate, START-END")
	skipDaily := flag.Bool("skip-daily", false, "omit daily scenario weather (disables wildfire)")
	requestsOut := flag.String("requests", "", "optional output path for a JSON array of assessment requests")
	scenario := flag.String("scenario", "SSP2-4.5", "scenario for generated requests")
	year := flag.Int("year", 2050, "target year for generated requests")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	sites := defaultSites
	if *sitesPath != "" {
		var err error
		if sites, err = loadSites(*sitesPath); err != nil {
			return err
		}
	}

	proj, err := parseRange(*projection)
	if err != nil {
		return err
	}

	periods := hazard.DefaultPeriods()
	d, err := fixture.Synthetic(fixture.SyntheticOptions{
		Seed:       *seed,
		Sites:      sites,
		Projection: proj,
		Baseline:   periods.Baseline,
		Tracks:     periods.Tracks,
		SkipDaily:  *skipDaily,
	})
	if err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := fixture.Write(*out, d); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Printf("wrote dataset: %s", *out)
	printStats(d)

	if *requestsOut != "" {
		s, err := domain.ParseScenario(*scenario)
		if err != nil {
			return err
		}
		if err := writeRequests(*requestsOut, sites, s, *year); err != nil {
			return fmt.Errorf("writing requests: %w", err)
		}
		log.Printf("wrote %d requests: %s", len(sites), *requestsOut)
	}
	return nil
}

func loadSites(path string) ([]fixture.SiteSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites: %w", err)
	}
	var sites []fixture.SiteSpec
	if err := yaml.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("parse sites %s: %w", path, err)
	}
	if len(sites) == 0 {
		return nil, fmt.Errorf("sites %s: no sites", path)
	}
	return sites, nil
}

func parseRange(s string) (domain.TimeRange, error) {
	var r domain.TimeRange
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d-%d", &r.Start, &r.End); err != nil || r.End < r.Start {
		return r, fmt.Errorf("invalid range %q: want START-END", s)
	}
	return r, nil
}

// request mirrors the JSON accepted on the request topic.
type request struct {
	RequestID string  `json:"request_id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Scenario  string  `json:"scenario"`
	Year      int     `json:"year"`
}

func writeRequests(path string, sites []fixture.SiteSpec, s domain.Scenario, year int) error {
	reqs := make([]request, 0, len(sites))
	for _, site := range sites {
		reqs = append(reqs, request{
			RequestID: site.Name,
			Lat:       site.Geo.Lat,
			Lon:       site.Geo.Lon,
			Scenario:  string(s),
			Year:      year,
		})
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(d *fixture.Dataset) {
	for _, site := range d.Sites {
		variables := map[string]bool{}
		samples := 0
		for _, e := range site.Series {
			variables[e.Variable] = true
			samples += len(e.Values)
		}
		names := make([]string, 0, len(variables))
		for v := range variables {
			names = append(names, v)
		}
		sort.Strings(names)
		log.Printf("  %-10s (%.4f, %.4f): %d series, %d samples, variables %s",
			site.Name, site.Geo.Lat, site.Geo.Lon, len(site.Series), samples, strings.Join(names, ","))
	}
	log.Printf("  storm track points: %d", len(d.Tracks))
}
