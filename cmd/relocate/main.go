// Command relocate ranks candidate sites by mean annual average loss and
// compares them with the site in use today.
//
// Usage:
//
//	go run ./cmd/relocate -fixture data/fixture.yaml -plan plan.yaml
//	go run ./cmd/relocate -api-url https://climate.example.com -plan plan.yaml -json
//	go run ./cmd/relocate -fixture data/fixture.yaml -plan plan.yaml -pair cebu
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/cache"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/climateapi"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/fixture"
	"github.com/couchcryptid/climate-risk-engine/internal/assess"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/hazard"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/relocation"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	fixturePath := flag.String("fixture", "", "YAML dataset written by genmock")
	apiURL := flag.String("api-url", "", "climate data API base URL (instead of -fixture)")
	apiToken := flag.String("api-token", os.Getenv("CLIMATE_API_TOKEN"), "climate data API token")
	planPath := flag.String("plan", "", "relocation plan YAML")
	tablesPath := flag.String("tables", "", "hazard table overrides YAML")
	pair := flag.String("pair", "", "compare the current site with this candidate only")
	workers := flag.Int("workers", relocation.DefaultWorkers, "concurrent candidate evaluations")
	window := flag.Int("window", assess.DefaultWindowYears, "evaluation window in years around the target year")
	asJSON := flag.Bool("json", false, "write the result as JSON")
	verbose := flag.Bool("v", false, "log fallbacks and failed candidates")
	flag.Parse()

	if *planPath == "" || (*fixturePath == "") == (*apiURL == "") {
		flag.Usage()
		return errors.New("need -plan and exactly one of -fixture or -api-url")
	}

	logger := sharedobs.NewLogger(logLevel(*verbose), "text")
	metrics := observability.NewMetrics()

	plan, err := relocation.LoadPlan(*planPath)
	if err != nil {
		return err
	}
	q, err := plan.Query()
	if err != nil {
		return err
	}

	tables, err := hazard.LoadConfig(*tablesPath)
	if err != nil {
		return err
	}
	registry, err := hazard.New(tables)
	if err != nil {
		return fmt.Errorf("build hazard registry: %w", err)
	}

	var climate domain.ClimateSeriesProvider
	var attrs domain.LocationAttributeProvider
	if *apiURL != "" {
		client := climateapi.NewClient(*apiURL, *apiToken, 30*time.Second, metrics, logger)
		climate, attrs = cache.NewCachedProvider(client, 1000, metrics), client
	} else {
		d, err := fixture.Load(*fixturePath)
		if err != nil {
			return fmt.Errorf("load fixture: %w", err)
		}
		climate, attrs = d, d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	searcher := relocation.NewSearcher(
		assess.New(registry, climate, attrs, *window, logger, metrics), *workers, logger, metrics)

	if *pair != "" {
		return comparePair(ctx, os.Stdout, searcher, plan, q, *pair, *asJSON)
	}
	return search(ctx, os.Stdout, searcher, plan, q, *asJSON)
}

// logLevel keeps stdout clean for the report unless -v asks for fallbacks
// and failed candidates.
func logLevel(verbose bool) string {
	if verbose {
		return "warn"
	}
	return "error"
}

type report struct {
	Search  relocation.SearchResult `json:"search"`
	Current *domain.Assessment      `json:"current,omitempty"`
	Deltas  []relocation.Delta      `json:"deltas,omitempty"`
}

func search(ctx context.Context, w io.Writer, s *relocation.Searcher, plan relocation.Plan, q relocation.Query, asJSON bool) error {
	res, err := s.Search(ctx, q)
	if err != nil {
		return err
	}
	rep := report{Search: res}
	if plan.Current != nil {
		cur, err := s.Assess(ctx, *plan.Current, q)
		if err != nil {
			return fmt.Errorf("assess current site %s: %w", plan.Current.Name, err)
		}
		rep.Current = &cur
		rep.Deltas = relocation.CompareAgainst(cur, res.Ranked)
	}

	if asJSON {
		return writeJSON(w, rep)
	}

	fmt.Fprintf(w, "Relocation search %s  scenario=%s year=%d\n", res.RunID, res.Scenario, res.Year)
	fmt.Fprintf(w, "evaluated %d of %d candidates (%d failed) in %s\n\n",
		res.Evaluated, res.Total, res.Failed, res.Duration.Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if rep.Current != nil {
		fmt.Fprintln(tw, "RANK\tSITE\tLAT\tLON\tMEAN AAL\tMEAN RISK\tVS CURRENT\tSOURCE")
		fmt.Fprintf(tw, "-\t%s (current)\t%.4f\t%.4f\t%.5f\t%.1f\t\t%s\n",
			plan.Current.Name, plan.Current.Geo.Lat, plan.Current.Geo.Lon, rep.Current.MeanAAL, rep.Current.MeanRisk, rep.Current.DataSource)
	} else {
		fmt.Fprintln(tw, "RANK\tSITE\tLAT\tLON\tMEAN AAL\tMEAN RISK\tSOURCE")
	}
	for i, r := range res.Ranked {
		if rep.Current != nil {
			fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%.5f\t%.1f\t%+.1f%%\t%s\n",
				r.Rank, r.Candidate.Name, r.Candidate.Geo.Lat, r.Candidate.Geo.Lon, r.MeanAAL, r.MeanRisk,
				rep.Deltas[i].AALReductionPct, r.Assessment.DataSource)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%.5f\t%.1f\t%s\n",
			r.Rank, r.Candidate.Name, r.Candidate.Geo.Lat, r.Candidate.Geo.Lon, r.MeanAAL, r.MeanRisk, r.Assessment.DataSource)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, f := range res.Failures {
		fmt.Fprintf(w, "FAILED %s (%.4f, %.4f): %s\n", f.Candidate.Name, f.Candidate.Geo.Lat, f.Candidate.Geo.Lon, f.Error)
	}
	return nil
}

func comparePair(ctx context.Context, w io.Writer, s *relocation.Searcher, plan relocation.Plan, q relocation.Query, name string, asJSON bool) error {
	if plan.Current == nil {
		return errors.New("-pair needs a current site in the plan")
	}
	candidate, ok := plan.Find(name)
	if !ok {
		return fmt.Errorf("candidate %q not in plan", name)
	}
	cmp, err := s.CompareLocations(ctx, *plan.Current, candidate, q)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, cmp)
	}

	fmt.Fprintf(w, "%s vs %s: better site is %s\n", cmp.Current.Name, cmp.Candidate.Name, cmp.Better)
	fmt.Fprintf(w, "mean AAL %.5f -> %.5f (reduction %.5f, %.1f%%), mean risk reduction %.1f\n\n",
		cmp.CurrentAAL, cmp.CandidateAAL, cmp.AALReduction, cmp.AALReductionPct, cmp.RiskReduction)

	hazards := make([]domain.HazardType, 0, len(cmp.HazardReductions))
	for h := range cmp.HazardReductions {
		hazards = append(hazards, h)
	}
	sort.Slice(hazards, func(i, j int) bool { return hazards[i] < hazards[j] })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HAZARD\tAAL REDUCTION")
	for _, h := range hazards {
		fmt.Fprintf(tw, "%s\t%+.5f\n", h, cmp.HazardReductions[h])
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
