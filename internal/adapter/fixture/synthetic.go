package fixture

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// SiteSpec names a site to synthesize.
type SiteSpec struct {
	Name       string
	Geo        domain.Geo
	Attributes domain.LocationAttributes
}

// SyntheticOptions controls Synthetic.
type SyntheticOptions struct {
	Seed       int64
	Sites      []SiteSpec
	Projection domain.TimeRange
	Baseline   domain.TimeRange
	Tracks     domain.TimeRange
	// SkipDaily omits daily scenario weather, which dominates dataset size.
	SkipDaily bool
}

// Synthetic generates a deterministic, physically plausible dataset: warmer
// and wetter toward the equator, with hazard indices trending upward with
// forcing. The same options always produce the same dataset.
func Synthetic(opts SyntheticOptions) (*Dataset, error) {
	d := &Dataset{MaxDistanceKm: DefaultMaxDistanceKm}
	for _, spec := range opts.Sites {
		rng := rand.New(rand.NewSource(opts.Seed ^ nameSeed(spec.Name)))
		site := Site{Name: spec.Name, Geo: spec.Geo, Attributes: spec.Attributes}
		for _, s := range domain.Scenarios() {
			site.Series = append(site.Series, scenarioSeries(rng, spec.Geo, s, opts)...)
		}
		site.Series = append(site.Series, historicalSeries(rng, spec.Geo, opts.Baseline)...)
		d.Sites = append(d.Sites, site)
	}
	if opts.Tracks.End >= opts.Tracks.Start && len(opts.Sites) > 0 {
		d.Tracks = syntheticTracks(rand.New(rand.NewSource(opts.Seed)), opts.Sites, opts.Tracks)
	}
	if err := d.Build(); err != nil {
		return nil, err
	}
	return d, nil
}

func nameSeed(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

func date(t time.Time) string { return t.Format("2006-01-02") }

// warmth is 1 at the equator falling to 0 at the poles.
func warmth(g domain.Geo) float64 {
	return math.Cos(g.Lat * math.Pi / 180)
}

func yearlyEntry(variable string, s domain.Scenario, r domain.TimeRange, f func(year int) float64) SeriesEntry {
	e := SeriesEntry{Variable: variable, Scenario: string(s), Unit: domain.Yearly, Start: date(domain.YearStart(r.Start))}
	for _, y := range r.Years() {
		e.Values = append(e.Values, round(f(y), 2))
	}
	return e
}

func monthlyEntry(variable string, s domain.Scenario, r domain.TimeRange, f func(year int, m time.Month) float64) SeriesEntry {
	e := SeriesEntry{Variable: variable, Scenario: string(s), Unit: domain.Monthly, Start: date(domain.YearStart(r.Start))}
	for _, y := range r.Years() {
		for m := time.January; m <= time.December; m++ {
			e.Values = append(e.Values, round(f(y, m), 2))
		}
	}
	return e
}

func dailyEntry(variable string, s domain.Scenario, r domain.TimeRange, f func(t time.Time) float64) SeriesEntry {
	start := domain.YearStart(r.Start)
	end := domain.YearStart(r.End + 1)
	e := SeriesEntry{Variable: variable, Scenario: string(s), Unit: domain.Daily, Start: date(start)}
	for t := start; t.Before(end); t = t.AddDate(0, 0, 1) {
		e.Values = append(e.Values, round(f(t), 2))
	}
	return e
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// seasonal is +1 in local midsummer and -1 in midwinter.
func seasonal(g domain.Geo, t time.Time) float64 {
	phase := 2 * math.Pi * float64(t.YearDay()-200) / 365
	if g.Lat < 0 {
		phase += math.Pi
	}
	return math.Cos(phase)
}

func scenarioSeries(rng *rand.Rand, g domain.Geo, s domain.Scenario, opts SyntheticOptions) []SeriesEntry {
	r := opts.Projection
	w := warmth(g)
	rank := float64(s.Rank())
	trend := func(y int) float64 { return float64(y-2020) / 80 * (1 + rank) }
	noise := func(scale float64) float64 { return rng.NormFloat64() * scale }
	meanTemp := -5 + 30*w

	out := []SeriesEntry{
		yearlyEntry(domain.VarWSDI, s, r, func(y int) float64 {
			return math.Max(0, 2+12*w+6*trend(y)+noise(2))
		}),
		yearlyEntry(domain.VarCSDI, s, r, func(y int) float64 {
			return math.Max(0, 10*(1-w)+2-2*trend(y)+noise(1.5))
		}),
		yearlyEntry(domain.VarDroughtMonths, s, r, func(y int) float64 {
			return math.Max(0, math.Round(1+1.5*trend(y)+noise(1.2)))
		}),
		yearlyEntry(domain.VarRx5Day, s, r, func(y int) float64 {
			return math.Max(0, 80+120*w+25*trend(y)+noise(25))
		}),
		yearlyEntry(domain.VarHeavyRainDays, s, r, func(y int) float64 {
			return math.Max(0, math.Round(1+5*w+2*trend(y)+noise(1.5)))
		}),
		yearlyEntry(domain.VarSeaLevelRise, s, r, func(y int) float64 {
			return float64(y-2015) * (0.35 + 0.2*rank)
		}),
		monthlyEntry(domain.VarTasmax, s, r, func(y int, m time.Month) float64 {
			return meanTemp + 5 + 10*(1-w)*seasonal(g, time.Date(y, m, 15, 0, 0, 0, 0, time.UTC)) + 1.5*trend(y)
		}),
		monthlyEntry(domain.VarTasmin, s, r, func(y int, m time.Month) float64 {
			return meanTemp - 5 + 10*(1-w)*seasonal(g, time.Date(y, m, 15, 0, 0, 0, 0, time.UTC)) + 1.5*trend(y)
		}),
		monthlyEntry(domain.VarRsds, s, r, func(y int, m time.Month) float64 {
			return 180 + 80*seasonal(g, time.Date(y, m, 15, 0, 0, 0, 0, time.UTC))*(1-w/2)
		}),
	}
	if opts.SkipDaily {
		out = append(out, monthlyEntry(domain.VarPr, s, r, func(int, time.Month) float64 {
			return math.Max(0, 80+150*w+noise(20))
		}))
		return out
	}

	return append(out,
		dailyEntry(domain.VarTas, s, r, func(t time.Time) float64 {
			return meanTemp + 10*(1-w)*seasonal(g, t) + 1.5*trend(t.Year()) + noise(2)
		}),
		dailyEntry(domain.VarHurs, s, r, func(t time.Time) float64 {
			return math.Max(5, math.Min(100, 65-8*trend(t.Year())+noise(12)))
		}),
		dailyEntry(domain.VarWind, s, r, func(time.Time) float64 {
			return math.Max(0, 3+noise(1.5))
		}),
		dailyEntry(domain.VarPr, s, r, func(time.Time) float64 {
			if rng.Float64() > 0.4 {
				return 0
			}
			return rng.ExpFloat64() * (6 + 12*w)
		}),
	)
}

func historicalSeries(rng *rand.Rand, g domain.Geo, r domain.TimeRange) []SeriesEntry {
	if r.End < r.Start {
		return nil
	}
	w := warmth(g)
	meanTemp := -5 + 30*w
	noise := func(scale float64) float64 { return rng.NormFloat64() * scale }
	flow := 50 + 400*w*rng.Float64()
	hist := domain.Historical

	return []SeriesEntry{
		dailyEntry(domain.VarDischarge, hist, r, func(t time.Time) float64 {
			if rng.Float64() < 0.02 {
				return math.NaN()
			}
			return math.Max(0, flow*(1+0.3*seasonal(g, t))+noise(flow*0.1))
		}),
		yearlyEntry(domain.VarWaterWithdrawal, hist, r, func(int) float64 {
			return flow * 86400 * 365 * (0.05 + 0.3*rng.Float64())
		}),
		monthlyEntry(domain.VarTas, hist, r, func(y int, m time.Month) float64 {
			return meanTemp + 10*(1-w)*seasonal(g, time.Date(y, m, 15, 0, 0, 0, 0, time.UTC))
		}),
		monthlyEntry(domain.VarTasmax, hist, r, func(y int, m time.Month) float64 {
			return meanTemp + 5 + 10*(1-w)*seasonal(g, time.Date(y, m, 15, 0, 0, 0, 0, time.UTC))
		}),
		monthlyEntry(domain.VarTasmin, hist, r, func(y int, m time.Month) float64 {
			return meanTemp - 5 + 10*(1-w)*seasonal(g, time.Date(y, m, 15, 0, 0, 0, 0, time.UTC))
		}),
		monthlyEntry(domain.VarHurs, hist, r, func(int, time.Month) float64 {
			return 65 + noise(5)
		}),
		monthlyEntry(domain.VarWind, hist, r, func(int, time.Month) float64 {
			return 3 + noise(0.5)
		}),
		monthlyEntry(domain.VarPr, hist, r, func(int, time.Month) float64 {
			return math.Max(0, 80+150*w+noise(20))
		}),
		monthlyEntry(domain.VarRsds, hist, r, func(y int, m time.Month) float64 {
			return 180 + 80*seasonal(g, time.Date(y, m, 15, 0, 0, 0, 0, time.UTC))*(1-w/2)
		}),
	}
}

var grades = []string{"TS", "STS", "TY", "STY", "VSTY"}

// syntheticTracks draws a few storms per year that recurve through the
// sites' region. Only sites equatorward of 40° attract storms.
func syntheticTracks(rng *rand.Rand, sites []SiteSpec, r domain.TimeRange) []domain.TrackPoint {
	var tropical []domain.Geo
	for _, s := range sites {
		if math.Abs(s.Geo.Lat) < 40 {
			tropical = append(tropical, s.Geo)
		}
	}
	if len(tropical) == 0 {
		return nil
	}

	var out []domain.TrackPoint
	for _, y := range r.Years() {
		storms := rng.Intn(4)
		for n := 0; n < storms; n++ {
			target := tropical[rng.Intn(len(tropical))]
			lat := target.Lat - 4 + rng.NormFloat64()*2
			lon := target.Lon + 4 + rng.NormFloat64()*2
			grade := grades[rng.Intn(len(grades))]
			t := time.Date(y, time.Month(6+rng.Intn(5)), 1+rng.Intn(28), 0, 0, 0, 0, time.UTC)
			for step := 0; step < 8; step++ {
				out = append(out, domain.TrackPoint{
					StormID:       fmt.Sprintf("%d-%c", y, 'A'+n),
					Time:          t.Add(time.Duration(step*6) * time.Hour),
					Lat:           round(lat+float64(step)*1.0, 2),
					Lon:           round(lon-float64(step)*1.0, 2),
					Grade:         grade,
					GaleMajorKm:   350,
					GaleMinorKm:   250,
					GaleAngleDeg:  45,
					StormMajorKm:  120,
					StormMinorKm:  80,
					StormAngleDeg: 45,
				})
			}
		}
	}
	return out
}
