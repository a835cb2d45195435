package relocation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Verdict names the better of two sites.
type Verdict string

const (
	VerdictCurrent   Verdict = "current"
	VerdictCandidate Verdict = "candidate"
	VerdictEqual     Verdict = "equal"
)

// Comparison contrasts a current site with one alternative. Positive
// reductions mean the candidate is better.
type Comparison struct {
	Current          Candidate                     `json:"current"`
	Candidate        Candidate                     `json:"candidate"`
	Better           Verdict                       `json:"better"`
	CurrentAAL       float64                       `json:"current_aal"`
	CandidateAAL     float64                       `json:"candidate_aal"`
	AALReduction     float64                       `json:"aal_reduction"`
	AALReductionPct  float64                       `json:"aal_reduction_pct"`
	RiskReduction    float64                       `json:"risk_reduction"`
	HazardReductions map[domain.HazardType]float64 `json:"hazard_reductions,omitempty"`
}

// Compare contrasts two evaluated sites by mean AAL. When the current site
// has zero AAL the percentage reduction is 0.
func Compare(current, candidate Candidate, a, b domain.Assessment) Comparison {
	c := Comparison{
		Current:          current,
		Candidate:        candidate,
		CurrentAAL:       a.MeanAAL,
		CandidateAAL:     b.MeanAAL,
		AALReduction:     a.MeanAAL - b.MeanAAL,
		RiskReduction:    a.MeanRisk - b.MeanRisk,
		HazardReductions: make(map[domain.HazardType]float64, len(a.Hazards)),
	}
	if a.MeanAAL > 0 {
		c.AALReductionPct = c.AALReduction / a.MeanAAL * 100
	}
	switch {
	case b.MeanAAL < a.MeanAAL:
		c.Better = VerdictCandidate
	case b.MeanAAL > a.MeanAAL:
		c.Better = VerdictCurrent
	default:
		c.Better = VerdictEqual
	}
	for _, ra := range a.Hazards {
		if rb, ok := b.Hazard(ra.Hazard); ok {
			c.HazardReductions[ra.Hazard] = ra.AAL.FinalAAL - rb.AAL.FinalAAL
		}
	}
	return c
}

// Delta is the improvement of one ranked candidate over the current site.
type Delta struct {
	Rank            int       `json:"rank"`
	Candidate       Candidate `json:"candidate"`
	MeanAAL         float64   `json:"mean_aal"`
	AALReduction    float64   `json:"aal_reduction"`
	AALReductionPct float64   `json:"aal_reduction_pct"`
	RiskReduction   float64   `json:"risk_reduction"`
	Improves        bool      `json:"improves"`
}

// CompareAgainst returns one delta per ranked candidate, in rank order.
func CompareAgainst(current domain.Assessment, ranked []Ranked) []Delta {
	out := make([]Delta, 0, len(ranked))
	for _, r := range ranked {
		d := Delta{
			Rank:          r.Rank,
			Candidate:     r.Candidate,
			MeanAAL:       r.MeanAAL,
			AALReduction:  current.MeanAAL - r.MeanAAL,
			RiskReduction: current.MeanRisk - r.MeanRisk,
			Improves:      r.MeanAAL < current.MeanAAL,
		}
		if current.MeanAAL > 0 {
			d.AALReductionPct = d.AALReduction / current.MeanAAL * 100
		}
		out = append(out, d)
	}
	return out
}

// CompareLocations evaluates both sites concurrently and compares them.
// Unlike Search, a failure of either site is returned.
func (s *Searcher) CompareLocations(ctx context.Context, current, candidate Candidate, q Query) (Comparison, error) {
	var a, b domain.Assessment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = s.assessor.Assess(gctx, q.request(current))
		if err != nil {
			return fmt.Errorf("assess current site %s: %w", current.Name, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		b, err = s.assessor.Assess(gctx, q.request(candidate))
		if err != nil {
			return fmt.Errorf("assess candidate %s: %w", candidate.Name, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}
	return Compare(current, candidate, a, b), nil
}

// Assess evaluates a single site with the query's scenario and building.
func (s *Searcher) Assess(ctx context.Context, site Candidate, q Query) (domain.Assessment, error) {
	return s.assessor.Assess(ctx, q.request(site))
}
