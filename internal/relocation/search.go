// Package relocation ranks candidate sites by expected loss and compares
// a current site against alternatives.
package relocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// DefaultWorkers bounds concurrent candidate evaluations.
const DefaultWorkers = 8

// Assessor evaluates one location.
type Assessor interface {
	Assess(ctx context.Context, req domain.AssessmentRequest) (domain.Assessment, error)
}

// Candidate is a site under consideration.
type Candidate struct {
	Name string     `json:"name" yaml:"name"`
	Geo  domain.Geo `json:"geo" yaml:"geo"`
}

// Query describes a relocation search. TopK <= 0 returns every evaluated candidate.
type Query struct {
	Candidates []Candidate
	Scenario   domain.Scenario
	Year       int
	Hazards    []domain.HazardType
	Building   *domain.BuildingAttributes
	Asset      *domain.AssetInfo
	TopK       int
}

// Ranked is one evaluated candidate in rank order.
type Ranked struct {
	Rank       int               `json:"rank"`
	Index      int               `json:"index"`
	Candidate  Candidate         `json:"candidate"`
	MeanAAL    float64           `json:"mean_aal"`
	MeanRisk   float64           `json:"mean_risk"`
	Assessment domain.Assessment `json:"assessment"`
}

// Failure records a candidate that could not be evaluated.
type Failure struct {
	Index     int       `json:"index"`
	Candidate Candidate `json:"candidate"`
	Error     string    `json:"error"`
}

// SearchResult is the outcome of a search. Evaluated + Failed == Total.
type SearchResult struct {
	RunID     string          `json:"run_id"`
	Scenario  domain.Scenario `json:"scenario"`
	Year      int             `json:"year"`
	Ranked    []Ranked        `json:"ranked"`
	Failures  []Failure       `json:"failures,omitempty"`
	Evaluated int             `json:"evaluated"`
	Failed    int             `json:"failed"`
	Total     int             `json:"total"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
}

// Searcher evaluates candidates in parallel.
type Searcher struct {
	assessor Assessor
	workers  int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewSearcher creates a Searcher. A non-positive workers selects DefaultWorkers.
func NewSearcher(a Assessor, workers int, logger *slog.Logger, metrics *observability.Metrics) *Searcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Searcher{assessor: a, workers: workers, logger: logger, metrics: metrics}
}

type outcome struct {
	assessment domain.Assessment
	err        error
}

// Search evaluates every candidate and ranks the successes by ascending mean
// AAL, ties broken by input order. A candidate whose evaluation fails is
// logged, counted and excluded; only cancellation of ctx aborts the search.
func (s *Searcher) Search(ctx context.Context, q Query) (SearchResult, error) {
	if len(q.Candidates) == 0 {
		return SearchResult{}, fmt.Errorf("%w: no candidates", domain.ErrInvalidRequest)
	}

	start := time.Now()
	res := SearchResult{
		RunID:     uuid.NewString(),
		Scenario:  q.Scenario,
		Year:      q.Year,
		Total:     len(q.Candidates),
		StartedAt: domain.Now(),
	}
	s.logger.Info("relocation search started",
		"run_id", res.RunID,
		"candidates", res.Total,
		"scenario", q.Scenario,
		"year", q.Year,
		"workers", s.workers,
	)

	outcomes := make([]outcome, len(q.Candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range q.Candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			asm, err := s.assessor.Assess(gctx, q.request(c))
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			outcomes[i] = outcome{assessment: asm, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SearchResult{}, fmt.Errorf("relocation search %s: %w", res.RunID, err)
	}

	for i, o := range outcomes {
		c := q.Candidates[i]
		if o.err != nil {
			res.Failed++
			res.Failures = append(res.Failures, Failure{Index: i, Candidate: c, Error: o.err.Error()})
			s.metrics.RelocationCandidates.WithLabelValues("failed").Inc()
			s.logger.Warn("candidate evaluation failed",
				"run_id", res.RunID,
				"candidate", c.Name,
				"lat", c.Geo.Lat,
				"lon", c.Geo.Lon,
				"invalid", errors.Is(o.err, domain.ErrInvalidRequest),
				"error", o.err,
			)
			continue
		}
		res.Evaluated++
		s.metrics.RelocationCandidates.WithLabelValues("evaluated").Inc()
		res.Ranked = append(res.Ranked, Ranked{
			Index:      i,
			Candidate:  c,
			MeanAAL:    o.assessment.MeanAAL,
			MeanRisk:   o.assessment.MeanRisk,
			Assessment: o.assessment,
		})
	}

	Rank(res.Ranked)
	if q.TopK > 0 && len(res.Ranked) > q.TopK {
		res.Ranked = res.Ranked[:q.TopK]
	}

	res.Duration = time.Since(start)
	s.metrics.RelocationDuration.Observe(res.Duration.Seconds())
	s.logger.Info("relocation search finished",
		"run_id", res.RunID,
		"evaluated", res.Evaluated,
		"failed", res.Failed,
		"total", res.Total,
		"duration", res.Duration,
	)
	return res, nil
}

// Rank sorts by ascending mean AAL, then by input index, and assigns 1-based ranks.
func Rank(rs []Ranked) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].MeanAAL != rs[j].MeanAAL {
			return rs[i].MeanAAL < rs[j].MeanAAL
		}
		return rs[i].Index < rs[j].Index
	})
	for i := range rs {
		rs[i].Rank = i + 1
	}
}

func (q Query) request(c Candidate) domain.AssessmentRequest {
	return domain.AssessmentRequest{
		RequestID: c.Name,
		Geo:       c.Geo,
		Scenario:  q.Scenario,
		Year:      q.Year,
		Hazards:   q.Hazards,
		Building:  q.Building,
		Asset:     q.Asset,
	}
}
