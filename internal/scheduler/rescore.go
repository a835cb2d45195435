// Package scheduler re-scores a fixed portfolio on a cron schedule so stored
// results track updated climate data and hazard tables.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// Assessor runs a full risk assessment for one request.
type Assessor interface {
	Assess(ctx context.Context, req domain.AssessmentRequest) (domain.Assessment, error)
}

// Loader receives the assessments of a run.
type Loader interface {
	LoadBatch(ctx context.Context, assessments []domain.Assessment) error
}

// RunSummary describes one re-scoring run.
type RunSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Sites     int
	Assessed  int
	Failed    int
}

// Rescorer assesses every portfolio site and hands the results to a loader.
type Rescorer struct {
	assessor Assessor
	loader   Loader
	requests []domain.AssessmentRequest
	workers  int
	logger   *slog.Logger
	metrics  *observability.Metrics

	cron *cron.Cron
	mu   sync.Mutex // serialises runs
}

// NewRescorer validates the portfolio and builds a Rescorer.
func NewRescorer(p Portfolio, a Assessor, l Loader, workers int, logger *slog.Logger, metrics *observability.Metrics) (*Rescorer, error) {
	reqs, err := p.Requests()
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}
	return &Rescorer{
		assessor: a,
		loader:   l,
		requests: reqs,
		workers:  workers,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// RunOnce re-scores the portfolio. Sites that fail are logged and skipped;
// the run errors only when nothing could be assessed or the load fails.
func (r *Rescorer) RunOnce(ctx context.Context) (RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum := RunSummary{StartedAt: domain.Now(), Sites: len(r.requests)}
	start := time.Now()

	results := make([]*domain.Assessment, len(r.requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, req := range r.requests {
		g.Go(func() error {
			a, err := r.assessor.Assess(gctx, req)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.logger.Warn("rescore site failed", "site", req.RequestID, "error", err)
				return nil
			}
			results[i] = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.metrics.RescoreRuns.WithLabelValues("error").Inc()
		return sum, fmt.Errorf("rescore: %w", err)
	}

	assessed := make([]domain.Assessment, 0, len(results))
	for _, a := range results {
		if a != nil {
			assessed = append(assessed, *a)
		}
	}
	sum.Assessed = len(assessed)
	sum.Failed = sum.Sites - sum.Assessed
	sum.Duration = time.Since(start)

	if sum.Assessed == 0 {
		r.metrics.RescoreRuns.WithLabelValues("error").Inc()
		return sum, errors.New("rescore: no site could be assessed")
	}
	if err := r.loader.LoadBatch(ctx, assessed); err != nil {
		r.metrics.RescoreRuns.WithLabelValues("error").Inc()
		return sum, fmt.Errorf("rescore load: %w", err)
	}

	outcome := "success"
	if sum.Failed > 0 {
		outcome = "partial"
	}
	r.metrics.RescoreRuns.WithLabelValues(outcome).Inc()
	r.logger.Info("portfolio rescored",
		"sites", sum.Sites, "assessed", sum.Assessed, "failed", sum.Failed, "duration", sum.Duration)
	return sum, nil
}

// Start schedules RunOnce with a standard five-field cron spec (descriptors
// such as @daily are accepted). Runs that would overlap are skipped.
func (r *Rescorer) Start(ctx context.Context, spec string) error {
	logger := cronLogger{r.logger}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(spec, func() {
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("scheduled rescore failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("register rescore job: %w", err)
	}
	r.cron = c
	c.Start()
	r.logger.Info("rescore scheduler started", "schedule", spec, "sites", len(r.requests))
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (r *Rescorer) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.logger.Info("rescore scheduler stopped")
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
