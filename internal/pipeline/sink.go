package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

// Sink is a named destination for assessments.
type Sink struct {
	Name   string
	Loader BatchLoader
}

// FanOut implements BatchLoader by writing every batch to each sink in order.
// The first failing sink aborts the batch; sinks that already succeeded will
// see the same records again on retry and upsert them.
type FanOut struct {
	sinks   []Sink
	metrics *observability.Metrics
}

// NewFanOut creates a loader over the given sinks.
func NewFanOut(metrics *observability.Metrics, sinks ...Sink) *FanOut {
	return &FanOut{sinks: sinks, metrics: metrics}
}

func (f *FanOut) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	for _, s := range f.sinks {
		if err := s.Loader.LoadBatch(ctx, assessments); err != nil {
			f.metrics.SinkWrites.WithLabelValues(s.Name, "error").Inc()
			return fmt.Errorf("sink %s: %w", s.Name, err)
		}
		f.metrics.SinkWrites.WithLabelValues(s.Name, "success").Inc()
	}
	return nil
}

// UpsertLoader adapts a PersistenceSink to BatchLoader.
type UpsertLoader struct {
	sink domain.PersistenceSink
}

// NewUpsertLoader wraps sink.
func NewUpsertLoader(sink domain.PersistenceSink) *UpsertLoader {
	return &UpsertLoader{sink: sink}
}

func (l *UpsertLoader) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	var results []domain.HazardResult
	for i := range assessments {
		results = append(results, assessments[i].Hazards...)
	}
	return l.sink.Upsert(ctx, results)
}
