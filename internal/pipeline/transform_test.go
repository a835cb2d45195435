package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/fixture"
	"github.com/couchcryptid/climate-risk-engine/internal/assess"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/hazard"
	"github.com/couchcryptid/climate-risk-engine/internal/pipeline"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTransformer_WithSyntheticFixture(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	manila := domain.Geo{Lat: 14.6, Lon: 121.0}
	d, err := fixture.Synthetic(fixture.SyntheticOptions{
		Seed:       3,
		Sites:      []fixture.SiteSpec{{Name: "manila", Geo: manila}},
		Projection: domain.TimeRange{Start: 2049, End: 2051},
		Baseline:   domain.TimeRange{Start: 2001, End: 2002},
		Tracks:     domain.TimeRange{Start: 2001, End: 2010},
	})
	require.NoError(t, err)

	cfg := hazard.DefaultConfig()
	cfg.Periods.Baseline = domain.TimeRange{Start: 2001, End: 2002}
	cfg.Periods.Tracks = domain.TimeRange{Start: 2001, End: 2010}
	registry, err := hazard.New(cfg)
	require.NoError(t, err)

	assessor := assess.New(registry, d, d, 1, discard(), newTestMetrics())
	tfm := pipeline.NewTransformer(assessor, discard())

	raw := requestEvent("site-1", `{"lat":14.6,"lon":121.0,"scenario":"SSP5-8.5","year":2050,"hazards":["extreme_heat","typhoon"]}`)
	a, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "site-1", a.RequestID)
	require.Len(t, a.Hazards, 2)
	heat, ok := a.Hazard(domain.ExtremeHeat)
	require.True(t, ok)
	assert.Equal(t, domain.RecordID(manila, domain.ExtremeHeat, domain.SSP585, 2050), heat.ID)
	assert.Equal(t, clock.Now(), heat.ComputedAt)
	assert.InDelta(t, 1.0, sum(heat.Probabilities.Values), 1e-9)
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}
