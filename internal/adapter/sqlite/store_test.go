package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func result(g domain.Geo, h domain.HazardType, finalAAL float64) domain.HazardResult {
	loss := decimal.NewFromFloat(finalAAL * 1_000_000).Round(2)
	return domain.HazardResult{
		ID:       domain.RecordID(g, h, domain.SSP245, 2050),
		Geo:      g,
		Hazard:   h,
		Scenario: domain.SSP245,
		Year:     2050,
		Risk:     domain.IntegratedRisk{HScore: 50, EScore: 60, VScore: 70, IntegratedRiskScore: 21, RiskLevel: domain.LevelLow},
		AAL: domain.AALResult{
			BaseAAL:            finalAAL,
			VulnerabilityScale: 1,
			FinalAAL:           finalAAL,
			ExpectedLoss:       &loss,
		},
		DataSource: domain.SourceFallback,
		Fallbacks:  []string{"land_cover"},
		Provenance: "rx5day SSP2-4.5 2040-2060",
		ComputedAt: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	tokyo := domain.Geo{Lat: 35.6812, Lon: 139.7671}

	in := []domain.HazardResult{
		result(tokyo, domain.RiverFlood, 0.004),
		result(tokyo, domain.Typhoon, 0.012),
	}
	require.NoError(t, s.Upsert(ctx, in))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Get(ctx, tokyo, domain.Typhoon, domain.SSP245, 2050)
	require.NoError(t, err)
	if diff := cmp.Diff(in[1].AAL.FinalAAL, got.AAL.FinalAAL); diff != "" {
		t.Errorf("final aal mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, in[1].ID, got.ID)
	assert.Equal(t, []string{"land_cover"}, got.Fallbacks)
	require.NotNil(t, got.AAL.ExpectedLoss)
	assert.True(t, in[1].AAL.ExpectedLoss.Equal(*got.AAL.ExpectedLoss))
	assert.True(t, in[1].ComputedAt.Equal(got.ComputedAt))
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g := domain.Geo{Lat: 14.6, Lon: 121.0}

	require.NoError(t, s.Upsert(ctx, []domain.HazardResult{result(g, domain.Drought, 0.001)}))
	require.NoError(t, s.Upsert(ctx, []domain.HazardResult{result(g, domain.Drought, 0.001)}))
	updated := result(g, domain.Drought, 0.009)
	require.NoError(t, s.Upsert(ctx, []domain.HazardResult{updated}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, g, domain.Drought, domain.SSP245, 2050)
	require.NoError(t, err)
	assert.InDelta(t, 0.009, got.AAL.FinalAAL, 1e-12)
}

func TestStore_SameLocationKeyAfterRounding(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := result(domain.Geo{Lat: 14.60001, Lon: 121.00001}, domain.Wildfire, 0.002)
	b := result(domain.Geo{Lat: 14.60002, Lon: 121.00002}, domain.Wildfire, 0.003)
	require.NoError(t, s.Upsert(ctx, []domain.HazardResult{a, b}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_GetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), domain.Geo{Lat: 1, Lon: 1}, domain.Drought, domain.SSP126, 2030)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_EmptyUpsertAndReadiness(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Upsert(context.Background(), nil))
	require.NoError(t, s.CheckReadiness(context.Background()))
}

func TestStore_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()
	g := domain.Geo{Lat: 52.52, Lon: 13.405}

	s, err := Open(ctx, path, slog.Default())
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, []domain.HazardResult{result(g, domain.ExtremeHeat, 0.002)}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, slog.Default())
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Get(ctx, g, domain.ExtremeHeat, domain.SSP245, 2050)
	assert.NoError(t, err)
}
