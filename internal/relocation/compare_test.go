package relocation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/relocation"
)

func assessment(aal, risk float64) domain.Assessment {
	return domain.Assessment{
		MeanAAL:  aal,
		MeanRisk: risk,
		Hazards: []domain.HazardResult{
			{Hazard: domain.RiverFlood, AAL: domain.AALResult{FinalAAL: aal * 2}},
			{Hazard: domain.Typhoon, AAL: domain.AALResult{FinalAAL: 0}},
		},
	}
}

func TestCompare(t *testing.T) {
	cur := relocation.Candidate{Name: "current"}
	alt := relocation.Candidate{Name: "alt"}

	tests := []struct {
		name    string
		a, b    domain.Assessment
		better  relocation.Verdict
		pct     float64
		riskRed float64
	}{
		{name: "candidate better", a: assessment(0.004, 20), b: assessment(0.001, 5), better: relocation.VerdictCandidate, pct: 75, riskRed: 15},
		{name: "current better", a: assessment(0.002, 10), b: assessment(0.003, 12), better: relocation.VerdictCurrent, pct: -50, riskRed: -2},
		{name: "equal", a: assessment(0.002, 10), b: assessment(0.002, 10), better: relocation.VerdictEqual, pct: 0, riskRed: 0},
		{name: "zero baseline", a: assessment(0, 0), b: assessment(0.001, 1), better: relocation.VerdictCurrent, pct: 0, riskRed: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := relocation.Compare(cur, alt, tt.a, tt.b)
			assert.Equal(t, tt.better, c.Better)
			assert.InDelta(t, tt.pct, c.AALReductionPct, 1e-9)
			assert.InDelta(t, tt.riskRed, c.RiskReduction, 1e-9)
			assert.InDelta(t, tt.a.MeanAAL-tt.b.MeanAAL, c.AALReduction, 1e-12)
			assert.InDelta(t, (tt.a.MeanAAL-tt.b.MeanAAL)*2, c.HazardReductions[domain.RiverFlood], 1e-12)
			assert.Contains(t, c.HazardReductions, domain.Typhoon)
		})
	}
}

func TestCompareAgainst(t *testing.T) {
	current := assessment(0.002, 10)
	ranked := []relocation.Ranked{
		{Rank: 1, Candidate: relocation.Candidate{Name: "x"}, MeanAAL: 0.001, MeanRisk: 4},
		{Rank: 2, Candidate: relocation.Candidate{Name: "y"}, MeanAAL: 0.002, MeanRisk: 10},
		{Rank: 3, Candidate: relocation.Candidate{Name: "z"}, MeanAAL: 0.003, MeanRisk: 15},
	}

	deltas := relocation.CompareAgainst(current, ranked)
	require.Len(t, deltas, 3)

	assert.Equal(t, "x", deltas[0].Candidate.Name)
	assert.True(t, deltas[0].Improves)
	assert.InDelta(t, 50, deltas[0].AALReductionPct, 1e-9)
	assert.InDelta(t, 6, deltas[0].RiskReduction, 1e-9)

	assert.False(t, deltas[1].Improves)
	assert.InDelta(t, 0, deltas[1].AALReductionPct, 1e-9)

	assert.False(t, deltas[2].Improves)
	assert.InDelta(t, -50, deltas[2].AALReductionPct, 1e-9)
	assert.Equal(t, 3, deltas[2].Rank)
}

func TestRank_StableOnTies(t *testing.T) {
	rs := []relocation.Ranked{
		{Index: 2, MeanAAL: 0.1},
		{Index: 0, MeanAAL: 0.1},
		{Index: 1, MeanAAL: 0.05},
	}
	relocation.Rank(rs)
	assert.Equal(t, []int{1, 0, 2}, []int{rs[0].Index, rs[1].Index, rs[2].Index})
	assert.Equal(t, []int{1, 2, 3}, []int{rs[0].Rank, rs[1].Rank, rs[2].Rank})
}

func TestCompareLocations(t *testing.T) {
	a := &stubAssessor{
		aal:  map[string]float64{"here": 0.004, "there": 0.003},
		fail: map[string]error{"broken": errors.New("boom")},
	}
	s, _ := newSearcher(a, 2)
	q := relocation.Query{Scenario: domain.SSP245, Year: 2050}

	c, err := s.CompareLocations(context.Background(),
		relocation.Candidate{Name: "here"}, relocation.Candidate{Name: "there"}, q)
	require.NoError(t, err)
	assert.Equal(t, relocation.VerdictCandidate, c.Better)
	assert.InDelta(t, 25, c.AALReductionPct, 1e-9)

	_, err = s.CompareLocations(context.Background(),
		relocation.Candidate{Name: "here"}, relocation.Candidate{Name: "broken"}, q)
	assert.ErrorContains(t, err, "assess candidate broken")
}
