package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func TestWaterStressCurves_Multiplier(t *testing.T) {
	c := DefaultWaterStressCurves()
	require.NoError(t, c.Validate())

	tests := []struct {
		name     string
		scenario domain.Scenario
		year     int
		want     float64
	}{
		{"anchor", domain.SSP370, 2050, 1.25},
		{"between anchors", domain.SSP585, 2040, 1.235},
		{"before first anchor", domain.SSP585, 2000, 1.00},
		{"after last anchor", domain.SSP126, 2100, 1.06},
		{"intermediate scenario is mean of neighbours", domain.SSP245, 2050, (1.08 + 1.25) / 2},
		{"intermediate scenario between anchors", domain.SSP245, 2065, ((1.08+1.25)/2 + (1.06+1.40)/2) / 2},
		{"historical", domain.Historical, 2050, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Multiplier(tc.scenario, tc.year)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	_, err := c.Multiplier(domain.Scenario("SSP9"), 2050)
	assert.Error(t, err)
}

func TestWaterStressCurves_Validate(t *testing.T) {
	bad := WaterStressCurves{Anchors: []int{2030, 2020}}
	assert.Error(t, bad.Validate())

	bad = WaterStressCurves{Anchors: []int{2020, 2030}, Curves: map[domain.Scenario][]float64{domain.SSP126: {1}}}
	assert.Error(t, bad.Validate())
}

func TestAnnualVolumes_QualityGate(t *testing.T) {
	var s domain.Series
	// 2001: complete at 10 m³/s.
	for d := 0; d < 365; d++ {
		s.Points = append(s.Points, domain.Point{Time: dailyDate(2001, d), Value: 10})
	}
	// 2002: 10% NaN, the rest at 20 m³/s.
	for d := 0; d < 365; d++ {
		v := 20.0
		if d%10 == 0 {
			v = math.NaN()
		}
		s.Points = append(s.Points, domain.Point{Time: dailyDate(2002, d), Value: v})
	}
	// 2003: only 250 days reported (>25% absent).
	for d := 0; d < 250; d++ {
		s.Points = append(s.Points, domain.Point{Time: dailyDate(2003, d), Value: 1000})
	}

	kept, dropped := AnnualVolumes(s)
	assert.Equal(t, []int{2003}, dropped)
	require.Len(t, kept, 2)

	assert.Equal(t, 2001, kept[0].Year)
	assert.False(t, kept[0].Filled)
	assert.InDelta(t, 10*365*86400.0, kept[0].Volume, 1e-3)

	assert.Equal(t, 2002, kept[1].Year)
	assert.True(t, kept[1].Filled)
	assert.Equal(t, 37, kept[1].Missing)
	assert.InDelta(t, 20*365*86400.0, kept[1].Volume, 1e-3)

	trwr, err := TRWR(s)
	require.NoError(t, err)
	assert.InDelta(t, 15*365*86400.0, trwr, 1e-3)
}

func TestTRWR_NoUsableYear(t *testing.T) {
	s := domain.Series{Points: []domain.Point{{Time: dailyDate(2001, 0), Value: 5}}}
	_, err := TRWR(s)
	assert.True(t, domain.IsMissingData(err))
}

func TestReferenceET0(t *testing.T) {
	summer := MonthClimate{Year: 2050, Month: time.July, TmeanC: 25, TmaxC: 31, TminC: 19, RH: 60, Wind10m: 3, RsdsWm2: 250, Latitude: 35, ElevM: 50}
	et := ReferenceET0(summer)
	assert.InDelta(t, 165, et, 5)

	hargreaves := summer
	hargreaves.RsdsWm2 = math.NaN()
	assert.InDelta(t, 169, ReferenceET0(hargreaves), 5)

	hotter := summer
	hotter.TmeanC, hotter.TmaxC, hotter.TminC = 30, 36, 24
	assert.Greater(t, ReferenceET0(hotter), et)

	winter := MonthClimate{Year: 2050, Month: time.January, TmeanC: 2, TmaxC: 6, TminC: -2, RH: 75, Wind10m: 3, RsdsWm2: 80, Latitude: 35, ElevM: 50}
	assert.Less(t, ReferenceET0(winter), et)

	assert.True(t, math.IsNaN(ReferenceET0(MonthClimate{TmaxC: math.NaN(), TminC: 1, Month: time.May, Year: 2000})))
}

func TestExtraterrestrialRadiation(t *testing.T) {
	assert.InDelta(t, 25.0, ExtraterrestrialRadiation(-22.9, 2020, time.May), 0.2)
	// Polar night.
	assert.InDelta(t, 0, ExtraterrestrialRadiation(80, 2020, time.December), 1e-9)
}

func monthlyClimate(from, to int, prMm float64) ClimateInputs {
	mk := func(v string, val float64) domain.Series {
		s := domain.Series{Variable: v, Unit: domain.Monthly}
		for y := from; y <= to; y++ {
			for m := time.January; m <= time.December; m++ {
				s.Points = append(s.Points, domain.Point{Time: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), Value: val})
			}
		}
		return s
	}
	return ClimateInputs{
		Tas:    mk(domain.VarTas, 15),
		Tasmax: mk(domain.VarTasmax, 20),
		Tasmin: mk(domain.VarTasmin, 10),
		Hurs:   mk(domain.VarHurs, 70),
		Wind:   mk(domain.VarWind, 2),
		Pr:     mk(domain.VarPr, prMm),
		Rsds:   mk(domain.VarRsds, 180),
	}
}

func TestWaterStressIntensity(t *testing.T) {
	geo := domain.Geo{Lat: 35, Lon: 139}
	volume := 10 * 365 * 86400.0

	in := WaterStressInput{
		Geo:            geo,
		ElevationM:     10,
		Scenario:       domain.SSP245,
		Range:          domain.TimeRange{Start: 2049, End: 2051},
		BaselinePeriod: domain.TimeRange{Start: 2001, End: 2002},
		Discharge:      constantDaily(domain.VarDischarge, 2001, 2001, 10),
		Withdrawal:     yearly(domain.VarWaterWithdrawal, 2001, volume*0.1),
		Baseline:       monthlyClimate(2001, 2002, 100),
		Projection:     monthlyClimate(2049, 2051, 100),
		Curves:         DefaultWaterStressCurves(),
	}

	got, detail, err := WaterStressIntensity(in)
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	assert.False(t, detail.RatioFallback)
	assert.InDelta(t, volume, detail.TRWR, 1e-3)
	assert.Greater(t, detail.BaselineEP, 0.0)

	// Unchanged climate: ratio 1, so intensity tracks the withdrawal curve.
	assert.InDelta(t, 0.1*(1.08+1.25)/2, got.Values[1], 1e-9)
	assert.Less(t, got.Values[0], got.Values[1])
	assert.Less(t, got.Values[1], got.Values[2])
}

func TestWaterStressIntensity_DrierFutureRaisesStress(t *testing.T) {
	base := WaterStressInput{
		Geo:            domain.Geo{Lat: 35, Lon: 139},
		ElevationM:     10,
		Scenario:       domain.SSP585,
		Range:          domain.TimeRange{Start: 2080, End: 2080},
		BaselinePeriod: domain.TimeRange{Start: 2001, End: 2001},
		Discharge:      constantDaily(domain.VarDischarge, 2001, 2001, 10),
		Withdrawal:     yearly(domain.VarWaterWithdrawal, 2001, 1e7),
		Baseline:       monthlyClimate(2001, 2001, 100),
		Curves:         DefaultWaterStressCurves(),
	}

	same := base
	same.Projection = monthlyClimate(2080, 2080, 100)
	drier := base
	drier.Projection = monthlyClimate(2080, 2080, 80)

	a, _, err := WaterStressIntensity(same)
	require.NoError(t, err)
	b, _, err := WaterStressIntensity(drier)
	require.NoError(t, err)
	assert.Greater(t, b.Values[0], a.Values[0])
}

func TestWaterStressIntensity_NonPositiveARWRSkipped(t *testing.T) {
	in := WaterStressInput{
		Geo:            domain.Geo{Lat: 35, Lon: 139},
		Scenario:       domain.SSP126,
		Range:          domain.TimeRange{Start: 2050, End: 2050},
		BaselinePeriod: domain.TimeRange{Start: 2001, End: 2001},
		Discharge:      constantDaily(domain.VarDischarge, 2001, 2001, 10),
		Withdrawal:     yearly(domain.VarWaterWithdrawal, 2001, 1e7),
		Baseline:       monthlyClimate(2001, 2001, 100),
		// Evaporation exceeds rainfall every month: effective precipitation < 0.
		Projection: monthlyClimate(2050, 2050, 0),
		Curves:     DefaultWaterStressCurves(),
	}

	got, detail, err := WaterStressIntensity(in)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.True(t, math.IsNaN(got.Values[0]))
	assert.Equal(t, []int{2050}, detail.Skipped)
}

func TestWaterStressIntensity_MissingInputs(t *testing.T) {
	_, _, err := WaterStressIntensity(WaterStressInput{Curves: DefaultWaterStressCurves()})
	assert.True(t, domain.IsMissingData(err))

	in := WaterStressInput{
		Discharge: constantDaily(domain.VarDischarge, 2001, 2001, 10),
		Curves:    DefaultWaterStressCurves(),
	}
	_, _, err = WaterStressIntensity(in)
	assert.True(t, domain.IsMissingData(err))
}
