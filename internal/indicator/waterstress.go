package indicator

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// MissingFlowLimit is the largest fraction of missing daily flows a year may
// have and still count toward the renewable-resource baseline.
const MissingFlowLimit = 0.25

const secondsPerDay = 86400

// WaterStressCurves holds withdrawal multipliers at anchor years per
// scenario. Scenarios without a curve use the mean of the nearest lower and
// higher forcing curves.
type WaterStressCurves struct {
	Anchors []int                         `yaml:"anchors"`
	Curves  map[domain.Scenario][]float64 `yaml:"curves"`
}

// DefaultWaterStressCurves returns the built-in withdrawal growth curves.
func DefaultWaterStressCurves() WaterStressCurves {
	return WaterStressCurves{
		Anchors: []int{2020, 2030, 2050, 2080},
		Curves: map[domain.Scenario][]float64{
			domain.SSP126: {1.00, 1.05, 1.08, 1.06},
			domain.SSP370: {1.00, 1.12, 1.25, 1.40},
			domain.SSP585: {1.00, 1.15, 1.32, 1.55},
		},
	}
}

// Validate checks that anchors ascend and every curve matches them.
func (c WaterStressCurves) Validate() error {
	if len(c.Anchors) == 0 {
		return fmt.Errorf("water stress curves: no anchor years")
	}
	for i := 1; i < len(c.Anchors); i++ {
		if c.Anchors[i] <= c.Anchors[i-1] {
			return fmt.Errorf("water stress curves: anchors must ascend, got %v", c.Anchors)
		}
	}
	for s, v := range c.Curves {
		if len(v) != len(c.Anchors) {
			return fmt.Errorf("water stress curves: %s has %d points for %d anchors", s, len(v), len(c.Anchors))
		}
	}
	return nil
}

// curveFor resolves the anchor values for s, interpolating intermediate
// scenarios from their bounding neighbours.
func (c WaterStressCurves) curveFor(s domain.Scenario) ([]float64, error) {
	if v, ok := c.Curves[s]; ok {
		return v, nil
	}
	rank := s.Rank()
	if rank < 0 {
		return nil, fmt.Errorf("no withdrawal curve for scenario %q", s)
	}
	var lower, upper []float64
	all := domain.Scenarios()
	for i := rank - 1; i >= 0 && lower == nil; i-- {
		lower = c.Curves[all[i]]
	}
	for i := rank + 1; i < len(all) && upper == nil; i++ {
		upper = c.Curves[all[i]]
	}
	switch {
	case lower != nil && upper != nil:
		out := make([]float64, len(lower))
		for i := range lower {
			out[i] = (lower[i] + upper[i]) / 2
		}
		return out, nil
	case lower != nil:
		return lower, nil
	case upper != nil:
		return upper, nil
	}
	return nil, fmt.Errorf("no withdrawal curve for scenario %q", s)
}

// Multiplier returns the withdrawal multiplier for year under s, linear
// between anchors and held constant beyond them.
func (c WaterStressCurves) Multiplier(s domain.Scenario, year int) (float64, error) {
	if s == domain.Historical {
		return 1, nil
	}
	curve, err := c.curveFor(s)
	if err != nil {
		return 0, err
	}
	a := c.Anchors
	if year <= a[0] {
		return curve[0], nil
	}
	last := len(a) - 1
	if year >= a[last] {
		return curve[last], nil
	}
	for i := 0; i < last; i++ {
		if year >= a[i] && year <= a[i+1] {
			f := float64(year-a[i]) / float64(a[i+1]-a[i])
			return curve[i] + f*(curve[i+1]-curve[i]), nil
		}
	}
	return curve[last], nil
}

// YearVolume is the annual discharge volume of one baseline year.
type YearVolume struct {
	Year    int
	Volume  float64 // m³
	Missing int
	Days    int
	Filled  bool
}

// AnnualVolumes applies the data-quality gate to a daily discharge record.
// A day is missing when its sample is NaN or absent. Years above
// MissingFlowLimit are dropped; years with some missing days have them
// filled with the year's mean flow.
func AnnualVolumes(discharge domain.Series) (kept []YearVolume, dropped []int) {
	flows := make(map[int]map[dayKey]float64)
	for _, p := range discharge.Points {
		y := p.Time.Year()
		if flows[y] == nil {
			flows[y] = make(map[dayKey]float64)
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Value < 0 {
			continue
		}
		flows[y][dayOf(p.Time)] = p.Value
	}

	years := make([]int, 0, len(flows))
	for y := range flows {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, y := range years {
		days := daysInYear(y)
		valid := flows[y]
		missing := days - len(valid)
		if float64(missing)/float64(days) > MissingFlowLimit || len(valid) == 0 {
			dropped = append(dropped, y)
			continue
		}
		var sum float64
		for _, q := range valid {
			sum += q
		}
		mean := sum / float64(len(valid))
		sum += mean * float64(missing)
		kept = append(kept, YearVolume{
			Year:    y,
			Volume:  sum * secondsPerDay,
			Missing: missing,
			Days:    days,
			Filled:  missing > 0,
		})
	}
	return kept, dropped
}

// TRWR returns the mean annual renewable volume over the kept baseline years.
func TRWR(discharge domain.Series) (float64, error) {
	kept, dropped := AnnualVolumes(discharge)
	if len(kept) == 0 {
		return 0, domain.MissingData(domain.WaterStress, "trwr",
			fmt.Sprintf("no usable discharge year (%d dropped)", len(dropped)), domain.ErrNotFound)
	}
	var sum float64
	for _, k := range kept {
		sum += k.Volume
	}
	return sum / float64(len(kept)), nil
}

// ClimateInputs are the weather series behind effective precipitation.
// Daily or monthly samples are both accepted and aggregated by month.
type ClimateInputs struct {
	Tas    domain.Series
	Tasmax domain.Series
	Tasmin domain.Series
	Hurs   domain.Series
	Wind   domain.Series
	Pr     domain.Series
	Rsds   domain.Series
}

// AnnualEffectivePrecipitation sums monthly P − ET0 per calendar year.
// Years lacking any of the twelve months are omitted.
func AnnualEffectivePrecipitation(in ClimateInputs, geo domain.Geo, elevM float64) map[int]float64 {
	tas := monthly(in.Tas, false)
	tmax := monthly(in.Tasmax, false)
	tmin := monthly(in.Tasmin, false)
	hurs := monthly(in.Hurs, false)
	wind := monthly(in.Wind, false)
	pr := monthly(in.Pr, true)
	rsds := monthly(in.Rsds, false)

	get := func(m map[monthKey]float64, k monthKey) float64 {
		if v, ok := m[k]; ok {
			return v
		}
		return math.NaN()
	}

	perYear := make(map[int][]float64)
	for k := range pr {
		c := MonthClimate{
			Year:     k.year,
			Month:    k.month,
			TmeanC:   get(tas, k),
			TmaxC:    get(tmax, k),
			TminC:    get(tmin, k),
			RH:       get(hurs, k),
			Wind10m:  get(wind, k),
			RsdsWm2:  get(rsds, k),
			PrMm:     pr[k],
			Latitude: geo.Lat,
			ElevM:    elevM,
		}
		ep := EffectivePrecipitation(c)
		if math.IsNaN(ep) {
			continue
		}
		perYear[k.year] = append(perYear[k.year], ep)
	}

	out := make(map[int]float64, len(perYear))
	for y, months := range perYear {
		if len(months) < 12 {
			continue
		}
		var sum float64
		for _, v := range months {
			sum += v
		}
		out[y] = sum
	}
	return out
}

// WaterStressInput gathers everything the water-stress extractor reads.
type WaterStressInput struct {
	Geo            domain.Geo
	ElevationM     float64
	Scenario       domain.Scenario
	Range          domain.TimeRange
	BaselinePeriod domain.TimeRange
	Discharge      domain.Series // historical daily, m³/s
	Withdrawal     domain.Series // historical yearly, m³
	Baseline       ClimateInputs // historical weather over BaselinePeriod
	Projection     ClimateInputs // scenario weather over Range
	Curves         WaterStressCurves
}

// WaterStressDetail reports the intermediate quantities of a calculation.
type WaterStressDetail struct {
	TRWR               float64
	BaselineWithdrawal float64
	BaselineEP         float64
	RatioFallback      bool
	Skipped            []int
}

// WaterStressIntensity computes withdrawal ÷ ARWR for each year of Range
// with projected climate. ARWR is TRWR scaled by the year's effective
// precipitation relative to the baseline period. Years whose ARWR is not
// positive are emitted as NaN.
func WaterStressIntensity(in WaterStressInput) (domain.IntensitySeries, WaterStressDetail, error) {
	var detail WaterStressDetail

	trwr, err := TRWR(in.Discharge)
	if err != nil {
		return domain.IntensitySeries{}, detail, err
	}
	detail.TRWR = trwr

	withdrawal := Mean(in.Withdrawal.Values())
	if math.IsNaN(withdrawal) {
		return domain.IntensitySeries{}, detail, domain.MissingData(domain.WaterStress, "withdrawal", domain.VarWaterWithdrawal, domain.ErrNotFound)
	}
	detail.BaselineWithdrawal = withdrawal

	baseEP := AnnualEffectivePrecipitation(in.Baseline, in.Geo, in.ElevationM)
	var baseSum float64
	var baseN int
	for y, ep := range baseEP {
		if in.BaselinePeriod.Contains(y) {
			baseSum += ep
			baseN++
		}
	}
	if baseN > 0 {
		detail.BaselineEP = baseSum / float64(baseN)
	}
	if baseN == 0 || detail.BaselineEP <= 0 {
		detail.RatioFallback = true
	}

	projEP := AnnualEffectivePrecipitation(in.Projection, in.Geo, in.ElevationM)
	if len(projEP) == 0 {
		return domain.IntensitySeries{}, detail, domain.MissingData(domain.WaterStress, "series", "projected climate", domain.ErrNotFound)
	}

	out := domain.IntensitySeries{Hazard: domain.WaterStress, Unit: domain.Yearly}
	for _, y := range in.Range.Years() {
		ep, ok := projEP[y]
		if !ok {
			continue
		}
		ratio := 1.0
		if !detail.RatioFallback {
			ratio = math.Max(ep/detail.BaselineEP, 0)
		}
		mult, err := in.Curves.Multiplier(in.Scenario, y)
		if err != nil {
			return domain.IntensitySeries{}, detail, domain.MissingData(domain.WaterStress, "curve", string(in.Scenario), err)
		}

		arwr := trwr * ratio
		v := math.NaN()
		if arwr > 0 {
			v = withdrawal * mult / arwr
		} else {
			detail.Skipped = append(detail.Skipped, y)
		}
		out.Times = append(out.Times, domain.YearStart(y))
		out.Values = append(out.Values, v)
	}
	if out.Len() == 0 {
		return out, detail, domain.MissingData(domain.WaterStress, "series",
			fmt.Sprintf("no projected year in %d-%d", in.Range.Start, in.Range.End), domain.ErrNotFound)
	}
	return out, detail, nil
}

