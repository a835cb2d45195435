package indicator

import (
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Canadian Forest Fire Weather Index System (Van Wagner 1987).

// Start-up values for the moisture codes.
const (
	StartFFMC = 85.0
	StartDMC  = 6.0
	StartDC   = 15.0
)

// FireState is the carried day-to-day state of the three moisture codes.
type FireState struct {
	FFMC float64 `json:"ffmc"`
	DMC  float64 `json:"dmc"`
	DC   float64 `json:"dc"`
}

// InitialFireState returns the standard start-up codes.
func InitialFireState() FireState {
	return FireState{FFMC: StartFFMC, DMC: StartDMC, DC: StartDC}
}

// FireWeather is one day of noon weather.
type FireWeather struct {
	Month    time.Month
	TempC    float64
	RH       float64 // percent
	WindKmh  float64
	RainMm   float64
	Latitude float64
}

// FireIndices holds the six outputs of one daily step.
type FireIndices struct {
	FFMC float64 `json:"ffmc"`
	DMC  float64 `json:"dmc"`
	DC   float64 `json:"dc"`
	ISI  float64 `json:"isi"`
	BUI  float64 `json:"bui"`
	FWI  float64 `json:"fwi"`
}

func (w FireWeather) sanitized() FireWeather {
	w.RH = clamp(w.RH, 0, 100)
	w.WindKmh = math.Max(w.WindKmh, 0)
	w.RainMm = math.Max(w.RainMm, 0)
	return w
}

func (w FireWeather) valid() bool {
	for _, v := range []float64{w.TempC, w.RH, w.WindKmh, w.RainMm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return w.Month >= time.January && w.Month <= time.December
}

// StepFire advances the moisture codes by one day. Days with a missing
// observation carry prev forward unchanged and report ok=false.
func StepFire(prev FireState, w FireWeather) (next FireState, idx FireIndices, ok bool) {
	if !w.valid() {
		return prev, FireIndices{}, false
	}
	w = w.sanitized()

	next = FireState{
		FFMC: ffmc(prev.FFMC, w),
		DMC:  dmc(prev.DMC, w),
		DC:   dc(prev.DC, w),
	}
	isi := isi(next.FFMC, w.WindKmh)
	bui := bui(next.DMC, next.DC)
	return next, FireIndices{
		FFMC: next.FFMC,
		DMC:  next.DMC,
		DC:   next.DC,
		ISI:  isi,
		BUI:  bui,
		FWI:  fwi(isi, bui),
	}, true
}

func ffmc(prev float64, w FireWeather) float64 {
	mo := 147.2 * (101 - prev) / (59.5 + prev)
	if w.RainMm > 0.5 {
		rf := w.RainMm - 0.5
		wet := 42.5 * rf * math.Exp(-100/(251-mo)) * (1 - math.Exp(-6.93/rf))
		if mo > 150 {
			mo += wet + 0.0015*(mo-150)*(mo-150)*math.Sqrt(rf)
		} else {
			mo += wet
		}
		mo = math.Min(mo, 250)
	}

	t, h, ws := w.TempC, w.RH, w.WindKmh
	ed := 0.942*math.Pow(h, 0.679) + 11*math.Exp((h-100)/10) + 0.18*(21.1-t)*(1-math.Exp(-0.115*h))
	var m float64
	switch {
	case mo > ed:
		ko := 0.424*(1-math.Pow(h/100, 1.7)) + 0.0694*math.Sqrt(ws)*(1-math.Pow(h/100, 8))
		kd := ko * 0.581 * math.Exp(0.0365*t)
		m = ed + (mo-ed)*math.Pow(10, -kd)
	default:
		ew := 0.618*math.Pow(h, 0.753) + 10*math.Exp((h-100)/10) + 0.18*(21.1-t)*(1-math.Exp(-0.115*h))
		if mo < ew {
			k1 := 0.424*(1-math.Pow((100-h)/100, 1.7)) + 0.0694*math.Sqrt(ws)*(1-math.Pow((100-h)/100, 8))
			kw := k1 * 0.581 * math.Exp(0.0365*t)
			m = ew - (ew-mo)*math.Pow(10, -kw)
		} else {
			m = mo
		}
	}
	if math.IsNaN(m) {
		m = mo
	}
	m = clamp(m, 0, 250)
	return clamp(59.5*(250-m)/(147.2+m), 0, 101)
}

// Effective day-length factors for the duff moisture code by latitude band.
var dmcDayLength = map[string][12]float64{
	"n30": {6.5, 7.5, 9.0, 12.8, 13.9, 13.9, 12.4, 10.9, 9.4, 8.0, 7.0, 6.0},
	"n10": {7.9, 8.4, 8.9, 9.5, 9.9, 10.2, 10.1, 9.7, 9.1, 8.6, 8.1, 7.8},
	"eq":  {9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9},
	"s10": {10.1, 9.6, 9.1, 8.5, 8.1, 7.8, 7.9, 8.3, 8.9, 9.4, 9.9, 10.2},
	"s30": {11.5, 10.5, 9.2, 7.9, 6.8, 6.2, 6.5, 7.4, 8.7, 10.0, 11.2, 11.8},
}

// Day-length adjustments for the drought code by latitude band.
var dcDayLength = map[string][12]float64{
	"n20": {-1.6, -1.6, -1.6, 0.9, 3.8, 5.8, 6.4, 5.0, 2.4, 0.4, -1.6, -1.6},
	"eq":  {1.4, 1.4, 1.4, 1.4, 1.4, 1.4, 1.4, 1.4, 1.4, 1.4, 1.4, 1.4},
	"s20": {6.4, 5.0, 2.4, 0.4, -1.6, -1.6, -1.6, -1.6, -1.6, 0.9, 3.8, 5.8},
}

// DayLengthDMC returns the duff moisture day-length factor.
func DayLengthDMC(lat float64, month time.Month) float64 {
	band := "eq"
	switch {
	case lat >= 30:
		band = "n30"
	case lat >= 10:
		band = "n10"
	case lat <= -30:
		band = "s30"
	case lat <= -10:
		band = "s10"
	}
	return dmcDayLength[band][month-1]
}

// DayLengthDC returns the drought code seasonal day-length adjustment.
func DayLengthDC(lat float64, month time.Month) float64 {
	band := "eq"
	switch {
	case lat > 20:
		band = "n20"
	case lat <= -20:
		band = "s20"
	}
	return dcDayLength[band][month-1]
}

func dmc(prev float64, w FireWeather) float64 {
	t := math.Max(w.TempC, -1.1)
	rk := 1.894 * (t + 1.1) * (100 - w.RH) * DayLengthDMC(w.Latitude, w.Month) * 1e-6

	pr := prev
	if w.RainMm > 1.5 {
		re := 0.92*w.RainMm - 1.27
		mo := 20 + math.Exp(5.6348-prev/43.43)
		var b float64
		switch {
		case prev <= 33:
			b = 100 / (0.5 + 0.3*prev)
		case prev <= 65:
			b = 14 - 1.3*math.Log(prev)
		default:
			b = 6.2*math.Log(prev) - 17.2
		}
		mr := mo + 1000*re/(48.77+b*re)
		pr = math.Max(244.72-43.43*math.Log(mr-20), 0)
	}
	return math.Max(pr+100*rk, 0)
}

func dc(prev float64, w FireWeather) float64 {
	t := math.Max(w.TempC, -2.8)
	pe := math.Max((0.36*(t+2.8)+DayLengthDC(w.Latitude, w.Month))/2, 0)

	dr := prev
	if w.RainMm > 2.8 {
		rd := 0.83*w.RainMm - 1.27
		qo := 800 * math.Exp(-prev/400)
		qr := qo + 3.937*rd
		dr = math.Max(400*math.Log(800/qr), 0)
	}
	return math.Max(dr+pe, 0)
}

func isi(ffmc, windKmh float64) float64 {
	mo := 147.2 * (101 - ffmc) / (59.5 + ffmc)
	ff := 19.115 * math.Exp(-0.1386*mo) * (1 + math.Pow(mo, 5.31)/4.93e7)
	return ff * math.Exp(0.05039*windKmh)
}

func bui(dmc, dc float64) float64 {
	if dmc == 0 && dc == 0 {
		return 0
	}
	var u float64
	if dmc <= 0.4*dc {
		u = 0.8 * dmc * dc / (dmc + 0.4*dc)
	} else {
		u = dmc - (1-0.8*dc/(dmc+0.4*dc))*(0.92+math.Pow(0.0114*dmc, 1.7))
	}
	return math.Max(u, 0)
}

func fwi(isi, bui float64) float64 {
	var bb float64
	if bui <= 80 {
		bb = 0.1 * isi * (0.626*math.Pow(bui, 0.809) + 2)
	} else {
		bb = 0.1 * isi * (1000 / (25 + 108.64*math.Exp(-0.023*bui)))
	}
	if bb <= 1 {
		return bb
	}
	return math.Exp(2.72 * math.Pow(0.434*math.Log(bb), 0.647))
}

// FireWeatherInputs are the aligned daily series the fire-weather extractor
// needs. Wind is in m/s as delivered by providers.
type FireWeatherInputs struct {
	Latitude float64
	Tas      domain.Series
	Hurs     domain.Series
	Wind     domain.Series
	Pr       domain.Series
}

// DailyFWI folds StepFire over the days present in Tas, joining the other
// series by calendar date. Days where any variable is missing produce no
// output and keep the previous state.
func DailyFWI(in FireWeatherInputs) ([]time.Time, []FireIndices) {
	hurs := byDay(in.Hurs)
	wind := byDay(in.Wind)
	pr := byDay(in.Pr)

	points := append([]domain.Point(nil), in.Tas.Points...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	state := InitialFireState()
	var (
		times []time.Time
		out   []FireIndices
	)
	for _, p := range points {
		k := dayOf(p.Time)
		w := FireWeather{
			Month:    p.Time.Month(),
			TempC:    p.Value,
			RH:       lookup(hurs, k),
			WindKmh:  lookup(wind, k) * 3.6,
			RainMm:   lookup(pr, k),
			Latitude: in.Latitude,
		}
		var (
			idx FireIndices
			ok  bool
		)
		state, idx, ok = StepFire(state, w)
		if !ok {
			continue
		}
		times = append(times, p.Time)
		out = append(out, idx)
	}
	return times, out
}

// FireWeatherIntensity returns, for every calendar year with data, the 95th
// percentile of daily FWI.
func FireWeatherIntensity(in FireWeatherInputs) (domain.IntensitySeries, error) {
	if in.Tas.Len() == 0 || in.Hurs.Len() == 0 || in.Wind.Len() == 0 || in.Pr.Len() == 0 {
		return domain.IntensitySeries{}, domain.MissingData(domain.Wildfire, "series", "daily fire weather", domain.ErrNotFound)
	}

	times, daily := DailyFWI(in)
	if len(daily) == 0 {
		return domain.IntensitySeries{}, domain.Computation(domain.Wildfire, "fwi", "no complete weather days")
	}

	perYear := make(map[int][]float64)
	for i, t := range times {
		perYear[t.Year()] = append(perYear[t.Year()], daily[i].FWI)
	}
	years := make([]int, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := domain.IntensitySeries{Hazard: domain.Wildfire, Unit: domain.Yearly}
	for _, y := range years {
		out.Times = append(out.Times, domain.YearStart(y))
		out.Values = append(out.Values, Percentile(perYear[y], 95))
	}
	return out, nil
}

func byDay(s domain.Series) map[dayKey]float64 {
	out := make(map[dayKey]float64, s.Len())
	for _, p := range s.Points {
		out[dayOf(p.Time)] = p.Value
	}
	return out
}

func lookup(m map[dayKey]float64, k dayKey) float64 {
	v, ok := m[k]
	if !ok {
		return math.NaN()
	}
	return v
}
