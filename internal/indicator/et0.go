package indicator

import (
	"math"
	"time"
)

// MonthClimate is the monthly-mean weather used for reference
// evapotranspiration. RsdsWm2 may be NaN, in which case radiation is
// estimated from the temperature range.
type MonthClimate struct {
	Year     int
	Month    time.Month
	TmeanC   float64
	TmaxC    float64
	TminC    float64
	RH       float64 // percent
	Wind10m  float64 // m/s at 10 m
	RsdsWm2  float64
	PrMm     float64 // monthly total
	Latitude float64
	ElevM    float64
}

const (
	solarConstant = 0.0820 // MJ m-2 min-1
	stefanBoltz   = 4.903e-9
)

func satVapour(t float64) float64 {
	return 0.6108 * math.Exp(17.27*t/(t+237.3))
}

// ExtraterrestrialRadiation returns Ra in MJ/m²/day for the middle of the
// given month (FAO-56 eq. 21).
func ExtraterrestrialRadiation(lat float64, year int, month time.Month) float64 {
	mid := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC).YearDay()
	j := float64(mid)
	dr := 1 + 0.033*math.Cos(2*math.Pi*j/365)
	decl := 0.409 * math.Sin(2*math.Pi*j/365-1.39)
	phi := lat * math.Pi / 180
	ws := math.Acos(clamp(-math.Tan(phi)*math.Tan(decl), -1, 1))
	ra := 24 * 60 / math.Pi * solarConstant * dr *
		(ws*math.Sin(phi)*math.Sin(decl) + math.Cos(phi)*math.Cos(decl)*math.Sin(ws))
	return math.Max(ra, 0)
}

// ReferenceET0 returns FAO-56 Penman-Monteith reference evapotranspiration
// as a monthly total in mm. Missing temperature inputs yield NaN.
func ReferenceET0(c MonthClimate) float64 {
	tmax, tmin, t := c.TmaxC, c.TminC, c.TmeanC
	if math.IsNaN(tmax) || math.IsNaN(tmin) {
		return math.NaN()
	}
	if tmax < tmin {
		tmax, tmin = tmin, tmax
	}
	if math.IsNaN(t) {
		t = (tmax + tmin) / 2
	}
	rh := 70.0
	if !math.IsNaN(c.RH) {
		rh = clamp(c.RH, 0, 100)
	}
	u10 := 2.0
	if !math.IsNaN(c.Wind10m) {
		u10 = math.Max(c.Wind10m, 0)
	}
	u2 := u10 * 4.87 / math.Log(67.8*10-5.42)

	p := 101.3 * math.Pow((293-0.0065*c.ElevM)/293, 5.26)
	gamma := 0.000665 * p
	delta := 4098 * satVapour(t) / math.Pow(t+237.3, 2)
	es := (satVapour(tmax) + satVapour(tmin)) / 2
	ea := rh / 100 * es

	ra := ExtraterrestrialRadiation(c.Latitude, c.Year, c.Month)
	var rs float64
	if math.IsNaN(c.RsdsWm2) {
		rs = 0.16 * math.Sqrt(tmax-tmin) * ra
	} else {
		rs = math.Max(c.RsdsWm2, 0) * 0.0864
	}
	rso := (0.75 + 2e-5*c.ElevM) * ra
	ratio := 1.0
	if rso > 0 {
		ratio = math.Min(rs/rso, 1)
	}
	rns := 0.77 * rs
	rnl := stefanBoltz * (math.Pow(tmax+273.16, 4) + math.Pow(tmin+273.16, 4)) / 2 *
		(0.34 - 0.14*math.Sqrt(ea)) * (1.35*ratio - 0.35)
	rn := rns - rnl

	daily := (0.408*delta*rn + gamma*900/(t+273)*u2*(es-ea)) / (delta + gamma*(1+0.34*u2))
	return math.Max(daily, 0) * float64(daysIn(c.Year, c.Month))
}

// EffectivePrecipitation returns P − ET0 for one month in mm.
func EffectivePrecipitation(c MonthClimate) float64 {
	if math.IsNaN(c.PrMm) {
		return math.NaN()
	}
	return c.PrMm - ReferenceET0(c)
}
