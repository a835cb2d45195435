package indicator

import (
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Percentile returns the p-th percentile (0-100) of the finite values using
// linear interpolation between closest ranks. It returns NaN for an empty set.
func Percentile(values []float64, p float64) float64 {
	clean := finite(values)
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	if len(clean) == 1 {
		return clean[0]
	}
	rank := clamp(p, 0, 100) / 100 * float64(len(clean)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return clean[lo] + (clean[hi]-clean[lo])*frac
}

// Mean returns the mean of the finite values, or NaN if there are none.
func Mean(values []float64) float64 {
	clean := finite(values)
	if len(clean) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range clean {
		sum += v
	}
	return sum / float64(len(clean))
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

type monthKey struct {
	year  int
	month time.Month
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) dayKey {
	return dayKey{year: t.Year(), month: t.Month(), day: t.Day()}
}

// monthly aggregates s by calendar month. With sum false the finite values
// are averaged; with sum true they are totalled.
func monthly(s domain.Series, sum bool) map[monthKey]float64 {
	type acc struct {
		total float64
		n     int
	}
	accs := make(map[monthKey]*acc)
	for _, p := range s.Points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		k := monthKey{year: p.Time.Year(), month: p.Time.Month()}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.total += p.Value
		a.n++
	}
	out := make(map[monthKey]float64, len(accs))
	for k, a := range accs {
		if sum {
			out[k] = a.total
		} else {
			out[k] = a.total / float64(a.n)
		}
	}
	return out
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
