package binning

import (
	"math"
	"sort"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Smoothing parameters used for probability curves.
const (
	DefaultWindow = 5
	DefaultSigma  = 1.0
)

// Smoothed estimates a per-year probability curve. For each target year it
// takes bin membership fractions over a symmetric window of neighbouring
// years, then applies a Gaussian kernel across years per bin and
// renormalizes each year to sum to 1.
type Smoothed struct {
	Classifier *Classifier
	Window     int
	Sigma      float64
}

// NewSmoothed returns a Smoothed estimator with the default window and sigma.
func NewSmoothed(c *Classifier) Smoothed {
	return Smoothed{Classifier: c, Window: DefaultWindow, Sigma: DefaultSigma}
}

// EstimateByYear returns one probability vector per year present in s.
// Sub-yearly samples are grouped by calendar year. A series without
// timestamps is read as consecutive years starting at startYear.
func (sm Smoothed) EstimateByYear(s domain.IntensitySeries, startYear int) []domain.YearProbabilities {
	byYear := groupByYear(s, startYear)
	if len(byYear) == 0 {
		return nil
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	half := sm.Window / 2
	nb := sm.Classifier.Len()
	raw := make([][]float64, len(years))
	has := make([]bool, len(years))
	for i, y := range years {
		var window []float64
		for wy := y - half; wy <= y+half; wy++ {
			window = append(window, byYear[wy]...)
		}
		d := sm.Classifier.Estimate(window)
		raw[i] = d.Probabilities
		has[i] = d.Samples > 0
	}

	out := make([]domain.YearProbabilities, len(years))
	for i, y := range years {
		vec := raw[i]
		if sm.Sigma > 0 {
			vec = sm.kernel(years, raw, has, i, nb)
		}
		out[i] = domain.YearProbabilities{Year: y, Values: normalize(vec)}
	}
	return out
}

// kernel applies Gaussian weights over the years around index i, ignoring
// years whose window had no valid samples.
func (sm Smoothed) kernel(years []int, raw [][]float64, has []bool, i, nb int) []float64 {
	vec := make([]float64, nb)
	radius := int(math.Ceil(3 * sm.Sigma))
	var wsum float64
	for j := range years {
		dy := years[j] - years[i]
		if dy < -radius || dy > radius || !has[j] {
			continue
		}
		w := math.Exp(-float64(dy*dy) / (2 * sm.Sigma * sm.Sigma))
		wsum += w
		for b := 0; b < nb; b++ {
			vec[b] += w * raw[j][b]
		}
	}
	if wsum == 0 {
		return vec
	}
	for b := range vec {
		vec[b] /= wsum
	}
	return vec
}

func normalize(vec []float64) []float64 {
	var total float64
	for _, v := range vec {
		total += v
	}
	out := make([]float64, len(vec))
	if total <= 0 {
		return out
	}
	for i, v := range vec {
		out[i] = v / total
	}
	return out
}

func groupByYear(s domain.IntensitySeries, startYear int) map[int][]float64 {
	out := make(map[int][]float64)
	if len(s.Times) == len(s.Values) && len(s.Times) > 0 {
		for i, t := range s.Times {
			out[t.Year()] = append(out[t.Year()], s.Values[i])
		}
		return out
	}
	for i, v := range s.Values {
		out[startYear+i] = append(out[startYear+i], v)
	}
	return out
}
