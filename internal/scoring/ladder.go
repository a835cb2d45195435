package scoring

import "math"

// Step is one rung of a threshold ladder.
type Step struct {
	Below float64 `yaml:"below" json:"below"`
	Score float64 `yaml:"score" json:"score"`
}

// Ladder maps a continuous value to a score: the first step whose Below
// exceeds the value wins, otherwise Else.
type Ladder struct {
	Steps []Step  `yaml:"steps" json:"steps"`
	Else  float64 `yaml:"else" json:"else"`
}

// Score returns the ladder score for v.
func (l Ladder) Score(v float64) float64 {
	if math.IsNaN(v) {
		return l.Else
	}
	for _, s := range l.Steps {
		if v < s.Below {
			return s.Score
		}
	}
	return l.Else
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round2 rounds to two decimals for reporting.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
