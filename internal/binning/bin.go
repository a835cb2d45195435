// Package binning discretizes hazard indicators into severity bins and
// estimates how often a series falls in each bin.
package binning

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Bin is a half-open interval [Lower, Upper). The last bin of a table has
// Upper = +Inf.
type Bin struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether v lies in [Lower, Upper).
func (b Bin) Contains(v float64) bool {
	return v >= b.Lower && v < b.Upper
}

func (b Bin) String() string {
	upper := "inf"
	if !math.IsInf(b.Upper, 1) {
		upper = strconv.FormatFloat(b.Upper, 'g', -1, 64)
	}
	return "[" + strconv.FormatFloat(b.Lower, 'g', -1, 64) + "," + upper + ")"
}

// Bounds builds a contiguous bin list from ascending edges. The last bin is
// open above the final edge.
func Bounds(edges ...float64) []Bin {
	bins := make([]Bin, len(edges))
	for i, lo := range edges {
		hi := math.Inf(1)
		if i+1 < len(edges) {
			hi = edges[i+1]
		}
		bins[i] = Bin{Lower: lo, Upper: hi}
	}
	return bins
}

var (
	errEmptyTable    = errors.New("bin table is empty")
	errRateMismatch  = errors.New("damage rates must match bins one to one")
	errBinGap        = errors.New("bins must be contiguous and ascending")
	errBoundedTail   = errors.New("last bin must be unbounded above")
	errRateDecrease  = errors.New("damage rates must be non-decreasing")
	errRateOutOfUnit = errors.New("damage rates must lie in [0,1]")
)

// Classifier assigns values to bins and carries the bins' base damage rates.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	bins  []Bin
	rates []float64
}

// NewClassifier validates a bin table and its parallel damage-rate list.
func NewClassifier(bins []Bin, rates []float64) (*Classifier, error) {
	if len(bins) == 0 {
		return nil, errEmptyTable
	}
	if len(bins) != len(rates) {
		return nil, fmt.Errorf("%w: %d bins, %d rates", errRateMismatch, len(bins), len(rates))
	}
	for i, b := range bins {
		if !(b.Lower < b.Upper) {
			return nil, fmt.Errorf("%w: bin %d is %s", errBinGap, i, b)
		}
		if i > 0 && bins[i-1].Upper != b.Lower {
			return nil, fmt.Errorf("%w: bin %d starts at %g, previous ends at %g", errBinGap, i, b.Lower, bins[i-1].Upper)
		}
		if rates[i] < 0 || rates[i] > 1 || math.IsNaN(rates[i]) {
			return nil, fmt.Errorf("%w: rate %d is %g", errRateOutOfUnit, i, rates[i])
		}
		if i > 0 && rates[i] < rates[i-1] {
			return nil, fmt.Errorf("%w: rate %d (%g) < rate %d (%g)", errRateDecrease, i, rates[i], i-1, rates[i-1])
		}
	}
	if !math.IsInf(bins[len(bins)-1].Upper, 1) {
		return nil, errBoundedTail
	}
	return &Classifier{
		bins:  append([]Bin(nil), bins...),
		rates: append([]float64(nil), rates...),
	}, nil
}

// MustClassifier is NewClassifier for static tables known to be valid.
func MustClassifier(bins []Bin, rates []float64) *Classifier {
	c, err := NewClassifier(bins, rates)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the index of the first bin containing v. Values below the
// first bin, and NaN, fall into the last bin.
func (c *Classifier) Classify(v float64) int {
	last := len(c.bins) - 1
	for i, b := range c.bins {
		if i == last {
			break
		}
		if b.Contains(v) {
			return i
		}
	}
	return last
}

// Bins returns a copy of the bin list.
func (c *Classifier) Bins() []Bin { return append([]Bin(nil), c.bins...) }

// Rates returns a copy of the damage rates.
func (c *Classifier) Rates() []float64 { return append([]float64(nil), c.rates...) }

// Len returns the number of bins.
func (c *Classifier) Len() int { return len(c.bins) }

// Labels renders each bin as an interval string.
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.bins))
	for i, b := range c.bins {
		out[i] = b.String()
	}
	return out
}
