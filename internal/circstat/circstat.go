// Package circstat computes circular (time-of-day) summary statistics for
// hour-of-day samples on the 24-hour clock. Values near the day boundary
// (23.9 and 0.1) are treated as close, not ~24 hours apart.
//
// The quantile estimator measures signed offsets from the circular median and
// takes ordinary linear quantiles of those offsets. This is only meaningful
// for unimodal samples that do not spread uniformly around the clock; that
// precondition is a caller contract, not something this package can detect.
package circstat

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HoursPerDay is the period of the circular hour-of-day domain.
const HoursPerDay = 24.0

// meanResultantEps is the resultant-length threshold below which the circular
// mean direction is considered undefined (perfectly antipodal/symmetric data).
const meanResultantEps = 1e-9

// ErrEmptySample is returned by Summarize when given no observations.
// There is no sensible circular mean of zero points.
var ErrEmptySample = errors.New("circstat: empty sample")

// Summary holds the circular summary statistics for one group of hour-of-day
// observations. All hour fields are in [0, 24). Immutable once computed.
type Summary struct {
	MeanHour   float64
	MedianHour float64
	Q05        float64
	Q25        float64
	Q75        float64
	Q95        float64
	N          int

	// MeanUndefined is set when the mean resultant length is zero and the
	// mean direction has no meaning. MeanHour is 0 by convention in that
	// case; callers may prefer to display "undefined".
	MeanUndefined bool
}

// Normalize maps an hour value onto [0, 24).
func Normalize(h float64) float64 {
	m := math.Mod(h, HoursPerDay)
	if m < 0 {
		m += HoursPerDay
	}
	if m == HoursPerDay {
		m = 0
	}
	return m
}

// SignedDiff returns the signed periodic difference a-b in hours, in
// (-12, 12]. A positive result means a is later than b on the shortest arc.
func SignedDiff(a, b float64) float64 {
	d := math.Mod(a-b, HoursPerDay)
	if d > HoursPerDay/2 {
		d -= HoursPerDay
	} else if d <= -HoursPerDay/2 {
		d += HoursPerDay
	}
	return d
}

// Distance returns the absolute periodic distance between two hours, in
// [0, 12].
func Distance(a, b float64) float64 {
	return math.Abs(SignedDiff(a, b))
}

// Summarize computes the circular summary statistics of a sample of
// hour-of-day values. Inputs outside [0, 24) are reduced modulo 24.
// Returns ErrEmptySample for an empty sample.
func Summarize(hours []float64) (Summary, error) {
	if len(hours) == 0 {
		return Summary{}, ErrEmptySample
	}

	norm := make([]float64, len(hours))
	for i, h := range hours {
		norm[i] = Normalize(h)
	}

	mean, undefined := circularMean(norm)
	median := circularMedian(norm)

	// Signed offsets from the circular median. The offsets live on a linear
	// (-12, 12] axis, so ordinary quantile machinery applies.
	offsets := make([]float64, len(norm))
	for i, h := range norm {
		offsets[i] = SignedDiff(h, median)
	}
	sort.Float64s(offsets)

	s := Summary{
		MeanHour:      mean,
		MedianHour:    median,
		Q05:           Normalize(median + stat.Quantile(0.05, stat.LinInterp, offsets, nil)),
		Q25:           Normalize(median + stat.Quantile(0.25, stat.LinInterp, offsets, nil)),
		Q75:           Normalize(median + stat.Quantile(0.75, stat.LinInterp, offsets, nil)),
		Q95:           Normalize(median + stat.Quantile(0.95, stat.LinInterp, offsets, nil)),
		N:             len(norm),
		MeanUndefined: undefined,
	}
	return s, nil
}

// circularMean computes the mean direction of the sample in hours. The second
// return is true when the mean resultant length is zero and the direction is
// undefined; the mean is then 0 by convention.
func circularMean(hours []float64) (float64, bool) {
	var sumSin, sumCos float64
	for _, h := range hours {
		theta := h / HoursPerDay * 2 * math.Pi
		sumSin += math.Sin(theta)
		sumCos += math.Cos(theta)
	}

	n := float64(len(hours))
	meanSin := sumSin / n
	meanCos := sumCos / n

	if math.Hypot(meanSin, meanCos) < meanResultantEps {
		return 0, true
	}

	theta := math.Atan2(meanSin, meanCos)
	return Normalize(theta / (2 * math.Pi) * HoursPerDay), false
}

// circularMedian finds the sample point minimizing the summed periodic
// absolute distance to all points. Ties resolve to the smallest hour value.
func circularMedian(hours []float64) float64 {
	candidates := append([]float64(nil), hours...)
	sort.Float64s(candidates)

	best := candidates[0]
	bestCost := math.Inf(1)
	for _, c := range candidates {
		var cost float64
		for _, h := range hours {
			cost += Distance(c, h)
		}
		// Candidates are visited in ascending hour order, so requiring a
		// strict improvement keeps the smallest hour among tied minimizers.
		if cost < bestCost-tieEps {
			best = c
			bestCost = cost
		}
	}
	return best
}

// tieEps absorbs floating-point noise when comparing candidate median costs.
const tieEps = 1e-9
