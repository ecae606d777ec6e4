package analysis

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/antlab/forageshift/internal/types"
)

// PredictorNames are the regression terms, in coefficient order.
var PredictorNames = []string{"intercept", "dominance_rank", "ctmax", "delta_c"}

// RegressionResult holds the fitted weighted least-squares model of
// foraging-time shift on dominance rank, thermal tolerance, and warming
// treatment, with model-quality metrics for comparison.
type RegressionResult struct {
	Coefficients         []float64 // [c0, c_rank, c_ctmax, c_delta]
	RSquared             float64
	AdjustedRSquared     float64
	MeanAbsoluteError    float64
	RootMeanSquaredError float64
	AIC                  float64 // Akaike Information Criterion (lower is better)
	BIC                  float64 // Bayesian Information Criterion (lower is better)
	SampleCount          int
}

// Predict evaluates the fitted model for one species/treatment combination.
func (r RegressionResult) Predict(rank, ctmax, deltaC float64) float64 {
	c := r.Coefficients
	return c[0] + c[1]*rank + c[2]*ctmax + c[3]*deltaC
}

// FitShiftRegression fits shift ~ rank + ctmax + delta_c by weighted least
// squares, weighting each chamber by its observation count so thin chambers
// do not dominate the fit. Shifts for species missing a dominance rank or
// CTmax entry are skipped with a warning.
func FitShiftRegression(shifts []ShiftRecord, ranks []types.DominanceRank, tolerances []types.ThermalTolerance, logger *zap.SugaredLogger) (RegressionResult, error) {
	rankBySpecies := make(map[string]float64, len(ranks))
	for _, r := range ranks {
		rankBySpecies[r.Species] = r.Rank
	}
	ctmaxBySpecies := make(map[string]float64, len(tolerances))
	for _, t := range tolerances {
		ctmaxBySpecies[t.Species] = t.CTmax
	}

	type row struct {
		rank, ctmax, deltaC, shift, weight float64
	}
	var rows []row
	for _, s := range shifts {
		rank, okRank := rankBySpecies[s.Key.Species]
		ctmax, okCT := ctmaxBySpecies[s.Key.Species]
		if !okRank || !okCT {
			logger.Warnf("species %s missing rank or ctmax; excluded from regression", s.Key.Species)
			continue
		}
		rows = append(rows, row{
			rank:   rank,
			ctmax:  ctmax,
			deltaC: s.DeltaC,
			shift:  s.ShiftHours,
			weight: float64(s.N),
		})
	}

	k := len(PredictorNames)
	n := len(rows)
	if n < k+1 {
		return RegressionResult{}, fmt.Errorf("need at least %d usable shifts for regression, have %d", k+1, n)
	}

	// Weighted least squares: scale each row of the design matrix and
	// response by sqrt(weight), then solve the ordinary problem by QR.
	X := mat.NewDense(n, k, nil)
	y := mat.NewVecDense(n, nil)
	for i, r := range rows {
		w := math.Sqrt(r.weight)
		X.Set(i, 0, w)
		X.Set(i, 1, w*r.rank)
		X.Set(i, 2, w*r.ctmax)
		X.Set(i, 3, w*r.deltaC)
		y.SetVec(i, w*r.shift)
	}

	var qr mat.QR
	qr.Factorize(X)

	coeffVec := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(coeffVec, false, y); err != nil {
		return RegressionResult{}, fmt.Errorf("error solving weighted regression: %w", err)
	}

	coeffs := make([]float64, k)
	for i := range coeffs {
		coeffs[i] = coeffVec.AtVec(i)
	}

	result := RegressionResult{
		Coefficients: coeffs,
		SampleCount:  n,
	}

	// Quality metrics on the unweighted scale.
	var sumShift float64
	for _, r := range rows {
		sumShift += r.shift
	}
	meanShift := sumShift / float64(n)

	var ssTot, ssRes, sumAbs float64
	for _, r := range rows {
		predicted := result.Predict(r.rank, r.ctmax, r.deltaC)
		ssTot += (r.shift - meanShift) * (r.shift - meanShift)
		ssRes += (r.shift - predicted) * (r.shift - predicted)
		sumAbs += math.Abs(r.shift - predicted)
	}

	if ssTot > 0 {
		result.RSquared = 1 - ssRes/ssTot
	}
	fn, fk := float64(n), float64(k)
	if fn-fk-1 > 0 {
		result.AdjustedRSquared = 1 - ((1-result.RSquared)*(fn-1))/(fn-fk-1)
	}
	result.MeanAbsoluteError = sumAbs / fn
	result.RootMeanSquaredError = math.Sqrt(ssRes / fn)
	result.AIC = calculateAIC(fn, result.RootMeanSquaredError, fk)
	result.BIC = calculateBIC(fn, result.RootMeanSquaredError, fk)

	return result, nil
}

func calculateAIC(n, rmse, k float64) float64 {
	// AIC = 2k + n*ln(SSE/n)
	sse := n * rmse * rmse
	if sse <= 0 {
		return math.Inf(1)
	}
	return 2*k + n*math.Log(sse/n)
}

func calculateBIC(n, rmse, k float64) float64 {
	// BIC = k*ln(n) + n*ln(SSE/n)
	sse := n * rmse * rmse
	if sse <= 0 {
		return math.Inf(1)
	}
	return k*math.Log(n) + n*math.Log(sse/n)
}
