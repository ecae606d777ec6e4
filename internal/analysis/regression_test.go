package analysis

import (
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/antlab/forageshift/internal/types"
)

// syntheticShifts builds shift records that follow an exact linear model so
// the fit should recover the coefficients to floating precision.
func syntheticShifts() ([]ShiftRecord, []types.DominanceRank, []types.ThermalTolerance) {
	const (
		c0     = 0.4
		cRank  = -0.15
		cCTmax = 0.05
		cDelta = 0.3
	)

	// CTmax values deliberately not collinear with rank.
	ctmaxValues := []float64{44.8, 41.2, 46.0, 39.5, 43.1, 40.7}

	var (
		shifts []ShiftRecord
		ranks  []types.DominanceRank
		tols   []types.ThermalTolerance
	)
	for i := 0; i < 6; i++ {
		species := fmt.Sprintf("sp%02d", i)
		rank := float64(i + 1)
		ctmax := ctmaxValues[i]
		ranks = append(ranks, types.DominanceRank{Species: species, Rank: rank})
		tols = append(tols, types.ThermalTolerance{Species: species, CTmax: ctmax})

		for _, deltaC := range []float64{1.5, 3.5, 5.5} {
			shifts = append(shifts, ShiftRecord{
				Key: types.GroupKey{
					Site:    types.SiteDukeForest,
					Species: species,
					Chamber: fmt.Sprintf("w%.0f", deltaC*10),
					Season:  types.SeasonSummer,
				},
				DeltaC:     deltaC,
				ShiftHours: c0 + cRank*rank + cCTmax*ctmax + cDelta*deltaC,
				N:          10 + i,
			})
		}
	}
	return shifts, ranks, tols
}

func TestFitShiftRegressionRecoversCoefficients(t *testing.T) {
	shifts, ranks, tols := syntheticShifts()

	result, err := FitShiftRegression(shifts, ranks, tols, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []float64{0.4, -0.15, 0.05, 0.3}
	for i, exp := range expected {
		if math.Abs(result.Coefficients[i]-exp) > 1e-6 {
			t.Errorf("%s: expected %.4f, got %.4f", PredictorNames[i], exp, result.Coefficients[i])
		}
	}
	if result.RSquared < 0.9999 {
		t.Errorf("expected near-perfect fit, R²=%.6f", result.RSquared)
	}
	if result.SampleCount != len(shifts) {
		t.Errorf("expected sample count %d, got %d", len(shifts), result.SampleCount)
	}
	if result.RootMeanSquaredError > 1e-6 {
		t.Errorf("expected near-zero RMSE, got %v", result.RootMeanSquaredError)
	}
}

func TestFitShiftRegressionSkipsUnknownSpecies(t *testing.T) {
	shifts, ranks, tols := syntheticShifts()
	shifts = append(shifts, ShiftRecord{
		Key:        types.GroupKey{Site: types.SiteDukeForest, Species: "mystery", Chamber: "w35", Season: types.SeasonSummer},
		DeltaC:     3.5,
		ShiftHours: 99,
		N:          50,
	})

	result, err := FitShiftRegression(shifts, ranks, tols, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SampleCount != len(shifts)-1 {
		t.Errorf("expected mystery species to be excluded, sample count %d", result.SampleCount)
	}
	// The wild 99-hour shift must not have contaminated the fit.
	if math.Abs(result.Coefficients[0]-0.4) > 1e-6 {
		t.Errorf("intercept contaminated: %v", result.Coefficients[0])
	}
}

func TestFitShiftRegressionTooFewRows(t *testing.T) {
	shifts, ranks, tols := syntheticShifts()
	_, err := FitShiftRegression(shifts[:3], ranks, tols, zap.NewNop().Sugar())
	if err == nil {
		t.Fatal("expected an error with too few rows")
	}
}

func TestPredict(t *testing.T) {
	r := RegressionResult{Coefficients: []float64{1, 2, 3, 4}}
	got := r.Predict(1, 10, 2)
	if math.Abs(got-(1+2*1+3*10+4*2)) > 1e-12 {
		t.Errorf("unexpected prediction: %v", got)
	}
}
