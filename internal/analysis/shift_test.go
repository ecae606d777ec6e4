package analysis

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/antlab/forageshift/internal/types"
)

func dukeChambers() []types.ChamberTreatment {
	return []types.ChamberTreatment{
		{Site: types.SiteDukeForest, Chamber: "ctl1", DeltaC: 0},
		{Site: types.SiteDukeForest, Chamber: "ctl2", DeltaC: 0.2},
		{Site: types.SiteDukeForest, Chamber: "w35", DeltaC: 3.5},
		{Site: types.SiteDukeForest, Chamber: "w55", DeltaC: 5.5},
	}
}

func TestComputeShifts(t *testing.T) {
	groups := map[types.GroupKey][]float64{
		// Controls forage around hour 10.
		key(types.SiteDukeForest, "crli", "ctl1", types.SeasonSummer): {9.5, 10, 10.5},
		key(types.SiteDukeForest, "crli", "ctl2", types.SeasonSummer): {9.8, 10, 10.2},
		// The warmed chamber forages two hours later.
		key(types.SiteDukeForest, "crli", "w35", types.SeasonSummer): {11.5, 12, 12.5},
	}

	shifts := ComputeShifts(groups, dukeChambers(), zap.NewNop().Sugar())
	if len(shifts) != 1 {
		t.Fatalf("expected 1 shift record, got %d", len(shifts))
	}

	s := shifts[0]
	if s.Key.Chamber != "w35" {
		t.Errorf("expected shift for chamber w35, got %s", s.Key.Chamber)
	}
	if math.Abs(s.ShiftHours-2) > 1e-9 {
		t.Errorf("expected shift of +2 hours, got %v", s.ShiftHours)
	}
	if s.DeltaC != 3.5 {
		t.Errorf("expected delta 3.5, got %v", s.DeltaC)
	}
	if s.N != 3 {
		t.Errorf("expected N=3, got %d", s.N)
	}
}

func TestComputeShiftsAcrossMidnight(t *testing.T) {
	// Control medians just before midnight, warmed just after: the shift
	// must be the short way around (+1h), not -23h.
	groups := map[types.GroupKey][]float64{
		key(types.SiteDukeForest, "crli", "ctl1", types.SeasonSummer): {23.3, 23.5, 23.7},
		key(types.SiteDukeForest, "crli", "w35", types.SeasonSummer):  {0.3, 0.5, 0.7},
	}

	shifts := ComputeShifts(groups, dukeChambers(), zap.NewNop().Sugar())
	if len(shifts) != 1 {
		t.Fatalf("expected 1 shift record, got %d", len(shifts))
	}
	if math.Abs(shifts[0].ShiftHours-1) > 1e-9 {
		t.Errorf("expected shift of +1 hour across midnight, got %v", shifts[0].ShiftHours)
	}
}

func TestComputeShiftsNoControls(t *testing.T) {
	groups := map[types.GroupKey][]float64{
		key(types.SiteDukeForest, "crli", "w35", types.SeasonSummer): {11, 12, 13},
	}

	shifts := ComputeShifts(groups, dukeChambers(), zap.NewNop().Sugar())
	if len(shifts) != 0 {
		t.Fatalf("expected no shifts without controls, got %d", len(shifts))
	}
}

func TestComputeShiftsSeasonsIndependent(t *testing.T) {
	groups := map[types.GroupKey][]float64{
		key(types.SiteDukeForest, "crli", "ctl1", types.SeasonSpring): {8, 8, 8},
		key(types.SiteDukeForest, "crli", "w35", types.SeasonSpring):  {9, 9, 9},
		key(types.SiteDukeForest, "crli", "ctl1", types.SeasonSummer): {20, 20, 20},
		key(types.SiteDukeForest, "crli", "w55", types.SeasonSummer):  {18, 18, 18},
	}

	shifts := ComputeShifts(groups, dukeChambers(), zap.NewNop().Sugar())
	if len(shifts) != 2 {
		t.Fatalf("expected 2 shift records, got %d", len(shifts))
	}

	// Sorted order puts spring before summer.
	if math.Abs(shifts[0].ShiftHours-1) > 1e-9 {
		t.Errorf("expected spring shift +1, got %v", shifts[0].ShiftHours)
	}
	if math.Abs(shifts[1].ShiftHours+2) > 1e-9 {
		t.Errorf("expected summer shift -2, got %v", shifts[1].ShiftHours)
	}
}
