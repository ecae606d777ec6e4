package circstat

import (
	"math"
	"testing"
)

func TestDerivePlotIntervalNoWrap(t *testing.T) {
	pi := DerivePlotInterval(Summary{Q25: 5, Q75: 15})

	if pi.Second != nil {
		t.Errorf("expected no second segment, got %+v", *pi.Second)
	}
	if math.Abs(pi.First.Start-5) > 1e-9 || math.Abs(pi.First.End-15) > 1e-9 {
		t.Errorf("expected segment [5, 15], got [%v, %v]", pi.First.Start, pi.First.End)
	}
}

func TestDerivePlotIntervalWrap(t *testing.T) {
	pi := DerivePlotInterval(Summary{Q25: 20, Q75: 4})

	if math.Abs(pi.First.Start-0) > 1e-9 || math.Abs(pi.First.End-4) > 1e-9 {
		t.Errorf("expected first segment [0, 4], got [%v, %v]", pi.First.Start, pi.First.End)
	}
	if pi.Second == nil {
		t.Fatal("expected a second segment for a wrapping range")
	}
	// The 23 endpoint is the inherited hourly-binning convention, not 24.
	if math.Abs(pi.Second.Start-20) > 1e-9 || math.Abs(pi.Second.End-23) > 1e-9 {
		t.Errorf("expected second segment [20, 23], got [%v, %v]", pi.Second.Start, pi.Second.End)
	}
}

func TestDerivePlotIntervalEqualQuartiles(t *testing.T) {
	// Q25 == Q75 counts as non-wrapping and yields a zero-length segment.
	pi := DerivePlotInterval(Summary{Q25: 9, Q75: 9})

	if pi.Second != nil {
		t.Errorf("expected no second segment, got %+v", *pi.Second)
	}
	if pi.First.Start != 9 || pi.First.End != 9 {
		t.Errorf("expected segment [9, 9], got [%v, %v]", pi.First.Start, pi.First.End)
	}
}

func TestDerivePlotIntervalLateQ25(t *testing.T) {
	// A fractional Q25 past hour 23 must not produce an inverted segment.
	pi := DerivePlotInterval(Summary{Q25: 23.5, Q75: 2})

	if pi.Second == nil {
		t.Fatal("expected a second segment")
	}
	if pi.Second.Start > pi.Second.End {
		t.Errorf("second segment inverted: [%v, %v]", pi.Second.Start, pi.Second.End)
	}
}

func TestDerivePlotIntervalSegmentsWellFormed(t *testing.T) {
	summaries := []Summary{
		{Q25: 0, Q75: 0},
		{Q25: 0, Q75: 23.9},
		{Q25: 22, Q75: 6},
		{Q25: 12.5, Q75: 12.25},
	}
	for _, s := range summaries {
		pi := DerivePlotInterval(s)
		if pi.First.Start > pi.First.End {
			t.Errorf("q25=%v q75=%v: first segment inverted: [%v, %v]",
				s.Q25, s.Q75, pi.First.Start, pi.First.End)
		}
		if pi.Second != nil && pi.Second.Start > pi.Second.End {
			t.Errorf("q25=%v q75=%v: second segment inverted: [%v, %v]",
				s.Q25, s.Q75, pi.Second.Start, pi.Second.End)
		}
	}
}
