package analysis

import (
	"sort"

	"go.uber.org/zap"

	"github.com/antlab/forageshift/internal/circstat"
	"github.com/antlab/forageshift/internal/types"
)

// ShiftRecord is the foraging-time shift of one warmed chamber relative to
// the pooled control chambers of the same site, species, and season. Shift
// is a signed circular difference in hours; positive means foraging moved
// later in the day.
type ShiftRecord struct {
	Key        types.GroupKey
	DeltaC     float64
	ShiftHours float64
	N          int
}

type siteSpeciesSeason struct {
	Site    types.Site
	Species string
	Season  types.Season
}

// ComputeShifts derives per-chamber shifts from filtered observation groups
// and the chamber-treatment metadata. Combinations without any control
// observations are skipped with a warning; the shift has no reference point
// without them.
func ComputeShifts(groups map[types.GroupKey][]float64, chambers []types.ChamberTreatment, logger *zap.SugaredLogger) []ShiftRecord {
	treatments := make(map[types.Site]map[string]types.ChamberTreatment)
	for _, c := range chambers {
		if treatments[c.Site] == nil {
			treatments[c.Site] = make(map[string]types.ChamberTreatment)
		}
		treatments[c.Site][c.Chamber] = c
	}

	// Pool control-chamber hours per site x species x season.
	controls := make(map[siteSpeciesSeason][]float64)
	for key, hours := range groups {
		ct, ok := treatments[key.Site][key.Chamber]
		if !ok {
			logger.Warnf("no treatment metadata for chamber %s at %s; skipping", key.Chamber, key.Site)
			continue
		}
		if ct.IsControl() {
			sss := siteSpeciesSeason{key.Site, key.Species, key.Season}
			controls[sss] = append(controls[sss], hours...)
		}
	}

	controlMedians := make(map[siteSpeciesSeason]float64)
	for sss, hours := range controls {
		summary, err := circstat.Summarize(hours)
		if err != nil {
			continue
		}
		controlMedians[sss] = summary.MedianHour
	}

	var shifts []ShiftRecord
	for key, hours := range groups {
		ct, ok := treatments[key.Site][key.Chamber]
		if !ok || ct.IsControl() {
			continue
		}

		sss := siteSpeciesSeason{key.Site, key.Species, key.Season}
		controlMedian, ok := controlMedians[sss]
		if !ok {
			logger.Warnf("no control observations for %s/%s/%s; skipping chamber %s",
				key.Site, key.Species, key.Season, key.Chamber)
			continue
		}

		summary, err := circstat.Summarize(hours)
		if err != nil {
			continue
		}

		shifts = append(shifts, ShiftRecord{
			Key:        key,
			DeltaC:     ct.DeltaC,
			ShiftHours: circstat.SignedDiff(summary.MedianHour, controlMedian),
			N:          summary.N,
		})
	}

	sort.Slice(shifts, func(i, j int) bool {
		return lessGroupKey(shifts[i].Key, shifts[j].Key)
	})
	return shifts
}
