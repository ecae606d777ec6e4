// Package analysis implements the foraging-time analysis pipeline: grouping
// and filtering of observations, fan-out summarization with circular
// statistics, per-chamber shift computation, and the descriptive weighted
// regression of shift on dominance rank and thermal tolerance.
package analysis

import (
	"github.com/antlab/forageshift/internal/types"
)

// Filters holds the minimum-sample-size thresholds applied before any group
// is summarized. Groups below threshold are excluded entirely rather than
// producing unstable statistics.
type Filters struct {
	// MinSpeciesObservations is the minimum number of individuals a species
	// must have site-wide to be analyzed at all.
	MinSpeciesObservations int

	// MinChamberObservations is the minimum number of individuals within a
	// single group (site x species x chamber x season).
	MinChamberObservations int
}

// DefaultFilters returns the thresholds used by the published analysis.
func DefaultFilters() Filters {
	return Filters{
		MinSpeciesObservations: 100,
		MinChamberObservations: 5,
	}
}

// Group buckets observations by their group key.
func Group(obs []types.Observation) map[types.GroupKey][]float64 {
	groups := make(map[types.GroupKey][]float64)
	for _, o := range obs {
		groups[o.Key] = append(groups[o.Key], o.Hour)
	}
	return groups
}

// siteSpecies keys the species-level count across chambers and seasons.
type siteSpecies struct {
	Site    types.Site
	Species string
}

// ApplyFilters drops species with too few observations site-wide, then drops
// individual groups with too few observations. The input map is not
// modified.
func ApplyFilters(groups map[types.GroupKey][]float64, f Filters) map[types.GroupKey][]float64 {
	speciesCounts := make(map[siteSpecies]int)
	for key, hours := range groups {
		speciesCounts[siteSpecies{key.Site, key.Species}] += len(hours)
	}

	kept := make(map[types.GroupKey][]float64)
	for key, hours := range groups {
		if speciesCounts[siteSpecies{key.Site, key.Species}] < f.MinSpeciesObservations {
			continue
		}
		if len(hours) < f.MinChamberObservations {
			continue
		}
		kept[key] = hours
	}
	return kept
}
