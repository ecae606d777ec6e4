// Package types holds the domain types shared across the foraging analysis
// pipeline: observations, structured group keys, and the experiment lookup
// tables (chamber treatments, species names, dominance ranks, thermal
// tolerances).
package types

import "time"

// Site identifies one of the two warming-experiment field sites.
type Site string

const (
	SiteDukeForest    Site = "duke-forest"
	SiteHarvardForest Site = "harvard-forest"
)

// Season identifies the sampling season of an observation.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// GroupKey identifies one analysis group. Keys are explicit typed fields
// rather than pasted strings so a typo in a site or season name fails loudly
// at parse time instead of silently creating an empty group.
type GroupKey struct {
	Site    Site
	Species string
	Chamber string
	Season  Season
}

// Observation is a single foraging record reduced to a fractional hour of
// day in [0, 24), keyed by its group.
type Observation struct {
	Key  GroupKey
	Hour float64
}

// ChamberTreatment maps an experimental chamber to its warming treatment.
type ChamberTreatment struct {
	Site    Site
	Chamber string
	DeltaC  float64 // target warming above ambient, degrees C
}

// IsControl reports whether the chamber is an unwarmed control. Chamber
// heaters hold small positive offsets even on controls, so anything under
// half a degree counts.
func (c ChamberTreatment) IsControl() bool {
	return c.DeltaC < 0.5
}

// SpeciesName maps a species code used in the observation tables to its
// binomial name for display.
type SpeciesName struct {
	Code string
	Name string
}

// DominanceRank holds a species' behavioral dominance ranking. Lower rank
// means more dominant.
type DominanceRank struct {
	Species string
	Rank    float64
}

// ThermalTolerance holds a species' critical thermal maximum summary.
type ThermalTolerance struct {
	Species string
	CTmax   float64 // degrees C
}

// Run identifies one full analysis run over a dataset. Label is free-form;
// a run over a single site's export uses the site name, a combined run uses
// "all".
type Run struct {
	ID        string
	Label     string
	StartedAt time.Time
}
