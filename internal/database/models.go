package database

import (
	"time"

	"github.com/antlab/forageshift/internal/types"
)

// ForagingRow is the warehouse schema for one foraging observation.
type ForagingRow struct {
	ObservedAt time.Time `gorm:"column:observed_at"`
	Site       string    `gorm:"column:site"`
	Species    string    `gorm:"column:species"`
	Chamber    string    `gorm:"column:chamber"`
	Season     string    `gorm:"column:season"`
	Hour       float64   `gorm:"column:hour"`
}

// TableName sets the table name for GORM
func (ForagingRow) TableName() string {
	return "foraging_obs"
}

// ChamberRow is the warehouse schema for chamber-treatment metadata.
type ChamberRow struct {
	Site    string  `gorm:"column:site"`
	Chamber string  `gorm:"column:chamber"`
	DeltaC  float64 `gorm:"column:delta_c"`
}

// TableName sets the table name for GORM
func (ChamberRow) TableName() string {
	return "chamber_treatments"
}

func (r ForagingRow) toObservation() types.Observation {
	return types.Observation{
		Key: types.GroupKey{
			Site:    types.Site(r.Site),
			Species: r.Species,
			Chamber: r.Chamber,
			Season:  types.Season(r.Season),
		},
		Hour: r.Hour,
	}
}
