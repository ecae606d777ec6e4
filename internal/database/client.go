// Package database provides the Postgres field-observation warehouse client.
// Sites that export their observation tables as CSV never touch this; it
// exists for running the pipeline directly against the warehouse.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/antlab/forageshift/internal/types"
	"go.uber.org/zap"
)

// Client holds the connection to the observation warehouse
type Client struct {
	dsn    string
	DB     *gorm.DB
	logger *zap.SugaredLogger
}

// NewClient creates a new warehouse client
func NewClient(dsn string, logger *zap.SugaredLogger) *Client {
	return &Client{
		dsn:    dsn,
		logger: logger,
	}
}

// Connect connects to the warehouse database
func (c *Client) Connect() error {
	var err error

	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(c.logger.Desugar()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	c.logger.Info("connecting to observation warehouse...")
	c.DB, err = gorm.Open(postgres.Open(c.dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		c.logger.Warn("warning: unable to create a warehouse connection:", err)
		return err
	}
	c.logger.Info("warehouse connection successful")

	return nil
}

// FetchObservations retrieves all foraging observations for a site.
func (c *Client) FetchObservations(site types.Site) ([]types.Observation, error) {
	var rows []ForagingRow
	if err := c.DB.Where("site = ?", string(site)).Order("observed_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying warehouse for observations: %w", err)
	}

	obs := make([]types.Observation, len(rows))
	for i, r := range rows {
		obs[i] = r.toObservation()
	}
	return obs, nil
}

// FetchChamberTreatments retrieves the chamber-treatment metadata for a site.
func (c *Client) FetchChamberTreatments(site types.Site) ([]types.ChamberTreatment, error) {
	var rows []ChamberRow
	if err := c.DB.Where("site = ?", string(site)).Order("chamber").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying warehouse for chamber treatments: %w", err)
	}

	chambers := make([]types.ChamberTreatment, len(rows))
	for i, r := range rows {
		chambers[i] = types.ChamberTreatment{
			Site:    types.Site(r.Site),
			Chamber: r.Chamber,
			DeltaC:  r.DeltaC,
		}
	}
	return chambers, nil
}
