// Package config provides configuration loading for the foraging analysis
// tools. Configuration sources implement ConfigProvider; YAML files are the
// only backend today.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Data     DataFiles    `json:"data"`
	Filters  FilterData   `json:"filters"`
	Analysis AnalysisData `json:"analysis"`
	Storage  StorageData  `json:"storage,omitempty"`
	HTTP     HTTPData     `json:"http,omitempty"`
}

// DataFiles holds the paths of the source CSV tables
type DataFiles struct {
	Observations      string `json:"observations"`
	ChamberTreatments string `json:"chamber_treatments"`
	SpeciesNames      string `json:"species_names"`
	DominanceRanks    string `json:"dominance_ranks"`
	ThermalTolerances string `json:"thermal_tolerances"`
}

// FilterData holds the minimum-sample-size thresholds applied before any
// group is summarized
type FilterData struct {
	MinSpeciesObservations int `json:"min_species_observations"`
	MinChamberObservations int `json:"min_chamber_observations"`
}

// AnalysisData holds pipeline tuning knobs
type AnalysisData struct {
	Workers int `json:"workers,omitempty"`
}

// StorageData holds the configuration for data storage backends
type StorageData struct {
	// WarehouseDSN is the Postgres connection string of the field
	// observation warehouse. Optional; CSV files are used when empty.
	WarehouseDSN string `json:"warehouse_dsn,omitempty"`

	// ResultsPath is the SQLite database file that analysis results are
	// written to.
	ResultsPath string `json:"results_path,omitempty"`

	// ModelBundlePath is where the serialized regression bundle is saved
	// and loaded for report reproducibility.
	ModelBundlePath string `json:"model_bundle_path,omitempty"`
}

// HTTPData holds the results API server configuration
type HTTPData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
}

// ApplyDefaults fills unset fields with working defaults
func (c *ConfigData) ApplyDefaults() {
	if c.Filters.MinSpeciesObservations == 0 {
		c.Filters.MinSpeciesObservations = 100
	}
	if c.Filters.MinChamberObservations == 0 {
		c.Filters.MinChamberObservations = 5
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 4
	}
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8090"
	}
}
