package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Data struct {
			Observations      string `yaml:"observations"`
			ChamberTreatments string `yaml:"chamber_treatments"`
			SpeciesNames      string `yaml:"species_names"`
			DominanceRanks    string `yaml:"dominance_ranks"`
			ThermalTolerances string `yaml:"thermal_tolerances"`
		} `yaml:"data"`
		Filters struct {
			MinSpeciesObservations int `yaml:"min_species_observations,omitempty"`
			MinChamberObservations int `yaml:"min_chamber_observations,omitempty"`
		} `yaml:"filters,omitempty"`
		Analysis struct {
			Workers int `yaml:"workers,omitempty"`
		} `yaml:"analysis,omitempty"`
		Storage struct {
			WarehouseDSN    string `yaml:"warehouse_dsn,omitempty"`
			ResultsPath     string `yaml:"results_path,omitempty"`
			ModelBundlePath string `yaml:"model_bundle_path,omitempty"`
		} `yaml:"storage,omitempty"`
		HTTP struct {
			ListenAddr string `yaml:"listen_addr,omitempty"`
		} `yaml:"http,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Data: DataFiles{
			Observations:      yamlConfig.Data.Observations,
			ChamberTreatments: yamlConfig.Data.ChamberTreatments,
			SpeciesNames:      yamlConfig.Data.SpeciesNames,
			DominanceRanks:    yamlConfig.Data.DominanceRanks,
			ThermalTolerances: yamlConfig.Data.ThermalTolerances,
		},
		Filters: FilterData{
			MinSpeciesObservations: yamlConfig.Filters.MinSpeciesObservations,
			MinChamberObservations: yamlConfig.Filters.MinChamberObservations,
		},
		Analysis: AnalysisData{
			Workers: yamlConfig.Analysis.Workers,
		},
		Storage: StorageData{
			WarehouseDSN:    yamlConfig.Storage.WarehouseDSN,
			ResultsPath:     yamlConfig.Storage.ResultsPath,
			ModelBundlePath: yamlConfig.Storage.ModelBundlePath,
		},
		HTTP: HTTPData{
			ListenAddr: yamlConfig.HTTP.ListenAddr,
		},
	}

	config.ApplyDefaults()

	return config, nil
}

// Close is a no-op for file-backed configuration
func (y *YAMLProvider) Close() error {
	return nil
}
