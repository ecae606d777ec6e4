package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/antlab/forageshift/internal/analysis"
	"github.com/antlab/forageshift/internal/database"
	"github.com/antlab/forageshift/internal/loader"
	"github.com/antlab/forageshift/internal/log"
	"github.com/antlab/forageshift/internal/modelbundle"
	"github.com/antlab/forageshift/internal/resultsdb"
	"github.com/antlab/forageshift/internal/types"
	"github.com/antlab/forageshift/pkg/config"
)

const version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML configuration file")
	csvOutput := flag.String("csv", "", "Optional CSV output file for per-group summaries")
	label := flag.String("label", "all", "Run label stored with the results")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("forageshift %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename, _ := filepath.Abs(*cfgFile)
	provider := config.NewYAMLProvider(filename)
	cfg, err := provider.LoadConfig()
	if err != nil {
		log.Errorf("Failed to load configuration. Did you pass the -config flag? Run with -h for help: %v", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, *label, *csvOutput); err != nil {
		log.Errorf("Analysis error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ConfigData, label, csvOutput string) error {
	obs, chambers, err := loadData(cfg)
	if err != nil {
		return err
	}
	log.Infof("loaded %d observations across %d chambers", len(obs), len(chambers))

	ranks, err := loader.LoadDominanceRanks(cfg.Data.DominanceRanks)
	if err != nil {
		return fmt.Errorf("loading dominance ranks: %w", err)
	}
	tolerances, err := loader.LoadThermalTolerances(cfg.Data.ThermalTolerances)
	if err != nil {
		return fmt.Errorf("loading thermal tolerances: %w", err)
	}
	speciesNames, err := loader.LoadSpeciesNames(cfg.Data.SpeciesNames)
	if err != nil {
		return fmt.Errorf("loading species names: %w", err)
	}

	filters := analysis.Filters{
		MinSpeciesObservations: cfg.Filters.MinSpeciesObservations,
		MinChamberObservations: cfg.Filters.MinChamberObservations,
	}
	groups := analysis.ApplyFilters(analysis.Group(obs), filters)
	log.Infof("%d groups pass the sample-size filters", len(groups))

	runner := analysis.NewRunner(cfg.Analysis.Workers, log.GetSugaredLogger())
	summaries := runner.SummarizeGroups(ctx, groups)
	shifts := analysis.ComputeShifts(groups, chambers, log.GetSugaredLogger())

	var regression *analysis.RegressionResult
	reg, err := analysis.FitShiftRegression(shifts, ranks, tolerances, log.GetSugaredLogger())
	if err != nil {
		log.Warnf("regression not fitted: %v", err)
	} else {
		regression = &reg
	}

	displaySummaries(summaries, speciesNames)
	displayShifts(shifts)
	if regression != nil {
		displayRegression(*regression)
	}

	runID := uuid.NewString()
	if cfg.Storage.ResultsPath != "" {
		if err := saveResults(ctx, cfg.Storage.ResultsPath, runID, label, summaries, shifts, regression); err != nil {
			return err
		}
		log.Infof("results saved to %s (run %s)", cfg.Storage.ResultsPath, runID)
	}

	if cfg.Storage.ModelBundlePath != "" && regression != nil {
		bundle := modelbundle.New(runID, label, *regression)
		if err := modelbundle.Save(cfg.Storage.ModelBundlePath, bundle); err != nil {
			return err
		}
		log.Infof("model bundle saved to %s", cfg.Storage.ModelBundlePath)
	}

	if csvOutput != "" {
		if err := exportCSV(csvOutput, summaries); err != nil {
			return fmt.Errorf("error writing CSV: %w", err)
		}
		fmt.Printf("\nSummaries exported to: %s\n", csvOutput)
	}

	return nil
}

// loadData reads observations and chamber metadata from the warehouse when a
// DSN is configured, from the CSV exports otherwise.
func loadData(cfg *config.ConfigData) ([]types.Observation, []types.ChamberTreatment, error) {
	if cfg.Storage.WarehouseDSN != "" {
		client := database.NewClient(cfg.Storage.WarehouseDSN, log.GetSugaredLogger())
		if err := client.Connect(); err != nil {
			return nil, nil, fmt.Errorf("connecting to warehouse: %w", err)
		}

		var (
			obs      []types.Observation
			chambers []types.ChamberTreatment
		)
		for _, site := range []types.Site{types.SiteDukeForest, types.SiteHarvardForest} {
			siteObs, err := client.FetchObservations(site)
			if err != nil {
				return nil, nil, err
			}
			obs = append(obs, siteObs...)

			siteChambers, err := client.FetchChamberTreatments(site)
			if err != nil {
				return nil, nil, err
			}
			chambers = append(chambers, siteChambers...)
		}
		return obs, chambers, nil
	}

	obs, err := loader.LoadObservations(cfg.Data.Observations)
	if err != nil {
		return nil, nil, fmt.Errorf("loading observations: %w", err)
	}
	chambers, err := loader.LoadChamberTreatments(cfg.Data.ChamberTreatments)
	if err != nil {
		return nil, nil, fmt.Errorf("loading chamber treatments: %w", err)
	}
	return obs, chambers, nil
}

func saveResults(ctx context.Context, path, runID, label string, summaries []analysis.GroupSummary, shifts []analysis.ShiftRecord, regression *analysis.RegressionResult) error {
	store, err := resultsdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run := types.Run{ID: runID, Label: label, StartedAt: time.Now()}
	return store.SaveRun(ctx, run, summaries, shifts, regression)
}

func displaySummaries(summaries []analysis.GroupSummary, speciesNames []types.SpeciesName) {
	names := make(map[string]string, len(speciesNames))
	for _, sn := range speciesNames {
		names[sn.Code] = sn.Name
	}

	fmt.Printf("Foraging Time Summaries\n")
	fmt.Printf("=======================\n\n")
	fmt.Printf("%-15s | %-28s | %-8s | %-6s | %6s | %6s | %6s | %5s\n",
		"Site", "Species", "Chamber", "Season", "Mean", "Median", "IQR", "N")
	fmt.Printf("----------------+------------------------------+----------+--------+--------+--------+--------+------\n")

	for _, gs := range summaries {
		name := names[gs.Key.Species]
		if name == "" {
			name = gs.Key.Species
		}

		iqr := fmt.Sprintf("%.1f-%.1f", gs.Interval.First.Start, gs.Interval.First.End)
		if gs.Interval.Second != nil {
			iqr = fmt.Sprintf("%.1f-%.1f+", gs.Interval.Second.Start, gs.Interval.First.End)
		}

		mean := fmt.Sprintf("%6.2f", gs.Summary.MeanHour)
		if gs.Summary.MeanUndefined {
			mean = "  n/a "
		}
		fmt.Printf("%-15s | %-28s | %-8s | %-6s | %s | %6.2f | %6s | %5d\n",
			gs.Key.Site, name, gs.Key.Chamber, gs.Key.Season,
			mean, gs.Summary.MedianHour, iqr, gs.Summary.N)
	}
	fmt.Println()
}

func displayShifts(shifts []analysis.ShiftRecord) {
	fmt.Printf("Foraging Time Shifts (vs pooled controls)\n")
	fmt.Printf("=========================================\n\n")
	fmt.Printf("%-15s | %-10s | %-8s | %-6s | %6s | %7s | %5s\n",
		"Site", "Species", "Chamber", "Season", "ΔT(°C)", "Shift(h)", "N")
	fmt.Printf("----------------+------------+----------+--------+--------+---------+------\n")
	for _, s := range shifts {
		fmt.Printf("%-15s | %-10s | %-8s | %-6s | %6.1f | %+7.2f | %5d\n",
			s.Key.Site, s.Key.Species, s.Key.Chamber, s.Key.Season, s.DeltaC, s.ShiftHours, s.N)
	}
	fmt.Println()
}

func displayRegression(reg analysis.RegressionResult) {
	fmt.Printf("Shift Regression (weighted least squares)\n")
	fmt.Printf("=========================================\n\n")
	fmt.Printf("Model equation:\n")
	fmt.Printf("  shift = %.4f + %.4f × rank + %.4f × ctmax + %.4f × ΔT\n",
		reg.Coefficients[0], reg.Coefficients[1], reg.Coefficients[2], reg.Coefficients[3])
	fmt.Printf("  (shift in hours, ΔT in °C; weights are per-chamber sample counts)\n\n")

	fmt.Printf("Quality Metrics:\n")
	fmt.Printf("  R² = %.4f\n", reg.RSquared)
	fmt.Printf("  Adjusted R² = %.4f\n", reg.AdjustedRSquared)
	fmt.Printf("  RMSE = %.3f hours\n", reg.RootMeanSquaredError)
	fmt.Printf("  MAE = %.3f hours\n", reg.MeanAbsoluteError)
	fmt.Printf("  AIC = %.2f  BIC = %.2f\n", reg.AIC, reg.BIC)
	fmt.Printf("  Sample size = %d\n\n", reg.SampleCount)

	if reg.RSquared < 0.3 {
		fmt.Printf("  ⚠ WARNING: Low R² (%.4f) - rank and tolerance explain little of the shift\n", reg.RSquared)
	}
}

func exportCSV(filename string, summaries []analysis.GroupSummary) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"site", "species", "chamber", "season",
		"mean_hour", "median_hour", "q05", "q25", "q75", "q95", "n",
		"seg1_start", "seg1_end", "seg2_start", "seg2_end"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, gs := range summaries {
		seg2Start, seg2End := "", ""
		if gs.Interval.Second != nil {
			seg2Start = fmt.Sprintf("%.4f", gs.Interval.Second.Start)
			seg2End = fmt.Sprintf("%.4f", gs.Interval.Second.End)
		}
		record := []string{
			string(gs.Key.Site),
			gs.Key.Species,
			gs.Key.Chamber,
			string(gs.Key.Season),
			fmt.Sprintf("%.4f", gs.Summary.MeanHour),
			fmt.Sprintf("%.4f", gs.Summary.MedianHour),
			fmt.Sprintf("%.4f", gs.Summary.Q05),
			fmt.Sprintf("%.4f", gs.Summary.Q25),
			fmt.Sprintf("%.4f", gs.Summary.Q75),
			fmt.Sprintf("%.4f", gs.Summary.Q95),
			fmt.Sprintf("%d", gs.Summary.N),
			fmt.Sprintf("%.4f", gs.Interval.First.Start),
			fmt.Sprintf("%.4f", gs.Interval.First.End),
			seg2Start,
			seg2End,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
