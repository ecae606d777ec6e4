// Package loader reads the source CSV tables for the foraging analysis:
// raw observations, chamber-treatment metadata, species names, dominance
// rankings, and thermal-tolerance summaries.
//
// All tables carry a header row; columns are resolved by name so column
// order in the exports does not matter.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/antlab/forageshift/internal/types"
)

// LoadObservations reads the raw foraging observation table. Each record is
// one individual ant with its site, species code, chamber, season, and the
// fractional hour of day it was observed foraging.
func LoadObservations(path string) ([]types.Observation, error) {
	var obs []types.Observation
	err := readTable(path, []string{"site", "species", "chamber", "season", "hour"}, func(row map[string]string) error {
		hour, err := strconv.ParseFloat(row["hour"], 64)
		if err != nil {
			return fmt.Errorf("bad hour %q: %w", row["hour"], err)
		}
		site, err := parseSite(row["site"])
		if err != nil {
			return err
		}
		season, err := parseSeason(row["season"])
		if err != nil {
			return err
		}
		obs = append(obs, types.Observation{
			Key: types.GroupKey{
				Site:    site,
				Species: row["species"],
				Chamber: row["chamber"],
				Season:  season,
			},
			Hour: hour,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obs, nil
}

// LoadChamberTreatments reads the chamber-treatment metadata table.
func LoadChamberTreatments(path string) ([]types.ChamberTreatment, error) {
	var out []types.ChamberTreatment
	err := readTable(path, []string{"site", "chamber", "delta_c"}, func(row map[string]string) error {
		delta, err := strconv.ParseFloat(row["delta_c"], 64)
		if err != nil {
			return fmt.Errorf("bad delta_c %q: %w", row["delta_c"], err)
		}
		site, err := parseSite(row["site"])
		if err != nil {
			return err
		}
		out = append(out, types.ChamberTreatment{
			Site:    site,
			Chamber: row["chamber"],
			DeltaC:  delta,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadSpeciesNames reads the species code lookup table.
func LoadSpeciesNames(path string) ([]types.SpeciesName, error) {
	var out []types.SpeciesName
	err := readTable(path, []string{"code", "name"}, func(row map[string]string) error {
		out = append(out, types.SpeciesName{Code: row["code"], Name: row["name"]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadDominanceRanks reads the behavioral dominance ranking table.
func LoadDominanceRanks(path string) ([]types.DominanceRank, error) {
	var out []types.DominanceRank
	err := readTable(path, []string{"species", "rank"}, func(row map[string]string) error {
		rank, err := strconv.ParseFloat(row["rank"], 64)
		if err != nil {
			return fmt.Errorf("bad rank %q: %w", row["rank"], err)
		}
		out = append(out, types.DominanceRank{Species: row["species"], Rank: rank})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadThermalTolerances reads the critical-thermal-maximum summary table.
func LoadThermalTolerances(path string) ([]types.ThermalTolerance, error) {
	var out []types.ThermalTolerance
	err := readTable(path, []string{"species", "ctmax"}, func(row map[string]string) error {
		ctmax, err := strconv.ParseFloat(row["ctmax"], 64)
		if err != nil {
			return fmt.Errorf("bad ctmax %q: %w", row["ctmax"], err)
		}
		out = append(out, types.ThermalTolerance{Species: row["species"], CTmax: ctmax})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readTable opens a CSV file, resolves the required columns from the header
// row, and calls fn with a column-name map for every data row.
func readTable(path string, required []string, fn func(row map[string]string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("error reading header of %s: %w", path, err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := colIdx[name]; !ok {
			return fmt.Errorf("%s: missing required column %q", path, name)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: error reading record: %w", path, err)
		}
		line++

		row := make(map[string]string, len(required))
		for _, name := range required {
			row[name] = strings.TrimSpace(record[colIdx[name]])
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("%s line %d: %w", path, line, err)
		}
	}
}

func parseSite(s string) (types.Site, error) {
	switch types.Site(strings.ToLower(s)) {
	case types.SiteDukeForest:
		return types.SiteDukeForest, nil
	case types.SiteHarvardForest:
		return types.SiteHarvardForest, nil
	}
	return "", fmt.Errorf("unknown site %q", s)
}

func parseSeason(s string) (types.Season, error) {
	switch types.Season(strings.ToLower(s)) {
	case types.SeasonSpring:
		return types.SeasonSpring, nil
	case types.SeasonSummer:
		return types.SeasonSummer, nil
	case types.SeasonFall:
		return types.SeasonFall, nil
	case types.SeasonWinter:
		return types.SeasonWinter, nil
	}
	return "", fmt.Errorf("unknown season %q", s)
}
