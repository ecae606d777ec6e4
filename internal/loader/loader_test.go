package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/antlab/forageshift/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadObservations(t *testing.T) {
	path := writeFile(t, "obs.csv",
		"site,species,chamber,season,hour\n"+
			"duke-forest,crli,ch01,summer,14.5\n"+
			"harvard-forest,apru,ch03,spring,23.75\n")

	obs, err := LoadObservations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}

	first := obs[0]
	if first.Key.Site != types.SiteDukeForest || first.Key.Species != "crli" ||
		first.Key.Chamber != "ch01" || first.Key.Season != types.SeasonSummer {
		t.Errorf("unexpected first key: %+v", first.Key)
	}
	if first.Hour != 14.5 {
		t.Errorf("expected hour 14.5, got %v", first.Hour)
	}
	if obs[1].Hour != 23.75 {
		t.Errorf("expected hour 23.75, got %v", obs[1].Hour)
	}
}

func TestLoadObservationsColumnOrderIrrelevant(t *testing.T) {
	path := writeFile(t, "obs.csv",
		"hour,season,chamber,species,site\n"+
			"6.25,fall,ch12,fosu,harvard-forest\n")

	obs, err := LoadObservations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 1 || obs[0].Hour != 6.25 || obs[0].Key.Species != "fosu" {
		t.Errorf("unexpected result: %+v", obs)
	}
}

func TestLoadObservationsBadSite(t *testing.T) {
	path := writeFile(t, "obs.csv",
		"site,species,chamber,season,hour\n"+
			"mars-base,crli,ch01,summer,14.5\n")

	_, err := LoadObservations(path)
	if err == nil || !strings.Contains(err.Error(), "unknown site") {
		t.Fatalf("expected unknown site error, got %v", err)
	}
}

func TestLoadObservationsMissingColumn(t *testing.T) {
	path := writeFile(t, "obs.csv",
		"site,species,chamber,season\n"+
			"duke-forest,crli,ch01,summer\n")

	_, err := LoadObservations(path)
	if err == nil || !strings.Contains(err.Error(), "missing required column") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestLoadChamberTreatments(t *testing.T) {
	path := writeFile(t, "chambers.csv",
		"site,chamber,delta_c\n"+
			"duke-forest,ch01,0.0\n"+
			"duke-forest,ch02,3.5\n")

	chambers, err := LoadChamberTreatments(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chambers) != 2 {
		t.Fatalf("expected 2 chambers, got %d", len(chambers))
	}
	if !chambers[0].IsControl() {
		t.Error("expected ch01 to be a control chamber")
	}
	if chambers[1].IsControl() {
		t.Error("expected ch02 to be a warmed chamber")
	}
}

func TestLoadLookupTables(t *testing.T) {
	species, err := LoadSpeciesNames(writeFile(t, "species.csv",
		"code,name\ncrli,Crematogaster lineolata\n"))
	if err != nil {
		t.Fatalf("species: %v", err)
	}
	if len(species) != 1 || species[0].Name != "Crematogaster lineolata" {
		t.Errorf("unexpected species: %+v", species)
	}

	ranks, err := LoadDominanceRanks(writeFile(t, "ranks.csv",
		"species,rank\ncrli,2\napru,5.5\n"))
	if err != nil {
		t.Fatalf("ranks: %v", err)
	}
	if len(ranks) != 2 || ranks[1].Rank != 5.5 {
		t.Errorf("unexpected ranks: %+v", ranks)
	}

	tols, err := LoadThermalTolerances(writeFile(t, "ctmax.csv",
		"species,ctmax\ncrli,44.8\n"))
	if err != nil {
		t.Fatalf("tolerances: %v", err)
	}
	if len(tols) != 1 || tols[0].CTmax != 44.8 {
		t.Errorf("unexpected tolerances: %+v", tols)
	}
}
