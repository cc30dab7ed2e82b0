package stats

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"opsin/internal/model"
)

func testPopulation() model.Population {
	row := func(vals ...float64) []float64 { return vals }
	matrix := [][]float64{
		row(1, 2), row(3, 4), row(5, 6), row(7, 8), row(9, 10),
	}
	bundle := model.Bundle{
		Isomerizations:        matrix,
		Absorptions:           matrix,
		AbsorptionsNormalized: matrix,
		Energy:                matrix,
		EnergyNormalized:      matrix,
		Sampled: model.TrialDifferences{
			Cone: model.IndividualDifferences{
				LensDensity:         1.5,
				MacularDensity:      -2,
				PhotopigmentDensity: []float64{1, 2, 3},
				LambdaMaxShift:      []float64{0.1, 0.2, 0.3},
			},
		},
	}
	bundle.Adjusted = bundle.Sampled
	return model.Population{
		ID:       "run-x",
		Spec:     model.SamplingSpec{StartNM: 400, StepNM: 100, Count: 2},
		Bundles:  []model.Bundle{bundle},
		Seed:     3,
		Observer: model.Observer{AgeYears: 32, PupilDiameterMM: 3, FieldSizeDeg: 10},
	}
}

func TestWriteRunArtifacts(t *testing.T) {
	dir := t.TempDir()
	record := model.RunRecord{RunID: "run-x", Generator: "mcg16807", Seed: 3}

	runDir, err := WriteRunArtifacts(dir, record, testPopulation())
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if runDir != filepath.Join(dir, "run-x") {
		t.Fatalf("unexpected run dir: %s", runDir)
	}

	for _, name := range []string{
		"config.json", "summary.json",
		"sampled_parameters.csv", "adjusted_parameters.csv",
		"mean_energy_normalized.csv",
	} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(runDir, "sampled_parameters.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("parameter csv rows: got %d, want header plus one draw", len(rows))
	}
	if rows[1][0] != "1" || rows[1][1] != "1.5" {
		t.Fatalf("first draw row: %v", rows[1])
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), model.RunRecord{}, model.Population{}); err == nil {
		t.Fatal("expected run-id error")
	}
}

func TestWriteBundleCSV(t *testing.T) {
	dir := t.TempDir()
	pop := testPopulation()
	if err := WriteBundleCSV(dir, "nominal", pop.Spec, pop.Bundles[0]); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "nominal_energy_normalized.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != model.ReceptorRows+1 {
		t.Fatalf("rows: got %d", len(rows))
	}
	if rows[0][0] != "receptor" || rows[0][1] != "400" || rows[0][2] != "500" {
		t.Fatalf("header: %v", rows[0])
	}
	if rows[1][0] != "L" || rows[4][0] != "Melanopsin" || rows[5][0] != "Rod" {
		t.Fatalf("row labels: %v %v %v", rows[1][0], rows[4][0], rows[5][0])
	}
}

func TestAppendRunIndexUpdatesInPlace(t *testing.T) {
	dir := t.TempDir()
	if err := AppendRunIndex(dir, RunIndexEntry{RunID: "a", CreatedAtUTC: "2026-08-01T00:00:00Z"}); err != nil {
		t.Fatal(err)
	}
	if err := AppendRunIndex(dir, RunIndexEntry{RunID: "b", CreatedAtUTC: "2026-08-02T00:00:00Z"}); err != nil {
		t.Fatal(err)
	}
	if err := AppendRunIndex(dir, RunIndexEntry{RunID: "a", CreatedAtUTC: "2026-08-03T00:00:00Z", Count: 9}); err != nil {
		t.Fatal(err)
	}

	entries, err := ListRunIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].RunID != "a" || entries[0].Count != 9 {
		t.Fatalf("updated entry should sort first: %+v", entries[0])
	}
}

func TestListRunIndexMissingFile(t *testing.T) {
	entries, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %d", len(entries))
	}
}
