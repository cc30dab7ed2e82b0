package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"opsin/internal/model"
)

const runIndexFile = "run_index.json"

// RunIndexEntry is one line of the artifacts directory's run index.
type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Generator    string  `json:"generator"`
	Seed         uint64  `json:"seed"`
	Count        int     `json:"count"`
	AgeYears     float64 `json:"age_years"`
	FieldSizeDeg float64 `json:"field_size_deg"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// WriteRunArtifacts exports one run: the run record as config.json, the
// population summary, per-draw sampled and adjusted parameter CSVs, and the
// population mean of the peak-normalized energy matrix.
func WriteRunArtifacts(baseDir string, record model.RunRecord, pop model.Population) (string, error) {
	if record.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, record.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), record); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), Summarize(pop)); err != nil {
		return "", err
	}
	if err := writeParameterCSV(filepath.Join(runDir, "sampled_parameters.csv"), pop, sampledOf); err != nil {
		return "", err
	}
	if err := writeParameterCSV(filepath.Join(runDir, "adjusted_parameters.csv"), pop, adjustedOf); err != nil {
		return "", err
	}
	if len(pop.Bundles) > 0 {
		mean := meanMatrix(pop, func(b model.Bundle) [][]float64 { return b.EnergyNormalized })
		if err := writeMatrixCSV(filepath.Join(runDir, "mean_energy_normalized.csv"), pop.Spec, mean); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

// WriteBundleCSV exports all five representations of one bundle, one CSV per
// representation.
func WriteBundleCSV(dir, prefix string, spec model.SamplingSpec, bundle model.Bundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	reprs := []struct {
		name   string
		matrix [][]float64
	}{
		{"isomerizations", bundle.Isomerizations},
		{"absorptions", bundle.Absorptions},
		{"absorptions_normalized", bundle.AbsorptionsNormalized},
		{"energy", bundle.Energy},
		{"energy_normalized", bundle.EnergyNormalized},
	}
	for _, r := range reprs {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, r.name))
		if err := writeMatrixCSV(path, spec, r.matrix); err != nil {
			return err
		}
	}
	return nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// writeMatrixCSV writes one receptor-by-wavelength matrix with a wavelength
// header row and a leading row-label column.
func writeMatrixCSV(path string, spec model.SamplingSpec, matrix [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"receptor"}
	for _, wl := range spec.Wavelengths() {
		header = append(header, strconv.FormatFloat(wl, 'g', -1, 64))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for r, row := range matrix {
		rec := make([]string, 0, len(row)+1)
		label := strconv.Itoa(r)
		if r < len(model.RowLabels) {
			label = model.RowLabels[r]
		}
		rec = append(rec, label)
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var parameterHeader = []string{
	"draw", "lens", "macular",
	"density_l", "density_m", "density_s",
	"shift_l", "shift_m", "shift_s",
}

func sampledOf(b model.Bundle) model.TrialDifferences  { return b.Sampled }
func adjustedOf(b model.Bundle) model.TrialDifferences { return b.Adjusted }

func writeParameterCSV(path string, pop model.Population, pick func(model.Bundle) model.TrialDifferences) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(parameterHeader); err != nil {
		return err
	}
	for i, b := range pop.Bundles {
		t := pick(b)
		rec := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(t.Cone.LensDensity, 'g', -1, 64),
			strconv.FormatFloat(t.Cone.MacularDensity, 'g', -1, 64),
		}
		for _, v := range t.Cone.PhotopigmentDensity {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		for _, v := range t.Cone.LambdaMaxShift {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func meanMatrix(pop model.Population, pick func(model.Bundle) [][]float64) [][]float64 {
	first := pick(pop.Bundles[0])
	mean := make([][]float64, len(first))
	for r := range mean {
		mean[r] = make([]float64, len(first[r]))
	}
	for _, b := range pop.Bundles {
		m := pick(b)
		for r := range mean {
			floats.Add(mean[r], m[r])
		}
	}
	for r := range mean {
		floats.Scale(1/float64(len(pop.Bundles)), mean[r])
	}
	return mean
}
