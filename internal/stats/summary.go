// Package stats summarizes resampled populations and writes run artifacts.
package stats

import (
	"gonum.org/v1/gonum/stat"

	"opsin/internal/model"
)

// DimensionSummary is the sample mean and standard deviation of one
// individual-difference dimension across a population.
type DimensionSummary struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// Summary aggregates the sampled parameter distributions of one run.
type Summary struct {
	Count    int                `json:"count"`
	Lens     DimensionSummary   `json:"lens"`
	Macular  DimensionSummary   `json:"macular"`
	Density  []DimensionSummary `json:"density"`
	Shift    []DimensionSummary `json:"shift"`
	Clamped  int                `json:"clamped"`
	RowCount int                `json:"row_count"`
}

// Summarize computes per-dimension sample statistics over the population's
// sampled parameters, and counts draws whose adjusted record differs from
// the sampled one (the physiological model clamped something).
func Summarize(pop model.Population) Summary {
	n := len(pop.Bundles)
	s := Summary{
		Count:    n,
		Density:  make([]DimensionSummary, model.ConeSubtypes),
		Shift:    make([]DimensionSummary, model.ConeSubtypes),
		RowCount: model.ReceptorRows,
	}
	if n == 0 {
		return s
	}

	lens := make([]float64, n)
	macular := make([]float64, n)
	density := make([][]float64, model.ConeSubtypes)
	shift := make([][]float64, model.ConeSubtypes)
	for c := range density {
		density[c] = make([]float64, n)
		shift[c] = make([]float64, n)
	}

	for i, b := range pop.Bundles {
		lens[i] = b.Sampled.Cone.LensDensity
		macular[i] = b.Sampled.Cone.MacularDensity
		for c := 0; c < model.ConeSubtypes; c++ {
			density[c][i] = b.Sampled.Cone.PhotopigmentDensity[c]
			shift[c][i] = b.Sampled.Cone.LambdaMaxShift[c]
		}
		if clamped(b) {
			s.Clamped++
		}
	}

	s.Lens = summarize(lens)
	s.Macular = summarize(macular)
	for c := 0; c < model.ConeSubtypes; c++ {
		s.Density[c] = summarize(density[c])
		s.Shift[c] = summarize(shift[c])
	}
	return s
}

func summarize(xs []float64) DimensionSummary {
	s := DimensionSummary{Mean: stat.Mean(xs, nil)}
	// The sample standard deviation is undefined for a single draw; report 0
	// so single-draw runs stay encodable as JSON.
	if len(xs) > 1 {
		s.SD = stat.StdDev(xs, nil)
	}
	return s
}

func clamped(b model.Bundle) bool {
	if b.Sampled.Cone.LensDensity != b.Adjusted.Cone.LensDensity ||
		b.Sampled.Cone.MacularDensity != b.Adjusted.Cone.MacularDensity {
		return true
	}
	for c := 0; c < model.ConeSubtypes; c++ {
		if b.Sampled.Cone.PhotopigmentDensity[c] != b.Adjusted.Cone.PhotopigmentDensity[c] {
			return true
		}
	}
	return false
}
