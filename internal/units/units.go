// Package units converts quantal-unit sensitivity matrices to energy units
// and provides peak normalization.
package units

import (
	"gonum.org/v1/gonum/floats"

	"opsin/internal/model"
)

// Planck constant (J*s) and speed of light (m/s).
const (
	planck     = 6.62607015e-34
	lightSpeed = 2.99792458e8
)

// EnergyFromQuantal converts a quantal-unit matrix (rows = receptor classes,
// columns = wavelength samples) to energy units. A detector responding per
// photon responds per joule in proportion to the photon count a joule buys
// at that wavelength, lambda/(h*c).
func EnergyFromQuantal(spec model.SamplingSpec, quantal [][]float64) [][]float64 {
	wls := spec.Wavelengths()
	out := make([][]float64, len(quantal))
	for r, row := range quantal {
		converted := make([]float64, len(row))
		for i, v := range row {
			converted[i] = v * wls[i] * 1e-9 / (planck * lightSpeed)
		}
		out[r] = converted
	}
	return out
}

// NormalizeRows divides every row by its own maximum so each peak is 1.
// A row whose maximum is not positive comes out degenerate (non-finite or
// sign-flipped); that is deliberate and matches the model this pipeline
// mirrors, so callers must not expect a guard here.
func NormalizeRows(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for r, row := range m {
		normalized := append([]float64(nil), row...)
		floats.Scale(1/floats.Max(row), normalized)
		out[r] = normalized
	}
	return out
}
