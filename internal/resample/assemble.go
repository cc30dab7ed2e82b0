package resample

import (
	"fmt"

	"opsin/internal/model"
	"opsin/internal/receptor"
	"opsin/internal/units"
)

// Assemble turns one trial's parameter records into a sensitivity bundle:
// three transform calls, row-stacking in the fixed L, M, S, melanopsin, rod
// order, then the derived energy representations.
func Assemble(spec model.SamplingSpec, obs model.Observer, trial model.TrialDifferences) (model.Bundle, error) {
	cone, err := receptor.Sensitivities(spec, obs, receptor.ClassCone, trial.Cone)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("cone transform: %w", err)
	}
	mel, err := receptor.Sensitivities(spec, obs, receptor.ClassMelanopsin, trial.Melanopsin)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("melanopsin transform: %w", err)
	}
	rod, err := receptor.Sensitivities(spec, obs, receptor.ClassRod, trial.Rod)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("rod transform: %w", err)
	}

	iso := stackRows(cone.Isomerizations, mel.Isomerizations, rod.Isomerizations)
	// The melanopsin and rod rows of the raw-absorption matrix carry the
	// normalized output. The asymmetry is kept on purpose; see the
	// raw-absorption note in DESIGN.md before changing it.
	abs := stackRows(cone.Absorptance, mel.AbsorptanceNormalized, rod.AbsorptanceNormalized)
	absNorm := stackRows(cone.AbsorptanceNormalized, mel.AbsorptanceNormalized, rod.AbsorptanceNormalized)

	energy := units.EnergyFromQuantal(spec, absNorm)
	energyNorm := units.NormalizeRows(energy)

	return model.Bundle{
		Isomerizations:        iso,
		Absorptions:           abs,
		AbsorptionsNormalized: absNorm,
		Energy:                energy,
		EnergyNormalized:      energyNorm,
		Sampled:               trial,
		Adjusted: model.TrialDifferences{
			Cone:       cone.Adjusted,
			Melanopsin: mel.Adjusted,
			Rod:        rod.Adjusted,
		},
	}, nil
}

func stackRows(blocks ...[][]float64) [][]float64 {
	out := make([][]float64, 0, model.ReceptorRows)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}
