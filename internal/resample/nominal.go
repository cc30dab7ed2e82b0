package resample

import "opsin/internal/model"

// NominalTrial is the zero-deviation parameter set of the reference
// observer, in the vector shapes the transform expects.
func NominalTrial() model.TrialDifferences {
	return model.TrialDifferences{
		Cone: model.IndividualDifferences{
			PhotopigmentDensity: make([]float64, model.ConeSubtypes),
			LambdaMaxShift:      make([]float64, model.ConeSubtypes),
			ShiftType:           model.ShiftModeLinear,
		},
		Melanopsin: model.IndividualDifferences{
			PhotopigmentDensity: []float64{0},
			LambdaMaxShift:      []float64{0},
		},
		Rod: model.IndividualDifferences{
			PhotopigmentDensity: []float64{0},
			LambdaMaxShift:      []float64{0},
		},
	}
}

// Nominal assembles the reference observer's bundle.
func Nominal(spec model.SamplingSpec, obs model.Observer) (model.Bundle, error) {
	return Assemble(spec, obs, NominalTrial())
}
