// Package sampler draws per-trial individual-difference parameter sets from
// the population variability distributions.
package sampler

import (
	"opsin/internal/model"
	"opsin/internal/streams"
)

// Population standard deviations per dimension. Densities are percent
// deviations, shifts are nanometers.
const (
	LensSD = 18.7
	// The literature value is 36.5; it is reduced to 25 to limit how often
	// the physiological model has to clamp the resulting macular density.
	MacularSD = 25.0

	DensityLSD = 9.0
	DensityMSD = 9.0
	DensitySSD = 7.4

	ShiftLSD = 2.0
	ShiftMSD = 1.5
	ShiftSSD = 1.3
)

// Draw produces the three per-class parameter records for one trial,
// advancing the bank's streams. Lens and macular deviations are drawn once
// and shared identically across the cone, melanopsin, and rod records: they
// are whole-eye properties, not receptor-class ones. Melanopsin and rod
// photopigment deviations and shifts stay at zero; no population variability
// data backs resampling them.
func Draw(bank *streams.Bank) model.TrialDifferences {
	lens := bank.Normal(streams.DimLens, LensSD)
	macular := bank.Normal(streams.DimMacular, MacularSD)

	cone := model.IndividualDifferences{
		LensDensity:    lens,
		MacularDensity: macular,
		PhotopigmentDensity: []float64{
			bank.Normal(streams.DimDensityL, DensityLSD),
			bank.Normal(streams.DimDensityM, DensityMSD),
			bank.Normal(streams.DimDensityS, DensitySSD),
		},
		LambdaMaxShift: []float64{
			bank.Normal(streams.DimShiftL, ShiftLSD),
			bank.Normal(streams.DimShiftM, ShiftMSD),
			bank.Normal(streams.DimShiftS, ShiftSSD),
		},
		ShiftType: model.ShiftModeLinear,
	}

	return model.TrialDifferences{
		Cone:       cone,
		Melanopsin: fixedClassRecord(lens, macular),
		Rod:        fixedClassRecord(lens, macular),
	}
}

// fixedClassRecord builds the melanopsin/rod record: shared whole-eye
// deviations, zero photopigment deviation and shift.
func fixedClassRecord(lens, macular float64) model.IndividualDifferences {
	return model.IndividualDifferences{
		LensDensity:         lens,
		MacularDensity:      macular,
		PhotopigmentDensity: []float64{0},
		LambdaMaxShift:      []float64{0},
	}
}
