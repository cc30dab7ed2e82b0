// Package receptor implements the physiological model that maps observer
// demographics plus an individual-difference record to quantal spectral
// sensitivity curves for one receptor class.
package receptor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"opsin/internal/model"
)

// Class selects which receptor variant a call computes.
type Class int

const (
	ClassCone Class = iota
	ClassMelanopsin
	ClassRod
)

func (c Class) String() string {
	switch c {
	case ClassCone:
		return "cone"
	case ClassMelanopsin:
		return "melanopsin"
	case ClassRod:
		return "rod"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Subtypes is the number of matrix rows a class contributes.
func (c Class) Subtypes() int {
	if c == ClassCone {
		return model.ConeSubtypes
	}
	return 1
}

var (
	ErrInvalidSampling  = errors.New("wavelength sampling must have positive start, positive step, and at least one sample")
	ErrFieldSizeDomain  = errors.New("field size must be in (0, 20] degrees")
	ErrPupilDomain      = errors.New("pupil diameter must be in [2, 9] mm")
	ErrParameterLengths = errors.New("individual-difference vectors must carry one value per receptor subtype")
)

// Supported observer age range. Ages outside it are clamped, not rejected.
const (
	minAge = 20.0
	maxAge = 80.0
)

// Axial optical density is kept inside physiological bounds after the
// percent deviation is applied; the clamped value is reported back through
// the adjusted record.
const (
	minAxialDensity = 0.0
	maxAxialDensity = 0.6
)

// Peak absorbance wavelengths (nm) in fixed row order per class.
var (
	coneLambdaMax       = [model.ConeSubtypes]float64{558.9, 530.3, 420.7}
	melanopsinLambdaMax = 480.0
	rodLambdaMax        = 493.0
)

// Quantal efficiency of isomerization given absorption.
const isomerizationEfficiency = 0.667

// Effective collecting apertures (um^2) used for isomerization rates.
var collectingAperture = map[Class]float64{
	ClassCone:       0.6,
	ClassMelanopsin: 10.0,
	ClassRod:        1.7,
}

// Result is one transform call's output: three subtype-by-wavelength
// matrices plus the post-clamp parameter record actually used.
type Result struct {
	AbsorptanceNormalized [][]float64
	Absorptance           [][]float64
	Isomerizations        [][]float64
	Adjusted              model.IndividualDifferences
}

// Sensitivities computes the quantal sensitivity curves of one receptor
// class for the given observer and individual-difference record.
func Sensitivities(spec model.SamplingSpec, obs model.Observer, class Class, diff model.IndividualDifferences) (Result, error) {
	if spec.Count < 1 || spec.StepNM <= 0 || spec.StartNM <= 0 {
		return Result{}, ErrInvalidSampling
	}
	if obs.FieldSizeDeg <= 0 || obs.FieldSizeDeg > 20 {
		return Result{}, fmt.Errorf("%w: got %g", ErrFieldSizeDomain, obs.FieldSizeDeg)
	}
	if obs.PupilDiameterMM < 2 || obs.PupilDiameterMM > 9 {
		return Result{}, fmt.Errorf("%w: got %g", ErrPupilDomain, obs.PupilDiameterMM)
	}
	n := class.Subtypes()
	if len(diff.PhotopigmentDensity) != n || len(diff.LambdaMaxShift) != n {
		return Result{}, fmt.Errorf("%w: %s wants %d, got %d density and %d shift values",
			ErrParameterLengths, class, n, len(diff.PhotopigmentDensity), len(diff.LambdaMaxShift))
	}

	age := clamp(obs.AgeYears, minAge, maxAge)
	wls := spec.Wavelengths()

	adjusted := diff
	adjusted.PhotopigmentDensity = append([]float64(nil), diff.PhotopigmentDensity...)
	adjusted.LambdaMaxShift = append([]float64(nil), diff.LambdaMaxShift...)

	// Whole-eye media. Deviations below -100% would flip the density sign;
	// they are clamped and reported.
	lensScale := clampScale(diff.LensDensity, &adjusted.LensDensity)
	macScale := clampScale(diff.MacularDensity, &adjusted.MacularDensity)
	macPeak := macularPeakDensity(obs.FieldSizeDeg) * macScale

	transmittance := make([]float64, len(wls))
	for i, wl := range wls {
		media := lensDensity(wl, age)*lensScale + macularTemplate(wl)*macPeak
		transmittance[i] = math.Pow(10, -media)
	}

	res := Result{
		AbsorptanceNormalized: make([][]float64, n),
		Absorptance:           make([][]float64, n),
		Isomerizations:        make([][]float64, n),
	}

	pupilArea := math.Pi * obs.PupilDiameterMM * obs.PupilDiameterMM / 4
	isoGain := pupilArea * collectingAperture[class] * isomerizationEfficiency

	for s := 0; s < n; s++ {
		lm := shiftedLambdaMax(class, s, diff.LambdaMaxShift[s], diff.ShiftType)

		base := baseAxialDensity(class, s, obs.FieldSizeDeg)
		density := base * (1 + diff.PhotopigmentDensity[s]/100)
		clamped := clamp(density, minAxialDensity, maxAxialDensity)
		if clamped != density {
			adjusted.PhotopigmentDensity[s] = (clamped/base - 1) * 100
		}

		absorption := make([]float64, len(wls))
		iso := make([]float64, len(wls))
		for i, wl := range wls {
			absorptance := 1 - math.Pow(10, -clamped*absorbanceTemplate(wl, lm))
			absorption[i] = transmittance[i] * absorptance
			iso[i] = absorption[i] * isoGain
		}

		normalized := append([]float64(nil), absorption...)
		floats.Scale(1/floats.Max(normalized), normalized)

		res.Absorptance[s] = absorption
		res.AbsorptanceNormalized[s] = normalized
		res.Isomerizations[s] = iso
	}

	res.Adjusted = adjusted
	return res, nil
}

// shiftedLambdaMax applies the peak-wavelength shift in either linear
// wavelength or log-wavelength space.
func shiftedLambdaMax(class Class, subtype int, shift float64, mode model.ShiftMode) float64 {
	var lm float64
	switch class {
	case ClassCone:
		lm = coneLambdaMax[subtype]
	case ClassMelanopsin:
		lm = melanopsinLambdaMax
	case ClassRod:
		lm = rodLambdaMax
	}
	if mode == model.ShiftModeLog {
		return lm * math.Exp(shift/lm)
	}
	return lm + shift
}

// baseAxialDensity is the field-size-dependent peak axial optical density of
// the reference observer's photopigment.
func baseAxialDensity(class Class, subtype int, fieldSizeDeg float64) float64 {
	switch class {
	case ClassCone:
		if subtype == model.RowConeS {
			return 0.30 + 0.45*math.Exp(-fieldSizeDeg/1.333)
		}
		return 0.38 + 0.54*math.Exp(-fieldSizeDeg/1.333)
	case ClassMelanopsin:
		return 0.10
	case ClassRod:
		return 0.40
	default:
		return 0
	}
}

// clampScale converts a percent deviation into a non-negative multiplicative
// scale, writing the effective deviation back when the input is out of range.
func clampScale(deviationPct float64, adjusted *float64) float64 {
	if deviationPct < -100 {
		*adjusted = -100
		return 0
	}
	return 1 + deviationPct/100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
