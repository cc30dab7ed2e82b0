// Package sweep builds deterministic parametric variations along one
// individual-difference dimension at a time.
package sweep

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"opsin/internal/model"
	"opsin/internal/resample"
)

// Dimension names one sweepable individual-difference axis.
type Dimension string

const (
	DimLensDensity    Dimension = "lens"
	DimMacularDensity Dimension = "macular"
	DimDensityL       Dimension = "density-l"
	DimDensityM       Dimension = "density-m"
	DimDensityS       Dimension = "density-s"
	DimShiftL         Dimension = "shift-l"
	DimShiftM         Dimension = "shift-m"
	DimShiftS         Dimension = "shift-s"
	DimAge            Dimension = "age"
)

var ErrNoValues = errors.New("sweep needs at least one value")

// Config selects the dimension and the values it takes, all other
// dimensions held at zero deviation.
type Config struct {
	Dimension Dimension
	Values    []float64
}

// Point is one sweep step: the deviation value and the bundle it produced.
type Point struct {
	Value  float64      `json:"value"`
	Bundle model.Bundle `json:"bundle"`
}

// Span returns n evenly spaced values covering [lo, hi], the usual way to
// populate Config.Values.
func Span(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Run assembles one bundle per value, in order.
func Run(spec model.SamplingSpec, obs model.Observer, cfg Config) ([]Point, error) {
	if len(cfg.Values) == 0 {
		return nil, ErrNoValues
	}
	points := make([]Point, 0, len(cfg.Values))
	for _, v := range cfg.Values {
		stepObs := obs
		trial := resample.NominalTrial()
		if cfg.Dimension == DimAge {
			stepObs.AgeYears = v
		} else {
			var err error
			trial, err = trialFor(cfg.Dimension, v)
			if err != nil {
				return nil, err
			}
		}
		bundle, err := resample.Assemble(spec, stepObs, trial)
		if err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", cfg.Dimension, v, err)
		}
		points = append(points, Point{Value: v, Bundle: bundle})
	}
	return points, nil
}

func trialFor(dim Dimension, v float64) (model.TrialDifferences, error) {
	trial := resample.NominalTrial()
	switch dim {
	case DimLensDensity:
		trial.Cone.LensDensity = v
		trial.Melanopsin.LensDensity = v
		trial.Rod.LensDensity = v
	case DimMacularDensity:
		trial.Cone.MacularDensity = v
		trial.Melanopsin.MacularDensity = v
		trial.Rod.MacularDensity = v
	case DimDensityL:
		trial.Cone.PhotopigmentDensity[model.RowConeL] = v
	case DimDensityM:
		trial.Cone.PhotopigmentDensity[model.RowConeM] = v
	case DimDensityS:
		trial.Cone.PhotopigmentDensity[model.RowConeS] = v
	case DimShiftL:
		trial.Cone.LambdaMaxShift[model.RowConeL] = v
	case DimShiftM:
		trial.Cone.LambdaMaxShift[model.RowConeM] = v
	case DimShiftS:
		trial.Cone.LambdaMaxShift[model.RowConeS] = v
	default:
		return model.TrialDifferences{}, fmt.Errorf("unknown sweep dimension: %q", dim)
	}
	return trial, nil
}
