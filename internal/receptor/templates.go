package receptor

import "math"

// absorbanceTemplate evaluates the Govardovskii et al. (2000) A1 visual
// pigment nomogram at wavelength wl for a pigment peaking at lambdaMax,
// alpha plus beta band, normalized so the alpha peak is 1.
func absorbanceTemplate(wl, lambdaMax float64) float64 {
	const (
		capA = 69.7
		capB = 28.0
		capC = -14.9
		capD = 0.674
		b    = 0.922
		c    = 1.104
	)
	a := 0.8795 + 0.0459*math.Exp(-(lambdaMax-300)*(lambdaMax-300)/11940)

	x := lambdaMax / wl
	alpha := 1 / (math.Exp(capA*(a-x)) + math.Exp(capB*(b-x)) + math.Exp(capC*(c-x)) + capD)

	betaPeak := 189 + 0.315*lambdaMax
	betaBand := -40.5 + 0.195*lambdaMax
	beta := 0.26 * math.Exp(-sq((wl-betaPeak)/betaBand))

	return alpha + beta
}

// lensDensity is the age-dependent lens optical density of the reference
// observer at wavelength wl. Two-component form after Pokorny, Smith & Lutze
// (1987), with the spectral components approximated by exponential decays
// anchored at 400 nm.
func lensDensity(wl, age float64) float64 {
	aging := 0.6 * math.Exp(-(wl-400)/51)
	stable := math.Exp(-(wl - 400) / 30)

	var scale float64
	if age <= 60 {
		scale = 1 + 0.02*(age-32)
	} else {
		scale = 1.56 + 0.0667*(age-60)
	}
	return aging*scale + stable
}

// macularPeakDensity is the field-size-dependent peak macular pigment
// optical density of the reference observer.
func macularPeakDensity(fieldSizeDeg float64) float64 {
	return 0.485 * math.Exp(-fieldSizeDeg/6.132)
}

// macularTemplate is the relative macular pigment spectrum, peak 1 at 460 nm.
func macularTemplate(wl float64) float64 {
	return math.Exp(-sq((wl - 460) / 35))
}

func sq(x float64) float64 { return x * x }
