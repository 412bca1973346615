package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// kEff computes the effective horizontal diffusivity of spec.md §4.5.3:
// the field value scaled by the engine and tracer multipliers when found,
// else a floor of 20 m²/s scaled only by the engine multiplier.
func kEff(fieldK float64, found bool, scale, tracerScale float64) float64 {
	if found {
		return fieldK * scale * tracerScale
	}
	return 20 * scale
}

// diffusionStep draws an independent horizontal random-walk displacement
// in x and y, with step sigma sigma_km = sqrt(2*K*deltaDays*86400)/1000.
func diffusionStep(k, deltaDays float64, rng distuv.Normal) (dx, dy float64) {
	sigmaKm := math.Sqrt(2*k*deltaDays*86400) / 1000
	rng.Sigma = sigmaKm
	return rng.Rand(), rng.Rand()
}
