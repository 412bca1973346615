package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// isWinter reports whether dayOfYear falls in the northern-hemisphere
// winter convention of spec.md §4.5.4: before day 90 or after day 335.
func isWinter(dayOfYear int) bool {
	return dayOfYear < 90 || dayOfYear > 335
}

// verticalDisplacementM returns the proposed vertical displacement in
// metres for one step, per spec.md §4.5.4:
//
//	Δz = N(0,1)*sqrt(2*Kz*Δt) + w_settle*Δt + ekman*Δt + (winter ∧ depth<100m)*convective*Δt
func verticalDisplacementM(kz, settlingVelocity, ekmanPumping, convectiveMixing float64, winter, depthBelow100m bool, deltaSeconds float64, standardNormal distuv.Normal) float64 {
	dz := standardNormal.Rand()*math.Sqrt(2*kz*deltaSeconds) + settlingVelocity*deltaSeconds + ekmanPumping*deltaSeconds
	if winter && depthBelow100m {
		dz += convectiveMixing * deltaSeconds
	}
	return dz
}

// applyVerticalMotion advances depth (km, clamped [0,1]) by dz metres.
func applyVerticalMotion(depthKm float64, dzM float64) float64 {
	depthKm += dzM / 1000
	if depthKm < 0 {
		return 0
	}
	if depthKm > 1 {
		return 1
	}
	return depthKm
}
