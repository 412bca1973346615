package engine

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/oceantracer/driftmap/internal/geo"
)

// releaseSigmaKm is the spec.md §4.5.1 release-site spread, 20 km.
const releaseSigmaKm = 20

// sampleReleasePosition draws one (lon, lat) sample from a 2-D normal
// centred on the reference point with sigma 20 km converted to degrees
// via the longitude scale, hard-clamped to ±3 sigma, per spec.md §4.5.1.
// offsetRNG must have Mu=0; only its Sigma is mutated here.
func sampleReleasePosition(refLon, refLat float64, offsetRNG *distuv.Normal) (lon, lat float64) {
	sigmaDeg := releaseSigmaKm / geo.LonScaleKm
	offsetRNG.Sigma = sigmaDeg
	bound := 3 * sigmaDeg

	dLon := clamp(offsetRNG.Rand(), -bound, bound)
	dLat := clamp(offsetRNG.Rand(), -bound, bound)
	return refLon + dLon, refLat + dLat
}

// release activates up to n inactive particles, drawing each one's
// position from the release-site distribution and its mass from the
// Release Manager's per-particle calibration. It returns the number
// actually activated, which may be less than n if the pool is exhausted.
func (e *Engine) release(n int) int {
	if n <= 0 {
		return 0
	}
	mass, err := e.release_.ParticleActivity(len(e.particles))
	if err != nil {
		return 0
	}
	activated := 0
	rng := distuv.Normal{Mu: 0, Src: e.src}
	for i := range e.particles {
		if activated >= n {
			break
		}
		p := &e.particles[i]
		if p.Active {
			continue
		}
		lon, lat := sampleReleasePosition(e.cfg.ReferenceLon, e.cfg.ReferenceLat, &rng)
		x, y := geo.ToLocalPlane(lon, lat, e.cfg.ReferenceLon, e.cfg.ReferenceLat)

		p.reset()
		p.ID = i
		p.Active = true
		p.TracerID = e.release_.Tracer().ID
		p.X, p.Y = x, y
		p.Depth = 0
		p.Mass = mass * 1e9 // ParticleActivity is in GBq; particle mass tracked in Bq
		p.InitialMass = p.Mass
		p.Age = 0
		p.ReleaseDay = e.simDay
		p.recordHistory(e.simDay)

		activated++
		e.stats.TotalReleased++
	}
	return activated
}

// continuousRelease determines the phase active at the pre-increment
// sim_day, converts its rate to a particle count via the Release
// Manager's fractional accumulator, and releases that many particles.
func (e *Engine) continuousRelease(deltaDays float64) {
	rateGBq := e.release_.RateAtGBq(e.simDay)
	if rateGBq <= 0 {
		return
	}
	massPerParticle, err := e.release_.ParticleActivity(len(e.particles))
	if err != nil || massPerParticle <= 0 {
		return
	}
	dn := rateGBq * deltaDays / massPerParticle
	n := e.release_.AddFraction(dn)
	if n > 0 {
		e.release(n)
	}
}
