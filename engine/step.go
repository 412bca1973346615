package engine

import (
	"context"
	"math"

	"github.com/oceantracer/driftmap/internal/geo"
)

// pathSamples is the fixed number of interior samples the path-safety
// check examines along a proposed straight-line move, spec.md §4.5.5.
const pathSamples = 5

// checkPath samples pathSamples evenly spaced intermediate points between
// (x0,y0) and (x1,y1) and returns the last verified-safe point together
// with whether the full path was accepted. On failure it returns the
// last ocean sample (or the origin if even that fails).
func (e *Engine) checkPath(ctx context.Context, x0, y0, x1, y1, refLon, refLat, depthM, simDay float64) (safeX, safeY float64, ok bool) {
	safeX, safeY = x0, y0
	for s := 1; s <= pathSamples; s++ {
		t := float64(s) / float64(pathSamples+1)
		x := x0 + (x1-x0)*t
		y := y0 + (y1-y0)*t
		lon, lat := geo.FromLocalPlane(x, y, refLon, refLat)
		if !e.currentF.IsOcean(ctx, lon, lat, depthM, simDay) {
			return safeX, safeY, false
		}
		safeX, safeY = x, y
	}
	return x1, y1, true
}

// stepParticle advances one active particle through the pipeline order of
// spec.md §5: advection, diffusion, land check, vertical mixing,
// aging+decay, concentration, history.
func (e *Engine) stepParticle(ctx context.Context, p *Particle, deltaDays float64, winter bool) {
	refLon, refLat := e.refPoint()
	preX, preY, preDepth := p.X, p.Y, p.Depth
	depthM := p.Depth * 1000

	advectOk := false
	newX, newY := p.X, p.Y
	var u, v float64

	result := e.integrator.Advect(ctx, e.currentF, p, refLon, refLat, depthM, e.simDay, deltaDays)
	if !result.Ok {
		if _, isRK4 := e.integrator.(RK4Integrator); isRK4 {
			result = e.rk4Fallback.Advect(ctx, e.currentF, p, refLon, refLat, depthM, e.simDay, deltaDays)
		}
	}
	if result.Ok {
		safeX, safeY, pathOk := e.checkPath(ctx, p.X, p.Y, result.X, result.Y, refLon, refLat, depthM, e.simDay)
		newX, newY = safeX, safeY
		if pathOk {
			advectOk = true
			u, v = result.U, result.V
		} else {
			e.stats.ParticlesOnLand++
		}
	}
	p.X, p.Y = newX, newY
	if !advectOk {
		u, v = 0, 0
	}

	if advectOk {
		curLon, curLat := geo.FromLocalPlane(p.X, p.Y, refLon, refLat)
		fieldK := e.diffField.GetDiffusivity(ctx, curLon, curLat, e.simDay)
		k := kEff(fieldK.K, fieldK.Found, e.cfg.DiffusivityScale, tracerOf(p).DiffusivityScale)
		dx, dy := diffusionStep(k, deltaDays, e.normal)
		propX, propY := p.X+dx, p.Y+dy
		safeX, safeY, pathOk := e.checkPath(ctx, p.X, p.Y, propX, propY, refLon, refLat, depthM, e.simDay)
		if pathOk {
			p.X, p.Y = safeX, safeY
		} else {
			p.X, p.Y = safeX, safeY
			u, v = 0, 0
		}
	}
	p.U, p.V = u, v

	if e.cfg.Land.Enabled {
		lon, lat := geo.FromLocalPlane(p.X, p.Y, refLon, refLat)
		if !e.currentF.IsOcean(ctx, lon, lat, depthM, e.simDay) {
			p.X, p.Y = preX, preY
			preLon, preLat := geo.FromLocalPlane(preX, preY, refLon, refLat)
			cell, found := e.currentF.FindNearestOceanCell(ctx, preLon, preLat, depthM, e.simDay, e.cfg.Land.MaxSearchRadius)
			if found {
				cx, cy := geo.ToLocalPlane(cell.Lon, cell.Lat, refLon, refLat)
				p.X = (preX + cx) / 2
				p.Y = (preY + cy) / 2
			}
			p.Depth = preDepth
			e.stats.ParticlesOnLand++
			p.recordHistory(e.simDay)
			return
		}
	}

	if e.cfg.VerticalMixing {
		kz := e.cfg.KzProfile.At(depthM)
		deltaSeconds := deltaDays * 86400
		dz := verticalDisplacementM(kz, tracerOf(p).SettlingVelocity, e.cfg.EkmanPumping, e.cfg.ConvectiveMixing, winter, depthM < 100, deltaSeconds, e.standard)
		p.Depth = applyVerticalMotion(p.Depth, dz)
	}

	p.Age += deltaDays
	t := tracerOf(p)
	if t.Decays() {
		p.Mass *= math.Pow(0.5, deltaDays/t.HalfLifeDays)
	}
	if p.Mass < e.cfg.MassThresholdFraction*p.InitialMass {
		p.Active = false
		e.stats.TotalDecayed++
	}

	volume := math.Pow(2*math.Pi, 1.5) * t.SigmaH * t.SigmaH * t.SigmaV
	if volume < 1e9 {
		volume = 1e9
	}
	massAtT := p.Mass
	if t.Decays() {
		massAtT *= math.Pow(0.5, p.Age/t.HalfLifeDays)
	}
	p.Concentration = massAtT / volume
	if p.Concentration > e.stats.MaxConcentration {
		e.stats.MaxConcentration = p.Concentration
	}
	if p.Depth > e.stats.MaxDepthReached {
		e.stats.MaxDepthReached = p.Depth
	}

	p.recordHistory(e.simDay)
}
