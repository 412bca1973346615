package engine

import (
	"context"
	"math"

	"github.com/oceantracer/driftmap/internal/geo"
)

// AdvectResult is the outcome of one integrator step: the proposed new
// local-plane position and the velocity to record on the particle. Ok is
// false only when the integrator could not sample a velocity at all (dry
// land at the particle's current position, or for RK4 at the start of any
// sub-step); the caller leaves the particle where it was in that case.
type AdvectResult struct {
	X, Y   float64
	U, V   float64
	Ok     bool
}

// Integrator is the strategy interface of spec.md §9's "RK4/Euler
// switching by two separate parallel code paths" Design Note: advection
// selects one implementation at step entry instead of branching inline.
type Integrator interface {
	Advect(ctx context.Context, cf CurrentField, p *Particle, refLon, refLat, depthM, simDay, deltaDays float64) AdvectResult
}

// EulerIntegrator implements the single-sample forward-Euler step of
// spec.md §4.5.2.
type EulerIntegrator struct{}

func (EulerIntegrator) Advect(ctx context.Context, cf CurrentField, p *Particle, refLon, refLat, depthM, simDay, deltaDays float64) AdvectResult {
	lon, lat := geo.FromLocalPlane(p.X, p.Y, refLon, refLat)
	v := cf.GetVelocity(ctx, lon, lat, depthM, simDay)
	if !v.Found {
		return AdvectResult{X: p.X, Y: p.Y, Ok: false}
	}
	x := p.X + v.U*KUPS*deltaDays
	y := p.Y + v.V*KUPS*deltaDays
	return AdvectResult{X: x, Y: y, U: v.U, V: v.V, Ok: true}
}

// RK4Integrator implements the adaptive sub-stepped Runge-Kutta-4 scheme
// of spec.md §4.5.2. When the first sample of any sub-step lands on a
// land cell the whole step fails and the caller should retry with Euler.
type RK4Integrator struct {
	Cfg RK4Config
}

func (r RK4Integrator) Advect(ctx context.Context, cf CurrentField, p *Particle, refLon, refLat, depthM, simDay, deltaDays float64) AdvectResult {
	x, y := p.X, p.Y
	t := simDay
	var hFixed float64
	if !r.Cfg.Adaptive {
		hFixed = math.Min(deltaDays, r.Cfg.MaxStep)
		if hFixed <= 0 {
			hFixed = deltaDays
		}
	}

	sumU, sumV, nSub := 0.0, 0.0, 0

	remaining := deltaDays
	for remaining > 1e-12 {
		var h float64
		if r.Cfg.Adaptive {
			speed := math.Hypot(p.U, p.V)
			h = clamp(1/(speed+1e-3)*r.Cfg.TimeStepSafety, r.Cfg.MinStep, r.Cfg.MaxStep)
		} else {
			h = hFixed
		}
		if h > remaining {
			h = remaining
		}

		lon1, lat1 := geo.FromLocalPlane(x, y, refLon, refLat)
		k1v := cf.GetVelocity(ctx, lon1, lat1, depthM, t)
		if !k1v.Found {
			return AdvectResult{X: p.X, Y: p.Y, Ok: false}
		}
		k1u, k1vv := k1v.U, k1v.V

		midX1, midY1 := x+k1u*KUPS*h/2, y+k1vv*KUPS*h/2
		lon2, lat2 := geo.FromLocalPlane(midX1, midY1, refLon, refLat)
		k2v := cf.GetVelocity(ctx, lon2, lat2, depthM, t+h/2)
		k2u, k2vv := k1u, k1vv
		if k2v.Found {
			k2u, k2vv = k2v.U, k2v.V
		}

		midX2, midY2 := x+k2u*KUPS*h/2, y+k2vv*KUPS*h/2
		lon3, lat3 := geo.FromLocalPlane(midX2, midY2, refLon, refLat)
		k3v := cf.GetVelocity(ctx, lon3, lat3, depthM, t+h/2)
		k3u, k3vv := k1u, k1vv
		if k3v.Found {
			k3u, k3vv = k3v.U, k3v.V
		}

		endX, endY := x+k3u*KUPS*h, y+k3vv*KUPS*h
		lon4, lat4 := geo.FromLocalPlane(endX, endY, refLon, refLat)
		k4v := cf.GetVelocity(ctx, lon4, lat4, depthM, t+h)
		k4u, k4vv := k1u, k1vv
		if k4v.Found {
			k4u, k4vv = k4v.U, k4v.V
		}

		avgU := (k1u + 2*k2u + 2*k3u + k4u) / 6
		avgV := (k1vv + 2*k2vv + 2*k3vv + k4vv) / 6
		x += h * avgU * KUPS
		y += h * avgV * KUPS

		sumU += avgU
		sumV += avgV
		nSub++
		remaining -= h
		t += h
	}

	if nSub == 0 {
		return AdvectResult{X: p.X, Y: p.Y, Ok: false}
	}
	return AdvectResult{X: x, Y: y, U: sumU / float64(nSub), V: sumV / float64(nSub), Ok: true}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
