package engine

import (
	"context"

	"github.com/oceantracer/driftmap/currentfield"
	"github.com/oceantracer/driftmap/diffusivityfield"
)

// CurrentFieldAdapter narrows a *currentfield.Service to the CurrentField
// capability interface. The composition root constructs one of these
// around the concrete service so the engine never imports currentfield
// directly (spec.md §9's capability-injection Design Note).
type CurrentFieldAdapter struct {
	Service *currentfield.Service
}

func (a CurrentFieldAdapter) GetVelocity(ctx context.Context, lon, lat, depthM, simDay float64) VelocityResult {
	r := a.Service.GetVelocity(ctx, currentfield.Position{Lon: lon, Lat: lat}, depthM, simDay)
	return VelocityResult{U: r.U, V: r.V, Found: r.Found, ActualDepth: r.ActualDepth}
}

func (a CurrentFieldAdapter) GetVelocitiesBatch(ctx context.Context, lons, lats []float64, depthM, simDay float64) []VelocityResult {
	positions := make([]currentfield.Position, len(lons))
	for i := range lons {
		positions[i] = currentfield.Position{Lon: lons[i], Lat: lats[i]}
	}
	results := a.Service.GetVelocitiesBatch(ctx, positions, depthM, simDay)
	out := make([]VelocityResult, len(results))
	for i, r := range results {
		out[i] = VelocityResult{U: r.U, V: r.V, Found: r.Found, ActualDepth: r.ActualDepth}
	}
	return out
}

func (a CurrentFieldAdapter) IsOcean(ctx context.Context, lon, lat, depthM, simDay float64) bool {
	return a.Service.IsOcean(ctx, currentfield.Position{Lon: lon, Lat: lat}, depthM, simDay)
}

func (a CurrentFieldAdapter) FindNearestOceanCell(ctx context.Context, lon, lat, depthM, simDay float64, maxRadiusCells int) (OceanCell, bool) {
	c, ok := a.Service.FindNearestOceanCell(ctx, currentfield.Position{Lon: lon, Lat: lat}, depthM, simDay, maxRadiusCells)
	if !ok {
		return OceanCell{}, false
	}
	return OceanCell{Lon: c.Lon, Lat: c.Lat, I: c.I, J: c.J, ActualDepth: c.ActualDepth}, true
}

func (a CurrentFieldAdapter) AvailableDepths() []float64 {
	return a.Service.AvailableDepths()
}

// DiffusivityFieldAdapter narrows a *diffusivityfield.Service to the
// DiffusivityField capability interface.
type DiffusivityFieldAdapter struct {
	Service *diffusivityfield.Service
}

func (a DiffusivityFieldAdapter) GetDiffusivity(ctx context.Context, lon, lat, simDay float64) DiffusivityResult {
	r := a.Service.GetDiffusivity(ctx, lon, lat, simDay)
	return DiffusivityResult{K: r.K, Found: r.Found}
}
