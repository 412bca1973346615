package engine

import "context"

// VelocityResult mirrors currentfield.Result without importing the
// currentfield package, so the capability interfaces below stay free of
// any concrete field-service dependency per spec.md §9's "circular
// references ... via a shared global" Design Note.
type VelocityResult struct {
	U, V        float64
	Found       bool
	ActualDepth float64
}

// DiffusivityResult mirrors diffusivityfield.Result.
type DiffusivityResult struct {
	K     float64
	Found bool
}

// OceanCell mirrors currentfield.OceanCell.
type OceanCell struct {
	Lon, Lat    float64
	I, J        int
	ActualDepth float64
}

// CurrentField is the capability interface the engine borrows from
// currentfield.Service (spec.md §4.3). The engine never constructs or
// owns a field service; the composition root injects one.
type CurrentField interface {
	GetVelocity(ctx context.Context, lon, lat, depthM, simDay float64) VelocityResult
	// GetVelocitiesBatch evaluates GetVelocity for parallel lon/lat slices,
	// sharing the day load and depth-index resolution across the batch
	// (spec.md §4.5.8's depth-bucket grouping).
	GetVelocitiesBatch(ctx context.Context, lons, lats []float64, depthM, simDay float64) []VelocityResult
	IsOcean(ctx context.Context, lon, lat, depthM, simDay float64) bool
	FindNearestOceanCell(ctx context.Context, lon, lat, depthM, simDay float64, maxRadiusCells int) (OceanCell, bool)
	AvailableDepths() []float64
}

// DiffusivityField is the capability interface the engine borrows from
// diffusivityfield.Service (spec.md §4.4).
type DiffusivityField interface {
	GetDiffusivity(ctx context.Context, lon, lat, simDay float64) DiffusivityResult
}
