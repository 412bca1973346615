package engine

import "context"

// uniformField is a CurrentField fake returning the same (u, v) everywhere,
// used for the Euler/RK4 displacement scenarios of spec.md §8.
type uniformField struct {
	u, v    float64
	depths  []float64
	ocean   func(lon, lat float64) bool
}

func (f *uniformField) GetVelocity(ctx context.Context, lon, lat, depthM, simDay float64) VelocityResult {
	if f.ocean != nil && !f.ocean(lon, lat) {
		return VelocityResult{Found: false}
	}
	return VelocityResult{U: f.u, V: f.v, Found: true, ActualDepth: depthM}
}

func (f *uniformField) GetVelocitiesBatch(ctx context.Context, lons, lats []float64, depthM, simDay float64) []VelocityResult {
	out := make([]VelocityResult, len(lons))
	for i := range lons {
		out[i] = f.GetVelocity(ctx, lons[i], lats[i], depthM, simDay)
	}
	return out
}

func (f *uniformField) IsOcean(ctx context.Context, lon, lat, depthM, simDay float64) bool {
	return f.GetVelocity(ctx, lon, lat, depthM, simDay).Found
}

func (f *uniformField) FindNearestOceanCell(ctx context.Context, lon, lat, depthM, simDay float64, maxRadiusCells int) (OceanCell, bool) {
	if f.ocean == nil || f.ocean(lon, lat) {
		return OceanCell{Lon: lon, Lat: lat}, true
	}
	return OceanCell{}, false
}

func (f *uniformField) AvailableDepths() []float64 {
	if f.depths != nil {
		return f.depths
	}
	return []float64{0, 50, 100, 200, 500, 1000}
}

// fixedDiffusivity is a DiffusivityField fake returning a fixed K everywhere.
type fixedDiffusivity struct {
	k     float64
	found bool
}

func (d fixedDiffusivity) GetDiffusivity(ctx context.Context, lon, lat, simDay float64) DiffusivityResult {
	return DiffusivityResult{K: d.k, Found: d.found}
}
