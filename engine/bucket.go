package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oceantracer/driftmap/internal/geo"
)

// depthBucket groups the lon/lat of every active particle whose nearest
// discrete depth level (from CurrentField.AvailableDepths) is depthM.
type depthBucket struct {
	depthM   float64
	lons     []float64
	lats     []float64
}

// nearestAvailableDepth snaps depthM to the closest entry of depths.
func nearestAvailableDepth(depthM float64, depths []float64) float64 {
	if len(depths) == 0 {
		return depthM
	}
	best, bestDiff := depths[0], absf(depths[0]-depthM)
	for _, d := range depths[1:] {
		if diff := absf(d - depthM); diff < bestDiff {
			best, bestDiff = d, diff
		}
	}
	return best
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// prefetchDepthBuckets partitions the active pool into depth buckets per
// spec.md §4.5.8 and issues one batched velocity query per bucket,
// concurrently across buckets, so the day cache and KD-tree for the
// current simulation day are already resident before the single-threaded
// per-particle pipeline runs. The per-particle pipeline still performs
// its own point queries afterward; this is a warm-up pass only, so a
// failed prefetch (a bucket's batch query returning no results) never
// changes step semantics.
func (e *Engine) prefetchDepthBuckets(ctx context.Context, refLon, refLat, simDay float64) {
	depths := e.currentF.AvailableDepths()
	buckets := map[float64]*depthBucket{}
	for i := range e.particles {
		p := &e.particles[i]
		if !p.Active {
			continue
		}
		depthM := nearestAvailableDepth(p.Depth*1000, depths)
		b, ok := buckets[depthM]
		if !ok {
			b = &depthBucket{depthM: depthM}
			buckets[depthM] = b
		}
		lon, lat := geo.FromLocalPlane(p.X, p.Y, refLon, refLat)
		b.lons = append(b.lons, lon)
		b.lats = append(b.lats, lat)
	}
	if len(buckets) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range buckets {
		b := b
		g.Go(func() error {
			e.currentF.GetVelocitiesBatch(gctx, b.lons, b.lats, b.depthM, simDay)
			return nil
		})
	}
	_ = g.Wait()
}
