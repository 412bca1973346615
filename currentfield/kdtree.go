package currentfield

import (
	"sort"

	"github.com/oceantracer/driftmap/internal/geo"
)

// cellPoint is one indexed grid cell carried in the KD-tree.
type cellPoint struct {
	I, J  int
	Index int // flat index into the nLat*nLon coordinate arrays
	Lon   float64
	Lat   float64
}

// kdNode is one node of the 2-D KD-tree. Axis alternates lon (0)/lat (1)
// by tree depth, as spec.md §4.3 requires — a plain alternating-axis
// median-split tree, not a bounding-box/widest-axis variant. A generic
// third-party kd-tree (e.g. a variance-driven split) would not reproduce
// this exact construction rule, so this is hand-rolled on top of the
// standard library's sort package; see DESIGN.md.
type kdNode struct {
	point       cellPoint
	axis        int
	left, right *kdNode
}

// kdTree is a read-only, once-built spatial index over a subsampled set of
// grid cells. It is built exactly once per coordinate-array lifetime and
// reused across day evictions, since coordinates are invariant across days.
type kdTree struct {
	root *kdNode
}

// buildKDTree subsamples every second row/column of an nLat x nLon grid of
// (lon, lat) coordinates and builds a 2-D KD-tree over the subsample.
func buildKDTree(nLat, nLon int, lon, lat []float32) *kdTree {
	var points []cellPoint
	for i := 0; i < nLat; i += 2 {
		for j := 0; j < nLon; j += 2 {
			idx := i*nLon + j
			points = append(points, cellPoint{
				I: i, J: j, Index: idx,
				Lon: float64(lon[idx]), Lat: float64(lat[idx]),
			})
		}
	}
	return &kdTree{root: buildKDNode(points, 0)}
}

func buildKDNode(points []cellPoint, depth int) *kdNode {
	if len(points) == 0 {
		return nil
	}
	axis := depth % 2
	sort.Slice(points, func(a, b int) bool {
		if axis == 0 {
			return points[a].Lon < points[b].Lon
		}
		return points[a].Lat < points[b].Lat
	})
	mid := len(points) / 2
	return &kdNode{
		point: points[mid],
		axis:  axis,
		left:  buildKDNode(points[:mid], depth+1),
		right: buildKDNode(points[mid+1:], depth+1),
	}
}

// nearest returns the grid cell closest (by Haversine distance) to
// (lon, lat).
func (t *kdTree) nearest(lon, lat float64) (cellPoint, bool) {
	if t == nil || t.root == nil {
		return cellPoint{}, false
	}
	best := t.root.point
	bestDist := geo.HaversineKm(lon, lat, best.Lon, best.Lat)
	t.root.search(lon, lat, &best, &bestDist)
	return best, true
}

func (n *kdNode) search(lon, lat float64, best *cellPoint, bestDist *float64) {
	if n == nil {
		return
	}
	d := geo.HaversineKm(lon, lat, n.point.Lon, n.point.Lat)
	if d < *bestDist {
		*bestDist = d
		*best = n.point
	}

	var target, planeCoord, nodeCoord float64
	if n.axis == 0 {
		target, nodeCoord = lon, n.point.Lon
	} else {
		target, nodeCoord = lat, n.point.Lat
	}
	planeCoord = target

	var near, far *kdNode
	if planeCoord < nodeCoord {
		near, far = n.left, n.right
	} else {
		near, far = n.right, n.left
	}
	near.search(lon, lat, best, bestDist)

	// Standard plane-cut pruning: only descend into the far side if the
	// splitting plane is closer than the current best distance. The plane
	// distance must never overestimate the true distance to the far
	// side, or the search can discard a branch that holds the real
	// nearest cell. A lat split's plane is a parallel, so the fixed
	// LatScaleKm degree->km factor is exact everywhere. A lon split's
	// plane is a meridian, and degrees of longitude shrink poleward
	// (cos(lat) -> 0), so a fixed scale taken at the reference latitude
	// overestimates the true distance for every cell north of it;
	// Haversine at the query's own latitude tracks that convergence
	// instead of assuming the reference-latitude scale everywhere.
	var planeDistKm float64
	if n.axis == 0 {
		planeDistKm = geo.HaversineKm(lon, lat, nodeCoord, lat)
	} else {
		planeDistKm = abs(planeCoord-nodeCoord) * geo.LatScaleKm
	}
	if planeDistKm < *bestDist {
		far.search(lon, lat, best, bestDist)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
