package diffusivityfield

import (
	"math"

	"github.com/oceantracer/driftmap/internal/geo"
)

// bucketGridSize is the fixed bucket-grid resolution of spec.md §4.4
// ("a coarse fixed-size (~50x50) bucket grid").
const bucketGridSize = 50

// bucketIndex is a coarse spatial index over the coordinate grid's
// bounding box, built once per Coords lifetime and reused across day
// evictions exactly like currentfield's KD-tree.
type bucketIndex struct {
	minLon, maxLon float64
	minLat, maxLat float64
	buckets        [][]int // flattened bucketGridSize x bucketGridSize, each holding cell indices
}

func buildBucketIndex(c *Coords) *bucketIndex {
	bi := &bucketIndex{
		minLon: math.MaxFloat64, maxLon: -math.MaxFloat64,
		minLat: math.MaxFloat64, maxLat: -math.MaxFloat64,
	}
	for i := range c.Lon {
		lon, lat := float64(c.Lon[i]), float64(c.Lat[i])
		bi.minLon, bi.maxLon = math.Min(bi.minLon, lon), math.Max(bi.maxLon, lon)
		bi.minLat, bi.maxLat = math.Min(bi.minLat, lat), math.Max(bi.maxLat, lat)
	}
	bi.buckets = make([][]int, bucketGridSize*bucketGridSize)
	for i := range c.Lon {
		bx, by := bi.bucketCoords(float64(c.Lon[i]), float64(c.Lat[i]))
		b := by*bucketGridSize + bx
		bi.buckets[b] = append(bi.buckets[b], i)
	}
	return bi
}

func (bi *bucketIndex) bucketCoords(lon, lat float64) (int, int) {
	lonSpan := bi.maxLon - bi.minLon
	latSpan := bi.maxLat - bi.minLat
	if lonSpan <= 0 {
		lonSpan = 1
	}
	if latSpan <= 0 {
		latSpan = 1
	}
	bx := int((lon - bi.minLon) / lonSpan * bucketGridSize)
	by := int((lat - bi.minLat) / latSpan * bucketGridSize)
	if bx < 0 {
		bx = 0
	}
	if bx >= bucketGridSize {
		bx = bucketGridSize - 1
	}
	if by < 0 {
		by = 0
	}
	if by >= bucketGridSize {
		by = bucketGridSize - 1
	}
	return bx, by
}

// nearest returns the index of the cell (in c's coordinate arrays) closest
// to (lon, lat), examining the target bucket and its 8 neighbours.
func (bi *bucketIndex) nearest(c *Coords, lon, lat float64) (int, bool) {
	bx, by := bi.bucketCoords(lon, lat)
	best, bestDist := -1, math.MaxFloat64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := bx+dx, by+dy
			if x < 0 || x >= bucketGridSize || y < 0 || y >= bucketGridSize {
				continue
			}
			for _, idx := range bi.buckets[y*bucketGridSize+x] {
				d := geo.HaversineKm(lon, lat, float64(c.Lon[idx]), float64(c.Lat[idx]))
				if d < bestDist {
					best, bestDist = idx, d
				}
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
