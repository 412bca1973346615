// Package geo holds small geographic helpers shared by the current and
// diffusivity field services and the particle engine: Haversine distance
// and the local tangent-plane projection particle positions are tracked in.
package geo

import "math"

// EarthRadiusM is the mean radius of the earth, in metres.
const EarthRadiusM = 6371000.0

// LonScaleKm and LatScaleKm convert degrees to kilometres at mid latitudes,
// matching the reference grid's local-plane convention.
const (
	LonScaleKm = 88.8
	LatScaleKm = 111.0
)

// HaversineKm returns the great-circle distance between two lon/lat points,
// in kilometres.
func HaversineKm(lon1, lat1, lon2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c / 1000
}

// ToLocalPlane converts an absolute lon/lat to local-plane kilometres
// relative to a reference point (lon0, lat0).
func ToLocalPlane(lon, lat, lon0, lat0 float64) (x, y float64) {
	x = (lon - lon0) * LonScaleKm
	y = (lat - lat0) * LatScaleKm
	return x, y
}

// FromLocalPlane converts local-plane kilometres back to absolute lon/lat.
func FromLocalPlane(x, y, lon0, lat0 float64) (lon, lat float64) {
	lon = lon0 + x/LonScaleKm
	lat = lat0 + y/LatScaleKm
	return lon, lat
}
