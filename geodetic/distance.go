package geodetic

import "math"

// Haversine is a great-circle distance strategy evaluated on geodetic
// points. It models the Earth as a sphere whose radius is chosen at
// construction, normally the ellipsoid's semi-major axis.
type Haversine struct {
	Radius float64
}

// NewHaversine builds the distance strategy for the given ellipsoid. A nil
// ellipsoid defaults to WGS84.
func NewHaversine(ellipsoid *Ellipsoid) Haversine {
	if ellipsoid == nil {
		return Haversine{Radius: WGS84().SemiMajorAxis}
	}
	return Haversine{Radius: ellipsoid.SemiMajorAxis}
}

// Distance returns the great-circle distance between two geodetic points in
// meters. Altitudes are ignored.
func (h Haversine) Distance(a, b Point) float64 {
	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return h.Radius * 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}
