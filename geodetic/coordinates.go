package geodetic

import "math"

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Coordinates converts between geodetic and ECEF positions on a given
// ellipsoid. Both directions are pure functions; NaN and Inf inputs flow
// through to the outputs instead of signaling errors.
type Coordinates struct {
	ellipsoid Ellipsoid
}

// NewCoordinates builds a converter for the given ellipsoid. A nil ellipsoid
// defaults to WGS84.
func NewCoordinates(ellipsoid *Ellipsoid) Coordinates {
	if ellipsoid == nil {
		wgs := WGS84()
		return Coordinates{ellipsoid: wgs}
	}
	return Coordinates{ellipsoid: *ellipsoid}
}

// Ellipsoid returns the ellipsoid the converter was built with.
func (c Coordinates) Ellipsoid() Ellipsoid {
	return c.ellipsoid
}

// ToECEF converts a geodetic point to ECEF meters using the closed-form
// transform.
func (c Coordinates) ToECEF(p Point) Cartesian {
	a := c.ellipsoid.SemiMajorAxis
	e2 := c.ellipsoid.FirstEccentricitySquared()

	lon := p.Lon * degToRad
	lat := p.Lat * degToRad
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)

	// Prime vertical radius of curvature.
	n := a / math.Sqrt(1-e2*sinLat*sinLat)

	return Cartesian{
		X: (n + p.Alt) * cosLat * math.Cos(lon),
		Y: (n + p.Alt) * cosLat * math.Sin(lon),
		Z: (n*(1-e2) + p.Alt) * sinLat,
	}
}

// ToGeodetic converts an ECEF position back to geodetic coordinates using
// Bowring's method, iterated to convergence. The round trip
// ToGeodetic(ToECEF(p)) holds to within floating-point tolerance for
// latitudes inside (-90, 90) on any ellipsoid with flattening in (0, 1).
func (c Coordinates) ToGeodetic(p Cartesian) Point {
	a := c.ellipsoid.SemiMajorAxis
	b := c.ellipsoid.SemiMinorAxis()
	e2 := c.ellipsoid.FirstEccentricitySquared()
	ep2 := c.ellipsoid.SecondEccentricitySquared()

	dist := math.Hypot(p.X, p.Y)
	lon := math.Atan2(p.Y, p.X)

	if dist == 0 {
		// On the polar axis the longitude is arbitrary.
		lat := math.Copysign(math.Pi/2, p.Z)
		return Point{Lon: lon * radToDeg, Lat: lat * radToDeg, Alt: math.Abs(p.Z) - b}
	}

	// Bowring's method: seed the parametric latitude, then repeat the update
	// until the latitude stabilizes. Near-spherical ellipsoids settle after a
	// single step; strongly flattened ones need a few more.
	theta := math.Atan2(p.Z*a, dist*b)
	var lat float64
	for i := 0; i < 64; i++ {
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		next := math.Atan2(p.Z+ep2*b*sinTheta*sinTheta*sinTheta,
			dist-e2*a*cosTheta*cosTheta*cosTheta)
		if math.Abs(next-lat) < 1e-12 {
			lat = next
			break
		}
		lat = next
		theta = math.Atan2(b*math.Sin(lat), a*math.Cos(lat))
	}

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	n := a / math.Sqrt(1-e2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = dist/cosLat - n
	} else {
		alt = p.Z/sinLat - n*(1-e2)
	}

	return Point{Lon: lon * radToDeg, Lat: lat * radToDeg, Alt: alt}
}
