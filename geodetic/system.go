package geodetic

import (
	"fmt"
	"math"
)

// Ellipsoid describes a reference ellipsoid by its semi-major axis (meters)
// and flattening. The zero value is not useful; use WGS84 or NewEllipsoid.
// All derived quantities are recomputed from these two fields on every call.
type Ellipsoid struct {
	SemiMajorAxis float64
	Flattening    float64
}

// WGS84 returns the World Geodetic System 1984 ellipsoid.
func WGS84() Ellipsoid {
	return Ellipsoid{
		SemiMajorAxis: 6378137.0,
		Flattening:    1 / 298.257223563,
	}
}

// NewEllipsoid builds an ellipsoid from its semi-major axis in meters and
// its flattening.
func NewEllipsoid(semiMajorAxis, flattening float64) Ellipsoid {
	return Ellipsoid{SemiMajorAxis: semiMajorAxis, Flattening: flattening}
}

// SemiMinorAxis returns b = a*(1-f), the polar radius in meters.
func (e Ellipsoid) SemiMinorAxis() float64 {
	return e.SemiMajorAxis * (1 - e.Flattening)
}

// FirstEccentricitySquared returns (a²-b²)/a².
func (e Ellipsoid) FirstEccentricitySquared() float64 {
	a2 := e.SemiMajorAxis * e.SemiMajorAxis
	b := e.SemiMinorAxis()
	return (a2 - b*b) / a2
}

// SecondEccentricitySquared returns (a²-b²)/b².
func (e Ellipsoid) SecondEccentricitySquared() float64 {
	b2 := e.SemiMinorAxis() * e.SemiMinorAxis()
	return (e.SemiMajorAxis*e.SemiMajorAxis - b2) / b2
}

// EquatorialCircumference returns 2πa, or 2πb when semiMajorAxis is false.
func (e Ellipsoid) EquatorialCircumference(semiMajorAxis bool) float64 {
	if semiMajorAxis {
		return 2 * math.Pi * e.SemiMajorAxis
	}
	return 2 * math.Pi * e.SemiMinorAxis()
}

// PolarRadiusOfCurvature returns a²/b.
func (e Ellipsoid) PolarRadiusOfCurvature() float64 {
	return e.SemiMajorAxis * e.SemiMajorAxis / e.SemiMinorAxis()
}

// EquatorialRadiusOfCurvature returns b²/a, the meridional radius of
// curvature at the equator.
func (e Ellipsoid) EquatorialRadiusOfCurvature() float64 {
	b := e.SemiMinorAxis()
	return b * b / e.SemiMajorAxis
}

// AxisRatio returns b/a.
func (e Ellipsoid) AxisRatio() float64 {
	return e.SemiMinorAxis() / e.SemiMajorAxis
}

// LinearEccentricity returns sqrt(a²-b²).
func (e Ellipsoid) LinearEccentricity() float64 {
	b := e.SemiMinorAxis()
	return math.Sqrt(e.SemiMajorAxis*e.SemiMajorAxis - b*b)
}

// MeanRadius returns R1 = (2a+b)/3.
func (e Ellipsoid) MeanRadius() float64 {
	return (2*e.SemiMajorAxis + e.SemiMinorAxis()) / 3
}

// AuthalicRadius returns R2, the radius of the sphere with the same surface
// area as the ellipsoid.
func (e Ellipsoid) AuthalicRadius() float64 {
	a := e.SemiMajorAxis
	b := e.SemiMinorAxis()
	le := e.LinearEccentricity()
	return math.Sqrt((a*a + ((a * b * b) / le * math.Log((a+le)/b))) * 0.5)
}

// VolumetricRadius returns R3, the radius of the sphere with the same volume
// as the ellipsoid.
func (e Ellipsoid) VolumetricRadius() float64 {
	return math.Cbrt(e.SemiMajorAxis * e.SemiMajorAxis * e.SemiMinorAxis())
}

// Equal reports whether two ellipsoids have identical parameters.
func (e Ellipsoid) Equal(other Ellipsoid) bool {
	return e.SemiMajorAxis == other.SemiMajorAxis && e.Flattening == other.Flattening
}

func (e Ellipsoid) String() string {
	return fmt.Sprintf("Ellipsoid(a=%.9g, b=%.9g, f=%.9g)",
		e.SemiMajorAxis, e.SemiMinorAxis(), e.Flattening)
}
