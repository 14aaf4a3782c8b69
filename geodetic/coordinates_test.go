package geodetic

import (
	"math"
	"math/rand"
	"testing"
)

func TestToECEFKnownPoints(t *testing.T) {
	c := NewCoordinates(nil)

	testCases := []struct {
		point   Point
		expects Cartesian
	}{
		// Equator on the prime meridian sits on the semi-major axis.
		{Point{0, 0, 0}, Cartesian{6378137, 0, 0}},
		// 90E on the equator.
		{Point{90, 0, 0}, Cartesian{0, 6378137, 0}},
		// 10 km above the equator.
		{Point{0, 0, 10000}, Cartesian{6388137, 0, 0}},
	}

	for _, tc := range testCases {
		got := c.ToECEF(tc.point)
		if !almostEqual(got.X, tc.expects.X, 1e-6) ||
			!almostEqual(got.Y, tc.expects.Y, 1e-6) ||
			!almostEqual(got.Z, tc.expects.Z, 1e-6) {
			t.Errorf("ToECEF(%+v) = %+v, expected %+v", tc.point, got, tc.expects)
		}
	}
}

func TestToECEFPole(t *testing.T) {
	c := NewCoordinates(nil)
	got := c.ToECEF(Point{Lon: 0, Lat: 90, Alt: 0})
	if !almostEqual(got.Z, WGS84().SemiMinorAxis(), 1e-6) {
		t.Errorf("Expected Z at the pole to equal the semi-minor axis, got %f", got.Z)
	}
	if math.Abs(got.X) > 1e-6 || math.Abs(got.Y) > 1e-6 {
		t.Errorf("Expected X and Y to vanish at the pole, got (%g, %g)", got.X, got.Y)
	}
}

func TestRoundTrip(t *testing.T) {
	// Round-trip property over the full valid range, from WGS84 up to
	// strongly flattened ellipsoids.
	ellipsoids := []Ellipsoid{
		WGS84(),
		NewEllipsoid(6378137.0, 1/50.0),
		NewEllipsoid(6378137.0, 0.1),
		NewEllipsoid(6378137.0, 0.3),
		NewEllipsoid(6378137.0, 0.9),
	}

	source := rand.NewSource(42)
	r := rand.New(source)

	for _, ellipsoid := range ellipsoids {
		c := NewCoordinates(&ellipsoid)
		for i := 0; i < 2000; i++ {
			p := Point{
				Lon: -180 + r.Float64()*360,
				Lat: -89.9 + r.Float64()*179.8,
				Alt: -1000 + r.Float64()*11000,
			}
			q := c.ToGeodetic(c.ToECEF(p))
			if !almostEqual(p.Lon, q.Lon, 1e-7) ||
				!almostEqual(p.Lat, q.Lat, 1e-7) ||
				!almostEqual(p.Alt, q.Alt, 1e-3) {
				t.Fatalf("Round trip failed on %s for %+v: got %+v", ellipsoid, p, q)
			}
		}
	}
}

func TestRoundTripNearPoles(t *testing.T) {
	c := NewCoordinates(nil)
	for _, lat := range []float64{89.999, -89.999, 89.9, -89.9} {
		p := Point{Lon: 45, Lat: lat, Alt: 100}
		q := c.ToGeodetic(c.ToECEF(p))
		if !almostEqual(p.Lat, q.Lat, 1e-7) || !almostEqual(p.Alt, q.Alt, 1e-3) {
			t.Errorf("Round trip near pole failed for lat=%f: got %+v", lat, q)
		}
	}
}

func TestPolarAxis(t *testing.T) {
	c := NewCoordinates(nil)
	p := c.ToGeodetic(Cartesian{X: 0, Y: 0, Z: WGS84().SemiMinorAxis() + 50})
	if !almostEqual(p.Lat, 90, 1e-9) {
		t.Errorf("Expected latitude 90 on the polar axis, got %f", p.Lat)
	}
	if !almostEqual(p.Alt, 50, 1e-6) {
		t.Errorf("Expected altitude 50 on the polar axis, got %f", p.Alt)
	}
}

func TestNaNPropagation(t *testing.T) {
	c := NewCoordinates(nil)

	out := c.ToECEF(Point{Lon: math.NaN(), Lat: 0, Alt: 0})
	if !math.IsNaN(out.X) || !math.IsNaN(out.Y) {
		t.Errorf("Expected NaN longitude to propagate, got %+v", out)
	}

	back := c.ToGeodetic(Cartesian{X: math.NaN(), Y: 0, Z: 0})
	if !math.IsNaN(back.Lat) || !math.IsNaN(back.Alt) {
		t.Errorf("Expected NaN input to propagate through the inverse, got %+v", back)
	}
}
