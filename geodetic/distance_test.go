package geodetic

import (
	"math"
	"testing"
)

func TestHaversineZero(t *testing.T) {
	h := NewHaversine(nil)
	p := Point{Lon: 2.35, Lat: 48.85}
	if d := h.Distance(p, p); d != 0 {
		t.Errorf("Expected zero distance between identical points, got %f", d)
	}
}

func TestHaversineQuarterMeridian(t *testing.T) {
	h := NewHaversine(nil)
	// Equator to pole along a meridian is a quarter of the circumference.
	d := h.Distance(Point{Lon: 0, Lat: 0}, Point{Lon: 0, Lat: 90})
	expected := math.Pi / 2 * WGS84().SemiMajorAxis
	if !almostEqual(d, expected, 1e-6) {
		t.Errorf("Expected quarter meridian %f, got %f", expected, d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	h := NewHaversine(nil)
	a := Point{Lon: -0.13, Lat: 51.51}
	b := Point{Lon: 2.35, Lat: 48.85}
	if !almostEqual(h.Distance(a, b), h.Distance(b, a), 1e-9) {
		t.Error("Expected distance to be symmetric")
	}
	// London to Paris is roughly 344 km on a sphere.
	if d := h.Distance(a, b); d < 330000 || d > 360000 {
		t.Errorf("Expected London-Paris around 344 km, got %f m", d)
	}
}

func TestHaversineIgnoresAltitude(t *testing.T) {
	h := NewHaversine(nil)
	a := Point{Lon: 10, Lat: 20, Alt: 0}
	b := Point{Lon: 10, Lat: 20, Alt: 5000}
	if d := h.Distance(a, b); d != 0 {
		t.Errorf("Expected altitude to be ignored, got %f", d)
	}
}
