package geodetic

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestWGS84DerivedConstants(t *testing.T) {
	wgs := WGS84()

	if !almostEqual(wgs.SemiMinorAxis(), 6356752.314245179, 1e-6) {
		t.Errorf("Expected semi-minor axis 6356752.314245179, got %f", wgs.SemiMinorAxis())
	}
	if !almostEqual(wgs.FirstEccentricitySquared(), 6.69437999014e-3, 1e-12) {
		t.Errorf("Expected e2 6.69437999014e-3, got %g", wgs.FirstEccentricitySquared())
	}
	if !almostEqual(wgs.SecondEccentricitySquared(), 6.73949674228e-3, 1e-12) {
		t.Errorf("Expected e'2 6.73949674228e-3, got %g", wgs.SecondEccentricitySquared())
	}
	if !almostEqual(wgs.EquatorialCircumference(true), 40075016.686, 1e-2) {
		t.Errorf("Expected equatorial circumference 40075016.686, got %f",
			wgs.EquatorialCircumference(true))
	}
	if !almostEqual(wgs.MeanRadius(), 6371008.771, 1e-2) {
		t.Errorf("Expected mean radius 6371008.771, got %f", wgs.MeanRadius())
	}
	if !almostEqual(wgs.AuthalicRadius(), 6371007.181, 1e-2) {
		t.Errorf("Expected authalic radius 6371007.181, got %f", wgs.AuthalicRadius())
	}
	if !almostEqual(wgs.VolumetricRadius(), 6371000.79, 1e-2) {
		t.Errorf("Expected volumetric radius 6371000.79, got %f", wgs.VolumetricRadius())
	}
	if !almostEqual(wgs.AxisRatio(), 0.996647189, 1e-9) {
		t.Errorf("Expected axis ratio 0.996647189, got %f", wgs.AxisRatio())
	}
}

func TestEllipsoidEquality(t *testing.T) {
	if !WGS84().Equal(WGS84()) {
		t.Error("Expected two WGS84 instances to compare equal")
	}
	grs80 := NewEllipsoid(6378137.0, 1/298.257222101)
	if WGS84().Equal(grs80) {
		t.Error("Expected WGS84 and GRS80 to compare different")
	}
}

func TestEllipsoidString(t *testing.T) {
	s := WGS84().String()
	if s == "" {
		t.Error("Expected non-empty string form")
	}
}
