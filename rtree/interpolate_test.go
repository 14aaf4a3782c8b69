package rtree

import (
	"math"
	"testing"

	"web/geotree/geodetic"
)

func TestIDWExactHit(t *testing.T) {
	tree := gridFixture(t, 10, 10)

	// Querying at a stored node returns the stored value.
	values, neighbors, err := tree.InverseDistanceWeighting(
		[][]float64{{30, 40}}, 0, 8, 2, false, 1)
	if err != nil {
		t.Fatalf("InverseDistanceWeighting failed: %v", err)
	}
	if neighbors[0] == 0 {
		t.Fatal("Expected neighbors at a stored node")
	}
	if !almostEqual(values[0], 10*30+40, 1e-6) {
		t.Errorf("Expected the stored value %f at an exact hit, got %f",
			10.0*30+40, values[0])
	}
}

func TestIDWBetweenNodes(t *testing.T) {
	tree := gridFixture(t, 10, 10)

	// Between nodes the result is a convex combination of neighbor values.
	values, neighbors, err := tree.InverseDistanceWeighting(
		[][]float64{{33, 44}}, 0, 4, 2, false, 1)
	if err != nil {
		t.Fatalf("InverseDistanceWeighting failed: %v", err)
	}
	if neighbors[0] != 4 {
		t.Errorf("Expected 4 neighbors, got %d", neighbors[0])
	}
	// Neighbor values are 10*lon+lat for lon in {30,40}, lat in {40,50}.
	if values[0] < 340 || values[0] > 450 {
		t.Errorf("Expected a value between the neighbor extremes, got %f", values[0])
	}
}

func TestIDWRadiusFilter(t *testing.T) {
	tree := New(nil)
	if err := tree.Packing([][]float64{{0, 0}, {50, 50}}, []float64{1, 1000}); err != nil {
		t.Fatalf("Packing failed: %v", err)
	}

	// A 1000 km radius keeps only the near node.
	values, neighbors, err := tree.InverseDistanceWeighting(
		[][]float64{{0.5, 0.5}}, 1e6, 2, 2, false, 1)
	if err != nil {
		t.Fatalf("InverseDistanceWeighting failed: %v", err)
	}
	if neighbors[0] != 1 {
		t.Errorf("Expected 1 neighbor inside the radius, got %d", neighbors[0])
	}
	if !almostEqual(values[0], 1, 1e-9) {
		t.Errorf("Expected only the near value to contribute, got %f", values[0])
	}

	// No neighbor inside the radius yields NaN.
	values, neighbors, err = tree.InverseDistanceWeighting(
		[][]float64{{-90, -45}}, 1e6, 2, 2, false, 1)
	if err != nil {
		t.Fatalf("InverseDistanceWeighting failed: %v", err)
	}
	if neighbors[0] != 0 || !math.IsNaN(values[0]) {
		t.Errorf("Expected NaN with 0 neighbors, got %f with %d", values[0], neighbors[0])
	}
}

func TestIDWThreadInvariance(t *testing.T) {
	tree := gridFixture(t, 15, 15)
	coordinates, _ := GenerateTestPoints(64, geodetic.Box{
		Min: geodetic.Point{Lon: -170, Lat: -70},
		Max: geodetic.Point{Lon: 170, Lat: 70},
	}, 42)

	v1, n1, err := tree.InverseDistanceWeighting(coordinates, 0, 8, 2, false, 1)
	if err != nil {
		t.Fatalf("Sequential IDW failed: %v", err)
	}
	v0, n0, err := tree.InverseDistanceWeighting(coordinates, 0, 8, 2, false, 0)
	if err != nil {
		t.Fatalf("Parallel IDW failed: %v", err)
	}
	for i := range v1 {
		if v1[i] != v0[i] || n1[i] != n0[i] {
			t.Fatalf("Thread count changed IDW output at %d: %f/%d vs %f/%d",
				i, v1[i], n1[i], v0[i], n0[i])
		}
	}
}

func TestRBFReproducesNodes(t *testing.T) {
	tree := gridFixture(t, 10, 10)

	// With smooth=0 the fitted surface passes through the nodes.
	opts := RBFOptions{Kernel: InverseMultiquadric, Epsilon: 75000}
	values, neighbors, err := tree.RadialBasisFunction(
		[][]float64{{30, 40}}, opts, 9, false, 1)
	if err != nil {
		t.Fatalf("RadialBasisFunction failed: %v", err)
	}
	if neighbors[0] != 9 {
		t.Errorf("Expected 9 neighbors, got %d", neighbors[0])
	}
	if !almostEqual(values[0], 10*30+40, 1e-3) {
		t.Errorf("Expected RBF to reproduce the node value %f, got %f",
			10.0*30+40, values[0])
	}
}

func TestRBFKernels(t *testing.T) {
	tree := gridFixture(t, 10, 10)
	kernels := []RBFKernel{
		Multiquadric, InverseMultiquadric, Gaussian, Linear, Cubic, Quintic, ThinPlate,
	}
	for _, kernel := range kernels {
		opts := RBFOptions{Kernel: kernel, Epsilon: 75000}
		values, _, err := tree.RadialBasisFunction(
			[][]float64{{33, 44}}, opts, 8, false, 1)
		if err != nil {
			t.Fatalf("RadialBasisFunction with kernel %d failed: %v", kernel, err)
		}
		// Interpolated value stays in the broad range of the fixture values.
		if math.IsInf(values[0], 0) {
			t.Errorf("Kernel %d produced an infinite value", kernel)
		}
	}
}

func TestRBFThreadInvariance(t *testing.T) {
	tree := gridFixture(t, 15, 15)
	coordinates, _ := GenerateTestPoints(32, geodetic.Box{
		Min: geodetic.Point{Lon: -170, Lat: -70},
		Max: geodetic.Point{Lon: 170, Lat: 70},
	}, 7)

	opts := RBFOptions{Kernel: Multiquadric}
	v1, _, err := tree.RadialBasisFunction(coordinates, opts, 8, false, 1)
	if err != nil {
		t.Fatalf("Sequential RBF failed: %v", err)
	}
	v4, _, err := tree.RadialBasisFunction(coordinates, opts, 8, false, 4)
	if err != nil {
		t.Fatalf("Parallel RBF failed: %v", err)
	}
	for i := range v1 {
		if v1[i] != v4[i] && !(math.IsNaN(v1[i]) && math.IsNaN(v4[i])) {
			t.Fatalf("Thread count changed RBF output at %d: %f vs %f", i, v1[i], v4[i])
		}
	}
}

func TestInterpolationOnEmptyIndex(t *testing.T) {
	tree := New(nil)
	values, neighbors, err := tree.InverseDistanceWeighting(
		[][]float64{{0, 0}}, 0, 4, 2, false, 1)
	if err != nil {
		t.Fatalf("InverseDistanceWeighting failed: %v", err)
	}
	if neighbors[0] != 0 || !math.IsNaN(values[0]) {
		t.Errorf("Expected NaN on empty index, got %f with %d neighbors",
			values[0], neighbors[0])
	}
}
