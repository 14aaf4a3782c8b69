package rtree

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// InverseDistanceWeighting interpolates a value at every coordinate row from
// the k nearest stored entries, weighted by 1/d^p on the geodesic distance.
// A neighbor at distance zero short-circuits to its stored value. When
// radius is positive, neighbors farther than radius are ignored. Rows with
// no usable neighbor yield NaN. Returns the interpolated values and the
// number of neighbors used per row.
func (t *RTree) InverseDistanceWeighting(coordinates [][]float64, radius float64,
	k, p int, within bool, numThreads int) ([]float64, []int, error) {
	for _, row := range coordinates {
		if len(row) != 2 && len(row) != 3 {
			return nil, nil, invalidArgumentf(
				"coordinates must be a matrix (n, 2) to add points defined by " +
					"their longitudes and latitudes or a matrix (n, 3) to add " +
					"points defined by their longitudes, latitudes and altitudes")
		}
	}

	n := len(coordinates)
	values := make([]float64, n)
	neighbors := make([]int, n)

	err := dispatch(func(start, stop int) error {
		for ix := start; ix < stop; ix++ {
			point := pointFromRow(coordinates[ix])

			var nearest []Neighbor
			if within {
				nearest = t.QueryWithin(point, k)
			} else {
				nearest = t.Query(point, k)
			}

			values[ix], neighbors[ix] = idw(nearest, radius, p)
		}
		return nil
	}, n, numThreads)
	if err != nil {
		return nil, nil, err
	}
	return values, neighbors, nil
}

// idw reduces one neighbor set to an inverse-distance-weighted value.
func idw(nearest []Neighbor, radius float64, p int) (float64, int) {
	total := 0.0
	sum := 0.0
	used := 0
	for _, nb := range nearest {
		if nb.Distance == 0 {
			// The query point sits on a stored entry.
			return nb.Value, len(nearest)
		}
		if radius > 0 && nb.Distance > radius {
			continue
		}
		w := 1 / math.Pow(nb.Distance, float64(p))
		total += w
		sum += w * nb.Value
		used++
	}
	if used == 0 {
		return math.NaN(), 0
	}
	return sum / total, used
}

// RBFKernel selects the radial basis function used to build the kernel
// matrix.
type RBFKernel int

const (
	Multiquadric RBFKernel = iota
	InverseMultiquadric
	Gaussian
	Linear
	Cubic
	Quintic
	ThinPlate
)

// RBFOptions parameterizes RadialBasisFunction. A zero Epsilon defaults to
// the mean pairwise distance between the neighbor nodes of each query.
// Smooth relaxes exact interpolation by loading the kernel diagonal.
type RBFOptions struct {
	Kernel  RBFKernel
	Epsilon float64
	Smooth  float64
}

func (k RBFKernel) evaluate(r, epsilon float64) float64 {
	switch k {
	case Multiquadric:
		re := r / epsilon
		return math.Sqrt(re*re + 1)
	case InverseMultiquadric:
		re := r / epsilon
		return 1 / math.Sqrt(re*re+1)
	case Gaussian:
		re := r / epsilon
		return math.Exp(-re * re)
	case Linear:
		return r
	case Cubic:
		return r * r * r
	case Quintic:
		return r * r * r * r * r
	case ThinPlate:
		if r == 0 {
			return 0
		}
		return r * r * math.Log(r)
	default:
		panic("unknown radial basis function")
	}
}

// RadialBasisFunction interpolates a value at every coordinate row by
// fitting a radial basis function through the k nearest stored entries in
// ECEF space and evaluating it at the query point. Rows with no usable
// neighbor, or whose kernel system cannot be solved, yield NaN. Returns the
// interpolated values and the number of neighbors used per row.
func (t *RTree) RadialBasisFunction(coordinates [][]float64, opts RBFOptions,
	k int, within bool, numThreads int) ([]float64, []int, error) {
	for _, row := range coordinates {
		if len(row) != 2 && len(row) != 3 {
			return nil, nil, invalidArgumentf(
				"coordinates must be a matrix (n, 2) to add points defined by " +
					"their longitudes and latitudes or a matrix (n, 3) to add " +
					"points defined by their longitudes, latitudes and altitudes")
		}
	}

	n := len(coordinates)
	values := make([]float64, n)
	neighbors := make([]int, n)

	err := dispatch(func(start, stop int) error {
		for ix := start; ix < stop; ix++ {
			q := t.toEntry(pointFromRow(coordinates[ix]))
			nearest := t.neighborEntries(q, k, within)
			values[ix], neighbors[ix] = rbf(q, nearest, opts)
		}
		return nil
	}, n, numThreads)
	if err != nil {
		return nil, nil, err
	}
	return values, neighbors, nil
}

func euclidean(a, b entry) float64 {
	return math.Sqrt(a.Distance(b))
}

// rbf solves the kernel system over one neighbor set and evaluates the
// fitted function at q.
func rbf(q entry, nearest []entry, opts RBFOptions) (float64, int) {
	m := len(nearest)
	if m == 0 {
		return math.NaN(), 0
	}

	// Pairwise node distances drive both the kernel matrix and the default
	// epsilon.
	dists := make([]float64, m*m)
	sum := 0.0
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			d := euclidean(nearest[i], nearest[j])
			dists[i*m+j] = d
			dists[j*m+i] = d
			sum += d
		}
	}
	epsilon := opts.Epsilon
	if epsilon == 0 && m > 1 {
		epsilon = sum / float64(m*(m-1)/2)
	}
	if epsilon == 0 {
		epsilon = 1
	}

	kernel := make([]float64, m*m)
	for i := range dists {
		kernel[i] = opts.Kernel.evaluate(dists[i], epsilon)
	}
	for i := 0; i < m; i++ {
		kernel[i*m+i] = opts.Kernel.evaluate(0, epsilon) - opts.Smooth
	}

	rhs := make([]float64, m)
	for i, e := range nearest {
		rhs[i] = e.Value
	}

	a := mat.NewDense(m, m, kernel)
	b := mat.NewVecDense(m, rhs)

	var qr mat.QR
	qr.Factorize(a)
	weights := mat.NewDense(m, 1, nil)
	if err := qr.SolveTo(weights, false, b); err != nil {
		// Load the diagonal and retry once before giving up on the row.
		for i := 0; i < m; i++ {
			a.Set(i, i, a.At(i, i)+1e-8)
		}
		qr.Factorize(a)
		if err := qr.SolveTo(weights, false, b); err != nil {
			return math.NaN(), m
		}
	}

	value := 0.0
	for i, e := range nearest {
		value += weights.At(i, 0) * opts.Kernel.evaluate(euclidean(q, e), epsilon)
	}
	return value, m
}
