// Package rtree provides a nearest-neighbor spatial index over geodetic
// coordinates. Points are stored in ECEF Cartesian space, where proximity
// search is cheap and isotropic, while reported distances are evaluated on
// the geodetic points with a haversine strategy so they reflect the
// ellipsoidal model rather than straight-line chord length.
package rtree

import (
	"web/geotree/geodetic"
)

// Neighbor is a single query result: the geodesic distance to the query
// point in meters and the stored payload value.
type Neighbor struct {
	Distance float64
	Value    float64
}

// RTree is a spatial index for geodetic points. It owns the coordinate
// transformer, the distance strategy and the underlying Cartesian index;
// storage mechanics are fully delegated.
//
// The container is safe for any number of concurrent readers, but callers
// must not run Packing or Insert concurrently with any in-flight query; no
// internal locking is provided.
type RTree struct {
	coordinates geodetic.Coordinates
	strategy    geodetic.Haversine
	index       cartesianIndex
}

// New creates an empty index on the given ellipsoid. A nil ellipsoid
// defaults to WGS84.
func New(ellipsoid *geodetic.Ellipsoid) *RTree {
	coordinates := geodetic.NewCoordinates(ellipsoid)
	return &RTree{
		coordinates: coordinates,
		strategy:    geodetic.NewHaversine(ellipsoid),
	}
}

// Ellipsoid returns the ellipsoid the index was built on.
func (t *RTree) Ellipsoid() geodetic.Ellipsoid {
	return t.coordinates.Ellipsoid()
}

// Len returns the number of stored entries.
func (t *RTree) Len() int { return t.index.Len() }

// Empty reports whether the index holds no entries.
func (t *RTree) Empty() bool { return t.index.IsEmpty() }

// pointFromRow builds a geodetic point from a coordinate row of 2 or 3
// columns; a missing third column means altitude 0.
func pointFromRow(row []float64) geodetic.Point {
	p := geodetic.Point{Lon: row[0], Lat: row[1]}
	if len(row) == 3 {
		p.Alt = row[2]
	}
	return p
}

// validateShape rejects malformed inputs before any work happens.
func validateShape(coordinates [][]float64, values []float64) error {
	if len(coordinates) != len(values) {
		cols := 0
		if len(coordinates) > 0 {
			cols = len(coordinates[0])
		}
		return invalidArgumentf(
			"coordinates, values could not be broadcast together with shape (%d, %d) (%d)",
			len(coordinates), cols, len(values))
	}
	for _, row := range coordinates {
		if len(row) != 2 && len(row) != 3 {
			return invalidArgumentf(
				"coordinates must be a matrix (n, 2) to add points defined by " +
					"their longitudes and latitudes or a matrix (n, 3) to add " +
					"points defined by their longitudes, latitudes and altitudes")
		}
	}
	return nil
}

// Packing populates the index using the packing algorithm: any prior
// content is discarded and the tree is rebuilt from the complete point set
// in one balanced pass. Callers rely on this for query performance after
// large-batch loads; it is not equivalent to repeated Insert calls.
func (t *RTree) Packing(coordinates [][]float64, values []float64) error {
	if err := validateShape(coordinates, values); err != nil {
		return err
	}
	points := make(entries, len(coordinates))
	for i, row := range coordinates {
		ecef := t.coordinates.ToECEF(pointFromRow(row))
		points[i] = entry{X: ecef.X, Y: ecef.Y, Z: ecef.Z, Value: values[i]}
	}
	t.index.BulkLoad(points)
	return nil
}

// Insert appends points to the index, preserving existing content. Trees
// grown this way carry no balance guarantee comparable to Packing.
func (t *RTree) Insert(coordinates [][]float64, values []float64) error {
	if err := validateShape(coordinates, values); err != nil {
		return err
	}
	for i, row := range coordinates {
		ecef := t.coordinates.ToECEF(pointFromRow(row))
		t.index.Insert(entry{X: ecef.X, Y: ecef.Y, Z: ecef.Z, Value: values[i]})
	}
	return nil
}

// EquatorialBounds returns the axis-aligned geodetic box covering every
// stored entry, obtained by converting each Cartesian entry back to the
// geodetic frame. The second return value is false when the index is empty.
// This is a full O(n) scan; no bounding box is maintained incrementally.
func (t *RTree) EquatorialBounds() (geodetic.Box, bool) {
	if t.index.IsEmpty() {
		return geodetic.Box{}, false
	}
	first := true
	var box geodetic.Box
	t.index.Do(func(e entry) bool {
		lla := t.coordinates.ToGeodetic(geodetic.Cartesian{X: e.X, Y: e.Y, Z: e.Z})
		if first {
			box = geodetic.Box{Min: lla, Max: lla}
			first = false
		} else {
			box.Extend(lla)
		}
		return false
	})
	return box, true
}

// Query returns the k nearest neighbors of a geodetic point. Candidates are
// selected by Euclidean proximity in ECEF space, an efficient proxy for
// geodesic proximity; the reported distances are then recomputed with the
// haversine strategy on the geodetic coordinates. Results follow the
// underlying index's nearest-first iteration order.
func (t *RTree) Query(point geodetic.Point, k int) []Neighbor {
	nearest := t.index.Nearest(t.toEntry(point), k)

	result := make([]Neighbor, 0, len(nearest))
	for _, e := range nearest {
		lla := t.coordinates.ToGeodetic(geodetic.Cartesian{X: e.X, Y: e.Y, Z: e.Z})
		result = append(result, Neighbor{
			Distance: t.strategy.Distance(point, lla),
			Value:    e.Value,
		})
	}
	return result
}

// QueryBall returns every entry whose geodesic distance to the point is
// strictly less than radius. The predicate evaluates true geodesic distance
// per item: a Cartesian sphere around the ECEF point is not equivalent to a
// geodesic radius around the geodetic point, so no Cartesian cutoff is used.
func (t *RTree) QueryBall(point geodetic.Point, radius float64) []Neighbor {
	var result []Neighbor
	t.index.Do(func(e entry) bool {
		lla := t.coordinates.ToGeodetic(geodetic.Cartesian{X: e.X, Y: e.Y, Z: e.Z})
		if d := t.strategy.Distance(point, lla); d < radius {
			result = append(result, Neighbor{Distance: d, Value: e.Value})
		}
		return false
	})
	return result
}

// QueryWithin returns the k nearest neighbors of the point, provided the
// query point is covered by the minimum bounding envelope of those
// neighbors in ECEF space. When the point falls outside the envelope the
// neighbor set is considered insufficient for interpolation and the whole
// result is discarded.
func (t *RTree) QueryWithin(point geodetic.Point, k int) []Neighbor {
	q := t.toEntry(point)
	nearest := t.index.Nearest(q, k)
	if !coveredBy(q, nearest) {
		return nil
	}

	result := make([]Neighbor, 0, len(nearest))
	for _, e := range nearest {
		lla := t.coordinates.ToGeodetic(geodetic.Cartesian{X: e.X, Y: e.Y, Z: e.Z})
		result = append(result, Neighbor{
			Distance: t.strategy.Distance(point, lla),
			Value:    e.Value,
		})
	}
	return result
}

// toEntry converts a geodetic point to its ECEF entry form, with no payload.
func (t *RTree) toEntry(point geodetic.Point) entry {
	ecef := t.coordinates.ToECEF(point)
	return entry{X: ecef.X, Y: ecef.Y, Z: ecef.Z}
}

// coveredBy reports whether q lies inside or on the boundary of the minimum
// bounding envelope of points in ECEF space. An empty point set covers
// nothing.
func coveredBy(q entry, points []entry) bool {
	if len(points) == 0 {
		return false
	}
	min := [3]float64{points[0].X, points[0].Y, points[0].Z}
	max := min
	for _, e := range points {
		for i, v := range [3]float64{e.X, e.Y, e.Z} {
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}
	for i, v := range [3]float64{q.X, q.Y, q.Z} {
		if v < min[i] || v > max[i] {
			return false
		}
	}
	return true
}

// neighborEntries returns up to k nearest stored entries for a query entry,
// applying the covered-by envelope test when within is set.
func (t *RTree) neighborEntries(q entry, k int, within bool) []entry {
	nearest := t.index.Nearest(q, k)
	if within && !coveredBy(q, nearest) {
		return nil
	}
	return nearest
}
