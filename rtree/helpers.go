package rtree

import (
	"math/rand"

	"web/geotree/geodetic"
)

// GenerateTestPoints creates n random geodetic coordinate rows inside a
// bounding box, with a synthetic value per point. The seed makes fixtures
// reproducible.
func GenerateTestPoints(n int, box geodetic.Box, seed int64) ([][]float64, []float64) {
	r := rand.New(rand.NewSource(seed))

	coordinates := make([][]float64, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		lon := box.Min.Lon + r.Float64()*(box.Max.Lon-box.Min.Lon)
		lat := box.Min.Lat + r.Float64()*(box.Max.Lat-box.Min.Lat)
		coordinates[i] = []float64{lon, lat}
		values[i] = r.Float64() * 100
	}
	return coordinates, values
}
