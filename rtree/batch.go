package rtree

import (
	"runtime"
	"sync"
)

// dispatch splits n items into contiguous, roughly equal ranges and runs one
// worker per range, joining them all before returning. numThreads 0 derives
// the worker count from the available CPUs; 1 or below runs fully
// sequential, which is useful for debugging and deterministic error
// attribution.
//
// Workers run to completion even when another worker fails; the captured
// errors are merged last-writer-wins and a single one is returned after the
// join. Errors from discarded workers are lost.
func dispatch(worker func(start, stop int) error, n, numThreads int) error {
	if numThreads == 0 {
		numThreads = runtime.NumCPU()
	}
	if numThreads <= 1 || n == 0 {
		return worker(0, n)
	}
	if numThreads > n {
		numThreads = n
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var captured error

	chunk := n / numThreads
	remainder := n % numThreads
	start := 0
	for i := 0; i < numThreads; i++ {
		stop := start + chunk
		if i < remainder {
			stop++
		}
		wg.Add(1)
		go func(start, stop int) {
			defer wg.Done()
			if err := worker(start, stop); err != nil {
				mu.Lock()
				captured = err
				mu.Unlock()
			}
		}(start, stop)
		start = stop
	}
	wg.Wait()
	return captured
}

// QueryBatch runs one nearest-neighbor query per coordinate row, dispatching
// rows across numThreads workers. Row i of the output matrices corresponds
// to row i of the input; slots beyond the neighbors actually found are
// filled with the sentinel -1 in both matrices. When within is true each row
// uses QueryWithin, otherwise Query.
func (t *RTree) QueryBatch(coordinates [][]float64, k int, within bool,
	numThreads int) ([][]float64, [][]float64, error) {
	for _, row := range coordinates {
		if len(row) != 2 && len(row) != 3 {
			return nil, nil, invalidArgumentf(
				"coordinates must be a matrix (n, 2) to add points defined by " +
					"their longitudes and latitudes or a matrix (n, 3) to add " +
					"points defined by their longitudes, latitudes and altitudes")
		}
	}

	n := len(coordinates)
	distances := make([][]float64, n)
	values := make([][]float64, n)

	err := dispatch(func(start, stop int) error {
		for ix := start; ix < stop; ix++ {
			point := pointFromRow(coordinates[ix])

			var nearest []Neighbor
			if within {
				nearest = t.QueryWithin(point, k)
			} else {
				nearest = t.Query(point, k)
			}

			dRow := make([]float64, k)
			vRow := make([]float64, k)
			jx := 0
			for ; jx < len(nearest) && jx < k; jx++ {
				dRow[jx] = nearest[jx].Distance
				vRow[jx] = nearest[jx].Value
			}
			// The rest of the row is filled with invalid values.
			for ; jx < k; jx++ {
				dRow[jx] = -1
				vRow[jx] = -1
			}
			distances[ix] = dRow
			values[ix] = vRow
		}
		return nil
	}, n, numThreads)
	if err != nil {
		return nil, nil, err
	}
	return distances, values, nil
}
