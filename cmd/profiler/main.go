package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"web/geotree/geodetic"
	"web/geotree/rtree"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to file")
	numPoints  = flag.Int("points", 100000, "number of points to index")
	numQueries = flag.Int("queries", 4096, "number of query points per batch")
	neighbors  = flag.Int("k", 8, "neighbors per query")
	threads    = flag.Int("threads", 0, "worker count for batched queries (0 = all CPUs)")
	testall    = flag.Bool("testall", false, "test all configurations")
)

var profileBounds = geodetic.Box{
	Min: geodetic.Point{Lon: -125, Lat: 25},
	Max: geodetic.Point{Lon: -67, Lat: 49},
}

func buildIndex(n int) *rtree.RTree {
	coordinates, values := rtree.GenerateTestPoints(n, profileBounds, 42)
	tree := rtree.New(nil)

	start := time.Now()
	if err := tree.Packing(coordinates, values); err != nil {
		fmt.Fprintf(os.Stderr, "Packing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Packed %d points in %v\n", n, time.Since(start))
	return tree
}

func runSingleProfile(numPoints, numQueries, k, threads int) {
	fmt.Printf("Profiling with %d points, %d queries, k=%d, threads=%d\n",
		numPoints, numQueries, k, threads)

	tree := buildIndex(numPoints)
	queries, _ := rtree.GenerateTestPoints(numQueries, profileBounds, 7)

	var memStatsBefore, memStatsAfter runtime.MemStats
	runtime.ReadMemStats(&memStatsBefore)

	start := time.Now()
	if _, _, err := tree.QueryBatch(queries, k, false, threads); err != nil {
		fmt.Fprintf(os.Stderr, "QueryBatch failed: %v\n", err)
		return
	}
	batchDuration := time.Since(start)

	start = time.Now()
	if _, _, err := tree.InverseDistanceWeighting(queries, 0, k, 2, false, threads); err != nil {
		fmt.Fprintf(os.Stderr, "InverseDistanceWeighting failed: %v\n", err)
		return
	}
	idwDuration := time.Since(start)

	runtime.ReadMemStats(&memStatsAfter)
	allocMB := float64(memStatsAfter.TotalAlloc-memStatsBefore.TotalAlloc) / 1024 / 1024

	fmt.Printf("QueryBatch completed in %v\n", batchDuration)
	fmt.Printf("InverseDistanceWeighting completed in %v\n", idwDuration)
	fmt.Printf("Memory allocated: %.2f MB\n", allocMB)
	fmt.Printf("Memory usage: %.2f MB\n", float64(memStatsAfter.Alloc)/1024/1024)

	// Round-trip a memory-mapped snapshot to time the persistence path.
	dir, err := os.MkdirTemp("", "geotree-profile")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not create temp dir: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "index.bin")
	start = time.Now()
	if err := tree.SaveMMap(path); err != nil {
		fmt.Fprintf(os.Stderr, "SaveMMap failed: %v\n", err)
		return
	}
	saveDuration := time.Since(start)

	start = time.Now()
	loaded, err := rtree.LoadMMap(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "LoadMMap failed: %v\n", err)
		return
	}
	loadDuration := time.Since(start)

	if info, err := os.Stat(path); err == nil {
		fmt.Printf("Snapshot save: %v, load: %v (%d points, %d bytes)\n",
			saveDuration, loadDuration, loaded.Len(), info.Size())
	}
}

func runProfileBattery() {
	pointCounts := []int{1000, 10000, 50000, 100000}
	threadCounts := []int{1, 2, 4, 0}

	fmt.Println("Running comprehensive profile battery...")
	fmt.Println("=======================================")

	fmt.Printf("%-10s | %-10s | %-15s | %-12s | %-10s\n",
		"Points", "Threads", "Batch", "Memory (MB)", "GC Runs")
	fmt.Printf("%s\n", "------------------------------------------------------------------")

	for _, points := range pointCounts {
		tree := buildIndex(points)
		queries, _ := rtree.GenerateTestPoints(4096, profileBounds, 7)

		for _, threads := range threadCounts {
			var memStatsBefore, memStatsAfter runtime.MemStats
			runtime.ReadMemStats(&memStatsBefore)

			start := time.Now()
			if _, _, err := tree.QueryBatch(queries, 8, false, threads); err != nil {
				fmt.Fprintf(os.Stderr, "QueryBatch failed: %v\n", err)
				continue
			}
			duration := time.Since(start)

			runtime.ReadMemStats(&memStatsAfter)
			memMB := float64(memStatsAfter.TotalAlloc-memStatsBefore.TotalAlloc) / 1024 / 1024
			gcRuns := memStatsAfter.NumGC - memStatsBefore.NumGC

			fmt.Printf("%-10d | %-10d | %-15s | %-12.2f | %-10d\n",
				points, threads, duration, memMB, gcRuns)
		}

		fmt.Printf("%s\n", "------------------------------------------------------------------")
	}
}

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			return
		}
		defer f.Close()

		fmt.Println("Starting CPU profiling...")
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			return
		}
		defer pprof.StopCPUProfile()
	}

	if *testall {
		runProfileBattery()
	} else {
		runSingleProfile(*numPoints, *numQueries, *neighbors, *threads)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create memory profile: %v\n", err)
			return
		}
		defer f.Close()
		runtime.GC() // Get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write memory profile: %v\n", err)
		}
	}
}
