package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"web/geotree/geodetic"
	"web/geotree/rtree"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IndexServer struct {
	mu      sync.RWMutex
	tree    *rtree.RTree
	dataDir string
	metrics *MetricsCollector
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(1024), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func (s *IndexServer) snapshotFilename(size int) string {
	timestamp := time.Now().Format("20060102-150405")
	id := uuid.New().String()[:8] // Use first 8 chars of UUID for brevity
	return filepath.Join(s.dataDir, fmt.Sprintf("index-%dp-%s-%s.zst", size, timestamp, id))
}

type SnapshotInfo struct {
	ID        string    `json:"id"`
	NumPoints int       `json:"numPoints"`
	Timestamp time.Time `json:"timestamp"`
	FileSize  int64     `json:"fileSize"`
}

func (s *IndexServer) listSnapshots() ([]SnapshotInfo, error) {
	files, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, err
	}

	snapshots := make([]SnapshotInfo, 0)
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".zst" {
			continue
		}

		// Format: index-{numPoints}p-{timestamp}-{id}.zst
		name := strings.TrimSuffix(file.Name(), ".zst")
		parts := strings.Split(name, "-")
		if len(parts) != 5 {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		numPoints, err := strconv.Atoi(strings.TrimSuffix(parts[1], "p"))
		if err != nil {
			continue
		}
		timestamp, err := time.Parse("20060102-150405", parts[2]+"-"+parts[3])
		if err != nil {
			continue
		}

		snapshots = append(snapshots, SnapshotInfo{
			ID:        parts[4],
			NumPoints: numPoints,
			Timestamp: timestamp,
			FileSize:  info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

func (s *IndexServer) saveSnapshot() (string, error) {
	path := s.snapshotFilename(s.tree.Len())
	if err := s.tree.SaveCompressed(path); err != nil {
		return "", err
	}
	if info, err := os.Stat(path); err == nil {
		s.metrics.SetSnapshotBytes(info.Size())
		fmt.Printf("Saved snapshot %s (%s)\n", path, formatFileSize(info.Size()))
	}
	return path, nil
}

func (s *IndexServer) loadSnapshotById(id string) (*SnapshotInfo, error) {
	files, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, err
	}

	var snapshotFile string
	var loadedInfo *SnapshotInfo
	for _, file := range files {
		if strings.Contains(file.Name(), id) {
			snapshotFile = filepath.Join(s.dataDir, file.Name())
			name := strings.TrimSuffix(file.Name(), ".zst")
			parts := strings.Split(name, "-")
			if len(parts) == 5 {
				numPoints, _ := strconv.Atoi(strings.TrimSuffix(parts[1], "p"))
				timestamp, _ := time.Parse("20060102-150405", parts[2]+"-"+parts[3])
				fileInfo, _ := os.Stat(snapshotFile)
				loadedInfo = &SnapshotInfo{
					ID:        parts[4],
					NumPoints: numPoints,
					Timestamp: timestamp,
					FileSize:  fileInfo.Size(),
				}
			}
			break
		}
	}
	if snapshotFile == "" {
		return nil, fmt.Errorf("snapshot with ID %s not found", id)
	}

	loadStart := time.Now()
	loaded, err := rtree.LoadCompressed(snapshotFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %v", err)
	}
	fmt.Printf("Snapshot loaded from file in %v\n", time.Since(loadStart))

	s.tree = loaded
	s.metrics.SetIndexSize(loaded.Len())
	return loadedInfo, nil
}

// parsePoint reads lon/lat (and optional alt) query parameters.
func parsePoint(c *gin.Context) (geodetic.Point, bool) {
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lon parameter"})
		return geodetic.Point{}, false
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat parameter"})
		return geodetic.Point{}, false
	}
	alt := 0.0
	if v := c.Query("alt"); v != "" {
		if alt, err = strconv.ParseFloat(v, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alt parameter"})
			return geodetic.Point{}, false
		}
	}
	return geodetic.Point{Lon: lon, Lat: lat, Alt: alt}, true
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using defaults")
	}

	addr := os.Getenv("GEOTREE_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	dataDir := os.Getenv("GEOTREE_DATA_DIR")
	if dataDir == "" {
		dataDir = "data/snapshots"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Printf("Error creating snapshot directory: %v\n", err)
	}

	tree := rtree.New(nil)
	server := &IndexServer{
		tree:    tree,
		dataDir: dataDir,
		metrics: NewMetricsCollector(),
	}
	fmt.Println("Started with an empty index - waiting for points to be loaded...")

	r := gin.Default()

	// Enable CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Index info
	r.GET("/api/index", func(c *gin.Context) {
		server.mu.RLock()
		defer server.mu.RUnlock()

		info := gin.H{
			"numPoints": server.tree.Len(),
			"ellipsoid": server.tree.Ellipsoid().String(),
		}
		if box, ok := server.tree.EquatorialBounds(); ok {
			info["bounds"] = box
		}
		c.JSON(http.StatusOK, info)
	})

	// Replace the index contents, either from the request body or with
	// generated points.
	r.POST("/api/index", func(c *gin.Context) {
		var req struct {
			Coordinates [][]float64 `json:"coordinates"`
			Values      []float64   `json:"values"`
			NumPoints   int         `json:"numPoints"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		coordinates, values := req.Coordinates, req.Values
		if len(coordinates) == 0 && req.NumPoints > 0 {
			fmt.Printf("Generating %d points in the Continental US...\n", req.NumPoints)
			coordinates, values = rtree.GenerateTestPoints(req.NumPoints, geodetic.Box{
				Min: geodetic.Point{Lon: -125, Lat: 25},
				Max: geodetic.Point{Lon: -67, Lat: 49},
			}, time.Now().UnixNano())
		}

		server.mu.Lock()
		defer server.mu.Unlock()

		loadStart := time.Now()
		if err := server.tree.Packing(coordinates, values); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fmt.Printf("Packed %d points in %v\n", server.tree.Len(), time.Since(loadStart))
		server.metrics.SetIndexSize(server.tree.Len())
		c.JSON(http.StatusOK, gin.H{"numPoints": server.tree.Len()})
	})

	// Append points without rebuilding
	r.POST("/api/index/insert", func(c *gin.Context) {
		var req struct {
			Coordinates [][]float64 `json:"coordinates"`
			Values      []float64   `json:"values"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		server.mu.Lock()
		defer server.mu.Unlock()

		if err := server.tree.Insert(req.Coordinates, req.Values); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		server.metrics.SetIndexSize(server.tree.Len())
		c.JSON(http.StatusOK, gin.H{"numPoints": server.tree.Len()})
	})

	// Nearest neighbors of a single point
	r.GET("/api/index/query", func(c *gin.Context) {
		point, ok := parsePoint(c)
		if !ok {
			return
		}
		k := 4
		if v := c.Query("k"); v != "" {
			var err error
			if k, err = strconv.Atoi(v); err != nil || k <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid k parameter"})
				return
			}
		}

		server.mu.RLock()
		start := time.Now()
		neighbors := server.tree.Query(point, k)
		server.mu.RUnlock()
		server.metrics.RecordQuery("nearest", time.Since(start))

		c.JSON(http.StatusOK, gin.H{"neighbors": neighbors})
	})

	// Neighbors within a radius of a single point
	r.GET("/api/index/ball", func(c *gin.Context) {
		point, ok := parsePoint(c)
		if !ok {
			return
		}
		radius, err := strconv.ParseFloat(c.Query("radius"), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius parameter"})
			return
		}

		server.mu.RLock()
		start := time.Now()
		neighbors := server.tree.QueryBall(point, radius)
		server.mu.RUnlock()
		server.metrics.RecordQuery("ball", time.Since(start))

		c.JSON(http.StatusOK, gin.H{"neighbors": neighbors})
	})

	// Batched nearest-neighbor query
	r.POST("/api/index/query", func(c *gin.Context) {
		var req struct {
			Coordinates [][]float64 `json:"coordinates"`
			K           int         `json:"k"`
			Within      bool        `json:"within"`
			Threads     int         `json:"threads"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.K <= 0 {
			req.K = 4
		}

		server.mu.RLock()
		start := time.Now()
		distances, values, err := server.tree.QueryBatch(
			req.Coordinates, req.K, req.Within, req.Threads)
		server.mu.RUnlock()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		server.metrics.RecordQuery("batch", time.Since(start))

		c.JSON(http.StatusOK, gin.H{"distances": distances, "values": values})
	})

	// Inverse distance weighting interpolation
	r.POST("/api/index/idw", func(c *gin.Context) {
		var req struct {
			Coordinates [][]float64 `json:"coordinates"`
			Radius      float64     `json:"radius"`
			K           int         `json:"k"`
			P           int         `json:"p"`
			Within      bool        `json:"within"`
			Threads     int         `json:"threads"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.K <= 0 {
			req.K = 9
		}
		if req.P <= 0 {
			req.P = 2
		}

		server.mu.RLock()
		start := time.Now()
		values, neighbors, err := server.tree.InverseDistanceWeighting(
			req.Coordinates, req.Radius, req.K, req.P, req.Within, req.Threads)
		server.mu.RUnlock()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		server.metrics.RecordQuery("idw", time.Since(start))

		c.JSON(http.StatusOK, gin.H{"values": values, "neighbors": neighbors})
	})

	// List available snapshots
	r.GET("/api/index/snapshots", func(c *gin.Context) {
		snapshots, err := server.listSnapshots()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snapshots)
	})

	// Save the current index to disk
	r.POST("/api/index/snapshots", func(c *gin.Context) {
		server.mu.RLock()
		defer server.mu.RUnlock()

		path, err := server.saveSnapshot()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"path": path})
	})

	// Replace the index with a saved snapshot
	r.POST("/api/index/snapshots/load/:id", func(c *gin.Context) {
		id := c.Param("id")
		fmt.Printf("Received request to load snapshot with ID: %s\n", id)

		server.mu.Lock()
		defer server.mu.Unlock()

		info, err := server.loadSnapshotById(id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Snapshot loaded successfully", "snapshotInfo": info})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on %s...\n", addr)
		if err := r.Run(addr); err != nil {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-quit
	fmt.Println("\nShutting down server...")

	server.mu.RLock()
	defer server.mu.RUnlock()
	if !server.tree.Empty() {
		if _, err := server.saveSnapshot(); err != nil {
			fmt.Printf("Failed to save snapshot on shutdown: %v\n", err)
		}
	}
	fmt.Println("Server stopped")
}
