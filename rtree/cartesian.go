package rtree

import (
	"container/heap"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// entry is a stored index record: an ECEF position and its payload value.
type entry struct {
	X, Y, Z float64
	Value   float64
}

// Compare implements the kdtree.Comparable interface.
func (e entry) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(entry)
	switch d {
	case 0:
		return e.X - q.X
	case 1:
		return e.Y - q.Y
	case 2:
		return e.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the kd-tree.
func (e entry) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two entries.
func (e entry) Distance(c kdtree.Comparable) float64 {
	q := c.(entry)
	dx := e.X - q.X
	dy := e.Y - q.Y
	dz := e.Z - q.Z
	return dx*dx + dy*dy + dz*dz
}

// entries is a collection of entry that satisfies kdtree.Interface.
type entries []entry

func (p entries) Index(i int) kdtree.Comparable { return p[i] }
func (p entries) Len() int                      { return len(p) }
func (p entries) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p entries) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(entryPlane{entries: p, Dim: d},
		kdtree.MedianOfRandoms(entryPlane{entries: p, Dim: d}, 100))
}

// entryPlane implements sort.Interface and kdtree.SortSlicer for entries.
type entryPlane struct {
	entries
	kdtree.Dim
}

func (p entryPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.entries[i].X < p.entries[j].X
	case 1:
		return p.entries[i].Y < p.entries[j].Y
	case 2:
		return p.entries[i].Z < p.entries[j].Z
	default:
		panic("illegal dimension")
	}
}
func (p entryPlane) Slice(start, end int) kdtree.SortSlicer {
	return entryPlane{entries: p.entries[start:end], Dim: p.Dim}
}
func (p entryPlane) Swap(i, j int) {
	p.entries[i], p.entries[j] = p.entries[j], p.entries[i]
}

// cartesianIndex is the thin delegation layer over the generic kd-tree. The
// geodetic index talks to storage exclusively through this surface and never
// reaches into the tree structure itself.
type cartesianIndex struct {
	tree  *kdtree.Tree
	count int
}

// BulkLoad discards any prior content and rebuilds the tree from the
// complete point set in one balanced pass.
func (x *cartesianIndex) BulkLoad(points entries) {
	if len(points) == 0 {
		x.tree = nil
		x.count = 0
		return
	}
	x.tree = kdtree.New(points, true)
	x.count = len(points)
}

// Insert appends a single entry, preserving existing content. No
// rebalancing happens on this path.
func (x *cartesianIndex) Insert(e entry) {
	if x.tree == nil {
		x.tree = kdtree.New(entries{e}, true)
	} else {
		x.tree.Insert(e, true)
	}
	x.count++
}

// Nearest returns up to k entries ordered nearest-first by Euclidean
// distance to q.
func (x *cartesianIndex) Nearest(q entry, k int) []entry {
	if x.count == 0 || k <= 0 {
		return nil
	}
	keeper := kdtree.NewNKeeper(k)
	x.tree.NearestSet(keeper, q)

	// The keeper is a max-heap of the k closest candidates; popping yields
	// farthest-first, so collect and reverse.
	found := make([]entry, 0, k)
	for keeper.Len() > 0 {
		item := heap.Pop(keeper).(kdtree.ComparableDist)
		if item.Comparable == nil {
			continue
		}
		found = append(found, item.Comparable.(entry))
	}
	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found
}

// Do calls fn for every stored entry until fn returns true.
func (x *cartesianIndex) Do(fn func(entry) bool) {
	if x.tree == nil {
		return
	}
	x.tree.Do(func(c kdtree.Comparable, _ *kdtree.Bounding, _ int) bool {
		return fn(c.(entry))
	})
}

// Len returns the number of stored entries.
func (x *cartesianIndex) Len() int { return x.count }

// IsEmpty reports whether the index holds no entries.
func (x *cartesianIndex) IsEmpty() bool { return x.count == 0 }
