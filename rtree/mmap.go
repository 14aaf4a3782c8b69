package rtree

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"

	"web/geotree/geodetic"
)

// mmapWriter handles writing to memory-mapped files.
type mmapWriter struct {
	data   mmap.MMap
	offset int
}

func newMMapWriter(data mmap.MMap) *mmapWriter {
	return &mmapWriter{data: data}
}

func (w *mmapWriter) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.data[w.offset:], v)
	w.offset += 4
}

func (w *mmapWriter) WriteFloat64(v float64) {
	binary.LittleEndian.PutUint64(w.data[w.offset:], math.Float64bits(v))
	w.offset += 8
}

// mmapReader handles reading from memory-mapped files.
type mmapReader struct {
	data   mmap.MMap
	offset int
}

func newMMapReader(data mmap.MMap) *mmapReader {
	return &mmapReader{data: data}
}

func (r *mmapReader) ReadUint32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v
}

func (r *mmapReader) ReadFloat64() float64 {
	v := binary.LittleEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return math.Float64frombits(v)
}

// snapshotSize returns the file size needed for an mmap snapshot: the
// ellipsoid header, the entry count, and 32 bytes per entry.
func (t *RTree) snapshotSize() int64 {
	return 8 + 8 + 4 + 32*int64(t.Len())
}

// SaveMMap writes the index to an uncompressed memory-mapped file with the
// same record layout as SaveCompressed. Useful for large snapshots where
// load time matters more than file size.
func (t *RTree) SaveMMap(filename string) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	if err := file.Truncate(t.snapshotSize()); err != nil {
		return fmt.Errorf("failed to truncate file: %v", err)
	}

	mmapData, err := mmap.Map(file, mmap.RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to mmap file: %v", err)
	}
	defer mmapData.Unmap()

	writer := newMMapWriter(mmapData)
	ellipsoid := t.Ellipsoid()
	writer.WriteFloat64(ellipsoid.SemiMajorAxis)
	writer.WriteFloat64(ellipsoid.Flattening)
	writer.WriteUint32(uint32(t.Len()))

	t.index.Do(func(e entry) bool {
		writer.WriteFloat64(e.X)
		writer.WriteFloat64(e.Y)
		writer.WriteFloat64(e.Z)
		writer.WriteFloat64(e.Value)
		return false
	})

	return mmapData.Flush()
}

// LoadMMap reads a snapshot written by SaveMMap and rebuilds the index
// through the packing path.
func LoadMMap(filename string) (*RTree, error) {
	file, err := os.OpenFile(filename, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	mmapData, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap file: %v", err)
	}
	defer mmapData.Unmap()

	reader := newMMapReader(mmapData)
	semiMajorAxis := reader.ReadFloat64()
	flattening := reader.ReadFloat64()
	count := reader.ReadUint32()

	points := make(entries, count)
	for i := range points {
		points[i] = entry{
			X:     reader.ReadFloat64(),
			Y:     reader.ReadFloat64(),
			Z:     reader.ReadFloat64(),
			Value: reader.ReadFloat64(),
		}
	}

	ellipsoid := geodetic.NewEllipsoid(semiMajorAxis, flattening)
	t := New(&ellipsoid)
	t.index.BulkLoad(points)
	return t, nil
}
