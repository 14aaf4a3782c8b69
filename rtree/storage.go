package rtree

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"web/geotree/geodetic"
)

// SaveCompressed writes the index to filename as a zstd-compressed
// little-endian stream: ellipsoid parameters, entry count, then one fixed
// 32-byte record per entry.
func (t *RTree) SaveCompressed(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	bufWriter := bufio.NewWriterSize(file, 1024*1024)
	enc, err := zstd.NewWriter(bufWriter,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %v", err)
	}
	defer enc.Close()

	ellipsoid := t.Ellipsoid()
	if err := binary.Write(enc, binary.LittleEndian, ellipsoid.SemiMajorAxis); err != nil {
		return fmt.Errorf("failed to write header: %v", err)
	}
	if err := binary.Write(enc, binary.LittleEndian, ellipsoid.Flattening); err != nil {
		return fmt.Errorf("failed to write header: %v", err)
	}
	if err := binary.Write(enc, binary.LittleEndian, uint32(t.Len())); err != nil {
		return fmt.Errorf("failed to write header: %v", err)
	}

	var writeErr error
	t.index.Do(func(e entry) bool {
		if err := binary.Write(enc, binary.LittleEndian, e); err != nil {
			writeErr = err
			return true
		}
		return false
	})
	if writeErr != nil {
		return fmt.Errorf("failed to write entries: %v", writeErr)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close encoder: %v", err)
	}
	if err := bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %v", err)
	}
	return nil
}

// LoadCompressed reads a snapshot written by SaveCompressed and rebuilds the
// index through the packing path, so the loaded tree carries bulk-load
// balance regardless of how the saved one was populated.
func LoadCompressed(filename string) (*RTree, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer dec.Close()

	var semiMajorAxis, flattening float64
	var count uint32
	if err := binary.Read(dec, binary.LittleEndian, &semiMajorAxis); err != nil {
		return nil, fmt.Errorf("failed to read header: %v", err)
	}
	if err := binary.Read(dec, binary.LittleEndian, &flattening); err != nil {
		return nil, fmt.Errorf("failed to read header: %v", err)
	}
	if err := binary.Read(dec, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read header: %v", err)
	}

	points := make(entries, count)
	for i := range points {
		if err := binary.Read(dec, binary.LittleEndian, &points[i]); err != nil {
			return nil, fmt.Errorf("failed to read entry %d: %v", i, err)
		}
	}

	ellipsoid := geodetic.NewEllipsoid(semiMajorAxis, flattening)
	t := New(&ellipsoid)
	t.index.BulkLoad(points)
	return t, nil
}
