package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Binary layout of array and matrix files, all little-endian:
//
//	uint64 element size in bytes
//	uint64 dimension count (1 or 2)
//	uint64 per dimension
//	elements, row-major
func writeNumbers[T Number](path string, dims []int, data []T) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)

	var zero T
	header := []uint64{uint64(binary.Size(zero)), uint64(len(dims))}
	for _, d := range dims {
		header = append(header, uint64(d))
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		f.Close()
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readNumbers[T Number](path string, wantDims int) ([]int, []T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var head [2]uint64
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, nil, fmt.Errorf("%s: reading header: %w", path, err)
	}
	var zero T
	if head[0] != uint64(binary.Size(zero)) {
		return nil, nil, fmt.Errorf("%s: element size %d does not match %T", path, head[0], zero)
	}
	if head[1] != uint64(wantDims) {
		return nil, nil, fmt.Errorf("%s: expected %d dimensions, file has %d", path, wantDims, head[1])
	}

	dims := make([]uint64, wantDims)
	if err := binary.Read(r, binary.LittleEndian, dims); err != nil {
		return nil, nil, fmt.Errorf("%s: reading dimensions: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	headerSize := int64(8 * (2 + wantDims))
	capacity := uint64(0)
	if fi.Size() > headerSize {
		capacity = uint64(fi.Size()-headerSize) / head[0]
	}

	// The product of the dimensions is checked against what the file can
	// hold before anything is allocated.
	count := uint64(1)
	out := make([]int, wantDims)
	for i, d := range dims {
		if d != 0 && count > capacity/d {
			return nil, nil, fmt.Errorf("%s: dimensions %v exceed the %d elements the file holds", path, dims, capacity)
		}
		count *= d
		out[i] = int(d)
	}

	data := make([]T, count)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, nil, fmt.Errorf("%s: truncated data", path)
		}
		return nil, nil, err
	}
	return out, data, nil
}
