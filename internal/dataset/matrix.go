package dataset

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/bytefmt"
)

// Grid is a dense row-major matrix, the working copy of a Matrix dataset.
type Grid[T Number] struct {
	Rows, Cols int
	Data       []T
}

func NewGrid[T Number](rows, cols int) Grid[T] {
	return Grid[T]{Rows: rows, Cols: cols, Data: make([]T, rows*cols)}
}

func (g Grid[T]) At(r, c int) T {
	return g.Data[r*g.Cols+c]
}

func (g Grid[T]) Set(r, c int, v T) {
	g.Data[r*g.Cols+c] = v
}

// Row returns row r sharing storage with the grid.
func (g Grid[T]) Row(r int) []T {
	return g.Data[r*g.Cols : (r+1)*g.Cols]
}

type Matrix[T Number] struct {
	path    string
	data    Grid[T]
	work    Grid[T]
	loaded  bool
	hasCopy bool
}

func NewMatrix[T Number](path string) *Matrix[T] {
	return &Matrix[T]{path: path}
}

// GenerateMatrix writes a rows x cols matrix filled row-major by f.
func GenerateMatrix[T Number](path string, rows, cols int, f Fill) (*Matrix[T], error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("matrix dimensions must be at least 1x1, got %dx%d", rows, cols)
	}
	if path == "" {
		path = TimestampName(time.Now()) + ".matrix"
	}
	g := NewGrid[T](rows, cols)
	if err := fill(g.Data, f); err != nil {
		return nil, err
	}
	if err := writeNumbers(path, []int{rows, cols}, g.Data); err != nil {
		return nil, fmt.Errorf("writing matrix %s: %w", path, err)
	}
	return NewMatrix[T](path), nil
}

func (m *Matrix[T]) Path() string { return m.path }

func (m *Matrix[T]) Read() error {
	dims, data, err := readNumbers[T](m.path, 2)
	if err != nil {
		return err
	}
	m.data = Grid[T]{Rows: dims[0], Cols: dims[1], Data: data}
	m.loaded = true
	return nil
}

func (m *Matrix[T]) Clear() {
	m.data = Grid[T]{}
	m.loaded = false
}

func (m *Matrix[T]) Data() Grid[T] {
	return m.data
}

func (m *Matrix[T]) Copy() (Grid[T], error) {
	m.ClearCopy()
	if !m.loaded {
		return Grid[T]{}, fmt.Errorf("matrix %s has not been read", m.path)
	}
	m.work = NewGrid[T](m.data.Rows, m.data.Cols)
	copy(m.work.Data, m.data.Data)
	m.hasCopy = true
	return m.work, nil
}

func (m *Matrix[T]) ClearCopy() {
	m.work = Grid[T]{}
	m.hasCopy = false
}

func (m *Matrix[T]) SaveCopy(runDir string, argIndex, threads int) (string, error) {
	if !m.hasCopy {
		return "", ErrNoWorkingCopy
	}
	name := ArtifactName(argIndex, threads, filepath.Base(m.path))
	if err := writeNumbers(filepath.Join(runDir, name), []int{m.work.Rows, m.work.Cols}, m.work.Data); err != nil {
		return "", err
	}
	return name, nil
}

func (m *Matrix[T]) Title() string {
	var zero T
	bytes := uint64(len(m.data.Data) * binary.Size(zero))
	return fmt.Sprintf("Matrix %s: %dx%d of %T (%s)", filepath.Base(m.path), m.data.Rows, m.data.Cols, zero, bytefmt.ByteSize(bytes))
}
