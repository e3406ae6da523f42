package dataset

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/bytefmt"
)

// Array is a one-dimensional numeric dataset. Its working copy is a plain
// slice the function under test may mutate in place.
type Array[T Number] struct {
	path    string
	data    []T
	work    []T
	hasCopy bool
}

// NewArray refers to an existing array file; nothing is read until Read.
func NewArray[T Number](path string) *Array[T] {
	return &Array[T]{path: path}
}

// GenerateArray writes size elements produced by f to path and returns the
// dataset with its primary representation released. An empty path picks a
// timestamped name in the current directory.
func GenerateArray[T Number](path string, size int, f Fill) (*Array[T], error) {
	if size < 1 {
		return nil, fmt.Errorf("array size must be at least 1, got %d", size)
	}
	if path == "" {
		path = TimestampName(time.Now()) + ".array"
	}
	data := make([]T, size)
	if err := fill(data, f); err != nil {
		return nil, err
	}
	if err := writeNumbers(path, []int{size}, data); err != nil {
		return nil, fmt.Errorf("writing array %s: %w", path, err)
	}
	return NewArray[T](path), nil
}

func (a *Array[T]) Path() string { return a.path }

func (a *Array[T]) Read() error {
	_, data, err := readNumbers[T](a.path, 1)
	if err != nil {
		return err
	}
	a.data = data
	return nil
}

func (a *Array[T]) Clear() {
	a.data = nil
}

// Data exposes the primary representation.
func (a *Array[T]) Data() []T {
	return a.data
}

func (a *Array[T]) Copy() ([]T, error) {
	a.ClearCopy()
	if a.data == nil {
		return nil, fmt.Errorf("array %s has not been read", a.path)
	}
	a.work = make([]T, len(a.data))
	copy(a.work, a.data)
	a.hasCopy = true
	return a.work, nil
}

func (a *Array[T]) ClearCopy() {
	a.work = nil
	a.hasCopy = false
}

func (a *Array[T]) SaveCopy(runDir string, argIndex, threads int) (string, error) {
	if !a.hasCopy {
		return "", ErrNoWorkingCopy
	}
	name := ArtifactName(argIndex, threads, filepath.Base(a.path))
	if err := writeNumbers(filepath.Join(runDir, name), []int{len(a.work)}, a.work); err != nil {
		return "", err
	}
	return name, nil
}

func (a *Array[T]) Title() string {
	var zero T
	bytes := uint64(len(a.data) * binary.Size(zero))
	return fmt.Sprintf("Array %s: %d elements of %T (%s)", filepath.Base(a.path), len(a.data), zero, bytefmt.ByteSize(bytes))
}
