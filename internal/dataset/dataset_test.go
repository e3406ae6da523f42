package dataset

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "proc_args_1_thread_4_data.array", ArtifactName(1, 4, "data.array"))
	assert.Equal(t, "proc_args_2_data.array", ArtifactName(2, 0, "data.array"))
	assert.Equal(t, "proc_thread_8_a.txt", ArtifactName(0, 8, "a.txt"))
}

func TestTimestampName(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 1, 42, time.UTC)
	assert.Equal(t, "2024_03_07_09_05_01_42", TimestampName(ts))
}

func TestArrayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asc.array")

	a, err := GenerateArray[int64](path, 6, Fill{Type: FillAscending, Start: 1, Step: 2, StepInterval: 2})
	require.NoError(t, err)
	assert.Nil(t, a.Data(), "generated dataset starts released")

	require.NoError(t, a.Read())
	assert.Equal(t, []int64{1, 1, 3, 3, 5, 5}, a.Data())
	assert.Contains(t, a.Title(), "6 elements")
	assert.Contains(t, a.Title(), "48B")

	work, err := a.Copy()
	require.NoError(t, err)
	work[0] = 100
	assert.Equal(t, int64(1), a.Data()[0], "working copy must not alias the primary data")

	name, err := a.SaveCopy(dir, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "proc_args_1_thread_2_asc.array", name)

	saved := NewArray[int64](filepath.Join(dir, name))
	require.NoError(t, saved.Read())
	assert.Equal(t, []int64{100, 1, 3, 3, 5, 5}, saved.Data())

	a.ClearCopy()
	a.ClearCopy()
	_, err = a.SaveCopy(dir, 1, 2)
	assert.ErrorIs(t, err, ErrNoWorkingCopy)

	a.Clear()
	_, err = a.Copy()
	assert.Error(t, err)
}

func TestArrayRejectsWrongElementType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.array")
	_, err := GenerateArray[float64](path, 4, Fill{Type: FillDescending, Start: 10, Step: 1})
	require.NoError(t, err)

	err = NewArray[int32](path).Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element size")

	err = NewMatrix[float64](path).Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func writeRawArray(t *testing.T, header []uint64, data []int64) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, data))
	path := filepath.Join(t.TempDir(), "raw.array")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestArrayRejectsOversizedHeader(t *testing.T) {
	path := writeRawArray(t, []uint64{8, 1, 1 << 62}, []int64{1, 2})

	a := NewArray[int64](path)
	var err error
	require.NotPanics(t, func() { err = a.Read() })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceed")
	assert.Nil(t, a.Data())
}

func TestMatrixRejectsOverflowingDimensions(t *testing.T) {
	path := writeRawArray(t, []uint64{8, 2, 1 << 32, 1 << 33}, []int64{1, 2, 3, 4})

	var err error
	require.NotPanics(t, func() { err = NewMatrix[int64](path).Read() })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceed")
}

func TestArrayRejectsTruncatedData(t *testing.T) {
	path := writeRawArray(t, []uint64{8, 1, 10}, []int64{1, 2})

	err := NewArray[int64](path).Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceed")

	path = writeRawArray(t, []uint64{8, 1, 2}, []int64{7, 9})
	a := NewArray[int64](path)
	require.NoError(t, a.Read())
	assert.Equal(t, []int64{7, 9}, a.Data())
}

func TestRandomFillBounds(t *testing.T) {
	ints := make([]int32, 500)
	require.NoError(t, fill(ints, Fill{Type: FillRandom, Min: -3, Max: 3, Seed: 7}))
	for _, v := range ints {
		assert.GreaterOrEqual(t, v, int32(-3))
		assert.LessOrEqual(t, v, int32(3))
	}

	floats := make([]float64, 500)
	require.NoError(t, fill(floats, Fill{Type: FillRandom, Min: 0.5, Max: 1.5, Seed: 7}))
	for _, v := range floats {
		assert.GreaterOrEqual(t, v, 0.5)
		assert.LessOrEqual(t, v, 1.5)
	}

	assert.Error(t, fill(ints, Fill{Type: FillRandom, Min: 2, Max: 1}))
	assert.Error(t, fill(ints, Fill{Type: "zigzag"}))
}

func TestMatrixRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.matrix")

	m, err := GenerateMatrix[float32](path, 2, 3, Fill{Type: FillAscending, Start: 0, Step: 1})
	require.NoError(t, err)
	require.NoError(t, m.Read())

	g := m.Data()
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 3, g.Cols)
	assert.Equal(t, float32(5), g.At(1, 2))
	assert.Equal(t, []float32{3, 4, 5}, g.Row(1))
	assert.Contains(t, m.Title(), "2x3")

	work, err := m.Copy()
	require.NoError(t, err)
	work.Set(0, 0, -1)
	assert.Equal(t, float32(0), m.Data().At(0, 0))

	name, err := m.SaveCopy(dir, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "proc_m.matrix", name)

	saved := NewMatrix[float32](filepath.Join(dir, name))
	require.NoError(t, saved.Read())
	assert.Equal(t, float32(-1), saved.Data().At(0, 0))
}

func TestTextDataset(t *testing.T) {
	dir := t.TempDir()
	text, err := GenerateText(filepath.Join(dir, "words.txt"), "alpha beta")
	require.NoError(t, err)
	require.NoError(t, text.Read())
	assert.Equal(t, "Text words.txt: 10B", text.Title())

	work, err := text.Copy()
	require.NoError(t, err)
	copy(work, strings.ToUpper(string(work)))

	name, err := text.SaveCopy(dir, 3, 0)
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "ALPHA BETA", string(b))
	assert.Equal(t, "alpha beta", text.Data())
}

func TestCollectionPreservesOrder(t *testing.T) {
	a := NewText("a.txt")
	b := NewText("b.txt")
	c := NewCollection[[]byte](a)
	c.Add(b)
	require.Equal(t, 2, c.Len())
	assert.Same(t, a, c.Items()[0])
	assert.Same(t, b, c.Items()[1])
}
