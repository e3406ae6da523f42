package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cpuinfo = `processor	: 0
vendor_id	: GenuineIntel
model name	: Intel(R) Xeon(R) Gold 6130 CPU @ 2.10GHz
physical id	: 0

processor	: 1
vendor_id	: GenuineIntel
model name	: Intel(R) Xeon(R) Gold 6130 CPU @ 2.10GHz
physical id	: 1
`

func withFakeProc(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpuinfo")
	version := filepath.Join(dir, "version")
	cache := filepath.Join(dir, "size")
	require.NoError(t, os.WriteFile(cpu, []byte(cpuinfo), 0o644))
	require.NoError(t, os.WriteFile(version, []byte("Linux version 6.1.0-test (gcc) #1 SMP"), 0o644))
	require.NoError(t, os.WriteFile(cache, []byte("22528K\n"), 0o644))

	oldCPU, oldVersion, oldCache := procCPUInfo, procVersion, cacheSizes
	procCPUInfo, procVersion, cacheSizes = cpu, version, []string{cache}
	t.Cleanup(func() {
		procCPUInfo, procVersion, cacheSizes = oldCPU, oldVersion, oldCache
	})
}

func TestDetect(t *testing.T) {
	withFakeProc(t)

	info, err := Detect(false)
	require.NoError(t, err)
	assert.Equal(t, "GenuineIntel", info.CPUVendor)
	assert.Contains(t, info.CPUModel, "Xeon")
	assert.Equal(t, 2, info.Sockets)
	assert.Equal(t, "6.1.0-test", info.KernelVersion)
	assert.Equal(t, "22M", info.L3Cache)
	assert.Nil(t, info.RDT)
	assert.Positive(t, info.LogicalCores)
}

func TestDetectWithoutProc(t *testing.T) {
	oldCPU, oldVersion, oldCache := procCPUInfo, procVersion, cacheSizes
	procCPUInfo, procVersion, cacheSizes = "/nonexistent/cpuinfo", "/nonexistent/version", nil
	t.Cleanup(func() {
		procCPUInfo, procVersion, cacheSizes = oldCPU, oldVersion, oldCache
	})

	info, err := Detect(false)
	require.NoError(t, err)
	assert.Equal(t, "unknown", info.CPUModel)
	assert.Equal(t, "unknown", info.KernelVersion)
	assert.Equal(t, 1, info.Sockets)
	assert.Empty(t, info.L3Cache)
}

func TestParseCacheSize(t *testing.T) {
	cases := map[string]int64{
		"8192K":   8192 * 1024,
		"32M":     32 * 1024 * 1024,
		"1048576": 1048576,
	}
	for in, want := range cases {
		got, err := parseCacheSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseCacheSize("big")
	assert.Error(t, err)
}
